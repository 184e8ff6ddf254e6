package observe

import "errors"

// Configuration errors returned by Config.Validate.
var (
	// ErrMissingServiceName indicates Config.ServiceName is empty.
	ErrMissingServiceName = errors.New("observe: service name is required")

	// ErrInvalidSamplePct indicates Tracing.SamplePct is not in [0.0, 1.0].
	ErrInvalidSamplePct = errors.New("observe: sample percentage must be between 0.0 and 1.0")

	// ErrUnknownTracingExporter indicates an unrecognized tracing exporter name.
	ErrUnknownTracingExporter = errors.New("observe: unknown tracing exporter")

	// ErrUnknownMetricsExporter indicates an unrecognized metrics exporter name.
	ErrUnknownMetricsExporter = errors.New("observe: unknown metrics exporter")

	// ErrUnknownLogLevel indicates an unrecognized log level name.
	ErrUnknownLogLevel = errors.New("observe: unknown log level")
)

// RedactedFields lists log field keys whose values are replaced with a
// redaction marker before serialization. Upstream credentials and raw
// tool inputs never reach log output.
var RedactedFields = []string{
	"input",
	"inputs",
	"password",
	"secret",
	"token",
	"api_key",
	"apiKey",
	"credential",
}
