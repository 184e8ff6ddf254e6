package health

import (
	"context"
	"encoding/json"
	"net/http"
	"time"
)

// Probe deadlines. The detailed endpoint gets longer because it fans
// out to every checker and reports all of them.
const (
	probeTimeout    = 5 * time.Second
	detailedTimeout = 10 * time.Second
)

// LivenessHandler answers liveness probes. It only proves the process
// is serving requests; readiness is the real health signal.
func LivenessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeProbe(w, http.StatusOK, "OK")
	}
}

// ReadinessHandler answers readiness probes by sweeping the
// aggregator. Warnings still report ready; only a critical result
// turns the probe negative.
func ReadinessHandler(agg *Aggregator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), probeTimeout)
		defer cancel()

		switch agg.OverallStatus(agg.CheckAll(ctx)) {
		case StatusOK:
			writeProbe(w, http.StatusOK, "OK")
		case StatusWarning:
			writeProbe(w, http.StatusOK, "WARNING")
		default:
			writeProbe(w, http.StatusServiceUnavailable, "CRITICAL")
		}
	}
}

func writeProbe(w http.ResponseWriter, code int, body string) {
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(code)
	_, _ = w.Write([]byte(body))
}

// HealthResponse is the body of the detailed health endpoint.
type HealthResponse struct {
	Status    string                   `json:"status"`
	Timestamp string                   `json:"timestamp"`
	Checks    map[string]CheckResponse `json:"checks,omitempty"`
}

// CheckResponse reports one checker's result.
type CheckResponse struct {
	Status          string         `json:"status"`
	Message         string         `json:"message,omitempty"`
	Issues          []string       `json:"issues,omitempty"`
	Recommendations []string       `json:"recommendations,omitempty"`
	Duration        string         `json:"duration,omitempty"`
	Details         map[string]any `json:"details,omitempty"`
	Error           string         `json:"error,omitempty"`
}

func checkResponse(result Result) CheckResponse {
	check := CheckResponse{
		Status:          result.Status.String(),
		Message:         result.Message,
		Issues:          result.Issues,
		Recommendations: result.Recommendations,
		Duration:        result.Duration.String(),
		Details:         result.Details,
	}
	if result.Error != nil {
		check.Error = result.Error.Error()
	}
	return check
}

// DetailedHandler reports every checker's result as JSON, with issues
// and recommendations for the operator.
func DetailedHandler(agg *Aggregator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), detailedTimeout)
		defer cancel()

		results := agg.CheckAll(ctx)
		status := agg.OverallStatus(results)

		response := HealthResponse{
			Status:    status.String(),
			Timestamp: time.Now().UTC().Format(time.RFC3339),
			Checks:    make(map[string]CheckResponse, len(results)),
		}
		for name, result := range results {
			response.Checks[name] = checkResponse(result)
		}

		writeHealthJSON(w, statusCode(status), response)
	}
}

// SingleCheckHandler reports one named checker's result as JSON.
func SingleCheckHandler(agg *Aggregator, name string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), probeTimeout)
		defer cancel()

		result, err := agg.Check(ctx, name)
		if err != nil {
			writeHealthJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
			return
		}
		writeHealthJSON(w, statusCode(result.Status), checkResponse(result))
	}
}

func statusCode(status Status) int {
	if status == StatusCritical {
		return http.StatusServiceUnavailable
	}
	return http.StatusOK
}

func writeHealthJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// RegisterHandlers mounts the probe and detail endpoints on mux.
func RegisterHandlers(mux *http.ServeMux, agg *Aggregator) {
	mux.HandleFunc("/healthz", LivenessHandler())
	mux.HandleFunc("/readyz", ReadinessHandler(agg))
	mux.HandleFunc("/health", DetailedHandler(agg))
}
