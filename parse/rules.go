package parse

import "regexp"

// Known field names. Every parsed node carries all of them.
const (
	FieldType     = "type"
	FieldDistance = "distance"
	FieldCapacity = "capacity"
	FieldSummary  = "summary"
)

// Known score names.
const (
	ScorePower = "power"
	ScoreFiber = "fiber"
)

// FieldRule binds one text field to its candidate patterns, most specific
// first, and the sentinel substituted when none match. Each pattern must
// capture the field value as group 1.
type FieldRule struct {
	Name     string
	Patterns []*regexp.Regexp
	Sentinel string
}

// ScoreRule binds one numeric field to its candidate patterns. Each pattern
// must capture the numeric value as group 1.
type ScoreRule struct {
	Name     string
	Patterns []*regexp.Regexp
}

// defaultHeaderPatterns mark the start of a node segment. Group 1 is the
// node number, group 2 the name.
var defaultHeaderPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?m)^#{2,4}\s*NODE\s+(\d+)\s*:\s*(.+?)\s*$`),
	regexp.MustCompile(`(?m)^\*\*\s*NODE\s+(\d+)\s*:\s*(.+?)\s*$`),
	regexp.MustCompile(`(?m)^NODE\s+(\d+)\s*:\s*(.+?)\s*$`),
}

// DefaultFieldRules returns the default text field rule table.
func DefaultFieldRules() []FieldRule {
	return []FieldRule{
		{
			Name: FieldType,
			Patterns: []*regexp.Regexp{
				regexp.MustCompile(`(?im)^\s*(?:[-*]\s*)?\*\*\s*(?:\d+\.\s*)?type\s*:?\s*\*\*\s*:?\s*(.+)$`),
				regexp.MustCompile(`(?im)^\s*(?:[-*]\s*)?type\s*:\s*(.+)$`),
				regexp.MustCompile(`(?im)\btype\s*:\s*([^\n]+)`),
			},
			Sentinel: SentinelUnknown,
		},
		{
			Name: FieldDistance,
			Patterns: []*regexp.Regexp{
				regexp.MustCompile(`(?im)^\s*(?:[-*]\s*)?\*\*\s*(?:\d+\.\s*)?distance\s*:?\s*\*\*\s*:?\s*(.+)$`),
				regexp.MustCompile(`(?im)\bdistance\s*:\s*([^\n]+)`),
				regexp.MustCompile(`(?im)\b([\d.]+\s*(?:miles|mi|km))\b`),
			},
			Sentinel: SentinelNA,
		},
		{
			Name: FieldCapacity,
			Patterns: []*regexp.Regexp{
				regexp.MustCompile(`(?im)^\s*(?:[-*]\s*)?\*\*\s*(?:\d+\.\s*)?capacity\s*:?\s*\*\*\s*:?\s*(.+)$`),
				regexp.MustCompile(`(?im)\bcapacity\s*:\s*([^\n]+)`),
				regexp.MustCompile(`(?im)\b([\d,.]+\s*(?:mw|gw|kw))\b`),
			},
			Sentinel: SentinelNA,
		},
		{
			Name: FieldSummary,
			Patterns: []*regexp.Regexp{
				regexp.MustCompile(`(?im)^\s*(?:[-*]\s*)?\*\*\s*(?:\d+\.\s*)?summary\s*:?\s*\*\*\s*:?\s*(.+)$`),
				regexp.MustCompile(`(?im)\bsummary\s*:\s*([^\n]+)`),
			},
			Sentinel: SentinelNA,
		},
	}
}

// DefaultScoreRules returns the default numeric field rule table.
// Scores are expressed on a 0-10 scale.
func DefaultScoreRules() []ScoreRule {
	return []ScoreRule{
		{
			Name: ScorePower,
			Patterns: []*regexp.Regexp{
				regexp.MustCompile(`(?im)\*\*\s*(?:\d+\.\s*)?power\s+score\s*:?\s*\*\*\s*:?\s*(\d+(?:\.\d+)?)\s*(?:/\s*10)?`),
				regexp.MustCompile(`(?im)\bpower\s+score\b[^0-9\n]{0,12}(\d+(?:\.\d+)?)`),
				regexp.MustCompile(`(?im)\bpower\b[^0-9\n]{0,12}(\d+(?:\.\d+)?)\s*/\s*10`),
			},
		},
		{
			Name: ScoreFiber,
			Patterns: []*regexp.Regexp{
				regexp.MustCompile(`(?im)\*\*\s*(?:\d+\.\s*)?fiber\s+score\s*:?\s*\*\*\s*:?\s*(\d+(?:\.\d+)?)\s*(?:/\s*10)?`),
				regexp.MustCompile(`(?im)\bfiber\s+score\b[^0-9\n]{0,12}(\d+(?:\.\d+)?)`),
				regexp.MustCompile(`(?im)\bfiber\b[^0-9\n]{0,12}(\d+(?:\.\d+)?)\s*/\s*10`),
			},
		},
	}
}
