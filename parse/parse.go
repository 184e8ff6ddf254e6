// Package parse converts free-form analysis text produced by an AI
// completion into an ordered list of typed node records.
//
// Extraction is driven by declarative rule tables (see rules.go): each known
// field carries an ordered list of candidate patterns, most specific first.
// The first pattern that matches wins; when none match the field is set to
// its sentinel. A missing field never fails the segment and a malformed
// segment never fails the response.
//
// Parsing is pure: identical input text always yields a structurally
// identical node list.
package parse

import (
	"regexp"
	"strconv"
	"strings"
)

// Sentinel values for fields that could not be extracted. Every known field
// is always present in a node's maps; missing data is represented by these
// sentinels, never by absence of the key.
const (
	SentinelNA      = "N/A"
	SentinelUnknown = "Unknown"
)

// ScoreUnavailable marks a numeric score that could not be parsed.
const ScoreUnavailable = float64(-1)

// Risk is the categorical risk level derived from a node's primary score.
type Risk string

const (
	RiskLow    Risk = "Low"
	RiskMedium Risk = "Medium"
	RiskHigh   Risk = "High"
)

// DeriveRisk maps a 0-10 score onto a risk level. Unparseable or zero
// scores map to High as a conservative default.
func DeriveRisk(score float64) Risk {
	switch {
	case score >= 8:
		return RiskLow
	case score >= 5:
		return RiskMedium
	case score > 0:
		return RiskHigh
	default:
		return RiskHigh
	}
}

// Node is one typed record extracted from a single segment of analysis
// text. Nodes are immutable once built and are emitted in segment order.
type Node struct {
	// ID is the node number from the segment header.
	ID int

	// Name is the node name from the segment header.
	Name string

	// Type is the facility type, or SentinelUnknown.
	Type string

	// Scores holds every known numeric field, ScoreUnavailable when absent.
	Scores map[string]float64

	// Fields holds every known text field, its sentinel when absent.
	Fields map[string]string

	// Risk is derived from the primary score.
	Risk Risk

	// RawText is the unmodified segment the node was extracted from.
	RawText string
}

// Config configures a Parser. Zero-valued fields fall back to the default
// rule tables.
type Config struct {
	// Headers are the segment header patterns tried in order. Each must
	// capture the node number as group 1 and the node name as group 2.
	Headers []*regexp.Regexp

	// Fields are the text field rules.
	Fields []FieldRule

	// Scores are the numeric field rules.
	Scores []ScoreRule

	// RiskScore names the score that drives risk derivation.
	// Default: ScorePower.
	RiskScore string
}

// Parser extracts nodes from analysis text. Safe for concurrent use.
type Parser struct {
	headers   []*regexp.Regexp
	fields    []FieldRule
	scores    []ScoreRule
	riskScore string
}

// New creates a Parser. With no config it uses the default rule tables.
func New(config ...Config) *Parser {
	cfg := Config{}
	if len(config) > 0 {
		cfg = config[0]
	}
	if len(cfg.Headers) == 0 {
		cfg.Headers = defaultHeaderPatterns
	}
	if len(cfg.Fields) == 0 {
		cfg.Fields = DefaultFieldRules()
	}
	if len(cfg.Scores) == 0 {
		cfg.Scores = DefaultScoreRules()
	}
	if cfg.RiskScore == "" {
		cfg.RiskScore = ScorePower
	}

	return &Parser{
		headers:   cfg.Headers,
		fields:    cfg.Fields,
		scores:    cfg.Scores,
		riskScore: cfg.RiskScore,
	}
}

// Parse splits text into node segments and extracts every known field from
// each. Text preceding the first header is discarded as a preamble. Parse
// never fails; unusable text yields an empty list.
func (p *Parser) Parse(text string) []Node {
	segments := p.split(text)
	nodes := make([]Node, 0, len(segments))
	for _, seg := range segments {
		nodes = append(nodes, p.parseSegment(seg))
	}
	return nodes
}

// segment is one header-delimited slice of the input.
type segment struct {
	id   int
	name string
	text string
}

func (p *Parser) split(text string) []segment {
	for _, header := range p.headers {
		matches := header.FindAllStringSubmatchIndex(text, -1)
		if len(matches) == 0 {
			continue
		}

		segments := make([]segment, 0, len(matches))
		for i, m := range matches {
			end := len(text)
			if i+1 < len(matches) {
				end = matches[i+1][0]
			}

			id := 0
			if m[2] >= 0 {
				id, _ = strconv.Atoi(text[m[2]:m[3]])
			}
			name := SentinelUnknown
			if m[4] >= 0 {
				if n := cleanMarkdown(text[m[4]:m[5]]); n != "" {
					name = n
				}
			}

			segments = append(segments, segment{
				id:   id,
				name: name,
				text: text[m[0]:end],
			})
		}
		return segments
	}
	return nil
}

func (p *Parser) parseSegment(seg segment) Node {
	node := Node{
		ID:      seg.id,
		Name:    seg.name,
		Scores:  make(map[string]float64, len(p.scores)),
		Fields:  make(map[string]string, len(p.fields)),
		RawText: seg.text,
	}

	for _, rule := range p.fields {
		value, ok := extractFirst(rule.Patterns, seg.text)
		if !ok {
			value = rule.Sentinel
		}
		node.Fields[rule.Name] = value
	}

	for _, rule := range p.scores {
		score := ScoreUnavailable
		if raw, ok := extractFirst(rule.Patterns, seg.text); ok {
			if parsed, err := strconv.ParseFloat(raw, 64); err == nil {
				score = parsed
			}
		}
		node.Scores[rule.Name] = score
	}

	node.Type = node.Fields[FieldType]
	node.Risk = DeriveRisk(node.Scores[p.riskScore])

	return node
}

// extractFirst runs the candidate patterns in priority order and returns
// the first capture. This single routine evaluates every rule; the rules
// themselves are data.
func extractFirst(patterns []*regexp.Regexp, text string) (string, bool) {
	for _, pattern := range patterns {
		m := pattern.FindStringSubmatch(text)
		if len(m) < 2 {
			continue
		}
		value := cleanMarkdown(m[1])
		if value != "" {
			return value, true
		}
	}
	return "", false
}

var markdownMarks = strings.NewReplacer("**", "", "*", "", "`", "", "__", "")

// cleanMarkdown strips emphasis markers and surrounding noise from an
// extracted value.
func cleanMarkdown(s string) string {
	s = markdownMarks.Replace(s)
	s = strings.Trim(s, " \t:-")
	return strings.TrimSpace(s)
}
