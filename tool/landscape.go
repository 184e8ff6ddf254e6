package tool

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jonwraymond/mapops/parse"
)

// MarkerStyler restyles map markers after a landscape analysis. The hook
// is best-effort: it runs outside the cached result and must not block
// or fail the analysis.
type MarkerStyler interface {
	Restyle(ctx context.Context, location string, nodes []parse.Node)
}

// MarkerStylerFunc adapts a function to the MarkerStyler interface.
type MarkerStylerFunc func(ctx context.Context, location string, nodes []parse.Node)

// Restyle implements MarkerStyler.
func (f MarkerStylerFunc) Restyle(ctx context.Context, location string, nodes []parse.Node) {
	f(ctx, location, nodes)
}

// LandscapeReport is the payload of a landscape analysis result.
type LandscapeReport struct {
	Completion Completion   `json:"completion"`
	Nodes      []parse.Node `json:"nodes"`
}

// LandscapeConfig configures a LandscapeStrategy.
type LandscapeConfig struct {
	// Completion is the underlying completion strategy. Required.
	Completion Strategy

	// Parser extracts structured nodes from the completion content.
	// Default: parse.New()
	Parser *parse.Parser

	// Styler is invoked with the parsed nodes after a successful
	// analysis. Optional.
	Styler MarkerStyler

	// TTL overrides the cached-result TTL.
	// Default: 12 hours
	TTL time.Duration
}

// LandscapeStrategy runs a competitive-landscape analysis: a completion
// with a domain prompt, parsed into scored nodes, with a marker-restyle
// side effect for map surfaces.
type LandscapeStrategy struct {
	config LandscapeConfig
}

var _ Strategy = (*LandscapeStrategy)(nil)

// NewLandscapeStrategy creates a landscape analysis strategy.
func NewLandscapeStrategy(config LandscapeConfig) (*LandscapeStrategy, error) {
	if config.Completion == nil {
		return nil, &ConfigError{Strategy: "landscape", Setting: "completion", Reason: "no completion strategy configured"}
	}
	if config.Parser == nil {
		config.Parser = parse.New()
	}
	if config.TTL <= 0 {
		config.TTL = 12 * time.Hour
	}
	return &LandscapeStrategy{config: config}, nil
}

// ID implements Strategy.
func (l *LandscapeStrategy) ID() string { return "landscape" }

// CacheTTL implements Strategy.
func (l *LandscapeStrategy) CacheTTL() time.Duration { return l.config.TTL }

// Execute runs the completion with a landscape prompt, parses the
// response into nodes, and triggers the marker restyle hook.
func (l *LandscapeStrategy) Execute(ctx context.Context, req Request) (Result, error) {
	inner := req
	inner.Params = cloneParams(req.Params)
	inner.Params["prompt"] = landscapePrompt(req)

	res, err := l.config.Completion.Execute(ctx, inner)
	if err != nil {
		return Result{}, err
	}

	var completion Completion
	if err := json.Unmarshal(res.Data, &completion); err != nil {
		return Result{}, &UpstreamError{Strategy: l.ID(), Cause: err}
	}

	nodes := l.config.Parser.Parse(completion.Content)
	if l.config.Styler != nil {
		l.config.Styler.Restyle(ctx, req.Location, nodes)
	}

	data, err := json.Marshal(LandscapeReport{Completion: completion, Nodes: nodes})
	if err != nil {
		return Result{}, err
	}
	return Result{Success: true, Data: data, Timestamp: time.Now().UTC()}, nil
}

func landscapePrompt(req Request) string {
	return fmt.Sprintf(
		"Map the competitive landscape for %s near %s. "+
			"List every competing or complementary site as a section headed "+
			"'## NODE <n>: **<name>**' with Type, Distance, Capacity, Summary lines "+
			"and numeric POWER SCORE and FIBER SCORE out of 10.",
		req.Query, req.Location,
	)
}

func cloneParams(params map[string]any) map[string]any {
	out := make(map[string]any, len(params)+1)
	for k, v := range params {
		out[k] = v
	}
	return out
}
