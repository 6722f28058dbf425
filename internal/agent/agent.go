// Package agent defines the dispatch contract to the hosted multimodal agent.
package agent

import (
	"context"
	"errors"
	"fmt"
	"io"
)

// SearchToolName is the function name both backends expose to the model for
// web lookups. The model decides whether to call it.
const SearchToolName = "search_web"

// SearchToolDescription tells the model what the tool is for.
const SearchToolDescription = "Search the web for information about a product, " +
	"brand, or ingredient. Use it when the label alone is not enough to answer."

// Analyzer sends one image plus the fixed instruction text to a hosted
// multimodal agent and blocks until the complete response arrives. There is
// no streaming or partial-result contract; a failed call is terminal for
// that interaction.
type Analyzer interface {
	Analyze(ctx context.Context, r io.Reader, mimeType string) (*Result, error)
}

// Result is the agent's answer, treated as opaque display text.
type Result struct {
	Text      string
	ToolCalls int
}

var (
	// ErrAnalysisFailed marks any transport, auth, quota, or provider error
	// raised while dispatching. Match with errors.Is.
	ErrAnalysisFailed = errors.New("analysis failed")

	// ErrEmptyResponse is returned instead of a silently empty Result.
	ErrEmptyResponse = fmt.Errorf("%w: agent returned an empty response", ErrAnalysisFailed)
)

// Fail wraps err so callers can match ErrAnalysisFailed while keeping the
// underlying cause in the chain.
func Fail(err error) error {
	return fmt.Errorf("%w: %w", ErrAnalysisFailed, err)
}
