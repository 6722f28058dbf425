// Package search defines the web-search contract the analysis agent may use.
// The agent decides when (and whether) to search; nothing else in the
// application calls a Searcher directly.
package search

import "context"

// Result is a single web search hit.
type Result struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Content string `json:"content,omitempty"`
}

type Searcher interface {
	Search(ctx context.Context, query string) ([]Result, error)
}
