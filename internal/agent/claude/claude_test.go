package claude

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	anthropic "github.com/liushuangls/go-anthropic/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"labelens/internal/agent"
	"labelens/internal/search"
)

type stubSearcher struct {
	results []search.Result
	err     error
	queries []string
}

func (s *stubSearcher) Search(_ context.Context, query string) ([]search.Result, error) {
	s.queries = append(s.queries, query)
	return s.results, s.err
}

var fakeJPEG = []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10}

func textResponse(text string) map[string]any {
	return map[string]any{
		"id":          "msg_1",
		"type":        "message",
		"role":        "assistant",
		"model":       "claude-test",
		"stop_reason": "end_turn",
		"content":     []map[string]any{{"type": "text", "text": text}},
		"usage":       map[string]int{"input_tokens": 10, "output_tokens": 10},
	}
}

func toolUseResponse(id, query string) map[string]any {
	return map[string]any{
		"id":          "msg_1",
		"type":        "message",
		"role":        "assistant",
		"model":       "claude-test",
		"stop_reason": "tool_use",
		"content": []map[string]any{
			{"type": "tool_use", "id": id, "name": agent.SearchToolName, "input": map[string]string{"query": query}},
		},
		"usage": map[string]int{"input_tokens": 10, "output_tokens": 10},
	}
}

// fakeAPI serves the queued responses in order and records request bodies.
func fakeAPI(t *testing.T, responses ...map[string]any) (*httptest.Server, *[][]byte) {
	t.Helper()
	var bodies [][]byte
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		bodies = append(bodies, body)

		require.Less(t, calls, len(responses), "unexpected extra API call")
		resp := responses[calls]
		calls++
		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
	return srv, &bodies
}

func TestAnalyzeReturnsText(t *testing.T) {
	srv, bodies := fakeAPI(t, textResponse("Contains cocoa, sugar, milk solids."))
	defer srv.Close()

	a := New("sk-test", "claude-test", &stubSearcher{}, anthropic.WithBaseURL(srv.URL))
	res, err := a.Analyze(context.Background(), bytes.NewReader(fakeJPEG), "image/jpeg")
	require.NoError(t, err)
	assert.Equal(t, "Contains cocoa, sugar, milk solids.", res.Text)
	assert.Zero(t, res.ToolCalls)

	// The request carries the image block, the fixed instructions, and the tool.
	var req map[string]any
	require.Len(t, *bodies, 1)
	require.NoError(t, json.Unmarshal((*bodies)[0], &req))
	assert.NotEmpty(t, req["system"])
	assert.NotEmpty(t, req["tools"])
}

func TestAnalyzeRunsSearchToolLoop(t *testing.T) {
	srv, bodies := fakeAPI(t,
		toolUseResponse("toolu_1", "what is E471"),
		textResponse("E471 is an emulsifier."),
	)
	defer srv.Close()

	searcher := &stubSearcher{results: []search.Result{
		{Title: "E471", URL: "https://example.com/e471", Content: "An emulsifier."},
	}}
	a := New("sk-test", "claude-test", searcher, anthropic.WithBaseURL(srv.URL))

	res, err := a.Analyze(context.Background(), bytes.NewReader(fakeJPEG), "image/jpeg")
	require.NoError(t, err)
	assert.Equal(t, "E471 is an emulsifier.", res.Text)
	assert.Equal(t, 1, res.ToolCalls)
	assert.Equal(t, []string{"what is E471"}, searcher.queries)

	// Second request must echo the tool result back.
	require.Len(t, *bodies, 2)
	assert.Contains(t, string((*bodies)[1]), "tool_result")
	assert.Contains(t, string((*bodies)[1]), "example.com/e471")
}

func TestAnalyzeSearchFailureStillAnswers(t *testing.T) {
	srv, _ := fakeAPI(t,
		toolUseResponse("toolu_1", "obscure brand"),
		textResponse("Based on the label alone: sugar, gelatin."),
	)
	defer srv.Close()

	searcher := &stubSearcher{err: errors.New("tavily unavailable")}
	a := New("sk-test", "claude-test", searcher, anthropic.WithBaseURL(srv.URL))

	res, err := a.Analyze(context.Background(), bytes.NewReader(fakeJPEG), "image/jpeg")
	require.NoError(t, err)
	assert.Equal(t, "Based on the label alone: sugar, gelatin.", res.Text)
}

func TestAnalyzeEmptyResponse(t *testing.T) {
	srv, _ := fakeAPI(t, textResponse("   \n"))
	defer srv.Close()

	a := New("sk-test", "claude-test", &stubSearcher{}, anthropic.WithBaseURL(srv.URL))
	_, err := a.Analyze(context.Background(), bytes.NewReader(fakeJPEG), "image/jpeg")
	require.Error(t, err)
	assert.ErrorIs(t, err, agent.ErrEmptyResponse)
	assert.ErrorIs(t, err, agent.ErrAnalysisFailed)
}

func TestAnalyzeAPIErrorWrapsAnalysisFailed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"type":"error","error":{"type":"rate_limit_error","message":"quota exceeded"}}`))
	}))
	defer srv.Close()

	a := New("sk-test", "claude-test", &stubSearcher{}, anthropic.WithBaseURL(srv.URL))
	_, err := a.Analyze(context.Background(), bytes.NewReader(fakeJPEG), "image/jpeg")
	require.Error(t, err)
	assert.ErrorIs(t, err, agent.ErrAnalysisFailed)
}

func TestNormaliseMIME(t *testing.T) {
	assert.Equal(t, "image/png", normaliseMIME("image/png"))
	assert.Equal(t, "image/webp", normaliseMIME("image/webp"))
	assert.Equal(t, "image/jpeg", normaliseMIME("image/jpeg"))
	assert.Equal(t, "image/jpeg", normaliseMIME("image/tiff"))
}
