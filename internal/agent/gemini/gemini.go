// Package gemini implements agent.Analyzer on the Gemini API.
package gemini

import (
	"context"
	"fmt"
	"io"
	"strings"

	genai "github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"labelens/internal/agent"
	"labelens/internal/prompt"
	"labelens/internal/search"
)

// maxToolRounds bounds the function-calling loop so a model that keeps
// requesting searches cannot hold the interaction open forever.
const maxToolRounds = 4

var searchTool = &genai.Tool{
	FunctionDeclarations: []*genai.FunctionDeclaration{{
		Name:        agent.SearchToolName,
		Description: agent.SearchToolDescription,
		Parameters: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"query": {Type: genai.TypeString, Description: "The search query."},
			},
			Required: []string{"query"},
		},
	}},
}

type GeminiAgent struct {
	client   *genai.Client
	model    string
	searcher search.Searcher
}

func New(ctx context.Context, apiKey, model string, searcher search.Searcher) (*GeminiAgent, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("gemini init: %w", err)
	}
	return &GeminiAgent{client: client, model: model, searcher: searcher}, nil
}

func (a *GeminiAgent) Close() error {
	return a.client.Close()
}

func (a *GeminiAgent) Analyze(ctx context.Context, r io.Reader, mimeType string) (*agent.Result, error) {
	imageData, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}

	model := a.client.GenerativeModel(a.model)
	model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(prompt.System)}}
	if a.searcher != nil {
		model.Tools = []*genai.Tool{searchTool}
	}

	sess := model.StartChat()
	resp, err := sess.SendMessage(ctx,
		genai.ImageData(imageFormat(mimeType), imageData),
		genai.Text(prompt.Instructions),
	)
	if err != nil {
		return nil, agent.Fail(fmt.Errorf("call gemini: %w", err))
	}

	toolCalls := 0
	for round := 0; round < maxToolRounds; round++ {
		calls := functionCalls(resp)
		if len(calls) == 0 {
			break
		}
		parts := make([]genai.Part, 0, len(calls))
		for _, fc := range calls {
			toolCalls++
			parts = append(parts, a.runSearch(ctx, fc))
		}
		resp, err = sess.SendMessage(ctx, parts...)
		if err != nil {
			return nil, agent.Fail(fmt.Errorf("call gemini after tool round: %w", err))
		}
	}

	text := responseText(resp)
	if strings.TrimSpace(text) == "" {
		return nil, agent.ErrEmptyResponse
	}
	return &agent.Result{Text: text, ToolCalls: toolCalls}, nil
}

// runSearch executes one requested search and packages the outcome as a
// function response part. A failed search is reported back to the model so it
// can still answer from the image alone.
func (a *GeminiAgent) runSearch(ctx context.Context, fc genai.FunctionCall) genai.Part {
	query, _ := fc.Args["query"].(string)
	if query == "" {
		return genai.FunctionResponse{
			Name:     fc.Name,
			Response: map[string]any{"error": "missing query argument"},
		}
	}

	results, err := a.searcher.Search(ctx, query)
	if err != nil {
		return genai.FunctionResponse{
			Name:     fc.Name,
			Response: map[string]any{"error": err.Error()},
		}
	}

	// structpb only understands []any / map[string]any, so build those shapes.
	items := make([]any, 0, len(results))
	for _, res := range results {
		items = append(items, map[string]any{
			"title":   res.Title,
			"url":     res.URL,
			"content": res.Content,
		})
	}
	return genai.FunctionResponse{
		Name:     fc.Name,
		Response: map[string]any{"results": items},
	}
}

func functionCalls(resp *genai.GenerateContentResponse) []genai.FunctionCall {
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil
	}
	var calls []genai.FunctionCall
	for _, part := range resp.Candidates[0].Content.Parts {
		if fc, ok := part.(genai.FunctionCall); ok {
			calls = append(calls, fc)
		}
	}
	return calls
}

func responseText(resp *genai.GenerateContentResponse) string {
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			sb.WriteString(string(txt))
		}
	}
	return sb.String()
}

// imageFormat maps a MIME type to the bare format tag genai.ImageData expects.
func imageFormat(mimeType string) string {
	format := strings.TrimPrefix(mimeType, "image/")
	switch format {
	case "jpeg", "png", "gif", "webp":
		return format
	default:
		return "jpeg"
	}
}
