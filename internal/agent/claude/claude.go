// Package claude implements agent.Analyzer on the Anthropic Messages API.
package claude

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	anthropic "github.com/liushuangls/go-anthropic/v2"

	"labelens/internal/agent"
	"labelens/internal/prompt"
	"labelens/internal/search"
)

// maxToolRounds bounds the tool-use loop, mirroring the gemini backend.
const maxToolRounds = 4

// maxTokens leaves room for a long multi-section markdown answer.
const maxTokens = 2048

var searchTool = anthropic.ToolDefinition{
	Name:        agent.SearchToolName,
	Description: agent.SearchToolDescription,
	InputSchema: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"query": map[string]any{
				"type":        "string",
				"description": "The search query.",
			},
		},
		"required": []string{"query"},
	},
}

type ClaudeAgent struct {
	client   *anthropic.Client
	model    string
	searcher search.Searcher
}

func New(apiKey, model string, searcher search.Searcher, opts ...anthropic.ClientOption) *ClaudeAgent {
	return &ClaudeAgent{
		client:   anthropic.NewClient(apiKey, opts...),
		model:    model,
		searcher: searcher,
	}
}

func (a *ClaudeAgent) Analyze(ctx context.Context, r io.Reader, mimeType string) (*agent.Result, error) {
	imageData, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}

	messages := []anthropic.Message{{
		Role: anthropic.RoleUser,
		Content: []anthropic.MessageContent{
			anthropic.NewImageMessageContent(anthropic.MessageContentSource{
				Type:      "base64",
				MediaType: normaliseMIME(mimeType),
				Data:      base64.StdEncoding.EncodeToString(imageData),
			}),
			anthropic.NewTextMessageContent(prompt.Instructions),
		},
	}}

	req := anthropic.MessagesRequest{
		Model:     anthropic.Model(a.model),
		MaxTokens: maxTokens,
		System:    prompt.System,
	}
	var tools []anthropic.ToolDefinition
	if a.searcher != nil {
		tools = []anthropic.ToolDefinition{searchTool}
	}

	toolCalls := 0
	for round := 0; round <= maxToolRounds; round++ {
		req.Messages = messages
		req.Tools = tools

		resp, err := a.client.CreateMessages(ctx, req)
		if err != nil {
			return nil, agent.Fail(fmt.Errorf("call claude: %w", err))
		}

		if resp.StopReason != anthropic.MessagesStopReasonToolUse {
			text := responseText(resp)
			if strings.TrimSpace(text) == "" {
				return nil, agent.ErrEmptyResponse
			}
			return &agent.Result{Text: text, ToolCalls: toolCalls}, nil
		}

		messages = append(messages, anthropic.Message{
			Role:    anthropic.RoleAssistant,
			Content: resp.Content,
		})

		var results []anthropic.MessageContent
		for _, c := range resp.Content {
			use := c.MessageContentToolUse
			if c.Type != anthropic.MessagesContentTypeToolUse || use == nil {
				continue
			}
			toolCalls++
			out, isErr := a.runSearch(ctx, use.Input)
			results = append(results, anthropic.NewToolResultMessageContent(use.ID, out, isErr))
		}
		if len(results) == 0 {
			return nil, agent.ErrEmptyResponse
		}
		messages = append(messages, anthropic.Message{
			Role:    anthropic.RoleUser,
			Content: results,
		})
	}

	// The model never stopped asking for searches.
	return nil, agent.ErrEmptyResponse
}

// runSearch executes one requested search. Failures are reported back as a
// tool error so the model can answer from the image alone.
func (a *ClaudeAgent) runSearch(ctx context.Context, input json.RawMessage) (string, bool) {
	var args struct {
		Query string `json:"query"`
	}
	if err := json.Unmarshal(input, &args); err != nil || args.Query == "" {
		return "missing query argument", true
	}

	results, err := a.searcher.Search(ctx, args.Query)
	if err != nil {
		return err.Error(), true
	}

	out, err := json.Marshal(map[string]any{"results": results})
	if err != nil {
		return err.Error(), true
	}
	return string(out), false
}

func responseText(resp anthropic.MessagesResponse) string {
	var sb strings.Builder
	for _, c := range resp.Content {
		if c.Type == anthropic.MessagesContentTypeText && c.Text != nil {
			sb.WriteString(*c.Text)
		}
	}
	return sb.String()
}

// normaliseMIME maps a MIME type to the values the Anthropic API accepts.
// Callers validate formats before reaching this layer, so anything unknown
// falls back to jpeg.
func normaliseMIME(mimeType string) string {
	switch mimeType {
	case "image/png", "image/gif", "image/webp":
		return mimeType
	default:
		return "image/jpeg"
	}
}
