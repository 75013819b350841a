package llm

import (
	"context"
	"errors"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

// ErrorKind discriminates downstream failures so callers can pick a fallback
// without inspecting raw errors.
type ErrorKind string

const (
	ErrNone      ErrorKind = ""
	ErrTimeout   ErrorKind = "timeout"
	ErrNetwork   ErrorKind = "network"
	ErrEmpty     ErrorKind = "empty"
	ErrMalformed ErrorKind = "malformed"
)

// Result is the outcome of a completion call: either a reply or an error kind
// (with the underlying cause kept for logging).
type Result struct {
	Reply string
	Err   ErrorKind
	Cause error
}

func (r Result) OK() bool { return r.Err == ErrNone }

func ok(reply string) Result { return Result{Reply: reply} }

func fail(kind ErrorKind, cause error) Result { return Result{Err: kind, Cause: cause} }

// Request carries everything the completion service needs for one
// business-query turn. Knowledge and the question are embedded in a single
// user message; recent prior user utterances are included as extra context.
type Request struct {
	System      string
	Knowledge   string
	Recent      []string
	Question    string
	MaxTokens   int
	Temperature float32
}

// Client is the completion-service boundary.
type Client interface {
	Complete(ctx context.Context, req Request) Result
}

// OpenRouterClient talks to an OpenRouter-compatible chat-completions
// endpoint through the openai client with a custom base URL.
type OpenRouterClient struct {
	client  *openai.Client
	model   string
	timeout time.Duration
}

func NewOpenRouterClient(apiKey, baseURL, model string, timeout time.Duration) *OpenRouterClient {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &OpenRouterClient{client: openai.NewClientWithConfig(cfg), model: model, timeout: timeout}
}

func (c *OpenRouterClient) Complete(ctx context.Context, req Request) Result {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: req.System},
			{Role: openai.ChatMessageRoleUser, Content: buildUserPrompt(req)},
		},
	})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return fail(ErrTimeout, err)
		}
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) {
			return fail(ErrMalformed, err)
		}
		return fail(ErrNetwork, err)
	}
	if len(resp.Choices) == 0 {
		return fail(ErrEmpty, errors.New("no choices in completion response"))
	}
	reply := strings.TrimSpace(resp.Choices[0].Message.Content)
	if reply == "" {
		return fail(ErrEmpty, errors.New("empty completion content"))
	}
	return ok(reply)
}

// buildUserPrompt embeds the knowledge blob, a compact window of recent user
// utterances, and the question into one user message.
func buildUserPrompt(req Request) string {
	var b strings.Builder
	b.WriteString("Knowledge:\n")
	b.WriteString(req.Knowledge)
	if len(req.Recent) > 0 {
		b.WriteString("\n\nRecent user messages:\n")
		for _, m := range req.Recent {
			m = strings.TrimSpace(m)
			m = strings.ReplaceAll(m, "\n\n", "\n")
			b.WriteString("- ")
			b.WriteString(m)
			b.WriteString("\n")
		}
	}
	b.WriteString("\n\nQuestion:\n")
	b.WriteString(req.Question)
	return b.String()
}
