package gateway

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAI talks to any OpenAI-compatible chat endpoint. Intended for local
// servers (llama.cpp, LM Studio, vLLM) exposing that API; the key is
// whatever the local server expects, often a dummy value.
type OpenAI struct {
	client  *openai.Client
	model   string
	history []openai.ChatCompletionMessage
}

func NewOpenAI(baseURL, apiKey, model string) *OpenAI {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &OpenAI{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
	}
}

func (g *OpenAI) Name() string {
	return "openai"
}

func (g *OpenAI) Reset() {
	g.history = nil
}

func (g *OpenAI) IsAvailable(ctx context.Context) error {
	if _, err := g.client.ListModels(ctx); err != nil {
		return fmt.Errorf("endpoint not available: %v", err)
	}
	return nil
}

func (g *OpenAI) Generate(ctx context.Context, prompt string, opts Options) (Stream, error) {
	g.history = append(g.history, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: prompt,
	})

	req := openai.ChatCompletionRequest{
		Model:       g.model,
		Messages:    g.history,
		Temperature: float32(opts.Temperature),
		Stream:      true,
	}
	if tb := tokenBudget(opts.MaxChars); tb > 0 {
		req.MaxTokens = tb
	}

	stream, err := g.client.CreateChatCompletionStream(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("completion request failed: %w", err)
	}
	return &openaiStream{gw: g, stream: stream}, nil
}

type openaiStream struct {
	gw     *OpenAI
	stream *openai.ChatCompletionStream
	sb     strings.Builder
	done   bool
}

func (s *openaiStream) Next() (string, error) {
	if s.done {
		return "", io.EOF
	}

	resp, err := s.stream.Recv()
	if errors.Is(err, io.EOF) {
		s.done = true
		s.gw.history = append(s.gw.history, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleAssistant,
			Content: s.sb.String(),
		})
		return "", io.EOF
	}
	if err != nil {
		return "", fmt.Errorf("stream receive failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", nil
	}

	frag := resp.Choices[0].Delta.Content
	s.sb.WriteString(frag)
	return frag, nil
}

func (s *openaiStream) Close() error {
	return s.stream.Close()
}
