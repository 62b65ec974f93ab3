package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const DefaultOllamaModel = "llama3.2"

// Ollama talks to a local Ollama server over its native chat API. The
// message history forms the conversation context; it grows with each
// Generate call and is dropped by Reset.
type Ollama struct {
	baseURL string
	model   string
	client  *http.Client
	history []chatMessage
}

func NewOllama(baseURL, model string) *Ollama {
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	if model == "" {
		model = DefaultOllamaModel
	}
	return &Ollama{
		baseURL: baseURL,
		model:   model,
		client:  &http.Client{Timeout: 120 * time.Second},
	}
}

func (g *Ollama) Name() string {
	return "ollama"
}

func (g *Ollama) Reset() {
	g.history = nil
}

func (g *Ollama) IsAvailable(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, "GET", fmt.Sprintf("%s/api/tags", g.baseURL), nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := g.client.Do(req)
	if err != nil {
		return fmt.Errorf("Ollama not available: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("Ollama returned status %d", resp.StatusCode)
	}
	return nil
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatOptions struct {
	Temperature float64 `json:"temperature"`
	NumPredict  int     `json:"num_predict"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
	Stream   bool          `json:"stream"`
	Options  chatOptions   `json:"options"`
}

type chatChunk struct {
	Message chatMessage `json:"message"`
	Done    bool        `json:"done"`
	Error   string      `json:"error"`
}

func (g *Ollama) Generate(ctx context.Context, prompt string, opts Options) (Stream, error) {
	g.history = append(g.history, chatMessage{Role: "user", Content: prompt})

	body := chatRequest{
		Model:    g.model,
		Messages: g.history,
		Stream:   true,
		Options: chatOptions{
			Temperature: opts.Temperature,
			NumPredict:  tokenBudget(opts.MaxChars),
		},
	}

	jsonData, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", fmt.Sprintf("%s/api/chat", g.baseURL), bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("Ollama returned status %d", resp.StatusCode)
	}

	return &ollamaStream{
		gw:   g,
		resp: resp,
		dec:  json.NewDecoder(resp.Body),
	}, nil
}

// ollamaStream decodes the NDJSON fragment sequence of one /api/chat
// response. On completion the assembled assistant message is appended to the
// owning gateway's history.
type ollamaStream struct {
	gw   *Ollama
	resp *http.Response
	dec  *json.Decoder
	sb   strings.Builder
	done bool
}

func (s *ollamaStream) Next() (string, error) {
	if s.done {
		return "", io.EOF
	}

	var chunk chatChunk
	if err := s.dec.Decode(&chunk); err != nil {
		if err == io.EOF {
			s.finish()
			return "", io.EOF
		}
		return "", fmt.Errorf("failed to decode stream chunk: %w", err)
	}
	if chunk.Error != "" {
		return "", fmt.Errorf("Ollama stream error: %s", chunk.Error)
	}

	s.sb.WriteString(chunk.Message.Content)
	if chunk.Done {
		s.finish()
		if chunk.Message.Content == "" {
			return "", io.EOF
		}
	}
	return chunk.Message.Content, nil
}

func (s *ollamaStream) finish() {
	s.done = true
	s.gw.history = append(s.gw.history, chatMessage{Role: "assistant", Content: s.sb.String()})
}

func (s *ollamaStream) Close() error {
	return s.resp.Body.Close()
}
