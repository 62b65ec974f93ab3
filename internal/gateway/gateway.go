// Package gateway abstracts the local inference backend that turns a prompt
// into streamed translated text. Two providers are supported: the Ollama
// native API and any OpenAI-compatible endpoint (llama.cpp server, LM
// Studio, vLLM). Both run on the user's machine; no text leaves localhost.
//
// A gateway holds a single conversation context, so calls must be strictly
// sequential: one generation in flight at a time. Reset clears the
// conversation before each cell to prevent cross-cell context bleed.
package gateway

import (
	"context"
	"io"
	"strings"
)

// Options tunes one generation request.
type Options struct {
	// Temperature for sampling; the driver fixes it low for
	// deterministic-leaning output.
	Temperature float64
	// MaxChars caps generation length, expressed in characters of the
	// source paragraph plus slack.
	MaxChars int
}

// Stream is a finite, forward-only sequence of completion fragments. Next
// returns io.EOF when the completion is finished. A stream is not
// restartable; Close releases the underlying connection.
type Stream interface {
	Next() (string, error)
	Close() error
}

// Gateway is the model-serving capability the driver depends on.
type Gateway interface {
	Name() string
	// IsAvailable probes the backend; it is called once before a run so
	// unreachable backends are reported before any row is touched.
	IsAvailable(ctx context.Context) error
	// Reset clears the conversation context.
	Reset()
	// Generate submits one user message and returns the completion stream.
	Generate(ctx context.Context, prompt string, opts Options) (Stream, error)
}

// Collect drains the stream, concatenating fragments in arrival order, and
// closes it.
func Collect(s Stream) (string, error) {
	defer s.Close()

	var sb strings.Builder
	for {
		frag, err := s.Next()
		if err == io.EOF {
			return sb.String(), nil
		}
		if err != nil {
			return "", err
		}
		sb.WriteString(frag)
	}
}

// tokenBudget converts a character cap to a token cap. A token is at least
// one character, so the bound stays permissive enough to never clip a
// legitimate completion while still stopping runaway generation.
func tokenBudget(maxChars int) int {
	if maxChars <= 0 {
		return -1
	}
	return maxChars
}
