package gateway

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newSSEServer(t *testing.T, fragments []string) *httptest.Server {
	t.Helper()

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v1/models":
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, `{"object":"list","data":[]}`)
		case "/v1/chat/completions":
			w.Header().Set("Content-Type", "text/event-stream")
			for _, frag := range fragments {
				fmt.Fprintf(w, "data: {\"id\":\"1\",\"object\":\"chat.completion.chunk\",\"choices\":[{\"index\":0,\"delta\":{\"content\":%q}}]}\n\n", frag)
			}
			fmt.Fprint(w, "data: [DONE]\n\n")
		default:
			http.NotFound(w, r)
		}
	}))
}

func TestOpenAI_Name(t *testing.T) {
	g := NewOpenAI("", "", "test-model")
	if g.Name() != "openai" {
		t.Errorf("expected 'openai', got %q", g.Name())
	}
}

func TestOpenAI_IsAvailable(t *testing.T) {
	server := newSSEServer(t, nil)
	defer server.Close()

	g := NewOpenAI(server.URL+"/v1", "test-key", "test-model")
	if err := g.IsAvailable(context.Background()); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestOpenAI_IsAvailable_Unreachable(t *testing.T) {
	g := NewOpenAI("http://127.0.0.1:1/v1", "test-key", "test-model")
	if err := g.IsAvailable(context.Background()); err == nil {
		t.Error("expected error for unreachable endpoint")
	}
}

func TestOpenAI_Generate_ConcatenatesFragmentsInOrder(t *testing.T) {
	server := newSSEServer(t, []string{"Bon", "jour"})
	defer server.Close()

	g := NewOpenAI(server.URL+"/v1", "test-key", "test-model")
	stream, err := g.Generate(context.Background(), "prompt", Options{Temperature: 0.3, MaxChars: 60})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := Collect(stream)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "Bonjour" {
		t.Errorf("expected %q, got %q", "Bonjour", got)
	}
}

func TestOpenAI_ResetClearsHistory(t *testing.T) {
	server := newSSEServer(t, []string{"ok"})
	defer server.Close()

	g := NewOpenAI(server.URL+"/v1", "test-key", "test-model")

	stream, err := g.Generate(context.Background(), "first", Options{Temperature: 0.3, MaxChars: 55})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := Collect(stream); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(g.history) != 2 {
		t.Fatalf("expected user+assistant history, got %d messages", len(g.history))
	}

	g.Reset()
	if len(g.history) != 0 {
		t.Errorf("expected empty history after Reset, got %d messages", len(g.history))
	}
}
