package ollama

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"resume-scanner/internal/llm"
)

func TestGenerateSendsOptionsAndTrimsResponse(t *testing.T) {
	var got generateRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"response":"  {\"score\": 80}\n","done":true}`))
	}))
	defer server.Close()

	client, err := New(server.URL, "llama3.2:1b", time.Second)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	out, err := client.Generate(context.Background(), "score this", llm.DefaultOptions())
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if out != `{"score": 80}` {
		t.Fatalf("unexpected output %q", out)
	}
	if got.Model != "llama3.2:1b" || got.Prompt != "score this" || got.Stream {
		t.Fatalf("unexpected request %+v", got)
	}
	if got.Options.Temperature != 0.2 || got.Options.NumPredict != 512 {
		t.Fatalf("unexpected options %+v", got.Options)
	}
}

func TestGenerateReportsHTTPStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model is loading", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client, err := New(server.URL, "m", time.Second)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	_, err = client.Generate(context.Background(), "p", llm.DefaultOptions())
	if err == nil || !strings.Contains(err.Error(), "http status 503") {
		t.Fatalf("expected status error, got %v", err)
	}
	if !llm.ShouldRetry(err) {
		t.Fatal("expected 503 to be retryable")
	}
}

func TestGenerateEmptyResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"response":"   "}`))
	}))
	defer server.Close()

	client, err := New(server.URL, "m", time.Second)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := client.Generate(context.Background(), "p", llm.DefaultOptions()); !errors.Is(err, llm.ErrEmptyResponse) {
		t.Fatalf("expected ErrEmptyResponse, got %v", err)
	}
}

func TestNewRequiresModel(t *testing.T) {
	if _, err := New("", " ", 0); err == nil {
		t.Fatal("expected error for empty model")
	}
	client, err := New("", "m", 0)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if client.url != DefaultURL || client.httpClient.Timeout != 60*time.Second {
		t.Fatalf("unexpected defaults url=%s timeout=%s", client.url, client.httpClient.Timeout)
	}
}
