package llm

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"
)

type scriptedClient struct {
	errs  []error
	calls int
}

func (s *scriptedClient) Generate(ctx context.Context, prompt string, opts Options) (string, error) {
	i := s.calls
	s.calls++
	if i < len(s.errs) && s.errs[i] != nil {
		return "", s.errs[i]
	}
	return "ok", nil
}

func TestWithRetryRetriesTransientOnce(t *testing.T) {
	base := &scriptedClient{errs: []error{fmt.Errorf("ollama http status 503: busy")}}
	client := retrying{base: base, delay: time.Millisecond}

	out, err := client.Generate(context.Background(), "p", DefaultOptions())
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if out != "ok" || base.calls != 2 {
		t.Fatalf("expected success on second call, got out=%q calls=%d", out, base.calls)
	}
}

func TestWithRetryDoesNotRetryPermanentErrors(t *testing.T) {
	base := &scriptedClient{errs: []error{fmt.Errorf("ollama http status 400: bad model")}}
	client := retrying{base: base, delay: time.Millisecond}

	if _, err := client.Generate(context.Background(), "p", DefaultOptions()); err == nil {
		t.Fatal("expected error")
	}
	if base.calls != 1 {
		t.Fatalf("expected 1 call, got %d", base.calls)
	}
}

func TestWithRetryGivesUpAfterSecondFailure(t *testing.T) {
	transient := errors.New("read: connection reset by peer")
	base := &scriptedClient{errs: []error{transient, transient}}
	client := retrying{base: base, delay: time.Millisecond}

	if _, err := client.Generate(context.Background(), "p", DefaultOptions()); !errors.Is(err, transient) {
		t.Fatalf("expected transient error, got %v", err)
	}
	if base.calls != 2 {
		t.Fatalf("expected 2 calls, got %d", base.calls)
	}
}

func TestShouldRetry(t *testing.T) {
	tests := []struct {
		err  error
		want bool
	}{
		{err: context.DeadlineExceeded, want: true},
		{err: context.Canceled, want: false},
		{err: errors.New("openai http status 502: bad gateway"), want: true},
		{err: errors.New("Client.Timeout exceeded while awaiting headers"), want: true},
		{err: errors.New("unexpected EOF"), want: true},
		{err: errors.New("ollama http status 404: model not found"), want: false},
		{err: nil, want: false},
	}
	for _, tt := range tests {
		if got := ShouldRetry(tt.err); got != tt.want {
			t.Fatalf("ShouldRetry(%v) = %v, want %v", tt.err, got, tt.want)
		}
	}
}

func TestWithRetryNil(t *testing.T) {
	if WithRetry(nil) != nil {
		t.Fatal("expected nil client for nil base")
	}
}
