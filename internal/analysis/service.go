// Package analysis turns resume and job description text into scores,
// comparisons, cover letters and improvement reports using an LLM. Every
// operation degrades to mock data when the model fails or answers with
// something that cannot be coerced into the expected shape.
package analysis

import (
	"bytes"
	"context"
	"embed"
	"math/rand"
	"sync"
	"text/template"
	"time"

	"resume-scanner/internal/llm"
	"resume-scanner/internal/shared/metrics"
	"resume-scanner/internal/shared/telemetry"
)

// Operation names used in logs and metrics.
const (
	OpScore        = "score"
	OpCompare      = "compare"
	OpCoverLetter  = "cover_letter"
	OpImprovements = "improvements"
)

// promptTextLimit caps resume and job description text sent in compare and
// improvement prompts.
const promptTextLimit = 2000

//go:embed prompts/*.tmpl
var promptFS embed.FS

var prompts = template.Must(template.ParseFS(promptFS, "prompts/*.tmpl"))

// Rand is the random source used to vary mock results.
type Rand interface {
	Intn(n int) int
	Float64() float64
}

// Service runs the AI operations.
type Service struct {
	LLM     llm.Client
	Options llm.Options
	Rand    Rand
}

// NewService builds a Service with default generation options and a
// time-seeded random source.
func NewService(client llm.Client) *Service {
	return &Service{
		LLM:     client,
		Options: llm.DefaultOptions(),
		Rand:    &lockedRand{r: rand.New(rand.NewSource(time.Now().UnixNano()))},
	}
}

func (s *Service) generate(ctx context.Context, op, prompt string) (string, error) {
	if s.LLM == nil {
		return "", llm.ErrNotConfigured
	}
	opts := s.Options
	if opts == (llm.Options{}) {
		opts = llm.DefaultOptions()
	}
	out, err := s.LLM.Generate(ctx, prompt, opts)
	if err != nil {
		metrics.IncLLMRequest(op, "error")
		return "", err
	}
	metrics.IncLLMRequest(op, "ok")
	return out, nil
}

func (s *Service) fallback(op string, err error) {
	metrics.IncLLMFallback(op)
	telemetry.Warn("llm.fallback", map[string]any{
		"operation": op,
		"error":     err,
	})
}

func (s *Service) intn(lo, hi int) int {
	r := s.Rand
	if r == nil {
		r = defaultRand
	}
	return lo + r.Intn(hi-lo+1)
}

func (s *Service) coin() bool {
	r := s.Rand
	if r == nil {
		r = defaultRand
	}
	return r.Float64() > 0.5
}

func render(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := prompts.ExecuteTemplate(&buf, name, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

var defaultRand Rand = &lockedRand{r: rand.New(rand.NewSource(time.Now().UnixNano()))}

// lockedRand makes a *rand.Rand safe for concurrent requests.
type lockedRand struct {
	mu sync.Mutex
	r  *rand.Rand
}

func (l *lockedRand) Intn(n int) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.Intn(n)
}

func (l *lockedRand) Float64() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.Float64()
}
