package passwordreset

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"resume-scanner/internal/shared/storage/object/local"
	"resume-scanner/internal/users"
)

type fakeSender struct {
	to    string
	token string
	name  string
	calls int
	err   error
}

func (f *fakeSender) SendPasswordReset(ctx context.Context, to, token, name string) error {
	f.calls++
	f.to, f.token, f.name = to, token, name
	return f.err
}

type fixture struct {
	svc    *Service
	users  *users.Service
	repo   *MemoryRepo
	sender *fakeSender
	now    time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		users:  users.NewService(users.NewMemoryRepo(), local.New(t.TempDir()), 0),
		repo:   NewMemoryRepo(),
		sender: &fakeSender{},
		now:    time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC),
	}
	f.svc = NewService(f.repo, f.users, f.sender, 24*time.Hour)
	f.svc.Now = func() time.Time { return f.now }
	if _, err := f.users.Register(context.Background(), "jane@example.com", "secret1", "Jane", "Doe"); err != nil {
		t.Fatalf("Register: %v", err)
	}
	return f
}

func TestRequestResetUnknownEmailIsSilent(t *testing.T) {
	f := newFixture(t)
	if err := f.svc.RequestReset(context.Background(), "nobody@example.com"); err != nil {
		t.Fatalf("RequestReset: %v", err)
	}
	if f.sender.calls != 0 {
		t.Fatalf("expected no email, got %d", f.sender.calls)
	}
}

func TestResetFlow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if err := f.svc.RequestReset(ctx, "JANE@example.com"); err != nil {
		t.Fatalf("RequestReset: %v", err)
	}
	if f.sender.to != "jane@example.com" || f.sender.name != "Jane Doe" || f.sender.token == "" {
		t.Fatalf("unexpected delivery: %+v", f.sender)
	}
	token := f.sender.token

	if _, err := f.svc.Verify(ctx, token); err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if err := f.svc.Reset(ctx, token, "newpass1", "newpass1"); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	if _, err := f.users.Authenticate(ctx, "jane@example.com", "newpass1"); err != nil {
		t.Fatalf("expected new password to work: %v", err)
	}
	if err := f.svc.Reset(ctx, token, "another1", "another1"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected used token to be rejected, got %v", err)
	}
}

// staleRepo answers lookups with the token as first issued, like a read that
// raced with another request's claim.
type staleRepo struct {
	*MemoryRepo
	issued map[string]Token
}

func (r *staleRepo) Create(ctx context.Context, t Token) error {
	r.issued[t.Token] = t
	return r.MemoryRepo.Create(ctx, t)
}

func (r *staleRepo) GetByToken(ctx context.Context, value string) (Token, error) {
	t, ok := r.issued[value]
	if !ok {
		return Token{}, ErrNotFound
	}
	return t, nil
}

func TestResetRejectsTokenClaimedAfterLookup(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.svc.Repo = &staleRepo{MemoryRepo: f.repo, issued: map[string]Token{}}

	if err := f.svc.RequestReset(ctx, "jane@example.com"); err != nil {
		t.Fatalf("RequestReset: %v", err)
	}
	token := f.sender.token

	if err := f.svc.Reset(ctx, token, "newpass1", "newpass1"); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	if err := f.svc.Reset(ctx, token, "hijack12", "hijack12"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected second reset with the same token to fail, got %v", err)
	}
	if _, err := f.users.Authenticate(ctx, "jane@example.com", "newpass1"); err != nil {
		t.Fatalf("expected first password to stick: %v", err)
	}
	if _, err := f.users.Authenticate(ctx, "jane@example.com", "hijack12"); err == nil {
		t.Fatal("second password must not be applied")
	}
}

func TestConcurrentResetsUseTokenOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	if err := f.svc.RequestReset(ctx, "jane@example.com"); err != nil {
		t.Fatalf("RequestReset: %v", err)
	}
	token := f.sender.token

	const n = 8
	var (
		wg sync.WaitGroup
		mu sync.Mutex
		ok int
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := f.svc.Reset(ctx, token, "newpass1", "newpass1")
			if err != nil && !errors.Is(err, ErrInvalidToken) {
				t.Errorf("unexpected error: %v", err)
				return
			}
			if err == nil {
				mu.Lock()
				ok++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	if ok != 1 {
		t.Fatalf("expected exactly one successful reset, got %d", ok)
	}
}

func TestRequestResetInvalidatesEarlierTokens(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if err := f.svc.RequestReset(ctx, "jane@example.com"); err != nil {
		t.Fatalf("RequestReset: %v", err)
	}
	first := f.sender.token
	if err := f.svc.RequestReset(ctx, "jane@example.com"); err != nil {
		t.Fatalf("RequestReset: %v", err)
	}
	if _, err := f.svc.Verify(ctx, first); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected first token invalidated, got %v", err)
	}
	if _, err := f.svc.Verify(ctx, f.sender.token); err != nil {
		t.Fatalf("expected second token valid: %v", err)
	}
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	if err := f.svc.RequestReset(ctx, "jane@example.com"); err != nil {
		t.Fatalf("RequestReset: %v", err)
	}
	f.now = f.now.Add(25 * time.Hour)
	if _, err := f.svc.Verify(ctx, f.sender.token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected expired token rejected, got %v", err)
	}
}

func TestResetValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	if err := f.svc.Reset(ctx, "tok", "abcdef", "abcdeg"); !errors.Is(err, ErrPasswordMismatch) {
		t.Fatalf("expected mismatch, got %v", err)
	}
	if err := f.svc.Reset(ctx, "tok", "abc", "abc"); !errors.Is(err, ErrPasswordTooShort) {
		t.Fatalf("expected too short, got %v", err)
	}
	if err := f.svc.Reset(ctx, "missing", "abcdef", "abcdef"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected invalid token, got %v", err)
	}
}

func TestRequestResetDeliveryFailure(t *testing.T) {
	f := newFixture(t)
	f.sender.err = errors.New("smtp down")
	if err := f.svc.RequestReset(context.Background(), "jane@example.com"); !errors.Is(err, ErrDelivery) {
		t.Fatalf("expected ErrDelivery, got %v", err)
	}
}
