package users

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"resume-scanner/internal/shared/auth"
	"resume-scanner/internal/shared/storage/object/local"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	svc := NewService(NewMemoryRepo(), local.New(t.TempDir()), 1<<20)
	svc.Now = func() time.Time { return time.Unix(1700000000, 0) }
	return svc
}

func TestRegisterNormalizesEmailAndRejectsDuplicates(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, "  Jane@Example.COM ", "secret1", "Jane", "Doe")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if user.Email != "jane@example.com" {
		t.Fatalf("expected lower-cased email, got %q", user.Email)
	}
	if user.PasswordHash == "secret1" || !strings.HasPrefix(user.PasswordHash, "$2") {
		t.Fatalf("expected bcrypt hash, got %q", user.PasswordHash)
	}

	if _, err := svc.Register(ctx, "JANE@example.com", "another1", "", ""); !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}

func TestRegisterValidation(t *testing.T) {
	svc := newTestService(t)
	if _, err := svc.Register(context.Background(), " ", "secret1", "", ""); !errors.Is(err, ErrEmailRequired) {
		t.Fatalf("expected ErrEmailRequired, got %v", err)
	}
	if _, err := svc.Register(context.Background(), "a@b.c", "12345", "", ""); !errors.Is(err, ErrPasswordTooShort) {
		t.Fatalf("expected ErrPasswordTooShort, got %v", err)
	}
}

func TestAuthenticate(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	if _, err := svc.Register(ctx, "jane@example.com", "secret1", "", ""); err != nil {
		t.Fatalf("Register: %v", err)
	}

	if _, err := svc.Authenticate(ctx, "JANE@example.com", "secret1"); err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if _, err := svc.Authenticate(ctx, "jane@example.com", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := svc.Authenticate(ctx, "nobody@example.com", "secret1"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for unknown email, got %v", err)
	}
}

func TestAuthenticateUpgradesLegacyPlaintext(t *testing.T) {
	repo := NewMemoryRepo()
	svc := NewService(repo, nil, 0)
	ctx := context.Background()
	if err := repo.Create(ctx, User{ID: "u1", Email: "old@example.com", PasswordHash: "plainpass"}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	if _, err := svc.Authenticate(ctx, "old@example.com", "plainpass"); err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	stored, err := repo.GetByID(ctx, "u1")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if ok, rehash := auth.CheckPassword(stored.PasswordHash, "plainpass"); !ok || rehash {
		t.Fatalf("expected upgraded bcrypt hash, got %q", stored.PasswordHash)
	}
}

func TestFindOrCreateOAuth(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	created, err := svc.FindOrCreateOAuth(ctx, OAuthProfile{Email: "New@Example.com", FirstName: "New", Picture: "https://img.example.com/a.png"})
	if err != nil {
		t.Fatalf("FindOrCreateOAuth create: %v", err)
	}
	if created.Email != "new@example.com" || created.ProfilePhoto != "https://img.example.com/a.png" {
		t.Fatalf("unexpected created user %+v", created)
	}

	existing, err := svc.Register(ctx, "has@example.com", "secret1", "Kept", "")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	got, err := svc.FindOrCreateOAuth(ctx, OAuthProfile{Email: "has@example.com", FirstName: "Other", LastName: "Filled"})
	if err != nil {
		t.Fatalf("FindOrCreateOAuth existing: %v", err)
	}
	if got.ID != existing.ID || got.FirstName != "Kept" || got.LastName != "Filled" {
		t.Fatalf("expected only empty fields filled, got %+v", got)
	}

	if _, err := svc.FindOrCreateOAuth(ctx, OAuthProfile{}); !errors.Is(err, ErrEmailRequired) {
		t.Fatalf("expected ErrEmailRequired, got %v", err)
	}
}

func TestUpdateProfileOnlyTouchesProvidedFields(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	user, err := svc.Register(ctx, "jane@example.com", "secret1", "Jane", "Doe")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	company := "Acme"
	empty := ""
	updated, err := svc.UpdateProfile(ctx, user.ID, ProfilePatch{Company: &company, LastName: &empty})
	if err != nil {
		t.Fatalf("UpdateProfile: %v", err)
	}
	if updated.FirstName != "Jane" || updated.LastName != "" || updated.Company != "Acme" {
		t.Fatalf("unexpected profile %+v", updated)
	}

	gh := "https://github.com/jane"
	updated, err = svc.UpdateSocialLinks(ctx, user.ID, SocialPatch{GitHubURL: &gh})
	if err != nil {
		t.Fatalf("UpdateSocialLinks: %v", err)
	}
	if updated.GitHubURL != gh || updated.LinkedInURL != "" {
		t.Fatalf("unexpected links %+v", updated)
	}
}

func TestChangePassword(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	user, err := svc.Register(ctx, "jane@example.com", "secret1", "", "")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	tests := []struct {
		current, next, confirm string
		want                   error
	}{
		{current: "bad", next: "secret2", confirm: "secret2", want: ErrWrongPassword},
		{current: "secret1", next: "secret2", confirm: "secret3", want: ErrPasswordMismatch},
		{current: "secret1", next: "abc", confirm: "abc", want: ErrPasswordTooShort},
	}
	for _, tt := range tests {
		if err := svc.ChangePassword(ctx, user.ID, tt.current, tt.next, tt.confirm); !errors.Is(err, tt.want) {
			t.Fatalf("ChangePassword(%q,%q,%q) = %v, want %v", tt.current, tt.next, tt.confirm, err, tt.want)
		}
	}

	if err := svc.ChangePassword(ctx, user.ID, "secret1", "secret2", "secret2"); err != nil {
		t.Fatalf("ChangePassword: %v", err)
	}
	if _, err := svc.Authenticate(ctx, "jane@example.com", "secret2"); err != nil {
		t.Fatalf("expected new password to work: %v", err)
	}
}

func TestPhotoLifecycle(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	user, err := svc.Register(ctx, "jane@example.com", "secret1", "", "")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	png := append([]byte("\x89PNG\r\n\x1a\n"), bytes.Repeat([]byte{0}, 32)...)
	updated, err := svc.UploadPhoto(ctx, user.ID, "me.PNG", "image/png", bytes.NewReader(png))
	if err != nil {
		t.Fatalf("UploadPhoto: %v", err)
	}
	wantKey := "profile_photos/" + user.ID + "_1700000000.png"
	if updated.ProfilePhoto != wantKey {
		t.Fatalf("expected key %s, got %s", wantKey, updated.ProfilePhoto)
	}
	if url := updated.PhotoURL(); url == nil || *url != "/profile-photo/"+user.ID {
		t.Fatalf("unexpected photo url %v", url)
	}

	photo, err := svc.OpenPhoto(ctx, user.ID)
	if err != nil {
		t.Fatalf("OpenPhoto: %v", err)
	}
	if photo.ContentType != "image/png" {
		t.Fatalf("expected sniffed image/png, got %s", photo.ContentType)
	}

	// A second upload replaces and removes the first object.
	svc.Now = func() time.Time { return time.Unix(1700000100, 0) }
	if _, err := svc.UploadPhoto(ctx, user.ID, "me.png", "image/png", bytes.NewReader(png)); err != nil {
		t.Fatalf("UploadPhoto second: %v", err)
	}
	if _, err := svc.Store.Open(ctx, wantKey); err == nil {
		t.Fatal("expected previous photo to be deleted")
	}

	if err := svc.DeletePhoto(ctx, user.ID); err != nil {
		t.Fatalf("DeletePhoto: %v", err)
	}
	has, url, err := svc.PhotoInfo(ctx, user.ID)
	if err != nil {
		t.Fatalf("PhotoInfo: %v", err)
	}
	if has || url != nil {
		t.Fatalf("expected no photo, got has=%v url=%v", has, url)
	}
	photo, err = svc.OpenPhoto(ctx, user.ID)
	if err != nil {
		t.Fatalf("OpenPhoto: %v", err)
	}
	if photo.ContentType != "image/svg+xml" {
		t.Fatalf("expected default avatar, got %s", photo.ContentType)
	}
}

func TestUploadPhotoValidation(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	user, err := svc.Register(ctx, "jane@example.com", "secret1", "", "")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	if _, err := svc.UploadPhoto(ctx, user.ID, "x.bmp", "image/bmp", strings.NewReader("x")); !errors.Is(err, ErrPhotoType) {
		t.Fatalf("expected ErrPhotoType, got %v", err)
	}
	big := bytes.Repeat([]byte{1}, (1<<20)+1)
	if _, err := svc.UploadPhoto(ctx, user.ID, "x.jpg", "image/jpeg", bytes.NewReader(big)); !errors.Is(err, ErrPhotoTooLarge) {
		t.Fatalf("expected ErrPhotoTooLarge, got %v", err)
	}
}

func TestOpenPhotoExternalRedirects(t *testing.T) {
	svc := newTestService(t)
	user, err := svc.FindOrCreateOAuth(context.Background(), OAuthProfile{Email: "o@example.com", Picture: "https://cdn.example.com/p.jpg"})
	if err != nil {
		t.Fatalf("FindOrCreateOAuth: %v", err)
	}
	photo, err := svc.OpenPhoto(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("OpenPhoto: %v", err)
	}
	if photo.RedirectURL != "https://cdn.example.com/p.jpg" {
		t.Fatalf("expected redirect, got %+v", photo)
	}

	photo, err = svc.OpenPhoto(context.Background(), "missing")
	if err != nil {
		t.Fatalf("OpenPhoto missing: %v", err)
	}
	if photo.ContentType != "image/svg+xml" {
		t.Fatalf("expected default avatar for unknown user, got %s", photo.ContentType)
	}
}
