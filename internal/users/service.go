package users

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"resume-scanner/internal/shared/auth"
	"resume-scanner/internal/shared/storage/object"
	"resume-scanner/internal/shared/telemetry"
)

var (
	ErrEmailRequired      = errors.New("email is required")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrPasswordTooShort   = fmt.Errorf("password must be at least %d characters long", auth.MinPasswordLength)
	ErrPasswordMismatch   = errors.New("passwords do not match")
	ErrWrongPassword      = errors.New("current password is incorrect")
)

type Service struct {
	Repo         Repo
	Store        object.ObjectStore
	MaxPhotoSize int64
	Now          func() time.Time
}

func NewService(repo Repo, store object.ObjectStore, maxPhotoSize int64) *Service {
	return &Service{Repo: repo, Store: store, MaxPhotoSize: maxPhotoSize, Now: time.Now}
}

// NormalizeEmail trims and lower-cases an address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates a password account.
func (s *Service) Register(ctx context.Context, email, password, firstName, lastName string) (User, error) {
	email = NormalizeEmail(email)
	if email == "" {
		return User{}, ErrEmailRequired
	}
	if len(password) < auth.MinPasswordLength {
		return User{}, ErrPasswordTooShort
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return User{}, fmt.Errorf("hash password: %w", err)
	}
	user := User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: hash,
		FirstName:    strings.TrimSpace(firstName),
		LastName:     strings.TrimSpace(lastName),
	}
	if err := s.Repo.Create(ctx, user); err != nil {
		return User{}, err
	}
	return s.Repo.GetByID(ctx, user.ID)
}

// Authenticate checks credentials. Legacy plaintext passwords are upgraded
// to bcrypt on a successful match.
func (s *Service) Authenticate(ctx context.Context, email, password string) (User, error) {
	user, err := s.Repo.GetByEmail(ctx, NormalizeEmail(email))
	if errors.Is(err, ErrNotFound) {
		return User{}, ErrInvalidCredentials
	}
	if err != nil {
		return User{}, err
	}
	ok, needsRehash := auth.CheckPassword(user.PasswordHash, password)
	if !ok {
		return User{}, ErrInvalidCredentials
	}
	if needsRehash {
		if hash, err := auth.HashPassword(password); err == nil {
			user.PasswordHash = hash
			if err := s.Repo.Update(ctx, user); err != nil {
				telemetry.Warn("users.rehash_failed", map[string]any{"user_id": user.ID, "error": err})
			}
		}
	}
	return user, nil
}

// FindOrCreateOAuth returns the account for an OAuth identity, creating it
// with a random password on first sign-in. Existing accounts only get empty
// name and photo fields filled.
func (s *Service) FindOrCreateOAuth(ctx context.Context, p OAuthProfile) (User, error) {
	email := NormalizeEmail(p.Email)
	if email == "" {
		return User{}, ErrEmailRequired
	}

	user, err := s.Repo.GetByEmail(ctx, email)
	switch {
	case err == nil:
		changed := false
		if user.FirstName == "" && p.FirstName != "" {
			user.FirstName = p.FirstName
			changed = true
		}
		if user.LastName == "" && p.LastName != "" {
			user.LastName = p.LastName
			changed = true
		}
		if user.ProfilePhoto == "" && p.Picture != "" {
			user.ProfilePhoto = p.Picture
			changed = true
		}
		if changed {
			if err := s.Repo.Update(ctx, user); err != nil {
				return User{}, err
			}
		}
		return user, nil
	case !errors.Is(err, ErrNotFound):
		return User{}, err
	}

	password, err := auth.RandomPassword()
	if err != nil {
		return User{}, err
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return User{}, fmt.Errorf("hash password: %w", err)
	}
	user = User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: hash,
		FirstName:    p.FirstName,
		LastName:     p.LastName,
		ProfilePhoto: p.Picture,
	}
	if err := s.Repo.Create(ctx, user); err != nil {
		if errors.Is(err, ErrEmailTaken) {
			// Lost a race with a concurrent sign-in for the same address.
			return s.Repo.GetByEmail(ctx, email)
		}
		return User{}, err
	}
	return s.Repo.GetByID(ctx, user.ID)
}

func (s *Service) GetByID(ctx context.Context, userID string) (User, error) {
	if strings.TrimSpace(userID) == "" {
		return User{}, ErrNotFound
	}
	return s.Repo.GetByID(ctx, userID)
}

func (s *Service) GetByEmail(ctx context.Context, email string) (User, error) {
	email = NormalizeEmail(email)
	if email == "" {
		return User{}, ErrNotFound
	}
	return s.Repo.GetByEmail(ctx, email)
}

// UpdateProfile applies the non-nil fields of patch.
func (s *Service) UpdateProfile(ctx context.Context, userID string, patch ProfilePatch) (User, error) {
	user, err := s.GetByID(ctx, userID)
	if err != nil {
		return User{}, err
	}
	apply(&user.FirstName, patch.FirstName)
	apply(&user.LastName, patch.LastName)
	apply(&user.MobileNumber, patch.MobileNumber)
	apply(&user.Company, patch.Company)
	apply(&user.JobTitle, patch.JobTitle)
	apply(&user.Location, patch.Location)
	apply(&user.Bio, patch.Bio)
	if err := s.Repo.Update(ctx, user); err != nil {
		return User{}, err
	}
	return s.Repo.GetByID(ctx, userID)
}

// UpdateSocialLinks applies the non-nil fields of patch.
func (s *Service) UpdateSocialLinks(ctx context.Context, userID string, patch SocialPatch) (User, error) {
	user, err := s.GetByID(ctx, userID)
	if err != nil {
		return User{}, err
	}
	apply(&user.LinkedInURL, patch.LinkedInURL)
	apply(&user.GitHubURL, patch.GitHubURL)
	apply(&user.WebsiteURL, patch.WebsiteURL)
	if err := s.Repo.Update(ctx, user); err != nil {
		return User{}, err
	}
	return s.Repo.GetByID(ctx, userID)
}

// ChangePassword verifies the current password before setting a new one.
func (s *Service) ChangePassword(ctx context.Context, userID, current, next, confirm string) error {
	user, err := s.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if ok, _ := auth.CheckPassword(user.PasswordHash, current); !ok {
		return ErrWrongPassword
	}
	if next != confirm {
		return ErrPasswordMismatch
	}
	if len(next) < auth.MinPasswordLength {
		return ErrPasswordTooShort
	}
	return s.setPassword(ctx, user, next)
}

// SetPassword replaces the password without checking the old one.
func (s *Service) SetPassword(ctx context.Context, userID, next string) error {
	if len(next) < auth.MinPasswordLength {
		return ErrPasswordTooShort
	}
	user, err := s.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	return s.setPassword(ctx, user, next)
}

func (s *Service) setPassword(ctx context.Context, user User, next string) error {
	hash, err := auth.HashPassword(next)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	user.PasswordHash = hash
	return s.Repo.Update(ctx, user)
}

func (s *Service) now() time.Time {
	if s.Now == nil {
		return time.Now()
	}
	return s.Now()
}

func apply(dst *string, v *string) {
	if v != nil {
		*dst = strings.TrimSpace(*v)
	}
}
