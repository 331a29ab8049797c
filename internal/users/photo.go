package users

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"resume-scanner/internal/shared/storage/object"
	"resume-scanner/internal/shared/telemetry"
)

var (
	ErrPhotoType     = errors.New("invalid photo type")
	ErrPhotoTooLarge = errors.New("photo too large")
)

const photoPrefix = "profile_photos/"

var allowedPhotoTypes = map[string]string{
	"image/jpeg": "jpg",
	"image/jpg":  "jpg",
	"image/png":  "png",
	"image/gif":  "gif",
	"image/webp": "webp",
}

// DefaultAvatarSVG is served when a user has no usable photo.
const DefaultAvatarSVG = `<svg width="120" height="120" xmlns="http://www.w3.org/2000/svg">
    <circle cx="60" cy="60" r="60" fill="#667eea"/>
    <circle cx="60" cy="45" r="20" fill="white"/>
    <path d="M30 90 Q60 70 90 90" stroke="white" stroke-width="8" fill="none" stroke-linecap="round"/>
</svg>`

// UploadPhoto stores a new profile photo and removes the previous stored one.
func (s *Service) UploadPhoto(ctx context.Context, userID, fileName, contentType string, r io.Reader) (User, error) {
	contentType = strings.ToLower(strings.TrimSpace(strings.Split(contentType, ";")[0]))
	defaultExt, ok := allowedPhotoTypes[contentType]
	if !ok {
		return User{}, ErrPhotoType
	}
	user, err := s.GetByID(ctx, userID)
	if err != nil {
		return User{}, err
	}

	limit := s.photoLimit()
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return User{}, fmt.Errorf("read photo: %w", err)
	}
	if int64(len(data)) > limit {
		return User{}, ErrPhotoTooLarge
	}

	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(fileName)), ".")
	if ext == "" {
		ext = defaultExt
	}
	key := fmt.Sprintf("%s%s_%d.%s", photoPrefix, user.ID, s.now().Unix(), ext)
	if _, err := s.Store.Put(ctx, key, contentType, bytes.NewReader(data)); err != nil {
		return User{}, fmt.Errorf("store photo: %w", err)
	}

	previous := user.ProfilePhoto
	hadStored := user.HasStoredPhoto()
	user.ProfilePhoto = key
	if err := s.Repo.Update(ctx, user); err != nil {
		_ = s.Store.Delete(ctx, key)
		return User{}, err
	}
	if hadStored && previous != key {
		if err := s.Store.Delete(ctx, previous); err != nil {
			telemetry.Warn("users.photo_cleanup_failed", map[string]any{"user_id": user.ID, "key": previous, "error": err})
		}
	}
	return s.Repo.GetByID(ctx, userID)
}

// DeletePhoto clears the photo and removes any stored object.
func (s *Service) DeletePhoto(ctx context.Context, userID string) error {
	user, err := s.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if user.HasStoredPhoto() {
		if err := s.Store.Delete(ctx, user.ProfilePhoto); err != nil && !errors.Is(err, object.ErrNotFound) {
			return fmt.Errorf("delete photo: %w", err)
		}
	}
	user.ProfilePhoto = ""
	return s.Repo.Update(ctx, user)
}

// PhotoInfo reports whether the user has a photo and its URL.
func (s *Service) PhotoInfo(ctx context.Context, userID string) (bool, *string, error) {
	user, err := s.GetByID(ctx, userID)
	if err != nil {
		return false, nil, err
	}
	url := user.PhotoURL()
	return url != nil, url, nil
}

// Photo is what GET /profile-photo/:id serves.
type Photo struct {
	Data        []byte
	ContentType string
	// RedirectURL is set for external photos.
	RedirectURL string
}

// OpenPhoto loads a user's photo, falling back to the default avatar when the
// user or the stored object is missing.
func (s *Service) OpenPhoto(ctx context.Context, userID string) (Photo, error) {
	fallback := Photo{Data: []byte(DefaultAvatarSVG), ContentType: "image/svg+xml"}

	user, err := s.GetByID(ctx, userID)
	if errors.Is(err, ErrNotFound) {
		return fallback, nil
	}
	if err != nil {
		return Photo{}, err
	}
	if user.HasExternalPhoto() {
		return Photo{RedirectURL: user.ProfilePhoto}, nil
	}
	if !user.HasStoredPhoto() {
		return fallback, nil
	}

	body, err := s.Store.Open(ctx, user.ProfilePhoto)
	if errors.Is(err, object.ErrNotFound) {
		return fallback, nil
	}
	if err != nil {
		return Photo{}, err
	}
	defer body.Close()
	data, err := io.ReadAll(body)
	if err != nil {
		return Photo{}, err
	}
	return Photo{Data: data, ContentType: http.DetectContentType(data)}, nil
}

func (s *Service) photoLimit() int64 {
	if s.MaxPhotoSize <= 0 {
		return 5 << 20
	}
	return s.MaxPhotoSize
}
