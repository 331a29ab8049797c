// Package resumes stores uploaded resumes and their ATS scans.
package resumes

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"resume-scanner/internal/analysis"
	"resume-scanner/internal/extract"
	"resume-scanner/internal/shared/storage/object"
	"resume-scanner/internal/shared/telemetry"
	"resume-scanner/internal/shared/util"
	"resume-scanner/internal/usage"
)

var (
	ErrInvalidFile  = errors.New("only PDF or DOCX files are allowed")
	ErrFileTooLarge = errors.New("file too large")
	ErrInvalidInput = errors.New("invalid input")
)

const keyPrefix = "resumes/"

// Quota is the part of the usage service that gates scans.
type Quota interface {
	Check(ctx context.Context, a usage.Account) (usage.Usage, error)
	Consume(ctx context.Context, a usage.Account) (usage.Usage, error)
}

type Service struct {
	Repo        Repo
	Store       object.ObjectStore
	Analysis    *analysis.Service
	Quota       Quota
	MaxFileSize int64
	Now         func() time.Time
}

func NewService(repo Repo, store object.ObjectStore, an *analysis.Service, quota Quota, maxFileSize int64) *Service {
	return &Service{Repo: repo, Store: store, Analysis: an, Quota: quota, MaxFileSize: maxFileSize, Now: time.Now}
}

// Upload validates, stores, extracts and scores a resume, then charges one scan.
func (s *Service) Upload(ctx context.Context, acct usage.Account, fileName string, r io.Reader) (UploadResult, error) {
	if _, err := s.Quota.Check(ctx, acct); err != nil {
		return UploadResult{}, err
	}
	if !extract.AllowedResume(fileName) {
		return UploadResult{}, ErrInvalidFile
	}

	limit := s.maxFileSize()
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return UploadResult{}, fmt.Errorf("read upload: %w", err)
	}
	if int64(len(data)) > limit {
		return UploadResult{}, ErrFileTooLarge
	}

	key, err := s.objectKey(acct.UserID, fileName)
	if err != nil {
		return UploadResult{}, ErrInvalidFile
	}
	contentType := extract.ContentType(fileName)
	size, err := s.Store.Put(ctx, key, contentType, bytes.NewReader(data))
	if err != nil {
		return UploadResult{}, fmt.Errorf("store resume: %w", err)
	}

	text, err := extract.ExtractText(ctx, data, fileName)
	if err != nil {
		telemetry.Warn("resumes.extract_failed", map[string]any{"user_id": acct.UserID, "key": key, "error": err})
		text = ""
	} else if err := extract.SaveExtracted(ctx, s.Store, key, text); err != nil {
		telemetry.Warn("resumes.save_extracted_failed", map[string]any{"key": key, "error": err})
	}

	result := s.Analysis.ScoreResume(ctx, text, fileName)
	payload, err := json.Marshal(storedAnalysis{
		Score:       result.Score,
		Strengths:   result.Strengths,
		Weaknesses:  result.Weaknesses,
		Suggestions: result.Suggestions,
		Mock:        result.Mock,
	})
	if err != nil {
		return UploadResult{}, err
	}

	scan := Scan{
		ID:               uuid.NewString(),
		UserID:           acct.UserID,
		StorageKey:       key,
		OriginalFilename: fileName,
		FileSize:         size,
		FileType:         contentType,
		ATSScore:         result.Score,
		Feedback:         result.Feedback,
		Analysis:         payload,
		CreatedAt:        s.now(),
	}
	if err := s.Repo.Create(ctx, scan); err != nil {
		s.deleteObjects(ctx, key)
		return UploadResult{}, err
	}

	u, err := s.Quota.Consume(ctx, acct)
	if err != nil {
		return UploadResult{}, err
	}
	telemetry.Info("resumes.uploaded", map[string]any{"user_id": acct.UserID, "resume_id": scan.ID, "score": scan.ATSScore})

	return UploadResult{
		ResumeID:    scan.ID,
		Filename:    scan.OriginalFilename,
		ATSScore:    scan.ATSScore,
		FileSize:    scan.FileSize,
		Feedback:    scan.Feedback,
		Strengths:   result.Strengths,
		Weaknesses:  result.Weaknesses,
		Suggestions: result.Suggestions,
		ScansLeft:   u.Remaining,
		Mock:        result.Mock,
	}, nil
}

// List returns the user's scans, newest first.
func (s *Service) List(ctx context.Context, userID string) ([]Scan, error) {
	return s.Repo.ListByUser(ctx, userID)
}

func (s *Service) Get(ctx context.Context, userID, id string) (Scan, error) {
	if strings.TrimSpace(id) == "" {
		return Scan{}, ErrNotFound
	}
	return s.Repo.Get(ctx, userID, id)
}

// Delete removes the scan and its stored objects.
func (s *Service) Delete(ctx context.Context, userID, id string) error {
	scan, err := s.Get(ctx, userID, id)
	if err != nil {
		return err
	}
	if err := s.Repo.Delete(ctx, userID, id); err != nil {
		return err
	}
	s.deleteObjects(ctx, scan.StorageKey)
	telemetry.Info("resumes.deleted", map[string]any{"user_id": userID, "resume_id": id})
	return nil
}

// Rename changes the display name, keeping the original extension, and
// moves the stored file to a key derived from the new name.
func (s *Service) Rename(ctx context.Context, userID, id, newName string) (Scan, error) {
	newName = strings.TrimSpace(newName)
	if newName == "" {
		return Scan{}, ErrInvalidInput
	}
	scan, err := s.Get(ctx, userID, id)
	if err != nil {
		return Scan{}, err
	}

	display := newName
	if ext := filepath.Ext(scan.OriginalFilename); ext != "" && !strings.HasSuffix(newName, ext) {
		display = newName + ext
	}
	newKey, err := s.objectKey(userID, display)
	if err != nil {
		return Scan{}, ErrInvalidInput
	}

	if newKey == scan.StorageKey {
		if err := s.Repo.UpdateFile(ctx, userID, id, newKey, display); err != nil {
			return Scan{}, err
		}
		return s.Repo.Get(ctx, userID, id)
	}

	moved := true
	if _, err := object.Copy(ctx, s.Store, scan.StorageKey, newKey, scan.FileType); err != nil {
		if !errors.Is(err, object.ErrNotFound) {
			return Scan{}, fmt.Errorf("copy resume: %w", err)
		}
		telemetry.Warn("resumes.rename_missing_file", map[string]any{"key": scan.StorageKey})
		moved = false
	}
	if moved {
		if _, err := object.Copy(ctx, s.Store, extract.ExtractedKey(scan.StorageKey), extract.ExtractedKey(newKey), "text/plain; charset=utf-8"); err != nil && !errors.Is(err, object.ErrNotFound) {
			telemetry.Warn("resumes.rename_extracted_failed", map[string]any{"key": scan.StorageKey, "error": err})
		}
	}

	if err := s.Repo.UpdateFile(ctx, userID, id, newKey, display); err != nil {
		return Scan{}, err
	}
	if moved {
		s.deleteObjects(ctx, scan.StorageKey)
	}
	telemetry.Info("resumes.renamed", map[string]any{"resume_id": id, "from": scan.OriginalFilename, "to": display})
	return s.Repo.Get(ctx, userID, id)
}

// ResumeText returns the cached extracted text, re-extracting from the
// stored file when the cache is missing or empty.
func (s *Service) ResumeText(ctx context.Context, scan Scan) (string, error) {
	text, err := extract.LoadExtracted(ctx, s.Store, scan.StorageKey)
	if err == nil && strings.TrimSpace(text) != "" {
		return text, nil
	}
	return extract.FromStore(ctx, s.Store, scan.StorageKey, scan.OriginalFilename)
}

// Improvements runs the improvement analysis for one of the user's resumes.
func (s *Service) Improvements(ctx context.Context, userID, id, improvementType string) (analysis.Improvements, error) {
	scan, err := s.Get(ctx, userID, id)
	if err != nil {
		return analysis.Improvements{}, err
	}
	text, err := s.ResumeText(ctx, scan)
	if err != nil {
		telemetry.Warn("resumes.text_unavailable", map[string]any{"resume_id": id, "error": err})
	}
	return s.Analysis.Improvements(ctx, text, improvementType, scan.OriginalFilename), nil
}

func (s *Service) objectKey(userID, fileName string) (string, error) {
	name, err := util.SanitizeFileName(fileName)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s%s_%d_%s", keyPrefix, userID, s.now().Unix(), name), nil
}

func (s *Service) deleteObjects(ctx context.Context, key string) {
	for _, k := range []string{key, extract.ExtractedKey(key)} {
		if err := s.Store.Delete(ctx, k); err != nil && !errors.Is(err, object.ErrNotFound) {
			telemetry.Warn("resumes.delete_object_failed", map[string]any{"key": k, "error": err})
		}
	}
}

func (s *Service) maxFileSize() int64 {
	if s.MaxFileSize <= 0 {
		return 10 << 20
	}
	return s.MaxFileSize
}

func (s *Service) now() time.Time {
	if s.Now == nil {
		return time.Now().UTC()
	}
	return s.Now().UTC()
}
