// Package matching runs the quota-gated AI operations that combine a stored
// resume with a job description: compare, cover letter and improve.
package matching

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"resume-scanner/internal/analysis"
	"resume-scanner/internal/jobdescriptions"
	"resume-scanner/internal/resumes"
	"resume-scanner/internal/shared/telemetry"
	"resume-scanner/internal/usage"
	"resume-scanner/internal/users"
)

// MinJDLength is the shortest saved job description accepted for comparison.
const MinJDLength = 50

var (
	ErrAdhocIncomplete = errors.New("job title, company and content are required")
	ErrSourceNotFound  = errors.New("resume or job description not found")
	ErrInvalidFormat   = errors.New("invalid format")
	ErrNotImplemented  = errors.New("not yet implemented")
)

// ShortJDError reports a saved job description too thin to compare against.
type ShortJDError struct {
	Length int
}

func (e *ShortJDError) Error() string {
	return fmt.Sprintf("Job description content is too short (%d characters). Please add more details.", e.Length)
}

// Profiles looks up the applicant's contact details.
type Profiles interface {
	GetByID(ctx context.Context, userID string) (users.User, error)
}

type Service struct {
	Resumes  *resumes.Service
	JDs      *jobdescriptions.Service
	Profiles Profiles
	Analysis *analysis.Service
	Quota    resumes.Quota
}

// CompareRequest selects a saved job description by JDID, or describes an
// ad-hoc one through Title, Company and Content.
type CompareRequest struct {
	ResumeID string
	JDID     string
	Title    string
	Company  string
	Content  string
}

// Compare scores a resume against a job description and charges one scan.
func (s *Service) Compare(ctx context.Context, acct usage.Account, req CompareRequest) (analysis.CompareResult, error) {
	if _, err := s.Quota.Check(ctx, acct); err != nil {
		return analysis.CompareResult{}, err
	}
	scan, err := s.Resumes.Get(ctx, acct.UserID, req.ResumeID)
	if err != nil {
		return analysis.CompareResult{}, err
	}

	var content, title string
	if strings.TrimSpace(req.JDID) != "" {
		jd, err := s.JDs.Get(ctx, acct.UserID, req.JDID)
		if err != nil {
			return analysis.CompareResult{}, err
		}
		if utf8.RuneCountInString(strings.TrimSpace(jd.Content)) < MinJDLength {
			return analysis.CompareResult{}, &ShortJDError{Length: utf8.RuneCountInString(jd.Content)}
		}
		content, title = jd.Content, jd.DisplayTitle()
	} else {
		t, co, body := strings.TrimSpace(req.Title), strings.TrimSpace(req.Company), strings.TrimSpace(req.Content)
		if t == "" || co == "" || body == "" {
			return analysis.CompareResult{}, ErrAdhocIncomplete
		}
		content, title = body, t+" at "+co
	}

	res := s.Analysis.Compare(ctx, analysis.CompareInput{
		Resume:         s.resumeText(ctx, scan),
		JobDescription: content,
		ResumeName:     scan.OriginalFilename,
		JDTitle:        title,
	})
	if _, err := s.Quota.Consume(ctx, acct); err != nil {
		return analysis.CompareResult{}, err
	}
	return res, nil
}

// CoverLetterRequest picks the sources and optional contact overrides.
// Empty contact fields are filled from the user's profile.
type CoverLetterRequest struct {
	ResumeID string
	JDID     string
	Name     string
	Email    string
	Phone    string
	Options  analysis.CoverLetterOptions
}

// CoverLetter generates a letter and charges one scan.
func (s *Service) CoverLetter(ctx context.Context, acct usage.Account, req CoverLetterRequest) (analysis.CoverLetter, error) {
	if _, err := s.Quota.Check(ctx, acct); err != nil {
		return analysis.CoverLetter{}, err
	}
	in, err := s.coverLetterInput(ctx, acct.UserID, req)
	if err != nil {
		return analysis.CoverLetter{}, err
	}
	letter := s.Analysis.CoverLetter(ctx, in)
	if _, err := s.Quota.Consume(ctx, acct); err != nil {
		return analysis.CoverLetter{}, err
	}
	return letter, nil
}

// RegenerateCoverLetter produces another variant without charging quota.
func (s *Service) RegenerateCoverLetter(ctx context.Context, acct usage.Account, req CoverLetterRequest) (analysis.CoverLetter, error) {
	in, err := s.coverLetterInput(ctx, acct.UserID, req)
	if err != nil {
		return analysis.CoverLetter{}, err
	}
	return s.Analysis.CoverLetter(ctx, in), nil
}

// Improve runs an improvement report and charges one scan.
func (s *Service) Improve(ctx context.Context, acct usage.Account, resumeID, improvementType string) (analysis.Improvements, error) {
	if _, err := s.Quota.Check(ctx, acct); err != nil {
		return analysis.Improvements{}, err
	}
	res, err := s.Resumes.Improvements(ctx, acct.UserID, resumeID, improvementType)
	if err != nil {
		return analysis.Improvements{}, err
	}
	if _, err := s.Quota.Consume(ctx, acct); err != nil {
		return analysis.Improvements{}, err
	}
	return res, nil
}

// DownloadCoverLetter is a placeholder for rendered downloads.
func DownloadCoverLetter(format string) error {
	switch strings.ToLower(format) {
	case "docx", "pdf":
		return fmt.Errorf("%s download %w", strings.ToUpper(format), ErrNotImplemented)
	default:
		return ErrInvalidFormat
	}
}

func (s *Service) coverLetterInput(ctx context.Context, userID string, req CoverLetterRequest) (analysis.CoverLetterInput, error) {
	scan, err := s.Resumes.Get(ctx, userID, req.ResumeID)
	if errors.Is(err, resumes.ErrNotFound) {
		return analysis.CoverLetterInput{}, ErrSourceNotFound
	}
	if err != nil {
		return analysis.CoverLetterInput{}, err
	}
	jd, err := s.JDs.Get(ctx, userID, req.JDID)
	if errors.Is(err, jobdescriptions.ErrNotFound) {
		return analysis.CoverLetterInput{}, ErrSourceNotFound
	}
	if err != nil {
		return analysis.CoverLetterInput{}, err
	}

	name, email, phone := strings.TrimSpace(req.Name), strings.TrimSpace(req.Email), strings.TrimSpace(req.Phone)
	if name == "" || email == "" || phone == "" {
		user, err := s.Profiles.GetByID(ctx, userID)
		if err != nil && !errors.Is(err, users.ErrNotFound) {
			return analysis.CoverLetterInput{}, err
		}
		if name == "" {
			name = strings.TrimSpace(user.FirstName + " " + user.LastName)
		}
		if email == "" {
			email = user.Email
		}
		if phone == "" {
			phone = user.MobileNumber
		}
	}

	return analysis.CoverLetterInput{
		Resume:         s.resumeText(ctx, scan),
		JobDescription: jd.Content,
		Title:          jd.Title,
		Company:        jd.Company,
		Name:           name,
		Email:          email,
		Phone:          phone,
		Options:        req.Options,
	}, nil
}

func (s *Service) resumeText(ctx context.Context, scan resumes.Scan) string {
	text, err := s.Resumes.ResumeText(ctx, scan)
	if err != nil {
		telemetry.Warn("matching.resume_text_unavailable", map[string]any{"resume_id": scan.ID, "error": err})
		return ""
	}
	return text
}
