package resumes

import (
	"encoding/json"
	"path"
	"time"
)

// Scan is an uploaded resume together with its scoring.
type Scan struct {
	ID               string
	UserID           string
	StorageKey       string
	OriginalFilename string
	FileSize         int64
	FileType         string
	ATSScore         int
	Feedback         string
	Analysis         json.RawMessage
	CreatedAt        time.Time
}

// View is the JSON shape of a scan.
type View struct {
	ID               string          `json:"id"`
	Filename         string          `json:"filename"`
	OriginalFilename string          `json:"original_filename"`
	ATSScore         int             `json:"ats_score"`
	Feedback         string          `json:"feedback"`
	FileSize         int64           `json:"file_size"`
	FileType         string          `json:"file_type"`
	Timestamp        time.Time       `json:"timestamp"`
	Analysis         json.RawMessage `json:"analysis"`
}

func (s Scan) View() View {
	analysis := s.Analysis
	if len(analysis) == 0 {
		analysis = json.RawMessage("null")
	}
	return View{
		ID:               s.ID,
		Filename:         path.Base(s.StorageKey),
		OriginalFilename: s.OriginalFilename,
		ATSScore:         s.ATSScore,
		Feedback:         s.Feedback,
		FileSize:         s.FileSize,
		FileType:         s.FileType,
		Timestamp:        s.CreatedAt,
		Analysis:         analysis,
	}
}

// storedAnalysis is what gets persisted in the analysis column.
type storedAnalysis struct {
	Score       int      `json:"score"`
	Strengths   []string `json:"strengths"`
	Weaknesses  []string `json:"weaknesses"`
	Suggestions []string `json:"suggestions"`
	Mock        bool     `json:"mock,omitempty"`
}

// UploadResult is returned after a resume has been stored and scored.
type UploadResult struct {
	ResumeID    string   `json:"resume_id"`
	Filename    string   `json:"filename"`
	ATSScore    int      `json:"ats_score"`
	FileSize    int64    `json:"file_size"`
	Feedback    string   `json:"feedback"`
	Strengths   []string `json:"strengths"`
	Weaknesses  []string `json:"weaknesses"`
	Suggestions []string `json:"suggestions"`
	ScansLeft   int      `json:"scans_left"`
	Mock        bool     `json:"mock"`
}
