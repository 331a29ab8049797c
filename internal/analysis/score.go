package analysis

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"resume-scanner/internal/llm/jsonfix"
)

// ScanResult is the outcome of scoring a single resume.
type ScanResult struct {
	Score       int      `json:"score"`
	Feedback    string   `json:"feedback"`
	Strengths   []string `json:"strengths"`
	Weaknesses  []string `json:"weaknesses"`
	Suggestions []string `json:"suggestions"`
	Mock        bool     `json:"mock"`
}

// ScoreResume asks the model for an ATS-style score of text.
func (s *Service) ScoreResume(ctx context.Context, text, fileName string) ScanResult {
	if strings.TrimSpace(text) == "" {
		text = fmt.Sprintf("[Could not extract text from file. Filename: %s]", fileName)
	}

	prompt, err := render("score.tmpl", struct{ FileName, Text string }{fileName, text})
	if err == nil {
		var raw string
		raw, err = s.generate(ctx, OpScore, prompt)
		if err == nil {
			var obj map[string]any
			obj, err = jsonfix.Parse(raw)
			if err == nil && len(obj) == 0 {
				err = errors.New("empty json object")
			}
			if err == nil {
				return scanFromObject(obj)
			}
		}
	}

	s.fallback(OpScore, err)
	return s.mockScan()
}

func scanFromObject(obj map[string]any) ScanResult {
	suggestions := toStrings(obj["suggestions"])
	feedback := toString(obj["feedback"])
	if len(suggestions) > 0 {
		feedback = "Suggestions: " + strings.Join(suggestions, "; ")
	}
	return ScanResult{
		Score:       clampScore(toInt(obj["score"])),
		Feedback:    feedback,
		Strengths:   toStrings(obj["strengths"]),
		Weaknesses:  toStrings(obj["weaknesses"]),
		Suggestions: suggestions,
	}
}
