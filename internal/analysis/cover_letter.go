package analysis

import (
	"context"
	"errors"
	"strings"
)

// CoverLetterOptions toggles extra instructions in the prompt.
type CoverLetterOptions struct {
	IncludeAchievements bool `json:"include_achievements"`
	EmphasizeSkills     bool `json:"emphasize_skills"`
	AddPassion          bool `json:"add_passion"`
	ProfessionalTone    bool `json:"professional_tone"`
}

// CoverLetterInput is everything the model needs to write a letter.
type CoverLetterInput struct {
	Resume         string
	JobDescription string
	Title          string
	Company        string
	Name           string
	Email          string
	Phone          string
	Options        CoverLetterOptions
}

// CoverLetter is the generated letter body plus the applicant's contact details.
type CoverLetter struct {
	Paragraphs []string `json:"paragraphs"`
	YourName   string   `json:"your_name"`
	YourEmail  string   `json:"your_email"`
	YourPhone  string   `json:"your_phone"`
	Mock       bool     `json:"mock"`
}

// Greetings, closings and preambles the template adds itself.
var unwantedPhrases = []string{
	"Here's a professional cover letter for",
	"Here is a professional cover letter for",
	"Here is the cover letter body:",
	"Here's the cover letter body:",
	"Dear Hiring Manager,",
	"Sincerely,",
	"Best regards,",
	"Thank you for your consideration.",
}

func (o CoverLetterOptions) instructions() []string {
	var out []string
	if o.IncludeAchievements {
		out = append(out, "Emphasize specific achievements and quantifiable results")
	}
	if o.EmphasizeSkills {
		out = append(out, "Highlight relevant technical and soft skills")
	}
	if o.AddPassion {
		out = append(out, "Show genuine enthusiasm and passion for the role")
	}
	if o.ProfessionalTone {
		out = append(out, "Use a formal, professional tone throughout")
	}
	return out
}

// CoverLetter writes a tailored cover letter body.
func (s *Service) CoverLetter(ctx context.Context, in CoverLetterInput) CoverLetter {
	prompt, err := render("cover_letter.tmpl", struct {
		CoverLetterInput
		Instructions []string
	}{in, in.Options.instructions()})
	if err == nil {
		var raw string
		raw, err = s.generate(ctx, OpCoverLetter, prompt)
		if err == nil {
			paragraphs := CleanParagraphs(raw)
			if len(paragraphs) > 0 {
				return CoverLetter{
					Paragraphs: paragraphs,
					YourName:   in.Name,
					YourEmail:  in.Email,
					YourPhone:  in.Phone,
				}
			}
			err = errors.New("llm returned empty output")
		}
	}

	s.fallback(OpCoverLetter, err)
	return mockCoverLetter(in)
}

// CleanParagraphs removes greetings, closings and preambles from raw model
// output and splits it on blank lines.
func CleanParagraphs(raw string) []string {
	text := strings.TrimSpace(raw)
	for _, phrase := range unwantedPhrases {
		text = strings.TrimSpace(strings.ReplaceAll(text, phrase, ""))
	}

	text = strings.ReplaceAll(text, "\r\n", "\n")
	var out []string
	for _, p := range strings.Split(text, "\n\n") {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
