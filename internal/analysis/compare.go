package analysis

import (
	"context"

	"resume-scanner/internal/llm/jsonfix"
)

// CompareInput names the two documents being matched.
type CompareInput struct {
	Resume         string
	JobDescription string
	ResumeName     string
	JDTitle        string
}

// CompareResult describes how well a resume fits a job description.
type CompareResult struct {
	MatchScore      int      `json:"match_score"`
	ATSScore        int      `json:"ats_score"`
	Strengths       []string `json:"strengths"`
	Weaknesses      []string `json:"weaknesses"`
	Improvements    []string `json:"improvements"`
	MatchedKeywords []string `json:"matched_keywords"`
	MissingKeywords []string `json:"missing_keywords"`
	ExperienceMatch string   `json:"experience_match"`
	SkillsAlignment int      `json:"skills_alignment"`
	Recommendation  string   `json:"recommendation"`
	ResumeName      string   `json:"resume_name"`
	JDTitle         string   `json:"jd_title"`
	Mock            bool     `json:"mock"`
}

var (
	defaultStrengths = []string{
		"Resume shows relevant experience",
		"Clear professional formatting",
	}
	defaultWeaknesses = []string{
		"Could benefit from more specific achievements",
		"Missing some key industry keywords",
	}
	defaultImprovements = []string{
		"Quantify achievements with specific numbers",
		"Add more industry-specific keywords",
		"Include measurable results",
	}
)

// Compare scores a resume against a job description.
func (s *Service) Compare(ctx context.Context, in CompareInput) CompareResult {
	prompt, err := render("compare.tmpl", CompareInput{
		Resume:         truncateRunes(in.Resume, promptTextLimit),
		JobDescription: truncateRunes(in.JobDescription, promptTextLimit),
		ResumeName:     in.ResumeName,
		JDTitle:        in.JDTitle,
	})
	if err == nil {
		var raw string
		raw, err = s.generate(ctx, OpCompare, prompt)
		if err == nil {
			var obj map[string]any
			obj, err = jsonfix.Decode(raw)
			if err == nil {
				return compareFromObject(obj, in)
			}
		}
	}

	s.fallback(OpCompare, err)
	return s.mockCompare(in)
}

func compareFromObject(obj map[string]any, in CompareInput) CompareResult {
	res := CompareResult{
		MatchScore:      toInt(obj["match_score"]),
		ATSScore:        toInt(obj["ats_score"]),
		Strengths:       toStrings(obj["strengths"]),
		Weaknesses:      toStrings(obj["weaknesses"]),
		Improvements:    toStrings(obj["improvements"]),
		MatchedKeywords: toStrings(obj["matched_keywords"]),
		MissingKeywords: toStrings(obj["missing_keywords"]),
		ExperienceMatch: toString(obj["experience_match"]),
		SkillsAlignment: toInt(obj["skills_alignment"]),
		Recommendation:  toString(obj["recommendation"]),
		ResumeName:      toString(obj["resume_name"]),
		JDTitle:         toString(obj["jd_title"]),
	}
	if len(res.Strengths) == 0 {
		res.Strengths = append([]string(nil), defaultStrengths...)
	}
	if len(res.Weaknesses) == 0 {
		res.Weaknesses = append([]string(nil), defaultWeaknesses...)
	}
	if len(res.Improvements) == 0 {
		res.Improvements = append([]string(nil), defaultImprovements...)
	}
	if res.ResumeName == "" {
		res.ResumeName = in.ResumeName
	}
	if res.JDTitle == "" {
		res.JDTitle = in.JDTitle
	}
	return res
}
