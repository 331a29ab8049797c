package analysis

import (
	"context"
	"strings"

	"resume-scanner/internal/llm/jsonfix"
)

// Improvement types.
const (
	TypeKeywords      = "keywords"
	TypeRole          = "role"
	TypeGrammar       = "grammar"
	TypeComprehensive = "comprehensive"
)

var improvementTitles = map[string]string{
	TypeKeywords:      "ATS Keyword Enhancement",
	TypeRole:          "Role Alignment & Metrics",
	TypeGrammar:       "Grammar & Style",
	TypeComprehensive: "Comprehensive Analysis",
}

// NormalizeImprovementType maps unknown types to comprehensive.
func NormalizeImprovementType(t string) string {
	t = strings.ToLower(strings.TrimSpace(t))
	switch t {
	case TypeKeywords, TypeRole, TypeGrammar:
		return t
	default:
		return TypeComprehensive
	}
}

// Improvements is a typed improvement report. Exactly one of the embedded
// reports is set, matching Type, and its fields are flattened into the JSON.
type Improvements struct {
	ResumeName string `json:"resume_name"`
	Type       string `json:"improvement_type"`
	Title      string `json:"improvement_type_title"`
	Mock       bool   `json:"mock"`

	*KeywordReport
	*RoleReport
	*GrammarReport
	*ComprehensiveReport
}

type KeywordSuggestion struct {
	Category string   `json:"category"`
	Missing  []string `json:"missing"`
	Reason   string   `json:"reason"`
}

type KeywordReport struct {
	MissingKeywords    []string            `json:"missing_keywords"`
	KeywordSuggestions []KeywordSuggestion `json:"keyword_suggestions"`
	ATSScoreImpact     string              `json:"ats_score_impact"`
}

type RoleSuggestion struct {
	Section     string `json:"section"`
	Improvement string `json:"improvement"`
	Example     string `json:"example"`
}

type RoleReport struct {
	MissingMetrics         []string         `json:"missing_metrics"`
	RoleSuggestions        []RoleSuggestion `json:"role_suggestions"`
	AchievementSuggestions []string         `json:"achievement_suggestions"`
}

type StyleSuggestion struct {
	Issue   string `json:"issue"`
	Fix     string `json:"fix"`
	Example string `json:"example"`
}

type GrammarReport struct {
	GrammarIssues      []string          `json:"grammar_issues"`
	StyleSuggestions   []StyleSuggestion `json:"style_suggestions"`
	FormattingIssues   []string          `json:"formatting_issues"`
	ClaritySuggestions []string          `json:"clarity_suggestions"`
}

type KeywordAnalysis struct {
	MissingEssential   []string `json:"missing_essential"`
	Overused           []string `json:"overused"`
	SuggestedAdditions []string `json:"suggested_additions"`
}

type ContentImprovement struct {
	Section      string `json:"section"`
	CurrentIssue string `json:"current_issue"`
	Suggestion   string `json:"suggestion"`
	Example      string `json:"example"`
}

type ComprehensiveReport struct {
	OverallScore        int                  `json:"overall_score"`
	Strengths           []string             `json:"strengths"`
	CriticalIssues      []string             `json:"critical_issues"`
	KeywordAnalysis     KeywordAnalysis      `json:"keyword_analysis"`
	ContentImprovements []ContentImprovement `json:"content_improvements"`
	ATSOptimization     []string             `json:"ats_optimization"`
	PriorityActions     []string             `json:"priority_actions"`
}

// Improvements produces a report of the requested type for a resume.
func (s *Service) Improvements(ctx context.Context, resume, improvementType, resumeName string) Improvements {
	typ := NormalizeImprovementType(improvementType)

	prompt, err := render("improve_"+typ+".tmpl", struct{ Resume string }{truncateRunes(resume, promptTextLimit)})
	if err == nil {
		var raw string
		raw, err = s.generate(ctx, OpImprovements, prompt)
		if err == nil {
			var obj map[string]any
			obj, err = jsonfix.Decode(raw)
			if err == nil {
				out := improvementsFromObject(obj, typ)
				out.ResumeName = resumeName
				return out
			}
		}
	}

	s.fallback(OpImprovements, err)
	out := mockImprovements(typ)
	out.ResumeName = resumeName
	return out
}

// improvementsFromObject coerces each field independently, so a badly shaped
// field comes back empty instead of discarding the rest of the answer.
func improvementsFromObject(obj map[string]any, typ string) Improvements {
	out := Improvements{Type: typ, Title: improvementTitles[typ]}
	switch typ {
	case TypeKeywords:
		out.KeywordReport = &KeywordReport{
			MissingKeywords:    toStrings(obj["missing_keywords"]),
			KeywordSuggestions: toObjects(obj["keyword_suggestions"], keywordSuggestion),
			ATSScoreImpact:     toString(obj["ats_score_impact"]),
		}
	case TypeRole:
		out.RoleReport = &RoleReport{
			MissingMetrics:         toStrings(obj["missing_metrics"]),
			RoleSuggestions:        toObjects(obj["role_suggestions"], roleSuggestion),
			AchievementSuggestions: toStrings(obj["achievement_suggestions"]),
		}
	case TypeGrammar:
		out.GrammarReport = &GrammarReport{
			GrammarIssues:      toStrings(obj["grammar_issues"]),
			StyleSuggestions:   toObjects(obj["style_suggestions"], styleSuggestion),
			FormattingIssues:   toStrings(obj["formatting_issues"]),
			ClaritySuggestions: toStrings(obj["clarity_suggestions"]),
		}
	default:
		ka, _ := obj["keyword_analysis"].(map[string]any)
		out.ComprehensiveReport = &ComprehensiveReport{
			OverallScore:   clampScore(toInt(obj["overall_score"])),
			Strengths:      toStrings(obj["strengths"]),
			CriticalIssues: toStrings(obj["critical_issues"]),
			KeywordAnalysis: KeywordAnalysis{
				MissingEssential:   toStrings(ka["missing_essential"]),
				Overused:           toStrings(ka["overused"]),
				SuggestedAdditions: toStrings(ka["suggested_additions"]),
			},
			ContentImprovements: toObjects(obj["content_improvements"], contentImprovement),
			ATSOptimization:     toStrings(obj["ats_optimization"]),
			PriorityActions:     toStrings(obj["priority_actions"]),
		}
	}
	return out
}

// toObjects turns a list of suggestion objects into T. A plain string item
// becomes a suggestion carrying that text, and a lone object or string is
// treated as a one-element list.
func toObjects[T any](v any, conv func(m map[string]any) T) []T {
	var items []any
	switch x := v.(type) {
	case []any:
		items = x
	case map[string]any, string:
		items = []any{x}
	}
	out := make([]T, 0, len(items))
	for _, item := range items {
		switch x := item.(type) {
		case map[string]any:
			out = append(out, conv(x))
		case string:
			if text := strings.TrimSpace(x); text != "" {
				out = append(out, conv(map[string]any{"": text}))
			}
		}
	}
	return out
}

func keywordSuggestion(m map[string]any) KeywordSuggestion {
	return KeywordSuggestion{
		Category: toString(m["category"]),
		Missing:  toStrings(m["missing"]),
		Reason:   firstString(m, "reason", ""),
	}
}

func roleSuggestion(m map[string]any) RoleSuggestion {
	return RoleSuggestion{
		Section:     toString(m["section"]),
		Improvement: firstString(m, "improvement", "description", ""),
		Example:     toString(m["example"]),
	}
}

func styleSuggestion(m map[string]any) StyleSuggestion {
	return StyleSuggestion{
		Issue:   toString(m["issue"]),
		Fix:     firstString(m, "fix", "description", ""),
		Example: toString(m["example"]),
	}
}

func contentImprovement(m map[string]any) ContentImprovement {
	return ContentImprovement{
		Section:      toString(m["section"]),
		CurrentIssue: toString(m["current_issue"]),
		Suggestion:   firstString(m, "suggestion", "description", ""),
		Example:      toString(m["example"]),
	}
}

// firstString returns the first non-empty value among keys. The empty key
// holds the text of a suggestion given as a bare string.
func firstString(m map[string]any, keys ...string) string {
	for _, k := range keys {
		if s := strings.TrimSpace(toString(m[k])); s != "" {
			return s
		}
	}
	return ""
}
