package analysis

import "fmt"

func (s *Service) mockScan() ScanResult {
	strengths := []string{"Concise summary"}
	if s.coin() {
		strengths = []string{"Clear formatting", "Relevant experience"}
	}
	weaknesses := []string{"Too generic summary"}
	if s.coin() {
		weaknesses = []string{"Missing metrics", "Weak keywords"}
	}
	return ScanResult{
		Score:      s.intn(35, 90),
		Feedback:   "Mock feedback: emphasize achievements, quantify results, and add relevant keywords.",
		Strengths:  strengths,
		Weaknesses: weaknesses,
		Suggestions: []string{
			"Quantify achievements with numbers",
			"Add specific keywords from job descriptions",
			"List measurable results for major projects",
		},
		Mock: true,
	}
}

func (s *Service) mockCompare(in CompareInput) CompareResult {
	return CompareResult{
		MatchScore: s.intn(45, 95),
		ATSScore:   s.intn(40, 90),
		Strengths: []string{
			"Resume demonstrates relevant technical experience in the field",
			"Clear and professional formatting that's easy to read",
			"Shows progression in career with increasing responsibilities",
		},
		Weaknesses: []string{
			"Missing specific metrics and quantifiable achievements",
			"Could benefit from more industry-specific keywords",
			"Limited examples of leadership or project management experience",
		},
		Improvements: []string{
			"Add specific numbers and percentages to quantify achievements (e.g., 'increased sales by 25%')",
			"Include more keywords from the job description throughout the resume",
			"Add a summary section highlighting key qualifications",
			"Include examples of problem-solving and leadership experience",
		},
		MatchedKeywords: []string{"python", "sql", "project management", "data analysis", "team collaboration"},
		MissingKeywords: []string{"aws", "machine learning", "agile methodology", "cloud computing"},
		ExperienceMatch: "Mid-level professional with 3-5 years of relevant experience",
		SkillsAlignment: s.intn(60, 95),
		Recommendation:  "Good overall fit with room for improvement. Focus on adding specific metrics and missing technical skills to increase match score.",
		ResumeName:      in.ResumeName,
		JDTitle:         in.JDTitle,
		Mock:            true,
	}
}

func mockCoverLetter(in CoverLetterInput) CoverLetter {
	return CoverLetter{
		Paragraphs: []string{
			fmt.Sprintf("I am excited to apply for the %s position at %s. My background in software engineering and passion for technology make me an ideal candidate for this role.", in.Title, in.Company),
			"With my experience in developing scalable applications and working with cross-functional teams, I am confident that I can contribute significantly to your team's success.",
			fmt.Sprintf("I would welcome the opportunity to discuss how my skills and enthusiasm can benefit %s. Thank you for considering my application.", in.Company),
		},
		YourName:  in.Name,
		YourEmail: in.Email,
		YourPhone: in.Phone,
		Mock:      true,
	}
}

func mockImprovements(typ string) Improvements {
	out := Improvements{Type: typ, Title: improvementTitles[typ], Mock: true}
	switch typ {
	case TypeKeywords:
		out.KeywordReport = &KeywordReport{
			MissingKeywords: []string{"Python", "AWS", "Docker", "Agile", "DevOps"},
			KeywordSuggestions: []KeywordSuggestion{{
				Category: "Technical Skills",
				Missing:  []string{"Python", "AWS", "Docker"},
				Reason:   "These are high-demand skills in the field",
			}},
			ATSScoreImpact: "Adding these keywords could increase ATS score by 15-25 points",
		}
	case TypeRole:
		out.Title = "Role Alignment"
		out.RoleReport = &RoleReport{
			MissingMetrics: []string{"specific numbers", "percentages", "quantified achievements"},
			RoleSuggestions: []RoleSuggestion{{
				Section:     "Experience",
				Improvement: "Add specific metrics like 'increased sales by 25%'",
				Example:     "Instead of 'improved performance', write 'improved performance by 30%'",
			}},
			AchievementSuggestions: []string{"specific accomplishments with numbers", "project outcomes"},
		}
	case TypeGrammar:
		out.GrammarReport = &GrammarReport{
			GrammarIssues: []string{"inconsistent verb tense", "weak action verbs"},
			StyleSuggestions: []StyleSuggestion{{
				Issue:   "Inconsistent verb tense",
				Fix:     "Use past tense for previous roles",
				Example: "Change 'I manage' to 'I managed' for past positions",
			}},
			FormattingIssues:   []string{"inconsistent bullet points", "spacing problems"},
			ClaritySuggestions: []string{"unclear sentences", "jargon without explanation"},
		}
	default:
		out.ComprehensiveReport = &ComprehensiveReport{
			OverallScore:   75,
			Strengths:      []string{"Good technical background", "Relevant experience"},
			CriticalIssues: []string{"Missing specific metrics", "Generic descriptions"},
			KeywordAnalysis: KeywordAnalysis{
				MissingEssential:   []string{"Python", "AWS", "Agile"},
				Overused:           []string{"responsible for", "worked on"},
				SuggestedAdditions: []string{"Docker", "DevOps", "CI/CD"},
			},
			ContentImprovements: []ContentImprovement{{
				Section:      "Professional Summary",
				CurrentIssue: "Too generic",
				Suggestion:   "Add specific achievements with metrics",
				Example:      "Results-driven Software Engineer with 5+ years developing scalable web applications",
			}},
			ATSOptimization: []string{"Add more industry-specific keywords", "Include relevant certifications"},
			PriorityActions: []string{"Add 5-7 specific metrics to work experience", "Include 3-5 missing technical skills"},
		}
	}
	return out
}
