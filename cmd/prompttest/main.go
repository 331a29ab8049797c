package main

// Run one AI operation against the configured LLM:
//   go run ./cmd/prompttest -op compare -resume cv.pdf -jd jd.txt

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"resume-scanner/internal/analysis"
	"resume-scanner/internal/bootstrap"
	"resume-scanner/internal/extract"
	"resume-scanner/internal/shared/config"
)

func main() {
	cfg := config.Load()

	op := flag.String("op", "score", "Operation: score, compare, cover-letter or improve")
	resumePath := flag.String("resume", "", "Path to resume file (pdf or docx)")
	jdPath := flag.String("jd", "", "Path to job description text (compare, cover-letter)")
	title := flag.String("title", "Software Engineer", "Job title")
	company := flag.String("company", "Example Corp", "Company name")
	improveType := flag.String("type", "comprehensive", "Improvement type")
	outPath := flag.String("out", "", "Path to write JSON output (optional)")
	provider := flag.String("provider", cfg.LLMProvider, "LLM provider")
	model := flag.String("model", cfg.LLMModel, "LLM model")
	flag.Parse()

	if strings.TrimSpace(*resumePath) == "" {
		exitErr("resume path is required")
	}
	if !extract.AllowedResume(*resumePath) {
		exitErr(fmt.Sprintf("unsupported resume file type: %s", filepath.Ext(*resumePath)))
	}

	resumeBytes, err := os.ReadFile(*resumePath)
	if err != nil {
		exitErr(fmt.Sprintf("read resume: %v", err))
	}
	fileName := filepath.Base(*resumePath)

	ctx := context.Background()
	resumeText, err := extract.ExtractText(ctx, resumeBytes, fileName)
	if err != nil {
		exitErr(fmt.Sprintf("extract resume text: %v", err))
	}

	jobDescription := ""
	if strings.TrimSpace(*jdPath) != "" {
		jdBytes, err := os.ReadFile(*jdPath)
		if err != nil {
			exitErr(fmt.Sprintf("read job description: %v", err))
		}
		jobDescription = string(jdBytes)
	}

	cfg.LLMProvider = strings.ToLower(strings.TrimSpace(*provider))
	cfg.LLMModel = *model
	client, err := bootstrap.NewLLM(cfg)
	if err != nil {
		exitErr(err.Error())
	}
	svc := analysis.NewService(client)

	var result any
	switch *op {
	case "score":
		result = svc.ScoreResume(ctx, resumeText, fileName)
	case "compare":
		if jobDescription == "" {
			exitErr("compare needs -jd")
		}
		result = svc.Compare(ctx, analysis.CompareInput{
			Resume:         resumeText,
			JobDescription: jobDescription,
			ResumeName:     fileName,
			JDTitle:        *title + " at " + *company,
		})
	case "cover-letter":
		if jobDescription == "" {
			exitErr("cover-letter needs -jd")
		}
		result = svc.CoverLetter(ctx, analysis.CoverLetterInput{
			Resume:         resumeText,
			JobDescription: jobDescription,
			Title:          *title,
			Company:        *company,
			Options:        analysis.CoverLetterOptions{ProfessionalTone: true},
		})
	case "improve":
		result = svc.Improvements(ctx, resumeText, *improveType, fileName)
	default:
		exitErr(fmt.Sprintf("unsupported op: %s", *op))
	}

	pretty, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		exitErr(fmt.Sprintf("format json: %v", err))
	}
	pretty = append(pretty, '\n')

	if *outPath != "" {
		if err := os.WriteFile(*outPath, pretty, 0o644); err != nil {
			exitErr(fmt.Sprintf("write output: %v", err))
		}
	}
	if _, err := os.Stdout.Write(pretty); err != nil {
		exitErr(fmt.Sprintf("write stdout: %v", err))
	}
}

func exitErr(msg string) {
	_, _ = fmt.Fprintln(os.Stderr, msg)
	os.Exit(1)
}
