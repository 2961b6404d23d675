package service

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/jonathan/parser-service/internal/daxtra"
)

const (
	topSkillMinLevel = 8
	topSkillLimit    = 10
)

// ParsedResume is a full parse with its extracted competencies.
type ParsedResume struct {
	Profile      *daxtra.CandidateProfile `json:"profile"`
	Competencies []daxtra.Competency      `json:"competencies"`
}

// TwoPhaseResume is a two-phase parse; competencies come from the full profile.
type TwoPhaseResume struct {
	Personal     *daxtra.CandidateProfile `json:"personal"`
	Full         *daxtra.CandidateProfile `json:"full"`
	Competencies []daxtra.Competency      `json:"competencies"`
}

// TopSkill is one entry of a competency summary.
type TopSkill struct {
	Name        string  `json:"name"`
	Level       float64 `json:"level"`
	Proficiency string  `json:"proficiency,omitempty"`
}

// CompetencySummary condenses a competency list.
type CompetencySummary struct {
	TotalCompetencies int        `json:"total_competencies"`
	TopSkills         []TopSkill `json:"top_skills"`
}

// Summarize counts competencies and lists up to ten with level 8 or above, in order.
func Summarize(competencies []daxtra.Competency) CompetencySummary {
	summary := CompetencySummary{
		TotalCompetencies: len(competencies),
		TopSkills:         []TopSkill{},
	}
	for _, c := range competencies {
		if len(summary.TopSkills) == topSkillLimit {
			break
		}
		if c.SkillLevel == nil || *c.SkillLevel < topSkillMinLevel {
			continue
		}
		summary.TopSkills = append(summary.TopSkills, TopSkill{
			Name:        c.SkillName,
			Level:       *c.SkillLevel,
			Proficiency: c.SkillProficiency,
		})
	}
	return summary
}

// ResumeService parses resumes.
type ResumeService struct {
	parser Parser
}

// NewResumeService creates a ResumeService.
func NewResumeService(p Parser) *ResumeService {
	return &ResumeService{parser: p}
}

// ParseFull parses a resume in one request.
func (s *ResumeService) ParseFull(ctx context.Context, file []byte, filename string) (*ParsedResume, error) {
	profile, err := s.parser.ParseFullResume(ctx, file, filename, nil)
	if err != nil {
		return nil, err
	}
	return &ParsedResume{
		Profile:      profile,
		Competencies: daxtra.ExtractCompetencies(profile),
	}, nil
}

// ParseTwoPhase parses a resume with the personal-then-full workflow.
func (s *ResumeService) ParseTwoPhase(ctx context.Context, file []byte, filename string) (*TwoPhaseResume, error) {
	result, err := s.parser.ParsePersonalThenFull(ctx, file, filename, nil)
	if err != nil {
		return nil, err
	}
	return &TwoPhaseResume{
		Personal:     result.Personal,
		Full:         result.Full,
		Competencies: daxtra.ExtractCompetencies(result.Full),
	}, nil
}

// Document is a named file awaiting parsing.
type Document struct {
	Name    string
	Content []byte
}

// BatchResult is the outcome for one document of a batch.
type BatchResult struct {
	Name   string
	Resume *ParsedResume
	Err    error
}

// ParseBatch runs full parses for docs with at most limit in flight. Each
// document's failure is reported in its own result; the batch only fails
// when ctx is cancelled.
func (s *ResumeService) ParseBatch(ctx context.Context, docs []Document, limit int) ([]BatchResult, error) {
	results := make([]BatchResult, len(docs))

	g, gCtx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}
	for i, doc := range docs {
		g.Go(func() error {
			resume, err := s.ParseFull(gCtx, doc.Content, doc.Name)
			results[i] = BatchResult{Name: doc.Name, Resume: resume, Err: err}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return results, err
	}
	if err := ctx.Err(); err != nil {
		return results, fmt.Errorf("batch parse cancelled: %w", err)
	}
	return results, nil
}
