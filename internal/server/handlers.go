package server

import (
	"net/http"

	"github.com/jonathan/parser-service/internal/daxtra"
	"github.com/jonathan/parser-service/internal/service"
)

// ParsedResumeResponse is the data of a full resume parse
type ParsedResumeResponse struct {
	ParsingMethod string                    `json:"parsing_method"`
	FileInfo      FileInfo                  `json:"file_info"`
	Profile       *daxtra.CandidateProfile  `json:"profile"`
	Competencies  []daxtra.Competency       `json:"competencies"`
	Summary       service.CompetencySummary `json:"summary"`
}

// TwoPhaseResumeResponse is the data of a two-phase resume parse
type TwoPhaseResumeResponse struct {
	ParsingMethod string                    `json:"parsing_method"`
	FileInfo      FileInfo                  `json:"file_info"`
	Personal      *daxtra.CandidateProfile  `json:"personal"`
	Full          *daxtra.CandidateProfile  `json:"full"`
	Competencies  []daxtra.Competency       `json:"competencies"`
	Summary       service.CompetencySummary `json:"summary"`
}

// VacancyResponse is the data of a job order parse
type VacancyResponse struct {
	ParsingMethod string                 `json:"parsing_method"`
	FileInfo      FileInfo               `json:"file_info"`
	Profile       *daxtra.VacancyProfile `json:"profile"`
}

// ConversionResponse is the data of an HTML conversion
type ConversionResponse struct {
	HTML              string            `json:"html"`
	Text              string            `json:"text,omitempty"`
	FileInfo          FileInfo          `json:"file_info"`
	ConversionOptions ConversionOptions `json:"conversion_options"`
}

// ConversionOptions echoes the options a conversion ran with
type ConversionOptions struct {
	HighQuality bool `json:"high_quality"`
}

// handleParseFull parses an uploaded resume in one pass
func (s *Server) handleParseFull(w http.ResponseWriter, r *http.Request) {
	up, err := s.readUpload(w, r)
	if err != nil {
		s.errorResponse(w, r, err)
		return
	}

	parsed, err := s.resumes.ParseFull(r.Context(), up.Data, up.Info.OriginalName)
	if err != nil {
		s.errorResponse(w, r, err)
		return
	}

	s.successResponse(w, ParsedResumeResponse{
		ParsingMethod: "full",
		FileInfo:      up.Info,
		Profile:       parsed.Profile,
		Competencies:  parsed.Competencies,
		Summary:       service.Summarize(parsed.Competencies),
	})
}

// handleParseTwoPhase parses an uploaded resume personal data first, then in full
func (s *Server) handleParseTwoPhase(w http.ResponseWriter, r *http.Request) {
	up, err := s.readUpload(w, r)
	if err != nil {
		s.errorResponse(w, r, err)
		return
	}

	parsed, err := s.resumes.ParseTwoPhase(r.Context(), up.Data, up.Info.OriginalName)
	if err != nil {
		s.errorResponse(w, r, err)
		return
	}

	s.successResponse(w, TwoPhaseResumeResponse{
		ParsingMethod: "two-phase",
		FileInfo:      up.Info,
		Personal:      parsed.Personal,
		Full:          parsed.Full,
		Competencies:  parsed.Competencies,
		Summary:       service.Summarize(parsed.Competencies),
	})
}

// handleParseVacancy parses an uploaded job description
func (s *Server) handleParseVacancy(w http.ResponseWriter, r *http.Request) {
	up, err := s.readUpload(w, r)
	if err != nil {
		s.errorResponse(w, r, err)
		return
	}

	profile, err := s.vacancies.Parse(r.Context(), up.Data, up.Info.OriginalName)
	if err != nil {
		s.errorResponse(w, r, err)
		return
	}

	s.successResponse(w, VacancyResponse{
		ParsingMethod: "vacancy",
		FileInfo:      up.Info,
		Profile:       profile,
	})
}

// handleConvertHTML converts an uploaded document to HTML
func (s *Server) handleConvertHTML(w http.ResponseWriter, r *http.Request) {
	up, err := s.readUpload(w, r)
	if err != nil {
		s.errorResponse(w, r, err)
		return
	}

	highQuality := service.ParseHighQuality(r.PostFormValue("high_quality"), r.URL.Query().Get("high_quality"))
	conv, err := s.conversions.Convert(r.Context(), up.Data, highQuality, up.Info.OriginalName)
	if err != nil {
		s.errorResponse(w, r, err)
		return
	}

	s.successResponse(w, ConversionResponse{
		HTML:              conv.HTML,
		Text:              conv.Text,
		FileInfo:          up.Info,
		ConversionOptions: ConversionOptions{HighQuality: highQuality},
	})
}
