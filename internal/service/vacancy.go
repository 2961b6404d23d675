package service

import (
	"context"

	"github.com/jonathan/parser-service/internal/daxtra"
)

// VacancyService parses job orders.
type VacancyService struct {
	parser Parser
}

// NewVacancyService creates a VacancyService.
func NewVacancyService(p Parser) *VacancyService {
	return &VacancyService{parser: p}
}

// Parse parses a job order document.
func (s *VacancyService) Parse(ctx context.Context, file []byte, filename string) (*daxtra.VacancyProfile, error) {
	return s.parser.ParseJobOrder(ctx, file, filename, nil)
}
