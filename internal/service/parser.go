// Package service sits between the HTTP handlers and the parsing client.
package service

import (
	"context"
	"sync"

	"github.com/jonathan/parser-service/internal/daxtra"
)

// Parser is the parsing client's contract as the services use it.
type Parser interface {
	ParseFullResume(ctx context.Context, file []byte, filename string, opts *daxtra.RequestOptions) (*daxtra.CandidateProfile, error)
	ParsePersonalThenFull(ctx context.Context, file []byte, filename string, opts *daxtra.RequestOptions) (*daxtra.TwoPhaseResult, error)
	ParseJobOrder(ctx context.Context, file []byte, filename string, opts *daxtra.RequestOptions) (*daxtra.VacancyProfile, error)
	ConvertToHTML(ctx context.Context, file []byte, highQuality bool, filename string, opts *daxtra.RequestOptions) (string, error)
}

// Lazy builds its Parser on first use. Concurrent first calls share a single
// build; a failed build is remembered and returned to every caller.
type Lazy struct {
	build  func() (Parser, error)
	once   sync.Once
	parser Parser
	err    error
}

// NewLazy returns a handle that calls build at most once.
func NewLazy(build func() (Parser, error)) *Lazy {
	return &Lazy{build: build}
}

// Get returns the parser, building it if needed.
func (l *Lazy) Get() (Parser, error) {
	l.once.Do(func() {
		l.parser, l.err = l.build()
	})
	return l.parser, l.err
}

// ParseFullResume implements Parser.
func (l *Lazy) ParseFullResume(ctx context.Context, file []byte, filename string, opts *daxtra.RequestOptions) (*daxtra.CandidateProfile, error) {
	p, err := l.Get()
	if err != nil {
		return nil, err
	}
	return p.ParseFullResume(ctx, file, filename, opts)
}

// ParsePersonalThenFull implements Parser.
func (l *Lazy) ParsePersonalThenFull(ctx context.Context, file []byte, filename string, opts *daxtra.RequestOptions) (*daxtra.TwoPhaseResult, error) {
	p, err := l.Get()
	if err != nil {
		return nil, err
	}
	return p.ParsePersonalThenFull(ctx, file, filename, opts)
}

// ParseJobOrder implements Parser.
func (l *Lazy) ParseJobOrder(ctx context.Context, file []byte, filename string, opts *daxtra.RequestOptions) (*daxtra.VacancyProfile, error) {
	p, err := l.Get()
	if err != nil {
		return nil, err
	}
	return p.ParseJobOrder(ctx, file, filename, opts)
}

// ConvertToHTML implements Parser.
func (l *Lazy) ConvertToHTML(ctx context.Context, file []byte, highQuality bool, filename string, opts *daxtra.RequestOptions) (string, error) {
	p, err := l.Get()
	if err != nil {
		return "", err
	}
	return p.ConvertToHTML(ctx, file, highQuality, filename, opts)
}
