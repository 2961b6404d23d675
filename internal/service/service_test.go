package service

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/parser-service/internal/daxtra"
)

// fakeParser implements Parser with canned results.
type fakeParser struct {
	mu        sync.Mutex
	calls     []string
	profile   *daxtra.CandidateProfile
	twoPhase  *daxtra.TwoPhaseResult
	vacancy   *daxtra.VacancyProfile
	html      string
	err       error
	errByName map[string]error
	lastHQ    bool
}

func (f *fakeParser) record(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, name)
}

func (f *fakeParser) ParseFullResume(_ context.Context, _ []byte, filename string, _ *daxtra.RequestOptions) (*daxtra.CandidateProfile, error) {
	f.record(filename)
	if err, ok := f.errByName[filename]; ok {
		return nil, err
	}
	return f.profile, f.err
}

func (f *fakeParser) ParsePersonalThenFull(_ context.Context, _ []byte, filename string, _ *daxtra.RequestOptions) (*daxtra.TwoPhaseResult, error) {
	f.record(filename)
	return f.twoPhase, f.err
}

func (f *fakeParser) ParseJobOrder(_ context.Context, _ []byte, filename string, _ *daxtra.RequestOptions) (*daxtra.VacancyProfile, error) {
	f.record(filename)
	return f.vacancy, f.err
}

func (f *fakeParser) ConvertToHTML(_ context.Context, _ []byte, highQuality bool, filename string, _ *daxtra.RequestOptions) (string, error) {
	f.record(filename)
	f.lastHQ = highQuality
	return f.html, f.err
}

func profileWithSkills(t *testing.T, raw string) *daxtra.CandidateProfile {
	t.Helper()
	var p daxtra.CandidateProfile
	require.NoError(t, json.Unmarshal([]byte(raw), &p))
	return &p
}

func TestResumeService_ParseFull(t *testing.T) {
	fp := &fakeParser{profile: profileWithSkills(t, `{"StructuredResume":{"Competency":[{"skillName":"Go","skillLevel":9}]}}`)}
	svc := NewResumeService(fp)

	got, err := svc.ParseFull(context.Background(), []byte("x"), "cv.pdf")
	require.NoError(t, err)
	assert.Same(t, fp.profile, got.Profile)
	require.Len(t, got.Competencies, 1)
	assert.Equal(t, "Go", got.Competencies[0].SkillName)
}

func TestResumeService_ParseTwoPhase(t *testing.T) {
	personal := profileWithSkills(t, `{"StructuredResume":{"Competency":{"skillName":"personal"}},"phase2_token":"t"}`)
	full := profileWithSkills(t, `{"StructuredResume":{"Competency":[{"skillName":"A"},{"skillName":"B"}]}}`)
	svc := NewResumeService(&fakeParser{twoPhase: &daxtra.TwoPhaseResult{Personal: personal, Full: full}})

	got, err := svc.ParseTwoPhase(context.Background(), []byte("x"), "cv.pdf")
	require.NoError(t, err)
	assert.Same(t, personal, got.Personal)
	assert.Same(t, full, got.Full)
	require.Len(t, got.Competencies, 2, "competencies come from the full profile")
	assert.Equal(t, "A", got.Competencies[0].SkillName)
}

func TestResumeService_PropagatesErrors(t *testing.T) {
	wantErr := &daxtra.DomainError{Code: "1", Message: "bad"}
	svc := NewResumeService(&fakeParser{err: wantErr})

	_, err := svc.ParseFull(context.Background(), nil, "cv.pdf")
	assert.ErrorIs(t, err, wantErr)

	_, err = svc.ParseTwoPhase(context.Background(), nil, "cv.pdf")
	assert.ErrorIs(t, err, wantErr)
}

func TestResumeService_ParseBatch(t *testing.T) {
	badErr := errors.New("boom")
	fp := &fakeParser{
		profile:   profileWithSkills(t, `{}`),
		errByName: map[string]error{"bad.pdf": badErr},
	}
	svc := NewResumeService(fp)

	docs := []Document{{Name: "a.pdf"}, {Name: "bad.pdf"}, {Name: "c.pdf"}}
	results, err := svc.ParseBatch(context.Background(), docs, 2)
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.Equal(t, "a.pdf", results[0].Name)
	assert.NoError(t, results[0].Err)
	assert.NotNil(t, results[0].Resume)

	assert.Equal(t, "bad.pdf", results[1].Name)
	assert.ErrorIs(t, results[1].Err, badErr)
	assert.Nil(t, results[1].Resume)

	assert.NoError(t, results[2].Err)
	assert.Len(t, fp.calls, 3)
}

func TestSummarize(t *testing.T) {
	level := func(v float64) *float64 { return &v }

	var comps []daxtra.Competency
	comps = append(comps,
		daxtra.Competency{SkillName: "low", SkillLevel: level(3)},
		daxtra.Competency{SkillName: "none"},
		daxtra.Competency{SkillName: "edge", SkillLevel: level(8), SkillProficiency: "GOOD"},
	)
	for i := 0; i < 12; i++ {
		comps = append(comps, daxtra.Competency{SkillName: "top", SkillLevel: level(10)})
	}

	s := Summarize(comps)
	assert.Equal(t, 15, s.TotalCompetencies)
	require.Len(t, s.TopSkills, 10)
	assert.Equal(t, TopSkill{Name: "edge", Level: 8, Proficiency: "GOOD"}, s.TopSkills[0])

	empty := Summarize(nil)
	assert.Equal(t, 0, empty.TotalCompetencies)
	assert.NotNil(t, empty.TopSkills)
}

func TestVacancyService_Parse(t *testing.T) {
	v := &daxtra.VacancyProfile{StructuredResume: json.RawMessage(`{}`)}
	fp := &fakeParser{vacancy: v}

	got, err := NewVacancyService(fp).Parse(context.Background(), []byte("jd"), "jd.pdf")
	require.NoError(t, err)
	assert.Same(t, v, got)
	assert.Equal(t, []string{"jd.pdf"}, fp.calls)
}

func TestConversionService_Convert(t *testing.T) {
	fp := &fakeParser{html: `<html><body><p>Hello</p><p>World</p></body></html>`}
	svc := NewConversionService(fp, nil)

	got, err := svc.Convert(context.Background(), []byte("doc"), true, "doc.pdf")
	require.NoError(t, err)
	assert.Equal(t, fp.html, got.HTML)
	assert.Equal(t, "Hello\nWorld", got.Text)
	assert.True(t, got.HighQuality)
	assert.True(t, fp.lastHQ)
}

func TestConversionService_Error(t *testing.T) {
	wantErr := &daxtra.UnexpectedResponseTypeError{Operation: "convert2html", Expected: "HTML string", Got: "JSON object"}
	svc := NewConversionService(&fakeParser{err: wantErr}, nil)

	_, err := svc.Convert(context.Background(), []byte("doc"), false, "doc.pdf")
	assert.ErrorIs(t, err, wantErr)
}

func TestParseHighQuality(t *testing.T) {
	assert.True(t, ParseHighQuality("true", ""))
	assert.True(t, ParseHighQuality("", "true"))
	assert.False(t, ParseHighQuality("1", "yes"))
	assert.False(t, ParseHighQuality("", ""))
}

func TestLazy_BuildsOnceUnderConcurrency(t *testing.T) {
	var builds int32
	lazy := NewLazy(func() (Parser, error) {
		atomic.AddInt32(&builds, 1)
		return &fakeParser{profile: &daxtra.CandidateProfile{}}, nil
	})

	var wg sync.WaitGroup
	parsers := make([]Parser, 32)
	for i := range parsers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p, err := lazy.Get()
			assert.NoError(t, err)
			parsers[i] = p
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&builds))
	for _, p := range parsers {
		assert.Same(t, parsers[0], p)
	}

	_, err := lazy.ParseFullResume(context.Background(), nil, "cv.pdf", nil)
	assert.NoError(t, err)
}

func TestLazy_BuildErrorIsSticky(t *testing.T) {
	var builds int32
	buildErr := errors.New("missing DAXTRA_BASE_URL")
	lazy := NewLazy(func() (Parser, error) {
		atomic.AddInt32(&builds, 1)
		return nil, buildErr
	})

	_, err := lazy.ParseJobOrder(context.Background(), nil, "jd.pdf", nil)
	assert.ErrorIs(t, err, buildErr)
	_, err = lazy.ConvertToHTML(context.Background(), nil, false, "doc.pdf", nil)
	assert.ErrorIs(t, err, buildErr)
	_, err = lazy.ParsePersonalThenFull(context.Background(), nil, "cv.pdf", nil)
	assert.ErrorIs(t, err, buildErr)
	assert.Equal(t, int32(1), atomic.LoadInt32(&builds))
}
