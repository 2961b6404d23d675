package observability

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jonathan/parser-service/internal/daxtra"
	"github.com/jonathan/parser-service/internal/service"
)

func level(v float64) *float64 { return &v }

func TestPrintCompetencies(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintCompetencies("cv.pdf", []daxtra.Competency{
		{SkillName: "Go", SkillLevel: level(9), SkillProficiency: "EXPERT"},
		{SkillName: "Kubernetes", SkillLevel: level(8)},
		{SkillName: "Rust", SkillLevel: level(2)},
		{SkillName: "Cobol"},
	})
	output := buf.String()

	assert.Contains(t, output, "PARSED RESUME")
	assert.Contains(t, output, "cv.pdf")
	assert.Contains(t, output, "Competencies:  4")
	assert.Contains(t, output, "Go (9) EXPERT")
	assert.Contains(t, output, "Kubernetes (8)")
	assert.Contains(t, output, "Other Skills: Rust, Cobol")
}

func TestPrintCompetencies_ManyOthers(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	var comps []daxtra.Competency
	for _, name := range []string{"a", "b", "c", "d", "e", "f", "g"} {
		comps = append(comps, daxtra.Competency{SkillName: name})
	}
	p.PrintCompetencies("cv.pdf", comps)

	assert.Contains(t, buf.String(), "... and 2 more")
	assert.NotContains(t, buf.String(), "Top Skills")
}

func TestPrintConversion(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintConversion("doc.pdf", &service.Conversion{
		HTML: "<p>Hello</p>",
		Text: "Hello world from a converted document",
	})
	output := buf.String()

	assert.Contains(t, output, "CONVERTED DOCUMENT")
	assert.Contains(t, output, "HTML:    12 bytes")
	assert.Contains(t, output, "Hello world from a converted document")
}

func TestPrintConversion_NoText(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintConversion("doc.pdf", &service.Conversion{HTML: "<p></p>"})
	assert.Contains(t, buf.String(), "(no text extracted)")
}

func TestPrintConversion_Nil(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintConversion("doc.pdf", nil)

	assert.Empty(t, buf.String())
}

func TestPrintFailure(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintFailure("bad.pdf", errors.New("boom"))
	assert.Contains(t, buf.String(), "FAILED: bad.pdf")
	assert.Contains(t, buf.String(), "boom")
}

func TestPrintBox_TruncatesLongLines(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.printBox("T", strings.Repeat("x", 200))

	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		assert.Equal(t, boxWidth, len([]rune(line)))
	}
	assert.Contains(t, buf.String(), "...")
}

func TestWrap(t *testing.T) {
	assert.Equal(t, "one two\nthree", wrap("one two three", 8))
	assert.Equal(t, "a\nb", wrap("a\nb", 10))
}
