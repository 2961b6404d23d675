// Package observability provides logging, metrics and formatted CLI output.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/jonathan/parser-service/internal/daxtra"
	"github.com/jonathan/parser-service/internal/htmltext"
	"github.com/jonathan/parser-service/internal/service"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
	// previewRunes bounds the text preview of a converted document
	previewRunes = 400
)

// Printer handles formatted output for the parse command
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, truncate(line, boxWidth-4))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintCompetencies outputs the competency count and the top skills of a resume.
func (p *Printer) PrintCompetencies(filename string, competencies []daxtra.Competency) {
	summary := service.Summarize(competencies)

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("File:          %s\n", filename))
	sb.WriteString(fmt.Sprintf("Competencies:  %d\n", summary.TotalCompetencies))

	if len(summary.TopSkills) > 0 {
		sb.WriteString("\nTop Skills:\n")
		for _, s := range summary.TopSkills {
			sb.WriteString(fmt.Sprintf("  • %s (%g)", s.Name, s.Level))
			if s.Proficiency != "" {
				sb.WriteString(fmt.Sprintf(" %s", s.Proficiency))
			}
			sb.WriteString("\n")
		}
	}

	// Remaining skills without a qualifying level
	var others []string
	for _, c := range competencies {
		if c.SkillLevel == nil || *c.SkillLevel < 8 {
			others = append(others, c.SkillName)
		}
	}
	if len(others) > 0 {
		count := min(len(others), maxItemsToShow)
		sb.WriteString(fmt.Sprintf("\nOther Skills: %s", strings.Join(others[:count], ", ")))
		if len(others) > maxItemsToShow {
			sb.WriteString(fmt.Sprintf(" ... and %d more", len(others)-maxItemsToShow))
		}
		sb.WriteString("\n")
	}

	p.printBox("PARSED RESUME", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintConversion outputs a preview of the text of a converted document.
func (p *Printer) PrintConversion(filename string, conv *service.Conversion) {
	if conv == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("File:    %s\n", filename))
	sb.WriteString(fmt.Sprintf("HTML:    %d bytes\n", len(conv.HTML)))
	if conv.Text == "" {
		sb.WriteString("\n(no text extracted)")
	} else {
		sb.WriteString("\n")
		sb.WriteString(wrap(htmltext.Preview(conv.Text, previewRunes), boxWidth-4))
	}

	p.printBox("CONVERTED DOCUMENT", sb.String())
}

// PrintFailure outputs a failed parse.
func (p *Printer) PrintFailure(filename string, err error) {
	p.printBox("FAILED: "+filename, "⚠ "+err.Error())
}

func truncate(s string, width int) string {
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	return string(runes[:width-3]) + "..."
}

// wrap breaks text into lines of at most width runes at word boundaries.
func wrap(text string, width int) string {
	var lines []string
	for _, para := range strings.Split(text, "\n") {
		var line string
		for _, word := range strings.Fields(para) {
			switch {
			case line == "":
				line = word
			case len([]rune(line))+1+len([]rune(word)) > width:
				lines = append(lines, line)
				line = word
			default:
				line += " " + word
			}
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}
