// Package htmltext renders converted documents as plain text.
package htmltext

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// noiseSelectors never carry document content.
const noiseSelectors = "script, style, noscript, head, title, meta"

// blockSelectors end a line of text.
const blockSelectors = "p, div, br, li, tr, h1, h2, h3, h4, h5, h6, table, ul, ol, section, article"

// Extract returns the visible text of html with one line per block element.
func Extract(html string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML: %w", err)
	}

	doc.Find(noiseSelectors).Remove()

	// Mark block boundaries so adjacent blocks do not run together.
	doc.Find(blockSelectors).Each(func(_ int, s *goquery.Selection) {
		s.AppendHtml("\n")
	})

	body := doc.Find("body")
	if body.Length() == 0 {
		return cleanWhitespace(doc.Text()), nil
	}
	return cleanWhitespace(body.Text()), nil
}

// Preview returns at most limit runes of text, cut at a word boundary when possible.
func Preview(text string, limit int) string {
	runes := []rune(text)
	if limit <= 0 || len(runes) <= limit {
		return text
	}
	cut := string(runes[:limit])
	if i := strings.LastIndexAny(cut, " \n"); i > limit/2 {
		cut = cut[:i]
	}
	return strings.TrimSpace(cut) + "..."
}

// cleanWhitespace trims each line, collapses inner runs of spaces and drops blank lines.
func cleanWhitespace(text string) string {
	lines := strings.Split(text, "\n")
	cleaned := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.Join(strings.Fields(line), " ")
		if line != "" {
			cleaned = append(cleaned, line)
		}
	}
	return strings.Join(cleaned, "\n")
}
