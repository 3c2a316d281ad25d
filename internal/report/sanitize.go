package report

import (
	"regexp"
	"strings"
)

// Model memoranda tend to arrive wrapped in letterhead the report renders
// itself: a "Strategic Memorandum" title line and To:/From:/Date:/Re:
// fields. Sanitize strips that boilerplate and keeps the content from the
// Executive Summary onward.

var (
	execSummaryRe = regexp.MustCompile(`(?i)(^|\n)(#{1,6}\s*)?Executive Summary\b`)
	headingRe     = regexp.MustCompile(`^#{1,6}\s*`)
	markupRe      = regexp.MustCompile("[*_`~\\[\\]]")
	blankRunsRe   = regexp.MustCompile(`\n{3,}`)
)

var removeTitles = map[string]bool{
	"strategic memorandum":      true,
	"legal strategy memorandum": true,
}

var removePrefixes = []string{"to:", "from:", "date:", "re:"}

// Sanitize cleans a generated memorandum for display. The input is returned
// unchanged (normalized) when cleaning would leave nothing.
func Sanitize(content string) string {
	if content == "" {
		return content
	}

	normalized := strings.ReplaceAll(content, "\r\n", "\n")
	normalized = strings.ReplaceAll(normalized, " ", " ")
	normalized = strings.TrimLeft(normalized, " \t\n")

	working := normalized
	if loc := execSummaryRe.FindStringIndex(normalized); loc != nil {
		working = strings.TrimLeft(normalized[loc[0]:], " \t\n")
	}

	var cleaned []string
	for _, line := range strings.Split(working, "\n") {
		plain := strings.TrimSpace(markupRe.ReplaceAllString(headingRe.ReplaceAllString(line, ""), ""))
		lower := strings.ToLower(plain)

		if plain == "" {
			if len(cleaned) == 0 || strings.TrimSpace(cleaned[len(cleaned)-1]) == "" {
				continue
			}
			cleaned = append(cleaned, "")
			continue
		}
		if removeTitles[lower] {
			continue
		}
		if hasAnyPrefix(lower, removePrefixes) {
			continue
		}
		cleaned = append(cleaned, line)
	}

	final := strings.TrimSpace(blankRunsRe.ReplaceAllString(strings.Join(cleaned, "\n"), "\n\n"))
	if final == "" {
		return working
	}
	return final
}

func hasAnyPrefix(s string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}
