package workflow

import "strings"

// EmptyIdentitySummary is returned when no usable identity content exists.
const EmptyIdentitySummary = "no identity docs ingested yet"

const summaryMaxRunes = 280

// SummarizeIdentities condenses identity documents into a single voice
// summary: the first non-blank line of each chunk, joined with " | " and
// capped at 280 runes. Blank chunks are skipped entirely.
func SummarizeIdentities(chunks []string) string {
	var lines []string
	for _, chunk := range chunks {
		trimmed := strings.TrimSpace(chunk)
		if trimmed == "" {
			continue
		}
		first, _, _ := strings.Cut(trimmed, "\n")
		lines = append(lines, strings.TrimSpace(first))
	}
	if len(lines) == 0 {
		return EmptyIdentitySummary
	}
	joined := strings.Join(lines, " | ")
	runes := []rune(joined)
	if len(runes) > summaryMaxRunes {
		return string(runes[:summaryMaxRunes])
	}
	return joined
}
