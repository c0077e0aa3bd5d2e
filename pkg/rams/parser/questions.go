package parser

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/CustomGPTer/RAMS-Generator/internal/pkg/apperror"
)

// listPrefix matches "12. ", "12) ", bare "12 " and "- " / "* " bullets.
var listPrefix = regexp.MustCompile(`^(?:\d+\s*[.)]\s*|\d+\s+|[-*]\s*)`)

// ParseList splits a free-text numbered or bulleted list into its items.
// List prefixes are stripped, blank lines skipped, and order is kept. When
// at least one line carries a list prefix, lines without one (preambles,
// sign-offs) are dropped.
func ParseList(text string) []string {
	var plain, listed []string
	for _, line := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if !listPrefix.MatchString(line) {
			plain = append(plain, line)
			continue
		}
		if item := strings.TrimSpace(listPrefix.ReplaceAllString(line, "")); item != "" {
			listed = append(listed, item)
		}
	}
	if len(listed) > 0 {
		return listed
	}
	return plain
}

// ParseQuestions returns exactly n questions from text. Extra items are
// dropped; fewer than n is ErrGenerationIncomplete.
func ParseQuestions(text string, n int) ([]string, error) {
	items := ParseList(text)
	if len(items) < n {
		return nil, fmt.Errorf("%w: expected %d questions, got %d", apperror.ErrGenerationIncomplete, n, len(items))
	}
	return items[:n], nil
}
