package substitute

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/CustomGPTer/RAMS-Generator/internal/pkg/apperror"
	"github.com/CustomGPTer/RAMS-Generator/pkg/docx"
)

var blankLine = regexp.MustCompile(`\n[ \t]*\n`)

// Result describes what one substitution changed.
type Result struct {
	Inserted int
	Removed  int
}

// TableOptions locates the sentinel row and bounds how many fields a data
// line may fill.
type TableOptions struct {
	MarkerColumn int
	MaxFields    int
}

// ReplaceParagraph replaces the first body paragraph containing marker with
// one paragraph per fragment of content, each carrying the placeholder's
// style. Content with a blank line is split into blank-line blocks, all
// other content is split per line. Empty content just deletes the
// placeholder.
func ReplaceParagraph(doc *docx.Document, marker, content string) (Result, error) {
	target, ok := doc.FindParagraph(marker)
	if !ok {
		return Result{}, &apperror.PlaceholderNotFoundError{Marker: marker}
	}

	fragments := SplitFragments(content)
	style := target.StyleID()
	for _, f := range fragments {
		target.InsertParagraphBefore(f, style)
	}
	target.Remove()

	return Result{Inserted: len(fragments), Removed: 1}, nil
}

// SplitFragments splits content into the paragraphs ReplaceParagraph inserts.
func SplitFragments(content string) []string {
	text := strings.TrimSpace(normalizeNewlines(content))
	if text == "" {
		return nil
	}

	var parts []string
	if blankLine.MatchString(text) {
		parts = blankLine.Split(text, -1)
	} else {
		parts = strings.Split(text, "\n")
	}

	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// ExpandTableRows finds the first table holding a row whose marker cell
// contains sentinel, removes that row and appends one row per non-empty line
// of content. The first cell of each new row is its 1-based position; the
// following cells take the line's tab-separated fields.
func ExpandTableRows(doc *docx.Document, sentinel, content string, opts TableOptions) (Result, error) {
	table, sentinelRow, ok := findSentinelRow(doc, sentinel, opts.MarkerColumn)
	if !ok {
		return Result{}, &apperror.PlaceholderNotFoundError{Marker: sentinel}
	}

	lines := DataLines(content)
	sentinelRow.Remove()

	for i, line := range lines {
		cells := table.AppendRow(sentinelRow).Cells()
		if len(cells) == 0 {
			continue
		}
		cells[0].SetText(strconv.Itoa(i + 1))

		fields := strings.Split(line, "\t")
		for j := 0; j < len(fields) && j < opts.MaxFields && j+1 < len(cells); j++ {
			cells[j+1].SetText(strings.TrimSpace(fields[j]))
		}
	}

	return Result{Inserted: len(lines), Removed: 1}, nil
}

// DataLines returns the non-blank lines of content in order.
func DataLines(content string) []string {
	var out []string
	for _, line := range strings.Split(normalizeNewlines(content), "\n") {
		if strings.TrimSpace(line) != "" {
			out = append(out, line)
		}
	}
	return out
}

func findSentinelRow(doc *docx.Document, sentinel string, column int) (*docx.Table, *docx.Row, bool) {
	for _, table := range doc.Tables() {
		for _, row := range table.Rows() {
			cells := row.Cells()
			if column < len(cells) && strings.Contains(cells[column].Text(), sentinel) {
				return table, row, true
			}
		}
	}
	return nil, nil, false
}

func normalizeNewlines(s string) string {
	return strings.ReplaceAll(s, "\r\n", "\n")
}
