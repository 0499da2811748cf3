package normalize

import (
	"regexp"
	"strings"
)

var (
	whitespaceRun   = regexp.MustCompile(`\s+`)
	nonKeyCharacter = regexp.MustCompile(`[^a-z0-9_]`)
)

// Header turns a human-entered column header into a key candidate:
// "Name (EN)" -> "name_en", "Name(EN)" -> "nameen".
func Header(h string) string {
	h = strings.ToLower(strings.TrimSpace(h))
	h = whitespaceRun.ReplaceAllString(h, "_")
	return nonKeyCharacter.ReplaceAllString(h, "")
}

// Headers normalizes a whole header row.
func Headers(raw []string) []string {
	out := make([]string, len(raw))
	for i, h := range raw {
		out[i] = Header(h)
	}
	return out
}

// Row maps normalized header keys to trimmed cell values. It never leaves the
// ingestion boundary: the assembler turns it into a fixed-shape listing.
type Row map[string]string

// RowFromCells pairs headers with cells. Cells beyond the header width are
// ignored and missing cells are simply absent. When two headers normalize to
// the same key the later column wins unless it is blank.
func RowFromCells(headers, cells []string) Row {
	row := make(Row, len(headers))
	for i := 0; i < len(headers) && i < len(cells); i++ {
		val := strings.TrimSpace(cells[i])
		if prev, ok := row[headers[i]]; ok && val == "" {
			row[headers[i]] = prev
			continue
		}
		row[headers[i]] = val
	}
	return row
}

// BlankRow reports whether every cell is empty after trimming.
func BlankRow(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
