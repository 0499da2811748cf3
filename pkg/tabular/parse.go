package tabular

import "strings"

// Package tabular reads and writes the spreadsheet CSV dialect used by the
// scholarship feeds.

const bom = "\ufeff"

// Parse splits CSV text into rows of fields.
//
// The tokenizer is permissive: malformed quoting never fails, it only changes
// where field boundaries land. A bare quote toggles quoting wherever it
// appears, "" inside quotes is a literal quote, and \n, \r or \r\n outside
// quotes ends a row. A trailing row made only of empty fields is dropped.
func Parse(text string) [][]string {
	text = strings.TrimPrefix(text, bom)

	var (
		rows     [][]string
		row      []string
		cur      strings.Builder
		inQuotes bool
	)

	for i := 0; i < len(text); i++ {
		ch := text[i]
		switch {
		case ch == '"':
			if inQuotes && i+1 < len(text) && text[i+1] == '"' {
				cur.WriteByte('"')
				i++
				continue
			}
			inQuotes = !inQuotes
		case ch == ',' && !inQuotes:
			row = append(row, cur.String())
			cur.Reset()
		case (ch == '\n' || ch == '\r') && !inQuotes:
			if ch == '\r' && i+1 < len(text) && text[i+1] == '\n' {
				i++
			}
			row = append(row, cur.String())
			rows = append(rows, row)
			row = nil
			cur.Reset()
		default:
			cur.WriteByte(ch)
		}
	}

	if cur.Len() > 0 || len(row) > 0 {
		row = append(row, cur.String())
		rows = append(rows, row)
	}

	if n := len(rows); n > 0 && allEmpty(rows[n-1]) {
		rows = rows[:n-1]
	}
	return rows
}

func allEmpty(row []string) bool {
	for _, cell := range row {
		if cell != "" {
			return false
		}
	}
	return true
}
