package reports

import (
	"strconv"
	"strings"
)

// Row is one tokenized line of a report. Cells keep their original order;
// accessors are bounds-checked so callers can address fixed column offsets
// without caring how wide the physical line was.
type Row []string

// Cell returns the trimmed cell at index i, or "" when i is out of range.
func (r Row) Cell(i int) string {
	if i < 0 || i >= len(r) {
		return ""
	}
	return strings.TrimSpace(r[i])
}

// Int returns the cell at index i parsed as a non-negative count.
// Empty cells and the placeholder markers "x" and "-" count as zero, as do
// unparseable values.
func (r Row) Int(i int) int {
	cell := r.Cell(i)
	if cell == "" || cell == "x" || cell == "-" {
		return 0
	}
	n, err := strconv.Atoi(cell)
	if err != nil {
		// Tolerate trailing annotations like "3*"
		digits := leadingDigits(cell)
		if digits == "" {
			return 0
		}
		n, err = strconv.Atoi(digits)
		if err != nil {
			return 0
		}
	}
	if n < 0 {
		return 0
	}
	return n
}

func leadingDigits(s string) string {
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	return s[:end]
}

// SplitRows tokenizes raw report text into rows of cells. It strips a UTF-8
// BOM, normalises CRLF and bare CR line endings, and splits each line on
// commas outside double quotes.
func SplitRows(text string) []Row {
	lines := normalizeLines(text)
	rows := make([]Row, len(lines))
	for i, line := range lines {
		rows[i] = splitCells(line)
	}
	return rows
}

func normalizeLines(text string) []string {
	text = strings.TrimPrefix(text, "\ufeff")
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")

	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t")
	}
	return lines
}

func splitCells(line string) Row {
	var cells Row
	var current strings.Builder
	inQuotes := false

	for _, ch := range line {
		switch {
		case ch == '"':
			inQuotes = !inQuotes
		case ch == ',' && !inQuotes:
			cells = append(cells, current.String())
			current.Reset()
		default:
			current.WriteRune(ch)
		}
	}
	cells = append(cells, current.String())
	return cells
}
