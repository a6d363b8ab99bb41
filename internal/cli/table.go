package cli

import (
	"strings"
	"unicode/utf8"
)

// Table lays out rows in aligned columns under a dashed rule.
type Table struct {
	headers []string
	rows    [][]string
	gap     int
	limits  map[int]int // column index -> wrap width
}

// NewTable creates a table with the given column headers.
func NewTable(headers []string) *Table {
	return &Table{
		headers: headers,
		gap:     2,
		limits:  make(map[int]int),
	}
}

// SetColumnMaxWidth wraps cells in column col at word boundaries so they
// occupy at most width characters per line.
func (t *Table) SetColumnMaxWidth(col, width int) {
	t.limits[col] = width
}

// AddRow appends a row, padding or truncating it to the header count.
func (t *Table) AddRow(row []string) {
	cells := make([]string, len(t.headers))
	copy(cells, row)
	t.rows = append(t.rows, cells)
}

// Render returns the formatted table. A table without headers renders as
// the empty string.
func (t *Table) Render() string {
	if len(t.headers) == 0 {
		return ""
	}

	// Each row becomes a list of cells, each cell a list of lines.
	rows := make([][][]string, len(t.rows))
	for r, row := range t.rows {
		rows[r] = make([][]string, len(row))
		for c, cell := range row {
			rows[r][c] = wrapText(cell, t.limits[c])
		}
	}

	widths := make([]int, len(t.headers))
	for c, h := range t.headers {
		widths[c] = utf8.RuneCountInString(h)
	}
	for _, row := range rows {
		for c, lines := range row {
			for _, line := range lines {
				widths[c] = max(widths[c], utf8.RuneCountInString(line))
			}
		}
	}

	var sb strings.Builder
	sep := strings.Repeat(" ", t.gap)
	writeLine := func(cells []string) {
		for c, cell := range cells {
			if c > 0 {
				sb.WriteString(sep)
			}
			sb.WriteString(padRight(cell, widths[c]))
		}
		sb.WriteByte('\n')
	}

	writeLine(t.headers)
	rule := make([]string, len(widths))
	for c, w := range widths {
		rule[c] = strings.Repeat("-", w)
	}
	writeLine(rule)

	for _, row := range rows {
		height := 1
		for _, lines := range row {
			height = max(height, len(lines))
		}
		for i := 0; i < height; i++ {
			cells := make([]string, len(row))
			for c, lines := range row {
				if i < len(lines) {
					cells[c] = lines[i]
				}
			}
			writeLine(cells)
		}
	}

	return sb.String()
}

// padRight pads s with spaces to width characters. Longer strings are
// returned unchanged.
func padRight(s string, width int) string {
	n := utf8.RuneCountInString(s)
	if n >= width {
		return s
	}
	return s + strings.Repeat(" ", width-n)
}

// wrapText splits text into lines of at most width characters, breaking at
// spaces where possible. A width <= 0 disables wrapping.
func wrapText(text string, width int) []string {
	if width <= 0 || utf8.RuneCountInString(text) <= width {
		return []string{text}
	}

	var lines []string
	var line []rune
	flush := func() {
		if len(line) > 0 {
			lines = append(lines, string(line))
			line = line[:0]
		}
	}

	for _, word := range strings.Fields(text) {
		w := []rune(word)
		for len(w) > width {
			flush()
			lines = append(lines, string(w[:width]))
			w = w[width:]
		}
		switch {
		case len(line) == 0:
			line = append(line, w...)
		case len(line)+1+len(w) <= width:
			line = append(append(line, ' '), w...)
		default:
			flush()
			line = append(line, w...)
		}
	}
	flush()

	if len(lines) == 0 {
		return []string{text}
	}
	return lines
}
