package render

import (
	"fmt"
	"strings"

	"github.com/tuannm99/kqlmagic/internal/resultset"
)

// Style selects the plain-text table layout.
type Style int

const (
	// StyleGrid draws a bordered table with +---+ rule lines.
	StyleGrid Style = iota
	// StylePlainColumns draws only the header rule and " | " separators.
	StylePlainColumns
)

func (s Style) String() string {
	switch s {
	case StyleGrid:
		return "GRID"
	case StylePlainColumns:
		return "PLAIN_COLUMNS"
	default:
		return fmt.Sprintf("Style(%d)", int(s))
	}
}

// ParseStyle accepts the names returned by Style.String, case-insensitively.
func ParseStyle(s string) (Style, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "GRID", "DEFAULT", "":
		return StyleGrid, nil
	case "PLAIN_COLUMNS", "PLAIN":
		return StylePlainColumns, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownStyle, s)
	}
}

// Text renders rs as an aligned table. In both styles adjacent cells are
// separated by " | ", so a row of (1, foo) always contains "1 | foo".
// Cell text is never trimmed; a value with line breaks spans several
// physical lines of its row.
func Text(rs *resultset.ResultSet, style Style) string {
	cols := rs.Columns()
	if len(cols) == 0 {
		return ""
	}

	header := splitLines(cols)
	rows := make([][][]string, 0, rs.Len())
	for _, row := range rs.All() {
		out := make([]string, len(row))
		for i, v := range row {
			if v == nil {
				out[i] = "NULL"
			} else {
				out[i] = cellText(v)
			}
		}
		rows = append(rows, splitLines(out))
	}

	// 1) compute widths
	widths := make([]int, len(cols))
	for _, lines := range append([][][]string{header}, rows...) {
		for _, line := range lines {
			for i, s := range line {
				if w := displayWidth(s); w > widths[i] {
					widths[i] = w
				}
			}
		}
	}

	var b strings.Builder
	switch style {
	case StylePlainColumns:
		writePlain(&b, header, rows, widths)
	default:
		writeGrid(&b, header, rows, widths)
	}
	return b.String()
}

// splitLines turns one logical row into its physical lines.
func splitLines(values []string) [][]string {
	parts := make([][]string, len(values))
	height := 1
	for i, v := range values {
		parts[i] = strings.Split(v, "\n")
		height = max(height, len(parts[i]))
	}
	lines := make([][]string, height)
	for l := range lines {
		line := make([]string, len(values))
		for i := range values {
			if l < len(parts[i]) {
				line[i] = parts[i][l]
			}
		}
		lines[l] = line
	}
	return lines
}

func writePlain(b *strings.Builder, header [][]string, rows [][][]string, widths []int) {
	row := func(lines [][]string) {
		for _, values := range lines {
			for i, v := range values {
				if i > 0 {
					b.WriteString(" | ")
				}
				if i == len(values)-1 {
					b.WriteString(v)
				} else {
					b.WriteString(padRight(v, widths[i]))
				}
			}
			b.WriteByte('\n')
		}
	}

	row(header)
	for i, w := range widths {
		if i > 0 {
			b.WriteString("-+-")
		}
		b.WriteString(strings.Repeat("-", w))
	}
	b.WriteByte('\n')
	for _, r := range rows {
		row(r)
	}
}

func writeGrid(b *strings.Builder, header [][]string, rows [][][]string, widths []int) {
	rule := func() {
		b.WriteByte('+')
		for _, w := range widths {
			b.WriteString(strings.Repeat("-", w+2))
			b.WriteByte('+')
		}
		b.WriteByte('\n')
	}
	row := func(lines [][]string) {
		for _, values := range lines {
			b.WriteString("| ")
			for i := range values {
				if i > 0 {
					b.WriteString(" | ")
				}
				b.WriteString(padRight(values[i], widths[i]))
			}
			b.WriteString(" |\n")
		}
	}

	rule()
	row(header)
	rule()
	for _, r := range rows {
		row(r)
	}
	rule()
}
