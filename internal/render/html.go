package render

import (
	"html"
	"strings"

	"github.com/tuannm99/kqlmagic/internal/resultset"
)

// HTML renders rs as a <table>. Every value lands in its own <td> with
// its literal text, escaped for HTML.
func HTML(rs *resultset.ResultSet) string {
	var b strings.Builder

	b.WriteString("<table>\n<thead>\n<tr>")
	for _, c := range rs.Columns() {
		b.WriteString("<th>")
		b.WriteString(html.EscapeString(c))
		b.WriteString("</th>")
	}
	b.WriteString("</tr>\n</thead>\n<tbody>\n")

	for _, row := range rs.All() {
		b.WriteString("<tr>")
		for _, v := range row {
			b.WriteString("<td>")
			b.WriteString(html.EscapeString(cellText(v)))
			b.WriteString("</td>")
		}
		b.WriteString("</tr>\n")
	}

	b.WriteString("</tbody>\n</table>\n")
	return b.String()
}
