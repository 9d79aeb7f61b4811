package magic

import (
	"regexp"
	"strings"
)

// Invocation is one parsed %kql line or %%kql cell.
type Invocation struct {
	Connection string // "" keeps the current connection
	Assign     string // "x << query" stores the result as x
	Query      string
}

var assignRe = regexp.MustCompile(`^([A-Za-z_][A-Za-z0-9_]*)\s*<<`)

// Parse splits the magic line and cell body into connection, assignment
// and query text. The query itself is opaque and passed through as is.
func Parse(line, cell string) (Invocation, error) {
	var inv Invocation

	s := strings.TrimSpace(line + "\n" + cell)
	if s == "" {
		return inv, ErrEmptyQuery
	}

	// connection token: first field containing "://"
	if fields := strings.Fields(s); len(fields) > 0 && strings.Contains(fields[0], "://") {
		inv.Connection = fields[0]
		s = strings.TrimSpace(strings.TrimPrefix(s, fields[0]))
	}

	if m := assignRe.FindStringSubmatch(s); m != nil {
		inv.Assign = m[1]
		s = strings.TrimSpace(s[len(m[0]):])
	}

	inv.Query = s
	if inv.Query == "" && inv.Connection == "" {
		return inv, ErrEmptyQuery
	}
	return inv, nil
}
