package main

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/tuannm99/kqlmagic/internal/magic"
	"github.com/tuannm99/kqlmagic/internal/render"
)

// session ties a Magic to the shell's variables and output.
type session struct {
	magic *magic.Magic
	vars  render.MapNamespace
	out   io.Writer
	last  *magic.Result
}

func newSession(m *magic.Magic, out io.Writer) *session {
	return &session{magic: m, vars: render.MapNamespace{}, out: out}
}

// statementComplete reports whether buf ends with ';' outside quotes and
// that ';' closes a query rather than a let, set, declare or alias
// statement. Those only prepare the query that follows them.
func statementComplete(buf string) bool {
	var quote rune
	escaped := false
	last := rune(0)
	prev, end := -1, -1 // top-level ';' positions

	for i, r := range buf {
		if escaped {
			escaped = false
			last = r
			continue
		}
		switch {
		case r == '\\':
			escaped = true
		case quote != 0:
			if r == quote {
				quote = 0
			}
		case r == '\'' || r == '"':
			quote = r
		case r == ';':
			prev, end = end, i
		}
		if !isSpace(r) {
			last = r
		}
	}
	if quote != 0 || last != ';' {
		return false
	}

	stmt := strings.Fields(buf[prev+1 : end])
	if len(stmt) == 0 {
		return true
	}
	switch strings.ToLower(stmt[0]) {
	case "let", "set", "declare", "alias":
		return false
	}
	return true
}

func isSpace(r rune) bool { return r == ' ' || r == '\t' || r == '\n' || r == '\r' }

// normalizeStmt drops the shell's terminating ';'.
func normalizeStmt(buf string) string {
	s := strings.TrimSpace(buf)
	return strings.TrimSpace(strings.TrimSuffix(s, ";"))
}

func isMetaCommand(line string) bool {
	line = strings.TrimSpace(line)
	return strings.HasPrefix(line, "\\") ||
		line == "quit" || line == "exit"
}

const helpText = `meta commands:
  \q | quit | exit       quit
  \history               print history
  \set <key> <value>     change an option (autolimit, displaylimit, style,
                         column_local_vars, auto_dataframe, feedback)
  \csv <path>            write the last result to a CSV file
  \html                  print the last result as HTML
  \vars                  list bound variables
  \conn                  show connections
  \help                  show help

kql:
  start with kusto://host:port/db to pick a connection
  "name << query" keeps the result as a variable
  end statement with ';' (multiline is supported)
  a ';' after let, set, declare or alias continues the statement`

// meta runs a backslash command. It returns false when the shell should exit.
func (s *session) meta(line string, h *History) bool {
	fields := strings.Fields(line)
	cmd, args := fields[0], fields[1:]

	switch cmd {
	case "\\q", "quit", "exit":
		return false
	case "\\help":
		fmt.Fprintln(s.out, helpText)
	case "\\history":
		h.Print(s.out, 50)
	case "\\set":
		if len(args) < 2 {
			fmt.Fprintln(s.out, "usage: \\set <key> <value>")
			break
		}
		if err := s.magic.Options.Set(args[0], strings.Join(args[1:], " ")); err != nil {
			fmt.Fprintf(s.out, "error: %v\n", err)
		}
	case "\\csv":
		if len(args) != 1 {
			fmt.Fprintln(s.out, "usage: \\csv <path>")
			break
		}
		if s.last == nil {
			fmt.Fprintln(s.out, "no result yet")
			break
		}
		f, err := s.last.CSVFile(args[0])
		if err != nil {
			fmt.Fprintf(s.out, "error: %v\n", err)
			break
		}
		fmt.Fprintln(s.out, f)
	case "\\html":
		if s.last == nil {
			fmt.Fprintln(s.out, "no result yet")
			break
		}
		fmt.Fprint(s.out, s.last.HTML())
	case "\\vars":
		names := make([]string, 0, len(s.vars))
		for k := range s.vars {
			names = append(names, k)
		}
		sort.Strings(names)
		for _, n := range names {
			fmt.Fprintf(s.out, "%s\t%s\n", n, describe(s.vars[n]))
		}
	case "\\conn":
		for _, c := range s.magic.Connections() {
			mark := " "
			if c == s.magic.Connection() {
				mark = "*"
			}
			fmt.Fprintf(s.out, "%s %s\n", mark, c)
		}
	default:
		fmt.Fprintf(s.out, "unknown command: %s\n", cmd)
	}
	return true
}

func describe(v any) string {
	switch x := v.(type) {
	case *magic.Result:
		return fmt.Sprintf("result (%d rows)", x.Len())
	case []any:
		return fmt.Sprintf("column (%d values)", len(x))
	default:
		return fmt.Sprintf("%T", v)
	}
}

// exec runs one statement and prints whatever the magic returns.
func (s *session) exec(ctx context.Context, stmt string) error {
	out, err := s.magic.Run(ctx, stmt, "", s.vars)
	if out != nil && out.Result != nil {
		s.last = out.Result
	}
	if err != nil {
		return err
	}

	switch v := out.Display().(type) {
	case *render.Frame:
		fmt.Fprint(s.out, render.Text(out.Result.Truncated(s.magic.Options.DisplayLimit), s.magic.Options.RenderStyle()))
		r, c := v.Shape()
		fmt.Fprintf(s.out, "[%d rows x %d columns]\n", r, c)
	case *magic.Result:
		fmt.Fprint(s.out, v.String())
	case nil:
		if out.Bound {
			fmt.Fprintf(s.out, "bound columns: %s\n", strings.Join(out.Result.Columns(), ", "))
		}
	}
	if out.Feedback != "" {
		fmt.Fprintln(s.out, out.Feedback)
	}
	return nil
}
