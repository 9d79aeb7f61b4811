package magic

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// paramPrefix lists the bytes that may come right before a ":name"
// parameter reference. Anything else (identifiers, digits, closing quotes)
// means the colon belongs to the query itself, as in "x:long" or "10:30".
const paramPrefix = "(,=<>!+-*/|[{;"

func isIdentStart(c byte) bool {
	return c == '_' || ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z')
}

func isIdentByte(c byte) bool {
	return isIdentStart(c) || ('0' <= c && c <= '9')
}

func paramAt(q string, i int) bool {
	if i+1 >= len(q) || !isIdentStart(q[i+1]) {
		return false
	}
	if i == 0 {
		return true
	}
	prev := q[i-1]
	return prev == ' ' || prev == '\t' || prev == '\n' || prev == '\r' ||
		strings.IndexByte(paramPrefix, prev) >= 0
}

// BindParams resolves ":name" references outside string literals and
// comments against lookup. Each name is declared once, in order of first
// use, in a leading "declare query_parameters(...)" statement; the
// references become plain names and the values are returned as KQL
// literals keyed by name. A query without references is returned as is.
func BindParams(query string, lookup func(name string) (any, bool)) (string, map[string]string, error) {
	var (
		b        strings.Builder
		decls    []string
		params   map[string]string
		quote    byte
		verbatim bool
	)

	for i := 0; i < len(query); i++ {
		c := query[i]
		switch {
		case quote != 0:
			b.WriteByte(c)
			if c == '\\' && !verbatim && i+1 < len(query) {
				i++
				b.WriteByte(query[i])
			} else if c == quote {
				quote = 0
			}
			continue
		case c == '"' || c == '\'':
			quote = c
			verbatim = i > 0 && query[i-1] == '@'
		case c == '/' && i+1 < len(query) && query[i+1] == '/':
			end := strings.IndexByte(query[i:], '\n')
			if end < 0 {
				end = len(query) - i
			}
			b.WriteString(query[i : i+end])
			i += end - 1
			continue
		case c == ':' && paramAt(query, i):
			j := i + 1
			for j < len(query) && isIdentByte(query[j]) {
				j++
			}
			name := query[i+1 : j]
			if _, seen := params[name]; !seen {
				if lookup == nil {
					return "", nil, fmt.Errorf("%w: %s", ErrUnboundParameter, name)
				}
				v, ok := lookup(name)
				if !ok {
					return "", nil, fmt.Errorf("%w: %s", ErrUnboundParameter, name)
				}
				typ, lit, err := kqlLiteral(v)
				if err != nil {
					return "", nil, fmt.Errorf("magic: parameter %s: %w", name, err)
				}
				if params == nil {
					params = make(map[string]string)
				}
				params[name] = lit
				decls = append(decls, name+":"+typ)
			}
			b.WriteString(name)
			i = j - 1
			continue
		}
		b.WriteByte(c)
	}

	if len(decls) == 0 {
		return query, nil, nil
	}
	return "declare query_parameters(" + strings.Join(decls, ", ") + ");\n" + b.String(), params, nil
}

// kqlLiteral returns the KQL scalar type and literal text for v.
func kqlLiteral(v any) (typ, lit string, err error) {
	switch x := v.(type) {
	case nil:
		return "dynamic", "dynamic(null)", nil
	case bool:
		return "bool", strconv.FormatBool(x), nil
	case int:
		return "long", strconv.FormatInt(int64(x), 10), nil
	case int8:
		return "long", strconv.FormatInt(int64(x), 10), nil
	case int16:
		return "long", strconv.FormatInt(int64(x), 10), nil
	case int32:
		return "long", strconv.FormatInt(int64(x), 10), nil
	case int64:
		return "long", strconv.FormatInt(x, 10), nil
	case uint:
		return "long", strconv.FormatUint(uint64(x), 10), nil
	case uint8:
		return "long", strconv.FormatUint(uint64(x), 10), nil
	case uint16:
		return "long", strconv.FormatUint(uint64(x), 10), nil
	case uint32:
		return "long", strconv.FormatUint(uint64(x), 10), nil
	case uint64:
		if x > math.MaxInt64 {
			return "", "", fmt.Errorf("%d overflows long", x)
		}
		return "long", strconv.FormatUint(x, 10), nil
	case float32:
		return "real", realLiteral(float64(x)), nil
	case float64:
		return "real", realLiteral(x), nil
	case json.Number:
		if strings.ContainsAny(string(x), ".eE") {
			return "real", string(x), nil
		}
		return "long", string(x), nil
	case string:
		return "string", stringLiteral(x), nil
	case time.Time:
		return "datetime", "datetime(" + x.UTC().Format(time.RFC3339Nano) + ")", nil
	case time.Duration:
		return "timespan", strconv.FormatInt(int64(x/100), 10) + "tick", nil
	case *Result:
		return "", "", fmt.Errorf("a query result cannot be a parameter")
	default:
		b, err := json.Marshal(x)
		if err != nil {
			return "", "", err
		}
		return "dynamic", "dynamic(" + string(b) + ")", nil
	}
}

func realLiteral(f float64) string {
	switch {
	case math.IsNaN(f):
		return "real(nan)"
	case math.IsInf(f, 1):
		return "real(+inf)"
	case math.IsInf(f, -1):
		return "real(-inf)"
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}

var stringEscaper = strings.NewReplacer(
	`\`, `\\`,
	`"`, `\"`,
	"\n", `\n`,
	"\r", `\r`,
	"\t", `\t`,
)

func stringLiteral(s string) string {
	return `"` + stringEscaper.Replace(s) + `"`
}
