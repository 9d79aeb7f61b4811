package render

import (
	"fmt"
	"unicode"

	"golang.org/x/text/width"
)

// cellText renders a value the way it was received. nil becomes empty.
func cellText(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case []byte:
		return string(x)
	case fmt.Stringer:
		return x.String()
	default:
		return fmt.Sprintf("%v", x)
	}
}

// displayWidth is the number of terminal columns s occupies.
// East Asian wide and fullwidth runes take two columns; combining marks take none.
func displayWidth(s string) int {
	w := 0
	for _, r := range s {
		switch {
		case unicode.Is(unicode.Mn, r), unicode.Is(unicode.Me, r):
		case r < 0x20:
		default:
			switch width.LookupRune(r).Kind() {
			case width.EastAsianWide, width.EastAsianFullwidth:
				w += 2
			default:
				w++
			}
		}
	}
	return w
}

func padRight(s string, w int) string {
	n := displayWidth(s)
	if n >= w {
		return s
	}
	b := make([]byte, 0, len(s)+w-n)
	b = append(b, s...)
	for range w - n {
		b = append(b, ' ')
	}
	return string(b)
}
