package dialect

import "strings"

// Rebind replaces the `?` marker found at each offset of text with the
// dialect's placeholder for that position. Offsets must be ascending and point
// at `?` bytes; literal question marks elsewhere in text are left alone.
// Dialects that already use `?` return text unchanged.
func Rebind(d Dialect, text string, offsets []int) string {
	if d == nil || len(offsets) == 0 || d.Placeholder(1) == "?" {
		return text
	}

	var sb strings.Builder
	sb.Grow(len(text) + len(offsets)*3)

	last := 0
	for i, off := range offsets {
		sb.WriteString(text[last:off])
		sb.WriteString(d.Placeholder(i + 1))
		last = off + 1
	}
	sb.WriteString(text[last:])
	return sb.String()
}
