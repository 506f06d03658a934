package motly

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

// formatRef renders a parsed reference back into its canonical
// "$" "^"* path string.
func formatRef(r refLit) string {
	var b strings.Builder
	b.WriteByte('$')
	for i := 0; i < r.ups; i++ {
		b.WriteByte('^')
	}
	for i, seg := range r.segments {
		if i > 0 {
			b.WriteByte('.')
		}
		b.WriteString(seg.name)
		if seg.hasIdx {
			fmt.Fprintf(&b, "[%d]", seg.index)
		}
	}
	return b.String()
}

// startScope picks the node a reference's walk begins from, given the
// ancestor stack (root-first, ending at the immediate parent of the
// place the reference was written) and the reference's ups count.
// ups == 0 is always absolute (root); ups >= 1 climbs from the end of
// ancestors, so ups == 1 is the immediate parent itself.
func startScope(ancestors []*Node, ups int) (*Node, bool) {
	if ups == 0 {
		if len(ancestors) == 0 {
			return nil, false
		}
		return ancestors[0], true
	}
	idx := len(ancestors) - ups
	if idx < 0 || idx >= len(ancestors) {
		return nil, false
	}
	return ancestors[idx], true
}

// parseRefString parses a canonical linkTo string back into (ups,
// segments), using the same grammar as the parser's `$`-reference. It
// is used by the reference resolver, which only has the stored string,
// not the original token.
func parseRefString(s string) (refLit, error) {
	if !strings.HasPrefix(s, "$") {
		return refLit{}, fmt.Errorf("reference must start with '$'")
	}
	i := 1
	ups := 0
	for i < len(s) && s[i] == '^' {
		ups++
		i++
	}
	if i >= len(s) {
		return refLit{}, fmt.Errorf("reference has no path segments")
	}

	var segs []refSegment
	for i < len(s) {
		start := i
		for i < len(s) {
			r, w := utf8.DecodeRuneInString(s[i:])
			if !isBareChar(r) {
				break
			}
			i += w
		}
		if i == start {
			return refLit{}, fmt.Errorf("expected reference segment")
		}
		seg := refSegment{name: s[start:i]}

		if i < len(s) && s[i] == '[' {
			i++
			idxStart := i
			for i < len(s) && s[i] >= '0' && s[i] <= '9' {
				i++
			}
			if i == idxStart || i >= len(s) || s[i] != ']' {
				return refLit{}, fmt.Errorf("malformed index in reference")
			}
			n, err := strconv.Atoi(s[idxStart:i])
			if err != nil {
				return refLit{}, fmt.Errorf("malformed index in reference")
			}
			seg.hasIdx = true
			seg.index = n
			i++
		}
		segs = append(segs, seg)

		if i < len(s) && s[i] == '.' {
			i++
			continue
		}
		break
	}
	if i != len(s) {
		return refLit{}, fmt.Errorf("unexpected trailing characters in reference")
	}
	return refLit{ups: ups, segments: segs}, nil
}
