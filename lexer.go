package motly

import (
	"fmt"
	"strconv"
	"strings"
)

// lexer produces one token at a time from a cursor: a single `next()`
// call advances state in place rather than building a token slice up
// front.
type lexer struct {
	*cursor

	tok   tokKind
	begin Pos
	end   Pos

	ident string  // tIdent
	str   string  // tString
	num   float64 // tNumber
	date  string  // tDate, raw text retained verbatim
	boolV bool    // tBool
	env   string  // tEnv
	ref   refLit  // tRef
}

func newLexer(src string) *lexer {
	lx := &lexer{cursor: newCursor(src)}
	lx.next()
	return lx
}

// isBareChar is the bare-identifier character class: ASCII alnum plus
// Latin-Extended / Latin-Extended-Additional.
func isBareChar(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
		return true
	case r >= 0x00C0 && r <= 0x024F:
		return true
	case r >= 0x1E00 && r <= 0x1EFF:
		return true
	default:
		return false
	}
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

func isBareStart(r rune) bool {
	return isBareChar(r)
}

// syntaxError is a lexical or syntactic error anchored to a span.
type syntaxError struct {
	code  string
	msg   string
	span  Span
}

func (e *syntaxError) Error() string { return e.msg }

func (lx *lexer) errf(begin Pos, code, format string, args ...interface{}) *syntaxError {
	return &syntaxError{
		code: code,
		msg:  fmt.Sprintf(format, args...),
		span: Span{Begin: begin, End: lx.pos()},
	}
}

// next scans the next token, skipping whitespace and line comments
// freely. It panics with *syntaxError on lexical failure;
// callers (the parser) recover this into a diagnostic.
func (lx *lexer) next() {
	for {
		lx.skipWhitespaceAndComments()

		lx.begin = lx.pos()

		if lx.atEOF() {
			lx.tok = tEOF
			lx.end = lx.pos()
			return
		}

		r, _ := lx.peek()

		switch {
		case r == '$':
			lx.scanRef()
			return
		case r == '@':
			lx.scanAt()
			return
		case r == '"':
			if lx.startsWith(`"""`) {
				lx.str = lx.scanDelimited(`"""`, true, true)
			} else {
				lx.str = lx.scanDelimited(`"`, false, true)
			}
			lx.tok = tString
			lx.end = lx.pos()
			return
		case r == '\'':
			if lx.startsWith(`'''`) {
				lx.str = lx.scanDelimited(`'''`, true, false)
			} else {
				lx.str = lx.scanDelimited(`'`, false, false)
			}
			lx.tok = tString
			lx.end = lx.pos()
			return
		case r == '`':
			lx.ident = lx.scanDelimited("`", false, true)
			lx.tok = tBacktick
			lx.end = lx.pos()
			return
		case lx.startsWith("<<<"):
			lx.str = lx.scanHeredoc()
			lx.tok = tString
			lx.end = lx.pos()
			return
		case r == ':':
			lx.advance()
			if r2, _ := lx.peek(); r2 == '=' {
				lx.advance()
				lx.tok = tWalrus
			} else {
				lx.tok = tColon
			}
			lx.end = lx.pos()
			return
		case r == '=':
			lx.advance()
			lx.tok = tAssign
			lx.end = lx.pos()
			return
		case r == '{':
			lx.advance()
			lx.tok = tLBrace
			lx.end = lx.pos()
			return
		case r == '}':
			lx.advance()
			lx.tok = tRBrace
			lx.end = lx.pos()
			return
		case r == '[':
			lx.advance()
			lx.tok = tLBrack
			lx.end = lx.pos()
			return
		case r == ']':
			lx.advance()
			lx.tok = tRBrack
			lx.end = lx.pos()
			return
		case r == ',':
			lx.advance()
			lx.tok = tComma
			lx.end = lx.pos()
			return
		case r == '.':
			if r2, _ := lx.peekAt(1); isDigit(r2) {
				lx.scanNumberOrBare()
			} else {
				lx.advance()
				lx.tok = tDot
				lx.end = lx.pos()
			}
			return
		case r == '-':
			r2, _ := lx.peekAt(1)
			r3, _ := lx.peekAt(2)
			if isDigit(r2) || (r2 == '.' && isDigit(r3)) {
				lx.scanNumberOrBare()
			} else {
				lx.advance()
				lx.tok = tMinus
				lx.end = lx.pos()
			}
			return
		case isDigit(r):
			lx.scanNumberOrBare()
			return
		case isBareStart(r):
			lx.scanIdent()
			return
		default:
			panic(lx.errf(lx.begin, "tag-parse-syntax-error", "unexpected character %q", string(r)))
		}
	}
}

func (lx *lexer) skipWhitespaceAndComments() {
	for {
		r, w := lx.peek()
		if w == 0 {
			return
		}
		if r == ' ' || r == '\t' || r == '\r' || r == '\n' {
			lx.advance()
			continue
		}
		if r == '#' {
			for {
				r, w := lx.peek()
				if w == 0 || r == '\n' {
					break
				}
				lx.advance()
			}
			continue
		}
		return
	}
}

func (lx *lexer) scanIdent() {
	var b strings.Builder
	for {
		r, w := lx.peek()
		if w == 0 || !isBareChar(r) {
			break
		}
		b.WriteRune(r)
		lx.advance()
	}
	lx.ident = b.String()
	lx.tok = tIdent
	lx.end = lx.pos()
}

// scanNumberOrBare implements the number-vs-bare tie-break: a maximal
// numeric match is invalidated (and rescanned as a bare identifier) if
// immediately followed by a bare-continuation character.
func (lx *lexer) scanNumberOrBare() {
	start := lx.offset
	neg := false

	if r, _ := lx.peek(); r == '-' {
		neg = true
		lx.advance()
	}

	sawDigits := false
	for {
		r, w := lx.peek()
		if w == 0 || !isDigit(r) {
			break
		}
		sawDigits = true
		lx.advance()
	}

	sawDot := false
	if r, _ := lx.peek(); r == '.' {
		if r2, _ := lx.peekAt(1); isDigit(r2) {
			sawDot = true
			lx.advance()
			for {
				r, w := lx.peek()
				if w == 0 || !isDigit(r) {
					break
				}
				lx.advance()
			}
		}
	}

	validNumber := sawDigits || sawDot

	if validNumber {
		if r, _ := lx.peek(); r == 'e' || r == 'E' {
			save := lx.offset
			lx.advance()
			if r2, _ := lx.peek(); r2 == '+' || r2 == '-' {
				lx.advance()
			}
			expDigits := false
			for {
				r, w := lx.peek()
				if w == 0 || !isDigit(r) {
					break
				}
				expDigits = true
				lx.advance()
			}
			if !expDigits {
				lx.offset = save
			}
		}
	}

	end := lx.offset
	text := lx.src[start:end]

	// Tie-break: a following bare-continuation character invalidates
	// the number and forces a bare-identifier rescan from start.
	if r, w := lx.peek(); w != 0 && isBareChar(r) && !isDigit(r) {
		lx.offset = start
		if neg {
			// No negative bare identifiers: this is a
			// genuine lexical error, not a fallback.
			panic(lx.errf(lx.begin, "tag-parse-syntax-error", "invalid numeric literal"))
		}
		lx.scanIdent()
		return
	}

	if !validNumber {
		lx.offset = start
		panic(lx.errf(lx.begin, "tag-parse-syntax-error", "invalid numeric literal"))
	}

	f, err := strconv.ParseFloat(text, 64)
	if err != nil {
		panic(lx.errf(lx.begin, "tag-parse-syntax-error", "invalid numeric literal %q", text))
	}
	lx.num = f
	lx.tok = tNumber
	lx.end = lx.pos()
}

// scanDelimited scans a single- or triple-quoted string. escaped=false
// means `\<c>` is emitted literally as two characters (single/triple-single);
// escaped=true applies the double-quote escape table.
func (lx *lexer) scanDelimited(delim string, multiline, escaped bool) string {
	begin := lx.pos()
	lx.skip(delim)

	var b strings.Builder
	for {
		if lx.atEOF() {
			panic(lx.errf(begin, "tag-parse-syntax-error", "unterminated string"))
		}
		if lx.startsWith(delim) {
			lx.skip(delim)
			return b.String()
		}
		r, _ := lx.peek()
		if r == '\n' && !multiline {
			panic(lx.errf(begin, "tag-parse-syntax-error", "unexpected newline in string"))
		}
		if r == '\\' {
			lx.advance()
			if lx.atEOF() {
				panic(lx.errf(begin, "tag-parse-syntax-error", "unterminated string"))
			}
			c, cw := lx.peek()
			if !escaped {
				b.WriteRune('\\')
				b.WriteRune(c)
				lx.advance()
				continue
			}
			lx.advance()
			switch c {
			case 'b':
				b.WriteRune('\b')
			case 'f':
				b.WriteRune('\f')
			case 'n':
				b.WriteRune('\n')
			case 'r':
				b.WriteRune('\r')
			case 't':
				b.WriteRune('\t')
			case 'u':
				b.WriteRune(lx.scanUnicodeEscape(begin))
			default:
				b.WriteRune(c)
			}
			_ = cw
			continue
		}
		b.WriteRune(r)
		lx.advance()
	}
}

func (lx *lexer) scanUnicodeEscape(begin Pos) rune {
	if lx.offset+4 > len(lx.src) {
		panic(lx.errf(begin, "tag-parse-syntax-error", "invalid \\u escape"))
	}
	hex := lx.src[lx.offset : lx.offset+4]
	n, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		panic(lx.errf(begin, "tag-parse-syntax-error", "invalid \\u escape %q", hex))
	}
	lx.offset += 4
	return rune(n)
}

// scanHeredoc implements the <<< ... >>> dedenting heredoc.
func (lx *lexer) scanHeredoc() string {
	begin := lx.pos()
	lx.skip("<<<")

	for {
		r, w := lx.peek()
		if w == 0 || r == '\n' {
			break
		}
		if r != ' ' && r != '\t' {
			panic(lx.errf(begin, "tag-parse-syntax-error", "expected newline after <<<"))
		}
		lx.advance()
	}
	if lx.atEOF() {
		panic(lx.errf(begin, "tag-parse-syntax-error", "unterminated heredoc"))
	}
	lx.advance() // consume the newline

	var lines []string
	for {
		if lx.atEOF() {
			panic(lx.errf(begin, "tag-parse-syntax-error", "unterminated heredoc"))
		}
		lineStart := lx.offset
		for {
			r, w := lx.peek()
			if w == 0 || r == '\n' {
				break
			}
			lx.advance()
		}
		line := lx.src[lineStart:lx.offset]
		if strings.TrimSpace(line) == ">>>" {
			if r, w := lx.peek(); w != 0 && r == '\n' {
				lx.advance()
			}
			break
		}
		lines = append(lines, line)
		if r, w := lx.peek(); w != 0 && r == '\n' {
			lx.advance()
		}
	}

	strip := 0
	for _, l := range lines {
		if strings.TrimSpace(l) == "" {
			continue
		}
		strip = leadingWhitespaceWidth(l)
		break
	}

	var b strings.Builder
	for _, l := range lines {
		if strings.TrimSpace(l) == "" {
			b.WriteString("")
		} else if len(l) >= strip {
			b.WriteString(l[strip:])
		} else {
			b.WriteString(l)
		}
		b.WriteString("\n")
	}
	return b.String()
}

func leadingWhitespaceWidth(s string) int {
	n := 0
	for n < len(s) && (s[n] == ' ' || s[n] == '\t') {
		n++
	}
	return n
}

// scanAt lexes the `@`-form: @true, @false, @none, @env.NAME, or a date.
func (lx *lexer) scanAt() {
	begin := lx.pos()
	lx.advance() // '@'

	switch {
	case lx.startsWith("true"):
		lx.skip("true")
		lx.boolV = true
		lx.tok = tBool
	case lx.startsWith("false"):
		lx.skip("false")
		lx.boolV = false
		lx.tok = tBool
	case lx.startsWith("none"):
		lx.skip("none")
		lx.tok = tNone
	case lx.startsWith("env."):
		lx.skip("env.")
		var b strings.Builder
		for {
			r, w := lx.peek()
			if w == 0 || !isBareChar(r) {
				break
			}
			b.WriteRune(r)
			lx.advance()
		}
		if b.Len() == 0 {
			panic(lx.errf(begin, "tag-parse-syntax-error", "expected environment variable name"))
		}
		lx.env = b.String()
		lx.tok = tEnv
	default:
		lx.date = lx.scanDate(begin)
		lx.tok = tDate
	}
	lx.end = lx.pos()
}

// scanDate consumes @YYYY-MM-DD[THH:MM[:SS[.fff]][Z|±HH:MM|±HHMM]] using
// fixed-width ASCII-digit consumption, retaining the exact text so a
// downstream consumer can preserve the original precision.
func (lx *lexer) scanDate(begin Pos) string {
	start := lx.offset

	digits := func(n int) bool {
		for i := 0; i < n; i++ {
			r, w := lx.peek()
			if w == 0 || !isDigit(r) {
				return false
			}
			lx.advance()
		}
		return true
	}
	lit := func(s string) bool {
		if lx.startsWith(s) {
			lx.skip(s)
			return true
		}
		return false
	}

	ok := digits(4) && lit("-") && digits(2) && lit("-") && digits(2)
	if !ok {
		panic(lx.errf(begin, "tag-parse-syntax-error", "invalid date literal"))
	}

	if lit("T") {
		if !(digits(2) && lit(":") && digits(2)) {
			panic(lx.errf(begin, "tag-parse-syntax-error", "invalid date literal"))
		}
		if lit(":") {
			if !digits(2) {
				panic(lx.errf(begin, "tag-parse-syntax-error", "invalid date literal"))
			}
			if lit(".") {
				if !digits(3) {
					panic(lx.errf(begin, "tag-parse-syntax-error", "invalid date literal"))
				}
			}
		}
		switch {
		case lit("Z"):
		case lx.startsWith("+") || lx.startsWith("-"):
			signOffset := lx.offset
			lx.advance()
			hhOffset := lx.offset
			if digits(2) {
				colonOffset := lx.offset
				if lit(":") {
					if !digits(2) {
						panic(lx.errf(begin, "tag-parse-syntax-error", "invalid date literal"))
					}
				} else {
					lx.offset = colonOffset
					if !digits(2) {
						lx.offset = signOffset
						panic(lx.errf(begin, "tag-parse-syntax-error", "invalid date literal"))
					}
				}
			} else {
				lx.offset = hhOffset
				panic(lx.errf(begin, "tag-parse-syntax-error", "invalid date literal"))
			}
		}
	}

	return lx.src[start:lx.offset]
}

// scanRef lexes `$` `^`* segment ("." segment)*, where each segment is a
// name optionally followed by a single "[" digits "]".
func (lx *lexer) scanRef() {
	begin := lx.pos()
	lx.advance() // '$'

	ups := 0
	for {
		r, w := lx.peek()
		if w == 0 || r != '^' {
			break
		}
		ups++
		lx.advance()
	}

	var segs []refSegment
	for {
		r, w := lx.peek()
		if w == 0 || !isBareChar(r) {
			panic(lx.errf(begin, "tag-parse-syntax-error", "expected reference segment"))
		}
		var b strings.Builder
		for {
			r, w := lx.peek()
			if w == 0 || !isBareChar(r) {
				break
			}
			b.WriteRune(r)
			lx.advance()
		}
		seg := refSegment{name: b.String()}

		if r, w := lx.peek(); w != 0 && r == '[' {
			lx.advance()
			var idx strings.Builder
			for {
				r, w := lx.peek()
				if w == 0 || !isDigit(r) {
					break
				}
				idx.WriteRune(r)
				lx.advance()
			}
			if idx.Len() == 0 {
				panic(lx.errf(begin, "tag-parse-syntax-error", "expected index digits"))
			}
			if r, w := lx.peek(); w == 0 || r != ']' {
				panic(lx.errf(begin, "tag-parse-syntax-error", "expected ']'"))
			}
			lx.advance()
			n, _ := strconv.Atoi(idx.String())
			seg.hasIdx = true
			seg.index = n
		}
		segs = append(segs, seg)

		if r, w := lx.peek(); w != 0 && r == '.' {
			lx.advance()
			continue
		}
		break
	}

	lx.ref = refLit{ups: ups, segments: segs}
	lx.tok = tRef
	lx.end = lx.pos()
}
