package motly

import "fmt"

// parser is a recursive-descent, single-pass parser over the token
// stream produced by *lexer: a single embedded scanner-like type
// advanced with `next`, with no lookahead beyond what the lexer's own
// `startsWith` provides.
type parser struct {
	*lexer
}

// ParseSource parses MOTLY source text into a Statement IR. A syntactic
// error aborts parsing immediately and is returned as a single error
//.
func ParseSource(src string) (stmts []statement, err error) {
	defer func() {
		if r := recover(); r != nil {
			if se, ok := r.(*syntaxError); ok {
				err = se
				return
			}
			panic(r)
		}
	}()

	p := &parser{lexer: &lexer{cursor: newCursor(src)}}
	p.next()

	stmts = p.parseStatementList(tEOF)
	if p.tok != tEOF {
		panic(p.unexpected())
	}
	return stmts, nil
}

func (p *parser) unexpected() *syntaxError {
	return p.errf(p.begin, "tag-parse-syntax-error", "unexpected %s", p.tok)
}

func (p *parser) expected(what string) *syntaxError {
	return p.errf(p.begin, "tag-parse-syntax-error", "expected %s, found %s", what, p.tok)
}

func (p *parser) want(k tokKind) {
	if p.tok != k {
		panic(p.expected(k.String()))
	}
	p.next()
}

// parseStatementList parses statements until `end`, treating stray
// commas as whitespace at this level.
func (p *parser) parseStatementList(end tokKind) []statement {
	var stmts []statement
	for {
		for p.tok == tComma {
			p.next()
		}
		if p.tok == end || p.tok == tEOF {
			break
		}
		stmts = append(stmts, p.parseStatement())
	}
	return stmts
}

func (p *parser) parseBlockBody() []statement {
	p.want(tLBrace)
	body := p.parseStatementList(tRBrace)
	p.want(tRBrace)
	return body
}

func (p *parser) parseSegment() string {
	switch p.tok {
	case tIdent, tBacktick:
		s := p.ident
		p.next()
		return s
	default:
		panic(p.expected("a property name"))
	}
}

func (p *parser) parsePath() []string {
	segs := []string{p.parseSegment()}
	for p.tok == tDot {
		p.next()
		segs = append(segs, p.parseSegment())
	}
	return segs
}

// parseStatement parses one statement, dispatching on the operator
// that follows the leading path.
func (p *parser) parseStatement() statement {
	begin := p.begin

	if p.tok == tMinus {
		p.next()
		if p.tok == tDot {
			p.next()
			p.want(tDot)
			p.want(tDot)
			return statement{kind: stmtClearAll, span: p.spanFrom2(begin)}
		}
		path := p.parsePath()
		return statement{kind: stmtDefine, path: path, deleted: true, span: p.spanFrom2(begin)}
	}

	path := p.parsePath()

	switch p.tok {
	case tWalrus:
		p.next()
		v := p.parseValue()
		block, has := p.tryBlock()
		return statement{kind: stmtAssignBoth, path: path, val: v, block: block, hasBlock: has, span: p.spanFrom2(begin)}

	case tAssign:
		p.next()
		if p.tok == tLBrace {
			panic(p.errf(begin, "tag-parse-syntax-error", "'=' cannot be followed directly by '{'; use ':' for a properties-only operation"))
		}
		v := p.parseValue()
		block, has := p.tryBlock()
		return statement{kind: stmtSetValue, path: path, val: v, block: block, hasBlock: has, span: p.spanFrom2(begin)}

	case tColon:
		p.next()
		block := p.parseBlockBody()
		return statement{kind: stmtReplaceProperties, path: path, block: block, hasBlock: true, span: p.spanFrom2(begin)}

	case tLBrace:
		block := p.parseBlockBody()
		return statement{kind: stmtMergeProperties, path: path, block: block, hasBlock: true, span: p.spanFrom2(begin)}

	default:
		return statement{kind: stmtDefine, path: path, deleted: false, span: p.spanFrom2(begin)}
	}
}

func (p *parser) spanFrom2(begin Pos) Span {
	return Span{Begin: begin, End: p.end}
}

func (p *parser) tryBlock() ([]statement, bool) {
	if p.tok == tLBrace {
		return p.parseBlockBody(), true
	}
	return nil, false
}

// parseValue parses the value grammar.
func (p *parser) parseValue() *value {
	begin := p.begin

	switch p.tok {
	case tLBrack:
		return p.parseArrayValue()

	case tString:
		v := &value{kind: vkString, str: p.str, span: p.spanFrom2(begin)}
		p.next()
		return v

	case tIdent:
		v := &value{kind: vkString, str: p.ident, span: p.spanFrom2(begin)}
		p.next()
		return v

	case tNumber:
		v := &value{kind: vkNumber, num: p.num, span: p.spanFrom2(begin)}
		p.next()
		return v

	case tBool:
		v := &value{kind: vkBool, bool: p.boolV, span: p.spanFrom2(begin)}
		p.next()
		return v

	case tNone:
		v := &value{kind: vkNone, span: p.spanFrom2(begin)}
		p.next()
		return v

	case tDate:
		v := &value{kind: vkDate, date: p.date, span: p.spanFrom2(begin)}
		p.next()
		return v

	case tEnv:
		v := &value{kind: vkEnv, env: p.env, span: p.spanFrom2(begin)}
		p.next()
		return v

	case tRef:
		v := &value{kind: vkRef, ref: p.ref, span: p.spanFrom2(begin)}
		p.next()
		return v

	case tBacktick:
		panic(p.errf(begin, "tag-parse-syntax-error", "backtick strings may only be used as identifiers, not values"))

	default:
		panic(p.expected("a value"))
	}
}

func (p *parser) parseArrayValue() *value {
	begin := p.begin
	p.want(tLBrack)

	var elems []*value
	for p.tok != tRBrack && p.tok != tEOF {
		elems = append(elems, p.parseValue())

		if p.tok == tComma {
			p.next()
			continue
		}
		if p.tok != tRBrack {
			panic(p.errf(p.begin, "tag-parse-syntax-error", fmt.Sprintf("expected ',' or ']', found %s", p.tok)))
		}
	}
	p.want(tRBrack)
	return &value{kind: vkArray, elem: elems, span: p.spanFrom2(begin)}
}
