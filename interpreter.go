package motly

import "strings"

// interpreter applies a parsed Statement IR onto a *Node tree: a single
// pass over an ordered statement list, mutating the tree in place.
type interpreter struct {
	diags *diagBag
}

func newInterpreter() *interpreter {
	return &interpreter{diags: &diagBag{}}
}

// Interpret applies stmts onto root in place and returns every non-fatal
// diagnostic raised along the way (ref-with-properties, unresolved or
// out-of-scope clone references). It never returns a fatal error: by the
// time statements reach here they have already parsed successfully.
func Interpret(root *Node, stmts []statement) []Diagnostic {
	it := newInterpreter()
	it.run(stmts, []*Node{root}, nil)
	return it.diags.list()
}

func joinPath(path []string) string {
	return strings.Join(path, ".")
}

// run applies stmts against the scope at the top of scopeStack. pathPrefix
// is the dotted path of that scope, used only to anchor diagnostics.
func (it *interpreter) run(stmts []statement, scopeStack []*Node, pathPrefix []string) {
	for _, stmt := range stmts {
		if stmt.kind == stmtClearAll {
			*scopeStack[len(scopeStack)-1] = Node{}
			continue
		}

		target, parentScope := it.navigate(scopeStack, stmt.path)
		fullPath := append(append([]string{}, pathPrefix...), stmt.path...)

		switch stmt.kind {
		case stmtDefine:
			target.Deleted = stmt.deleted

		case stmtSetValue:
			setNodeValue(target, stmt.val)
			if stmt.hasBlock {
				if stmt.val.kind == vkRef {
					// A reference occupies a bare {linkTo} slot with no
					// properties of its own; the block is flagged and
					// dropped, not merged.
					it.diags.add(CodeRefWithProperties, fullPath,
						"a reference value does not take a properties block")
				} else {
					target.ensureProperties()
					it.run(stmt.block, append(parentScope, target), fullPath)
				}
			}
			target.Deleted = false

		case stmtAssignBoth:
			if stmt.val.kind == vkRef {
				if source, ok := it.resolveNow(parentScope, stmt.val.ref, fullPath); ok {
					cloned := source.clone()
					sanitizeCloneBoundary(cloned, 0, it.diags, fullPath)
					spliceInto(target, cloned)
				}
				if stmt.hasBlock {
					// The trailing block is applied against the
					// materialised clone as ordinary nested statements
					// (scenario: a clone keeps everything the block
					// doesn't touch, e.g. a sibling property untouched
					// by the override) — not a wholesale properties wipe.
					target.ensureProperties()
					it.run(stmt.block, append(parentScope, target), fullPath)
				}
			} else {
				resetNode(target)
				setNodeValue(target, stmt.val)
				if stmt.hasBlock {
					target.ensureProperties()
					it.run(stmt.block, append(parentScope, target), fullPath)
				}
			}
			target.Deleted = false

		case stmtReplaceProperties:
			target.Properties = nil
			target.ensureProperties()
			it.run(stmt.block, append(parentScope, target), fullPath)
			target.Deleted = false

		case stmtMergeProperties:
			target.ensureProperties()
			it.run(stmt.block, append(parentScope, target), fullPath)
			target.Deleted = false
		}
	}
}

// navigate walks path from the scope at the top of scopeStack, creating
// intermediate nodes as needed (auto-vivification; Node.ensureProperties
// already implements "a link in the way becomes an empty node"). It
// returns the target node and the scope stack as of its immediate
// parent, which is the scope a `$`-reference on this statement's own
// value resolves against.
func (it *interpreter) navigate(scopeStack []*Node, path []string) (*Node, []*Node) {
	stack := append([]*Node{}, scopeStack...)
	cur := stack[len(stack)-1]
	for _, seg := range path[:len(path)-1] {
		p := cur.ensureProperties()
		cur = p.getOrCreate(seg)
		stack = append(stack, cur)
	}
	parentProps := cur.ensureProperties()
	target := parentProps.getOrCreate(path[len(path)-1])
	return target, stack
}

// resolveNow resolves a `$`-reference immediately, against the live tree
// state, for the clone-by-reference form of AssignBoth. scopeStack is the
// scope the reference is written in; ups walks up that stack before the
// segment path is followed down from there. Resolution never follows
// through another link.
func (it *interpreter) resolveNow(scopeStack []*Node, ref refLit, path []string) (*Node, bool) {
	cur, ok := startScope(scopeStack, ref.ups)
	if !ok {
		it.diags.add(CodeUnresolvedCloneRef, path, "reference climbs past the document root")
		return nil, false
	}
	for _, seg := range ref.segments {
		if cur.Kind == KindLink {
			it.diags.add(CodeUnresolvedCloneRef, path, "reference passes through another reference at %q", seg.name)
			return nil, false
		}
		child, ok := cur.Properties.get(seg.name)
		if !ok {
			it.diags.add(CodeUnresolvedCloneRef, path, "no property %q to clone from", seg.name)
			return nil, false
		}
		cur = child
		if seg.hasIdx {
			if cur.Kind != KindArray || seg.index < 0 || seg.index >= len(cur.Elem) {
				it.diags.add(CodeUnresolvedCloneRef, path, "index [%d] out of range while cloning", seg.index)
				return nil, false
			}
			cur = cur.Elem[seg.index]
		}
	}
	return cur, true
}

// sanitizeCloneBoundary erases any link inside a freshly cloned subtree
// whose ups exceeds the depth at which it appears relative to the clone
// root. depth starts at 0 for the clone root itself and grows by one per
// Properties level or array level descended; ups == 0 (absolute) is
// always preserved.
func sanitizeCloneBoundary(node *Node, depth int, diags *diagBag, path []string) {
	if node.Kind == KindLink {
		ref, err := parseRefString(node.Link)
		if err != nil || (ref.ups != 0 && ref.ups > depth) {
			link := node.Link
			node.Kind = KindAbsent
			node.Link = ""
			diags.add(CodeCloneRefOutOfScope, path, "cloned reference %q escapes the cloned subtree", link)
		}
		return
	}
	for _, e := range node.Elem {
		sanitizeCloneBoundary(e, depth+1, diags, path)
	}
	node.Properties.each(func(name string, child *Node) {
		sanitizeCloneBoundary(child, depth+1, diags, path)
	})
}

// setNodeValue installs v's literal into n's value slot. n.Properties is
// left alone, except for a reference value, which drops it (a link has no
// properties slot).
func setNodeValue(n *Node, v *value) {
	switch v.kind {
	case vkNone:
		n.Kind = KindAbsent
		n.Str, n.Num, n.Bool, n.Date, n.Elem, n.Link, n.Env = "", 0, false, "", nil, "", ""
	case vkString:
		n.Kind = KindString
		n.Str = v.str
	case vkNumber:
		n.Kind = KindNumber
		n.Num = v.num
	case vkBool:
		n.Kind = KindBool
		n.Bool = v.bool
	case vkDate:
		n.Kind = KindDate
		n.Date = v.date
	case vkArray:
		n.Kind = KindArray
		n.Elem = buildElems(v.elem)
	case vkEnv:
		n.Kind = KindEnv
		n.Env = v.env
	case vkRef:
		n.Kind = KindLink
		n.Link = formatRef(v.ref)
		n.Properties = nil
	}
}

func buildElems(vs []*value) []*Node {
	if vs == nil {
		return nil
	}
	out := make([]*Node, len(vs))
	for i, v := range vs {
		nd := newNode()
		setNodeValue(nd, v)
		out[i] = nd
	}
	return out
}

// resetNode fully clears a node's value and properties, for the `:=`
// full-replace path.
func resetNode(n *Node) {
	n.Kind = KindAbsent
	n.Str, n.Num, n.Bool, n.Date = "", 0, false, ""
	n.Elem, n.Link, n.Env = nil, "", ""
	n.Properties = nil
}

// spliceInto replaces dst's entire content with src's, keeping dst's
// identity (anything already holding a *Node pointer to dst sees the
// clone's content through it).
func spliceInto(dst, src *Node) {
	*dst = *src
	dst.Deleted = false
}
