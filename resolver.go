package motly

import "fmt"

// ValidateReferences performs the reference-resolution pass:
// a preorder walk of the finished tree, checking that every link resolves
// to a real node without transitively following another link. It never
// mutates the tree; unlike interpretation, resolution failures are purely
// diagnostic.
func ValidateReferences(root *Node) []Diagnostic {
	diags := &diagBag{}
	walkResolve(root, nil, nil, diags)
	return diags.list()
}

func walkResolve(node *Node, scopeStack []*Node, path []string, diags *diagBag) {
	if node.Kind == KindLink {
		resolveLink(scopeStack, node.Link, path, diags)
	}
	for i, e := range node.Elem {
		walkResolve(e, append(scopeStack, node), append(path, fmt.Sprintf("[%d]", i)), diags)
	}
	node.Properties.each(func(name string, child *Node) {
		walkResolve(child, append(scopeStack, node), append(path, name), diags)
	})
}

// resolveLink resolves a stored canonical reference string against the
// ancestor stack it was written in. Its own segment-walk is identical to
// the interpreter's resolveNow — both re-derive from the same
// parseRefString/formatRef grammar.
func resolveLink(scopeStack []*Node, linkStr string, path []string, diags *diagBag) (*Node, bool) {
	ref, err := parseRefString(linkStr)
	if err != nil {
		diags.add(CodeUnresolvedReference, path, "malformed reference %q: %s", linkStr, err)
		return nil, false
	}

	cur, ok := startScope(scopeStack, ref.ups)
	if !ok {
		diags.add(CodeUnresolvedReference, path, "reference %q climbs past the document root", linkStr)
		return nil, false
	}

	for _, seg := range ref.segments {
		if cur.Kind == KindLink {
			diags.add(CodeUnresolvedReference, path, "reference %q passes through another reference", linkStr)
			return nil, false
		}
		child, ok := cur.Properties.get(seg.name)
		if !ok {
			diags.add(CodeUnresolvedReference, path, "reference %q has no property %q", linkStr, seg.name)
			return nil, false
		}
		cur = child
		if seg.hasIdx {
			if cur.Kind != KindArray || seg.index < 0 || seg.index >= len(cur.Elem) {
				diags.add(CodeUnresolvedReference, path, "reference %q has index [%d] out of range", linkStr, seg.index)
				return nil, false
			}
			cur = cur.Elem[seg.index]
		}
	}

	if cur.Kind == KindLink {
		diags.add(CodeUnresolvedReference, path, "reference %q resolves to another reference, which is not permitted", linkStr)
		return nil, false
	}
	return cur, true
}
