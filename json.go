package motly

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// MarshalJSON encodes a Node into the wire shape:
//
//	{ "eq": <wire-value>?, "properties": { key: <wire-node>, ... }?, "deleted": true? }
//
// Properties are written in insertion order, not Go map order — built by
// hand rather than through encoding/json's map support, which always
// sorts keys alphabetically.
func (n *Node) MarshalJSON() ([]byte, error) {
	if n == nil {
		return []byte("null"), nil
	}

	var buf bytes.Buffer
	buf.WriteByte('{')
	wrote := false

	writeComma := func() {
		if wrote {
			buf.WriteByte(',')
		}
		wrote = true
	}

	if eq, ok, err := n.marshalValue(); err != nil {
		return nil, err
	} else if ok {
		writeComma()
		buf.WriteString(`"eq":`)
		buf.Write(eq)
	}

	if n.Properties.len() > 0 {
		propsJSON, err := marshalPropertiesOrdered(n.Properties)
		if err != nil {
			return nil, err
		}
		writeComma()
		buf.WriteString(`"properties":`)
		buf.Write(propsJSON)
	}

	if n.Deleted {
		writeComma()
		buf.WriteString(`"deleted":true`)
	}

	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (n *Node) marshalValue() (raw []byte, present bool, err error) {
	switch n.Kind {
	case KindAbsent:
		return nil, false, nil
	case KindString:
		b, err := json.Marshal(n.Str)
		return b, true, err
	case KindNumber:
		b, err := json.Marshal(n.Num)
		return b, true, err
	case KindBool:
		b, err := json.Marshal(n.Bool)
		return b, true, err
	case KindDate:
		b, err := json.Marshal(struct {
			Date string `json:"$date"`
		}{n.Date})
		return b, true, err
	case KindArray:
		b, err := json.Marshal(n.Elem)
		return b, true, err
	case KindLink:
		b, err := json.Marshal(struct {
			LinkTo string `json:"linkTo"`
		}{n.Link})
		return b, true, err
	case KindEnv:
		b, err := json.Marshal(struct {
			Env string `json:"env"`
		}{n.Env})
		return b, true, err
	default:
		return nil, false, fmt.Errorf("motly: unknown value kind %d", n.Kind)
	}
}

func marshalPropertiesOrdered(p *props) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	first := true
	var werr error
	p.each(func(name string, child *Node) {
		if werr != nil {
			return
		}
		if !first {
			buf.WriteByte(',')
		}
		first = false
		key, err := json.Marshal(name)
		if err != nil {
			werr = err
			return
		}
		buf.Write(key)
		buf.WriteByte(':')
		val, err := json.Marshal(child)
		if err != nil {
			werr = err
			return
		}
		buf.Write(val)
	})
	if werr != nil {
		return nil, werr
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes the wire shape back into a Node. Property
// insertion order is not recoverable from a JSON object (Go's decoder
// does not expose key order for map-shaped values) — order is an
// interpreter-time invariant, not a wire-format guarantee.
func (n *Node) UnmarshalJSON(data []byte) error {
	var wire struct {
		Eq         json.RawMessage            `json:"eq"`
		Properties map[string]json.RawMessage `json:"properties"`
		Deleted    bool                       `json:"deleted"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}

	*n = Node{Deleted: wire.Deleted}

	if len(wire.Eq) > 0 && !bytes.Equal(wire.Eq, []byte("null")) {
		if err := n.unmarshalValue(wire.Eq); err != nil {
			return err
		}
	}

	if len(wire.Properties) > 0 {
		n.Properties = newProps()
		for name, raw := range wire.Properties {
			child := newNode()
			if err := json.Unmarshal(raw, child); err != nil {
				return err
			}
			n.Properties.set(name, child)
		}
	}
	return nil
}

func (n *Node) unmarshalValue(raw json.RawMessage) error {
	var dateWrap struct {
		Date string `json:"$date"`
	}
	if err := json.Unmarshal(raw, &dateWrap); err == nil && dateWrap.Date != "" {
		n.Kind, n.Date = KindDate, dateWrap.Date
		return nil
	}

	var linkWrap struct {
		LinkTo string `json:"linkTo"`
	}
	if err := json.Unmarshal(raw, &linkWrap); err == nil && linkWrap.LinkTo != "" {
		n.Kind, n.Link = KindLink, linkWrap.LinkTo
		return nil
	}

	var envWrap struct {
		Env string `json:"env"`
	}
	if err := json.Unmarshal(raw, &envWrap); err == nil && envWrap.Env != "" {
		n.Kind, n.Env = KindEnv, envWrap.Env
		return nil
	}

	var arr []json.RawMessage
	if err := json.Unmarshal(raw, &arr); err == nil {
		n.Kind = KindArray
		n.Elem = make([]*Node, len(arr))
		for i, item := range arr {
			child := newNode()
			if err := json.Unmarshal(item, child); err != nil {
				return err
			}
			n.Elem[i] = child
		}
		return nil
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		n.Kind, n.Str = KindString, s
		return nil
	}

	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		n.Kind, n.Num = KindNumber, f
		return nil
	}

	var b bool
	if err := json.Unmarshal(raw, &b); err == nil {
		n.Kind, n.Bool = KindBool, b
		return nil
	}

	return fmt.Errorf("motly: unrecognized value shape: %s", raw)
}

// ToJSON renders a Node in wire form, optionally pretty-printed with a
// two-space indent.
func ToJSON(n *Node, pretty bool) ([]byte, error) {
	b, err := json.Marshal(n)
	if err != nil {
		return nil, err
	}
	if !pretty {
		return b, nil
	}
	var out bytes.Buffer
	if err := json.Indent(&out, b, "", "  "); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

// String renders a Node as pretty JSON for debugging; malformed nodes
// (which should not occur) fall back to a placeholder rather than
// panicking from a Stringer.
func (n *Node) String() string {
	b, err := ToJSON(n, true)
	if err != nil {
		return fmt.Sprintf("<motly.Node: %s>", err)
	}
	return string(b)
}
