// Package docedit implements the processing-configuration editor: an
// arbitrarily nested document whose values are scalars, lists or ordered
// property maps, editable through a structural view or a raw JSON text view
// over the same state.
package docedit

import (
	"bytes"
	"encoding/json"
	"fmt"
)

type Kind int

const (
	KindScalar Kind = iota
	KindList
	KindMap
)

// Value is one node of the document tree. Map nodes remember insertion
// order so the document round-trips through JSON without reshuffling.
type Value struct {
	kind     Kind
	scalar   any
	list     []*Value
	keys     []string
	children map[string]*Value
}

func NewScalar(v any) *Value {
	return &Value{kind: KindScalar, scalar: v}
}

func NewList(items ...*Value) *Value {
	return &Value{kind: KindList, list: items}
}

func NewMap() *Value {
	return &Value{kind: KindMap, children: make(map[string]*Value)}
}

func (v *Value) Kind() Kind { return v.kind }

func (v *Value) Scalar() any { return v.scalar }

func (v *Value) Items() []*Value { return v.list }

func (v *Value) Len() int {
	switch v.kind {
	case KindList:
		return len(v.list)
	case KindMap:
		return len(v.keys)
	default:
		return 0
	}
}

// Keys returns map keys in insertion order.
func (v *Value) Keys() []string {
	out := make([]string, len(v.keys))
	copy(out, v.keys)
	return out
}

func (v *Value) Get(key string) (*Value, bool) {
	child, ok := v.children[key]
	return child, ok
}

// Set stores a child under key, appending the key on first use.
func (v *Value) Set(key string, child *Value) {
	if _, exists := v.children[key]; !exists {
		v.keys = append(v.keys, key)
	}
	v.children[key] = child
}

// Delete removes a key; unknown keys are ignored.
func (v *Value) Delete(key string) {
	if _, exists := v.children[key]; !exists {
		return
	}
	delete(v.children, key)
	for i, k := range v.keys {
		if k == key {
			v.keys = append(v.keys[:i], v.keys[i+1:]...)
			break
		}
	}
}

// Rename changes a key in place, keeping its position. A rename onto an
// existing key is rejected and the old name retained: no merge, no
// overwrite.
func (v *Value) Rename(oldKey, newKey string) bool {
	if oldKey == newKey {
		return true
	}
	child, exists := v.children[oldKey]
	if !exists {
		return false
	}
	if _, taken := v.children[newKey]; taken {
		return false
	}
	delete(v.children, oldKey)
	v.children[newKey] = child
	for i, k := range v.keys {
		if k == oldKey {
			v.keys[i] = newKey
			break
		}
	}
	return true
}

// Append adds an item to a list node.
func (v *Value) Append(item *Value) {
	v.list = append(v.list, item)
}

// SetIndex replaces a list item; out-of-range indexes are ignored.
func (v *Value) SetIndex(i int, item *Value) {
	if i < 0 || i >= len(v.list) {
		return
	}
	v.list[i] = item
}

// RemoveIndex drops a list item; out-of-range indexes are ignored.
func (v *Value) RemoveIndex(i int) {
	if i < 0 || i >= len(v.list) {
		return
	}
	v.list = append(v.list[:i], v.list[i+1:]...)
}

// Clone returns a deep copy.
func (v *Value) Clone() *Value {
	if v == nil {
		return nil
	}
	switch v.kind {
	case KindScalar:
		return &Value{kind: KindScalar, scalar: v.scalar}
	case KindList:
		items := make([]*Value, len(v.list))
		for i, item := range v.list {
			items[i] = item.Clone()
		}
		return &Value{kind: KindList, list: items}
	default:
		clone := NewMap()
		for _, key := range v.keys {
			clone.Set(key, v.children[key].Clone())
		}
		return clone
	}
}

// Equal reports deep equality, including map key order.
func (v *Value) Equal(other *Value) bool {
	if v == nil || other == nil {
		return v == other
	}
	if v.kind != other.kind {
		return false
	}
	switch v.kind {
	case KindScalar:
		return v.scalar == other.scalar
	case KindList:
		if len(v.list) != len(other.list) {
			return false
		}
		for i := range v.list {
			if !v.list[i].Equal(other.list[i]) {
				return false
			}
		}
		return true
	default:
		if len(v.keys) != len(other.keys) {
			return false
		}
		for i, key := range v.keys {
			if other.keys[i] != key {
				return false
			}
			if !v.children[key].Equal(other.children[key]) {
				return false
			}
		}
		return true
	}
}

// MarshalJSON writes the node with map keys in insertion order.
func (v *Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindScalar:
		return json.Marshal(v.scalar)
	case KindList:
		if v.list == nil {
			return []byte("[]"), nil
		}
		return json.Marshal(v.list)
	default:
		var buf bytes.Buffer
		buf.WriteByte('{')
		for i, key := range v.keys {
			if i > 0 {
				buf.WriteByte(',')
			}
			encodedKey, err := json.Marshal(key)
			if err != nil {
				return nil, err
			}
			buf.Write(encodedKey)
			buf.WriteByte(':')
			encodedChild, err := json.Marshal(v.children[key])
			if err != nil {
				return nil, err
			}
			buf.Write(encodedChild)
		}
		buf.WriteByte('}')
		return buf.Bytes(), nil
	}
}

// Serialize pretty-prints the document for the text view.
func (v *Value) Serialize() (string, error) {
	compact, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	var pretty bytes.Buffer
	if err := json.Indent(&pretty, compact, "", "  "); err != nil {
		return "", err
	}
	return pretty.String(), nil
}

// Parse decodes JSON text into a document tree, preserving object key
// order. Numbers without a fraction or exponent become int64, others
// float64.
func Parse(data []byte) (*Value, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	value, err := parseValue(dec)
	if err != nil {
		return nil, err
	}
	if dec.More() {
		return nil, fmt.Errorf("unexpected trailing content")
	}
	return value, nil
}

func parseValue(dec *json.Decoder) (*Value, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	return parseToken(dec, tok)
}

func parseToken(dec *json.Decoder, tok json.Token) (*Value, error) {
	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			node := NewMap()
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return nil, err
				}
				key, ok := keyTok.(string)
				if !ok {
					return nil, fmt.Errorf("object key is not a string")
				}
				child, err := parseValue(dec)
				if err != nil {
					return nil, err
				}
				node.Set(key, child)
			}
			if _, err := dec.Token(); err != nil { // consume '}'
				return nil, err
			}
			return node, nil
		case '[':
			node := NewList()
			for dec.More() {
				item, err := parseValue(dec)
				if err != nil {
					return nil, err
				}
				node.Append(item)
			}
			if _, err := dec.Token(); err != nil { // consume ']'
				return nil, err
			}
			return node, nil
		default:
			return nil, fmt.Errorf("unexpected delimiter %v", t)
		}
	case json.Number:
		if n, err := t.Int64(); err == nil && !isFloatLiteral(t.String()) {
			return NewScalar(n), nil
		}
		f, err := t.Float64()
		if err != nil {
			return nil, err
		}
		return NewScalar(f), nil
	case string:
		return NewScalar(t), nil
	case bool:
		return NewScalar(t), nil
	case nil:
		return NewScalar(nil), nil
	default:
		return nil, fmt.Errorf("unexpected token %v", tok)
	}
}

func isFloatLiteral(s string) bool {
	for _, r := range s {
		if r == '.' || r == 'e' || r == 'E' {
			return true
		}
	}
	return false
}
