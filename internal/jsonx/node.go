// Package jsonx is a forgiving view over decoded JSON.
//
// Upstream payloads omit, rename and retype fields freely, so every accessor
// here reports absence instead of failing. Missing keys, nulls and wrong
// types all collapse to the "not present" case and callers pick a default.
package jsonx

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Node is a possibly-absent JSON value. The zero Node is absent.
type Node struct {
	v       any
	present bool
}

// Parse decodes data keeping numbers as json.Number.
func Parse(data []byte) (Node, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return Node{}, fmt.Errorf("decode json: %w", err)
	}
	// 尾部多余内容视为格式错误
	if dec.More() {
		return Node{}, fmt.Errorf("decode json: trailing data")
	}
	return Node{v: v, present: true}, nil
}

// Exists reports whether the node holds a non-null value.
func (n Node) Exists() bool {
	return n.present && n.v != nil
}

func (n Node) IsObject() bool {
	_, ok := n.v.(map[string]any)
	return n.present && ok
}

func (n Node) IsArray() bool {
	_, ok := n.v.([]any)
	return n.present && ok
}

// Get returns the member key of an object node.
func (n Node) Get(key string) Node {
	m, ok := n.v.(map[string]any)
	if !n.present || !ok {
		return Node{}
	}
	v, ok := m[key]
	if !ok {
		return Node{}
	}
	return Node{v: v, present: true}
}

// Path follows nested object keys, e.g. Path("data", "list").
func (n Node) Path(keys ...string) Node {
	cur := n
	for _, k := range keys {
		cur = cur.Get(k)
		if !cur.present {
			return Node{}
		}
	}
	return cur
}

// Index returns element i of an array node.
func (n Node) Index(i int) Node {
	a, ok := n.v.([]any)
	if !n.present || !ok || i < 0 || i >= len(a) {
		return Node{}
	}
	return Node{v: a[i], present: true}
}

// Array returns the elements of an array node, or nil.
func (n Node) Array() []Node {
	a, ok := n.v.([]any)
	if !n.present || !ok {
		return nil
	}
	out := make([]Node, len(a))
	for i, v := range a {
		out[i] = Node{v: v, present: true}
	}
	return out
}

// Len is the element count of an array node, 0 otherwise.
func (n Node) Len() int {
	a, _ := n.v.([]any)
	return len(a)
}

// Text returns the textual content of a scalar node.
// Numbers and booleans render as their JSON text; objects, arrays and null are absent.
func (n Node) Text() (string, bool) {
	if !n.present {
		return "", false
	}
	switch v := n.v.(type) {
	case string:
		return v, true
	case json.Number:
		return v.String(), true
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), true
	case bool:
		return strconv.FormatBool(v), true
	default:
		return "", false
	}
}

// Str is Text with a default.
func (n Node) Str(def string) string {
	if s, ok := n.Text(); ok {
		return s
	}
	return def
}

// Int64 accepts integral numbers and numeric strings.
func (n Node) Int64() (int64, bool) {
	s, ok := n.Text()
	if !ok {
		return 0, false
	}
	if _, isBool := n.v.(bool); isBool {
		return 0, false
	}
	i, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, false
	}
	return i, true
}

func (n Node) Int64Or(def int64) int64 {
	if i, ok := n.Int64(); ok {
		return i
	}
	return def
}

func (n Node) Int() (int, bool) {
	i, ok := n.Int64()
	if !ok || int64(int(i)) != i {
		return 0, false
	}
	return int(i), true
}

func (n Node) IntOr(def int) int {
	if i, ok := n.Int(); ok {
		return i
	}
	return def
}

// IntPtr keeps absence distinct from zero.
func (n Node) IntPtr() *int {
	if i, ok := n.Int(); ok {
		return &i
	}
	return nil
}

// Bool treats JSON booleans and non-zero integers as true.
func (n Node) Bool() bool {
	if b, ok := n.v.(bool); ok && n.present {
		return b
	}
	return n.IntOr(0) != 0
}
