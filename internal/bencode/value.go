package bencode

import (
	"sort"
	"strconv"
	"strings"
)

// Kind discriminates the Value variants.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindText
	KindInteger
	KindList
	KindDict
)

func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindInteger:
		return "integer"
	case KindList:
		return "list"
	case KindDict:
		return "dictionary"
	default:
		return "invalid"
	}
}

// Value is one decoded bencode node. The zero Value is KindInvalid.
type Value struct {
	kind Kind
	text string
	num  int64
	list []Value
	dict map[string]Value
}

// Text returns a text value holding s.
func Text(s string) Value {
	return Value{kind: KindText, text: s}
}

// Integer returns an integer value.
func Integer(n int64) Value {
	return Value{kind: KindInteger, num: n}
}

// List returns a list value holding a copy of items.
func List(items ...Value) Value {
	out := make([]Value, len(items))
	copy(out, items)
	return Value{kind: KindList, list: out}
}

// Dict returns a dictionary value holding a copy of entries.
func Dict(entries map[string]Value) Value {
	out := make(map[string]Value, len(entries))
	for k, v := range entries {
		out[k] = v
	}
	return Value{kind: KindDict, dict: out}
}

func (v Value) Kind() Kind {
	return v.kind
}

// AsText returns the text payload when v is KindText.
func (v Value) AsText() (string, bool) {
	return v.text, v.kind == KindText
}

// AsInt returns the integer payload when v is KindInteger.
func (v Value) AsInt() (int64, bool) {
	return v.num, v.kind == KindInteger
}

// AsList returns a copy of the items when v is KindList.
func (v Value) AsList() ([]Value, bool) {
	if v.kind != KindList {
		return nil, false
	}
	out := make([]Value, len(v.list))
	copy(out, v.list)
	return out, true
}

// AsDict returns a copy of the entries when v is KindDict.
func (v Value) AsDict() (map[string]Value, bool) {
	if v.kind != KindDict {
		return nil, false
	}
	out := make(map[string]Value, len(v.dict))
	for k, item := range v.dict {
		out[k] = item
	}
	return out, true
}

// Len reports the item count of a list or dictionary and the byte length
// of text. Integers report 0.
func (v Value) Len() int {
	switch v.kind {
	case KindText:
		return len(v.text)
	case KindList:
		return len(v.list)
	case KindDict:
		return len(v.dict)
	default:
		return 0
	}
}

// Index returns list item i.
func (v Value) Index(i int) (Value, bool) {
	if v.kind != KindList || i < 0 || i >= len(v.list) {
		return Value{}, false
	}
	return v.list[i], true
}

// Get returns the dictionary entry stored under key.
func (v Value) Get(key string) (Value, bool) {
	if v.kind != KindDict {
		return Value{}, false
	}
	item, ok := v.dict[key]
	return item, ok
}

// Keys returns dictionary keys in canonical (byte-wise ascending) order.
func (v Value) Keys() []string {
	if v.kind != KindDict {
		return nil
	}
	keys := make([]string, 0, len(v.dict))
	for k := range v.dict {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Equal reports deep structural equality. Lists compare in order,
// dictionaries as sets of pairs.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindText:
		return v.text == o.text
	case KindInteger:
		return v.num == o.num
	case KindList:
		if len(v.list) != len(o.list) {
			return false
		}
		for i := range v.list {
			if !v.list[i].Equal(o.list[i]) {
				return false
			}
		}
		return true
	case KindDict:
		if len(v.dict) != len(o.dict) {
			return false
		}
		for k, item := range v.dict {
			other, ok := o.dict[k]
			if !ok || !item.Equal(other) {
				return false
			}
		}
		return true
	default:
		return true
	}
}

// Interface renders v as plain Go values: string, int64, []any and
// map[string]any. Invalid values render as nil.
func (v Value) Interface() any {
	switch v.kind {
	case KindText:
		return v.text
	case KindInteger:
		return v.num
	case KindList:
		out := make([]any, 0, len(v.list))
		for _, item := range v.list {
			out = append(out, item.Interface())
		}
		return out
	case KindDict:
		out := make(map[string]any, len(v.dict))
		for k, item := range v.dict {
			out[k] = item.Interface()
		}
		return out
	default:
		return nil
	}
}

// String is a debug rendering with dictionary keys in canonical order.
func (v Value) String() string {
	var b strings.Builder
	v.writeTo(&b)
	return b.String()
}

func (v Value) writeTo(b *strings.Builder) {
	switch v.kind {
	case KindText:
		b.WriteString(strconv.Quote(v.text))
	case KindInteger:
		b.WriteString(strconv.FormatInt(v.num, 10))
	case KindList:
		b.WriteByte('[')
		for i, item := range v.list {
			if i > 0 {
				b.WriteString(", ")
			}
			item.writeTo(b)
		}
		b.WriteByte(']')
	case KindDict:
		b.WriteByte('{')
		for i, k := range v.Keys() {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(strconv.Quote(k))
			b.WriteString(": ")
			v.dict[k].writeTo(b)
		}
		b.WriteByte('}')
	default:
		b.WriteString("<invalid>")
	}
}
