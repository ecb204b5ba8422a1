package ir

import (
	"slices"
	"strconv"
	"strings"
)

// AttrKind classifies literal attributes.
type AttrKind uint8

const (
	AttrInt AttrKind = iota + 1
	AttrString
)

func (k AttrKind) String() string {
	switch k {
	case AttrInt:
		return "int"
	case AttrString:
		return "string"
	default:
		return "unknown"
	}
}

// Attribute is a literal carried by an operation that is not an SSA value.
type Attribute interface {
	Kind() AttrKind
	String() string
}

// IntAttr is an unsigned integer immediate.
type IntAttr uint32

func (IntAttr) Kind() AttrKind { return AttrInt }
func (a IntAttr) String() string { return strconv.FormatUint(uint64(a), 10) }

// StringAttr is a symbol name or other text literal.
type StringAttr string

func (StringAttr) Kind() AttrKind { return AttrString }
func (a StringAttr) String() string { return strconv.Quote(string(a)) }

// AttrMap maps attribute names to literals.
type AttrMap map[string]Attribute

// Keys returns the attribute names in sorted order.
func (m AttrMap) Keys() []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// String renders the map as {a = 1, b = "x"} with sorted keys.
func (m AttrMap) String() string {
	var sb strings.Builder
	sb.WriteByte('{')
	for i, k := range m.Keys() {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(k)
		sb.WriteString(" = ")
		sb.WriteString(m[k].String())
	}
	sb.WriteByte('}')
	return sb.String()
}
