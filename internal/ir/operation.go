package ir

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNoResult is returned when the result of a result-less operation is requested.
var ErrNoResult = errors.New("ir: operation has no result")

// Operation is a single IR instruction. Its sequence links are owned by the
// Block it is placed into and are not visible outside this package.
type Operation struct {
	Name      string
	Operands  []Value
	Result    Value
	HasResult bool
	Attrs     AttrMap
	Regions   []*Block

	next, prev link
}

// Dialect returns the part of the name before the first dot.
func (op *Operation) Dialect() string {
	d, _, _ := strings.Cut(op.Name, ".")
	return d
}

// Mnemonic returns the part of the name after the first dot.
func (op *Operation) Mnemonic() string {
	if _, m, ok := strings.Cut(op.Name, "."); ok {
		return m
	}
	return op.Name
}

// ResultValue returns the op's result or an error wrapping ErrNoResult.
func (op *Operation) ResultValue() (Value, error) {
	if !op.HasResult {
		return Value{}, fmt.Errorf("%w: %s", ErrNoResult, op.Name)
	}
	return op.Result, nil
}

// Attr looks up an attribute by name.
func (op *Operation) Attr(name string) (Attribute, bool) {
	a, ok := op.Attrs[name]
	return a, ok
}

// IntAttr looks up an integer attribute by name.
func (op *Operation) IntAttr(name string) (uint32, bool) {
	a, ok := op.Attrs[name].(IntAttr)
	return uint32(a), ok
}

// StringAttr looks up a string attribute by name.
func (op *Operation) StringAttr(name string) (string, bool) {
	a, ok := op.Attrs[name].(StringAttr)
	return string(a), ok
}

// SetAttr stores an attribute, allocating the map when needed.
func (op *Operation) SetAttr(name string, a Attribute) {
	if op.Attrs == nil {
		op.Attrs = make(AttrMap, 1)
	}
	op.Attrs[name] = a
}

// Is reports whether the op has the given fully qualified name.
func (op *Operation) Is(name string) bool { return op.Name == name }

func (op *Operation) String() string { return FormatOp(op) }
