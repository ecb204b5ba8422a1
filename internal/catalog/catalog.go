// Package catalog holds declarative operation definitions.
//
// A dialect describes each of its operations once as an OpDef: the name, the
// operand names, the result policy, an optional literal attribute and the
// number of nested regions. Constructors are derived from the definition, so
// adding an operation is a table entry rather than a new type.
package catalog

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"lorax/internal/ir"
)

// ResultPolicy says what an operation's result is.
type ResultPolicy uint8

const (
	// ResultNone: the operation produces nothing.
	ResultNone ResultPolicy = iota
	// ResultFresh: a new value, numbered when the op is placed.
	ResultFresh
	// ResultAlias: the result is one of the operands (OpDef.AliasOf).
	ResultAlias
)

func (p ResultPolicy) String() string {
	switch p {
	case ResultNone:
		return "none"
	case ResultFresh:
		return "fresh"
	case ResultAlias:
		return "alias"
	default:
		return fmt.Sprintf("ResultPolicy(%d)", uint8(p))
	}
}

var (
	ErrInvalidDef = errors.New("catalog: invalid definition")
	ErrDuplicate  = errors.New("catalog: duplicate operation")
	ErrArity      = errors.New("catalog: wrong number of operands")
	ErrAttribute  = errors.New("catalog: bad attribute")
	ErrRegions    = errors.New("catalog: wrong number of regions")
)

// OpDef describes one operation.
type OpDef struct {
	Name     string // "dialect.mnemonic"
	Operands []string
	Result   ResultPolicy
	AliasOf  string     // operand name, ResultAlias only
	Attr     string     // attribute name, empty when the op takes none
	AttrKind ir.AttrKind
	Regions  int
	Summary  string

	aliasIdx int
}

// Args supplies everything an OpDef needs to build an operation.
type Args struct {
	Operands []ir.Value
	Attr     ir.Attribute
	Regions  []*ir.Block
}

// Build constructs the operation from operands alone. It panics when the
// operand count does not match; call sites are fixed code, so that is a bug.
// Attributes and regions are left empty.
func (d *OpDef) Build(operands ...ir.Value) ir.Operation {
	if len(operands) != len(d.Operands) {
		panic(fmt.Errorf("%w: %s takes %d, got %d", ErrArity, d.Name, len(d.Operands), len(operands)))
	}
	return d.build(operands, nil, nil)
}

// Instantiate is the checked constructor.
func (d *OpDef) Instantiate(args Args) (ir.Operation, error) {
	if len(args.Operands) != len(d.Operands) {
		return ir.Operation{}, fmt.Errorf("%w: %s takes %d, got %d", ErrArity, d.Name, len(d.Operands), len(args.Operands))
	}
	switch {
	case d.Attr == "" && args.Attr != nil:
		return ir.Operation{}, fmt.Errorf("%w: %s takes no attribute", ErrAttribute, d.Name)
	case d.Attr != "" && args.Attr == nil:
		return ir.Operation{}, fmt.Errorf("%w: %s requires %q", ErrAttribute, d.Name, d.Attr)
	case d.Attr != "" && args.Attr.Kind() != d.AttrKind:
		return ir.Operation{}, fmt.Errorf("%w: %s.%s must be %s, got %s", ErrAttribute, d.Name, d.Attr, d.AttrKind, args.Attr.Kind())
	}
	if len(args.Regions) != d.Regions {
		return ir.Operation{}, fmt.Errorf("%w: %s has %d, got %d", ErrRegions, d.Name, d.Regions, len(args.Regions))
	}
	return d.build(args.Operands, args.Attr, args.Regions), nil
}

// MustInstantiate panics where Instantiate would fail.
func (d *OpDef) MustInstantiate(args Args) ir.Operation {
	op, err := d.Instantiate(args)
	if err != nil {
		panic(err)
	}
	return op
}

func (d *OpDef) build(operands []ir.Value, attr ir.Attribute, regions []*ir.Block) ir.Operation {
	op := ir.Operation{
		Name:     d.Name,
		Operands: slices.Clone(operands),
	}
	switch d.Result {
	case ResultFresh:
		op.HasResult = true
	case ResultAlias:
		op.HasResult = true
		op.Result = operands[d.aliasIdx]
	}
	if attr != nil {
		op.Attrs = ir.AttrMap{d.Attr: attr}
	}
	if len(regions) > 0 {
		op.Regions = slices.Clone(regions)
	}
	return op
}

// Dialect returns the dialect prefix of the definition's name.
func (d *OpDef) Dialect() string {
	dialect, _, _ := strings.Cut(d.Name, ".")
	return dialect
}

// Signature renders the definition in a compact form, e.g.
// "x86.mov(src, dst) -> dst".
func (d *OpDef) Signature() string {
	var sb strings.Builder
	sb.WriteString(d.Name)
	sb.WriteByte('(')
	sb.WriteString(strings.Join(d.Operands, ", "))
	sb.WriteByte(')')
	if d.Attr != "" {
		fmt.Fprintf(&sb, " {%s: %s}", d.Attr, d.AttrKind)
	}
	if d.Regions > 0 {
		fmt.Fprintf(&sb, " [%d region", d.Regions)
		if d.Regions > 1 {
			sb.WriteByte('s')
		}
		sb.WriteByte(']')
	}
	switch d.Result {
	case ResultFresh:
		sb.WriteString(" -> fresh")
	case ResultAlias:
		sb.WriteString(" -> ")
		sb.WriteString(d.AliasOf)
	}
	return sb.String()
}

// Registry indexes definitions by name. It is safe for concurrent use.
type Registry struct {
	mu   sync.RWMutex
	defs map[string]*OpDef
}

func NewRegistry() *Registry {
	return &Registry{defs: make(map[string]*OpDef)}
}

// Default holds every dialect linked into the binary.
var Default = NewRegistry()

// Register validates def and stores a copy of it.
func (r *Registry) Register(def OpDef) (*OpDef, error) {
	if err := def.check(); err != nil {
		return nil, err
	}
	d := def
	d.Operands = slices.Clone(def.Operands)

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, dup := r.defs[d.Name]; dup {
		return nil, fmt.Errorf("%w: %s", ErrDuplicate, d.Name)
	}
	r.defs[d.Name] = &d
	return &d, nil
}

// MustRegister is Register for package-level dialect tables.
func (r *Registry) MustRegister(def OpDef) *OpDef {
	d, err := r.Register(def)
	if err != nil {
		panic(err)
	}
	return d
}

func (r *Registry) Lookup(name string) (*OpDef, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.defs[name]
	return d, ok
}

// Defs returns all definitions sorted by name.
func (r *Registry) Defs() []*OpDef {
	r.mu.RLock()
	out := make([]*OpDef, 0, len(r.defs))
	for _, d := range r.defs {
		out = append(out, d)
	}
	r.mu.RUnlock()
	slices.SortFunc(out, func(a, b *OpDef) int { return strings.Compare(a.Name, b.Name) })
	return out
}

// Dialects returns the sorted set of dialect prefixes.
func (r *Registry) Dialects() []string {
	var out []string
	for _, d := range r.Defs() {
		if p := d.Dialect(); len(out) == 0 || out[len(out)-1] != p {
			out = append(out, p)
		}
	}
	return out
}

func (d *OpDef) check() error {
	dialect, mnemonic, ok := strings.Cut(d.Name, ".")
	if !ok || dialect == "" || mnemonic == "" || strings.ContainsAny(d.Name, " \t{}%,") {
		return fmt.Errorf("%w: name %q is not dialect.mnemonic", ErrInvalidDef, d.Name)
	}
	seen := make(map[string]struct{}, len(d.Operands))
	for _, o := range d.Operands {
		if o == "" {
			return fmt.Errorf("%w: %s: empty operand name", ErrInvalidDef, d.Name)
		}
		if _, dup := seen[o]; dup {
			return fmt.Errorf("%w: %s: operand %q repeated", ErrInvalidDef, d.Name, o)
		}
		seen[o] = struct{}{}
	}
	switch d.Result {
	case ResultNone, ResultFresh:
		if d.AliasOf != "" {
			return fmt.Errorf("%w: %s: alias target on a %s result", ErrInvalidDef, d.Name, d.Result)
		}
	case ResultAlias:
		d.aliasIdx = slices.Index(d.Operands, d.AliasOf)
		if d.aliasIdx < 0 {
			return fmt.Errorf("%w: %s: alias of unknown operand %q", ErrInvalidDef, d.Name, d.AliasOf)
		}
	default:
		return fmt.Errorf("%w: %s: unknown result policy %d", ErrInvalidDef, d.Name, d.Result)
	}
	if (d.Attr == "") != (d.AttrKind == 0) {
		return fmt.Errorf("%w: %s: attribute name and kind must be set together", ErrInvalidDef, d.Name)
	}
	if d.Regions < 0 {
		return fmt.Errorf("%w: %s: negative region count", ErrInvalidDef, d.Name)
	}
	return nil
}
