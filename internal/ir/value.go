package ir

import (
	"fmt"

	"lorax/internal/arena"
)

// link stores an optional handle as handle+1 so that the zero value means "unset".
type link uint32

func linkTo(h arena.Handle) link { return link(h) + 1 }

func (l link) get() (arena.Handle, bool) {
	if l == 0 {
		return arena.Nil, false
	}
	return arena.Handle(l - 1), true
}

func (l link) handle() arena.Handle {
	h, _ := l.get()
	return h
}

// Value is an SSA-style result identity.
// The zero Value is unnumbered and has no producer.
type Value struct {
	id  uint32
	def link
}

// ID returns the display identity. 0 means the value has not been numbered yet.
func (v Value) ID() uint32 { return v.id }

// Numbered reports whether the value has received an identity from a Context.
func (v Value) Numbered() bool { return v.id != 0 }

// Def returns the handle of the producing operation, if known.
func (v Value) Def() (arena.Handle, bool) { return v.def.get() }

// Same reports whether v and o denote the same value. Copies taken before the
// producer was recorded compare equal here but not with ==.
func (v Value) Same(o Value) bool { return v.id == o.id }

func (v Value) String() string {
	if v.id == 0 {
		return "%?"
	}
	return fmt.Sprintf("%%%d", v.id)
}

// setDef records the producer unless one is already known.
func (v *Value) setDef(h arena.Handle) {
	if v.def == 0 {
		v.def = linkTo(h)
	}
}
