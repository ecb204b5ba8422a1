// Package arena provides append-only, index-addressed storage.
//
// Every graph edge in the IR (operands' producers, sequence links) is an
// arena Handle rather than a pointer. Arenas never delete entries, so a Handle
// obtained from an arena stays dereferenceable for the arena's lifetime.
// Handles must not be used with an arena other than the one that produced them.
package arena

import (
	"errors"
	"fmt"
	"iter"
	"math"

	"fortio.org/safecast"
)

// Handle is an opaque index into an Arena.
type Handle uint32

// Nil is the unset handle. No arena ever returns it from Alloc.
const Nil Handle = math.MaxUint32

// Valid reports whether h is not Nil. It does not check bounds.
func (h Handle) Valid() bool { return h != Nil }

func (h Handle) String() string {
	if h == Nil {
		return "nil"
	}
	return fmt.Sprintf("#%d", uint32(h))
}

// ErrOutOfRange is returned (or panicked with) when a handle does not name a slot.
var ErrOutOfRange = errors.New("arena: handle out of range")

// OutOfRangeError describes a failed dereference.
type OutOfRangeError struct {
	Handle Handle
	Len    int
}

func (e *OutOfRangeError) Error() string {
	return fmt.Sprintf("arena: handle %s out of range (len %d)", e.Handle, e.Len)
}

func (e *OutOfRangeError) Unwrap() error { return ErrOutOfRange }

// Arena stores values of one type. The zero value is ready to use.
type Arena[T any] struct {
	items []T
}

// New returns an arena with room for capacity items.
func New[T any](capacity int) *Arena[T] {
	return &Arena[T]{items: make([]T, 0, capacity)}
}

// Alloc appends v and returns its handle.
func (a *Arena[T]) Alloc(v T) Handle {
	idx, err := safecast.Conv[uint32](len(a.items))
	if err != nil {
		panic(fmt.Errorf("arena: too many slots: %w", err))
	}
	if Handle(idx) == Nil {
		panic(errors.New("arena: too many slots"))
	}
	a.items = append(a.items, v)
	return Handle(idx)
}

// Get dereferences h. The pointer is invalidated by the next Alloc.
func (a *Arena[T]) Get(h Handle) (*T, error) {
	if h == Nil || int(h) >= len(a.items) {
		return nil, &OutOfRangeError{Handle: h, Len: len(a.items)}
	}
	return &a.items[h], nil
}

// MustGet is Get for callers that treat a bad handle as a bug.
// It panics with an *OutOfRangeError.
func (a *Arena[T]) MustGet(h Handle) *T {
	v, err := a.Get(h)
	if err != nil {
		panic(err)
	}
	return v
}

// Len returns the number of allocated slots.
func (a *Arena[T]) Len() int { return len(a.items) }

// Reserve grows the backing storage so that n more Allocs do not reallocate.
func (a *Arena[T]) Reserve(n int) {
	if n <= 0 || cap(a.items)-len(a.items) >= n {
		return
	}
	grown := make([]T, len(a.items), len(a.items)+n)
	copy(grown, a.items)
	a.items = grown
}

// All yields every slot in allocation order. Allocation order is not program
// order; use a sequence for that.
func (a *Arena[T]) All() iter.Seq2[Handle, *T] {
	return func(yield func(Handle, *T) bool) {
		for i := range a.items {
			if !yield(Handle(i), &a.items[i]) {
				return
			}
		}
	}
}
