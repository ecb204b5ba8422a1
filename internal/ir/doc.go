// Package ir defines the lorax intermediate representation.
//
// # Model
//
// An Operation has a fully qualified name ("dialect.mnemonic"), ordered
// operands, zero or one result Value, a map of literal attributes and zero or
// more nested regions (Blocks). Operations live in the arena owned by a
// Context; everything that refers to an operation does so through an
// arena.Handle.
//
// A Value carries a display identity (%N, unique within its Context) and,
// once the operation that produced it has been placed into a sequence, the
// handle of that producer.
//
// # Sequences
//
// A Block is an intrusive doubly linked list threaded through the
// operations' own link fields. Appending, inserting before an anchor and
// replacing in place never move storage; program order is purely a property
// of the links:
//
//	c := ir.NewContext()
//	b := c.NewBlock()
//	h := b.Append(c, op)
//	b.InsertBefore(c, h, other)
//	for h := range b.Ops(c) { ... }
//
// # Invariants
//
//   - a non-empty block's successor chain reaches its tail in exactly Len() steps;
//   - every stored link names a live arena slot;
//   - a value's producer, once set, is an operation reachable from some block;
//   - no two distinct reachable operations both claim to produce the same value.
//
// Validate checks all of them.
package ir
