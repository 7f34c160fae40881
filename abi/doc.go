// Package abi provides the architecture-neutral building blocks for
// calling-sequence construction.
//
// # Key Types
//
//	Storage          - one register bank element or a stack slot
//	Descriptor       - per-architecture register/stack configuration
//	Binding          - one primitive data-movement step (closed tagged union)
//	CallingSequence  - ordered bindings per argument plus optional return
//	Builder          - accumulates a sequence in declaration order
//	Carrier          - managed-side value tag (int32, float64, segment, ...)
//	Machine          - reference interpreter for binding sequences
//
// # Bindings
//
// A binding sequence describes exactly how to move bytes between the
// generic calling convention and a concrete one. Order is semantically
// significant: a dup must precede every consuming step beyond the first,
// and a dereference must follow the step that produced the aggregate it
// reads from. The op set is closed; consumers switch exhaustively.
//
// # Directions
//
// The same sequences are interpreted in two directions. Unbox consumes a
// managed value and scatters its bytes into storage (downcall arguments,
// upcall returns); box gathers storage back into a managed value
// (downcall returns, upcall arguments). Machine implements both for
// simulation; real execution belongs to the trampoline collaborators.
//
// # Concurrency
//
// Sequence construction uses private scratch state scoped to one
// construction call. A built CallingSequence is immutable and safe to
// cache and share; a Machine is not.
package abi
