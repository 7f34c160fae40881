// Package aarch64 binds the generic calling convention to AAPCS64, the
// AArch64 C ABI.
//
// ArrangeDowncall and ArrangeUpcall translate a managed signature plus a
// native function descriptor into an abi.CallingSequence: per-argument
// binding lists, optional return bindings, and the in-memory-return flag
// for oversized aggregates returned through the hidden pointer in r8.
//
// The rules encoded here are the AAPCS64 aggregate-passing rules
// restricted to C-reachable shapes: up to eight integer and eight vector
// argument registers, by-value structs within a two-register budget,
// homogeneous float aggregates of one to four members passed one member
// per vector register, larger structs passed by reference to a copy, and
// whole-aggregate spilling to 8-byte-aligned stack slots once a bank is
// exhausted. Getting any of these rules wrong corrupts memory at native
// call time, which is why the package leans on the executable properties
// in its tests rather than on reaching the native boundary.
//
// Construction is pure and deterministic: each arrangement allocates its
// own storage calculators, so concurrent arrangements need no
// coordination, and the resulting sequences are immutable.
package aarch64
