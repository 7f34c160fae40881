// Package layout models the memory shape of native values.
//
// A Layout is one of three closed variants:
//
//	Value     - primitive leaf with a bit size, alignment and ABI class
//	Group     - struct (sequential members) or union (co-located members)
//	Sequence  - repeated element layout
//
// Value leaves carry the precomputed ABI argument class (integer, pointer
// or vector) that the classifier in abi/aarch64 reads; padding leaves
// carry none and must never reach classification.
//
// Struct groups perform no implicit padding: the sum of the member bit
// sizes is the struct size, and callers (or FromWIT) insert explicit
// Padding leaves where the ABI requires them.
//
// The package also provides the C type constants for the LP64 data model
// (CChar .. CPointer), function descriptors (FuncOf, FuncVoid), and a WIT
// front-end (FromWIT) that derives tagged native layouts from
// go.bytecodealliance.org WIT types.
package layout
