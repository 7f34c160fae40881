package abi

import "fmt"

// StorageClass names a register bank, or the stack.
type StorageClass uint8

const (
	StorageInteger StorageClass = iota
	StorageVector
	StorageStack
)

var storageClassNames = [...]string{
	StorageInteger: "integer",
	StorageVector:  "vector",
	StorageStack:   "stack",
}

func (c StorageClass) String() string {
	if int(c) < len(storageClassNames) {
		return storageClassNames[c]
	}
	return "unknown"
}

// Storage identifies one element of a named register bank, or a stack
// slot (index counts stack-slot widths from the call frame base).
type Storage struct {
	Name  string
	Index uint32
	Class StorageClass
}

// RegisterStorage returns a register location in the given bank.
func RegisterStorage(class StorageClass, index uint32, name string) Storage {
	return Storage{Class: class, Index: index, Name: name}
}

// StackStorage returns a stack slot location.
func StackStorage(slot uint32) Storage {
	return Storage{Class: StorageStack, Index: slot, Name: fmt.Sprintf("stack[%d]", slot)}
}

// IsStack reports whether the location is a stack slot.
func (s Storage) IsStack() bool { return s.Class == StorageStack }

func (s Storage) String() string { return s.Name }

// Descriptor is the per-architecture configuration injected into the call
// arranger: register banks for arguments and results, volatile registers,
// stack discipline and the indirect-result register. Banks are indexed by
// StorageInteger and StorageVector.
type Descriptor struct {
	InputStorage    [2][]Storage
	OutputStorage   [2][]Storage
	VolatileStorage [2][]Storage
	StackAlignment  uint64
	ShadowSpace     uint64
	IndirectResult  Storage
}
