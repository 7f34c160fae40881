package abi

import (
	"fmt"

	"github.com/wippyai/ffi-binder/errors"
)

// Op enumerates the primitive data-movement steps. The set is closed:
// it is fixed by the ABI model and processed by exhaustive switches in
// the interpreter and the trampoline collaborators, never extended.
type Op uint8

const (
	// OpMove copies a scalar between the working value and a storage
	// location.
	OpMove Op = iota
	// OpDereference loads (unbox) or stores (box) a scalar through the
	// aggregate on the working stack, at a byte offset.
	OpDereference
	// OpDup duplicates the top working value so it survives the next
	// consuming step.
	OpDup
	// OpCopy allocates a copy of a whole aggregate, honoring its size
	// and alignment.
	OpCopy
	// OpAllocateBuffer reserves a fresh off-stack buffer sized to a
	// layout.
	OpAllocateBuffer
	// OpBaseAddress takes the address of an aggregate's first byte.
	OpBaseAddress
	// OpBoxAddress converts between a raw address and the managed
	// pointer value; the direction of the conversion follows the
	// direction the sequence is interpreted in.
	OpBoxAddress
)

var opNames = [...]string{
	OpMove:           "move",
	OpDereference:    "deref",
	OpDup:            "dup",
	OpCopy:           "copy",
	OpAllocateBuffer: "alloc",
	OpBaseAddress:    "base-addr",
	OpBoxAddress:     "box-addr",
}

func (op Op) String() string {
	if int(op) < len(opNames) {
		return opNames[op]
	}
	return "unknown"
}

// Binding is one primitive data-movement step. It is a tagged union: Op
// selects the variant and the payload fields it reads.
type Binding struct {
	Op        Op
	Storage   Storage // Move
	Type      Carrier // Move, Dereference
	Offset    uint64  // Dereference
	Size      uint64  // Copy, AllocateBuffer
	Alignment uint64  // Copy, AllocateBuffer
}

// Move copies a scalar of the carrier type to or from storage.
func Move(storage Storage, typ Carrier) Binding {
	return Binding{Op: OpMove, Storage: storage, Type: typ}
}

// Dereference loads or stores a scalar of the carrier type at offset.
func Dereference(offset uint64, typ Carrier) Binding {
	return Binding{Op: OpDereference, Offset: offset, Type: typ}
}

// Dup duplicates the top working value.
func Dup() Binding { return Binding{Op: OpDup} }

// Copy duplicates a whole aggregate of the given size and alignment.
func Copy(size, alignment uint64) Binding {
	return Binding{Op: OpCopy, Size: size, Alignment: alignment}
}

// AllocateBuffer reserves a buffer of the given size and alignment.
func AllocateBuffer(size, alignment uint64) Binding {
	return Binding{Op: OpAllocateBuffer, Size: size, Alignment: alignment}
}

// BaseAddress takes the address of the aggregate on the working stack.
func BaseAddress() Binding { return Binding{Op: OpBaseAddress} }

// BoxAddress converts between a raw address and the managed pointer value.
func BoxAddress() Binding { return Binding{Op: OpBoxAddress} }

// Verify checks the payload fields the variant requires.
func (b Binding) Verify() error {
	switch b.Op {
	case OpMove:
		if b.Type == CarrierNone || b.Type == CarrierSegment {
			return errors.New(errors.PhaseBind, errors.KindInvalidInput).
				Detail("move carries no scalar type: %s", b.Type).
				Build()
		}
	case OpDereference:
		if b.Type == CarrierNone || b.Type == CarrierSegment {
			return errors.New(errors.PhaseBind, errors.KindInvalidInput).
				Detail("dereference carries no scalar type: %s", b.Type).
				Build()
		}
	case OpCopy, OpAllocateBuffer:
		if b.Size == 0 || b.Alignment == 0 {
			return errors.New(errors.PhaseBind, errors.KindInvalidInput).
				Detail("%s needs a size and alignment", b.Op).
				Build()
		}
	case OpDup, OpBaseAddress, OpBoxAddress:
	default:
		return errors.New(errors.PhaseBind, errors.KindInvalidInput).
			Detail("unknown binding op %d", b.Op).
			Build()
	}
	return nil
}

func (b Binding) String() string {
	switch b.Op {
	case OpMove:
		return fmt.Sprintf("move %s, %s", b.Storage, b.Type)
	case OpDereference:
		return fmt.Sprintf("deref +%d, %s", b.Offset, b.Type)
	case OpCopy:
		return fmt.Sprintf("copy %d/%d", b.Size, b.Alignment)
	case OpAllocateBuffer:
		return fmt.Sprintf("alloc %d/%d", b.Size, b.Alignment)
	default:
		return b.Op.String()
	}
}
