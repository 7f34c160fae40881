package aarch64

import (
	"fmt"

	"github.com/wippyai/ffi-binder/abi"
)

const (
	// StackSlotSize is the width of one outgoing stack slot.
	StackSlotSize = 8
	// MaxAggregateRegs is the register-pair budget for by-value structs.
	MaxAggregateRegs = 2
	// MaxRegisterArguments is the capacity of each argument register bank.
	MaxRegisterArguments = 8
)

func r(index uint32) abi.Storage {
	return abi.RegisterStorage(abi.StorageInteger, index, fmt.Sprintf("r%d", index))
}

func v(index uint32) abi.Storage {
	return abi.RegisterStorage(abi.StorageVector, index, fmt.Sprintf("v%d", index))
}

func intRegs(from, to uint32) []abi.Storage {
	regs := make([]abi.Storage, 0, to-from+1)
	for i := from; i <= to; i++ {
		regs = append(regs, r(i))
	}
	return regs
}

func vecRegs(from, to uint32) []abi.Storage {
	regs := make([]abi.Storage, 0, to-from+1)
	for i := from; i <= to; i++ {
		regs = append(regs, v(i))
	}
	return regs
}

// C is the AAPCS64 descriptor, restricted to what is reachable when
// calling to or from C code.
//
// The indirect result register, r8, returns a large struct by value. It
// appears in the input bank because the caller allocates the storage and
// passes the address in. AAPCS64 nominally allows r0-r7 and v0-v7 as
// return registers, but a C function cannot use r2-r7 or v4-v7 for
// results, so the output banks stop short.
var C = abi.Descriptor{
	InputStorage: [2][]abi.Storage{
		abi.StorageInteger: append(intRegs(0, 7), r(8)),
		abi.StorageVector:  vecRegs(0, 7),
	},
	OutputStorage: [2][]abi.Storage{
		abi.StorageInteger: intRegs(0, 1),
		abi.StorageVector:  vecRegs(0, 3),
	},
	VolatileStorage: [2][]abi.Storage{
		abi.StorageInteger: intRegs(9, 15),
		abi.StorageVector:  vecRegs(16, 31),
	},
	StackAlignment: 16,
	ShadowSpace:    0,
	IndirectResult: r(8),
}
