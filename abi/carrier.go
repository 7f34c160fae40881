package abi

import (
	"github.com/wippyai/ffi-binder/errors"
)

// Carrier tags the managed-side representation of one value: the type a
// binding moves into or out of a storage location.
type Carrier uint8

const (
	CarrierNone Carrier = iota
	CarrierInt8
	CarrierInt16
	CarrierInt32
	CarrierInt64
	CarrierFloat32
	CarrierFloat64
	CarrierPointer
	CarrierSegment
)

var carrierNames = [...]string{
	CarrierNone:    "void",
	CarrierInt8:    "int8",
	CarrierInt16:   "int16",
	CarrierInt32:   "int32",
	CarrierInt64:   "int64",
	CarrierFloat32: "float32",
	CarrierFloat64: "float64",
	CarrierPointer: "pointer",
	CarrierSegment: "segment",
}

func (c Carrier) String() string {
	if int(c) < len(carrierNames) {
		return carrierNames[c]
	}
	return "unknown"
}

// ByteSize returns the width a Move of this carrier occupies. Segments
// have no scalar width; their bytes move through chunked bindings.
func (c Carrier) ByteSize() uint64 {
	switch c {
	case CarrierInt8:
		return 1
	case CarrierInt16:
		return 2
	case CarrierInt32, CarrierFloat32:
		return 4
	case CarrierInt64, CarrierFloat64, CarrierPointer:
		return 8
	default:
		return 0
	}
}

// CarrierForSize returns the integer carrier used to move a chunk of the
// given byte size through a register or stack slot.
func CarrierForSize(size uint64) (Carrier, error) {
	switch size {
	case 1:
		return CarrierInt8, nil
	case 2:
		return CarrierInt16, nil
	case 4:
		return CarrierInt32, nil
	case 8:
		return CarrierInt64, nil
	default:
		return CarrierNone, errors.New(errors.PhaseBind, errors.KindInvalidInput).
			Detail("no carrier for chunk of %d bytes", size).
			Build()
	}
}

// Signature is the managed method shape: carrier tags for every parameter
// in declaration order plus the return carrier (CarrierNone for void).
type Signature struct {
	Params []Carrier
	Ret    Carrier
}

// SignatureOf builds a signature returning ret.
func SignatureOf(ret Carrier, params ...Carrier) Signature {
	return Signature{Params: params, Ret: ret}
}

// Arity returns the declared parameter count.
func (s Signature) Arity() int { return len(s.Params) }
