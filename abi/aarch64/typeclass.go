package aarch64

import (
	"github.com/wippyai/ffi-binder/errors"
	"github.com/wippyai/ffi-binder/layout"
)

// TypeClass is the abstract storage class a value occupies under AAPCS64.
type TypeClass uint8

const (
	Integer TypeClass = iota
	Pointer
	Float
	// StructRegister fits entirely in integer registers.
	StructRegister
	// StructReference is passed by hidden pointer to a copy.
	StructReference
	// StructHFA is a homogeneous float aggregate: one member per vector
	// register.
	StructHFA
)

var typeClassNames = [...]string{
	Integer:         "integer",
	Pointer:         "pointer",
	Float:           "float",
	StructRegister:  "struct-register",
	StructReference: "struct-reference",
	StructHFA:       "struct-hfa",
}

func (c TypeClass) String() string {
	if int(c) < len(typeClassNames) {
		return typeClassNames[c]
	}
	return "unknown"
}

func classifyValue(val *layout.Value) (TypeClass, error) {
	class, ok := val.Class()
	if !ok {
		// Padding is not allowed here.
		return 0, errors.MissingABIClass(val.String())
	}
	switch class {
	case layout.ClassInteger:
		return Integer, nil
	case layout.ClassPointer:
		return Pointer, nil
	case layout.ClassVector:
		return Float, nil
	}
	return 0, errors.New(errors.PhaseClassify, errors.KindUnsupportedLayout).
		Layout(val.String()).
		Detail("unknown ABI class %d", class).
		Build()
}

func isRegisterAggregate(l layout.Layout) bool {
	return l.BitSize() <= MaxAggregateRegs*64
}

func isHomogeneousFloatAggregate(l layout.Layout) bool {
	group, ok := l.(*layout.Group)
	if !ok {
		return false
	}

	members := group.Members()
	if len(members) == 0 || len(members) > 4 {
		return false
	}

	base, ok := members[0].(*layout.Value)
	if !ok {
		return false
	}
	baseClass, ok := base.Class()
	if !ok || baseClass != layout.ClassVector {
		return false
	}

	for _, m := range members {
		elem, ok := m.(*layout.Value)
		if !ok {
			return false
		}
		class, ok := elem.Class()
		if !ok || class != baseClass ||
			elem.BitSize() != base.BitSize() ||
			elem.BitAlignment() != base.BitAlignment() {
			return false
		}
	}

	return true
}

func classifyStruct(l layout.Layout) TypeClass {
	if isHomogeneousFloatAggregate(l) {
		return StructHFA
	} else if isRegisterAggregate(l) {
		return StructRegister
	}
	return StructReference
}

// ClassifyType decides the storage class for a layout. Sequences are
// opaque byte blobs moved through integer storage; they are not
// decomposed for register classification.
func ClassifyType(l layout.Layout) (TypeClass, error) {
	if l == nil {
		return 0, errors.UnsupportedLayout(errors.PhaseClassify, "nil")
	}
	switch l := l.(type) {
	case *layout.Value:
		return classifyValue(l)
	case *layout.Group:
		return classifyStruct(l), nil
	case *layout.Sequence:
		return Integer, nil
	default:
		return 0, errors.UnsupportedLayout(errors.PhaseClassify, l.String())
	}
}
