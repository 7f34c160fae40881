package layout

import (
	"fmt"

	"go.bytecodealliance.org/wit"

	"github.com/wippyai/ffi-binder/errors"
)

// FromWIT derives the native C layout for a WIT type, tagged with the ABI
// classes the binder needs. Records and tuples become padded structs,
// enums and flags become integer leaves, lists become (pointer, length)
// structs. WIT kinds with no stable native shape (string, variant,
// result, resource handles) are rejected.
func FromWIT(t wit.Type) (Layout, error) {
	switch t := t.(type) {
	case wit.Bool, wit.U8, wit.S8:
		return CChar, nil
	case wit.U16, wit.S16:
		return CShort, nil
	case wit.U32, wit.S32, wit.Char:
		return CInt, nil
	case wit.U64, wit.S64:
		return CLong, nil
	case wit.F32:
		return CFloat, nil
	case wit.F64:
		return CDouble, nil
	case *wit.TypeDef:
		return fromTypeDef(t)
	default:
		return nil, errors.Unsupported(errors.PhaseLayout, witName(t))
	}
}

func fromTypeDef(t *wit.TypeDef) (Layout, error) {
	switch kind := t.Kind.(type) {
	case *wit.Record:
		members := make([]Layout, 0, len(kind.Fields))
		for _, f := range kind.Fields {
			m, err := FromWIT(f.Type)
			if err != nil {
				return nil, err
			}
			members = append(members, m)
		}
		return paddedStruct(members), nil
	case *wit.Tuple:
		members := make([]Layout, 0, len(kind.Types))
		for _, tt := range kind.Types {
			m, err := FromWIT(tt)
			if err != nil {
				return nil, err
			}
			members = append(members, m)
		}
		return paddedStruct(members), nil
	case *wit.Enum:
		return NewValue(8*discriminantSize(len(kind.Cases)), ClassInteger), nil
	case *wit.Flags:
		return flagsLayout(len(kind.Flags))
	case *wit.List:
		// Native lowering: data pointer plus element count.
		return StructOf(CPointer, CLong), nil
	case *wit.Option:
		payload, err := FromWIT(kind.Type)
		if err != nil {
			return nil, err
		}
		return paddedStruct([]Layout{CChar, payload}), nil
	case wit.Type:
		return FromWIT(kind)
	default:
		return nil, errors.Unsupported(errors.PhaseLayout, witName(t))
	}
}

// paddedStruct lays members out at their natural alignment, inserting
// explicit padding leaves between members and at the tail.
func paddedStruct(members []Layout) *Group {
	var padded []Layout
	offset := uint64(0)
	maxAlign := uint64(8)

	for _, m := range members {
		align := m.BitAlignment()
		if align > maxAlign {
			maxAlign = align
		}
		if rem := offset % align; rem != 0 {
			padded = append(padded, Padding(align-rem))
			offset += align - rem
		}
		padded = append(padded, m)
		offset += m.BitSize()
	}

	if rem := offset % maxAlign; rem != 0 {
		padded = append(padded, Padding(maxAlign-rem))
	}

	return StructOf(padded...)
}

// discriminantSize follows the Component Model rule: one byte up to 256
// cases, two up to 65536, four beyond.
func discriminantSize(numCases int) uint64 {
	if numCases <= 256 {
		return 1
	} else if numCases <= 65536 {
		return 2
	}
	return 4
}

func flagsLayout(numFlags int) (Layout, error) {
	switch {
	case numFlags == 0:
		return nil, errors.Unsupported(errors.PhaseLayout, "empty flags")
	case numFlags <= 8:
		return CChar, nil
	case numFlags <= 16:
		return CShort, nil
	case numFlags <= 32:
		return CInt, nil
	case numFlags <= 64:
		return CLong, nil
	default:
		return nil, errors.Unsupported(errors.PhaseLayout, "flags wider than 64 bits")
	}
}

func witName(t wit.Type) string {
	switch v := t.(type) {
	case wit.String:
		return "string"
	case *wit.TypeDef:
		if v.Name != nil {
			return *v.Name
		}
		return fmt.Sprintf("%T", v.Kind)
	default:
		return fmt.Sprintf("%T", t)
	}
}
