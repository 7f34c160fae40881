package layout

import (
	"fmt"
	"strings"
)

// Class is the ABI argument class precomputed for a value leaf.
type Class uint8

const (
	ClassInteger Class = iota
	ClassPointer
	ClassVector
)

var classNames = [...]string{
	ClassInteger: "integer",
	ClassPointer: "pointer",
	ClassVector:  "vector",
}

func (c Class) String() string {
	if int(c) < len(classNames) {
		return classNames[c]
	}
	return "unknown"
}

// Layout describes the shape of a value in native memory: a primitive
// value leaf, a struct/union group, or a repeated sequence. Layouts are
// immutable once constructed and are referenced, never copied, during
// binding construction.
type Layout interface {
	BitSize() uint64
	BitAlignment() uint64
	ByteSize() uint64
	ByteAlignment() uint64
	String() string

	isLayout()
}

// Value is a primitive-sized leaf with a fixed bit size and alignment,
// tagged with its ABI argument class. Padding leaves carry no class.
type Value struct {
	bits   uint64
	align  uint64
	class  Class
	tagged bool
}

// NewValue returns a value leaf with natural alignment and the given
// ABI class tag.
func NewValue(bits uint64, class Class) *Value {
	return &Value{bits: bits, align: bits, class: class, tagged: true}
}

// Padding returns an untagged leaf occupying bits of space. Padding must
// never reach classification.
func Padding(bits uint64) *Value {
	return &Value{bits: bits, align: 8}
}

func (v *Value) BitSize() uint64      { return v.bits }
func (v *Value) BitAlignment() uint64 { return v.align }
func (v *Value) ByteSize() uint64     { return v.bits / 8 }
func (v *Value) ByteAlignment() uint64 {
	return v.align / 8
}

// Class returns the ABI class tag, or false for padding leaves.
func (v *Value) Class() (Class, bool) {
	return v.class, v.tagged
}

func (v *Value) String() string {
	if !v.tagged {
		return fmt.Sprintf("x%d", v.bits)
	}
	switch v.class {
	case ClassPointer:
		return fmt.Sprintf("p%d", v.bits)
	case ClassVector:
		return fmt.Sprintf("f%d", v.bits)
	default:
		return fmt.Sprintf("i%d", v.bits)
	}
}

func (v *Value) isLayout() {}

// GroupKind distinguishes sequential (struct) from co-located (union)
// member placement.
type GroupKind uint8

const (
	StructGroup GroupKind = iota
	UnionGroup
)

// Group is an aggregate of member layouts. Struct members are laid out
// sequentially with no implicit padding (callers insert Padding leaves);
// union members are co-located.
type Group struct {
	members []Layout
	bits    uint64
	align   uint64
	kind    GroupKind
}

// StructOf returns a struct group. The bit size is the sum of the member
// sizes and the alignment is the largest member alignment.
func StructOf(members ...Layout) *Group {
	g := &Group{kind: StructGroup, members: members, align: 8}
	for _, m := range members {
		g.bits += m.BitSize()
		if a := m.BitAlignment(); a > g.align {
			g.align = a
		}
	}
	return g
}

// UnionOf returns a union group sized and aligned to its largest member.
func UnionOf(members ...Layout) *Group {
	g := &Group{kind: UnionGroup, members: members, align: 8}
	for _, m := range members {
		if s := m.BitSize(); s > g.bits {
			g.bits = s
		}
		if a := m.BitAlignment(); a > g.align {
			g.align = a
		}
	}
	return g
}

func (g *Group) Kind() GroupKind        { return g.kind }
func (g *Group) Members() []Layout      { return g.members }
func (g *Group) BitSize() uint64        { return g.bits }
func (g *Group) BitAlignment() uint64   { return g.align }
func (g *Group) ByteSize() uint64       { return g.bits / 8 }
func (g *Group) ByteAlignment() uint64  { return g.align / 8 }

func (g *Group) String() string {
	var b strings.Builder
	if g.kind == UnionGroup {
		b.WriteString("union{")
	} else {
		b.WriteString("struct{")
	}
	for i, m := range g.members {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(m.String())
	}
	b.WriteByte('}')
	return b.String()
}

func (g *Group) isLayout() {}

// Sequence is a repeated element layout.
type Sequence struct {
	elem  Layout
	count uint64
}

// SequenceOf returns a sequence of count repetitions of elem.
func SequenceOf(count uint64, elem Layout) *Sequence {
	return &Sequence{count: count, elem: elem}
}

func (s *Sequence) Count() uint64          { return s.count }
func (s *Sequence) Element() Layout        { return s.elem }
func (s *Sequence) BitSize() uint64        { return s.count * s.elem.BitSize() }
func (s *Sequence) BitAlignment() uint64   { return s.elem.BitAlignment() }
func (s *Sequence) ByteSize() uint64       { return s.BitSize() / 8 }
func (s *Sequence) ByteAlignment() uint64  { return s.elem.ByteAlignment() }

func (s *Sequence) String() string {
	return fmt.Sprintf("[%d x %s]", s.count, s.elem)
}

func (s *Sequence) isLayout() {}

// C layouts for the LP64 data model used by AAPCS64.
var (
	CChar     = NewValue(8, ClassInteger)
	CShort    = NewValue(16, ClassInteger)
	CInt      = NewValue(32, ClassInteger)
	CLong     = NewValue(64, ClassInteger)
	CLongLong = NewValue(64, ClassInteger)
	CFloat    = NewValue(32, ClassVector)
	CDouble   = NewValue(64, ClassVector)
	CPointer  = NewValue(64, ClassPointer)
)
