package abi

import (
	"encoding/binary"

	"github.com/wippyai/ffi-binder/errors"
)

// Address is the managed pointer value. Machine addresses are synthetic:
// they identify buffers registered with one Machine, not real memory.
type Address uint64

// Segment is the managed view over a run of native bytes.
type Segment struct {
	Bytes     []byte
	Alignment uint64
}

// NewSegment returns a segment over a copy of the given bytes.
func NewSegment(data []byte, alignment uint64) *Segment {
	return &Segment{Bytes: append([]byte(nil), data...), Alignment: alignment}
}

const stackSlotBytes = 8

// Machine simulates the concrete side of one call frame: a register
// file, the outgoing stack area, and off-stack buffers reachable through
// synthetic addresses. It interprets binding sequences in both
// directions, which makes the round-trip properties of the binder
// executable in tests and in the CLI.
//
// A Machine is private scratch state for one simulated call; it is not
// safe for concurrent use.
type Machine struct {
	regs    map[Storage]uint64
	pointee map[Address]*Segment
	addrs   map[*Segment]Address
	stack   []byte
	next    Address
}

// NewMachine returns an empty machine.
func NewMachine() *Machine {
	return &Machine{
		regs:    make(map[Storage]uint64),
		pointee: make(map[Address]*Segment),
		addrs:   make(map[*Segment]Address),
		next:    0x1000,
	}
}

// Register returns the current value of a register location.
func (m *Machine) Register(s Storage) uint64 { return m.regs[s] }

// SetRegister sets a register location, for seeding box-direction runs.
func (m *Machine) SetRegister(s Storage, v uint64) { m.regs[s] = v }

// StackBytes returns the outgoing stack area written so far.
func (m *Machine) StackBytes() []byte { return m.stack }

// Pointee resolves a synthetic address to its buffer.
func (m *Machine) Pointee(a Address) (*Segment, bool) {
	seg, ok := m.pointee[a]
	return seg, ok
}

// Bind registers a segment and returns its synthetic address.
func (m *Machine) Bind(seg *Segment) Address {
	if a, ok := m.addrs[seg]; ok {
		return a
	}
	a := m.next
	m.next += Address(len(seg.Bytes) + stackSlotBytes)
	m.pointee[a] = seg
	m.addrs[seg] = a
	return a
}

// Unbox interprets a binding sequence in the unbox direction: the managed
// value is consumed and its bytes land in registers, stack slots and
// buffers. Used for downcall arguments and upcall returns.
func (m *Machine) Unbox(bindings []Binding, value any) error {
	stack := []any{value}
	pop := func() (any, error) { return popValue(&stack) }

	for _, b := range bindings {
		switch b.Op {
		case OpMove:
			v, err := pop()
			if err != nil {
				return err
			}
			bits, err := rawBits(v)
			if err != nil {
				return err
			}
			m.store(b.Storage, bits, b.Type.ByteSize())
		case OpDereference:
			seg, err := popSegment(&stack)
			if err != nil {
				return err
			}
			bits, err := readChunk(seg, b.Offset, b.Type.ByteSize())
			if err != nil {
				return err
			}
			stack = append(stack, bits)
		case OpDup:
			if len(stack) == 0 {
				return errors.InvalidInput(errors.PhaseExec, "dup on empty working stack")
			}
			stack = append(stack, stack[len(stack)-1])
		case OpCopy:
			seg, err := popSegment(&stack)
			if err != nil {
				return err
			}
			clone := NewSegment(seg.Bytes, b.Alignment)
			m.Bind(clone)
			stack = append(stack, clone)
		case OpBaseAddress:
			seg, err := popSegment(&stack)
			if err != nil {
				return err
			}
			stack = append(stack, m.Bind(seg))
		case OpBoxAddress:
			// Unbox direction: normalize the managed pointer to raw bits.
			v, err := pop()
			if err != nil {
				return err
			}
			bits, err := rawBits(v)
			if err != nil {
				return err
			}
			stack = append(stack, bits)
		case OpAllocateBuffer:
			seg := &Segment{Bytes: make([]byte, b.Size), Alignment: b.Alignment}
			m.Bind(seg)
			stack = append(stack, seg)
		default:
			return errors.InvalidInput(errors.PhaseExec, "unknown binding op")
		}
	}
	if len(stack) != 0 {
		return errors.InvalidInput(errors.PhaseExec, "unbox left values on the working stack")
	}
	return nil
}

// Box interprets a binding sequence in the box direction: registers,
// stack slots and buffers are read and a managed value is produced. Used
// for downcall returns and upcall arguments.
func (m *Machine) Box(bindings []Binding) (any, error) {
	var stack []any

	for _, b := range bindings {
		switch b.Op {
		case OpMove:
			stack = append(stack, m.load(b.Storage, b.Type.ByteSize()))
		case OpDereference:
			v, err := popValue(&stack)
			if err != nil {
				return nil, err
			}
			bits, err := rawBits(v)
			if err != nil {
				return nil, err
			}
			seg, err := popSegment(&stack)
			if err != nil {
				return nil, err
			}
			if err := writeChunk(seg, b.Offset, bits, b.Type.ByteSize()); err != nil {
				return nil, err
			}
		case OpDup:
			if len(stack) == 0 {
				return nil, errors.InvalidInput(errors.PhaseExec, "dup on empty working stack")
			}
			stack = append(stack, stack[len(stack)-1])
		case OpCopy:
			v, err := popValue(&stack)
			if err != nil {
				return nil, err
			}
			bits, err := rawBits(v)
			if err != nil {
				return nil, err
			}
			seg, ok := m.pointee[Address(bits)]
			if !ok {
				return nil, errors.New(errors.PhaseExec, errors.KindInvalidInput).
					Detail("copy through unmapped address %#x", bits).
					Build()
			}
			clone := NewSegment(seg.Bytes, b.Alignment)
			m.Bind(clone)
			stack = append(stack, clone)
		case OpBaseAddress:
			seg, err := popSegment(&stack)
			if err != nil {
				return nil, err
			}
			stack = append(stack, uint64(m.Bind(seg)))
		case OpBoxAddress:
			// Box direction: raw bits become the managed pointer.
			v, err := popValue(&stack)
			if err != nil {
				return nil, err
			}
			bits, err := rawBits(v)
			if err != nil {
				return nil, err
			}
			stack = append(stack, Address(bits))
		case OpAllocateBuffer:
			seg := &Segment{Bytes: make([]byte, b.Size), Alignment: b.Alignment}
			m.Bind(seg)
			stack = append(stack, seg)
		default:
			return nil, errors.InvalidInput(errors.PhaseExec, "unknown binding op")
		}
	}
	if len(stack) != 1 {
		return nil, errors.New(errors.PhaseExec, errors.KindInvalidInput).
			Detail("box left %d values on the working stack, want 1", len(stack)).
			Build()
	}
	return stack[0], nil
}

func (m *Machine) store(s Storage, bits, size uint64) {
	bits = maskTo(bits, size)
	if !s.IsStack() {
		m.regs[s] = bits
		return
	}
	off := int(s.Index) * stackSlotBytes
	if need := off + stackSlotBytes; need > len(m.stack) {
		m.stack = append(m.stack, make([]byte, need-len(m.stack))...)
	}
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], bits)
	copy(m.stack[off:off+int(size)], buf[:size])
}

func (m *Machine) load(s Storage, size uint64) uint64 {
	if !s.IsStack() {
		return maskTo(m.regs[s], size)
	}
	off := int(s.Index) * stackSlotBytes
	var buf [8]byte
	if off < len(m.stack) {
		copy(buf[:], m.stack[off:])
	}
	return maskTo(binary.LittleEndian.Uint64(buf[:]), size)
}

func maskTo(bits, size uint64) uint64 {
	if size >= 8 || size == 0 {
		return bits
	}
	return bits & ((1 << (8 * size)) - 1)
}

// Chunk accesses clamp at the segment end: the binder widens an odd-sized
// aggregate tail to the next carrier width, so the final chunk may
// nominally reach past the last byte.
func readChunk(seg *Segment, offset, size uint64) (uint64, error) {
	if offset >= uint64(len(seg.Bytes)) {
		return 0, errors.OutOfRange(errors.PhaseExec, "dereference", int(offset), len(seg.Bytes))
	}
	size = min(size, uint64(len(seg.Bytes))-offset)
	var buf [8]byte
	copy(buf[:size], seg.Bytes[offset:offset+size])
	return binary.LittleEndian.Uint64(buf[:]), nil
}

func writeChunk(seg *Segment, offset, bits, size uint64) error {
	if offset >= uint64(len(seg.Bytes)) {
		return errors.OutOfRange(errors.PhaseExec, "dereference", int(offset), len(seg.Bytes))
	}
	size = min(size, uint64(len(seg.Bytes))-offset)
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], bits)
	copy(seg.Bytes[offset:offset+size], buf[:size])
	return nil
}

func popValue(stack *[]any) (any, error) {
	s := *stack
	if len(s) == 0 {
		return nil, errors.InvalidInput(errors.PhaseExec, "pop on empty working stack")
	}
	v := s[len(s)-1]
	*stack = s[:len(s)-1]
	return v, nil
}

func popSegment(stack *[]any) (*Segment, error) {
	v, err := popValue(stack)
	if err != nil {
		return nil, err
	}
	seg, ok := v.(*Segment)
	if !ok {
		return nil, errors.New(errors.PhaseExec, errors.KindInvalidInput).
			Detail("working value is %T, want segment", v).
			Build()
	}
	return seg, nil
}

func rawBits(v any) (uint64, error) {
	switch v := v.(type) {
	case uint64:
		return v, nil
	case Address:
		return uint64(v), nil
	default:
		return 0, errors.New(errors.PhaseExec, errors.KindInvalidInput).
			Detail("working value is %T, want scalar or address", v).
			Build()
	}
}
