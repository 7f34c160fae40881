package abi

import (
	"strings"

	"github.com/wippyai/ffi-binder/errors"
)

// CallingSequence is the complete ordered set of bindings for one
// function signature under one ABI: one binding list per argument in
// declaration order, an optional return binding list, and the flag
// marking an indirect (in-memory) return. It is immutable once built and
// safe to share across concurrent invocations.
type CallingSequence struct {
	args     [][]Binding
	ret      []Binding
	hasRet   bool
	inMemory bool
}

// ArgumentCount returns the number of bound arguments, including the
// synthetic indirect-result argument when present.
func (cs *CallingSequence) ArgumentCount() int { return len(cs.args) }

// ArgumentBindings returns the binding list for argument i.
func (cs *CallingSequence) ArgumentBindings(i int) ([]Binding, error) {
	if i < 0 || i >= len(cs.args) {
		return nil, errors.OutOfRange(errors.PhaseBind, "argument", i, len(cs.args))
	}
	return cs.args[i], nil
}

// ReturnBindings returns the return binding list, or false if the
// function is void or returns in memory.
func (cs *CallingSequence) ReturnBindings() ([]Binding, bool) {
	return cs.ret, cs.hasRet
}

// InMemoryReturn reports whether the return value is delivered through
// the hidden indirect-result buffer.
func (cs *CallingSequence) InMemoryReturn() bool { return cs.inMemory }

func (cs *CallingSequence) String() string {
	var b strings.Builder
	for i, arg := range cs.args {
		if i > 0 {
			b.WriteString("; ")
		}
		for j, bind := range arg {
			if j > 0 {
				b.WriteString(", ")
			}
			b.WriteString(bind.String())
		}
	}
	if cs.hasRet {
		b.WriteString(" -> ")
		for j, bind := range cs.ret {
			if j > 0 {
				b.WriteString(", ")
			}
			b.WriteString(bind.String())
		}
	}
	return b.String()
}

// Builder accumulates per-argument binding lists in declaration order.
// Argument bindings are never reordered: the native argument-to-register
// mapping depends on insertion order. At most one return binding set may
// exist.
type Builder struct {
	seq CallingSequence
	err error
}

// NewBuilder returns an empty calling-sequence builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// AddArgument appends the binding list for the next declared argument.
func (b *Builder) AddArgument(bindings []Binding) *Builder {
	if b.err != nil {
		return b
	}
	if err := verifyAll(bindings); err != nil {
		b.err = err
		return b
	}
	b.seq.args = append(b.seq.args, bindings)
	return b
}

// SetReturn sets the return binding list. A second call fails the build.
func (b *Builder) SetReturn(bindings []Binding) *Builder {
	if b.err != nil {
		return b
	}
	if b.seq.hasRet {
		b.err = errors.ReturnConflict()
		return b
	}
	if err := verifyAll(bindings); err != nil {
		b.err = err
		return b
	}
	b.seq.ret = bindings
	b.seq.hasRet = true
	return b
}

// MarkInMemoryReturn records that the return value travels through the
// hidden indirect-result buffer. Exclusive with SetReturn.
func (b *Builder) MarkInMemoryReturn() *Builder {
	if b.err != nil {
		return b
	}
	if b.seq.hasRet {
		b.err = errors.ReturnConflict()
		return b
	}
	b.seq.inMemory = true
	return b
}

// Build freezes and returns the sequence.
func (b *Builder) Build() (*CallingSequence, error) {
	if b.err != nil {
		return nil, b.err
	}
	if b.seq.inMemory && b.seq.hasRet {
		return nil, errors.ReturnConflict()
	}
	seq := b.seq
	return &seq, nil
}

func verifyAll(bindings []Binding) error {
	for _, bind := range bindings {
		if err := bind.Verify(); err != nil {
			return err
		}
	}
	return nil
}
