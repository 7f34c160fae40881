package aarch64

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/wippyai/ffi-binder/abi"
	"github.com/wippyai/ffi-binder/errors"
	"github.com/wippyai/ffi-binder/layout"
)

// storageCalculator tracks consumption of the two register banks and the
// growing stack area during one calling-sequence construction. Each
// construction gets fresh instances; the counters are never shared.
type storageCalculator struct {
	desc         *abi.Descriptor
	nRegs        [2]int
	stackOffset  uint64
	forArguments bool
}

func newStorageCalculator(desc *abi.Descriptor, forArguments bool) *storageCalculator {
	return &storageCalculator{desc: desc, forArguments: forArguments}
}

func (sc *storageCalculator) stackAlloc(size, alignment uint64) (abi.Storage, error) {
	if !sc.forArguments {
		// No stack returns: anything past the output registers is an
		// in-memory return and never reaches this path.
		return abi.Storage{}, errors.StackReturn(size)
	}
	if alignment < StackSlotSize {
		alignment = StackSlotSize
	}
	sc.stackOffset = alignUp(sc.stackOffset, alignment)
	storage := abi.StackStorage(uint32(sc.stackOffset / StackSlotSize))
	sc.stackOffset += size
	return storage, nil
}

func (sc *storageCalculator) stackAllocLayout(l layout.Layout) (abi.Storage, error) {
	return sc.stackAlloc(l.ByteSize(), l.ByteAlignment())
}

// regAlloc returns count consecutive unused registers from the bank, or
// nil when they do not all fit. A failed allocation saturates the
// counter: every later allocation for this bank falls to the stack, so a
// struct is never split between registers and stack.
func (sc *storageCalculator) regAlloc(class abi.StorageClass, count int) []abi.Storage {
	bank := sc.desc.InputStorage[class]
	if !sc.forArguments {
		bank = sc.desc.OutputStorage[class]
	}
	n := sc.nRegs[class]
	if n+count <= MaxRegisterArguments && n+count <= len(bank) {
		sc.nRegs[class] = n + count
		return bank[n : n+count]
	}
	sc.nRegs[class] = MaxRegisterArguments
	return nil
}

func (sc *storageCalculator) regAllocLayout(class abi.StorageClass, l layout.Layout) []abi.Storage {
	return sc.regAlloc(class, int(alignUp(l.ByteSize(), 8)/8))
}

func (sc *storageCalculator) nextStorage(class abi.StorageClass, l layout.Layout) (abi.Storage, error) {
	if regs := sc.regAlloc(class, 1); regs != nil {
		return regs[0], nil
	}
	return sc.stackAllocLayout(l)
}

// bindingCalculator emits the binding list for one value. The unbox
// direction produces native call arguments from managed values; the box
// direction produces managed values from native ones. Both directions
// share the classification-driven walk and differ only in the emitted
// mirror-image sequences.
type bindingCalculator struct {
	storage *storageCalculator
	unbox   bool
}

func newBindingCalculator(desc *abi.Descriptor, forArguments, unbox bool) *bindingCalculator {
	return &bindingCalculator{
		storage: newStorageCalculator(desc, forArguments),
		unbox:   unbox,
	}
}

// indirectBindings moves the hidden return-buffer pointer through the
// fixed indirect-result register.
func (bc *bindingCalculator) indirectBindings() []abi.Binding {
	if bc.unbox {
		return []abi.Binding{
			abi.BoxAddress(),
			abi.Move(bc.storage.desc.IndirectResult, abi.CarrierInt64),
		}
	}
	return []abi.Binding{
		abi.Move(bc.storage.desc.IndirectResult, abi.CarrierInt64),
		abi.BoxAddress(),
	}
}

func (bc *bindingCalculator) bindings(carrier abi.Carrier, l layout.Layout) ([]abi.Binding, error) {
	class, err := ClassifyType(l)
	if err != nil {
		return nil, err
	}

	switch class {
	case StructRegister:
		return bc.structRegister(l)
	case StructReference:
		return bc.structReference(l)
	case StructHFA:
		return bc.structHFA(l.(*layout.Group))
	case Pointer:
		storage, err := bc.storage.nextStorage(abi.StorageInteger, l)
		if err != nil {
			return nil, err
		}
		if bc.unbox {
			return []abi.Binding{abi.BoxAddress(), abi.Move(storage, abi.CarrierInt64)}, nil
		}
		return []abi.Binding{abi.Move(storage, abi.CarrierInt64), abi.BoxAddress()}, nil
	case Integer:
		storage, err := bc.storage.nextStorage(abi.StorageInteger, l)
		if err != nil {
			return nil, err
		}
		return []abi.Binding{abi.Move(storage, carrier)}, nil
	case Float:
		storage, err := bc.storage.nextStorage(abi.StorageVector, l)
		if err != nil {
			return nil, err
		}
		return []abi.Binding{abi.Move(storage, carrier)}, nil
	default:
		return nil, errors.Unsupported(errors.PhaseBind, class.String())
	}
}

func (bc *bindingCalculator) structRegister(l layout.Layout) ([]abi.Binding, error) {
	var bindings []abi.Binding
	if !bc.unbox {
		bindings = append(bindings, abi.AllocateBuffer(l.ByteSize(), l.ByteAlignment()))
	}

	regs := bc.storage.regAllocLayout(abi.StorageInteger, l)
	if regs == nil {
		return bc.spillStruct(bindings, l)
	}

	size := l.ByteSize()
	offset := uint64(0)
	for i := 0; offset < size; i++ {
		chunk, typ, err := chunkCarrier(size - offset)
		if err != nil {
			return nil, err
		}
		if bc.unbox {
			if offset+chunk < size {
				bindings = append(bindings, abi.Dup())
			}
			bindings = append(bindings, abi.Dereference(offset, typ), abi.Move(regs[i], typ))
		} else {
			bindings = append(bindings, abi.Dup(), abi.Move(regs[i], typ), abi.Dereference(offset, typ))
		}
		offset += chunk
	}
	return bindings, nil
}

func (bc *bindingCalculator) structReference(l layout.Layout) ([]abi.Binding, error) {
	storage, err := bc.storage.nextStorage(abi.StorageInteger, l)
	if err != nil {
		return nil, err
	}
	if bc.unbox {
		// Pass a pointer to a copy of the aggregate.
		return []abi.Binding{
			abi.Copy(l.ByteSize(), l.ByteAlignment()),
			abi.BaseAddress(),
			abi.BoxAddress(),
			abi.Move(storage, abi.CarrierInt64),
		}, nil
	}
	// The materialized view over the pointee must not outlive the call.
	return []abi.Binding{
		abi.Move(storage, abi.CarrierInt64),
		abi.BoxAddress(),
		abi.Copy(l.ByteSize(), l.ByteAlignment()),
	}, nil
}

func (bc *bindingCalculator) structHFA(group *layout.Group) ([]abi.Binding, error) {
	var bindings []abi.Binding
	if !bc.unbox {
		bindings = append(bindings, abi.AllocateBuffer(group.ByteSize(), group.ByteAlignment()))
	}

	members := group.Members()
	regs := bc.storage.regAlloc(abi.StorageVector, len(members))
	if regs == nil {
		return bc.spillStruct(bindings, group)
	}

	offset := uint64(0)
	for i, m := range members {
		size := m.ByteSize()
		typ, err := abi.CarrierForSize(size)
		if err != nil {
			return nil, err
		}
		if bc.unbox {
			if i+1 < len(members) {
				bindings = append(bindings, abi.Dup())
			}
			bindings = append(bindings, abi.Dereference(offset, typ), abi.Move(regs[i], typ))
		} else {
			bindings = append(bindings, abi.Dup(), abi.Move(regs[i], typ), abi.Dereference(offset, typ))
		}
		offset += size
	}
	return bindings, nil
}

// spillStruct places an entire aggregate on the stack when its register
// class could not be satisfied. The whole struct spills, never just the
// unallocated remainder.
func (bc *bindingCalculator) spillStruct(bindings []abi.Binding, l layout.Layout) ([]abi.Binding, error) {
	size := l.ByteSize()
	offset := uint64(0)
	for offset < size {
		chunk, typ, err := chunkCarrier(size - offset)
		if err != nil {
			return nil, err
		}
		storage, err := bc.storage.stackAlloc(chunk, StackSlotSize)
		if err != nil {
			return nil, err
		}
		if bc.unbox {
			if offset+chunk < size {
				bindings = append(bindings, abi.Dup())
			}
			bindings = append(bindings, abi.Dereference(offset, typ), abi.Move(storage, typ))
		} else {
			bindings = append(bindings, abi.Dup(), abi.Move(storage, typ), abi.Dereference(offset, typ))
		}
		offset += chunk
	}
	return bindings, nil
}

// Bindings pairs a built calling sequence with the in-memory-return flag.
type Bindings struct {
	Sequence       *abi.CallingSequence
	InMemoryReturn bool
}

// Downcall carries an arranged call out to a native entry point. The
// trampoline collaborator turns it into an invocable handle, moving the
// hidden return buffer transparently when InMemoryReturn is set.
type Downcall struct {
	Bindings
	Addr uintptr
}

// Upcall carries a native-callable arrangement that dispatches into the
// managed target. The target is opaque to the binder; the trampoline
// collaborator invokes it.
type Upcall struct {
	Target any
	Bindings
}

// ArrangeDowncall translates a managed signature and native descriptor
// into the calling sequence for calling out to the native function at
// addr.
func ArrangeDowncall(addr uintptr, sig abi.Signature, fd layout.Func) (*Downcall, error) {
	if addr == 0 {
		return nil, errors.NilPointer(errors.PhaseArrange, "native entry address")
	}
	b, err := getBindings(sig, fd, false)
	if err != nil {
		return nil, err
	}
	abi.Logger().Debug("arranged downcall",
		zap.String("descriptor", fd.String()),
		zap.Int("arguments", b.Sequence.ArgumentCount()),
		zap.Bool("in_memory_return", b.InMemoryReturn))
	return &Downcall{Bindings: *b, Addr: addr}, nil
}

// ArrangeUpcall translates a managed signature and native descriptor
// into the calling sequence for exposing target as a native-callable
// entry point.
func ArrangeUpcall(target any, sig abi.Signature, fd layout.Func) (*Upcall, error) {
	if target == nil {
		return nil, errors.NilPointer(errors.PhaseArrange, "upcall target")
	}
	b, err := getBindings(sig, fd, true)
	if err != nil {
		return nil, err
	}
	abi.Logger().Debug("arranged upcall",
		zap.String("descriptor", fd.String()),
		zap.Int("arguments", b.Sequence.ArgumentCount()),
		zap.Bool("in_memory_return", b.InMemoryReturn))
	return &Upcall{Target: target, Bindings: *b}, nil
}

func getBindings(sig abi.Signature, fd layout.Func, forUpcall bool) (*Bindings, error) {
	if err := checkFunctionTypes(sig, fd); err != nil {
		return nil, err
	}

	builder := abi.NewBuilder()

	// Downcalls unbox arguments and box the result; upcalls mirror both.
	argCalc := newBindingCalculator(&C, true, !forUpcall)
	retCalc := newBindingCalculator(&C, false, forUpcall)

	retLayout, hasRet := fd.Return()
	returnInMemory := hasRet && isInMemoryReturn(retLayout)
	if returnInMemory {
		builder.MarkInMemoryReturn()
		builder.AddArgument(argCalc.indirectBindings())
	} else if hasRet {
		bindings, err := retCalc.bindings(sig.Ret, retLayout)
		if err != nil {
			return nil, wrapArg(err, "ret")
		}
		builder.SetReturn(bindings)
	}

	for i, argLayout := range fd.Arguments() {
		bindings, err := argCalc.bindings(sig.Params[i], argLayout)
		if err != nil {
			return nil, wrapArg(err, fmt.Sprintf("arg%d", i))
		}
		builder.AddArgument(bindings)
	}

	seq, err := builder.Build()
	if err != nil {
		return nil, err
	}
	return &Bindings{Sequence: seq, InMemoryReturn: returnInMemory}, nil
}

// isInMemoryReturn reports whether the return layout must travel through
// the hidden indirect-result buffer: an aggregate that neither fits the
// register budget nor qualifies as an HFA. Exactly one of register
// return and indirect return applies to any layout.
func isInMemoryReturn(l layout.Layout) bool {
	if _, ok := l.(*layout.Group); !ok {
		return false
	}
	return !isRegisterAggregate(l) && !isHomogeneousFloatAggregate(l)
}

func checkFunctionTypes(sig abi.Signature, fd layout.Func) error {
	args := fd.Arguments()
	if sig.Arity() != len(args) {
		return errors.ArityMismatch("argument count", sig.Arity(), len(args))
	}

	retLayout, hasRet := fd.Return()
	managedRet := 0
	if sig.Ret != abi.CarrierNone {
		managedRet = 1
	}
	nativeRet := 0
	if hasRet {
		nativeRet = 1
	}
	if managedRet != nativeRet {
		return errors.ArityMismatch("return count", managedRet, nativeRet)
	}

	if hasRet {
		if err := checkCompatible("ret", sig.Ret, retLayout); err != nil {
			return err
		}
	}
	for i, argLayout := range args {
		if err := checkCompatible(fmt.Sprintf("arg%d", i), sig.Params[i], argLayout); err != nil {
			return err
		}
	}
	return nil
}

func checkCompatible(path string, carrier abi.Carrier, l layout.Layout) error {
	mismatch := func() error {
		return errors.CarrierMismatch([]string{path}, carrier.String(), l.String())
	}

	switch l := l.(type) {
	case *layout.Value:
		class, ok := l.Class()
		if !ok {
			return errors.MissingABIClass(l.String())
		}
		switch class {
		case layout.ClassPointer:
			if carrier != abi.CarrierPointer {
				return mismatch()
			}
		case layout.ClassVector:
			want := abi.CarrierFloat32
			if l.BitSize() == 64 {
				want = abi.CarrierFloat64
			}
			if carrier != want {
				return mismatch()
			}
		default:
			want, err := abi.CarrierForSize(l.ByteSize())
			if err != nil || carrier != want {
				return mismatch()
			}
		}
	case *layout.Group:
		if carrier != abi.CarrierSegment {
			return mismatch()
		}
	case *layout.Sequence:
		// Sequences move as opaque blobs through integer storage and
		// must fit one register-width move.
		want, err := abi.CarrierForSize(l.ByteSize())
		if err != nil || carrier != want {
			return mismatch()
		}
	default:
		return errors.UnsupportedLayout(errors.PhaseArrange, l.String())
	}
	return nil
}

// chunkCarrier sizes the next aggregate chunk: one register-width window,
// or the tail. An odd-sized tail still moves through the next wider
// carrier, the way native code reads a partial final register; the
// interpreter clamps the access at the segment boundary.
func chunkCarrier(remaining uint64) (uint64, abi.Carrier, error) {
	chunk := min(remaining, uint64(StackSlotSize))
	width := uint64(1)
	for width < chunk {
		width <<= 1
	}
	typ, err := abi.CarrierForSize(width)
	return chunk, typ, err
}

// wrapArg tags a binding error with the argument position it arose at,
// unless the error already carries a path.
func wrapArg(err error, path string) error {
	if e, ok := err.(*errors.Error); ok && len(e.Path) == 0 {
		e.Path = []string{path}
	}
	return err
}

func alignUp(v, alignment uint64) uint64 {
	return (v + alignment - 1) &^ (alignment - 1)
}
