package ffibinder

import (
	"testing"

	"github.com/wippyai/ffi-binder/abi"
	"github.com/wippyai/ffi-binder/layout"
)

func TestDowncall(t *testing.T) {
	fd := layout.FuncOf(
		layout.StructOf(layout.CDouble, layout.CDouble),
		layout.CInt, layout.CDouble,
	)
	sig := abi.SignatureOf(abi.CarrierSegment, abi.CarrierInt32, abi.CarrierFloat64)

	d, err := Downcall(0x1000, sig, fd)
	if err != nil {
		t.Fatalf("downcall: %v", err)
	}
	if d.Sequence.ArgumentCount() != 2 {
		t.Errorf("argument count: got %d, want 2", d.Sequence.ArgumentCount())
	}
	if _, ok := d.Sequence.ReturnBindings(); !ok {
		t.Error("HFA return must bind return registers")
	}
}

func TestUpcall(t *testing.T) {
	fd := layout.FuncVoid(layout.CPointer)
	sig := abi.SignatureOf(abi.CarrierNone, abi.CarrierPointer)

	u, err := Upcall(func() {}, sig, fd)
	if err != nil {
		t.Fatalf("upcall: %v", err)
	}
	if u.Target == nil {
		t.Error("target lost")
	}
	if u.Sequence.ArgumentCount() != 1 {
		t.Errorf("argument count: got %d, want 1", u.Sequence.ArgumentCount())
	}
}
