package abi

import (
	stderrors "errors"
	"testing"

	"github.com/wippyai/ffi-binder/errors"
)

func TestBuilderPreservesArgumentOrder(t *testing.T) {
	r0 := RegisterStorage(StorageInteger, 0, "r0")
	r1 := RegisterStorage(StorageInteger, 1, "r1")
	v0 := RegisterStorage(StorageVector, 0, "v0")

	seq, err := NewBuilder().
		AddArgument([]Binding{Move(r0, CarrierInt32)}).
		AddArgument([]Binding{Move(v0, CarrierFloat64)}).
		AddArgument([]Binding{Move(r1, CarrierInt64)}).
		Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	if seq.ArgumentCount() != 3 {
		t.Fatalf("argument count: got %d, want 3", seq.ArgumentCount())
	}
	for i, want := range []Storage{r0, v0, r1} {
		bindings, err := seq.ArgumentBindings(i)
		if err != nil {
			t.Fatalf("argument %d: %v", i, err)
		}
		if len(bindings) != 1 || bindings[0].Storage != want {
			t.Errorf("argument %d bound to %s, want %s", i, bindings[0].Storage, want)
		}
	}

	if _, err := seq.ArgumentBindings(3); err == nil {
		t.Error("out-of-range argument index: want error")
	}
	if _, err := seq.ArgumentBindings(-1); err == nil {
		t.Error("negative argument index: want error")
	}
}

func TestBuilderReturnConflict(t *testing.T) {
	r0 := RegisterStorage(StorageInteger, 0, "r0")
	ret := []Binding{Move(r0, CarrierInt32)}

	t.Run("second set return", func(t *testing.T) {
		_, err := NewBuilder().SetReturn(ret).SetReturn(ret).Build()
		if !stderrors.Is(err, errors.ReturnConflict()) {
			t.Errorf("got %v, want return conflict", err)
		}
	})

	t.Run("return then in-memory", func(t *testing.T) {
		_, err := NewBuilder().SetReturn(ret).MarkInMemoryReturn().Build()
		if !stderrors.Is(err, errors.ReturnConflict()) {
			t.Errorf("got %v, want return conflict", err)
		}
	})

	t.Run("in-memory then return", func(t *testing.T) {
		_, err := NewBuilder().MarkInMemoryReturn().SetReturn(ret).Build()
		if !stderrors.Is(err, errors.ReturnConflict()) {
			t.Errorf("got %v, want return conflict", err)
		}
	})
}

func TestBuilderRejectsMalformedBinding(t *testing.T) {
	r0 := RegisterStorage(StorageInteger, 0, "r0")
	bad := []Binding{Move(r0, CarrierNone)}

	if _, err := NewBuilder().AddArgument(bad).Build(); err == nil {
		t.Error("malformed argument binding: want error")
	}
	if _, err := NewBuilder().SetReturn(bad).Build(); err == nil {
		t.Error("malformed return binding: want error")
	}
}

func TestBuilderStickyError(t *testing.T) {
	r0 := RegisterStorage(StorageInteger, 0, "r0")

	// The first failure wins; later valid calls must not mask it.
	_, err := NewBuilder().
		SetReturn([]Binding{Move(r0, CarrierInt32)}).
		SetReturn([]Binding{Move(r0, CarrierInt32)}).
		AddArgument([]Binding{Move(r0, CarrierInt64)}).
		Build()
	if !stderrors.Is(err, errors.ReturnConflict()) {
		t.Errorf("got %v, want return conflict", err)
	}
}

func TestSequenceAccessors(t *testing.T) {
	t.Run("void", func(t *testing.T) {
		seq, err := NewBuilder().Build()
		if err != nil {
			t.Fatalf("build: %v", err)
		}
		if _, ok := seq.ReturnBindings(); ok {
			t.Error("void sequence reports return bindings")
		}
		if seq.InMemoryReturn() {
			t.Error("void sequence reports in-memory return")
		}
	})

	t.Run("in-memory", func(t *testing.T) {
		seq, err := NewBuilder().MarkInMemoryReturn().Build()
		if err != nil {
			t.Fatalf("build: %v", err)
		}
		if !seq.InMemoryReturn() {
			t.Error("in-memory flag lost")
		}
		if _, ok := seq.ReturnBindings(); ok {
			t.Error("in-memory sequence reports register return bindings")
		}
	})
}

func TestSequenceString(t *testing.T) {
	r0 := RegisterStorage(StorageInteger, 0, "r0")
	v0 := RegisterStorage(StorageVector, 0, "v0")

	seq, err := NewBuilder().
		AddArgument([]Binding{Move(r0, CarrierInt32)}).
		SetReturn([]Binding{Move(v0, CarrierFloat64)}).
		Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	want := "move r0, int32 -> move v0, float64"
	if got := seq.String(); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}
