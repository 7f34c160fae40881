// Package ffibinder computes foreign-function calling sequences: the
// ordered data-movement steps that carry managed values into a native
// call frame and native results back out.
//
// # Architecture Overview
//
// The library is organized into several packages with distinct
// responsibilities:
//
//	ffibinder/           Root package with platform entry points
//	├── layout/          Native memory layout model, C constants, WIT front-end
//	├── abi/             Storage model, bindings, calling sequences, interpreter
//	├── abi/aarch64/     AAPCS64 classifier, storage calculator, call arranger
//	└── errors/          Structured error types for debugging
//
// # Quick Start
//
// Arrange a downcall to a native function taking an int and a double and
// returning a small struct:
//
//	fd := layout.FuncOf(
//	    layout.StructOf(layout.CDouble, layout.CDouble),
//	    layout.CInt, layout.CDouble,
//	)
//	sig := abi.SignatureOf(abi.CarrierSegment, abi.CarrierInt32, abi.CarrierFloat64)
//
//	d, err := ffibinder.Downcall(addr, sig, fd)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for i := 0; i < d.Sequence.ArgumentCount(); i++ {
//	    bindings, _ := d.Sequence.ArgumentBindings(i)
//	    fmt.Println(bindings)
//	}
//
// The resulting calling sequence tells an invocation engine exactly which
// registers, stack slots and buffers each value flows through. The binder
// computes and validates these routes; executing a real native call is
// the job of a trampoline layer built on top.
//
// # Directions
//
// Every route is computed in one of two directions. Unbox moves managed
// values toward native storage (downcall arguments, upcall returns); box
// moves native storage toward managed values (downcall returns, upcall
// arguments). The abi.Machine interpreter executes both directions over
// simulated frames, so round-trip behavior is testable without touching
// a native boundary.
//
// # Thread Safety
//
// Arrangement is pure: no state is shared between calls, and the
// resulting sequences are immutable and safe to share. An abi.Machine is
// single-call scratch state and is not safe for concurrent use.
package ffibinder
