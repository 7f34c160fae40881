package ffibinder

import (
	"github.com/wippyai/ffi-binder/abi"
	"github.com/wippyai/ffi-binder/abi/aarch64"
	"github.com/wippyai/ffi-binder/layout"
)

// Downcall arranges a call out to the native function at addr under the
// AAPCS64 convention.
func Downcall(addr uintptr, sig abi.Signature, fd layout.Func) (*aarch64.Downcall, error) {
	return aarch64.ArrangeDowncall(addr, sig, fd)
}

// Upcall arranges a native-callable entry point that dispatches into
// target under the AAPCS64 convention.
func Upcall(target any, sig abi.Signature, fd layout.Func) (*aarch64.Upcall, error) {
	return aarch64.ArrangeUpcall(target, sig, fd)
}
