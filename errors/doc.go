// Package errors provides structured error types for the binder.
//
// Every error carries a phase (where in calling-sequence construction it
// occurred) and a kind (what went wrong), plus an optional argument path
// and layout/carrier context:
//
//	[classify] missing_abi_class: layout b32 - value layout carries no ABI class
//	[arrange] carrier_mismatch at arg2: carrier int32, layout struct[16]
//
// There is no recoverable error class in this module. Construction is a
// pure, deterministic translation step, so a failed construction cannot
// succeed on retry with the same inputs; callers should treat every error
// as a programming or configuration bug in the signature or descriptor.
//
// Errors support errors.Is matching on (phase, kind) and errors.Unwrap
// for wrapped causes.
package errors
