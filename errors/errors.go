package errors

import (
	"fmt"
	"strings"
)

// Phase indicates where in calling-sequence construction the error occurred
type Phase string

const (
	PhaseClassify Phase = "classify" // type classification
	PhaseBind     Phase = "bind"     // binding computation
	PhaseArrange  Phase = "arrange"  // downcall/upcall arrangement
	PhaseLayout   Phase = "layout"   // layout derivation
	PhaseParse    Phase = "parse"    // signature parsing
	PhaseExec     Phase = "exec"     // binding interpretation
)

// Kind categorizes the error
type Kind string

const (
	KindMissingABIClass   Kind = "missing_abi_class"
	KindUnsupportedLayout Kind = "unsupported_layout"
	KindArityMismatch     Kind = "arity_mismatch"
	KindCarrierMismatch   Kind = "carrier_mismatch"
	KindReturnConflict    Kind = "return_conflict"
	KindStackReturn       Kind = "stack_return"
	KindInvalidInput      Kind = "invalid_input"
	KindOutOfRange        Kind = "out_of_range"
	KindUnsupported       Kind = "unsupported"
	KindNilPointer        Kind = "nil_pointer"
)

// Error is the structured error type used throughout the binder.
//
// All binder failures are programming or configuration errors: none of
// them are retryable, and none are ever swallowed, since a silently
// misclassified layout corrupts memory at native-call time.
type Error struct {
	Cause   error
	Phase   Phase
	Kind    Kind
	Layout  string
	Carrier string
	Detail  string
	Path    []string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if len(e.Path) > 0 {
		b.WriteString(" at ")
		b.WriteString(strings.Join(e.Path, "."))
	}

	if e.Layout != "" || e.Carrier != "" {
		b.WriteString(": ")
		if e.Layout != "" && e.Carrier != "" {
			b.WriteString("layout ")
			b.WriteString(e.Layout)
			b.WriteString(", carrier ")
			b.WriteString(e.Carrier)
		} else if e.Layout != "" {
			b.WriteString("layout ")
			b.WriteString(e.Layout)
		} else {
			b.WriteString("carrier ")
			b.WriteString(e.Carrier)
		}
	}

	if e.Detail != "" {
		if e.Layout != "" || e.Carrier != "" {
			b.WriteString(" - ")
		} else {
			b.WriteString(": ")
		}
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Path sets the argument/field path
func (b *Builder) Path(path ...string) *Builder {
	b.err.Path = path
	return b
}

// Layout sets the offending layout description
func (b *Builder) Layout(l string) *Builder {
	b.err.Layout = l
	return b
}

// Carrier sets the offending carrier type name
func (b *Builder) Carrier(c string) *Builder {
	b.err.Carrier = c
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Convenience constructors for common error patterns

// MissingABIClass reports a value layout without a usable ABI class
// annotation. Padding layouts must never reach classification.
func MissingABIClass(layout string) *Error {
	return &Error{
		Phase:  PhaseClassify,
		Kind:   KindMissingABIClass,
		Layout: layout,
		Detail: "value layout carries no ABI class",
	}
}

// UnsupportedLayout reports a layout kind outside {value, group, sequence}.
func UnsupportedLayout(phase Phase, layout string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindUnsupportedLayout,
		Layout: layout,
	}
}

// ArityMismatch reports disagreement between the managed signature and the
// native descriptor in argument or return count.
func ArityMismatch(detail string, managed, native int) *Error {
	return &Error{
		Phase:  PhaseArrange,
		Kind:   KindArityMismatch,
		Detail: fmt.Sprintf("%s: signature has %d, descriptor has %d", detail, managed, native),
	}
}

// CarrierMismatch reports an incompatible carrier/layout pairing.
func CarrierMismatch(path []string, carrier, layout string) *Error {
	return &Error{
		Phase:   PhaseArrange,
		Kind:    KindCarrierMismatch,
		Path:    path,
		Carrier: carrier,
		Layout:  layout,
	}
}

// ReturnConflict reports a second return-binding set on one builder.
func ReturnConflict() *Error {
	return &Error{
		Phase:  PhaseBind,
		Kind:   KindReturnConflict,
		Detail: "return bindings already set",
	}
}

// StackReturn reports a stack allocation attempt on the return bank.
func StackReturn(size uint64) *Error {
	return &Error{
		Phase:  PhaseBind,
		Kind:   KindStackReturn,
		Detail: fmt.Sprintf("no stack returns: %d bytes do not fit the return registers", size),
	}
}

// InvalidInput creates an invalid input error
func InvalidInput(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidInput,
		Detail: detail,
	}
}

// OutOfRange reports an index outside a register bank or argument list.
func OutOfRange(phase Phase, what string, index, length int) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindOutOfRange,
		Detail: fmt.Sprintf("%s index %d out of range (length %d)", what, index, length),
	}
}

// Unsupported creates an unsupported operation error
func Unsupported(phase Phase, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindUnsupported,
		Detail: what,
	}
}

// NilPointer creates a nil pointer error
func NilPointer(phase Phase, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNilPointer,
		Detail: fmt.Sprintf("%s is nil", what),
	}
}

// Wrap wraps an existing error with additional context
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Detail: detail,
		Cause:  cause,
	}
}
