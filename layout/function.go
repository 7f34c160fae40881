package layout

import "strings"

// Func describes a native function: its argument layouts in declaration
// order and an optional return layout.
type Func struct {
	ret  Layout
	args []Layout
}

// FuncOf returns a descriptor for a function returning ret.
func FuncOf(ret Layout, args ...Layout) Func {
	return Func{ret: ret, args: args}
}

// FuncVoid returns a descriptor for a function with no return value.
func FuncVoid(args ...Layout) Func {
	return Func{args: args}
}

// Arguments returns the argument layouts in declaration order.
func (f Func) Arguments() []Layout { return f.args }

// Return returns the return layout, or false for void functions.
func (f Func) Return() (Layout, bool) {
	if f.ret == nil {
		return nil, false
	}
	return f.ret, true
}

func (f Func) String() string {
	var b strings.Builder
	b.WriteByte('(')
	for i, a := range f.args {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(a.String())
	}
	b.WriteByte(')')
	if f.ret != nil {
		b.WriteString(" -> ")
		b.WriteString(f.ret.String())
	}
	return b.String()
}
