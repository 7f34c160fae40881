package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/wippyai/ffi-binder/abi"
	"github.com/wippyai/ffi-binder/abi/aarch64"
	"github.com/wippyai/ffi-binder/layout"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	sigStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	noteStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFD700"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

type renderer struct {
	styled bool
}

func (r renderer) style(s lipgloss.Style, text string) string {
	if !r.styled {
		return text
	}
	return s.Render(text)
}

// renderArrangement formats one arranged calling sequence: the signature
// header, one line per bound argument, and the return route.
func renderArrangement(name string, fd layout.Func, b *aarch64.Bindings, direction string, styled bool) string {
	r := renderer{styled: styled}
	var out strings.Builder

	header := fd.String()
	if name != "" {
		header = name + ": " + header
	}
	out.WriteString(r.style(sigStyle, header))
	out.WriteString("  [" + direction + "]\n")

	seq := b.Sequence
	first := 0
	if b.InMemoryReturn {
		bindings, _ := seq.ArgumentBindings(0)
		out.WriteString("  " + r.style(labelStyle, "ret*") + ": " + bindingLine(bindings) + "\n")
		first = 1
	}

	for i := first; i < seq.ArgumentCount(); i++ {
		bindings, _ := seq.ArgumentBindings(i)
		label := fmt.Sprintf("arg%d", i-first)
		out.WriteString("  " + r.style(labelStyle, label) + ": " + bindingLine(bindings) + "\n")
	}

	if ret, ok := seq.ReturnBindings(); ok {
		out.WriteString("  " + r.style(labelStyle, "ret") + " : " + bindingLine(ret) + "\n")
	}
	if b.InMemoryReturn {
		out.WriteString("  " + r.style(noteStyle, "returns in memory through the hidden pointer in r8") + "\n")
	}

	return out.String()
}

func bindingLine(bindings []abi.Binding) string {
	if len(bindings) == 0 {
		return "(none)"
	}
	parts := make([]string, len(bindings))
	for i, b := range bindings {
		parts[i] = b.String()
	}
	return strings.Join(parts, ", ")
}
