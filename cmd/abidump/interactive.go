package main

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/wippyai/ffi-binder/abi"
	"github.com/wippyai/ffi-binder/abi/aarch64"
	"github.com/wippyai/ffi-binder/layout"
)

type modelState int

const (
	stateInput modelState = iota
	stateShow
)

type interactiveModel struct {
	err    error
	input  textinput.Model
	fd     layout.Func
	sig    abi.Signature
	b      *aarch64.Bindings
	upcall bool
	state  modelState
}

func newInteractiveModel() *interactiveModel {
	ti := textinput.New()
	ti.Placeholder = "(i32, double) -> struct{f64,f64}"
	ti.Prompt = "signature: "
	ti.Width = 60
	ti.Focus()
	return &interactiveModel{input: ti}
}

func (m *interactiveModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m *interactiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit

		case "q":
			if m.state == stateShow {
				return m, tea.Quit
			}

		case "enter":
			if m.state == stateInput {
				m.arrange()
				if m.err == nil {
					m.state = stateShow
				}
			}
			return m, nil

		case "t":
			if m.state == stateShow {
				m.upcall = !m.upcall
				m.arrange()
				return m, nil
			}

		case "esc":
			if m.state == stateShow {
				m.state = stateInput
				m.err = nil
				m.input.Focus()
				return m, nil
			}
		}
	}

	if m.state == stateInput {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *interactiveModel) arrange() {
	fd, sig, err := ParseSignature(m.input.Value())
	if err != nil {
		m.err = err
		return
	}
	b, _, err := arrange(sig, fd, m.upcall)
	if err != nil {
		m.err = err
		return
	}
	m.fd, m.sig, m.b, m.err = fd, sig, b, nil
}

func (m *interactiveModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("ABI Explorer"))
	b.WriteString(" aarch64\n\n")

	switch m.state {
	case stateInput:
		b.WriteString(m.input.View())
		b.WriteString("\n")
		if m.err != nil {
			b.WriteString("\n")
			b.WriteString(errorStyle.Render(m.err.Error()))
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("enter arrange • ctrl+c quit"))

	case stateShow:
		direction := "downcall"
		if m.upcall {
			direction = "upcall"
		}
		if m.err != nil {
			b.WriteString(errorStyle.Render(m.err.Error()))
			b.WriteString("\n")
		} else {
			b.WriteString(renderArrangement("", m.fd, m.b, direction, true))
		}
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("t toggle direction • esc edit • q quit"))
	}

	return b.String()
}

func runInteractive() error {
	p := tea.NewProgram(newInteractiveModel(), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
