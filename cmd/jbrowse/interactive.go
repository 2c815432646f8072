package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	jvmruntime "github.com/wippyai/jvm-runtime"
	"github.com/wippyai/jvm-runtime/controller"
	"github.com/wippyai/jvm-runtime/engine"
	"github.com/wippyai/jvm-runtime/namespace"
	"github.com/wippyai/jvm-runtime/options"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	packageStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	classStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	resultStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#90EE90"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

type modelState int

const (
	stateBrowse modelState = iota
	stateInputArgs
	stateShowResult
)

type browseModel struct {
	startup  options.Startup
	prefixes []string

	ctrl *controller.Controller
	reg  *namespace.Registry

	err      error
	node     *namespace.Node
	trail    []*namespace.Node
	members  []string
	selected int
	result   string
	state    modelState

	pendingFn jvmruntime.Function
	argsInput textinput.Model
}

func newBrowseModel(startup options.Startup, prefixes []string) *browseModel {
	return &browseModel{startup: startup, prefixes: prefixes, state: stateBrowse}
}

type startedMsg struct {
	err  error
	ctrl *controller.Controller
	reg  *namespace.Registry
	root *namespace.Node
}

type resolvedMsg struct {
	err    error
	node   *namespace.Node
	fn     jvmruntime.Function
	result string
}

func (m *browseModel) Init() tea.Cmd {
	return m.start
}

func (m *browseModel) start() tea.Msg {
	bridge := engine.New(engine.Config{})
	ctrl := controller.New(controller.Config{Bridge: bridge})
	reg := namespace.NewRegistry(ctrl, namespace.Config{})

	for _, p := range m.prefixes {
		if err := reg.RegisterPrefix(p); err != nil {
			return startedMsg{err: err}
		}
	}
	if err := ctrl.Start(m.startup); err != nil {
		return startedMsg{err: err}
	}
	root, err := reg.Node("")
	if err != nil {
		_ = ctrl.Stop()
		return startedMsg{err: err}
	}
	return startedMsg{ctrl: ctrl, reg: reg, root: root}
}

func (m *browseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			if m.ctrl != nil {
				_ = m.ctrl.Stop()
			}
			return m, tea.Quit

		case "up", "k":
			if m.state == stateBrowse && m.selected > 0 {
				m.selected--
			}

		case "down", "j":
			if m.state == stateBrowse && m.selected < len(m.members)-1 {
				m.selected++
			}

		case "enter":
			switch m.state {
			case stateBrowse:
				if len(m.members) > 0 {
					return m, m.open()
				}
			case stateInputArgs:
				return m, m.callPending()
			case stateShowResult:
				m.state = stateBrowse
				m.result = ""
				m.err = nil
			}

		case "esc":
			switch m.state {
			case stateBrowse:
				m.ascend()
			case stateInputArgs:
				m.state = stateBrowse
				m.pendingFn = nil
			case stateShowResult:
				m.state = stateBrowse
				m.result = ""
				m.err = nil
			}

		case "backspace":
			if m.state == stateBrowse {
				m.ascend()
			}
		}

	case startedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.ctrl = msg.ctrl
		m.reg = msg.reg
		m.node = msg.root
		m.members = msg.root.Members()

	case resolvedMsg:
		switch {
		case msg.err != nil:
			m.err = msg.err
			m.state = stateShowResult
		case msg.node != nil:
			m.trail = append(m.trail, m.node)
			m.node = msg.node
			m.members = msg.node.Members()
			m.selected = 0
		case msg.fn != nil:
			m.pendingFn = msg.fn
			m.argsInput = textinput.New()
			m.argsInput.Placeholder = "integer args, space separated"
			m.argsInput.Prompt = msg.fn.Name() + "("
			m.argsInput.Width = 40
			m.argsInput.Focus()
			m.state = stateInputArgs
		default:
			m.result = msg.result
			m.state = stateShowResult
		}
	}

	if m.state == stateInputArgs {
		var cmd tea.Cmd
		m.argsInput, cmd = m.argsInput.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m *browseModel) ascend() {
	if n := len(m.trail); n > 0 {
		m.node = m.trail[n-1]
		m.trail = m.trail[:n-1]
		m.members = m.node.Members()
		m.selected = 0
	}
}

// callPending invokes the chosen free function with the typed integer
// arguments.
func (m *browseModel) callPending() tea.Cmd {
	fn := m.pendingFn
	raw := strings.Fields(m.argsInput.Value())
	m.pendingFn = nil
	return func() tea.Msg {
		args := make([]any, len(raw))
		for i, a := range raw {
			n, err := strconv.ParseUint(a, 10, 64)
			if err != nil {
				return resolvedMsg{err: fmt.Errorf("argument %q: %w", a, err)}
			}
			args[i] = n
		}
		out, err := fn.Call(context.Background(), args...)
		if err != nil {
			return resolvedMsg{err: err}
		}
		return resolvedMsg{result: fmt.Sprintf("%s(%s) = %v", fn.Name(), strings.Join(raw, ", "), out)}
	}
}

// open resolves the selected member off the UI goroutine; first touch
// of a package can hit the runtime.
func (m *browseModel) open() tea.Cmd {
	name := m.members[m.selected]
	node := m.node
	return func() tea.Msg {
		v, err := node.Member(name)
		if err != nil {
			return resolvedMsg{err: err}
		}
		switch v := v.(type) {
		case *namespace.Node:
			return resolvedMsg{node: v}
		case jvmruntime.Class:
			return resolvedMsg{result: "class " + v.CanonicalName()}
		case jvmruntime.Function:
			return resolvedMsg{fn: v}
		default:
			return resolvedMsg{result: fmt.Sprintf("%v", v)}
		}
	}
}

func (m *browseModel) View() string {
	if m.err != nil && m.state != stateShowResult {
		return errorStyle.Render(fmt.Sprintf("Error: %v\n\nPress q to quit.", m.err))
	}

	if m.node == nil {
		return "Starting runtime..."
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("Namespace Browser"))
	b.WriteString(" ")
	b.WriteString(m.node.String())
	b.WriteString("\n\n")

	switch m.state {
	case stateBrowse:
		if len(m.members) == 0 {
			b.WriteString(helpStyle.Render("(empty package)"))
			b.WriteString("\n")
		}
		for i, name := range m.members {
			line := m.formatMember(name)
			if i == m.selected {
				b.WriteString(selectedStyle.Render("> " + name))
			} else {
				b.WriteString("  " + line)
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("↑/↓ select • enter open • esc up • q quit"))

	case stateInputArgs:
		b.WriteString(m.argsInput.View())
		b.WriteString(")\n\n")
		b.WriteString(helpStyle.Render("enter call • esc back"))

	case stateShowResult:
		if m.err != nil {
			b.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
		} else {
			b.WriteString(resultStyle.Render(m.result))
		}
		b.WriteString("\n\n")
		b.WriteString(helpStyle.Render("enter continue • q quit"))
	}

	return b.String()
}

func (m *browseModel) formatMember(name string) string {
	if m.node.HasClass(name) {
		return classStyle.Render(name)
	}
	if m.node.HasPackage(name) {
		return packageStyle.Render(name) + "/"
	}
	if m.node.IsRoot() {
		if _, ok := m.ctrl.Function(name); ok {
			return classStyle.Render(name + "()")
		}
	}
	return name
}

func runInteractive(startup options.Startup, prefixes []string) error {
	p := tea.NewProgram(newBrowseModel(startup, prefixes), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
