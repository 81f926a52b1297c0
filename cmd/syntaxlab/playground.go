package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
	"golang.org/x/term"

	"syntaxlab/labs-go/pkg/format"
)

// maxHistory bounds the entries shown above the prompt.
const maxHistory = 12

type playgroundModel struct {
	input    textinput.Model
	styles   palette
	log      *zap.Logger
	history  []playgroundEntry
	recall   int
	quitting bool
}

type playgroundEntry struct {
	line   string
	result string
	err    error
}

type renderedMsg struct {
	entry playgroundEntry
}

func newPlaygroundModel(styles palette, log *zap.Logger) *playgroundModel {
	input := textinput.New()
	input.Placeholder = `"{:>8.2}|", 3.14159`
	input.Prompt = "fmt> "
	input.Width = 60
	input.Focus()
	return &playgroundModel{input: input, styles: styles, log: log}
}

func (m *playgroundModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m *playgroundModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			m.quitting = true
			return m, tea.Quit

		case "enter":
			line := strings.TrimSpace(m.input.Value())
			if line == "" {
				return m, nil
			}
			m.input.SetValue("")
			m.recall = 0
			return m, renderCmd(line)

		case "up":
			if m.recall < len(m.history) {
				m.recall++
				m.input.SetValue(m.history[len(m.history)-m.recall].line)
				m.input.CursorEnd()
			}
			return m, nil

		case "down":
			if m.recall > 0 {
				m.recall--
				value := ""
				if m.recall > 0 {
					value = m.history[len(m.history)-m.recall].line
				}
				m.input.SetValue(value)
				m.input.CursorEnd()
			}
			return m, nil
		}

	case renderedMsg:
		if msg.entry.err != nil {
			m.log.Debug("playground render failed", zap.String("line", msg.entry.line), zap.Error(msg.entry.err))
		}
		m.history = append(m.history, msg.entry)
		if len(m.history) > maxHistory {
			m.history = m.history[len(m.history)-maxHistory:]
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func renderCmd(line string) tea.Cmd {
	return func() tea.Msg {
		result, err := renderLine(line)
		return renderedMsg{entry: playgroundEntry{line: line, result: result, err: err}}
	}
}

func (m *playgroundModel) View() string {
	if m.quitting {
		return ""
	}
	var b strings.Builder
	b.WriteString(m.styles.title.Render("syntaxlab playground"))
	b.WriteString("\n\n")
	for _, entry := range m.history {
		b.WriteString(m.styles.muted.Render("> " + entry.line))
		b.WriteString("\n")
		if entry.err != nil {
			b.WriteString(m.styles.err.Render("error: " + entry.err.Error()))
		} else {
			b.WriteString(m.styles.result.Render(entry.result))
		}
		b.WriteString("\n")
	}
	if len(m.history) > 0 {
		b.WriteString("\n")
	}
	b.WriteString(m.input.View())
	b.WriteString("\n\n")
	b.WriteString(m.styles.muted.Render("template, args... • name=value for named args • ↑/↓ history • esc quit"))
	b.WriteString("\n")
	return b.String()
}

// renderLine renders a playground line: a template followed by
// comma-separated literal arguments. The template may be quoted.
func renderLine(line string) (string, error) {
	fields, err := format.SplitArguments(line)
	if err != nil {
		return "", err
	}
	if len(fields) == 0 {
		return "", fmt.Errorf("missing template")
	}
	template := fields[0]
	if strings.HasPrefix(template, `"`) {
		unquoted, err := strconv.Unquote(template)
		if err != nil {
			return "", fmt.Errorf("template: %w", err)
		}
		template = unquoted
	}
	return renderTemplate(template, fields[1:])
}

// renderTemplate renders template with arguments written as literals.
func renderTemplate(template string, items []string) (string, error) {
	tpl, err := format.Parse(template)
	if err != nil {
		return "", err
	}
	args, err := format.ParseArgs(items)
	if err != nil {
		return "", err
	}
	return tpl.Render(args)
}

func runRender(sess *session, args []string) int {
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "render expects a template")
		return 1
	}
	out, err := renderTemplate(args[0], args[1:])
	if err != nil {
		sess.log.Debug("render failed", zap.String("template", args[0]), zap.Error(err))
		fmt.Fprintln(os.Stderr, sess.palette.err.Render("error: "+err.Error()))
		return 1
	}
	fmt.Fprintln(os.Stdout, out)
	return 0
}

func runPlayground(sess *session, args []string) int {
	if len(args) > 0 {
		fmt.Fprintln(os.Stderr, "playground takes no arguments")
		return 1
	}
	if !term.IsTerminal(int(os.Stdin.Fd())) || !isTerminal(os.Stdout) {
		fmt.Fprintln(os.Stderr, "playground needs an interactive terminal; use `syntaxlab render` instead")
		return 1
	}
	model := newPlaygroundModel(sess.palette, sess.log)
	if _, err := tea.NewProgram(model).Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}
