package main

import (
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"golang.org/x/term"

	"syntaxlab/labs-go/pkg/driver"
)

// palette holds the styles used for command output. With colour disabled
// every style renders its text unchanged.
type palette struct {
	title  lipgloss.Style
	pass   lipgloss.Style
	fail   lipgloss.Style
	err    lipgloss.Style
	result lipgloss.Style
	muted  lipgloss.Style
}

func newPalette(w io.Writer, mode driver.ColorMode) palette {
	r := lipgloss.NewRenderer(w)
	switch mode {
	case driver.ColorNever:
		r.SetColorProfile(termenv.Ascii)
	case driver.ColorAlways:
		r.SetColorProfile(termenv.ANSI256)
	default:
		if !isTerminal(w) {
			r.SetColorProfile(termenv.Ascii)
		}
	}
	return palette{
		title:  r.NewStyle().Bold(true).Foreground(lipgloss.Color("#7D56F4")),
		pass:   r.NewStyle().Bold(true).Foreground(lipgloss.Color("#04B575")),
		fail:   r.NewStyle().Bold(true).Foreground(lipgloss.Color("#FF5555")),
		err:    r.NewStyle().Foreground(lipgloss.Color("#FF5555")),
		result: r.NewStyle().Foreground(lipgloss.Color("#04B575")),
		muted:  r.NewStyle().Foreground(lipgloss.Color("#626262")),
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}
