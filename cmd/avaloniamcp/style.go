package main

import (
	"io"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

const (
	defaultWrapWidth  = 80
	styleProbeTimeout = 200 * time.Millisecond
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	okStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	failStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	uriStyle   = lipgloss.NewStyle().Bold(true)
)

// glamourStyle picks a glamour standard style for w. An explicit style
// other than "auto" wins. Output that is not a terminal gets "notty".
func glamourStyle(w io.Writer, style string) string {
	if style != "" && style != "auto" {
		return style
	}

	out := termenv.NewOutput(w)
	if out.Profile == termenv.Ascii {
		return "notty"
	}

	// querying the background can block on terminals that never answer
	ch := make(chan string, 1)
	go func() {
		if out.HasDarkBackground() {
			ch <- "dark"
			return
		}
		ch <- "light"
	}()

	select {
	case s := <-ch:
		return s
	case <-time.After(styleProbeTimeout):
		return "dark"
	}
}
