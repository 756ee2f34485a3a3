package main

import (
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

type styleSet struct {
	current lipgloss.Style
	remote  lipgloss.Style
	hash    lipgloss.Style
}

func outputStyles(isTTY bool) styleSet {
	if !isTTY {
		return styleSet{
			current: lipgloss.NewStyle(),
			remote:  lipgloss.NewStyle(),
			hash:    lipgloss.NewStyle(),
		}
	}
	return styleSet{
		current: lipgloss.NewStyle().Foreground(lipgloss.Color("10")), // Green
		remote:  lipgloss.NewStyle().Foreground(lipgloss.Color("9")),  // Red
		hash:    lipgloss.NewStyle().Foreground(lipgloss.Color("11")), // Yellow
	}
}

// isTTY reports whether w is a character device, i.e. an interactive
// terminal.
func isTTY(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}

// withTrailingNewline makes a -m message end in exactly the newline a
// shell argument never carries.
func withTrailingNewline(msg string) string {
	if strings.HasSuffix(msg, "\n") {
		return msg
	}
	return msg + "\n"
}

// firstLine returns the subject line of a commit message.
func firstLine(msg string) string {
	line, _, _ := strings.Cut(msg, "\n")
	return line
}
