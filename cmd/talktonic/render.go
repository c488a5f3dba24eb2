package main

import (
	"strings"

	"github.com/charmbracelet/glamour"
)

// renderMarkdown pretty-prints a reply for the terminal, falling back to the
// plain text if the renderer fails.
func renderMarkdown(text string) string {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
		glamour.WithPreservedNewLines(),
	)
	if err != nil {
		return text
	}
	out, err := r.Render(text)
	if err != nil {
		return text
	}
	return strings.TrimRight(out, "\n")
}
