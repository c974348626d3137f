package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/ALT-F4-LLC/lintdeck/internal/render"
)

// tone is how a diagnostic line is marked: an icon and optional label when
// colors are on, the bare label otherwise.
type tone struct {
	icon  string
	label string
	color lipgloss.Color
	bold  bool
}

var (
	infoTone  = tone{icon: "ℹ", color: lipgloss.Color("8")}
	warnTone  = tone{icon: "⚠", label: "Warning:", color: lipgloss.Color("3"), bold: true}
	errorTone = tone{icon: "✘", label: "Error:", color: lipgloss.Color("1"), bold: true}
)

func writeNote(w io.Writer, t tone, msg string) {
	if !render.ColorsEnabled() {
		if t.label != "" {
			msg = t.label + " " + msg
		}
		fmt.Fprintln(w, msg)
		return
	}
	style := lipgloss.NewStyle().Foreground(t.color).Bold(t.bold)
	parts := []string{style.Render(t.icon)}
	if t.label != "" {
		parts = append(parts, style.Render(t.label))
	} else {
		// Unlabelled notes are dimmed whole.
		msg = style.Render(msg)
	}
	fmt.Fprintln(w, strings.Join(append(parts, msg), " "))
}

// writeHumanSuccess writes a result message. A single line gets a
// checkmark; multi-line content (tables, boards, detail views) is printed
// as-is.
func writeHumanSuccess(w io.Writer, message string) {
	if message == "" {
		return
	}
	if strings.Contains(message, "\n") || !render.ColorsEnabled() {
		fmt.Fprintln(w, message)
		return
	}
	icon := lipgloss.NewStyle().Foreground(lipgloss.Color("2")).Render("✔")
	fmt.Fprintf(w, "%s %s\n", icon, message)
}

// hintFor returns a follow-up suggestion for error codes the user can
// usually fix from the command line.
func hintFor(code ErrorCode) string {
	switch code {
	case ErrAuth:
		return "Check the token with: lintdeck config (or set LINTDECK_TOKEN)"
	case ErrUnavailable:
		return "Check the server URL with: lintdeck config (or set LINTDECK_URL)"
	default:
		return ""
	}
}
