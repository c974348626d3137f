package render

import (
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
)

// ColorsEnabled returns whether terminal colors should be used.
// It returns false if the NO_COLOR environment variable is set (any value)
// or if TERM is set to "dumb".
func ColorsEnabled() bool {
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	if os.Getenv("TERM") == "dumb" {
		return false
	}
	return true
}

// RenderMarkdown renders comment markdown for terminal display.
// When colors are disabled, it returns the content unmodified.
func RenderMarkdown(content string) (string, error) {
	return RenderMarkdownWidth(content, 0)
}

// RenderMarkdownWidth renders markdown wrapped at width columns. A width of
// zero keeps glamour's default wrapping.
func RenderMarkdownWidth(content string, width int) (string, error) {
	if content == "" {
		return "", nil
	}

	if !ColorsEnabled() {
		return content, nil
	}

	var (
		rendered string
		err      error
	)
	if width <= 0 {
		rendered, err = glamour.RenderWithEnvironmentConfig(content)
	} else {
		var r *glamour.TermRenderer
		r, err = glamour.NewTermRenderer(
			glamour.WithEnvironmentConfig(),
			glamour.WithWordWrap(width),
		)
		if err == nil {
			rendered, err = r.Render(content)
		}
	}
	if err != nil {
		return content, err
	}

	return strings.TrimSpace(rendered), nil
}
