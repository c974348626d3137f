package api

import (
	"context"
	"net/http"
	"net/url"
	"strings"
)

// SourceLine is one line of a source file, numbered from 1.
type SourceLine struct {
	Line int
	Code string
}

// SourceLines returns lines from through to (inclusive) of a file component.
// The window is clamped to the file; a window entirely past the end yields
// no lines.
func (c *Client) SourceLines(ctx context.Context, componentKey string, from, to int) ([]SourceLine, error) {
	body, _, err := c.doRequest(ctx, http.MethodGet, "api/sources/raw?"+url.Values{"key": {componentKey}}.Encode(), nil)
	if err != nil {
		return nil, err
	}
	return sliceLines(string(body), from, to), nil
}

func sliceLines(content string, from, to int) []SourceLine {
	content = strings.TrimSuffix(strings.ReplaceAll(content, "\r\n", "\n"), "\n")
	if content == "" {
		return nil
	}
	all := strings.Split(content, "\n")
	if from < 1 {
		from = 1
	}
	if to > len(all) {
		to = len(all)
	}
	var lines []SourceLine
	for n := from; n <= to; n++ {
		lines = append(lines, SourceLine{Line: n, Code: all[n-1]})
	}
	return lines
}
