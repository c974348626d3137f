package output

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
)

// Writer renders what a command produces. Results go to Stdout, either as a
// JSON envelope (--json) or as text. Notes, warnings and errors in human
// mode go to Stderr so a piped result stays clean.
type Writer struct {
	JSONMode  bool
	QuietMode bool
	Stdout    io.Writer
	Stderr    io.Writer
}

// New returns a Writer on the process's standard streams.
func New(jsonMode, quietMode bool) *Writer {
	return &Writer{
		JSONMode:  jsonMode,
		QuietMode: quietMode,
		Stdout:    os.Stdout,
		Stderr:    os.Stderr,
	}
}

// Success renders a result: data in JSON mode, message otherwise.
func (w *Writer) Success(data any, message string) {
	if w.JSONMode {
		writeJSONSuccess(w.Stdout, data, message)
		return
	}
	writeHumanSuccess(w.Stdout, message)
}

// Sections renders a result shown as several blocks, e.g. the facet board
// above the issue table. Empty blocks are dropped; the rest are separated
// by a blank line.
func (w *Writer) Sections(data any, sections ...string) {
	if w.JSONMode {
		writeJSONSuccess(w.Stdout, data, "")
		return
	}
	kept := make([]string, 0, len(sections))
	for _, s := range sections {
		if strings.TrimSpace(s) != "" {
			kept = append(kept, s)
		}
	}
	writeHumanSuccess(w.Stdout, strings.Join(kept, "\n\n"))
}

// Error renders err and returns the exit code for code. Human mode follows
// the error with a hint when the code has one, unless quiet.
func (w *Writer) Error(err error, code ErrorCode) int {
	if w.JSONMode {
		writeJSONError(w.Stdout, err, code)
		return ExitCodeForError(code)
	}
	writeNote(w.Stderr, errorTone, err.Error())
	if hint := hintFor(code); hint != "" && !w.QuietMode {
		w.Info("%s", hint)
	}
	return ExitCodeForError(code)
}

// Info writes a note. Quiet and JSON modes drop it.
func (w *Writer) Info(format string, args ...any) {
	if w.QuietMode || w.JSONMode {
		return
	}
	writeNote(w.Stderr, infoTone, fmt.Sprintf(format, args...))
}

// Partial notes that a listing shows only part of a result.
func (w *Writer) Partial(shown, total int, noun, hint string) {
	msg := fmt.Sprintf("Showing %s of %s %s.", humanize.Comma(int64(shown)), humanize.Comma(int64(total)), noun)
	if hint != "" {
		msg += " " + hint
	}
	w.Info("%s", msg)
}

// Warn writes a warning. Quiet mode keeps it; JSON mode drops it.
func (w *Writer) Warn(format string, args ...any) {
	if w.JSONMode {
		return
	}
	writeNote(w.Stderr, warnTone, fmt.Sprintf(format, args...))
}
