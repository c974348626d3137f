package tui

import (
	"testing"

	"github.com/charmbracelet/x/ansi"

	"github.com/ALT-F4-LLC/lintdeck/internal/model"
)

func TestNewDropdownStartsOnCurrent(t *testing.T) {
	d := NewDropdown(SeverityOptions(), string(model.SeverityMajor))
	got, ok := d.Selected()
	if !ok || got.Value != string(model.SeverityMajor) {
		t.Errorf("Selected() = %+v, want MAJOR", got)
	}

	d = NewDropdown(TypeOptions(), "UNKNOWN")
	if d.Cursor != 0 {
		t.Errorf("Cursor = %d for an unknown value, want 0", d.Cursor)
	}
}

func TestDropdownWraps(t *testing.T) {
	d := NewDropdown(TypeOptions(), "")
	d.MoveUp()
	if got, _ := d.Selected(); got.Value != string(model.TypeCodeSmell) {
		t.Errorf("after MoveUp from the top: %q, want CODE_SMELL", got.Value)
	}
	d.MoveDown()
	if got, _ := d.Selected(); got.Value != string(model.TypeBug) {
		t.Errorf("after MoveDown from the bottom: %q, want BUG", got.Value)
	}

	var empty Dropdown
	empty.MoveUp()
	empty.MoveDown()
	if _, ok := empty.Selected(); ok {
		t.Error("empty dropdown reported a selection")
	}
}

func TestDropdownRenderEqualWidths(t *testing.T) {
	d := NewDropdown(TransitionOptions(&model.Issue{
		Transitions: []string{model.TransitionConfirm, model.TransitionWontFix},
	}), "")
	lines := d.Render(10)
	if len(lines) != 2 {
		t.Fatalf("rendered %d lines, want 2", len(lines))
	}
	if ansi.StringWidth(lines[0]) != ansi.StringWidth(lines[1]) {
		t.Errorf("widths differ: %d and %d", ansi.StringWidth(lines[0]), ansi.StringWidth(lines[1]))
	}
}

func TestSpliceOverlay(t *testing.T) {
	view := "hello world\nsecond line"

	got := spliceOverlay(view, []string{"XX"}, 2, 0)
	if want := "heXXo world\nsecond line"; ansi.Strip(got) != want {
		t.Errorf("spliceOverlay = %q, want %q", ansi.Strip(got), want)
	}

	got = spliceOverlay("ab", []string{"XY"}, 4, 0)
	if want := "ab  XY"; ansi.Strip(got) != want {
		t.Errorf("past the end = %q, want %q", ansi.Strip(got), want)
	}

	got = spliceOverlay(view, []string{"a", "b", "c"}, 0, 1)
	if want := "hello world\naecond line"; ansi.Strip(got) != want {
		t.Errorf("clipped rows = %q, want %q", ansi.Strip(got), want)
	}
}
