package render

import (
	"strings"
	"testing"
	"time"

	"github.com/ALT-F4-LLC/lintdeck/internal/model"
)

func makeTestIssue(key, component, message string) *model.Issue {
	now := time.Now().Add(-2 * time.Hour)
	return &model.Issue{
		Key:               key,
		Component:         component,
		ComponentLongName: component,
		Message:           message,
		Rule:              "java:S2259",
		Type:              model.TypeBug,
		Severity:          model.SeverityMajor,
		Status:            model.StatusOpen,
		Line:              42,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
}

func TestNeedsComponentHeader(t *testing.T) {
	issues := []*model.Issue{
		makeTestIssue("A", "src/A.java", "a"),
		makeTestIssue("B", "src/A.java", "b"),
		makeTestIssue("C", "src/B.java", "c"),
		makeTestIssue("D", "src/A.java", "d"),
	}
	want := []bool{true, false, true, true}
	for i, w := range want {
		if got := NeedsComponentHeader(issues, i); got != w {
			t.Errorf("NeedsComponentHeader(%d) = %v, want %v", i, got, w)
		}
	}
	if NeedsComponentHeader(nil, 0) {
		t.Error("NeedsComponentHeader on empty list = true")
	}
}

func TestRenderTableEmpty(t *testing.T) {
	t.Setenv("NO_COLOR", "1")

	got := RenderTable(nil)
	if !strings.Contains(got, "No issues found.") {
		t.Errorf("expected empty-state message, got:\n%s", got)
	}
}

func TestRenderPlainTableGroupsWithoutSorting(t *testing.T) {
	t.Setenv("NO_COLOR", "1")

	issues := []*model.Issue{
		makeTestIssue("AX1", "src/A.java", "first"),
		makeTestIssue("AX2", "src/A.java", "second"),
		makeTestIssue("BX1", "src/B.java", "third"),
		makeTestIssue("AX3", "src/A.java", "fourth"),
	}

	got := RenderTable(issues)

	if n := strings.Count(got, "\nsrc/A.java\n"); n != 2 {
		t.Errorf("expected 2 headers for src/A.java, got %d:\n%s", n, got)
	}
	if n := strings.Count(got, "\nsrc/B.java\n"); n != 1 {
		t.Errorf("expected 1 header for src/B.java, got %d:\n%s", n, got)
	}

	order := []string{"first", "second", "third", "fourth"}
	last := -1
	for _, msg := range order {
		idx := strings.Index(got, msg)
		if idx < last {
			t.Errorf("%q rendered out of order:\n%s", msg, got)
		}
		last = idx
	}
}

func TestRenderPlainTableRowFields(t *testing.T) {
	t.Setenv("NO_COLOR", "1")

	issue := makeTestIssue("AX1", "src/A.java", "Null pointer dereference")
	issue.Status = model.StatusResolved
	issue.Resolution = model.ResolutionFixed
	issue.AssigneeName = "Ada Lovelace"
	issue.Effort = "5min"

	got := RenderTable([]*model.Issue{issue})

	for _, want := range []string{"AX1", "L42", "Null pointer dereference", "Bug", "MAJOR", "RESOLVED (FIXED)", "Ada Lovelace", "5min", "2 hours ago"} {
		if !strings.Contains(got, want) {
			t.Errorf("expected %q in output, got:\n%s", want, got)
		}
	}
}

func TestRenderTableColorPathExecutes(t *testing.T) {
	issues := []*model.Issue{
		makeTestIssue("AX1", "src/A.java", "first"),
		makeTestIssue("BX1", "src/B.java", "second"),
	}

	got := RenderTable(issues)

	for _, want := range []string{"AX1", "BX1", "src/A.java", "src/B.java"} {
		if !strings.Contains(got, want) {
			t.Errorf("expected %q in colored output", want)
		}
	}
}

func TestRenderIssueItem(t *testing.T) {
	t.Setenv("NO_COLOR", "1")

	issue := makeTestIssue("AX1", "src/A.java", "Remove this unused import")
	issue.Tags = []string{"cwe", "security"}
	issue.Comments = []model.Comment{{Key: "c1"}, {Key: "c2"}}
	issue.Effort = "2min"

	got := RenderIssueItem(issue, 120, true)

	if !strings.HasPrefix(got, "▸ Remove this unused import") {
		t.Errorf("selected item does not start with the cursor and message:\n%s", got)
	}
	for _, want := range []string{"Bug", "MAJOR", "OPEN", "unassigned", "2min effort", "2 comments", "L42", "java:S2259", "#cwe #security"} {
		if !strings.Contains(got, want) {
			t.Errorf("expected %q in item, got:\n%s", want, got)
		}
	}

	unselected := RenderIssueItem(issue, 120, false)
	if strings.Contains(unselected, "▸") {
		t.Errorf("unselected item has a cursor:\n%s", unselected)
	}
}

func TestRenderIssueItemTruncatesMessage(t *testing.T) {
	t.Setenv("NO_COLOR", "1")

	issue := makeTestIssue("AX1", "src/A.java", strings.Repeat("x", 200))
	got := RenderIssueItem(issue, 40, false)
	first := strings.SplitN(got, "\n", 2)[0]
	if !strings.Contains(first, "...") {
		t.Errorf("long message not truncated: %q", first)
	}
}

func TestStatusLabel(t *testing.T) {
	issue := &model.Issue{Status: model.StatusOpen}
	if got := StatusLabel(issue); got != "○ OPEN" {
		t.Errorf("StatusLabel(open) = %q", got)
	}
	issue.Status = model.StatusClosed
	issue.Resolution = model.ResolutionRemoved
	if got := StatusLabel(issue); got != "● CLOSED (REMOVED)" {
		t.Errorf("StatusLabel(closed) = %q", got)
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in   string
		max  int
		want string
	}{
		{"short", 10, "short"},
		{"exactly10!", 10, "exactly10!"},
		{"this is too long", 10, "this is..."},
		{"abc", 2, "ab"},
	}
	for _, tt := range tests {
		if got := truncate(tt.in, tt.max); got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.in, tt.max, got, tt.want)
		}
	}
}
