package model

import (
	"encoding/json"
	"testing"
	"time"
)

func TestValidateType(t *testing.T) {
	for _, v := range Types {
		if err := ValidateType(v); err != nil {
			t.Errorf("ValidateType(%q) unexpected error: %v", v, err)
		}
	}
	if err := ValidateType("FEATURE"); err == nil {
		t.Error("ValidateType('FEATURE') expected error, got nil")
	}
}

func TestValidateSeverity(t *testing.T) {
	for _, v := range Severities {
		if err := ValidateSeverity(v); err != nil {
			t.Errorf("ValidateSeverity(%q) unexpected error: %v", v, err)
		}
	}
	if err := ValidateSeverity("major"); err == nil {
		t.Error("ValidateSeverity('major') expected error, got nil")
	}
}

func TestValidateStatus(t *testing.T) {
	for _, v := range Statuses {
		if err := ValidateStatus(v); err != nil {
			t.Errorf("ValidateStatus(%q) unexpected error: %v", v, err)
		}
	}
	if err := ValidateStatus("invalid"); err == nil {
		t.Error("ValidateStatus('invalid') expected error, got nil")
	}
}

func TestValidateResolution(t *testing.T) {
	if err := ValidateResolution(ResolutionFalsePositive); err != nil {
		t.Errorf("ValidateResolution(FALSE-POSITIVE) unexpected error: %v", err)
	}
	if err := ValidateResolution("DONE"); err == nil {
		t.Error("ValidateResolution('DONE') expected error, got nil")
	}
	if got := ResolutionNone.Label(); got != "Unresolved" {
		t.Errorf("ResolutionNone.Label() = %q, want %q", got, "Unresolved")
	}
}

func TestColors(t *testing.T) {
	if c := SeverityBlocker.Color(); c != "red" {
		t.Errorf("SeverityBlocker.Color() = %q, want %q", c, "red")
	}
	if c := StatusResolved.Color(); c != "green" {
		t.Errorf("StatusResolved.Color() = %q, want %q", c, "green")
	}
	if c := IssueType("UNKNOWN").Color(); c != "white" {
		t.Errorf("unknown type Color() = %q, want %q", c, "white")
	}
}

func TestTransitionNeedsComment(t *testing.T) {
	tests := map[string]bool{
		TransitionFalsePositive: true,
		TransitionWontFix:       true,
		TransitionConfirm:       false,
		TransitionResolve:       false,
	}
	for tr, want := range tests {
		if got := TransitionNeedsComment(tr); got != want {
			t.Errorf("TransitionNeedsComment(%q) = %v, want %v", tr, got, want)
		}
	}
}

func TestIssueCan(t *testing.T) {
	issue := &Issue{Actions: []string{ActionSetSeverity, ActionComment}}
	if !issue.Can(ActionSetType) {
		t.Error("Can(set_type) = false, want true when set_severity is allowed")
	}
	if !issue.Can(ActionComment) {
		t.Error("Can(comment) = false, want true")
	}
	if issue.Can(ActionAssign) {
		t.Error("Can(assign) = true, want false")
	}
}

func TestIssueCloneIsDeep(t *testing.T) {
	orig := &Issue{Key: "AX1", Tags: []string{"cwe"}, Comments: []Comment{{Key: "c1"}}}
	c := orig.Clone()
	c.Tags[0] = "changed"
	c.Comments[0].Key = "changed"
	if orig.Tags[0] != "cwe" {
		t.Errorf("orig.Tags[0] = %q after clone edit, want %q", orig.Tags[0], "cwe")
	}
	if orig.Comments[0].Key != "c1" {
		t.Errorf("orig.Comments[0].Key = %q after clone edit, want %q", orig.Comments[0].Key, "c1")
	}
}

const issueWire = `{
	"key": "AVsg1",
	"rule": "squid:S1155",
	"severity": "MAJOR",
	"component": "proj:src/Main.java",
	"project": "proj",
	"line": 42,
	"message": "Use isEmpty() instead.",
	"status": "OPEN",
	"type": "CODE_SMELL",
	"assignee": "alice",
	"tags": ["clumsy"],
	"transitions": ["confirm", "resolve"],
	"actions": ["comment", "assign"],
	"comments": [{"key": "c1", "login": "bob", "markdown": "*why*", "updatable": true, "createdAt": "2017-03-02T09:00:00+0100"}],
	"creationDate": "2017-03-01T10:42:17+0100",
	"updateDate": "2017-03-02T11:00:00+0100"
}`

func TestIssueUnmarshalWire(t *testing.T) {
	var issue Issue
	if err := json.Unmarshal([]byte(issueWire), &issue); err != nil {
		t.Fatalf("Unmarshal error: %v", err)
	}
	if issue.Key != "AVsg1" {
		t.Errorf("Key = %q, want %q", issue.Key, "AVsg1")
	}
	if issue.Severity != SeverityMajor {
		t.Errorf("Severity = %q, want %q", issue.Severity, SeverityMajor)
	}
	if issue.Line != 42 {
		t.Errorf("Line = %d, want 42", issue.Line)
	}
	want := time.Date(2017, 3, 1, 9, 42, 17, 0, time.UTC)
	if !issue.CreatedAt.Equal(want) {
		t.Errorf("CreatedAt = %v, want %v", issue.CreatedAt, want)
	}
	if len(issue.Comments) != 1 || issue.Comments[0].Login != "bob" {
		t.Fatalf("Comments = %+v, want one comment by bob", issue.Comments)
	}
	if !issue.Comments[0].Updatable {
		t.Error("Comments[0].Updatable = false, want true")
	}
}

func TestIssueUnmarshalRejectsMissingKey(t *testing.T) {
	var issue Issue
	if err := json.Unmarshal([]byte(`{"rule":"x"}`), &issue); err == nil {
		t.Error("expected error for issue without key")
	}
}

func TestIssueJSONRoundTrip(t *testing.T) {
	var issue Issue
	if err := json.Unmarshal([]byte(issueWire), &issue); err != nil {
		t.Fatalf("Unmarshal error: %v", err)
	}
	data, err := json.Marshal(issue)
	if err != nil {
		t.Fatalf("Marshal error: %v", err)
	}

	var raw map[string]any
	json.Unmarshal(data, &raw)
	if raw["creationDate"] != "2017-03-01T10:42:17+0100" {
		t.Errorf("JSON creationDate = %v, want %q", raw["creationDate"], "2017-03-01T10:42:17+0100")
	}
	if _, exists := raw["resolution"]; exists {
		t.Error("JSON should omit resolution when unresolved")
	}

	var issue2 Issue
	if err := json.Unmarshal(data, &issue2); err != nil {
		t.Fatalf("Unmarshal error: %v", err)
	}
	if !issue2.CreatedAt.Equal(issue.CreatedAt) {
		t.Errorf("round-trip CreatedAt = %v, want %v", issue2.CreatedAt, issue.CreatedAt)
	}
	if issue2.Comments[0].Markdown != "*why*" {
		t.Errorf("round-trip comment markdown = %q, want %q", issue2.Comments[0].Markdown, "*why*")
	}
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		input   string
		wantErr bool
		zero    bool
	}{
		{"2017-03-01T10:42:17+0100", false, false},
		{"2017-03-01T10:42:17+01:00", false, false},
		{"2017-03-01", false, false},
		{"", false, true},
		{"yesterday", true, true},
	}
	for _, tt := range tests {
		got, err := ParseDate(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseDate(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			continue
		}
		if tt.zero != got.IsZero() {
			t.Errorf("ParseDate(%q).IsZero() = %v, want %v", tt.input, got.IsZero(), tt.zero)
		}
	}
}

func TestChangelogEntryUnmarshal(t *testing.T) {
	data := `{"creationDate":"2017-03-03T08:00:00+0000","user":"alice","userName":"Alice","diffs":[{"key":"severity","oldValue":"MAJOR","newValue":"BLOCKER"}]}`
	var e ChangelogEntry
	if err := json.Unmarshal([]byte(data), &e); err != nil {
		t.Fatalf("Unmarshal error: %v", err)
	}
	if e.Actor() != "Alice" {
		t.Errorf("Actor() = %q, want %q", e.Actor(), "Alice")
	}
	if len(e.Diffs) != 1 {
		t.Fatalf("len(Diffs) = %d, want 1", len(e.Diffs))
	}
	if got := e.Diffs[0].String(); got != "severity: MAJOR → BLOCKER" {
		t.Errorf("Diff.String() = %q", got)
	}
}

func TestDiffString(t *testing.T) {
	tests := []struct {
		d    Diff
		want string
	}{
		{Diff{Key: "file"}, "file"},
		{Diff{Key: "assignee", NewValue: "bob"}, "assignee: bob"},
		{Diff{Key: "tags", OldValue: "cwe"}, "tags: cwe (removed)"},
	}
	for _, tt := range tests {
		if got := tt.d.String(); got != tt.want {
			t.Errorf("%+v.String() = %q, want %q", tt.d, got, tt.want)
		}
	}
}

func TestDenormalize(t *testing.T) {
	issues := []*Issue{{
		Key:       "AX1",
		Component: "proj:src/a.go",
		Project:   "proj",
		Rule:      "go:S100",
		Assignee:  "alice",
		Comments:  []Comment{{Key: "c1", Login: "bob"}},
	}}
	components := []Component{
		{Key: "proj:src/a.go", LongName: "src/a.go", Path: "src/a.go", Qualifier: QualifierFile},
		{Key: "proj", Name: "Project", Qualifier: QualifierProject},
	}
	users := []User{{Login: "alice", Name: "Alice A"}, {Login: "bob", Name: "Bob B"}}
	rules := []Rule{{Key: "go:S100", Name: "Function names"}}

	Denormalize(issues, components, users, rules)

	got := issues[0]
	if got.ComponentLongName != "src/a.go" {
		t.Errorf("ComponentLongName = %q", got.ComponentLongName)
	}
	if got.ProjectName != "Project" {
		t.Errorf("ProjectName = %q, want %q", got.ProjectName, "Project")
	}
	if got.RuleName != "Function names" {
		t.Errorf("RuleName = %q", got.RuleName)
	}
	if got.AssigneeDisplay() != "Alice A" {
		t.Errorf("AssigneeDisplay() = %q, want %q", got.AssigneeDisplay(), "Alice A")
	}
	if got.Comments[0].AuthorOrAnonymous() != "Bob B" {
		t.Errorf("comment author = %q, want %q", got.Comments[0].AuthorOrAnonymous(), "Bob B")
	}
}

func TestComponentDisplayName(t *testing.T) {
	file := Component{Key: "p:a/b.go", Name: "b.go", LongName: "a/b.go", Path: "a/b.go", Qualifier: QualifierFile}
	if got := file.DisplayName(); got != "a/b.go" {
		t.Errorf("file DisplayName() = %q, want %q", got, "a/b.go")
	}
	project := Component{Key: "p", Name: "Proj"}
	if got := project.DisplayName(); got != "Proj" {
		t.Errorf("project DisplayName() = %q, want %q", got, "Proj")
	}
}
