package model

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"time"
)

// DateLayout is the timestamp format used on the wire by the issue server,
// e.g. "2017-03-01T10:42:17+0100".
const DateLayout = "2006-01-02T15:04:05-0700"

// DayLayout is the date-only form typed into the creation date pickers.
const DayLayout = "2006-01-02"

// IssueType represents the category of an issue.
type IssueType string

const (
	TypeBug           IssueType = "BUG"
	TypeVulnerability IssueType = "VULNERABILITY"
	TypeCodeSmell     IssueType = "CODE_SMELL"
)

// Types lists issue types in display order.
var Types = []IssueType{
	TypeBug,
	TypeVulnerability,
	TypeCodeSmell,
}

// ValidateType returns an error if t is not a recognized issue type.
func ValidateType(t IssueType) error {
	if slices.Contains(Types, t) {
		return nil
	}
	return fmt.Errorf("invalid type %q: must be one of %v", t, Types)
}

// Color returns a color name string suitable for terminal rendering.
func (t IssueType) Color() string {
	switch t {
	case TypeBug:
		return "red"
	case TypeVulnerability:
		return "magenta"
	case TypeCodeSmell:
		return "yellow"
	default:
		return "white"
	}
}

// Icon returns a single-glyph marker for the type.
func (t IssueType) Icon() string {
	switch t {
	case TypeBug:
		return "\u2716" // ✖
	case TypeVulnerability:
		return "\u26a0" // ⚠
	case TypeCodeSmell:
		return "\u2622" // ☢
	default:
		return "?"
	}
}

// Label returns the human-readable name of the type.
func (t IssueType) Label() string {
	switch t {
	case TypeBug:
		return "Bug"
	case TypeVulnerability:
		return "Vulnerability"
	case TypeCodeSmell:
		return "Code Smell"
	default:
		return string(t)
	}
}

// Severity represents how bad an issue is.
type Severity string

const (
	SeverityBlocker  Severity = "BLOCKER"
	SeverityCritical Severity = "CRITICAL"
	SeverityMajor    Severity = "MAJOR"
	SeverityMinor    Severity = "MINOR"
	SeverityInfo     Severity = "INFO"
)

// Severities lists severities from most to least severe.
var Severities = []Severity{
	SeverityBlocker,
	SeverityCritical,
	SeverityMajor,
	SeverityMinor,
	SeverityInfo,
}

// ValidateSeverity returns an error if s is not a recognized severity.
func ValidateSeverity(s Severity) error {
	if slices.Contains(Severities, s) {
		return nil
	}
	return fmt.Errorf("invalid severity %q: must be one of %v", s, Severities)
}

// Color returns a color name string suitable for terminal rendering.
func (s Severity) Color() string {
	switch s {
	case SeverityBlocker, SeverityCritical:
		return "red"
	case SeverityMajor:
		return "yellow"
	case SeverityMinor:
		return "green"
	case SeverityInfo:
		return "blue"
	default:
		return "white"
	}
}

// Icon returns an arrow marker for the severity level.
func (s Severity) Icon() string {
	switch s {
	case SeverityBlocker:
		return "\u2b06\u2b06" // ⬆⬆
	case SeverityCritical:
		return "\u2b06" // ⬆
	case SeverityMajor:
		return "\u2191" // ↑
	case SeverityMinor:
		return "\u2193" // ↓
	case SeverityInfo:
		return "\u2139" // ℹ
	default:
		return " "
	}
}

// Status represents the workflow state of an issue.
type Status string

const (
	StatusOpen      Status = "OPEN"
	StatusConfirmed Status = "CONFIRMED"
	StatusReopened  Status = "REOPENED"
	StatusResolved  Status = "RESOLVED"
	StatusClosed    Status = "CLOSED"
)

// Statuses lists statuses in display order.
var Statuses = []Status{
	StatusOpen,
	StatusConfirmed,
	StatusReopened,
	StatusResolved,
	StatusClosed,
}

// ValidateStatus returns an error if s is not a recognized status.
func ValidateStatus(s Status) error {
	if slices.Contains(Statuses, s) {
		return nil
	}
	return fmt.Errorf("invalid status %q: must be one of %v", s, Statuses)
}

// Color returns a color name string suitable for terminal rendering.
func (s Status) Color() string {
	switch s {
	case StatusOpen:
		return "blue"
	case StatusConfirmed:
		return "magenta"
	case StatusReopened:
		return "yellow"
	case StatusResolved:
		return "green"
	case StatusClosed:
		return "gray"
	default:
		return "white"
	}
}

// Icon returns a unicode status indicator.
func (s Status) Icon() string {
	switch s {
	case StatusOpen:
		return "\u25cb" // ○
	case StatusConfirmed:
		return "\u25c9" // ◉
	case StatusReopened:
		return "\u21ba" // ↺
	case StatusResolved:
		return "\u2714" // ✔
	case StatusClosed:
		return "\u25cf" // ●
	default:
		return "?"
	}
}

// Resolution records why an issue was resolved. The empty resolution means
// the issue is unresolved.
type Resolution string

const (
	ResolutionNone          Resolution = ""
	ResolutionFixed         Resolution = "FIXED"
	ResolutionFalsePositive Resolution = "FALSE-POSITIVE"
	ResolutionWontFix       Resolution = "WONTFIX"
	ResolutionRemoved       Resolution = "REMOVED"
)

// Resolutions lists resolutions in display order, unresolved first.
var Resolutions = []Resolution{
	ResolutionNone,
	ResolutionFixed,
	ResolutionFalsePositive,
	ResolutionWontFix,
	ResolutionRemoved,
}

// ValidateResolution returns an error if r is not a recognized resolution.
func ValidateResolution(r Resolution) error {
	if slices.Contains(Resolutions, r) {
		return nil
	}
	return fmt.Errorf("invalid resolution %q: must be one of %v", r, Resolutions[1:])
}

// Label returns the display name, "Unresolved" for the empty resolution.
func (r Resolution) Label() string {
	if r == ResolutionNone {
		return "Unresolved"
	}
	return string(r)
}

// Transition names accepted by the do_transition endpoint.
const (
	TransitionConfirm       = "confirm"
	TransitionUnconfirm     = "unconfirm"
	TransitionReopen        = "reopen"
	TransitionResolve       = "resolve"
	TransitionFalsePositive = "falsepositive"
	TransitionWontFix       = "wontfix"
	TransitionClose         = "close"
)

// TransitionNeedsComment reports whether applying the transition should be
// followed by a justification comment.
func TransitionNeedsComment(transition string) bool {
	return transition == TransitionFalsePositive || transition == TransitionWontFix
}

// Action names listed in Issue.Actions.
const (
	ActionSetType     = "set_type"
	ActionSetSeverity = "set_severity"
	ActionAssign      = "assign"
	ActionAssignToMe  = "assign_to_me"
	ActionSetTags     = "set_tags"
	ActionComment     = "comment"
)

// Issue is a single finding as returned by the issue search endpoint,
// including the display fields resolved from the referenced entities.
type Issue struct {
	Key          string
	Rule         string
	Severity     Severity
	Component    string
	Project      string
	SubProject   string
	Line         int
	Message      string
	Status       Status
	Resolution   Resolution
	Type         IssueType
	Assignee     string
	Author       string
	Effort       string
	Organization string
	Tags         []string
	Transitions  []string
	Actions      []string
	Comments     []Comment
	CreatedAt    time.Time
	UpdatedAt    time.Time

	// Resolved through the referenced components, users and rules.
	ComponentLongName string
	ComponentPath     string
	ProjectName       string
	SubProjectName    string
	RuleName          string
	AssigneeName      string
	AssigneeAvatar    string
}

// Can reports whether action is permitted on the issue.
func (i *Issue) Can(action string) bool {
	if action == ActionSetType {
		// Older servers only advertise set_severity for both.
		return slices.Contains(i.Actions, ActionSetType) || slices.Contains(i.Actions, ActionSetSeverity)
	}
	return slices.Contains(i.Actions, action)
}

// Clone returns a deep copy so snapshots are not affected by later edits.
func (i *Issue) Clone() *Issue {
	c := *i
	c.Tags = slices.Clone(i.Tags)
	c.Transitions = slices.Clone(i.Transitions)
	c.Actions = slices.Clone(i.Actions)
	c.Comments = slices.Clone(i.Comments)
	return &c
}

// AssigneeDisplay returns the assignee's name, login, or "unassigned".
func (i *Issue) AssigneeDisplay() string {
	switch {
	case i.AssigneeName != "":
		return i.AssigneeName
	case i.Assignee != "":
		return i.Assignee
	default:
		return "unassigned"
	}
}

// ComponentDisplay returns the best available component name for headers.
func (i *Issue) ComponentDisplay() string {
	if i.ComponentLongName != "" {
		return i.ComponentLongName
	}
	return i.Component
}

// issueJSON is the wire format for Issue.
type issueJSON struct {
	Key          string        `json:"key"`
	Rule         string        `json:"rule"`
	Severity     string        `json:"severity"`
	Component    string        `json:"component"`
	Project      string        `json:"project"`
	SubProject   string        `json:"subProject,omitempty"`
	Line         int           `json:"line,omitempty"`
	Message      string        `json:"message"`
	Status       string        `json:"status"`
	Resolution   string        `json:"resolution,omitempty"`
	Type         string        `json:"type"`
	Assignee     string        `json:"assignee,omitempty"`
	Author       string        `json:"author,omitempty"`
	Effort       string        `json:"effort,omitempty"`
	Organization string        `json:"organization,omitempty"`
	Tags         []string      `json:"tags"`
	Transitions  []string      `json:"transitions,omitempty"`
	Actions      []string      `json:"actions,omitempty"`
	Comments     []commentJSON `json:"comments,omitempty"`
	CreationDate string        `json:"creationDate"`
	UpdateDate   string        `json:"updateDate,omitempty"`

	ComponentLongName string `json:"componentLongName,omitempty"`
	ProjectName       string `json:"projectName,omitempty"`
	SubProjectName    string `json:"subProjectName,omitempty"`
	RuleName          string `json:"ruleName,omitempty"`
	AssigneeName      string `json:"assigneeName,omitempty"`
}

// MarshalJSON implements custom JSON serialization for Issue.
func (i Issue) MarshalJSON() ([]byte, error) {
	j := issueJSON{
		Key:               i.Key,
		Rule:              i.Rule,
		Severity:          string(i.Severity),
		Component:         i.Component,
		Project:           i.Project,
		SubProject:        i.SubProject,
		Line:              i.Line,
		Message:           i.Message,
		Status:            string(i.Status),
		Resolution:        string(i.Resolution),
		Type:              string(i.Type),
		Assignee:          i.Assignee,
		Author:            i.Author,
		Effort:            i.Effort,
		Organization:      i.Organization,
		Tags:              i.Tags,
		Transitions:       i.Transitions,
		Actions:           i.Actions,
		CreationDate:      FormatDate(i.CreatedAt),
		UpdateDate:        FormatDate(i.UpdatedAt),
		ComponentLongName: i.ComponentLongName,
		ProjectName:       i.ProjectName,
		SubProjectName:    i.SubProjectName,
		RuleName:          i.RuleName,
		AssigneeName:      i.AssigneeName,
	}
	if j.Tags == nil {
		j.Tags = []string{}
	}
	for _, c := range i.Comments {
		j.Comments = append(j.Comments, c.toJSON())
	}
	return json.Marshal(j)
}

// UnmarshalJSON implements custom JSON deserialization for Issue. Enum values
// are taken as-is: the server is authoritative and may know values this
// client does not.
func (i *Issue) UnmarshalJSON(data []byte) error {
	var j issueJSON
	if err := json.Unmarshal(data, &j); err != nil {
		return err
	}
	if j.Key == "" {
		return fmt.Errorf("issue without key")
	}

	createdAt, err := ParseDate(j.CreationDate)
	if err != nil {
		return fmt.Errorf("parsing creationDate of %s: %w", j.Key, err)
	}
	updatedAt, err := ParseDate(j.UpdateDate)
	if err != nil {
		return fmt.Errorf("parsing updateDate of %s: %w", j.Key, err)
	}

	*i = Issue{
		Key:               j.Key,
		Rule:              j.Rule,
		Severity:          Severity(j.Severity),
		Component:         j.Component,
		Project:           j.Project,
		SubProject:        j.SubProject,
		Line:              j.Line,
		Message:           j.Message,
		Status:            Status(j.Status),
		Resolution:        Resolution(j.Resolution),
		Type:              IssueType(j.Type),
		Assignee:          j.Assignee,
		Author:            j.Author,
		Effort:            j.Effort,
		Organization:      j.Organization,
		Tags:              j.Tags,
		Transitions:       j.Transitions,
		Actions:           j.Actions,
		CreatedAt:         createdAt,
		UpdatedAt:         updatedAt,
		ComponentLongName: j.ComponentLongName,
		ProjectName:       j.ProjectName,
		SubProjectName:    j.SubProjectName,
		RuleName:          j.RuleName,
		AssigneeName:      j.AssigneeName,
	}
	for _, cj := range j.Comments {
		c, err := cj.toComment()
		if err != nil {
			return fmt.Errorf("parsing comment of %s: %w", j.Key, err)
		}
		i.Comments = append(i.Comments, c)
	}
	return nil
}

// ParseDate parses a wire timestamp. It accepts the server's layout, RFC
// 3339 and a bare day, which is midnight UTC. The empty string yields the
// zero time.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	for _, layout := range []string{DateLayout, DayLayout} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Parse(time.RFC3339, s)
}

// FormatDate formats t in the wire layout; the zero time yields "".
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(DateLayout)
}

// Paging describes the position of a page within a search result.
type Paging struct {
	PageIndex int `json:"pageIndex"`
	PageSize  int `json:"pageSize"`
	Total     int `json:"total"`
}

// HasMore reports whether issues beyond the loaded count remain.
func (p Paging) HasMore(loaded int) bool {
	return loaded < p.Total
}
