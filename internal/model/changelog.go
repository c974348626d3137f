package model

import (
	"encoding/json"
	"fmt"
	"time"
)

// Diff is one field change inside a changelog entry.
type Diff struct {
	Key      string `json:"key"`
	OldValue string `json:"oldValue,omitempty"`
	NewValue string `json:"newValue,omitempty"`
}

// String renders the diff as "key: old -> new", omitting missing sides.
func (d Diff) String() string {
	switch {
	case d.OldValue == "" && d.NewValue == "":
		return d.Key
	case d.OldValue == "":
		return fmt.Sprintf("%s: %s", d.Key, d.NewValue)
	case d.NewValue == "":
		return fmt.Sprintf("%s: %s (removed)", d.Key, d.OldValue)
	default:
		return fmt.Sprintf("%s: %s → %s", d.Key, d.OldValue, d.NewValue)
	}
}

// ChangelogEntry records a set of field changes made by one user at once.
type ChangelogEntry struct {
	CreatedAt time.Time
	User      string
	UserName  string
	Avatar    string
	Diffs     []Diff
}

// Actor returns the display name of whoever made the change.
func (e ChangelogEntry) Actor() string {
	switch {
	case e.UserName != "":
		return e.UserName
	case e.User != "":
		return e.User
	default:
		return "system"
	}
}

type changelogEntryJSON struct {
	CreationDate string `json:"creationDate"`
	User         string `json:"user,omitempty"`
	UserName     string `json:"userName,omitempty"`
	Avatar       string `json:"avatar,omitempty"`
	Diffs        []Diff `json:"diffs"`
}

// MarshalJSON implements custom JSON serialization for ChangelogEntry.
func (e ChangelogEntry) MarshalJSON() ([]byte, error) {
	diffs := e.Diffs
	if diffs == nil {
		diffs = []Diff{}
	}
	return json.Marshal(changelogEntryJSON{
		CreationDate: FormatDate(e.CreatedAt),
		User:         e.User,
		UserName:     e.UserName,
		Avatar:       e.Avatar,
		Diffs:        diffs,
	})
}

// UnmarshalJSON implements custom JSON deserialization for ChangelogEntry.
func (e *ChangelogEntry) UnmarshalJSON(data []byte) error {
	var j changelogEntryJSON
	if err := json.Unmarshal(data, &j); err != nil {
		return err
	}
	createdAt, err := ParseDate(j.CreationDate)
	if err != nil {
		return fmt.Errorf("parsing changelog creationDate: %w", err)
	}
	*e = ChangelogEntry{
		CreatedAt: createdAt,
		User:      j.User,
		UserName:  j.UserName,
		Avatar:    j.Avatar,
		Diffs:     j.Diffs,
	}
	return nil
}
