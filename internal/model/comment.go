package model

import (
	"fmt"
	"time"
)

// Comment represents a comment on an issue.
type Comment struct {
	Key        string
	Login      string
	AuthorName string
	Markdown   string
	HTMLText   string
	Updatable  bool
	CreatedAt  time.Time
}

// AuthorOrAnonymous returns the author name, falling back to the login and
// then to "anonymous".
func (c Comment) AuthorOrAnonymous() string {
	switch {
	case c.AuthorName != "":
		return c.AuthorName
	case c.Login != "":
		return c.Login
	default:
		return "anonymous"
	}
}

// commentJSON is the JSON wire format for Comment.
type commentJSON struct {
	Key        string `json:"key"`
	Login      string `json:"login,omitempty"`
	AuthorName string `json:"authorName,omitempty"`
	Markdown   string `json:"markdown"`
	HTMLText   string `json:"htmlText,omitempty"`
	Updatable  bool   `json:"updatable"`
	CreatedAt  string `json:"createdAt"`
}

func (c Comment) toJSON() commentJSON {
	return commentJSON{
		Key:        c.Key,
		Login:      c.Login,
		AuthorName: c.AuthorName,
		Markdown:   c.Markdown,
		HTMLText:   c.HTMLText,
		Updatable:  c.Updatable,
		CreatedAt:  FormatDate(c.CreatedAt),
	}
}

func (j commentJSON) toComment() (Comment, error) {
	createdAt, err := ParseDate(j.CreatedAt)
	if err != nil {
		return Comment{}, fmt.Errorf("parsing createdAt: %w", err)
	}
	return Comment{
		Key:        j.Key,
		Login:      j.Login,
		AuthorName: j.AuthorName,
		Markdown:   j.Markdown,
		HTMLText:   j.HTMLText,
		Updatable:  j.Updatable,
		CreatedAt:  createdAt,
	}, nil
}
