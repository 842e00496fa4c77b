package domain

import (
	"net/url"
	"strings"
	"time"
)

// Bookmark is one saved link owned by a single user.
//
// Records are immutable from the client's point of view: the backend assigns
// ID and CreatedAt on insert, and the only mutation a client performs is
// delete. Field names on the wire follow the collection columns.
type Bookmark struct {
	// ID is the backend-assigned unique identifier.
	ID string `json:"id"`

	// UserID is the owner. Visibility is restricted to this user.
	UserID string `json:"user_id"`

	// Title is the user-supplied label, non-empty after trimming.
	Title string `json:"title"`

	// URL is the user-supplied absolute URL.
	URL string `json:"url"`

	// CreatedAt orders the collection, newest first.
	CreatedAt time.Time `json:"created_at"`
}

// Draft is the user's pending input before a bookmark exists.
type Draft struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

// Normalize returns the draft with surrounding whitespace removed.
func (d Draft) Normalize() Draft {
	return Draft{
		Title: strings.TrimSpace(d.Title),
		URL:   strings.TrimSpace(d.URL),
	}
}

// Validate checks a normalized draft. It never touches the network.
func (d Draft) Validate() error {
	if d.Title == "" || d.URL == "" {
		return NewValidationError(MsgRequiredFields)
	}
	if !IsAbsoluteURL(d.URL) {
		return NewValidationError(MsgInvalidURL)
	}
	return nil
}

// IsAbsoluteURL reports whether raw parses as an absolute URL: a scheme plus
// either a host ("https://example.com") or an opaque part ("mailto:a@b.c").
func IsAbsoluteURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	if u.Scheme == "" {
		return false
	}
	return u.Host != "" || u.Opaque != ""
}
