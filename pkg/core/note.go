// Package core defines the note domain: the Note entity, the backend contract
// every storage adapter implements, and the Store that mediates all access to it.
package core

import (
	"fmt"
	"strings"
	"time"
)

// Untitled is stored in place of an empty title.
const Untitled = "Untitled"

// Note is the central entity of the domain.
// ID is assigned by the backend on first persistence and is zero before that.
type Note struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Draft is the caller-supplied part of a new note.
type Draft struct {
	Title   string
	Content string
}

// Patch carries the fields of an edit. A nil field is left untouched.
type Patch struct {
	Title   *string
	Content *string
}

// Merge returns n with the supplied fields of p applied.
// Timestamps are not touched.
func (p Patch) Merge(n Note) Note {
	if p.Title != nil {
		n.Title = NormalizeTitle(*p.Title)
	}
	if p.Content != nil {
		n.Content = *p.Content
	}
	return n
}

// NormalizeTitle replaces an empty title with Untitled. Whitespace is a
// title like any other and is stored as given.
func NormalizeTitle(title string) string {
	if title == "" {
		return Untitled
	}
	return title
}

// Matches reports whether query is a literal, case-sensitive substring of the
// note's title or content. The empty query matches every note.
func Matches(n Note, query string) bool {
	if query == "" {
		return true
	}
	return strings.Contains(n.Title, query) || strings.Contains(n.Content, query)
}

// EventType represents the type of change in the backend.
type EventType string

const (
	EventCreate EventType = "CREATE"
	EventModify EventType = "MODIFY"
	EventDelete EventType = "DELETE"
)

// Event represents a change observed in the backend.
type Event struct {
	Type      EventType
	ID        int64
	Timestamp int64 // Unix timestamp
}

// String implements fmt.Stringer.
func (e Event) String() string {
	return fmt.Sprintf("%s %d", e.Type, e.ID)
}

// StringPtr is a convenience for building a Patch.
func StringPtr(s string) *string {
	return &s
}
