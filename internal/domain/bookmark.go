package domain

import (
	"strings"
	"time"
)

// DefaultCategory is stored when a bookmark is submitted without a category.
const DefaultCategory = "General"

// Bookmark is the canonical stored record linking a name to a URL.
//
// A Bookmark is uniquely identified by its ID, and no two bookmarks
// may share the same URL (exact, case-sensitive comparison).
type Bookmark struct {
	// ─────────────────────────────
	// Identity (immutable)
	// ─────────────────────────────

	// ID is assigned by the persistence backend on insert.
	// It is opaque to every other layer and never reused.
	ID string `json:"id"`

	// Seq is the backend insertion sequence.
	// It only breaks ordering ties between equal CreatedAt values.
	Seq int64 `json:"-"`

	// ─────────────────────────────
	// User data
	// ─────────────────────────────

	// Name is the label shown in the list. Required.
	Name string `json:"name"`

	// URL is the absolute target URL. Required and unique.
	// Example: https://example.com/docs
	URL string `json:"url"`

	// Category is a single free-text grouping label.
	Category string `json:"category"`

	// Description is optional free text.
	Description string `json:"description"`

	// ─────────────────────────────
	// Metadata
	// ─────────────────────────────

	// CreatedAt is set once on insert.
	CreatedAt time.Time `json:"created_at"`

	// UpdatedAt is refreshed on every successful edit.
	UpdatedAt time.Time `json:"updated_at"`
}

// Clone returns a copy of b that shares no memory with it.
func (b *Bookmark) Clone() *Bookmark {
	if b == nil {
		return nil
	}
	c := *b
	return &c
}

// Input carries the user-editable fields of a bookmark as submitted.
type Input struct {
	Name        string
	URL         string
	Category    string
	Description string
}

// Normalize trims every field and applies the default category.
func (in Input) Normalize() Input {
	out := Input{
		Name:        strings.TrimSpace(in.Name),
		URL:         strings.TrimSpace(in.URL),
		Category:    strings.TrimSpace(in.Category),
		Description: strings.TrimSpace(in.Description),
	}
	if out.Category == "" {
		out.Category = DefaultCategory
	}
	return out
}

// Validate runs the required-field check first, then the URL check.
func (in Input) Validate() error {
	if err := ValidateRequired(in.Name, in.URL); err != nil {
		return err
	}
	return ValidateURL(in.URL)
}

// Patch is the field set written by an update.
// It never carries ID or CreatedAt.
type Patch struct {
	Name        string
	URL         string
	Category    string
	Description string
	UpdatedAt   time.Time
}

// Apply overwrites the mutable fields of b with p.
func (p Patch) Apply(b *Bookmark) {
	b.Name = p.Name
	b.URL = p.URL
	b.Category = p.Category
	b.Description = p.Description
	b.UpdatedAt = p.UpdatedAt
}
