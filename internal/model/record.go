package model

import (
	"encoding/json"
	"time"
)

// Record is the common envelope shared by every content collection.
// Collection-specific fields live in Payload as JSON; the admin layer never
// looks inside it, only the public pages do.
type Record struct {
	ID         int64           `json:"id"`
	Title      string          `json:"title"`
	SortOrder  int             `json:"sort_order"`
	Payload    json.RawMessage `json:"payload"`
	IsArchived bool            `json:"is_archived"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// RowID returns the record's identifier.
func (r *Record) RowID() int64 { return r.ID }

// SetArchived sets the soft-delete flag.
func (r *Record) SetArchived(archived bool) { r.IsArchived = archived }

// Collection names. Each collection is stored in a table of the same name.
const (
	CollectionSkills         = "skills"
	CollectionExperiences    = "experiences"
	CollectionProjects       = "projects"
	CollectionCertifications = "certifications"
	CollectionEvents         = "events"
	CollectionBlogs          = "blogs"
	CollectionSocials        = "socials"
	CollectionGallery        = "gallery"
)

// collections is the fixed set of content collections. Collection names
// double as table names, so anything not in this set must never reach SQL.
var collections = []string{
	CollectionSkills,
	CollectionExperiences,
	CollectionProjects,
	CollectionCertifications,
	CollectionEvents,
	CollectionBlogs,
	CollectionSocials,
	CollectionGallery,
}

// Collections returns the names of all content collections.
func Collections() []string {
	out := make([]string, len(collections))
	copy(out, collections)
	return out
}

// ValidCollection reports whether name is a known collection.
func ValidCollection(name string) bool {
	for _, c := range collections {
		if c == name {
			return true
		}
	}
	return false
}
