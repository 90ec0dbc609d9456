// Package space implements instructor-owned spaces, the top-level container
// for courses. A space has a public landing page addressed by its slug;
// unpublished spaces are only visible to their owner.
package space

import "time"

// Space represents an instructor's teaching space.
type Space struct {
	ID           string `json:"id"`
	InstructorID string `json:"instructor_id"`
	Name         string `json:"name"`
	Slug         string `json:"slug"`
	Description  string `json:"description,omitempty"`
	LogoURL      *string `json:"logo_url,omitempty"`

	// LandingPageContent is a free-form JSON document edited by the page
	// builder. Stored serialized; nil when absent or unparseable.
	LandingPageContent any `json:"landing_page_content,omitempty"`

	Published bool `json:"published"`

	// StudentCapacity caps enrollment when set; nil means unlimited.
	StudentCapacity *int64 `json:"student_capacity,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Filter holds parameters for a paginated space listing.
type Filter struct {
	InstructorID  string
	PublishedOnly bool
}

const (
	FieldName            = "name"
	FieldDescription     = "description"
	FieldLogoURL         = "logo_url"
	FieldStudentCapacity = "student_capacity"
)
