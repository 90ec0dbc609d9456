// Package enrollment tracks which students belong to which spaces.
// Enrollment is free and independent of course purchases; spaces may cap it
// with a student capacity.
package enrollment

import "time"

// Status of an enrollment. Removed rows keep history and free up capacity.
type Status string

const (
	StatusActive  Status = "active"
	StatusRemoved Status = "removed"
)

// Enrollment is one student's membership in a space. The joined display
// fields are filled on list reads only.
type Enrollment struct {
	SpaceID   string `json:"space_id"`
	StudentID string `json:"student_id"`
	Status    Status `json:"status"`

	StudentName  string `json:"student_name,omitempty"`
	StudentEmail string `json:"student_email,omitempty"`
	SpaceName    string `json:"space_name,omitempty"`
	SpaceSlug    string `json:"space_slug,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// Active reports whether the student currently belongs to the space.
func (e *Enrollment) Active() bool {
	return e.Status == StatusActive
}
