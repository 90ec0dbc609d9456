// Package purchase records course purchases and answers access checks.
// Free courses are "purchased" with a completed zero-amount row; paid courses
// go through an external payment provider behind the PaymentProvider seam.
package purchase

import "time"

// Status of a purchase row.
type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusRefunded  Status = "refunded"
)

// Purchase is one student's purchase of one course. At most one row exists
// per (course, student) pair.
type Purchase struct {
	ID        string `json:"id"`
	CourseID  string `json:"course_id"`
	StudentID string `json:"student_id"`
	Status    Status `json:"status"`

	AmountCents int64  `json:"amount_cents"`
	Currency    string `json:"currency"`

	// ProviderRef is the payment provider's checkout identifier. Empty for
	// free purchases.
	ProviderRef *string `json:"provider_ref,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Completed reports whether the purchase grants course access.
func (p *Purchase) Completed() bool {
	return p.Status == StatusCompleted
}
