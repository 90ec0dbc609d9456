// Package course implements the courses offered inside a space. A course is
// either free or paid; paid courses gate their lessons behind a completed
// purchase.
package course

import "time"

// Pricing enumerates the supported pricing models.
type Pricing string

const (
	PricingFree Pricing = "free"
	PricingPaid Pricing = "paid"
)

// Course represents a sequence of lessons sold or given away as one unit.
type Course struct {
	ID          string  `json:"id"`
	SpaceID     string  `json:"space_id"`
	Title       string  `json:"title"`
	Slug        string  `json:"slug"`
	Description string  `json:"description,omitempty"`
	CoverURL    *string `json:"cover_url,omitempty"`

	// CoursePageContent is the free-form JSON sales-page document.
	// Stored serialized; nil when absent or unparseable.
	CoursePageContent any `json:"course_page_content,omitempty"`

	Pricing    Pricing `json:"pricing"`
	PriceCents int64   `json:"price_cents"`
	Currency   string  `json:"currency"`

	// Opaque references into the payment provider's catalog, set once the
	// course is registered there.
	PaymentProductRef *string `json:"payment_product_ref,omitempty"`
	PaymentPriceRef   *string `json:"payment_price_ref,omitempty"`

	Published bool  `json:"published"`
	Position  int64 `json:"position"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Free reports whether the course requires no purchase.
func (c *Course) Free() bool {
	return c.Pricing == PricingFree
}

const (
	FieldTitle       = "title"
	FieldDescription = "description"
	FieldCoverURL    = "cover_url"
	FieldPricing     = "pricing"
	FieldPriceCents  = "price_cents"
	FieldCurrency    = "currency"
	FieldSpaceID     = "space_id"
)
