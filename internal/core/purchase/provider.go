package purchase

import (
	"context"
	"fmt"

	"github.com/satomatashiki/manabiya/internal/core/course"
	"github.com/satomatashiki/manabiya/internal/platform/sec"
)

// Checkout is what the payment provider hands back for a started payment.
type Checkout struct {
	// ProviderRef identifies the checkout on the provider's side.
	ProviderRef string

	// RedirectURL is where the student completes payment.
	RedirectURL string
}

// PaymentProvider abstracts the external payment service. Implementations
// must not mutate local purchase state; the service owns the rows.
type PaymentProvider interface {
	// CreateCheckout starts a payment for the course and returns the
	// provider-side reference the purchase row will carry.
	CreateCheckout(ctx context.Context, c *course.Course, studentID string) (*Checkout, error)

	// VerifyCheckout reports whether the provider considers the checkout
	// paid. Called before a pending purchase is marked completed.
	VerifyCheckout(ctx context.Context, providerRef string) (bool, error)
}

// ManualProvider is the built-in provider for development and self-hosted
// deployments without a payment processor: every checkout is immediately
// considered paid. Production deployments plug in a real provider.
type ManualProvider struct {
	// SuccessURL is where students are sent after "payment".
	SuccessURL string
}

func (provider *ManualProvider) CreateCheckout(_ context.Context, c *course.Course, studentID string) (*Checkout, error) {
	token, err := sec.GenerateToken()
	if err != nil {
		return nil, fmt.Errorf("manual_provider_checkout_failed: %w", err)
	}
	return &Checkout{
		ProviderRef: "manual_" + token[:24],
		RedirectURL: provider.SuccessURL,
	}, nil
}

func (provider *ManualProvider) VerifyCheckout(_ context.Context, _ string) (bool, error) {
	return true, nil
}
