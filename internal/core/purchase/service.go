package purchase

import (
	"context"
	"log/slog"

	"github.com/satomatashiki/manabiya/internal/core/course"
	"github.com/satomatashiki/manabiya/internal/platform/apperr"
	"github.com/satomatashiki/manabiya/internal/platform/sec"
	"github.com/satomatashiki/manabiya/pkg/uuidv7"
)

type Service struct {
	repo     Repository
	courses  course.Repository
	provider PaymentProvider
	logger   *slog.Logger
}

func NewService(repo Repository, courses course.Repository, provider PaymentProvider, logger *slog.Logger) *Service {
	return &Service{
		repo:     repo,
		courses:  courses,
		provider: provider,
		logger:   logger,
	}
}

// PurchaseFree claims a free course: a completed zero-amount purchase row.
// Claiming twice is a conflict.
func (service *Service) PurchaseFree(ctx context.Context, courseID string, student *sec.Identity) (*Purchase, error) {
	target, err := service.purchasableCourse(ctx, courseID, student)
	if err != nil {
		return nil, err
	}
	if !target.Free() {
		return nil, apperr.Unprocessable("This course is paid; use checkout instead")
	}

	purchase := &Purchase{
		ID:          uuidv7.New(),
		CourseID:    target.ID,
		StudentID:   student.UserID,
		Status:      StatusCompleted,
		AmountCents: 0,
		Currency:    target.Currency,
	}
	if err := service.repo.Create(ctx, purchase); err != nil {
		return nil, err
	}

	service.logger.Info("purchase_free_completed",
		slog.String("purchase_id", purchase.ID),
		slog.String("course_id", target.ID),
	)
	return purchase, nil
}

// CheckoutResult pairs the pending purchase with the provider redirect.
type CheckoutResult struct {
	Purchase    *Purchase `json:"purchase"`
	RedirectURL string    `json:"redirect_url"`
}

// Checkout starts a paid purchase: a pending row carrying the provider's
// checkout reference. Retrying an unfinished checkout starts a fresh
// provider session on the same row.
func (service *Service) Checkout(ctx context.Context, courseID string, student *sec.Identity) (*CheckoutResult, error) {
	target, err := service.purchasableCourse(ctx, courseID, student)
	if err != nil {
		return nil, err
	}
	if target.Free() {
		return nil, apperr.Unprocessable("This course is free; no checkout needed")
	}

	checkout, err := service.provider.CreateCheckout(ctx, target, student.UserID)
	if err != nil {
		return nil, apperr.ServiceUnavailable("Payment provider is unavailable").WithCause(err)
	}

	// A pending or refunded row is reused so the unique (course, student)
	// pair holds; only the provider session is fresh.
	existing, err := service.reusablePurchase(ctx, target.ID, student.UserID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		if err := service.repo.SetProviderRef(ctx, existing.ID, checkout.ProviderRef); err != nil {
			return nil, err
		}
		if existing.Status != StatusPending {
			if err := service.repo.SetStatus(ctx, existing.ID, StatusPending); err != nil {
				return nil, err
			}
			existing.Status = StatusPending
		}
		existing.ProviderRef = &checkout.ProviderRef
		return &CheckoutResult{Purchase: existing, RedirectURL: checkout.RedirectURL}, nil
	}

	purchase := &Purchase{
		ID:          uuidv7.New(),
		CourseID:    target.ID,
		StudentID:   student.UserID,
		Status:      StatusPending,
		AmountCents: target.PriceCents,
		Currency:    target.Currency,
		ProviderRef: &checkout.ProviderRef,
	}
	if err := service.repo.Create(ctx, purchase); err != nil {
		return nil, err
	}

	service.logger.Info("purchase_checkout_started",
		slog.String("purchase_id", purchase.ID),
		slog.String("course_id", target.ID),
		slog.String("provider_ref", checkout.ProviderRef),
	)
	return &CheckoutResult{Purchase: purchase, RedirectURL: checkout.RedirectURL}, nil
}

// Complete marks a pending purchase completed after the provider confirms
// payment. Completing an already completed purchase is a no-op.
func (service *Service) Complete(ctx context.Context, purchaseID string, student *sec.Identity) (*Purchase, error) {
	purchase, err := service.repo.GetByID(ctx, purchaseID)
	if err != nil {
		return nil, err
	}
	if purchase.StudentID != student.UserID {
		return nil, apperr.Forbidden("This purchase belongs to another student")
	}
	if purchase.Completed() {
		return purchase, nil
	}
	if purchase.Status == StatusRefunded {
		return nil, apperr.Unprocessable("Refunded purchases cannot be completed")
	}
	if purchase.ProviderRef == nil {
		return nil, apperr.Unprocessable("Purchase has no checkout to verify")
	}

	paid, err := service.provider.VerifyCheckout(ctx, *purchase.ProviderRef)
	if err != nil {
		return nil, apperr.ServiceUnavailable("Payment provider is unavailable").WithCause(err)
	}
	if !paid {
		return nil, apperr.Unprocessable("Payment has not been confirmed by the provider")
	}

	if err := service.repo.SetStatus(ctx, purchase.ID, StatusCompleted); err != nil {
		return nil, err
	}
	purchase.Status = StatusCompleted

	service.logger.Info("purchase_completed",
		slog.String("purchase_id", purchase.ID),
		slog.String("course_id", purchase.CourseID),
	)
	return purchase, nil
}

// ListOwn returns the student's purchase history, newest first.
func (service *Service) ListOwn(ctx context.Context, student *sec.Identity, limit, offset int) ([]*Purchase, int, error) {
	return service.repo.ListByStudent(ctx, student.UserID, limit, offset)
}

// CanAccess reports whether the student may open the paid content of a
// course. Free courses are open to everyone; an empty student ID never has
// access to paid content.
func (service *Service) CanAccess(ctx context.Context, courseID, studentID string) (bool, error) {
	target, err := service.courses.GetByID(ctx, courseID)
	if err != nil {
		return false, err
	}
	if target.Free() {
		return true, nil
	}
	if studentID == "" {
		return false, nil
	}
	return service.repo.HasCompleted(ctx, target.ID, studentID)
}

// purchasableCourse loads a published course and rejects repeat purchases.
func (service *Service) purchasableCourse(ctx context.Context, courseID string, student *sec.Identity) (*course.Course, error) {
	target, err := service.courses.GetByID(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if !target.Published {
		return nil, apperr.NotFound("Course")
	}

	done, err := service.repo.HasCompleted(ctx, target.ID, student.UserID)
	if err != nil {
		return nil, err
	}
	if done {
		return nil, apperr.Conflict("Course is already purchased")
	}
	return target, nil
}

// reusablePurchase returns the student's non-completed row for the course,
// nil when none exists.
func (service *Service) reusablePurchase(ctx context.Context, courseID, studentID string) (*Purchase, error) {
	existing, err := service.repo.GetByCourseAndStudent(ctx, courseID, studentID)
	if err != nil {
		if apperr.IsAppError(err) {
			return nil, nil
		}
		return nil, err
	}
	if existing.Completed() {
		return nil, nil
	}
	return existing, nil
}
