package lesson_test

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/satomatashiki/manabiya/internal/core/course"
	"github.com/satomatashiki/manabiya/internal/core/lesson"
	"github.com/satomatashiki/manabiya/internal/core/purchase"
	"github.com/satomatashiki/manabiya/internal/core/space"
	"github.com/satomatashiki/manabiya/internal/platform/apperr"
	"github.com/satomatashiki/manabiya/internal/platform/sec"
	"github.com/satomatashiki/manabiya/internal/platform/storage"
	"github.com/satomatashiki/manabiya/internal/users/auth"
	"github.com/satomatashiki/manabiya/pkg/pointer"
)

type fixture struct {
	lessons   *lesson.Service
	purchases *purchase.Service
	courses   *course.Service
	spaces    *space.Service
	auth      *auth.Service
}

func newFixture(t *testing.T) fixture {
	t.Helper()

	path := filepath.Join(t.TempDir(), "lesson.db")
	db, err := storage.OpenSQLite(path, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	discard := slog.New(slog.NewTextHandler(io.Discard, nil))
	authService := auth.NewService(
		auth.NewProfileRepository(db),
		auth.NewSessionRepository(db),
		auth.NewResetTokenRepository(db),
		nil,
	)
	spaceRepo := space.NewRepository(db, discard)
	courseRepo := course.NewRepository(db, discard)
	purchaseService := purchase.NewService(
		purchase.NewRepository(db), courseRepo, &purchase.ManualProvider{SuccessURL: "/done"}, discard)

	return fixture{
		lessons:   lesson.NewService(lesson.NewRepository(db), courseRepo, spaceRepo, purchaseService, discard),
		purchases: purchaseService,
		courses:   course.NewService(courseRepo, spaceRepo, discard),
		spaces:    space.NewService(spaceRepo, discard),
		auth:      authService,
	}
}

func (f fixture) identity(t *testing.T, email string, role sec.Role) *sec.Identity {
	t.Helper()

	profile, err := f.auth.Register(context.Background(), auth.RegisterInput{
		Email:       email,
		Password:    "hunter2hunter2",
		DisplayName: "Member",
		Role:        role,
	})
	require.NoError(t, err)
	return profile.Identity()
}

func (f fixture) publishedCourse(t *testing.T, owner *sec.Identity, pricing course.Pricing, priceCents int64) *course.Course {
	t.Helper()

	home, err := f.spaces.CreateSpace(context.Background(), owner, space.CreateInput{Name: "Dojo " + t.Name()})
	require.NoError(t, err)
	_, err = f.spaces.UpdateSpace(context.Background(), home.ID, owner, space.UpdateInput{
		Published: pointer.To(true),
	})
	require.NoError(t, err)

	created, err := f.courses.CreateCourse(context.Background(), home.ID, owner, course.CreateInput{
		Title:      "Course",
		Pricing:    pricing,
		PriceCents: priceCents,
	})
	require.NoError(t, err)
	published, err := f.courses.UpdateCourse(context.Background(), created.ID, owner, course.UpdateInput{
		Published: pointer.To(true),
	})
	require.NoError(t, err)
	return published
}

// publishedLesson creates a lesson and flips it live.
func (f fixture) publishedLesson(t *testing.T, owner *sec.Identity, courseID, title string, preview bool) *lesson.Lesson {
	t.Helper()

	created, err := f.lessons.CreateLesson(context.Background(), courseID, owner, lesson.CreateInput{
		Title:       title,
		Content:     "secret material for " + title,
		FreePreview: preview,
	})
	require.NoError(t, err)
	published, err := f.lessons.UpdateLesson(context.Background(), created.ID, owner, lesson.UpdateInput{
		Published: pointer.To(true),
	})
	require.NoError(t, err)
	return published
}

func TestCreateLesson_AppendsToEnd(t *testing.T) {
	f := newFixture(t)
	owner := f.identity(t, "sensei@example.com", sec.RoleInstructor)
	target := f.publishedCourse(t, owner, course.PricingFree, 0)

	first := f.publishedLesson(t, owner, target.ID, "One", false)
	second := f.publishedLesson(t, owner, target.ID, "Two", false)

	assert.Equal(t, int64(0), first.Position)
	assert.Equal(t, int64(1), second.Position)
}

func TestListLessons_RedactsPaidContent(t *testing.T) {
	f := newFixture(t)
	owner := f.identity(t, "sensei@example.com", sec.RoleInstructor)
	student := f.identity(t, "gakusei@example.com", sec.RoleStudent)
	paid := f.publishedCourse(t, owner, course.PricingPaid, 4800)

	f.publishedLesson(t, owner, paid.ID, "Teaser", true)
	f.publishedLesson(t, owner, paid.ID, "Meat", false)

	listed, err := f.lessons.ListLessons(context.Background(), paid.ID, student)
	require.NoError(t, err)
	require.Len(t, listed, 2)

	// Free preview is open; the rest is a locked outline entry.
	assert.False(t, listed[0].Locked)
	assert.NotEmpty(t, listed[0].Content)
	assert.True(t, listed[1].Locked)
	assert.Empty(t, listed[1].Content)

	// The owner always sees everything.
	ownerView, err := f.lessons.ListLessons(context.Background(), paid.ID, owner)
	require.NoError(t, err)
	for _, entry := range ownerView {
		assert.False(t, entry.Locked)
		assert.NotEmpty(t, entry.Content)
	}
}

func TestGetLesson_PurchaseUnlocks(t *testing.T) {
	f := newFixture(t)
	owner := f.identity(t, "sensei@example.com", sec.RoleInstructor)
	student := f.identity(t, "gakusei@example.com", sec.RoleStudent)
	paid := f.publishedCourse(t, owner, course.PricingPaid, 4800)
	locked := f.publishedLesson(t, owner, paid.ID, "Locked", false)

	_, err := f.lessons.GetLesson(context.Background(), locked.ID, student)
	require.Error(t, err)
	assert.Equal(t, "FORBIDDEN", apperr.As(err).Code)

	_, err = f.lessons.GetLesson(context.Background(), locked.ID, nil)
	require.Error(t, err)
	assert.Equal(t, "UNAUTHORIZED", apperr.As(err).Code)

	// Buy the course; the lesson opens.
	result, err := f.purchases.Checkout(context.Background(), paid.ID, student)
	require.NoError(t, err)
	_, err = f.purchases.Complete(context.Background(), result.Purchase.ID, student)
	require.NoError(t, err)

	got, err := f.lessons.GetLesson(context.Background(), locked.ID, student)
	require.NoError(t, err)
	assert.NotEmpty(t, got.Content)
	assert.False(t, got.Locked)
}

func TestListLessons_DraftsHiddenFromStudents(t *testing.T) {
	f := newFixture(t)
	owner := f.identity(t, "sensei@example.com", sec.RoleInstructor)
	student := f.identity(t, "gakusei@example.com", sec.RoleStudent)
	free := f.publishedCourse(t, owner, course.PricingFree, 0)

	f.publishedLesson(t, owner, free.ID, "Live", false)
	_, err := f.lessons.CreateLesson(context.Background(), free.ID, owner, lesson.CreateInput{
		Title: "Draft",
	})
	require.NoError(t, err)

	studentView, err := f.lessons.ListLessons(context.Background(), free.ID, student)
	require.NoError(t, err)
	assert.Len(t, studentView, 1)

	ownerView, err := f.lessons.ListLessons(context.Background(), free.ID, owner)
	require.NoError(t, err)
	assert.Len(t, ownerView, 2)
}

func TestReorder_RewritesPositions(t *testing.T) {
	f := newFixture(t)
	owner := f.identity(t, "sensei@example.com", sec.RoleInstructor)
	free := f.publishedCourse(t, owner, course.PricingFree, 0)

	one := f.publishedLesson(t, owner, free.ID, "One", false)
	two := f.publishedLesson(t, owner, free.ID, "Two", false)
	three := f.publishedLesson(t, owner, free.ID, "Three", false)

	reordered, err := f.lessons.Reorder(context.Background(), free.ID, owner,
		[]string{three.ID, one.ID, two.ID})
	require.NoError(t, err)
	require.Len(t, reordered, 3)
	assert.Equal(t, three.ID, reordered[0].ID)
	assert.Equal(t, one.ID, reordered[1].ID)
	assert.Equal(t, two.ID, reordered[2].ID)
}

func TestReorder_RejectsPartialOrUnknownIDs(t *testing.T) {
	f := newFixture(t)
	owner := f.identity(t, "sensei@example.com", sec.RoleInstructor)
	free := f.publishedCourse(t, owner, course.PricingFree, 0)

	one := f.publishedLesson(t, owner, free.ID, "One", false)
	f.publishedLesson(t, owner, free.ID, "Two", false)

	_, err := f.lessons.Reorder(context.Background(), free.ID, owner, []string{one.ID})
	require.Error(t, err)
	assert.Equal(t, "VALIDATION_ERROR", apperr.As(err).Code)

	_, err = f.lessons.Reorder(context.Background(), free.ID, owner, []string{one.ID, "nope"})
	require.Error(t, err)
	assert.Equal(t, "VALIDATION_ERROR", apperr.As(err).Code)
}
