package course_test

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/satomatashiki/manabiya/internal/core/course"
	"github.com/satomatashiki/manabiya/internal/core/space"
	"github.com/satomatashiki/manabiya/internal/platform/apperr"
	"github.com/satomatashiki/manabiya/internal/platform/sec"
	"github.com/satomatashiki/manabiya/internal/platform/storage"
	"github.com/satomatashiki/manabiya/internal/users/auth"
	"github.com/satomatashiki/manabiya/pkg/pointer"
)

type fixture struct {
	courses *course.Service
	spaces  *space.Service
	auth    *auth.Service
	db      storage.DB
}

func newFixture(t *testing.T) fixture {
	t.Helper()

	path := filepath.Join(t.TempDir(), "course.db")
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
	spaceService := space.NewService(spaceRepo, discard)
	courseService := course.NewService(course.NewRepository(db, discard), spaceRepo, discard)

	return fixture{courses: courseService, spaces: spaceService, auth: authService, db: db}
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

// publishedSpace creates a space and flips it live.
func (f fixture) publishedSpace(t *testing.T, owner *sec.Identity, name string) *space.Space {
	t.Helper()

	created, err := f.spaces.CreateSpace(context.Background(), owner, space.CreateInput{Name: name})
	require.NoError(t, err)
	published, err := f.spaces.UpdateSpace(context.Background(), created.ID, owner, space.UpdateInput{
		Published: pointer.To(true),
	})
	require.NoError(t, err)
	return published
}

func TestCreateCourse_OwnershipRequired(t *testing.T) {
	f := newFixture(t)
	owner := f.identity(t, "sensei@example.com", sec.RoleInstructor)
	rival := f.identity(t, "rival@example.com", sec.RoleInstructor)
	home := f.publishedSpace(t, owner, "Cooking School")

	_, err := f.courses.CreateCourse(context.Background(), home.ID, rival, course.CreateInput{
		Title:   "Knife Basics",
		Pricing: course.PricingFree,
	})
	require.Error(t, err)
	assert.Equal(t, "FORBIDDEN", apperr.As(err).Code)
}

func TestCreateCourse_SlugUniquePerSpace(t *testing.T) {
	f := newFixture(t)
	owner := f.identity(t, "sensei@example.com", sec.RoleInstructor)
	home := f.publishedSpace(t, owner, "Cooking School")
	other := f.publishedSpace(t, owner, "Baking School")

	first, err := f.courses.CreateCourse(context.Background(), home.ID, owner, course.CreateInput{
		Title: "Knife Basics", Pricing: course.PricingFree,
	})
	require.NoError(t, err)
	second, err := f.courses.CreateCourse(context.Background(), home.ID, owner, course.CreateInput{
		Title: "Knife Basics", Pricing: course.PricingFree,
	})
	require.NoError(t, err)
	elsewhere, err := f.courses.CreateCourse(context.Background(), other.ID, owner, course.CreateInput{
		Title: "Knife Basics", Pricing: course.PricingFree,
	})
	require.NoError(t, err)

	assert.Equal(t, "knife-basics", first.Slug)
	assert.Equal(t, "knife-basics-2", second.Slug)
	assert.Equal(t, "knife-basics", elsewhere.Slug, "slugs are only unique within one space")
}

func TestCreateCourse_PaidNeedsPrice(t *testing.T) {
	f := newFixture(t)
	owner := f.identity(t, "sensei@example.com", sec.RoleInstructor)
	home := f.publishedSpace(t, owner, "Cooking School")

	_, err := f.courses.CreateCourse(context.Background(), home.ID, owner, course.CreateInput{
		Title:   "Premium Masterclass",
		Pricing: course.PricingPaid,
	})
	require.Error(t, err)
	assert.Equal(t, "VALIDATION_ERROR", apperr.As(err).Code)
}

func TestCreateCourse_FreeForcesZeroPrice(t *testing.T) {
	f := newFixture(t)
	owner := f.identity(t, "sensei@example.com", sec.RoleInstructor)
	home := f.publishedSpace(t, owner, "Cooking School")

	created, err := f.courses.CreateCourse(context.Background(), home.ID, owner, course.CreateInput{
		Title:      "Intro",
		Pricing:    course.PricingFree,
		PriceCents: 5000,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(0), created.PriceCents)
	assert.Equal(t, "JPY", created.Currency)
}

func TestUpdateCourse_SwitchToFreeZeroesPrice(t *testing.T) {
	f := newFixture(t)
	owner := f.identity(t, "sensei@example.com", sec.RoleInstructor)
	home := f.publishedSpace(t, owner, "Cooking School")

	created, err := f.courses.CreateCourse(context.Background(), home.ID, owner, course.CreateInput{
		Title:      "Masterclass",
		Pricing:    course.PricingPaid,
		PriceCents: 9800,
	})
	require.NoError(t, err)

	updated, err := f.courses.UpdateCourse(context.Background(), created.ID, owner, course.UpdateInput{
		Pricing: pointer.To(course.PricingFree),
	})
	require.NoError(t, err)
	assert.Equal(t, course.PricingFree, updated.Pricing)
	assert.Equal(t, int64(0), updated.PriceCents)

	// Going back to paid needs a price again, the stale zero does not count.
	_, err = f.courses.UpdateCourse(context.Background(), created.ID, owner, course.UpdateInput{
		Pricing: pointer.To(course.PricingPaid),
	})
	require.Error(t, err)
	assert.Equal(t, "VALIDATION_ERROR", apperr.As(err).Code)
}

func TestGetCourse_DraftHiddenFromStudents(t *testing.T) {
	f := newFixture(t)
	owner := f.identity(t, "sensei@example.com", sec.RoleInstructor)
	student := f.identity(t, "gakusei@example.com", sec.RoleStudent)
	home := f.publishedSpace(t, owner, "Cooking School")

	created, err := f.courses.CreateCourse(context.Background(), home.ID, owner, course.CreateInput{
		Title: "Drafty", Pricing: course.PricingFree,
	})
	require.NoError(t, err)

	// Owner sees the draft.
	got, err := f.courses.GetCourse(context.Background(), home.Slug, created.Slug, owner)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)

	// Students and visitors do not.
	_, err = f.courses.GetCourse(context.Background(), home.Slug, created.Slug, student)
	require.Error(t, err)
	assert.Equal(t, "NOT_FOUND", apperr.As(err).Code)

	// Publishing opens it up.
	_, err = f.courses.UpdateCourse(context.Background(), created.ID, owner, course.UpdateInput{
		Published: pointer.To(true),
	})
	require.NoError(t, err)

	got, err = f.courses.GetCourse(context.Background(), home.Slug, created.Slug, student)
	require.NoError(t, err)
	assert.True(t, got.Published)
}

func TestListCourses_PublishedOnlyForVisitors(t *testing.T) {
	f := newFixture(t)
	owner := f.identity(t, "sensei@example.com", sec.RoleInstructor)
	home := f.publishedSpace(t, owner, "Cooking School")

	live, err := f.courses.CreateCourse(context.Background(), home.ID, owner, course.CreateInput{
		Title: "Live", Pricing: course.PricingFree,
	})
	require.NoError(t, err)
	_, err = f.courses.UpdateCourse(context.Background(), live.ID, owner, course.UpdateInput{
		Published: pointer.To(true),
	})
	require.NoError(t, err)

	_, err = f.courses.CreateCourse(context.Background(), home.ID, owner, course.CreateInput{
		Title: "Draft", Pricing: course.PricingFree,
	})
	require.NoError(t, err)

	visitorView, total, err := f.courses.ListCourses(context.Background(), home.Slug, nil, 20, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, visitorView, 1)
	assert.Equal(t, live.ID, visitorView[0].ID)

	ownerView, total, err := f.courses.ListCourses(context.Background(), home.Slug, owner, 20, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Len(t, ownerView, 2)
}

func TestUpdateCourse_ContentRoundTripAndCorruptDegrade(t *testing.T) {
	f := newFixture(t)
	owner := f.identity(t, "sensei@example.com", sec.RoleInstructor)
	home := f.publishedSpace(t, owner, "Cooking School")

	created, err := f.courses.CreateCourse(context.Background(), home.ID, owner, course.CreateInput{
		Title: "Content", Pricing: course.PricingFree,
	})
	require.NoError(t, err)

	document := any(map[string]any{"sections": []any{"what you will learn"}})
	updated, err := f.courses.UpdateCourse(context.Background(), created.ID, owner, course.UpdateInput{
		CoursePageContent: &document,
	})
	require.NoError(t, err)
	require.NotNil(t, updated.CoursePageContent)

	_, err = f.db.Prepare(`UPDATE courses SET course_page_content = ? WHERE id = ?`).
		Bind("][", created.ID).
		Run(context.Background())
	require.NoError(t, err)

	got, err := f.courses.GetCourse(context.Background(), home.Slug, created.Slug, owner)
	require.NoError(t, err)
	assert.Nil(t, got.CoursePageContent)
}
