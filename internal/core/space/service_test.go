package space_test

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/satomatashiki/manabiya/internal/core/space"
	"github.com/satomatashiki/manabiya/internal/platform/apperr"
	"github.com/satomatashiki/manabiya/internal/platform/sec"
	"github.com/satomatashiki/manabiya/internal/platform/storage"
	"github.com/satomatashiki/manabiya/internal/users/auth"
	"github.com/satomatashiki/manabiya/pkg/pointer"
)

type fixture struct {
	spaces *space.Service
	auth   *auth.Service
	db     storage.DB
}

func newFixture(t *testing.T) fixture {
	t.Helper()

	path := filepath.Join(t.TempDir(), "space.db")
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
	spaceService := space.NewService(space.NewRepository(db, discard), discard)

	return fixture{spaces: spaceService, auth: authService, db: db}
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

func (f fixture) create(t *testing.T, owner *sec.Identity, name string) *space.Space {
	t.Helper()

	created, err := f.spaces.CreateSpace(context.Background(), owner, space.CreateInput{Name: name})
	require.NoError(t, err)
	return created
}

func TestCreateSpace_GeneratesUniqueSlugs(t *testing.T) {
	f := newFixture(t)
	owner := f.identity(t, "sensei@example.com", sec.RoleInstructor)

	first := f.create(t, owner, "Kitchen Knife Skills")
	second := f.create(t, owner, "Kitchen Knife Skills")

	assert.Equal(t, "kitchen-knife-skills", first.Slug)
	assert.Equal(t, "kitchen-knife-skills-2", second.Slug)
}

func TestGetSpace_UnpublishedHiddenFromOthers(t *testing.T) {
	f := newFixture(t)
	owner := f.identity(t, "sensei@example.com", sec.RoleInstructor)
	student := f.identity(t, "gakusei@example.com", sec.RoleStudent)
	created := f.create(t, owner, "Hidden Dojo")

	// The owner sees the draft, by slug and by ID.
	got, err := f.spaces.GetSpace(context.Background(), created.Slug, owner)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)

	got, err = f.spaces.GetSpace(context.Background(), created.ID, owner)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)

	// Everyone else gets a plain not-found, draft or not.
	_, err = f.spaces.GetSpace(context.Background(), created.Slug, student)
	require.Error(t, err)
	assert.Equal(t, "NOT_FOUND", apperr.As(err).Code)

	_, err = f.spaces.GetSpace(context.Background(), created.Slug, nil)
	require.Error(t, err)
}

func TestUpdateSpace_OnlyOwner(t *testing.T) {
	f := newFixture(t)
	owner := f.identity(t, "sensei@example.com", sec.RoleInstructor)
	rival := f.identity(t, "rival@example.com", sec.RoleInstructor)
	created := f.create(t, owner, "My Dojo")

	_, err := f.spaces.UpdateSpace(context.Background(), created.ID, rival, space.UpdateInput{
		Name: pointer.To("Stolen Dojo"),
	})
	require.Error(t, err)
	assert.Equal(t, "FORBIDDEN", apperr.As(err).Code)
}

func TestUpdateSpace_CapacityBelowEnrollmentRejected(t *testing.T) {
	f := newFixture(t)
	owner := f.identity(t, "sensei@example.com", sec.RoleInstructor)
	student := f.identity(t, "gakusei@example.com", sec.RoleStudent)
	created := f.create(t, owner, "Tiny Dojo")

	_, err := f.db.Prepare(`
		INSERT INTO space_students (space_id, student_id, status, created_at)
		VALUES (?, ?, 'active', 0)`).
		Bind(created.ID, student.UserID).
		Run(context.Background())
	require.NoError(t, err)

	_, err = f.spaces.UpdateSpace(context.Background(), created.ID, owner, space.UpdateInput{
		StudentCapacity: pointer.To(int64(0)),
	})
	require.Error(t, err)
	assert.Equal(t, "UNPROCESSABLE", apperr.As(err).Code)

	// Capacity at current enrollment is fine.
	updated, err := f.spaces.UpdateSpace(context.Background(), created.ID, owner, space.UpdateInput{
		StudentCapacity: pointer.To(int64(1)),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), *updated.StudentCapacity)
}

func TestUpdateSpace_LandingContentRoundTrip(t *testing.T) {
	f := newFixture(t)
	owner := f.identity(t, "sensei@example.com", sec.RoleInstructor)
	created := f.create(t, owner, "Content Dojo")

	document := map[string]any{"blocks": []any{map[string]any{"type": "hero", "title": "Welcome"}}}
	content := any(document)
	updated, err := f.spaces.UpdateSpace(context.Background(), created.ID, owner, space.UpdateInput{
		LandingPageContent: &content,
	})
	require.NoError(t, err)
	require.NotNil(t, updated.LandingPageContent)

	parsed, ok := updated.LandingPageContent.(map[string]any)
	require.True(t, ok)
	assert.Contains(t, parsed, "blocks")
}

func TestGetSpace_CorruptLandingContentDegradesToNil(t *testing.T) {
	f := newFixture(t)
	owner := f.identity(t, "sensei@example.com", sec.RoleInstructor)
	created := f.create(t, owner, "Broken Dojo")

	_, err := f.db.Prepare(`UPDATE spaces SET landing_page_content = ? WHERE id = ?`).
		Bind("{not json", created.ID).
		Run(context.Background())
	require.NoError(t, err)

	got, err := f.spaces.GetSpace(context.Background(), created.ID, owner)
	require.NoError(t, err, "a corrupt document must not fail the read")
	assert.Nil(t, got.LandingPageContent)
}

func TestDeleteSpace_GoneAfterwards(t *testing.T) {
	f := newFixture(t)
	owner := f.identity(t, "sensei@example.com", sec.RoleInstructor)
	created := f.create(t, owner, "Short Lived")

	require.NoError(t, f.spaces.DeleteSpace(context.Background(), created.ID, owner))

	_, err := f.spaces.GetSpace(context.Background(), created.ID, owner)
	require.Error(t, err)
	assert.Equal(t, "NOT_FOUND", apperr.As(err).Code)
}
