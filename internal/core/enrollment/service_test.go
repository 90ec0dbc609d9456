package enrollment_test

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/satomatashiki/manabiya/internal/core/enrollment"
	"github.com/satomatashiki/manabiya/internal/core/space"
	"github.com/satomatashiki/manabiya/internal/platform/apperr"
	"github.com/satomatashiki/manabiya/internal/platform/sec"
	"github.com/satomatashiki/manabiya/internal/platform/storage"
	"github.com/satomatashiki/manabiya/internal/users/auth"
	"github.com/satomatashiki/manabiya/pkg/pointer"
)

type fixture struct {
	enrollments *enrollment.Service
	spaces      *space.Service
	auth        *auth.Service
}

func newFixture(t *testing.T) fixture {
	t.Helper()

	path := filepath.Join(t.TempDir(), "enrollment.db")
	db, err := storage.OpenSQLite(path, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	discard := slog.New(slog.NewTextHandler(io.Discard, nil))
	spaceRepo := space.NewRepository(db, discard)

	return fixture{
		enrollments: enrollment.NewService(enrollment.NewRepository(db), spaceRepo, discard),
		spaces:      space.NewService(spaceRepo, discard),
		auth: auth.NewService(
			auth.NewProfileRepository(db),
			auth.NewSessionRepository(db),
			auth.NewResetTokenRepository(db),
			nil,
		),
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

func (f fixture) publishedSpace(t *testing.T, owner *sec.Identity, capacity *int64) *space.Space {
	t.Helper()

	created, err := f.spaces.CreateSpace(context.Background(), owner, space.CreateInput{
		Name: "Dojo " + t.Name(),
	})
	require.NoError(t, err)
	published, err := f.spaces.UpdateSpace(context.Background(), created.ID, owner, space.UpdateInput{
		Published:       pointer.To(true),
		StudentCapacity: capacity,
	})
	require.NoError(t, err)
	return published
}

func TestEnroll_DuplicateRejected(t *testing.T) {
	f := newFixture(t)
	owner := f.identity(t, "sensei@example.com", sec.RoleInstructor)
	student := f.identity(t, "gakusei@example.com", sec.RoleStudent)
	home := f.publishedSpace(t, owner, nil)

	enrolled, err := f.enrollments.Enroll(context.Background(), home.ID, student)
	require.NoError(t, err)
	assert.True(t, enrolled.Active())

	_, err = f.enrollments.Enroll(context.Background(), home.ID, student)
	require.Error(t, err)
	assert.Equal(t, "CONFLICT", apperr.As(err).Code)
}

func TestEnroll_UnpublishedSpaceHidden(t *testing.T) {
	f := newFixture(t)
	owner := f.identity(t, "sensei@example.com", sec.RoleInstructor)
	student := f.identity(t, "gakusei@example.com", sec.RoleStudent)

	draft, err := f.spaces.CreateSpace(context.Background(), owner, space.CreateInput{Name: "Hidden Dojo"})
	require.NoError(t, err)

	_, err = f.enrollments.Enroll(context.Background(), draft.ID, student)
	require.Error(t, err)
	assert.Equal(t, "NOT_FOUND", apperr.As(err).Code)
}

func TestEnroll_CapacityEnforced(t *testing.T) {
	f := newFixture(t)
	owner := f.identity(t, "sensei@example.com", sec.RoleInstructor)
	first := f.identity(t, "first@example.com", sec.RoleStudent)
	second := f.identity(t, "second@example.com", sec.RoleStudent)
	tiny := f.publishedSpace(t, owner, pointer.To(int64(1)))

	_, err := f.enrollments.Enroll(context.Background(), tiny.ID, first)
	require.NoError(t, err)

	_, err = f.enrollments.Enroll(context.Background(), tiny.ID, second)
	require.Error(t, err)
	assert.Equal(t, "UNPROCESSABLE", apperr.As(err).Code)
}

func TestUnenroll_ReenrollReactivates(t *testing.T) {
	f := newFixture(t)
	owner := f.identity(t, "sensei@example.com", sec.RoleInstructor)
	student := f.identity(t, "gakusei@example.com", sec.RoleStudent)
	home := f.publishedSpace(t, owner, nil)

	_, err := f.enrollments.Enroll(context.Background(), home.ID, student)
	require.NoError(t, err)
	require.NoError(t, f.enrollments.Unenroll(context.Background(), home.ID, student))

	ok, err := f.enrollments.IsEnrolled(context.Background(), home.ID, student.UserID)
	require.NoError(t, err)
	assert.False(t, ok)

	// Leaving is not permanent; the old row is reactivated.
	again, err := f.enrollments.Enroll(context.Background(), home.ID, student)
	require.NoError(t, err)
	assert.True(t, again.Active())

	ok, err = f.enrollments.IsEnrolled(context.Background(), home.ID, student.UserID)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestUnenroll_NeverEnrolledIsNoOp(t *testing.T) {
	f := newFixture(t)
	owner := f.identity(t, "sensei@example.com", sec.RoleInstructor)
	student := f.identity(t, "gakusei@example.com", sec.RoleStudent)
	home := f.publishedSpace(t, owner, nil)

	assert.NoError(t, f.enrollments.Unenroll(context.Background(), home.ID, student))
}

func TestListStudents_OwnerOnly(t *testing.T) {
	f := newFixture(t)
	owner := f.identity(t, "sensei@example.com", sec.RoleInstructor)
	student := f.identity(t, "gakusei@example.com", sec.RoleStudent)
	other := f.identity(t, "rival@example.com", sec.RoleInstructor)
	home := f.publishedSpace(t, owner, nil)

	_, err := f.enrollments.Enroll(context.Background(), home.ID, student)
	require.NoError(t, err)

	roster, total, err := f.enrollments.ListStudents(context.Background(), home.ID, owner, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, roster, 1)
	assert.Equal(t, student.UserID, roster[0].StudentID)
	assert.NotEmpty(t, roster[0].StudentEmail)

	_, _, err = f.enrollments.ListStudents(context.Background(), home.ID, other, 10, 0)
	require.Error(t, err)
	assert.Equal(t, "FORBIDDEN", apperr.As(err).Code)
}

func TestListOwn_JoinsSpaceDetails(t *testing.T) {
	f := newFixture(t)
	owner := f.identity(t, "sensei@example.com", sec.RoleInstructor)
	student := f.identity(t, "gakusei@example.com", sec.RoleStudent)
	home := f.publishedSpace(t, owner, nil)

	_, err := f.enrollments.Enroll(context.Background(), home.ID, student)
	require.NoError(t, err)

	mine, total, err := f.enrollments.ListOwn(context.Background(), student, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, mine, 1)
	assert.Equal(t, home.ID, mine[0].SpaceID)
	assert.Equal(t, home.Slug, mine[0].SpaceSlug)
}
