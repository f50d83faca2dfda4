package repo

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Skotchmaster/rent_system/pkg/db/dbtest"
	pkghash "github.com/Skotchmaster/rent_system/pkg/hash"
	"github.com/Skotchmaster/rent_system/services/auth/internal/models"
)

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newTestRepo(t *testing.T) (*GormRepo, *clock) {
	t.Helper()
	clk := &clock{now: time.Date(2025, 7, 1, 12, 0, 0, 0, time.UTC)}
	return &GormRepo{
		DB:         dbtest.SQLite(t, models.All()...),
		RefreshTTL: 7 * 24 * time.Hour,
		Now:        clk.Now,
	}, clk
}

func TestIssueRefresh_StoresOnlyHash(t *testing.T) {
	t.Parallel()

	r, clk := newTestRepo(t)
	ctx := context.Background()
	userID := uuid.New()

	issued, err := r.IssueRefresh(ctx, userID, uuid.Nil)
	require.NoError(t, err)
	assert.Len(t, issued.Token, 43)
	assert.NotEqual(t, uuid.Nil, issued.FamilyID)
	assert.WithinDuration(t, clk.Now().Add(7*24*time.Hour), issued.ExpiresAt, time.Microsecond)

	var count int64
	require.NoError(t, r.DB.Model(&models.RefreshToken{}).Where("token_hash = ?", issued.Token).Count(&count).Error)
	assert.Zero(t, count, "raw token must not be stored")

	row, err := r.FindRefresh(ctx, issued.Token)
	require.NoError(t, err)
	assert.Equal(t, HashToken(issued.Token), row.TokenHash)
	assert.Equal(t, userID, row.UserID)
	assert.True(t, row.Usable(clk.Now()))
}

func TestRotateRefresh_RoundTripAndSingleUse(t *testing.T) {
	t.Parallel()

	r, _ := newTestRepo(t)
	ctx := context.Background()
	userID := uuid.New()

	first, err := r.IssueRefresh(ctx, userID, uuid.Nil)
	require.NoError(t, err)

	second, err := r.RotateRefresh(ctx, first.Token)
	require.NoError(t, err)
	assert.Equal(t, userID, second.UserID)
	assert.Equal(t, first.FamilyID, second.FamilyID)
	assert.NotEqual(t, first.Token, second.Token)

	old, err := r.FindRefresh(ctx, first.Token)
	require.NoError(t, err)
	assert.True(t, old.Revoked)
	assert.Equal(t, models.RevokedByRotation, old.RevokedReason)
	require.NotNil(t, old.ReplacedByID)

	successor, err := r.FindRefresh(ctx, second.Token)
	require.NoError(t, err)
	assert.Equal(t, *old.ReplacedByID, successor.ID)

	third, err := r.RotateRefresh(ctx, second.Token)
	require.NoError(t, err)
	assert.NotEmpty(t, third.Token)
}

func TestRotateRefresh_ReplayRevokesFamily(t *testing.T) {
	t.Parallel()

	r, _ := newTestRepo(t)
	ctx := context.Background()
	userID := uuid.New()

	first, err := r.IssueRefresh(ctx, userID, uuid.Nil)
	require.NoError(t, err)
	other, err := r.IssueRefresh(ctx, userID, uuid.Nil)
	require.NoError(t, err)

	second, err := r.RotateRefresh(ctx, first.Token)
	require.NoError(t, err)

	_, err = r.RotateRefresh(ctx, first.Token)
	require.ErrorIs(t, err, ErrTokenReused)
	var reuse *ReuseError
	require.True(t, errors.As(err, &reuse))
	assert.Equal(t, userID, reuse.UserID)
	assert.Equal(t, first.FamilyID, reuse.FamilyID)

	_, err = r.RotateRefresh(ctx, second.Token)
	assert.ErrorIs(t, err, ErrTokenRevoked, "successor is revoked with the family")

	row, err := r.FindRefresh(ctx, second.Token)
	require.NoError(t, err)
	assert.Equal(t, models.RevokedByReuse, row.RevokedReason)

	_, err = r.RotateRefresh(ctx, other.Token)
	assert.NoError(t, err, "other sessions survive")
}

func TestRotateRefresh_Rejections(t *testing.T) {
	t.Parallel()

	r, clk := newTestRepo(t)
	ctx := context.Background()

	_, err := r.RotateRefresh(ctx, "never-issued")
	assert.ErrorIs(t, err, ErrTokenNotFound)

	loggedOut, err := r.IssueRefresh(ctx, uuid.New(), uuid.Nil)
	require.NoError(t, err)
	require.NoError(t, r.RevokeRefresh(ctx, loggedOut.Token, models.RevokedByLogout))
	_, err = r.RotateRefresh(ctx, loggedOut.Token)
	assert.ErrorIs(t, err, ErrTokenRevoked)

	expiring, err := r.IssueRefresh(ctx, uuid.New(), uuid.Nil)
	require.NoError(t, err)
	clk.Advance(7 * 24 * time.Hour)
	_, err = r.RotateRefresh(ctx, expiring.Token)
	assert.ErrorIs(t, err, ErrTokenExpired)

	row, err := r.FindRefresh(ctx, expiring.Token)
	require.NoError(t, err)
	assert.False(t, row.Revoked, "rejected rotation leaves the row alone")
}

func TestRotateRefresh_ConcurrentExactlyOneWins(t *testing.T) {
	t.Parallel()

	r, _ := newTestRepo(t)
	ctx := context.Background()

	issued, err := r.IssueRefresh(ctx, uuid.New(), uuid.Nil)
	require.NoError(t, err)

	const workers = 8
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		wins int
	)
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := r.RotateRefresh(ctx, issued.Token); err == nil {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, wins)

	var successors int64
	require.NoError(t, r.DB.Model(&models.RefreshToken{}).Where("family_id = ?", issued.FamilyID).Count(&successors).Error)
	assert.EqualValues(t, 2, successors)
}

func TestRevokeRefresh_IdempotentAndStrict(t *testing.T) {
	t.Parallel()

	r, _ := newTestRepo(t)
	ctx := context.Background()

	issued, err := r.IssueRefresh(ctx, uuid.New(), uuid.Nil)
	require.NoError(t, err)

	require.NoError(t, r.RevokeRefresh(ctx, issued.Token, models.RevokedByLogout))
	require.NoError(t, r.RevokeRefresh(ctx, issued.Token, models.RevokedByLogout))
	require.NoError(t, r.RevokeRefresh(ctx, "unknown", models.RevokedByLogout))

	_, err = r.RevokeRefreshStrict(ctx, issued.Token, models.RevokedByUser)
	assert.ErrorIs(t, err, ErrAlreadyRevoked)

	_, err = r.RevokeRefreshStrict(ctx, "unknown", models.RevokedByUser)
	assert.ErrorIs(t, err, ErrTokenNotFound)

	fresh, err := r.IssueRefresh(ctx, uuid.New(), uuid.Nil)
	require.NoError(t, err)
	row, err := r.RevokeRefreshStrict(ctx, fresh.Token, models.RevokedByUser)
	require.NoError(t, err)
	assert.True(t, row.Revoked)
	assert.Equal(t, models.RevokedByUser, row.RevokedReason)
}

func TestRevokeAllForUser(t *testing.T) {
	t.Parallel()

	r, _ := newTestRepo(t)
	ctx := context.Background()
	userID, otherID := uuid.New(), uuid.New()

	for range 3 {
		_, err := r.IssueRefresh(ctx, userID, uuid.Nil)
		require.NoError(t, err)
	}
	keep, err := r.IssueRefresh(ctx, otherID, uuid.Nil)
	require.NoError(t, err)

	n, err := r.RevokeAllForUser(ctx, userID, models.RevokedByLogoutAll)
	require.NoError(t, err)
	assert.EqualValues(t, 3, n)

	n, err = r.RevokeAllForUser(ctx, userID, models.RevokedByLogoutAll)
	require.NoError(t, err)
	assert.Zero(t, n)

	row, err := r.FindRefresh(ctx, keep.Token)
	require.NoError(t, err)
	assert.False(t, row.Revoked)
}

func TestUsers_CreateAndCredentials(t *testing.T) {
	t.Parallel()

	r, _ := newTestRepo(t)
	ctx := context.Background()

	hash, err := pkghash.HashPassword("Secret123")
	require.NoError(t, err)

	u := &models.User{FirstName: "Ann", LastName: "Lee", Email: " Ann@Example.com ", PasswordHash: hash, Roles: models.Roles{"renter"}}
	require.NoError(t, r.CreateUserIfNotExists(ctx, u))
	assert.Equal(t, "ann@example.com", u.Email)

	dup := &models.User{FirstName: "A", LastName: "B", Email: "ANN@example.com", PasswordHash: hash, Roles: models.Roles{"owner"}}
	assert.ErrorIs(t, r.CreateUserIfNotExists(ctx, dup), ErrUserAlreadyExist)

	got, err := r.CheckCredentials(ctx, "ann@EXAMPLE.com", "Secret123")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
	assert.Equal(t, models.Roles{"renter"}, got.Roles)

	_, err = r.CheckCredentials(ctx, "ann@example.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = r.CheckCredentials(ctx, "nobody@example.com", "Secret123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	byID, err := r.GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ann Lee", byID.FullName())
}

func TestUpdateUser(t *testing.T) {
	t.Parallel()

	r, clk := newTestRepo(t)
	ctx := context.Background()

	hash, err := pkghash.HashPassword("Secret123")
	require.NoError(t, err)
	u := &models.User{FirstName: "Ann", LastName: "Lee", Email: "ann@example.com", PasswordHash: hash, Roles: models.Roles{"renter"}}
	require.NoError(t, r.CreateUserIfNotExists(ctx, u))

	session, err := r.IssueRefresh(ctx, u.ID, uuid.Nil)
	require.NoError(t, err)

	clk.Advance(time.Minute)
	name := "Anna"
	got, err := r.UpdateUser(ctx, u.ID, UserChanges{FirstName: &name})
	require.NoError(t, err)
	assert.Equal(t, "Anna", got.FirstName)
	assert.Equal(t, "Lee", got.LastName)
	assert.Equal(t, hash, got.PasswordHash)

	row, err := r.FindRefresh(ctx, session.Token)
	require.NoError(t, err)
	assert.False(t, row.Revoked, "a name change keeps sessions")

	newHash, err := pkghash.HashPassword("Another123")
	require.NoError(t, err)
	_, err = r.UpdateUser(ctx, u.ID, UserChanges{PasswordHash: &newHash})
	require.NoError(t, err)

	row, err = r.FindRefresh(ctx, session.Token)
	require.NoError(t, err)
	assert.True(t, row.Revoked)
	assert.Equal(t, models.RevokedByPasswordChange, row.RevokedReason)

	_, err = r.CheckCredentials(ctx, "ann@example.com", "Another123")
	require.NoError(t, err)

	_, err = r.UpdateUser(ctx, uuid.New(), UserChanges{FirstName: &name})
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestDeleteUser(t *testing.T) {
	t.Parallel()

	r, _ := newTestRepo(t)
	ctx := context.Background()

	u := &models.User{FirstName: "Ann", LastName: "Lee", Email: "ann@example.com", PasswordHash: "x", Roles: models.Roles{"owner"}}
	require.NoError(t, r.CreateUserIfNotExists(ctx, u))
	session, err := r.IssueRefresh(ctx, u.ID, uuid.Nil)
	require.NoError(t, err)

	require.NoError(t, r.DeleteUser(ctx, u.ID))

	_, err = r.GetUserByID(ctx, u.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	row, err := r.FindRefresh(ctx, session.Token)
	require.NoError(t, err)
	assert.Equal(t, models.RevokedByAccountDeleted, row.RevokedReason)

	assert.ErrorIs(t, r.DeleteUser(ctx, u.ID), gorm.ErrRecordNotFound)
}

func TestTranslateUserErr(t *testing.T) {
	t.Parallel()

	restrict := fmt.Errorf("delete: %w", &pgconn.PgError{Code: "23503"})
	assert.ErrorIs(t, translateUserErr(restrict), ErrUserHasDependents)
	assert.ErrorIs(t, translateUserErr(&pgconn.PgError{Code: "23505"}), ErrUserAlreadyExist)

	other := errors.New("boom")
	assert.Same(t, other, translateUserErr(other))
}
