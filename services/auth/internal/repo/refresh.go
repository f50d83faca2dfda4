package repo

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Skotchmaster/rent_system/services/auth/internal/models"
)

const refreshTokenBytes = 32

var (
	ErrTokenNotFound  = errors.New("refresh token not found")
	ErrTokenExpired   = errors.New("refresh token expired")
	ErrTokenRevoked   = errors.New("refresh token revoked")
	ErrTokenReused    = errors.New("refresh token reused")
	ErrAlreadyRevoked = errors.New("refresh token already revoked")
)

// ReuseError reports a token that was presented again after it had been
// rotated. Its whole family has been revoked by the time it is returned.
type ReuseError struct {
	UserID   uuid.UUID
	FamilyID uuid.UUID
}

func (e *ReuseError) Error() string { return ErrTokenReused.Error() }

func (e *ReuseError) Is(target error) bool { return target == ErrTokenReused }

type IssuedRefresh struct {
	Token     string
	UserID    uuid.UUID
	FamilyID  uuid.UUID
	ExpiresAt time.Time
}

func HashToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

func newOpaqueToken() (string, error) {
	b := make([]byte, refreshTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("read random: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// IssueRefresh stores a fresh token for the user. A zero familyID starts a
// new family, as on login.
func (r *GormRepo) IssueRefresh(ctx context.Context, userID, familyID uuid.UUID) (*IssuedRefresh, error) {
	if familyID == uuid.Nil {
		familyID = uuid.New()
	}
	_, issued, err := r.issueRefresh(r.DB.WithContext(ctx), uuid.New(), userID, familyID)
	return issued, err
}

func (r *GormRepo) issueRefresh(db *gorm.DB, id, userID, familyID uuid.UUID) (*models.RefreshToken, *IssuedRefresh, error) {
	raw, err := newOpaqueToken()
	if err != nil {
		return nil, nil, err
	}

	now := r.now()
	row := models.RefreshToken{
		ID:        id,
		TokenHash: HashToken(raw),
		UserID:    userID,
		FamilyID:  familyID,
		CreatedAt: now,
		ExpiresAt: now.Add(r.refreshTTL()),
	}
	if err := db.Create(&row).Error; err != nil {
		return nil, nil, err
	}

	return &row, &IssuedRefresh{
		Token:     raw,
		UserID:    userID,
		FamilyID:  familyID,
		ExpiresAt: row.ExpiresAt,
	}, nil
}

// RotateRefresh consumes the presented token and issues its successor in one
// transaction. The compare-and-revoke update lets exactly one caller win.
// Presenting a token that was already rotated revokes its family.
func (r *GormRepo) RotateRefresh(ctx context.Context, presented string) (*IssuedRefresh, error) {
	hash := HashToken(presented)
	now := r.now()

	var (
		issued *IssuedRefresh
		reused *ReuseError
	)
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var cur models.RefreshToken
		if err := tx.Where("token_hash = ?", hash).First(&cur).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrTokenNotFound
			}
			return err
		}

		switch {
		case cur.Revoked && cur.RevokedReason == models.RevokedByRotation:
			reused = &ReuseError{UserID: cur.UserID, FamilyID: cur.FamilyID}
			return reused
		case cur.Revoked:
			return ErrTokenRevoked
		case !cur.Usable(now):
			return ErrTokenExpired
		}

		successorID := uuid.New()
		res := tx.Model(&models.RefreshToken{}).
			Where("id = ? AND revoked = ?", cur.ID, false).
			Updates(map[string]any{
				"revoked":        true,
				"revoked_at":     now,
				"revoked_reason": models.RevokedByRotation,
				"replaced_by_id": successorID,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected != 1 {
			return ErrTokenRevoked
		}

		_, next, err := r.issueRefresh(tx, successorID, cur.UserID, cur.FamilyID)
		if err != nil {
			return err
		}
		issued = next
		return nil
	})

	if reused != nil {
		if _, ferr := r.RevokeFamily(ctx, reused.FamilyID, models.RevokedByReuse); ferr != nil {
			return nil, fmt.Errorf("revoke family after reuse: %w", ferr)
		}
		return nil, reused
	}
	if err != nil {
		return nil, err
	}
	return issued, nil
}

// RevokeRefresh marks the token revoked. Unknown or already revoked tokens
// are not an error.
func (r *GormRepo) RevokeRefresh(ctx context.Context, presented, reason string) error {
	_, err := r.revokeWhere(r.DB.WithContext(ctx), reason, "token_hash = ?", HashToken(presented))
	return err
}

// RevokeRefreshStrict is RevokeRefresh that reports unknown and already
// revoked tokens.
func (r *GormRepo) RevokeRefreshStrict(ctx context.Context, presented, reason string) (*models.RefreshToken, error) {
	var cur models.RefreshToken
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("token_hash = ?", HashToken(presented)).First(&cur).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrTokenNotFound
			}
			return err
		}
		if cur.Revoked {
			return ErrAlreadyRevoked
		}

		now := r.now()
		res := tx.Model(&models.RefreshToken{}).
			Where("id = ? AND revoked = ?", cur.ID, false).
			Updates(map[string]any{
				"revoked":        true,
				"revoked_at":     now,
				"revoked_reason": reason,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected != 1 {
			return ErrAlreadyRevoked
		}
		cur.Revoked, cur.RevokedAt, cur.RevokedReason = true, &now, reason
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &cur, nil
}

func (r *GormRepo) RevokeFamily(ctx context.Context, familyID uuid.UUID, reason string) (int64, error) {
	return r.revokeWhere(r.DB.WithContext(ctx), reason, "family_id = ?", familyID)
}

func (r *GormRepo) RevokeAllForUser(ctx context.Context, userID uuid.UUID, reason string) (int64, error) {
	return r.revokeWhere(r.DB.WithContext(ctx), reason, "user_id = ?", userID)
}

// revokeWhere revokes every still active token matching the condition.
func (r *GormRepo) revokeWhere(db *gorm.DB, reason string, query string, args ...any) (int64, error) {
	res := db.Model(&models.RefreshToken{}).
		Where(query, args...).
		Where("revoked = ?", false).
		Updates(map[string]any{
			"revoked":        true,
			"revoked_at":     r.now(),
			"revoked_reason": reason,
		})
	return res.RowsAffected, res.Error
}

func (r *GormRepo) FindRefresh(ctx context.Context, presented string) (*models.RefreshToken, error) {
	var t models.RefreshToken
	if err := r.DB.WithContext(ctx).Where("token_hash = ?", HashToken(presented)).First(&t).Error; err != nil {
		return nil, err
	}
	return &t, nil
}
