package repo

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	pkghash "github.com/Skotchmaster/rent_system/pkg/hash"
	"github.com/Skotchmaster/rent_system/services/auth/internal/models"
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserAlreadyExist   = errors.New("user already exist")
	ErrUserHasDependents  = errors.New("user is still referenced by bookings or reviews")
)

// UserChanges lists the profile columns to overwrite. Nil fields are left
// untouched.
type UserChanges struct {
	FirstName    *string
	LastName     *string
	PasswordHash *string
}

// CheckCredentials returns the user when email and password match.
func (r *GormRepo) CheckCredentials(ctx context.Context, email, password string) (*models.User, error) {
	var user models.User
	if err := r.DB.WithContext(ctx).Where("email = ?", normalizeEmail(email)).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !pkghash.CheckPassword(user.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}
	return &user, nil
}

func (r *GormRepo) CreateUserIfNotExists(ctx context.Context, u *models.User) error {
	u.Email = normalizeEmail(u.Email)
	tx := r.DB.WithContext(ctx).Where("email = ?", u.Email).FirstOrCreate(u)
	if tx.Error != nil {
		return translateUserErr(tx.Error)
	}
	if tx.RowsAffected == 0 {
		return ErrUserAlreadyExist
	}
	return nil
}

func (r *GormRepo) GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := r.DB.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateUser applies changes to the user and returns the stored row. A new
// password hash revokes every refresh token of the user in the same
// transaction.
func (r *GormRepo) UpdateUser(ctx context.Context, id uuid.UUID, changes UserChanges) (*models.User, error) {
	var user models.User
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		cols := map[string]any{"updated_at": r.now()}
		if changes.FirstName != nil {
			cols["first_name"] = *changes.FirstName
		}
		if changes.LastName != nil {
			cols["last_name"] = *changes.LastName
		}
		if changes.PasswordHash != nil {
			cols["password_hash"] = *changes.PasswordHash
		}

		res := tx.Model(&models.User{}).Where("id = ?", id).Updates(cols)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}

		if changes.PasswordHash != nil {
			if _, err := r.revokeWhere(tx, models.RevokedByPasswordChange, "user_id = ?", id); err != nil {
				return err
			}
		}
		return tx.Where("id = ?", id).First(&user).Error
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// DeleteUser revokes the user's refresh tokens and removes the user. Rows
// that reference the user with ON DELETE RESTRICT make it fail with
// ErrUserHasDependents and nothing changes.
func (r *GormRepo) DeleteUser(ctx context.Context, id uuid.UUID) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := r.revokeWhere(tx, models.RevokedByAccountDeleted, "user_id = ?", id); err != nil {
			return err
		}
		res := tx.Where("id = ?", id).Delete(&models.User{})
		if res.Error != nil {
			return translateUserErr(res.Error)
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

func translateUserErr(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return ErrUserAlreadyExist
		case pgForeignKeyViolation:
			return ErrUserHasDependents
		}
	}
	return err
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
