package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Skotchmaster/rent_system/pkg/events"
	pkghash "github.com/Skotchmaster/rent_system/pkg/hash"
	"github.com/Skotchmaster/rent_system/pkg/logging"
	"github.com/Skotchmaster/rent_system/pkg/tokens"
	"github.com/Skotchmaster/rent_system/services/auth/internal/models"
	"github.com/Skotchmaster/rent_system/services/auth/internal/repo"
	"github.com/Skotchmaster/rent_system/services/auth/internal/transport"
)

var DefaultRoles = []string{"renter", "owner", "admin"}

type AuthService struct {
	Repo         *repo.GormRepo
	Tokens       *tokens.Issuer
	Events       events.Publisher
	AllowedRoles []string
}

type LoginResult struct {
	AccessToken  string
	AccessExp    time.Time
	RefreshToken string
	RefreshExp   time.Time
	UserID       uuid.UUID
}

func (h *AuthService) Register(ctx context.Context, req transport.RegisterRequest) (*models.User, error) {
	l := logging.FromContext(ctx).With("svc", "auth.register")

	role := strings.ToLower(strings.TrimSpace(req.Role))
	email := strings.ToLower(strings.TrimSpace(req.Email))
	switch {
	case email == "" || req.Password == "":
		return nil, fmt.Errorf("%w: email and password are required", ErrValidation)
	case strings.TrimSpace(req.FirstName) == "" || strings.TrimSpace(req.LastName) == "":
		return nil, fmt.Errorf("%w: first and last name are required", ErrValidation)
	case !slices.Contains(h.allowedRoles(), role):
		return nil, fmt.Errorf("%w: role %q is not allowed", ErrValidation, req.Role)
	}

	pwHash, err := pkghash.HashPassword(req.Password)
	if err != nil {
		l.Error("register_error", "status", 500, "reason", "cannot hash the password", "error", err)
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := models.User{
		FirstName:    strings.TrimSpace(req.FirstName),
		LastName:     strings.TrimSpace(req.LastName),
		Email:        email,
		PasswordHash: pwHash,
		Roles:        models.Roles{role},
	}
	if err := h.Repo.CreateUserIfNotExists(ctx, &user); err != nil {
		if errors.Is(err, repo.ErrUserAlreadyExist) {
			l.Warn("register_error", "status", 409, "reason", "user already exist")
			return nil, ErrConflict
		}
		l.Error("register_error", "status", 503, "error", err)
		return nil, fmt.Errorf("%w: create user: %w", ErrStorage, err)
	}

	l.Info("user_registered", "user_id", user.ID.String(), "role", role)
	h.publish(ctx, events.UserEvent{Type: events.UserRegistered, UserID: user.ID})
	return &user, nil
}

func (h *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	l := logging.FromContext(ctx).With("svc", "auth.login")

	if strings.TrimSpace(email) == "" || password == "" {
		return nil, fmt.Errorf("%w: email and password are required", ErrValidation)
	}

	user, err := h.Repo.CheckCredentials(ctx, email, password)
	if err != nil {
		if errors.Is(err, repo.ErrInvalidCredentials) {
			l.Warn("login_failed", "status", 401, "reason", "invalid email or password")
			return nil, ErrInvalidCredentials
		}
		l.Error("login_failed", "status", 503, "error", err)
		return nil, fmt.Errorf("%w: check credentials: %w", ErrStorage, err)
	}

	access, accessExp, err := h.Tokens.Issue(identityOf(user))
	if err != nil {
		l.Error("login_failed", "status", 500, "reason", "cannot sign access token", "error", err)
		return nil, err
	}

	refresh, err := h.Repo.IssueRefresh(ctx, user.ID, uuid.Nil)
	if err != nil {
		l.Error("login_failed", "status", 503, "reason", "cannot store refresh token", "error", err)
		return nil, fmt.Errorf("%w: issue refresh: %w", ErrStorage, err)
	}

	l.Info("login_successful", "user_id", user.ID.String())
	h.publish(ctx, events.UserEvent{Type: events.UserLoggedIn, UserID: user.ID, FamilyID: refresh.FamilyID})

	return &LoginResult{
		AccessToken:  access,
		AccessExp:    accessExp,
		RefreshToken: refresh.Token,
		RefreshExp:   refresh.ExpiresAt,
		UserID:       user.ID,
	}, nil
}

// Refresh rotates the presented refresh token and mints a new access token
// for its owner. Every rejection looks the same to the caller.
func (h *AuthService) Refresh(ctx context.Context, refreshToken string) (*LoginResult, error) {
	l := logging.FromContext(ctx).With("svc", "auth.refresh")

	if refreshToken == "" {
		return nil, ErrInvalidRefreshToken
	}

	next, err := h.Repo.RotateRefresh(ctx, refreshToken)
	if err != nil {
		var reuse *repo.ReuseError
		switch {
		case errors.As(err, &reuse):
			l.Warn("refresh_reuse_detected", "status", 401, "user_id", reuse.UserID.String(), "family_id", reuse.FamilyID.String())
			h.publish(ctx, events.UserEvent{Type: events.RefreshReuseDetected, UserID: reuse.UserID, FamilyID: reuse.FamilyID})
			return nil, ErrInvalidRefreshToken
		case errors.Is(err, repo.ErrTokenNotFound), errors.Is(err, repo.ErrTokenExpired), errors.Is(err, repo.ErrTokenRevoked):
			l.Warn("refresh_rejected", "status", 401, "reason", err.Error())
			return nil, ErrInvalidRefreshToken
		default:
			l.Error("refresh_failed", "status", 503, "error", err)
			return nil, fmt.Errorf("%w: rotate refresh: %w", ErrStorage, err)
		}
	}

	user, err := h.Repo.GetUserByID(ctx, next.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			l.Warn("refresh_rejected", "status", 401, "reason", "user is gone")
			return nil, ErrInvalidRefreshToken
		}
		l.Error("refresh_failed", "status", 503, "error", err)
		return nil, fmt.Errorf("%w: load user: %w", ErrStorage, err)
	}

	access, accessExp, err := h.Tokens.Issue(identityOf(user))
	if err != nil {
		l.Error("refresh_failed", "status", 500, "reason", "cannot sign access token", "error", err)
		return nil, err
	}

	l.Info("refresh_successful", "user_id", user.ID.String())
	return &LoginResult{
		AccessToken:  access,
		AccessExp:    accessExp,
		RefreshToken: next.Token,
		RefreshExp:   next.ExpiresAt,
		UserID:       user.ID,
	}, nil
}

// LogOut revokes the token if it is still active. Unknown and already
// revoked tokens are fine.
func (h *AuthService) LogOut(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}
	if err := h.Repo.RevokeRefresh(ctx, refreshToken, models.RevokedByLogout); err != nil {
		logging.FromContext(ctx).Error("logout_failed", "svc", "auth.logout", "error", err)
		return fmt.Errorf("%w: revoke refresh: %w", ErrStorage, err)
	}
	return nil
}

func (h *AuthService) Revoke(ctx context.Context, refreshToken string) error {
	l := logging.FromContext(ctx).With("svc", "auth.revoke")

	if refreshToken == "" {
		return fmt.Errorf("%w: refresh_token is required", ErrValidation)
	}

	row, err := h.Repo.RevokeRefreshStrict(ctx, refreshToken, models.RevokedByUser)
	switch {
	case errors.Is(err, repo.ErrTokenNotFound):
		return ErrTokenNotFound
	case errors.Is(err, repo.ErrAlreadyRevoked):
		return ErrAlreadyRevoked
	case err != nil:
		l.Error("revoke_failed", "status", 503, "error", err)
		return fmt.Errorf("%w: revoke refresh: %w", ErrStorage, err)
	}

	l.Info("refresh_revoked", "user_id", row.UserID.String(), "family_id", row.FamilyID.String())
	return nil
}

func (h *AuthService) LogOutAll(ctx context.Context, who tokens.Identity) (int64, error) {
	l := logging.FromContext(ctx).With("svc", "auth.logout_all", "user_id", who.ID.String())

	n, err := h.Repo.RevokeAllForUser(ctx, who.ID, models.RevokedByLogoutAll)
	if err != nil {
		l.Error("logout_all_failed", "status", 503, "error", err)
		return 0, fmt.Errorf("%w: revoke all: %w", ErrStorage, err)
	}

	l.Info("logout_all", "revoked", n)
	h.publish(ctx, events.UserEvent{Type: events.UserLoggedOutAll, UserID: who.ID})
	return n, nil
}

func (h *AuthService) Me(ctx context.Context, who tokens.Identity) (*models.User, error) {
	user, err := h.Repo.GetUserByID(ctx, who.ID)
	if err != nil {
		return nil, h.userErr(ctx, "me_failed", "load user", err)
	}
	return user, nil
}

// UpdateProfile changes the caller's names and password. A new password is
// hashed before it is stored and ends every session of the user.
func (h *AuthService) UpdateProfile(ctx context.Context, who tokens.Identity, req transport.UpdateProfileRequest) (*models.User, error) {
	l := logging.FromContext(ctx).With("svc", "auth.update_profile", "user_id", who.ID.String())

	var changes repo.UserChanges
	if req.FirstName != nil {
		v := strings.TrimSpace(*req.FirstName)
		if v == "" {
			return nil, fmt.Errorf("%w: first name cannot be empty", ErrValidation)
		}
		changes.FirstName = &v
	}
	if req.LastName != nil {
		v := strings.TrimSpace(*req.LastName)
		if v == "" {
			return nil, fmt.Errorf("%w: last name cannot be empty", ErrValidation)
		}
		changes.LastName = &v
	}
	if req.Password != nil {
		if *req.Password == "" {
			return nil, fmt.Errorf("%w: password cannot be empty", ErrValidation)
		}
		pwHash, err := pkghash.HashPassword(*req.Password)
		if err != nil {
			l.Error("update_profile_failed", "status", 500, "reason", "cannot hash the password", "error", err)
			return nil, fmt.Errorf("hash password: %w", err)
		}
		changes.PasswordHash = &pwHash
	}
	if changes == (repo.UserChanges{}) {
		return nil, fmt.Errorf("%w: nothing to update", ErrValidation)
	}

	user, err := h.Repo.UpdateUser(ctx, who.ID, changes)
	if err != nil {
		return nil, h.userErr(ctx, "update_profile_failed", "update user", err)
	}

	l.Info("profile_updated", "password_changed", changes.PasswordHash != nil)
	return user, nil
}

// DeleteAccount removes the caller. Accounts still referenced by bookings or
// reviews are kept and ErrHasDependents is returned.
func (h *AuthService) DeleteAccount(ctx context.Context, who tokens.Identity) error {
	l := logging.FromContext(ctx).With("svc", "auth.delete_account", "user_id", who.ID.String())

	if err := h.Repo.DeleteUser(ctx, who.ID); err != nil {
		if errors.Is(err, repo.ErrUserHasDependents) {
			l.Warn("delete_account_failed", "status", 409, "reason", err.Error())
			return ErrHasDependents
		}
		return h.userErr(ctx, "delete_account_failed", "delete user", err)
	}

	l.Info("account_deleted")
	h.publish(ctx, events.UserEvent{Type: events.UserDeleted, UserID: who.ID})
	return nil
}

func (h *AuthService) userErr(ctx context.Context, event, what string, err error) error {
	l := logging.FromContext(ctx)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		l.Warn(event, "status", 404, "reason", "user not found")
		return ErrUserNotFound
	}
	l.Error(event, "status", 503, "error", err)
	return fmt.Errorf("%w: %s: %w", ErrStorage, what, err)
}

func (h *AuthService) allowedRoles() []string {
	if len(h.AllowedRoles) == 0 {
		return DefaultRoles
	}
	return h.AllowedRoles
}

func (h *AuthService) publish(ctx context.Context, ev events.UserEvent) {
	if h.Events == nil {
		return
	}
	ev.OccurredAt = time.Now().UTC()
	if err := h.Events.PublishEvent(ctx, events.TopicUserEvents, ev.UserID.String(), ev); err != nil {
		logging.FromContext(ctx).Warn("publish_user_event_failed", "type", ev.Type, "error", err)
	}
}

func identityOf(u *models.User) tokens.Identity {
	return tokens.Identity{
		ID:       u.ID,
		Email:    u.Email,
		FullName: u.FullName(),
		Roles:    slices.Clone([]string(u.Roles)),
	}
}
