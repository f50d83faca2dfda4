package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Skotchmaster/rent_system/pkg/logging"
	"github.com/Skotchmaster/rent_system/pkg/tokens"
	"github.com/Skotchmaster/rent_system/services/rental/internal/models"
	"github.com/Skotchmaster/rent_system/services/rental/internal/repo"
	"github.com/Skotchmaster/rent_system/services/rental/internal/transport"
)

const (
	minRating = 1
	maxRating = 5
)

type ReviewService struct {
	Repo *repo.GormRepo
}

func validRating(r float64) bool { return r >= minRating && r <= maxRating }

func (s *ReviewService) Create(ctx context.Context, who tokens.Identity, propertyID uuid.UUID, req transport.CreateReviewRequest) (*models.Review, error) {
	if !validRating(req.Rating) {
		return nil, fmt.Errorf("%w: rating must be between %d and %d", ErrValidation, minRating, maxRating)
	}

	p, err := s.Repo.GetProperty(ctx, propertyID)
	if err != nil {
		return nil, storageErr("property", err)
	}
	if p.OwnerID == who.ID {
		return nil, fmt.Errorf("%w: cannot review own property", ErrForbidden)
	}

	rv := models.Review{
		PropertyID: propertyID,
		UserID:     who.ID,
		Rating:     req.Rating,
		Comment:    req.Comment,
	}
	if err := s.Repo.CreateReview(ctx, &rv); err != nil {
		return nil, storageErr("create review", err)
	}

	logging.FromContext(ctx).Info("review_created", "review_id", rv.ID.String(), "property_id", propertyID.String())
	return &rv, nil
}

func (s *ReviewService) Patch(ctx context.Context, who tokens.Identity, id uuid.UUID, req transport.PatchReviewRequest) (*models.Review, error) {
	rv, err := s.authored(ctx, who, id)
	if err != nil {
		return nil, err
	}

	if req.Rating != nil {
		if !validRating(*req.Rating) {
			return nil, fmt.Errorf("%w: rating must be between %d and %d", ErrValidation, minRating, maxRating)
		}
		rv.Rating = *req.Rating
	}
	if req.Comment != nil {
		rv.Comment = *req.Comment
	}
	now := time.Now().UTC()
	rv.ModifiedAt = &now

	if err := s.Repo.SaveReview(ctx, rv); err != nil {
		return nil, storageErr("save review", err)
	}
	return rv, nil
}

func (s *ReviewService) Delete(ctx context.Context, who tokens.Identity, id uuid.UUID) error {
	if _, err := s.authored(ctx, who, id); err != nil {
		return err
	}
	if err := s.Repo.DeleteReview(ctx, id); err != nil {
		return storageErr("delete review", err)
	}
	return nil
}

func (s *ReviewService) ListByProperty(ctx context.Context, propertyID uuid.UUID) ([]models.Review, error) {
	if _, err := s.Repo.GetProperty(ctx, propertyID); err != nil {
		return nil, storageErr("property", err)
	}
	items, err := s.Repo.ReviewsByProperty(ctx, propertyID)
	if err != nil {
		return nil, storageErr("list reviews", err)
	}
	return items, nil
}

func (s *ReviewService) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Review, error) {
	items, err := s.Repo.ReviewsByUser(ctx, userID)
	if err != nil {
		return nil, storageErr("list reviews", err)
	}
	return items, nil
}

func (s *ReviewService) authored(ctx context.Context, who tokens.Identity, id uuid.UUID) (*models.Review, error) {
	rv, err := s.Repo.GetReview(ctx, id)
	if err != nil {
		return nil, storageErr("review", err)
	}
	if rv.UserID != who.ID && !who.HasRole(RoleAdmin) {
		return nil, fmt.Errorf("%w: not your review", ErrForbidden)
	}
	return rv, nil
}
