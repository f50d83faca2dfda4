package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/Skotchmaster/rent_system/pkg/logging"
	"github.com/Skotchmaster/rent_system/pkg/tokens"
	"github.com/Skotchmaster/rent_system/services/rental/internal/models"
	"github.com/Skotchmaster/rent_system/services/rental/internal/repo"
	"github.com/Skotchmaster/rent_system/services/rental/internal/search"
	"github.com/Skotchmaster/rent_system/services/rental/internal/transport"
)

type PropertyService struct {
	Repo *repo.GormRepo
	// Search is optional; without it search falls back to SQL.
	Search search.Index
}

func (s *PropertyService) Create(ctx context.Context, who tokens.Identity, req transport.CreatePropertyRequest) (*models.Property, error) {
	l := logging.FromContext(ctx).With("svc", "property.create")

	title, location := strings.TrimSpace(req.Title), strings.TrimSpace(req.Location)
	if title == "" || location == "" {
		return nil, fmt.Errorf("%w: title and location required", ErrValidation)
	}
	if req.PricePerNight < 0 {
		return nil, fmt.Errorf("%w: price cannot be negative", ErrValidation)
	}

	p := models.Property{
		OwnerID:       who.ID,
		Title:         title,
		Description:   req.Description,
		Location:      location,
		PricePerNight: req.PricePerNight,
	}
	if err := s.Repo.CreateProperty(ctx, &p); err != nil {
		return nil, storageErr("create property", err)
	}

	l.Info("property_created", "property_id", p.ID.String())
	s.index(ctx, &p)
	return &p, nil
}

func (s *PropertyService) Get(ctx context.Context, id uuid.UUID) (*transport.PropertyDetails, error) {
	p, err := s.Repo.GetProperty(ctx, id)
	if err != nil {
		return nil, storageErr("property", err)
	}
	st, err := s.Repo.PropertyStats(ctx, id)
	if err != nil {
		return nil, storageErr("property stats", err)
	}
	return &transport.PropertyDetails{
		Property:      *p,
		BookingCount:  st.BookingCount,
		AverageRating: st.AverageRating,
	}, nil
}

func (s *PropertyService) OwnerStats(ctx context.Context, who tokens.Identity) (*transport.OwnerStats, error) {
	st, err := s.Repo.OwnerStats(ctx, who.ID)
	if err != nil {
		return nil, storageErr("owner stats", err)
	}
	return &transport.OwnerStats{
		TotalProperties: st.TotalProperties,
		TotalBookings:   st.TotalBookings,
		TotalReviews:    st.TotalReviews,
	}, nil
}

func (s *PropertyService) List(ctx context.Context, offset, limit int) (int64, []models.Property, error) {
	total, items, err := s.Repo.ListProperties(ctx, offset, limit)
	if err != nil {
		return 0, nil, storageErr("list properties", err)
	}
	return total, items, nil
}

func (s *PropertyService) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.Property, error) {
	items, err := s.Repo.PropertiesByOwner(ctx, ownerID)
	if err != nil {
		return nil, storageErr("list properties", err)
	}
	return items, nil
}

func (s *PropertyService) SearchProperties(ctx context.Context, q string, offset, limit int) (int64, []models.Property, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return 0, nil, fmt.Errorf("%w: query required", ErrValidation)
	}

	if s.Search != nil {
		total, ids, err := s.Search.SearchProperties(ctx, q, offset, limit)
		if err == nil {
			items, err := s.Repo.PropertiesByIDs(ctx, ids)
			if err != nil {
				return 0, nil, storageErr("load properties", err)
			}
			return total, items, nil
		}
		logging.FromContext(ctx).Warn("search_index_failed", "reason", "falling back to sql", "error", err)
	}

	total, items, err := s.Repo.SearchProperties(ctx, q, offset, limit)
	if err != nil {
		return 0, nil, storageErr("search properties", err)
	}
	return total, items, nil
}

func (s *PropertyService) Patch(ctx context.Context, who tokens.Identity, id uuid.UUID, req transport.PatchPropertyRequest) (*models.Property, error) {
	p, err := s.owned(ctx, who, id)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		if strings.TrimSpace(*req.Title) == "" {
			return nil, fmt.Errorf("%w: title cannot be empty", ErrValidation)
		}
		p.Title = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		p.Description = *req.Description
	}
	if req.Location != nil {
		if strings.TrimSpace(*req.Location) == "" {
			return nil, fmt.Errorf("%w: location cannot be empty", ErrValidation)
		}
		p.Location = strings.TrimSpace(*req.Location)
	}
	if req.PricePerNight != nil {
		if *req.PricePerNight < 0 {
			return nil, fmt.Errorf("%w: price cannot be negative", ErrValidation)
		}
		p.PricePerNight = *req.PricePerNight
	}

	if err := s.Repo.SaveProperty(ctx, p); err != nil {
		return nil, storageErr("save property", err)
	}
	s.index(ctx, p)
	return p, nil
}

func (s *PropertyService) Delete(ctx context.Context, who tokens.Identity, id uuid.UUID) error {
	if _, err := s.owned(ctx, who, id); err != nil {
		return err
	}
	if err := s.Repo.DeleteProperty(ctx, id); err != nil {
		return storageErr("delete property", err)
	}

	if s.Search != nil {
		if err := s.Search.DeleteProperty(ctx, id); err != nil {
			logging.FromContext(ctx).Warn("search_unindex_failed", "property_id", id.String(), "error", err)
		}
	}
	return nil
}

// owned loads a property the caller may modify: its owner or an admin.
func (s *PropertyService) owned(ctx context.Context, who tokens.Identity, id uuid.UUID) (*models.Property, error) {
	p, err := s.Repo.GetProperty(ctx, id)
	if err != nil {
		return nil, storageErr("property", err)
	}
	if p.OwnerID != who.ID && !who.HasRole(RoleAdmin) {
		return nil, fmt.Errorf("%w: not your property", ErrForbidden)
	}
	return p, nil
}

func (s *PropertyService) index(ctx context.Context, p *models.Property) {
	if s.Search == nil {
		return
	}
	if err := s.Search.IndexProperty(ctx, p); err != nil {
		logging.FromContext(ctx).Warn("search_index_failed", "property_id", p.ID.String(), "error", err)
	}
}
