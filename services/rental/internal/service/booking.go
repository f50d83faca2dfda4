package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Skotchmaster/rent_system/pkg/events"
	"github.com/Skotchmaster/rent_system/pkg/logging"
	"github.com/Skotchmaster/rent_system/pkg/tokens"
	"github.com/Skotchmaster/rent_system/services/rental/internal/domain"
	"github.com/Skotchmaster/rent_system/services/rental/internal/models"
	"github.com/Skotchmaster/rent_system/services/rental/internal/repo"
	"github.com/Skotchmaster/rent_system/services/rental/internal/transport"
)

const RoleAdmin = "admin"

type BookingService struct {
	Repo      *repo.GormRepo
	Conflicts *ConflictChecker
	Events    events.Publisher
}

func NewBookingService(r *repo.GormRepo, pub events.Publisher) *BookingService {
	if pub == nil {
		pub = events.Noop{}
	}
	return &BookingService{
		Repo:      r,
		Conflicts: &ConflictChecker{Repo: r},
		Events:    pub,
	}
}

func (s *BookingService) Create(ctx context.Context, who tokens.Identity, req transport.CreateBookingRequest) (*models.Booking, error) {
	l := logging.FromContext(ctx).With("svc", "booking.create", "property_id", req.PropertyID.String())

	iv, err := domain.NewInterval(req.StartDate, req.EndDate)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrValidation, err)
	}
	if req.PropertyID == uuid.Nil {
		return nil, fmt.Errorf("%w: property_id required", ErrValidation)
	}

	booking := models.Booking{
		ID:         uuid.New(),
		PropertyID: req.PropertyID,
		RenterID:   who.ID,
		StartDate:  iv.Start,
		EndDate:    iv.End,
	}

	err = s.Repo.WithPropertyLock(ctx, req.PropertyID, func(tx *gorm.DB) error {
		prop, err := s.Repo.FindProperty(tx, req.PropertyID)
		if err != nil {
			return storageErr("property", err)
		}
		if prop.OwnerID == who.ID {
			return fmt.Errorf("%w: cannot book own property", ErrForbidden)
		}

		conflict, err := s.Conflicts.HasConflict(tx, req.PropertyID, iv, nil)
		if err != nil {
			return storageErr("check conflicts", err)
		}
		if conflict {
			return ErrConflict
		}

		if err := s.Repo.CreateBooking(tx, &booking); err != nil {
			if errors.Is(err, repo.ErrOverlap) {
				return ErrConflict
			}
			return storageErr("create booking", err)
		}
		return nil
	})
	if err != nil {
		err = domainErr("create booking", err)
		l.Warn("create_booking_rejected", "error", err)
		return nil, err
	}

	l.Info("booking_created", "booking_id", booking.ID.String())
	s.publish(ctx, events.BookingCreated, &booking)
	return &booking, nil
}

func (s *BookingService) Update(ctx context.Context, who tokens.Identity, id uuid.UUID, req transport.PatchBookingRequest) (*models.Booking, error) {
	l := logging.FromContext(ctx).With("svc", "booking.update", "booking_id", id.String())

	current, err := s.Repo.GetBooking(ctx, id)
	if err != nil {
		return nil, storageErr("booking", err)
	}
	if current.RenterID != who.ID {
		return nil, fmt.Errorf("%w: only the renter can change a booking", ErrForbidden)
	}
	target := current.PropertyID
	if req.PropertyID != nil {
		target = *req.PropertyID
	}

	var updated models.Booking
	err = s.Repo.WithPropertyLock(ctx, target, func(tx *gorm.DB) error {
		// The row may have been deleted or moved since it was read above.
		fresh, err := s.Repo.FindBooking(tx, id)
		if err != nil {
			return storageErr("booking", err)
		}
		if fresh.RenterID != who.ID {
			return fmt.Errorf("%w: only the renter can change a booking", ErrForbidden)
		}

		var iv domain.Interval
		updated, iv, err = mergeBooking(fresh, req)
		if err != nil {
			return err
		}
		if updated.PropertyID != target {
			return fmt.Errorf("%w: booking was moved concurrently", ErrConflict)
		}

		prop, err := s.Repo.FindProperty(tx, target)
		if err != nil {
			return storageErr("property", err)
		}
		if prop.OwnerID == who.ID {
			return fmt.Errorf("%w: cannot book own property", ErrForbidden)
		}

		conflict, err := s.Conflicts.HasConflict(tx, target, iv, &updated.ID)
		if err != nil {
			return storageErr("check conflicts", err)
		}
		if conflict {
			return ErrConflict
		}

		if err := s.Repo.UpdateBooking(tx, &updated); err != nil {
			if errors.Is(err, repo.ErrOverlap) {
				return ErrConflict
			}
			return storageErr("update booking", err)
		}
		return nil
	})
	if err != nil {
		err = domainErr("update booking", err)
		l.Warn("update_booking_rejected", "error", err)
		return nil, err
	}

	l.Info("booking_updated")
	s.publish(ctx, events.BookingUpdated, &updated)
	return &updated, nil
}

// mergeBooking applies the optional fields of req to b and validates the
// resulting range.
func mergeBooking(b *models.Booking, req transport.PatchBookingRequest) (models.Booking, domain.Interval, error) {
	out := *b
	if req.PropertyID != nil {
		out.PropertyID = *req.PropertyID
	}
	if req.StartDate != nil {
		out.StartDate = *req.StartDate
	}
	if req.EndDate != nil {
		out.EndDate = *req.EndDate
	}

	iv, err := domain.NewInterval(out.StartDate, out.EndDate)
	if err != nil {
		return models.Booking{}, domain.Interval{}, fmt.Errorf("%w: %w", ErrValidation, err)
	}
	out.StartDate, out.EndDate = iv.Start, iv.End
	return out, iv, nil
}

func (s *BookingService) Delete(ctx context.Context, who tokens.Identity, id uuid.UUID) error {
	l := logging.FromContext(ctx).With("svc", "booking.delete", "booking_id", id.String())

	b, err := s.Repo.GetBooking(ctx, id)
	if err != nil {
		return storageErr("booking", err)
	}
	if b.RenterID != who.ID {
		return fmt.Errorf("%w: only the renter can cancel a booking", ErrForbidden)
	}

	if err := s.Repo.DeleteBooking(ctx, id); err != nil {
		return storageErr("delete booking", err)
	}

	l.Info("booking_deleted")
	s.publish(ctx, events.BookingDeleted, b)
	return nil
}

// Get is allowed for the renter, the owner of the booked property and admins.
func (s *BookingService) Get(ctx context.Context, who tokens.Identity, id uuid.UUID) (*models.Booking, error) {
	b, err := s.Repo.GetBooking(ctx, id)
	if err != nil {
		return nil, storageErr("booking", err)
	}
	if b.RenterID == who.ID || who.HasRole(RoleAdmin) {
		return b, nil
	}

	prop, err := s.Repo.GetProperty(ctx, b.PropertyID)
	if err != nil {
		return nil, storageErr("property", err)
	}
	if prop.OwnerID != who.ID {
		return nil, fmt.Errorf("%w: not your booking", ErrForbidden)
	}
	return b, nil
}

func (s *BookingService) ListMine(ctx context.Context, who tokens.Identity) ([]models.Booking, error) {
	items, err := s.Repo.BookingsByRenter(ctx, who.ID)
	if err != nil {
		return nil, storageErr("list bookings", err)
	}
	return items, nil
}

func (s *BookingService) ListByProperty(ctx context.Context, who tokens.Identity, propertyID uuid.UUID) ([]models.Booking, error) {
	prop, err := s.Repo.GetProperty(ctx, propertyID)
	if err != nil {
		return nil, storageErr("property", err)
	}
	if prop.OwnerID != who.ID && !who.HasRole(RoleAdmin) {
		return nil, fmt.Errorf("%w: not your property", ErrForbidden)
	}

	items, err := s.Repo.BookingsByProperty(ctx, propertyID)
	if err != nil {
		return nil, storageErr("list bookings", err)
	}
	return items, nil
}

func (s *BookingService) publish(ctx context.Context, kind string, b *models.Booking) {
	ev := events.BookingEvent{
		Type:       kind,
		BookingID:  b.ID,
		PropertyID: b.PropertyID,
		RenterID:   b.RenterID,
		StartDate:  b.StartDate,
		EndDate:    b.EndDate,
		OccurredAt: time.Now().UTC(),
	}
	if err := s.Events.PublishEvent(ctx, events.TopicBookingEvents, b.PropertyID.String(), ev); err != nil {
		logging.FromContext(ctx).Warn("publish_booking_event_failed", "type", kind, "error", err)
	}
}
