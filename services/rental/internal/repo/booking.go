package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Skotchmaster/rent_system/services/rental/internal/models"
)

// PropertyBookings returns the bookings of a property through db, which is
// usually the transaction opened by WithPropertyLock. When notBefore is set
// and the dialect can compare timestamps, bookings that ended before it are
// skipped in SQL.
func (r *GormRepo) PropertyBookings(db *gorm.DB, propertyID uuid.UUID, notBefore *time.Time) ([]models.Booking, error) {
	q := db.Where("property_id = ?", propertyID)
	if notBefore != nil && isPostgres(db) {
		q = q.Where("end_date > ?", *notBefore)
	}

	var out []models.Booking
	if err := q.Order("start_date ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *GormRepo) CreateBooking(db *gorm.DB, b *models.Booking) error {
	return translate(db.Create(b).Error)
}

// FindBooking reads a booking through db, usually the locked transaction.
func (r *GormRepo) FindBooking(db *gorm.DB, id uuid.UUID) (*models.Booking, error) {
	var b models.Booking
	if err := db.Where("id = ?", id).First(&b).Error; err != nil {
		return nil, err
	}
	return &b, nil
}

// UpdateBooking writes the mutable columns of an existing booking. A booking
// that is gone yields gorm.ErrRecordNotFound; it is never re-inserted.
func (r *GormRepo) UpdateBooking(db *gorm.DB, b *models.Booking) error {
	b.UpdatedAt = db.NowFunc()
	res := db.Model(&models.Booking{}).
		Where("id = ?", b.ID).
		Updates(map[string]any{
			"property_id": b.PropertyID,
			"start_date":  b.StartDate,
			"end_date":    b.EndDate,
			"updated_at":  b.UpdatedAt,
		})
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *GormRepo) GetBooking(ctx context.Context, id uuid.UUID) (*models.Booking, error) {
	var b models.Booking
	if err := r.DB.WithContext(ctx).Where("id = ?", id).First(&b).Error; err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *GormRepo) DeleteBooking(ctx context.Context, id uuid.UUID) error {
	res := r.DB.WithContext(ctx).Where("id = ?", id).Delete(&models.Booking{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *GormRepo) BookingsByRenter(ctx context.Context, renterID uuid.UUID) ([]models.Booking, error) {
	var out []models.Booking
	if err := r.DB.WithContext(ctx).
		Where("renter_id = ?", renterID).
		Order("start_date DESC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *GormRepo) BookingsByProperty(ctx context.Context, propertyID uuid.UUID) ([]models.Booking, error) {
	return r.PropertyBookings(r.DB.WithContext(ctx), propertyID, nil)
}
