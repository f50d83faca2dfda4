package repo

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Skotchmaster/rent_system/services/rental/internal/models"
)

type PropertyStats struct {
	BookingCount  int64
	AverageRating float64
}

type OwnerStats struct {
	TotalProperties int64
	TotalBookings   int64
	TotalReviews    int64
}

func (r *GormRepo) FindProperty(db *gorm.DB, id uuid.UUID) (*models.Property, error) {
	var p models.Property
	if err := db.Where("id = ?", id).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *GormRepo) GetProperty(ctx context.Context, id uuid.UUID) (*models.Property, error) {
	return r.FindProperty(r.DB.WithContext(ctx), id)
}

func (r *GormRepo) ListProperties(ctx context.Context, offset, limit int) (int64, []models.Property, error) {
	var total int64
	if err := r.DB.WithContext(ctx).Model(&models.Property{}).Count(&total).Error; err != nil {
		return 0, nil, err
	}

	var items []models.Property
	if err := r.DB.WithContext(ctx).
		Order("created_at DESC, id ASC").
		Offset(offset).
		Limit(limit).
		Find(&items).Error; err != nil {
		return 0, nil, err
	}
	return total, items, nil
}

func (r *GormRepo) PropertiesByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.Property, error) {
	var items []models.Property
	if err := r.DB.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at DESC").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// PropertiesByIDs keeps the order of ids and silently drops ids that no
// longer exist.
func (r *GormRepo) PropertiesByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Property, error) {
	if len(ids) == 0 {
		return []models.Property{}, nil
	}

	var found []models.Property
	if err := r.DB.WithContext(ctx).Where("id IN ?", ids).Find(&found).Error; err != nil {
		return nil, err
	}

	byID := make(map[uuid.UUID]models.Property, len(found))
	for _, p := range found {
		byID[p.ID] = p
	}
	out := make([]models.Property, 0, len(found))
	for _, id := range ids {
		if p, ok := byID[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

// SearchProperties is the plain SQL search used when no search index is
// configured.
func (r *GormRepo) SearchProperties(ctx context.Context, q string, offset, limit int) (int64, []models.Property, error) {
	pattern := "%" + strings.ToLower(strings.TrimSpace(q)) + "%"
	where := "LOWER(title) LIKE ? OR LOWER(location) LIKE ? OR LOWER(description) LIKE ?"

	var total int64
	if err := r.DB.WithContext(ctx).
		Model(&models.Property{}).
		Where(where, pattern, pattern, pattern).
		Count(&total).Error; err != nil {
		return 0, nil, err
	}

	var items []models.Property
	if err := r.DB.WithContext(ctx).
		Where(where, pattern, pattern, pattern).
		Order("title ASC").
		Offset(offset).
		Limit(limit).
		Find(&items).Error; err != nil {
		return 0, nil, err
	}
	return total, items, nil
}

func (r *GormRepo) CreateProperty(ctx context.Context, p *models.Property) error {
	return r.DB.WithContext(ctx).Create(p).Error
}

func (r *GormRepo) SaveProperty(ctx context.Context, p *models.Property) error {
	return r.DB.WithContext(ctx).Save(p).Error
}

// DeleteProperty removes the property together with its bookings and reviews.
func (r *GormRepo) DeleteProperty(ctx context.Context, id uuid.UUID) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("property_id = ?", id).Delete(&models.Booking{}).Error; err != nil {
			return err
		}
		if err := tx.Where("property_id = ?", id).Delete(&models.Review{}).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", id).Delete(&models.Property{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

func (r *GormRepo) PropertyStats(ctx context.Context, id uuid.UUID) (PropertyStats, error) {
	var st PropertyStats
	if err := r.DB.WithContext(ctx).
		Model(&models.Booking{}).
		Where("property_id = ?", id).
		Count(&st.BookingCount).Error; err != nil {
		return PropertyStats{}, err
	}

	var avg struct{ Avg float64 }
	if err := r.DB.WithContext(ctx).
		Model(&models.Review{}).
		Select("COALESCE(AVG(rating), 0) AS avg").
		Where("property_id = ?", id).
		Scan(&avg).Error; err != nil {
		return PropertyStats{}, err
	}
	st.AverageRating = avg.Avg
	return st, nil
}

// OwnerStats counts the owner's properties and the bookings and reviews left
// on them.
func (r *GormRepo) OwnerStats(ctx context.Context, ownerID uuid.UUID) (OwnerStats, error) {
	db := r.DB.WithContext(ctx)
	owned := db.Model(&models.Property{}).Select("id").Where("owner_id = ?", ownerID)

	var st OwnerStats
	if err := db.Model(&models.Property{}).Where("owner_id = ?", ownerID).Count(&st.TotalProperties).Error; err != nil {
		return OwnerStats{}, err
	}
	if err := db.Model(&models.Booking{}).Where("property_id IN (?)", owned).Count(&st.TotalBookings).Error; err != nil {
		return OwnerStats{}, err
	}
	if err := db.Model(&models.Review{}).Where("property_id IN (?)", owned).Count(&st.TotalReviews).Error; err != nil {
		return OwnerStats{}, err
	}
	return st, nil
}
