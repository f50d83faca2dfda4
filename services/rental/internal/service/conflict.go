package service

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Skotchmaster/rent_system/services/rental/internal/domain"
	"github.com/Skotchmaster/rent_system/services/rental/internal/repo"
)

type ConflictChecker struct {
	Repo *repo.GormRepo
}

// HasConflict reports whether any booking of the property other than
// excludeID overlaps candidate. db must be the transaction holding the
// property lock for the answer to stay true until commit.
func (c *ConflictChecker) HasConflict(db *gorm.DB, propertyID uuid.UUID, candidate domain.Interval, excludeID *uuid.UUID) (bool, error) {
	existing, err := c.Repo.PropertyBookings(db, propertyID, &candidate.Start)
	if err != nil {
		return false, err
	}

	for i := range existing {
		b := &existing[i]
		if excludeID != nil && b.ID == *excludeID {
			continue
		}
		if b.Interval().Overlaps(candidate) {
			return true, nil
		}
	}
	return false, nil
}
