package repo

import (
	"time"

	"gorm.io/gorm"
)

const DefaultRefreshTTL = 7 * 24 * time.Hour

type GormRepo struct {
	DB         *gorm.DB
	RefreshTTL time.Duration
	Now        func() time.Time
}

func (r *GormRepo) now() time.Time {
	if r.Now != nil {
		return r.Now().UTC().Truncate(time.Microsecond)
	}
	return time.Now().UTC().Truncate(time.Microsecond)
}

func (r *GormRepo) refreshTTL() time.Duration {
	if r.RefreshTTL <= 0 {
		return DefaultRefreshTTL
	}
	return r.RefreshTTL
}
