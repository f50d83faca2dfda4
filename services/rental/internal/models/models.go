package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Skotchmaster/rent_system/services/rental/internal/domain"
)

type Property struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey"       json:"id"`
	OwnerID       uuid.UUID `gorm:"type:uuid;index;not null"   json:"owner_id"`
	Title         string    `gorm:"size:200;not null"          json:"title"`
	Description   string    `gorm:"not null;default:''"        json:"description"`
	Location      string    `gorm:"size:200;index;not null"    json:"location"`
	PricePerNight int64     `gorm:"not null"                   json:"price_per_night"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type Booking struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"     json:"id"`
	PropertyID uuid.UUID `gorm:"type:uuid;index;not null" json:"property_id"`
	RenterID   uuid.UUID `gorm:"type:uuid;index;not null" json:"renter_id"`
	StartDate  time.Time `gorm:"not null"                 json:"start_date"`
	EndDate    time.Time `gorm:"not null"                 json:"end_date"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type Review struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey"     json:"id"`
	PropertyID uuid.UUID  `gorm:"type:uuid;index;not null" json:"property_id"`
	UserID     uuid.UUID  `gorm:"type:uuid;index;not null" json:"user_id"`
	Rating     float64    `gorm:"not null"                 json:"rating"`
	Comment    string     `gorm:"not null;default:''"      json:"comment"`
	CreatedAt  time.Time  `json:"created_at"`
	ModifiedAt *time.Time `json:"modified_at,omitempty"`
}

func (b *Booking) Interval() domain.Interval {
	return domain.Interval{Start: b.StartDate, End: b.EndDate}
}

func (p *Property) BeforeCreate(*gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

func (b *Booking) BeforeCreate(*gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

func (r *Review) BeforeCreate(*gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// All lists the models owned by the rental service, in dependency order.
func All() []any {
	return []any{&Property{}, &Booking{}, &Review{}}
}
