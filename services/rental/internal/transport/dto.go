package transport

import (
	"time"

	"github.com/google/uuid"

	"github.com/Skotchmaster/rent_system/services/rental/internal/models"
)

type CreateBookingRequest struct {
	PropertyID uuid.UUID `json:"property_id" validate:"required"`
	StartDate  time.Time `json:"start_date"  validate:"required"`
	EndDate    time.Time `json:"end_date"    validate:"required"`
}

type PatchBookingRequest struct {
	PropertyID *uuid.UUID `json:"property_id"`
	StartDate  *time.Time `json:"start_date"`
	EndDate    *time.Time `json:"end_date"`
}

type CreatePropertyRequest struct {
	Title         string `json:"title"           validate:"required,max=200"`
	Description   string `json:"description"     validate:"max=5000"`
	Location      string `json:"location"        validate:"required,max=200"`
	PricePerNight int64  `json:"price_per_night" validate:"gte=0"`
}

type PatchPropertyRequest struct {
	Title         *string `json:"title"           validate:"omitempty,max=200"`
	Description   *string `json:"description"     validate:"omitempty,max=5000"`
	Location      *string `json:"location"        validate:"omitempty,max=200"`
	PricePerNight *int64  `json:"price_per_night" validate:"omitempty,gte=0"`
}

type CreateReviewRequest struct {
	Rating  float64 `json:"rating"  validate:"gte=1,lte=5"`
	Comment string  `json:"comment" validate:"max=2000"`
}

type PatchReviewRequest struct {
	Rating  *float64 `json:"rating"  validate:"omitempty,gte=1,lte=5"`
	Comment *string  `json:"comment" validate:"omitempty,max=2000"`
}

type OwnerStats struct {
	TotalProperties int64 `json:"total_properties"`
	TotalBookings   int64 `json:"total_bookings"`
	TotalReviews    int64 `json:"total_reviews"`
}

type PropertyDetails struct {
	models.Property
	BookingCount  int64   `json:"booking_count"`
	AverageRating float64 `json:"average_rating"`
}
