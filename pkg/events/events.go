package events

import (
	"time"

	"github.com/google/uuid"
)

type BookingEvent struct {
	Type       string    `json:"type"`
	BookingID  uuid.UUID `json:"booking_id"`
	PropertyID uuid.UUID `json:"property_id"`
	RenterID   uuid.UUID `json:"renter_id"`
	StartDate  time.Time `json:"start_date"`
	EndDate    time.Time `json:"end_date"`
	OccurredAt time.Time `json:"occurred_at"`
}

type UserEvent struct {
	Type       string    `json:"type"`
	UserID     uuid.UUID `json:"user_id"`
	FamilyID   uuid.UUID `json:"family_id,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

const (
	BookingCreated = "booking_created"
	BookingUpdated = "booking_updated"
	BookingDeleted = "booking_deleted"

	UserRegistered       = "user_registered"
	UserLoggedIn         = "user_logged_in"
	UserLoggedOutAll     = "user_logged_out_all"
	UserDeleted          = "user_deleted"
	RefreshReuseDetected = "refresh_reuse_detected"
)
