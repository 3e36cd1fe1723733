package domain

import "time"

type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "PENDING"
	BookingStatusConfirmed BookingStatus = "CONFIRMED"
	BookingStatusCancelled BookingStatus = "CANCELLED"
	BookingStatusExpired   BookingStatus = "EXPIRED"
)

// Booking aggregates the segment reservations of one purchase. Its status
// governs whether the holds persist; the reservations themselves are
// released when the booking is cancelled or expires unpaid.
type Booking struct {
	ID               int64
	Token            string
	ScheduleID       int64
	Status           BookingStatus
	Email            string
	DepartureCode    string
	ArrivalCode      string
	AmountCents      int64
	PromoCode        string
	PaymentSessionID string
	ExpiresAt        time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

type Passenger struct {
	ID        int64
	BookingID int64
	Name      string
	SeatID    int64
}

// PromoCode is a percentage discount valid inside a time window.
type PromoCode struct {
	Code       string
	PercentOff int
	ValidFrom  time.Time
	ValidUntil time.Time
	Active     bool
}

// ValidAt reports whether the promo may be applied at the given time.
func (p PromoCode) ValidAt(t time.Time) bool {
	return p.Active && !t.Before(p.ValidFrom) && t.Before(p.ValidUntil)
}

// Discount applies the promo percentage to an amount in cents.
func (p PromoCode) Discount(amountCents int64) int64 {
	return amountCents * int64(p.PercentOff) / 100
}
