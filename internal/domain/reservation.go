package domain

import "time"

// SegmentReservation records that a seat is held for the half-open
// station-order range [DepartureOrder, ArrivalOrder) of a schedule by one
// booking. For a fixed (schedule, seat) no two live reservations may
// overlap; that is the invariant the inventory exists to enforce.
type SegmentReservation struct {
	ID             int64
	ScheduleID     int64
	SeatID         int64
	BookingID      int64
	DepartureOrder int
	ArrivalOrder   int
	DepartureCode  string
	ArrivalCode    string
	CreatedAt      time.Time
}

// Overlaps reports whether the reservation shares at least one unit of the
// route with the half-open range [departureOrder, arrivalOrder). Adjacent
// ranges touch but do not overlap.
func (r SegmentReservation) Overlaps(departureOrder, arrivalOrder int) bool {
	return r.DepartureOrder < arrivalOrder && departureOrder < r.ArrivalOrder
}
