package domain

type SeatClass string

const (
	SeatClassExecutive SeatClass = "EXECUTIVE"
	SeatClassBusiness  SeatClass = "BUSINESS"
	SeatClassEconomy   SeatClass = "ECONOMY"
)

// Seat is a physical seat in a coach of a train, reused by every schedule
// of that train.
type Seat struct {
	ID         int64
	TrainID    int64
	CoachCode  string
	SeatNumber string
	Class      SeatClass
	PriceCents int64
}
