package domain

import "time"

type ScheduleStatus string

const (
	ScheduleStatusScheduled ScheduleStatus = "SCHEDULED"
	ScheduleStatusDelayed   ScheduleStatus = "DELAYED"
	ScheduleStatusCancelled ScheduleStatus = "CANCELLED"
	ScheduleStatusCompleted ScheduleStatus = "COMPLETED"
)

// Schedule is one dated run of a train over its ordered list of stations.
type Schedule struct {
	ID         int64
	TrainID    int64
	TrainName  string
	TravelDate time.Time
	Status     ScheduleStatus
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// RouteStop is a station's position and timing within a schedule's route.
// StationOrder is 1-based and contiguous along the route.
type RouteStop struct {
	ScheduleID    int64
	StationCode   string
	StationName   string
	StationOrder  int
	ArrivalTime   *time.Time
	DepartureTime *time.Time
}
