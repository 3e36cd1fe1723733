// Package payment wraps the stripe checkout flow: creating a session per
// pending booking and mapping webhook events back to booking transitions.
package payment

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/arkadyv/railbooking/config"
	"github.com/arkadyv/railbooking/internal/domain"
	"github.com/stripe/stripe-go/v84"
	"github.com/stripe/stripe-go/v84/checkout/session"
	"github.com/stripe/stripe-go/v84/webhook"
)

// Action is the local booking transition a webhook event maps to.
type Action string

const (
	ActionNone    Action = ""
	ActionConfirm Action = "confirm"
	ActionCancel  Action = "cancel"
)

// Event is a verified webhook event reduced to what the booking flow needs.
type Event struct {
	Action       Action
	BookingToken string
}

type Client struct {
	webhookSecret string
	successURL    string
	cancelURL     string
	currency      string
}

func NewClient(cfg config.StripeConfig) *Client {
	stripe.Key = cfg.APIKey
	return &Client{
		webhookSecret: cfg.WebhookSecret,
		successURL:    cfg.SuccessURL,
		cancelURL:     cfg.CancelURL,
		currency:      cfg.Currency,
	}
}

// CreateSession opens a checkout session for the booking. The booking token
// travels in the session metadata so the webhook can find its way back.
func (c *Client) CreateSession(ctx context.Context, booking *domain.Booking) (string, string, error) {
	params := &stripe.CheckoutSessionParams{
		Mode: stripe.String(string(stripe.CheckoutSessionModePayment)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency: stripe.String(c.currency),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripe.String(fmt.Sprintf("Train ticket %s -> %s", booking.DepartureCode, booking.ArrivalCode)),
				},
				UnitAmount: stripe.Int64(booking.AmountCents),
			},
			Quantity: stripe.Int64(1),
		}},
		SuccessURL: stripe.String(c.successURL),
		CancelURL:  stripe.String(c.cancelURL),
		ExpiresAt:  stripe.Int64(sessionExpiry(booking.ExpiresAt).Unix()),
		Metadata: map[string]string{
			"booking_token": booking.Token,
		},
	}
	params.Context = ctx

	s, err := session.New(params)
	if err != nil {
		return "", "", fmt.Errorf("create checkout session: %w", err)
	}
	return s.ID, s.URL, nil
}

// ParseWebhook verifies the payload signature and maps the vendor event type
// to a local action. Unknown event types map to ActionNone.
func (c *Client) ParseWebhook(payload []byte, signature string) (Event, error) {
	event, err := webhook.ConstructEvent(payload, signature, c.webhookSecret)
	if err != nil {
		return Event{}, fmt.Errorf("verify webhook signature: %w", err)
	}

	var sess stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
		return Event{}, fmt.Errorf("decode checkout session: %w", err)
	}

	return Event{
		Action:       actionForEventType(string(event.Type)),
		BookingToken: sess.Metadata["booking_token"],
	}, nil
}

func actionForEventType(eventType string) Action {
	switch eventType {
	case "checkout.session.completed":
		return ActionConfirm
	case "checkout.session.expired":
		return ActionCancel
	default:
		return ActionNone
	}
}

// sessionExpiry clamps the checkout expiry to stripe's minimum of 30
// minutes; shorter booking holds still expire locally via the sweeper.
func sessionExpiry(holdDeadline time.Time) time.Time {
	if min := time.Now().Add(30 * time.Minute); holdDeadline.Before(min) {
		return min
	}
	return holdDeadline
}
