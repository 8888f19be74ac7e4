package events

import (
	"context"
	"time"

	"groundbook/pkg/kafka"
	"groundbook/pkg/logger"
	"groundbook/pkg/model"
)

const (
	EventBookingSubmitted = "booking.submitted"
	EventBookingApproved  = "booking.approved"
	EventBookingRejected  = "booking.rejected"

	source = "bookings"
)

// BookingEvent is the payload notification consumers receive. Delivery is
// best-effort; a booking never fails because its event did not reach Kafka.
type BookingEvent struct {
	BookingID  string    `json:"booking_id"`
	GroundType string    `json:"ground_type"`
	Date       string    `json:"date"` // civil date, YYYY-MM-DD
	TimeSlot   string    `json:"time_slot"`
	Status     string    `json:"status"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Phone      string    `json:"phone"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Publisher emits booking lifecycle events.
type Publisher interface {
	PublishBookingEvent(ctx context.Context, eventType string, booking *model.Booking) error
}

type kafkaPublisher struct {
	producer *kafka.Producer
	log      *logger.Logger
}

func NewKafkaPublisher(producer *kafka.Producer, log *logger.Logger) Publisher {
	return &kafkaPublisher{
		producer: producer,
		log:      log,
	}
}

func (p *kafkaPublisher) PublishBookingEvent(ctx context.Context, eventType string, booking *model.Booking) error {
	payload := BookingEvent{
		BookingID:  booking.ID,
		GroundType: string(booking.GroundType),
		Date:       model.CivilDate(booking.Date),
		TimeSlot:   booking.TimeSlot,
		Status:     string(booking.Status),
		Name:       booking.Name,
		Email:      booking.Email,
		Phone:      booking.Phone,
		OccurredAt: time.Now().UTC(),
	}

	msg, err := kafka.NewMessage().
		WithKey(booking.ID).
		WithValue(payload).
		WithEventType(eventType).
		WithSource(source).
		Build()
	if err != nil {
		return err
	}

	return p.producer.Publish(ctx, msg)
}

// NopPublisher drops every event. Used when Kafka is disabled.
type NopPublisher struct{}

func (NopPublisher) PublishBookingEvent(context.Context, string, *model.Booking) error {
	return nil
}
