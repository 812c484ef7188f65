package queue

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/iliyamo/restaurant-table-booking/internal/logger"
	"github.com/iliyamo/restaurant-table-booking/internal/metrics"
	"github.com/iliyamo/restaurant-table-booking/internal/model"
)

// Publisher sends booking events to RabbitMQ. Each publish opens its own
// connection, so a broker outage never leaves broken state behind.
type Publisher struct {
	url     string
	log     *logger.Logger
	timeout time.Duration
	now     func() time.Time
}

func NewPublisher(url string, log *logger.Logger) *Publisher {
	if log == nil {
		log = logger.Nop()
	}
	return &Publisher{url: url, log: log, timeout: 3 * time.Second, now: time.Now}
}

func (p *Publisher) BookingConfirmed(ctx context.Context, b model.Booking) error {
	return p.publish(ctx, NewBookingEvent(EventConfirmed, b, p.now()))
}

func (p *Publisher) BookingCancelled(ctx context.Context, b model.Booking) error {
	return p.publish(ctx, NewBookingEvent(EventCancelled, b, p.now()))
}

func (p *Publisher) publish(ctx context.Context, ev BookingEvent) (err error) {
	defer func() {
		result := "ok"
		if err != nil {
			result = "error"
		}
		metrics.EventsPublished.WithLabelValues(ev.Type, result).Inc()
	}()

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	conn, err := amqp.DialConfig(p.url, amqp.Config{Dial: amqp.DefaultDial(p.timeout)})
	if err != nil {
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		return err
	}
	defer func() { _ = ch.Close() }()

	name := queueFor(ev.Type)
	if _, err := ch.QueueDeclare(
		name,  // name
		true,  // durable
		false, // autoDelete
		false, // exclusive
		false, // noWait
		nil,   // args
	); err != nil {
		return err
	}

	body, err := json.Marshal(ev)
	if err != nil {
		return err
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    p.now().UTC(),
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx,
		"",    // default exchange
		name,  // routing key = queue name
		false, // mandatory
		false, // immediate
		pub,
	); err != nil {
		return err
	}

	p.log.WithCtx(ctx).Debug("booking event published", "queue", name, "booking_id", ev.BookingID)
	return nil
}
