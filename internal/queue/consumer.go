package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/iliyamo/restaurant-table-booking/internal/logger"
)

// Consumer drains both booking queues into <dir>/booking.log, one line per
// event.
type Consumer struct {
	url string
	dir string
	log *logger.Logger
}

func NewConsumer(url, dir string, log *logger.Logger) *Consumer {
	if dir == "" {
		dir = "logs"
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Consumer{url: url, dir: dir, log: log}
}

// Run connects, consumes and reconnects with exponential backoff until ctx
// is cancelled, then returns ctx.Err().
func (c *Consumer) Run(ctx context.Context) error {
	backoff := time.Second
	for {
		conn, err := amqp.Dial(c.url)
		if err != nil {
			c.log.Warn("booking consumer: dial failed", "error", err, "retry_in", backoff.String())
			if !sleep(ctx, backoff) {
				return ctx.Err()
			}
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second

		err = c.consumeLoop(ctx, conn)
		_ = conn.Close()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		c.log.Warn("booking consumer: consume loop ended, reconnecting", "error", err)
		if !sleep(ctx, 2*time.Second) {
			return ctx.Err()
		}
	}
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

func (c *Consumer) consumeLoop(ctx context.Context, conn *amqp.Connection) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		c.log.Warn("booking consumer: set QoS failed", "error", err)
	}

	var deliveries [2]<-chan amqp.Delivery
	for i, name := range []string{QueueBookingConfirmed, QueueBookingCancelled} {
		if _, err := ch.QueueDeclare(name, true, false, false, false, nil); err != nil {
			return fmt.Errorf("queue declare %s: %w", name, err)
		}
		msgs, err := ch.Consume(name, "", false, false, false, false, nil)
		if err != nil {
			return fmt.Errorf("queue consume %s: %w", name, err)
		}
		deliveries[i] = msgs
	}

	for {
		var (
			d  amqp.Delivery
			ok bool
		)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok = <-deliveries[0]:
		case d, ok = <-deliveries[1]:
		}
		if !ok {
			return errors.New("deliveries channel closed")
		}
		if err := c.handle(d.Body); err != nil {
			c.log.Error("booking consumer: handle message failed", "error", err)
			_ = d.Nack(false, false) // reject, do not requeue to avoid tight loops
			continue
		}
		_ = d.Ack(false)
	}
}

func (c *Consumer) handle(body []byte) error {
	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return fmt.Errorf("mkdir logs: %w", err)
	}
	f, err := os.OpenFile(filepath.Join(c.dir, "booking.log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer f.Close()
	return writeEvent(f, body)
}

// writeEvent decodes one message and appends its log line to w.
func writeEvent(w io.Writer, body []byte) error {
	var ev BookingEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	if ev.BookingID == 0 {
		return errors.New("event without booking_id")
	}
	if _, err := io.WriteString(w, formatLine(ev)); err != nil {
		return fmt.Errorf("write log: %w", err)
	}
	return nil
}

func formatLine(ev BookingEvent) string {
	verb := "Booking confirmed"
	if ev.Type == EventCancelled {
		verb = "Booking cancelled"
	}
	return fmt.Sprintf("[%s] %s | booking_id=%d | user_id=%d | restaurant_id=%d | table_id=%d | reservation_time=%s\n",
		ev.OccurredAt, verb, ev.BookingID, ev.UserID, ev.RestaurantID, ev.TableID, ev.ReservationTime)
}
