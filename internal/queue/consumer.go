package queue

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/segmentio/kafka-go"

	"github.com/iliyamo/hotel-booking/internal/config"
	"github.com/iliyamo/hotel-booking/internal/logger"
)

// BookingLog appends one human-readable line per event to a file.
type BookingLog struct {
	path string
	mu   sync.Mutex
}

func NewBookingLog(path string) *BookingLog { return &BookingLog{path: path} }

// Record decodes body and appends it to the log.
func (b *BookingLog) Record(body []byte) error {
	ev, err := decodeEvent(body)
	if err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	if ev.Type == "" || ev.BookingID == 0 {
		return errors.New("event without type or booking id")
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if err := os.MkdirAll(filepath.Dir(b.path), 0o755); err != nil {
		return fmt.Errorf("mkdir logs: %w", err)
	}
	f, err := os.OpenFile(b.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteString(formatLine(ev)); err != nil {
		return fmt.Errorf("write log: %w", err)
	}
	return nil
}

func formatLine(ev BookingEvent) string {
	at := ev.OccurredAt.UTC().Format(time.RFC3339)
	if ev.Type == BookingUpdated {
		return fmt.Sprintf("[%s] %s | booking_id=%d | user_id=%d | room_id=%d | previous_room_id=%d | hotel_id=%d\n",
			at, ev.Type, ev.BookingID, ev.UserID, ev.RoomID, ev.PreviousRoomID, ev.HotelID)
	}
	return fmt.Sprintf("[%s] %s | booking_id=%d | user_id=%d | room_id=%d | hotel_id=%d\n",
		at, ev.Type, ev.BookingID, ev.UserID, ev.RoomID, ev.HotelID)
}

// Consumer drains booking events from the configured broker into a
// BookingLog.
type Consumer struct {
	cfg config.EventsConfig
	out *BookingLog
	log *logger.Logger
}

func NewConsumer(cfg config.EventsConfig, log *logger.Logger) *Consumer {
	return &Consumer{cfg: cfg, out: NewBookingLog(cfg.BookingLogPath), log: log}
}

// Run blocks until ctx is cancelled.  Broker failures never end the loop;
// they are logged and the connection is retried with backoff.
func (c *Consumer) Run(ctx context.Context) error {
	switch c.cfg.Broker {
	case config.BrokerRabbitMQ:
		return c.runRabbit(ctx)
	case config.BrokerKafka:
		return c.runKafka(ctx)
	default:
		return fmt.Errorf("consumer needs EVENTS_BROKER, got %q", c.cfg.Broker)
	}
}

func (c *Consumer) runRabbit(ctx context.Context) error {
	backoff := time.Second
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		conn, err := amqp.Dial(c.cfg.RabbitURL)
		if err != nil {
			c.log.Warn("booking-consumer: dial failed", "error", err, "retry_in", backoff)
			if !sleep(ctx, backoff) {
				return ctx.Err()
			}
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second

		err = c.consumeRabbit(ctx, conn)
		_ = conn.Close()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		c.log.Warn("booking-consumer: consume loop ended, reconnecting", "error", err)
		if !sleep(ctx, 2*time.Second) {
			return ctx.Err()
		}
	}
}

func (c *Consumer) consumeRabbit(ctx context.Context, conn *amqp.Connection) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		c.log.Warn("booking-consumer: set QoS failed", "error", err)
	}
	if err := declareQueue(ch, c.cfg.RabbitQueue); err != nil {
		return err
	}
	msgs, err := ch.Consume(c.cfg.RabbitQueue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-msgs:
			if !ok {
				return errors.New("deliveries channel closed")
			}
			if err := c.out.Record(d.Body); err != nil {
				c.log.Error("booking-consumer: handle message failed", "error", err)
				// reject without requeue to avoid a poison-message loop
				_ = d.Nack(false, false)
				continue
			}
			_ = d.Ack(false)
		}
	}
}

func (c *Consumer) runKafka(ctx context.Context) error {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:     c.cfg.KafkaBrokers,
		Topic:       c.cfg.KafkaTopic,
		GroupID:     "booking-log",
		StartOffset: kafka.FirstOffset,
		Logger:      kafka.LoggerFunc(func(string, ...any) {}),
	})
	defer func() { _ = reader.Close() }()

	for {
		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			c.log.Warn("booking-consumer: fetch failed", "error", err)
			if !sleep(ctx, time.Second) {
				return ctx.Err()
			}
			continue
		}
		if err := c.out.Record(msg.Value); err != nil {
			c.log.Error("booking-consumer: handle message failed", "error", err, "offset", msg.Offset)
		}
		if err := reader.CommitMessages(ctx, msg); err != nil {
			c.log.Warn("booking-consumer: commit failed", "error", err)
		}
	}
}

// sleep waits for d or until ctx is done; it reports whether d elapsed.
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
