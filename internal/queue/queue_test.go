package queue

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/iliyamo/hotel-booking/internal/config"
)

func TestBookingLogRecord(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "booking.log")
	bl := NewBookingLog(path)
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	created, _ := BookingEvent{Type: BookingCreated, BookingID: 7, UserID: 3, RoomID: 11, HotelID: 2, OccurredAt: at}.encode()
	updated, _ := BookingEvent{Type: BookingUpdated, BookingID: 7, UserID: 3, RoomID: 12, PreviousRoomID: 11, HotelID: 2, OccurredAt: at}.encode()
	for _, body := range [][]byte{created, updated} {
		if err := bl.Record(body); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d: %q", len(lines), data)
	}
	want := "[2026-03-01T12:00:00Z] booking.created | booking_id=7 | user_id=3 | room_id=11 | hotel_id=2"
	if lines[0] != want {
		t.Fatalf("line 0 = %q, want %q", lines[0], want)
	}
	if !strings.Contains(lines[1], "previous_room_id=11") || !strings.Contains(lines[1], "room_id=12") {
		t.Fatalf("unexpected update line %q", lines[1])
	}
}

func TestBookingLogRejectsMalformed(t *testing.T) {
	bl := NewBookingLog(filepath.Join(t.TempDir(), "booking.log"))
	for name, body := range map[string]string{
		"not json":   "{",
		"no type":    `{"booking_id":1}`,
		"no booking": `{"type":"booking.created"}`,
	} {
		t.Run(name, func(t *testing.T) {
			if err := bl.Record([]byte(body)); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestNewPublisher(t *testing.T) {
	p, err := NewPublisher(config.EventsConfig{})
	if err != nil {
		t.Fatalf("NewPublisher: %v", err)
	}
	if _, ok := p.(Nop); !ok {
		t.Fatalf("expected Nop publisher, got %T", p)
	}
	if err := p.Publish(context.Background(), BookingEvent{}); err != nil {
		t.Fatalf("Nop publish: %v", err)
	}

	p, err = NewPublisher(config.EventsConfig{Broker: config.BrokerRabbitMQ, RabbitURL: "amqp://localhost", RabbitQueue: "q"})
	if err != nil {
		t.Fatalf("NewPublisher rabbit: %v", err)
	}
	if _, ok := p.(*RabbitPublisher); !ok {
		t.Fatalf("expected *RabbitPublisher, got %T", p)
	}

	p, err = NewPublisher(config.EventsConfig{Broker: config.BrokerKafka, KafkaBrokers: []string{"localhost:9092"}, KafkaTopic: "t"})
	if err != nil {
		t.Fatalf("NewPublisher kafka: %v", err)
	}
	if _, ok := p.(*KafkaPublisher); !ok {
		t.Fatalf("expected *KafkaPublisher, got %T", p)
	}
	_ = p.Close()

	if _, err := NewPublisher(config.EventsConfig{Broker: config.BrokerKafka}); err == nil {
		t.Fatal("expected error without kafka brokers")
	}
	if _, err := NewPublisher(config.EventsConfig{Broker: "nats"}); err == nil {
		t.Fatal("expected error for unknown broker")
	}
}

func TestEventKey(t *testing.T) {
	if got := (BookingEvent{UserID: 42}).Key(); got != "user-42" {
		t.Fatalf("Key() = %q", got)
	}
}
