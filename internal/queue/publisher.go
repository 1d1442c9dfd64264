package queue

import (
	"context"
	"fmt"
	"strconv"

	"github.com/iliyamo/hotel-booking/internal/config"
)

// Publisher announces committed booking changes.  Implementations must be
// safe for concurrent use.
type Publisher interface {
	Publish(ctx context.Context, ev BookingEvent) error
	Close() error
}

// Nop discards every event.  It is used when no broker is configured.
type Nop struct{}

func (Nop) Publish(context.Context, BookingEvent) error { return nil }
func (Nop) Close() error                                { return nil }

// NewPublisher returns the publisher selected by cfg.Broker.
func NewPublisher(cfg config.EventsConfig) (Publisher, error) {
	switch cfg.Broker {
	case config.BrokerNone:
		return Nop{}, nil
	case config.BrokerRabbitMQ:
		return NewRabbitPublisher(cfg.RabbitURL, cfg.RabbitQueue), nil
	case config.BrokerKafka:
		return NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
	default:
		return nil, fmt.Errorf("unknown events broker %q", cfg.Broker)
	}
}

func uitoa(v uint64) string { return strconv.FormatUint(v, 10) }
