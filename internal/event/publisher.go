package event

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog/log"

	"github.com/fairyhunter13/meelike-pricing/internal/model"
)

// BillCreatedRoutingKey is the topic routing key for committed bills.
const BillCreatedRoutingKey = "bill.created"

// Channel is the subset of *amqp.Channel the publisher uses.
type Channel interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	IsClosed() bool
	Close() error
}

// ChannelProvider hands out a live channel. *Connection implements it.
type ChannelProvider interface {
	Channel() (Channel, error)
	OnChannel(fn func(Channel) error) error
}

// BillCreatedEvent is the message body published for each committed bill.
type BillCreatedEvent struct {
	ID         string      `json:"id"`
	EventType  string      `json:"event_type"`
	OccurredAt time.Time   `json:"occurred_at"`
	Bill       *model.Bill `json:"bill"`
}

// BillPublisher publishes bill events to a durable topic exchange.
type BillPublisher struct {
	conn     ChannelProvider
	exchange string
}

// NewBillPublisher declares the exchange and returns a publisher bound to it.
// The exchange is declared again on every channel opened after a reconnect.
func NewBillPublisher(conn ChannelProvider, exchange string) (*BillPublisher, error) {
	p := &BillPublisher{conn: conn, exchange: exchange}
	if err := conn.OnChannel(p.declareExchange); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *BillPublisher) declareExchange(ch Channel) error {
	err := ch.ExchangeDeclare(
		p.exchange, // name
		"topic",    // kind
		true,       // durable
		false,      // auto-deleted
		false,      // internal
		false,      // no-wait
		nil,        // arguments
	)
	if err != nil {
		return fmt.Errorf("declare exchange %s: %w", p.exchange, err)
	}
	return nil
}

// PublishBillCreated publishes a bill.created event for bill.
func (p *BillPublisher) PublishBillCreated(ctx context.Context, bill *model.Bill) error {
	evt := BillCreatedEvent{
		ID:         uuid.NewString(),
		EventType:  BillCreatedRoutingKey,
		OccurredAt: time.Now().UTC(),
		Bill:       bill,
	}

	body, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("marshal bill event: %w", err)
	}

	msg := amqp.Publishing{
		DeliveryMode: amqp.Persistent,
		ContentType:  "application/json",
		MessageId:    evt.ID,
		Timestamp:    evt.OccurredAt,
		Body:         body,
	}

	// A channel that died under the publish is reopened and tried once more.
	for attempt := 1; ; attempt++ {
		ch, err := p.conn.Channel()
		if err != nil {
			return fmt.Errorf("publish bill event: %w", err)
		}
		err = ch.PublishWithContext(ctx, p.exchange, BillCreatedRoutingKey,
			false, // mandatory
			false, // immediate
			msg,
		)
		if err == nil {
			break
		}
		if attempt == 2 || !ch.IsClosed() {
			return fmt.Errorf("publish bill event: %w", err)
		}
		log.Warn().Err(err).Str("event_id", evt.ID).Msg("rabbitmq channel closed during publish, retrying")
	}

	log.Debug().
		Str("event_id", evt.ID).
		Str("bill_id", bill.ID).
		Str("exchange", p.exchange).
		Msg("bill.created published")
	return nil
}
