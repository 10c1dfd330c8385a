// Package event publishes billing events to RabbitMQ.
package event

import (
	"fmt"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog/log"
)

// brokerConnection is the subset of *amqp.Connection the Connection uses.
type brokerConnection interface {
	Channel() (Channel, error)
	IsClosed() bool
	Close() error
}

type dialFunc func(url string) (brokerConnection, error)

// amqpConnection adapts *amqp.Connection to brokerConnection.
type amqpConnection struct {
	*amqp.Connection
}

func (c amqpConnection) Channel() (Channel, error) {
	ch, err := c.Connection.Channel()
	if err != nil {
		return nil, err
	}
	return ch, nil
}

func dialAMQP(url string) (brokerConnection, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, err
	}
	return amqpConnection{conn}, nil
}

// Connection hands out a RabbitMQ channel and heals it lazily: when the
// channel or the connection under it has been closed, the next Channel call
// redials, reopens the channel and replays every OnChannel setup on it.
type Connection struct {
	url  string
	dial dialFunc

	mu      sync.Mutex
	conn    brokerConnection
	channel Channel
	setups  []func(Channel) error
	closed  bool
}

// Connect dials the broker at url and opens a channel.
func Connect(url string) (*Connection, error) {
	return connect(url, dialAMQP)
}

func connect(url string, dial dialFunc) (*Connection, error) {
	c := &Connection{url: url, dial: dial}
	if _, err := c.Channel(); err != nil {
		return nil, err
	}
	log.Info().Msg("rabbitmq connection established")
	return c, nil
}

// OnChannel registers fn to run on the current channel and on every channel
// opened after a reconnect.
func (c *Connection) OnChannel(fn func(Channel) error) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.channel != nil && !c.channel.IsClosed() {
		if err := fn(c.channel); err != nil {
			return err
		}
	}
	c.setups = append(c.setups, fn)
	return nil
}

// Channel returns an open channel, reconnecting first if needed.
func (c *Connection) Channel() (Channel, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil, amqp.ErrClosed
	}
	if c.channel != nil && !c.channel.IsClosed() {
		return c.channel, nil
	}

	if c.conn == nil || c.conn.IsClosed() {
		redial := c.conn != nil
		conn, err := c.dial(c.url)
		if err != nil {
			return nil, fmt.Errorf("connect to rabbitmq: %w", err)
		}
		c.conn = conn
		if redial {
			log.Warn().Msg("rabbitmq connection re-established")
		}
	}

	ch, err := c.conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("open rabbitmq channel: %w", err)
	}
	for _, setup := range c.setups {
		if err := setup(ch); err != nil {
			_ = ch.Close()
			return nil, err
		}
	}
	c.channel = ch
	return ch, nil
}

// Close closes the channel and then the connection. Channel fails afterwards.
func (c *Connection) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.closed = true
	if c.channel != nil && !c.channel.IsClosed() {
		if err := c.channel.Close(); err != nil {
			log.Warn().Err(err).Msg("failed to close rabbitmq channel")
		}
	}
	if c.conn != nil && !c.conn.IsClosed() {
		if err := c.conn.Close(); err != nil {
			return fmt.Errorf("close rabbitmq connection: %w", err)
		}
	}
	log.Info().Msg("rabbitmq connection closed")
	return nil
}
