package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/dmitrijs2005/ventas/internal/logging"
	"github.com/rabbitmq/amqp091-go"
)

// LockoutRoutingKey is the routing key of lockout events on the exchange.
const LockoutRoutingKey = "seller.blocked"

// amqpChannel is the subset of *amqp091.Channel the producer uses.
type amqpChannel interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp091.Table) error
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp091.Publishing) error
	Close() error
}

// AMQPNotifier publishes lockout events as JSON to a durable topic exchange.
type AMQPNotifier struct {
	conn     *amqp091.Connection
	channel  amqpChannel
	exchange string
	logger   logging.Logger
}

func sanitizeAMQPURL(raw string) (string, error) {
	clean := strings.Trim(strings.TrimSpace(raw), "\"'")
	u, err := url.Parse(clean)
	if err != nil {
		return "", err
	}
	if u.Scheme != "amqp" && u.Scheme != "amqps" {
		return "", errors.New("AMQP scheme must be either 'amqp://' or 'amqps://'")
	}
	return clean, nil
}

// NewAMQPNotifier dials the broker and declares the exchange.
func NewAMQPNotifier(amqpURL, exchange string, logger logging.Logger) (*AMQPNotifier, error) {
	cleanURL, err := sanitizeAMQPURL(amqpURL)
	if err != nil {
		return nil, err
	}

	conn, err := amqp091.DialConfig(cleanURL, amqp091.Config{Dial: amqp091.DefaultDial(10 * time.Second)})
	if err != nil {
		return nil, err
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, err
	}

	n := newAMQPNotifier(ch, exchange, logger)
	n.conn = conn
	if err := n.declare(); err != nil {
		n.Close()
		return nil, err
	}
	return n, nil
}

func newAMQPNotifier(ch amqpChannel, exchange string, logger logging.Logger) *AMQPNotifier {
	return &AMQPNotifier{
		channel:  ch,
		exchange: exchange,
		logger:   logger.With("module", "notify", "sink", "amqp"),
	}
}

func (n *AMQPNotifier) declare() error {
	return n.channel.ExchangeDeclare(
		n.exchange, // name
		"topic",    // type
		true,       // durable
		false,      // autoDelete
		false,      // internal
		false,      // noWait
		nil,        // args
	)
}

func (n *AMQPNotifier) Notify(ctx context.Context, e LockoutEvent) error {
	body, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("amqp: marshal: %w", err)
	}

	err = n.channel.PublishWithContext(ctx,
		n.exchange,        // exchange
		LockoutRoutingKey, // routing key
		false,             // mandatory
		false,             // immediate
		amqp091.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp091.Persistent,
			Timestamp:    time.Now(),
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("amqp: publish: %w", err)
	}
	n.logger.Debug(ctx, "lockout event published", "exchange", n.exchange, "vendedor", e.SalespersonID)
	return nil
}

func (n *AMQPNotifier) Close() {
	if n.channel != nil {
		_ = n.channel.Close()
	}
	if n.conn != nil {
		_ = n.conn.Close()
	}
}
