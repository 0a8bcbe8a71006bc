package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/klokku/pocketbudget/internal/config"
	amqp "github.com/rabbitmq/amqp091-go"
	log "github.com/sirupsen/logrus"
)

const publishTimeout = 5 * time.Second

type amqpChannel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// AMQPSink publishes notifications as persistent JSON messages on a topic exchange.
type AMQPSink struct {
	conn       *amqp.Connection
	channel    amqpChannel
	exchange   string
	routingKey string
}

func DialAMQP(cfg config.AMQP) (*AMQPSink, error) {
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("dial AMQP: %w", err)
	}
	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	err = channel.ExchangeDeclare(
		cfg.Exchange, // name
		"topic",      // type
		true,         // durable
		false,        // auto-deleted
		false,        // internal
		false,        // no-wait
		nil,          // arguments
	)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("declare exchange: %w", err)
	}

	log.Infof("Publishing ledger changes to AMQP exchange %s", cfg.Exchange)
	sink := newAMQPSink(channel, cfg.Exchange, cfg.RoutingKey)
	sink.conn = conn
	return sink, nil
}

func newAMQPSink(channel amqpChannel, exchange, routingKey string) *AMQPSink {
	return &AMQPSink{channel: channel, exchange: exchange, routingKey: routingKey}
}

func (s *AMQPSink) Send(ctx context.Context, n Notification) error {
	body, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	err = s.channel.PublishWithContext(ctx,
		s.exchange,   // exchange
		s.routingKey, // routing key
		false,        // mandatory
		false,        // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    n.At,
			Type:         n.Type,
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("publish %s: %w", n.Type, err)
	}
	return nil
}

func (s *AMQPSink) Close() error {
	if s.conn == nil {
		return nil
	}
	return s.conn.Close()
}
