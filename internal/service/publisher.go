package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/pkg/errors"
	amqp "github.com/rabbitmq/amqp091-go"
	log "github.com/sirupsen/logrus"

	q "github.com/iliyamo/cinema-catalog/internal/queue"
)

// Publisher sends reservation requests to RabbitMQ.  Each publish opens its
// own connection; reservation intake is low volume.
type Publisher struct {
	url   string
	queue string
}

func NewPublisher(url, queue string) *Publisher {
	return &Publisher{url: url, queue: queue}
}

// PublishReservationRequested publishes ev to the reservation queue as a
// persistent JSON message.  Errors are logged and returned.
func (p *Publisher) PublishReservationRequested(ctx context.Context, ev q.ReservationRequestedEvent) error {
	l := log.WithField("queue", p.queue).WithField("request_id", ev.RequestID)

	conn, err := amqp.Dial(p.url)
	if err != nil {
		l.WithError(err).Error("rabbitmq: dial failed")
		return errors.Wrap(err, "dial rabbitmq")
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		l.WithError(err).Error("rabbitmq: channel open failed")
		return errors.Wrap(err, "open channel")
	}
	defer func() { _ = ch.Close() }()

	// Ensure the queue exists (idempotent). Durable so messages survive broker restarts.
	if _, err := ch.QueueDeclare(
		p.queue, // name
		true,    // durable
		false,   // autoDelete
		false,   // exclusive
		false,   // noWait
		nil,     // args
	); err != nil {
		l.WithError(err).Error("rabbitmq: queue declare failed")
		return errors.Wrap(err, "declare queue")
	}

	body, err := json.Marshal(ev)
	if err != nil {
		return errors.Wrap(err, "marshal event")
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    ev.RequestID,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx,
		"",      // default exchange
		p.queue, // routing key = queue name
		false,   // mandatory
		false,   // immediate
		pub,
	); err != nil {
		l.WithError(err).Error("rabbitmq: publish failed")
		return errors.Wrap(err, "publish")
	}
	l.Info("reservation request published")
	return nil
}
