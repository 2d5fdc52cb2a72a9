package service

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/iliyamo/edu-leads/internal/logger"
	"github.com/iliyamo/edu-leads/internal/queue"
)

// RabbitPublisher publishes lead events to RabbitMQ. Each publish opens its
// own connection; submissions are rare enough that pooling is not worth
// the reconnect handling.
type RabbitPublisher struct {
	url string
}

func NewRabbitPublisher(url string) *RabbitPublisher { return &RabbitPublisher{url: url} }

// PublishLeadSubmitted publishes ev to the durable lead.submitted queue as
// a persistent message. Errors are logged and returned; LeadService treats
// them as non-fatal.
func (p *RabbitPublisher) PublishLeadSubmitted(ctx context.Context, ev queue.LeadSubmittedEvent) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return p.publish(ctx, queue.LeadSubmittedQueue, body)
}

func (p *RabbitPublisher) publish(ctx context.Context, queueName string, body []byte) error {
	log := logger.Log.WithField("queue", queueName)

	conn, err := amqp.DialConfig(p.url, amqp.Config{Dial: amqp.DefaultDial(5 * time.Second)})
	if err != nil {
		log.WithError(err).Warn("rabbitmq: dial failed")
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		log.WithError(err).Warn("rabbitmq: channel open failed")
		return err
	}
	defer func() { _ = ch.Close() }()

	// Idempotent; durable so messages survive broker restarts.
	if _, err := ch.QueueDeclare(queueName, true, false, false, false, nil); err != nil {
		log.WithError(err).Warn("rabbitmq: queue declare failed")
		return err
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx, "", queueName, false, false, pub); err != nil {
		log.WithError(err).Warn("rabbitmq: publish failed")
		return err
	}
	return nil
}
