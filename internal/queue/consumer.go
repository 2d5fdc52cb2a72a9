package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/iliyamo/edu-leads/internal/logger"
)

// DefaultNotificationLog is where StartLeadConsumer appends one line per
// submitted lead.
const DefaultNotificationLog = "logs/leads.log"

// StartLeadConsumer connects to RabbitMQ, declares the lead.submitted
// queue (durable) and appends every event to logPath. It reconnects with
// exponential backoff and only returns once ctx is cancelled.
func StartLeadConsumer(ctx context.Context, url, logPath string) error {
	if logPath == "" {
		logPath = DefaultNotificationLog
	}
	log := logger.Log.WithField("queue", LeadSubmittedQueue)

	backoff := time.Second
	for {
		conn, err := amqp.Dial(url)
		if err != nil {
			log.WithError(err).Warnf("lead-consumer: dial failed; retrying in %s", backoff)
			if !sleep(ctx, backoff) {
				return ctx.Err()
			}
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second

		err = consumeLoop(ctx, conn, logPath)
		_ = conn.Close()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		log.WithError(err).Warn("lead-consumer: consume loop ended; reconnecting")
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

func consumeLoop(ctx context.Context, conn *amqp.Connection, logPath string) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		logger.Log.WithError(err).Warn("lead-consumer: set QoS failed")
	}
	if _, err := ch.QueueDeclare(LeadSubmittedQueue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}
	msgs, err := ch.Consume(LeadSubmittedQueue, "", false, false, false, false, nil)
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
			if err := handleMessage(d.Body, logPath); err != nil {
				logger.Log.WithError(err).Warn("lead-consumer: handle message failed")
				_ = d.Nack(false, false) // no requeue; a bad payload would loop forever
				continue
			}
			_ = d.Ack(false)
		}
	}
}

func handleMessage(body []byte, logPath string) error {
	var ev LeadSubmittedEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	if ev.LeadID == "" {
		return errors.New("event without lead_id")
	}
	if err := os.MkdirAll(filepath.Dir(logPath), 0o755); err != nil {
		return fmt.Errorf("mkdir logs: %w", err)
	}
	f, err := os.OpenFile(logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteString(formatLine(ev)); err != nil {
		return fmt.Errorf("write log: %w", err)
	}
	return nil
}

func formatLine(ev LeadSubmittedEvent) string {
	return fmt.Sprintf("[%s] Lead submitted | lead_id=%s | name=%q | email=%s | phone=%s | course=%q | source=%s\n",
		ev.SubmittedAt, ev.LeadID, ev.Name, ev.Email, ev.Phone, ev.Course, ev.Source)
}
