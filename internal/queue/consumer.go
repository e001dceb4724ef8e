package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"
)

// Consumer drains the reservation queue into an append-only audit log, one
// line per event.
type Consumer struct {
	URL     string
	LogPath string // defaults to logs/reservations.log
	Log     logrus.FieldLogger

	mu sync.Mutex
}

// Run consumes until ctx is cancelled, reconnecting with exponential
// backoff (capped at 30s) whenever the broker goes away.
func (c *Consumer) Run(ctx context.Context) error {
	backoff := time.Second
	for {
		conn, err := amqp.Dial(c.URL)
		if err == nil {
			backoff = time.Second
			err = c.consume(ctx, conn)
			_ = conn.Close()
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		c.Log.WithError(err).WithField("retry_in", backoff.String()).Warn("reservation consumer disconnected")
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
		if backoff < 30*time.Second {
			backoff *= 2
		}
	}
}

func (c *Consumer) consume(ctx context.Context, conn *amqp.Connection) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		return fmt.Errorf("qos: %w", err)
	}
	if _, err := ch.QueueDeclare(ReservationQueueName, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}
	msgs, err := ch.ConsumeWithContext(ctx, ReservationQueueName, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}
	c.Log.WithField("queue", ReservationQueueName).Info("reservation consumer started")

	for d := range msgs {
		if err := c.Handle(d.Body); err != nil {
			c.Log.WithError(err).Error("reservation event rejected")
			_ = d.Nack(false, false) // no requeue: a bad payload would loop forever
			continue
		}
		_ = d.Ack(false)
	}
	return errors.New("deliveries channel closed")
}

// Handle decodes one message body and appends its audit line.
func (c *Consumer) Handle(body []byte) error {
	var ev ReservationEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	path := c.LogPath
	if path == "" {
		path = filepath.Join("logs", "reservations.log")
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer f.Close()
	return WriteLine(f, ev)
}

// WriteLine renders ev as a single audit line.
func WriteLine(w io.Writer, ev ReservationEvent) error {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] reservation %s | event_id=%s | tenant_id=%d | reservation_id=%d",
		ev.OccurredAt, ev.Kind, ev.EventID, ev.TenantID, ev.ReservationID)
	if ev.From != "" {
		fmt.Fprintf(&b, " | from=%s", ev.From)
	}
	fmt.Fprintf(&b, " | to=%s | date=%s | time=%s | party_size=%d", ev.To, ev.Date, ev.Time, ev.PartySize)
	if ev.TableID != 0 {
		fmt.Fprintf(&b, " | table_id=%d | table_number=%d", ev.TableID, ev.TableNumber)
	}
	b.WriteByte('\n')
	_, err := io.WriteString(w, b.String())
	return err
}
