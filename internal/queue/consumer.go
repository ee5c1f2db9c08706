package queue

// The event consumer listens to the interview.events queue and appends one
// human-readable line per event to logs/interview-events.log.

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// EventLogFile is the file name events are appended to inside the log
// directory.
const EventLogFile = "interview-events.log"

// StartEventConsumer connects to the broker at url, declares the events
// queue and consumes until ctx is cancelled.  It reconnects with
// exponential backoff; a message that cannot be handled is rejected
// without requeue so the loop keeps running.
func StartEventConsumer(ctx context.Context, url, logDir string) error {
	backoff := time.Second
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		conn, err := amqp.Dial(url)
		if err != nil {
			log.Printf("event-consumer: failed to dial broker: %v; retrying in %s", err, backoff)
			if !sleepCtx(ctx, backoff) {
				return ctx.Err()
			}
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second // reset after successful connect

		err = consumeLoop(ctx, conn, logDir)
		_ = conn.Close()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		log.Printf("event-consumer: consume loop ended: %v; reconnecting", err)
		if !sleepCtx(ctx, 2*time.Second) {
			return ctx.Err()
		}
	}
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

func consumeLoop(ctx context.Context, conn *amqp.Connection, logDir string) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		log.Printf("event-consumer: set QoS failed: %v", err)
	}
	if _, err := ch.QueueDeclare(EventsQueue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}
	msgs, err := ch.Consume(EventsQueue, "", false, false, false, false, nil)
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
			if err := HandleMessage(logDir, d.Body); err != nil {
				log.Printf("event-consumer: handle message failed: %v", err)
				_ = d.Nack(false, false) // reject, do not requeue to avoid tight loops
				continue
			}
			_ = d.Ack(false)
		}
	}
}

// HandleMessage decodes one event body and appends it to the event log in
// logDir.
func HandleMessage(logDir string, body []byte) error {
	var ev InterviewEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	if ev.Type == "" || ev.InterviewID == "" {
		return errors.New("event without type or interview id")
	}
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return fmt.Errorf("mkdir logs: %w", err)
	}
	f, err := os.OpenFile(filepath.Join(logDir, EventLogFile), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteString(FormatEvent(ev)); err != nil {
		return fmt.Errorf("write log: %w", err)
	}
	return nil
}

// FormatEvent renders ev as a single log line ending in a newline.
func FormatEvent(ev InterviewEvent) string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s | interview_id=%s", ev.OccurredAt, ev.Type, ev.InterviewID)
	switch ev.Type {
	case EventInterviewScheduled:
		fmt.Fprintf(&b, " | title=%q | candidate=%s | interviewers=[%s] | session=%s | start=%s",
			ev.Title, ev.CandidateID, strings.Join(ev.InterviewerIDs, ","), ev.SessionRef,
			time.UnixMilli(ev.StartTime).UTC().Format(time.RFC3339))
	case EventStatusChanged:
		fmt.Fprintf(&b, " | %s -> %s", ev.FromStatus, ev.ToStatus)
	case EventCommentAdded:
		fmt.Fprintf(&b, " | comment_id=%s | rating=%d", ev.CommentID, ev.Rating)
	}
	if ev.ActorID != "" {
		fmt.Fprintf(&b, " | actor=%s", ev.ActorID)
	}
	b.WriteByte('\n')
	return b.String()
}
