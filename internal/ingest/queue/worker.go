// Package queue consumes import jobs from NATS JetStream. An external
// scheduler publishes one message per desired run; the worker pulls them
// with a durable consumer, retries with backoff and dead-letters poison
// messages.
package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

const (
	StreamName    = "INGESTION_JOBS"
	SubjectImport = "ingestion.schedule.import"
	SubjectDLQ    = "ingestion.dlq"

	durableImport = "ingestion_schedule"
)

// ImportJob asks for one import run. Days <= 0 means "use the configured
// default window".
type ImportJob struct {
	Days int `json:"days"`
}

// Worker pulls import jobs and runs them through the handler.
type Worker struct {
	Log     *zap.Logger
	JS      nats.JetStreamContext
	Handler func(ctx context.Context, days int) error

	MaxDeliver int
}

func NewWorker(log *zap.Logger, nc *nats.Conn, handler func(ctx context.Context, days int) error) (*Worker, error) {
	js, err := nc.JetStream()
	if err != nil {
		return nil, err
	}
	return &Worker{Log: log, JS: js, Handler: handler, MaxDeliver: 5}, nil
}

// EnsureStream creates or widens the job stream.
func (w *Worker) EnsureStream() error {
	info, err := w.JS.StreamInfo(StreamName)
	if err == nil {
		for _, s := range info.Config.Subjects {
			if s == "ingestion.>" {
				return nil
			}
		}
		cfg := info.Config
		cfg.Subjects = []string{"ingestion.>"}
		_, err := w.JS.UpdateStream(&cfg)
		return err
	}
	if !errors.Is(err, nats.ErrStreamNotFound) {
		return err
	}
	_, err = w.JS.AddStream(&nats.StreamConfig{
		Name:     StreamName,
		Subjects: []string{"ingestion.>"},
		Storage:  nats.FileStorage,
		MaxAge:   7 * 24 * time.Hour,
	})
	return err
}

func (w *Worker) Run(ctx context.Context) error {
	if err := w.EnsureStream(); err != nil {
		return err
	}

	sub, err := w.JS.PullSubscribe(SubjectImport, durableImport)
	if err != nil {
		return err
	}

	w.Log.Info("import job consumer started", zap.String("subject", SubjectImport))
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		msgs, err := sub.Fetch(1, nats.MaxWait(2*time.Second))
		if err != nil {
			if errors.Is(err, nats.ErrTimeout) {
				continue
			}
			return err
		}
		for _, m := range msgs {
			w.handleMsg(ctx, m)
		}
	}
}

func (w *Worker) handleMsg(ctx context.Context, m *nats.Msg) {
	md, _ := m.Metadata()
	numDelivered := uint64(1)
	if md != nil {
		numDelivered = md.NumDelivered
	}

	if w.MaxDeliver > 0 && int(numDelivered) > w.MaxDeliver {
		_ = w.publishDLQ(m.Data, fmt.Sprintf("max deliveries exceeded: %d", numDelivered))
		_ = m.Ack()
		return
	}

	var job ImportJob
	if err := json.Unmarshal(m.Data, &job); err != nil {
		w.Log.Warn("bad import job payload", zap.Error(err))
		_ = m.Ack()
		return
	}

	if err := w.Handler(ctx, job.Days); err != nil {
		w.Log.Warn("import job failed",
			zap.Int("days", job.Days),
			zap.Uint64("attempt", numDelivered),
			zap.Error(err))
		_ = m.NakWithDelay(backoffDelay(numDelivered))
		return
	}
	_ = m.Ack()
}

func (w *Worker) publishDLQ(data []byte, reason string) error {
	msg := map[string]any{"subject": SubjectImport, "reason": reason, "payload": json.RawMessage(data)}
	b, _ := json.Marshal(msg)
	_, err := w.JS.Publish(SubjectDLQ, b)
	return err
}
