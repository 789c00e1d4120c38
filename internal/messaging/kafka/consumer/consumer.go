package consumer

import (
	"context"
	"encoding/json"
	"time"

	"go-hrms/internal/events"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// MessageReader is the part of *kafkago.Reader the consumers use.
type MessageReader interface {
	FetchMessage(ctx context.Context) (kafkago.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafkago.Message) error
}

// PointsRecorder credits leaderboard points once per event id.
type PointsRecorder interface {
	Record(ctx context.Context, eventID, employeeID string, points int, completedAt time.Time) (bool, error)
}

// Backoff between Record attempts doubles from RecordRetryBackoff up to
// MaxRecordRetryBackoff.
var (
	RecordRetryBackoff    = 200 * time.Millisecond
	MaxRecordRetryBackoff = 10 * time.Second
)

// ConsumeFunTaskCompleted feeds fun_task.completed events into the leaderboard.
// Messages that fail to decode are committed and dropped. A failed Record is
// retried until it succeeds or ctx is cancelled; the next message is not
// fetched before that, so a later commit never skips an unapplied event.
func ConsumeFunTaskCompleted(
	ctx context.Context,
	reader MessageReader,
	recorder PointsRecorder,
	logger *zap.Logger,
) {
	log := logger.Named("kafka.consumer.funtask_lifecycle")
	log.Info("fun task lifecycle consumer started")

	for {
		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				log.Info("fun task lifecycle consumer stopped")
				return
			}
			log.Error("fetch fun task lifecycle message failed", zap.Error(err))
			continue
		}

		var event events.FunTaskCompletedEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			log.Error("decode fun_task.completed event failed", zap.Error(err))
			_ = reader.CommitMessages(ctx, msg)
			continue
		}

		if event.EventType != "" && event.EventType != events.FunTaskCompletedType {
			log.Debug("skipping fun task event", zap.String("event_type", event.EventType))
			_ = reader.CommitMessages(ctx, msg)
			continue
		}

		recorded, err := recordWithRetry(ctx, recorder, event, log)
		if err != nil {
			log.Info("fun task lifecycle consumer stopped with event unapplied",
				zap.String("event_id", event.EventID),
			)
			return
		}

		if err := reader.CommitMessages(ctx, msg); err != nil {
			log.Error("commit fun task lifecycle message failed", zap.Error(err))
			continue
		}

		if !recorded {
			log.Warn("duplicate fun_task.completed event, skipping",
				zap.String("event_id", event.EventID),
			)
			continue
		}

		log.Info("leaderboard points recorded",
			zap.String("event_id", event.EventID),
			zap.String("fun_task_id", event.FunTaskID),
			zap.String("employee_id", event.AssignedToID),
			zap.Int("points", event.Points),
			zap.String("request_id", event.RequestID),
		)
	}
}

func recordWithRetry(
	ctx context.Context,
	recorder PointsRecorder,
	event events.FunTaskCompletedEvent,
	log *zap.Logger,
) (bool, error) {
	delay := RecordRetryBackoff
	for attempt := 1; ; attempt++ {
		recorded, err := recorder.Record(ctx, event.EventID, event.AssignedToID, event.Points, event.CompletedAt)
		if err == nil {
			return recorded, nil
		}

		log.Error("record leaderboard points failed",
			zap.String("event_id", event.EventID),
			zap.String("employee_id", event.AssignedToID),
			zap.Int("attempt", attempt),
			zap.Duration("retry_in", delay),
			zap.Error(err),
		)

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return false, ctx.Err()
		case <-timer.C:
		}

		delay *= 2
		if delay > MaxRecordRetryBackoff {
			delay = MaxRecordRetryBackoff
		}
	}
}
