package events

import (
	"context"

	"outreach/pkg/types"

	"github.com/sirupsen/logrus"
)

// EventAppender is implemented by the request event repository.
type EventAppender interface {
	Append(ctx context.Context, event *types.RequestEvent) error
}

// Recorder subscribes to every request event and appends an audit row. Audit
// failures are logged, never propagated into the emitting flow.
type Recorder struct {
	appender EventAppender
	logger   *logrus.Logger
}

func NewRecorder(appender EventAppender, logger *logrus.Logger) *Recorder {
	return &Recorder{appender: appender, logger: logger}
}

func (r *Recorder) Register(dispatcher Dispatcher) {
	for _, eventType := range []EventType{
		EventRequestCreated,
		EventRequestStatusChanged,
		EventRequestAssigned,
	} {
		dispatcher.Subscribe(eventType, r.record)
	}
}

func (r *Recorder) record(ctx context.Context, event Event) {
	row := &types.RequestEvent{
		RequestID: event.RequestID,
		EventType: string(event.Type),
	}
	if event.ActorID != "" {
		actorID := event.ActorID
		row.ActorID = &actorID
	}
	if event.Detail != "" {
		detail := event.Detail
		row.Detail = &detail
	}

	if err := r.appender.Append(ctx, row); err != nil {
		r.logger.WithError(err).WithFields(logrus.Fields{
			"request_id": event.RequestID,
			"event_type": event.Type,
		}).Error("failed to append request audit event")
	}
}
