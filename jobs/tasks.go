// Package jobs runs background work over Asynq: the periodic sweep that
// publishes scheduled articles once their publish time passes.
package jobs

import (
	"context"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/newsdesk-cms/newsdesk/internal/news"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskNewsPublishDue sweeps scheduled articles whose publish time passed.
	TaskNewsPublishDue = "news:publish_due"
	// PublishSweepSpec runs the sweep every minute.
	PublishSweepSpec = "* * * * *"
)

// NewPublishDueTask constructs the sweep task. It carries no payload;
// the handler reads due articles from the store.
func NewPublishDueTask() *asynq.Task {
	return asynq.NewTask(TaskNewsPublishDue, nil)
}

// NewPublishDueHandler processes TaskNewsPublishDue tasks.
func NewPublishDueHandler(service *news.Service, logger *slog.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, _ *asynq.Task) error {
		published, err := service.PublishDue(ctx, time.Now().UTC())
		if err != nil {
			if logger != nil {
				logger.Error("publish sweep", slog.Any("error", err))
			}
			return err
		}
		if published > 0 && logger != nil {
			logger.Info("published scheduled articles", slog.Int64("count", published))
		}
		return nil
	}
}
