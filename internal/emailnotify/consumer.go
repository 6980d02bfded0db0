package emailnotify

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"
)

const retryBackoff = 2 * time.Second

// Consumer reads notification events and hands them to the activity.
// Delivery is at-least-once; SMTP relays deduplicate poorly, so the backoff
// after a transient fault is the only damper on resend storms.
type Consumer struct {
	client   *kgo.Client
	activity *Activity
	logger   *slog.Logger
	backoff  time.Duration
}

func NewConsumer(client *kgo.Client, activity *Activity, logger *slog.Logger) *Consumer {
	return &Consumer{client: client, activity: activity, logger: logger, backoff: retryBackoff}
}

// Run polls until ctx is canceled, committing each record after its terminal
// outcome, mirroring the dispatch worker. Transient send failures retry the
// same record in place; records fetched in a live session are not redelivered
// by a fresh poll.
func (c *Consumer) Run(ctx context.Context) error {
	for {
		fetches := c.client.PollFetches(ctx)
		if fetches.IsClientClosed() || errors.Is(ctx.Err(), context.Canceled) {
			return nil
		}
		fetches.EachError(func(topic string, partition int32, err error) {
			c.logger.ErrorContext(ctx, "fetch error",
				"topic", topic,
				"partition", partition,
				"error", err,
			)
		})

		for _, record := range fetches.Records() {
			if err := c.processRecord(ctx, record); err != nil {
				return nil
			}
			if err := c.client.CommitRecords(ctx, record); err != nil {
				c.logger.ErrorContext(ctx, "commit failed", "error", err)
			}
		}
	}
}

// processRecord retries the notification until it reaches a terminal outcome
// or ctx ends, so a transient SMTP fault never lets a later offset commit
// past an unsent notification.
func (c *Consumer) processRecord(ctx context.Context, record *kgo.Record) error {
	for {
		err := c.handleRecord(ctx, record)
		if err == nil {
			return nil
		}
		c.logger.ErrorContext(ctx, "notification failed, retrying in place",
			"topic", record.Topic,
			"partition", record.Partition,
			"offset", record.Offset,
			"error", err,
		)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(c.backoff):
		}
	}
}

func (c *Consumer) handleRecord(ctx context.Context, record *kgo.Record) error {
	var event Event
	if err := json.Unmarshal(record.Value, &event); err != nil {
		c.logger.WarnContext(ctx, "dropping undecodable record",
			"topic", record.Topic,
			"offset", record.Offset,
			"error", err,
		)
		return nil
	}
	return c.activity.Notify(ctx, &event)
}
