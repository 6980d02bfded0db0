package dispatch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/twmb/franz-go/pkg/kgo"

	"avviso/internal/dispatch/metrics"
	"avviso/internal/emailnotify"
	"avviso/pkg/domain"
)

// retryBackoff is the pause between attempts on a record that failed with a
// transient error.
const retryBackoff = 2 * time.Second

// Consumer drives the store-message pipeline: it reads created-message
// records, runs the activity, and fans admitted messages out to the email
// notification topic. Offsets are committed per record, strictly after the
// record reached a terminal outcome.
type Consumer struct {
	client     *kgo.Client
	producer   *kgo.Client
	activity   *Activity
	dedup      Deduper
	emailTopic string
	logger     *slog.Logger
	metrics    *metrics.Metrics
	backoff    time.Duration
}

func NewConsumer(
	client *kgo.Client,
	producer *kgo.Client,
	activity *Activity,
	dedup Deduper,
	emailTopic string,
	logger *slog.Logger,
	m *metrics.Metrics,
) *Consumer {
	return &Consumer{
		client:     client,
		producer:   producer,
		activity:   activity,
		dedup:      dedup,
		emailTopic: emailTopic,
		logger:     logger,
		metrics:    m,
		backoff:    retryBackoff,
	}
}

// Run polls until ctx is canceled. Each record is driven to a terminal
// outcome before its offset commits; a transient failure retries the same
// record in place, so no later offset on the partition can commit past it.
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

// processRecord retries handleRecord with backoff until the record reaches a
// terminal outcome. The group client does not redeliver records it already
// fetched in a live session, so moving on from a faulted record would lose it
// the moment a later offset commits. A non-nil return means ctx ended.
func (c *Consumer) processRecord(ctx context.Context, record *kgo.Record) error {
	for {
		err := c.handleRecord(ctx, record)
		if err == nil {
			return nil
		}
		c.metrics.IncrementRetry()
		c.logger.ErrorContext(ctx, "record processing failed, retrying in place",
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

// handleRecord processes one record to a terminal outcome. A nil return
// means the record may be committed; an error means it must be retried.
func (c *Consumer) handleRecord(ctx context.Context, record *kgo.Record) error {
	start := time.Now()
	defer func() { c.metrics.ObserveProcessDuration(time.Since(start)) }()

	var event CreatedMessageEvent
	if err := json.Unmarshal(record.Value, &event); err != nil {
		c.logger.WarnContext(ctx, "dropping undecodable record",
			"topic", record.Topic,
			"offset", record.Offset,
			"error", err,
		)
		c.metrics.IncrementOutcome(strings.ToLower(ReasonBadData))
		return nil
	}

	seen, err := c.dedup.AlreadyProcessed(ctx, event.Message.ID)
	if err != nil {
		return err
	}
	if seen {
		c.metrics.IncrementDeduped()
		return nil
	}

	result, err := c.activity.Store(ctx, &event)
	if err != nil {
		return err
	}

	if result.Kind == KindSuccess {
		if err := c.publishEmailEvent(ctx, &event, result); err != nil {
			return err
		}
		c.metrics.IncrementOutcome("success")
	} else {
		c.metrics.IncrementOutcome(strings.ToLower(result.Reason))
	}

	return c.dedup.MarkProcessed(ctx, event.Message.ID)
}

// publishEmailEvent emits a notification request when the email channel is
// open for this message: not blocked per service, enabled on the effective
// profile, and an address is known.
func (c *Consumer) publishEmailEvent(ctx context.Context, event *CreatedMessageEvent, result *Result) error {
	if !emailChannelOpen(result) {
		return nil
	}

	notification := emailnotify.Event{
		NotificationID: uuid.NewString(),
		Message:        event.Message,
		Content:        event.Content,
		SenderMetadata: event.SenderMetadata,
		To:             result.Profile.Email,
	}
	value, err := json.Marshal(notification)
	if err != nil {
		return fmt.Errorf("encode email event for message %s: %w", event.Message.ID, err)
	}

	record := &kgo.Record{
		Topic: c.emailTopic,
		Key:   []byte(event.Message.FiscalCode.String()),
		Value: value,
	}
	if err := c.producer.ProduceSync(ctx, record).FirstErr(); err != nil {
		return fmt.Errorf("publish email event for message %s: %w", event.Message.ID, err)
	}
	return nil
}

// emailChannelOpen reports whether an admitted message may notify by email:
// the channel is not blocked for the sender, the effective profile has email
// on, and an address is known.
func emailChannelOpen(result *Result) bool {
	if result.Kind != KindSuccess {
		return false
	}
	if domain.ContainsChannel(result.BlockedInboxOrChannels, domain.ChannelEmail) {
		return false
	}
	return result.Profile != nil && result.Profile.IsEmailEnabled && result.Profile.Email != ""
}
