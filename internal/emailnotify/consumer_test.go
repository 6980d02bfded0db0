package emailnotify

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twmb/franz-go/pkg/kgo"
)

// flakyMailer fails a fixed number of sends before healing, the shape of an
// SMTP relay coming back after a blip.
type flakyMailer struct {
	failures int
	sent     []Email
}

func (m *flakyMailer) Send(_ context.Context, email Email) error {
	if m.failures > 0 {
		m.failures--
		return errors.New("relay unavailable")
	}
	m.sent = append(m.sent, email)
	return nil
}

func notificationRecord(t *testing.T) *kgo.Record {
	t.Helper()
	value, err := json.Marshal(validNotification())
	require.NoError(t, err)
	return &kgo.Record{Topic: "avviso.notifications.email", Value: value}
}

func newRetryConsumer(mailer Mailer) *Consumer {
	activity := NewActivity(mailer, "no-reply@avviso.example", slog.New(slog.DiscardHandler))
	consumer := NewConsumer(nil, activity, slog.New(slog.DiscardHandler))
	consumer.backoff = time.Millisecond
	return consumer
}

func TestProcessRecord_RetriesUntilRelayHeals(t *testing.T) {
	mailer := &flakyMailer{failures: 2}
	consumer := newRetryConsumer(mailer)

	err := consumer.processRecord(context.Background(), notificationRecord(t))

	require.NoError(t, err)
	require.Len(t, mailer.sent, 1, "the same notification must be retried in place until it sends")
	assert.Equal(t, "citizen@example.com", mailer.sent[0].To)
}

func TestProcessRecord_StopsWhenContextEnds(t *testing.T) {
	mailer := &captureMailer{err: errors.New("relay unavailable")}
	consumer := newRetryConsumer(mailer)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	err := consumer.processRecord(ctx, notificationRecord(t))

	require.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, mailer.sent)
}

func TestHandleRecord_UndecodableRecordIsDropped(t *testing.T) {
	mailer := &captureMailer{}
	consumer := newRetryConsumer(mailer)

	err := consumer.handleRecord(context.Background(), &kgo.Record{Value: []byte("{not json")})

	require.NoError(t, err, "a record that can never decode must be committed, not retried")
	assert.Empty(t, mailer.sent)
}
