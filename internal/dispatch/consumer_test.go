package dispatch

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

	"avviso/internal/activation"
	"avviso/internal/message"
	"avviso/internal/permission"
	"avviso/internal/preference"
	"avviso/internal/profile"
	"avviso/pkg/domain"
)

type fakeDeduper struct {
	seen       map[domain.MessageID]bool
	checkErr   error
	failChecks int
	markErr    error
	marked     []domain.MessageID
	checkHits  int
}

func newFakeDeduper() *fakeDeduper {
	return &fakeDeduper{seen: map[domain.MessageID]bool{}}
}

func (d *fakeDeduper) AlreadyProcessed(_ context.Context, id domain.MessageID) (bool, error) {
	d.checkHits++
	if d.failChecks > 0 {
		d.failChecks--
		return false, errors.New("redis down")
	}
	if d.checkErr != nil {
		return false, d.checkErr
	}
	return d.seen[id], nil
}

func (d *fakeDeduper) MarkProcessed(_ context.Context, id domain.MessageID) error {
	if d.markErr != nil {
		return d.markErr
	}
	d.marked = append(d.marked, id)
	return nil
}

// newHandlerConsumer wires a Consumer around in-memory stores, with no kafka
// clients: the tests below exercise handleRecord paths that never produce.
func newHandlerConsumer(t *testing.T, dedup Deduper) (*Consumer, *profile.MemoryStore, *message.MemoryStore) {
	t.Helper()
	profiles := profile.NewMemoryStore()
	messages := message.NewMemoryStore()
	engine := permission.NewEngine(
		profiles, preference.NewMemoryStore(), activation.NewMemoryStore(),
		time.Time{}, false, nil,
	)
	activity := NewActivity(engine, message.NewMemoryContentStore(), messages, slog.New(slog.DiscardHandler))
	consumer := NewConsumer(nil, nil, activity, dedup, "avviso.notifications.email", slog.New(slog.DiscardHandler), nil)
	return consumer, profiles, messages
}

func recordFor(t *testing.T, event *CreatedMessageEvent) *kgo.Record {
	t.Helper()
	value, err := json.Marshal(event)
	require.NoError(t, err)
	return &kgo.Record{Topic: "avviso.messages.created", Value: value}
}

func TestHandleRecord_UndecodableRecordIsDropped(t *testing.T) {
	dedup := newFakeDeduper()
	consumer, _, _ := newHandlerConsumer(t, dedup)

	err := consumer.handleRecord(context.Background(), &kgo.Record{Value: []byte("{not json")})

	require.NoError(t, err, "a record that can never decode must be committed, not retried")
	assert.Zero(t, dedup.checkHits)
}

func TestHandleRecord_DuplicateSkipped(t *testing.T) {
	dedup := newFakeDeduper()
	dedup.seen[testMessageID] = true
	consumer, _, messages := newHandlerConsumer(t, dedup)

	err := consumer.handleRecord(context.Background(), recordFor(t, validEvent()))

	require.NoError(t, err)
	_, findErr := messages.Find(context.Background(), testMessageID)
	assert.Error(t, findErr, "duplicates must not be re-dispatched")
}

func TestHandleRecord_DedupFailureIsTransient(t *testing.T) {
	dedup := newFakeDeduper()
	dedup.checkErr = errors.New("redis down")
	consumer, _, _ := newHandlerConsumer(t, dedup)

	err := consumer.handleRecord(context.Background(), recordFor(t, validEvent()))

	require.Error(t, err)
}

func TestHandleRecord_DeniedMessageMarkedProcessed(t *testing.T) {
	dedup := newFakeDeduper()
	consumer, _, _ := newHandlerConsumer(t, dedup)
	// No profile stored: the activity denies with PROFILE_NOT_FOUND, which
	// is terminal and must not be retried.

	err := consumer.handleRecord(context.Background(), recordFor(t, validEvent()))

	require.NoError(t, err)
	assert.Equal(t, []domain.MessageID{testMessageID}, dedup.marked)
}

func TestHandleRecord_SuccessWithoutEmailAddress(t *testing.T) {
	dedup := newFakeDeduper()
	consumer, profiles, messages := newHandlerConsumer(t, dedup)
	require.NoError(t, profiles.Save(context.Background(), &profile.Profile{
		FiscalCode:     testFiscalCode,
		IsInboxEnabled: true,
		IsEmailEnabled: true,
		// No address on file: the email event must be skipped, so the nil
		// producer is never touched.
		PreferencesSettings: domain.PreferencesSettings{Mode: domain.ModeAuto, Version: 1},
		UpdatedAt:           time.Now().Unix(),
	}))

	err := consumer.handleRecord(context.Background(), recordFor(t, validEvent()))

	require.NoError(t, err)
	meta, findErr := messages.Find(context.Background(), testMessageID)
	require.NoError(t, findErr)
	assert.False(t, meta.IsPending)
	assert.Equal(t, []domain.MessageID{testMessageID}, dedup.marked)
}

func TestProcessRecord_RetriesTransientFaultInPlace(t *testing.T) {
	dedup := newFakeDeduper()
	dedup.failChecks = 2
	consumer, _, _ := newHandlerConsumer(t, dedup)
	consumer.backoff = time.Millisecond

	err := consumer.processRecord(context.Background(), recordFor(t, validEvent()))

	require.NoError(t, err)
	assert.Equal(t, 3, dedup.checkHits,
		"the same record must be retried until the fault clears, not abandoned for a fresh poll")
	assert.Equal(t, []domain.MessageID{testMessageID}, dedup.marked)
}

func TestProcessRecord_StopsWhenContextEnds(t *testing.T) {
	dedup := newFakeDeduper()
	dedup.checkErr = errors.New("redis down")
	consumer, _, _ := newHandlerConsumer(t, dedup)
	consumer.backoff = time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	err := consumer.processRecord(ctx, recordFor(t, validEvent()))

	require.ErrorIs(t, err, context.Canceled)
	assert.GreaterOrEqual(t, dedup.checkHits, 2, "the record keeps retrying until shutdown")
	assert.Empty(t, dedup.marked, "a record that never reached a terminal outcome must not be marked")
}

func TestEmailChannelOpen(t *testing.T) {
	openProfile := &profile.Profile{IsEmailEnabled: true, Email: "citizen@example.com"}

	tests := []struct {
		name   string
		result *Result
		want   bool
	}{
		{
			name:   "failure result",
			result: failure(ReasonBadData),
			want:   false,
		},
		{
			name: "email blocked for sender",
			result: &Result{
				Kind:                   KindSuccess,
				BlockedInboxOrChannels: []domain.Channel{domain.ChannelEmail},
				Profile:                openProfile,
			},
			want: false,
		},
		{
			name: "email disabled on profile",
			result: &Result{
				Kind:    KindSuccess,
				Profile: &profile.Profile{IsEmailEnabled: false, Email: "citizen@example.com"},
			},
			want: false,
		},
		{
			name: "no address on file",
			result: &Result{
				Kind:    KindSuccess,
				Profile: &profile.Profile{IsEmailEnabled: true},
			},
			want: false,
		},
		{
			name: "open",
			result: &Result{
				Kind:                   KindSuccess,
				BlockedInboxOrChannels: []domain.Channel{domain.ChannelWebhook},
				Profile:                openProfile,
			},
			want: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, emailChannelOpen(tt.result))
		})
	}
}
