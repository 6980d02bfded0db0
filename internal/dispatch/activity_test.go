package dispatch

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"avviso/internal/activation"
	"avviso/internal/message"
	messagemocks "avviso/internal/message/mocks"
	"avviso/internal/permission"
	"avviso/internal/preference"
	"avviso/internal/profile"
	"avviso/pkg/domain"
)

const (
	testFiscalCode domain.FiscalCode             = "FRLFNC88A01H501A"
	testServiceID  domain.ServiceID              = "svc-municipality"
	testOrgFiscal  domain.OrganizationFiscalCode = "12345678901"
	testMessageID  domain.MessageID              = "msg-0001"
)

type activityFixture struct {
	profiles    *profile.MemoryStore
	preferences *preference.MemoryStore
	activations *activation.MemoryStore
	messages    *message.MemoryStore
	contents    *message.MemoryContentStore
	activity    *Activity
}

func newActivityFixture(t *testing.T) *activityFixture {
	t.Helper()
	f := &activityFixture{
		profiles:    profile.NewMemoryStore(),
		preferences: preference.NewMemoryStore(),
		activations: activation.NewMemoryStore(),
		messages:    message.NewMemoryStore(),
		contents:    message.NewMemoryContentStore(),
	}
	engine := permission.NewEngine(f.profiles, f.preferences, f.activations, time.Time{}, false, nil)
	f.activity = NewActivity(engine, f.contents, f.messages, slog.New(slog.DiscardHandler))
	return f
}

func (f *activityFixture) saveProfile(t *testing.T, mode domain.PreferencesMode) {
	t.Helper()
	err := f.profiles.Save(context.Background(), &profile.Profile{
		FiscalCode:     testFiscalCode,
		IsInboxEnabled: true,
		IsEmailEnabled: true,
		Email:          "citizen@example.com",
		PreferencesSettings: domain.PreferencesSettings{
			Mode:    mode,
			Version: 1,
		},
		UpdatedAt: time.Now().Unix(),
	})
	require.NoError(t, err)
}

func validEvent() *CreatedMessageEvent {
	return &CreatedMessageEvent{
		Message: message.Metadata{
			ID:              testMessageID,
			FiscalCode:      testFiscalCode,
			SenderServiceID: testServiceID,
			CreatedAt:       time.Now().Unix(),
			IsPending:       true,
		},
		Content: message.Content{
			Subject:  "Avviso di pagamento",
			Markdown: "Il suo avviso di pagamento è disponibile.",
		},
		SenderMetadata: message.SenderMetadata{
			ServiceName:            "Tributi",
			OrganizationName:       "Comune di Milano",
			DepartmentName:         "Ragioneria",
			OrganizationFiscalCode: testOrgFiscal,
		},
	}
}

func TestStore_AdmittedMessagePersisted(t *testing.T) {
	f := newActivityFixture(t)
	f.saveProfile(t, domain.ModeAuto)

	result, err := f.activity.Store(context.Background(), validEvent())
	require.NoError(t, err)

	assert.Equal(t, KindSuccess, result.Kind)
	assert.Empty(t, result.BlockedInboxOrChannels)
	require.NotNil(t, result.Profile)

	meta, err := f.messages.Find(context.Background(), testMessageID)
	require.NoError(t, err)
	assert.False(t, meta.IsPending, "stored message must be visible")

	content, err := f.contents.Get(context.Background(), testMessageID)
	require.NoError(t, err)
	assert.Equal(t, "Avviso di pagamento", content.Subject)
}

func TestStore_MalformedEventSkipsLookups(t *testing.T) {
	f := newActivityFixture(t)

	tests := []struct {
		name   string
		mangle func(*CreatedMessageEvent)
	}{
		{"missing message id", func(e *CreatedMessageEvent) { e.Message.ID = "" }},
		{"bad fiscal code", func(e *CreatedMessageEvent) { e.Message.FiscalCode = "NOT-A-CF" }},
		{"missing service id", func(e *CreatedMessageEvent) { e.Message.SenderServiceID = "" }},
		{"missing subject", func(e *CreatedMessageEvent) { e.Content.Subject = "" }},
		{"bad organization fiscal code", func(e *CreatedMessageEvent) { e.SenderMetadata.OrganizationFiscalCode = "abc" }},
		{"payment data without notice number", func(e *CreatedMessageEvent) {
			e.Content.PaymentData = &message.PaymentData{Amount: 100}
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			event := validEvent()
			tt.mangle(event)

			result, err := f.activity.Store(context.Background(), event)
			require.NoError(t, err)
			assert.Equal(t, KindFailure, result.Kind)
			assert.Equal(t, ReasonBadData, result.Reason)
		})
	}

	// No profile exists: if validation had not short-circuited, the engine
	// would have answered PROFILE_NOT_FOUND instead of BAD_DATA.
}

func TestStore_DeniedMessageNeverPersisted(t *testing.T) {
	f := newActivityFixture(t)
	f.saveProfile(t, domain.ModeManual) // no preference record: deny

	result, err := f.activity.Store(context.Background(), validEvent())
	require.NoError(t, err)

	assert.Equal(t, KindFailure, result.Kind)
	assert.Equal(t, permission.ReasonSenderBlocked.String(), result.Reason)

	_, err = f.messages.Find(context.Background(), testMessageID)
	assert.Error(t, err, "denied message must not appear in the index")
	_, err = f.contents.Get(context.Background(), testMessageID)
	assert.Error(t, err, "denied message content must not be stored")
}

func TestStore_ProfileNotFound(t *testing.T) {
	f := newActivityFixture(t)

	result, err := f.activity.Store(context.Background(), validEvent())
	require.NoError(t, err)

	assert.Equal(t, KindFailure, result.Kind)
	assert.Equal(t, permission.ReasonProfileNotFound.String(), result.Reason)
}

func TestStore_PayeeCompletion(t *testing.T) {
	tests := []struct {
		name      string
		payment   *message.PaymentData
		wantPayee *message.Payee
	}{
		{
			name:      "no payment data stays absent",
			payment:   nil,
			wantPayee: nil,
		},
		{
			name: "missing payee completed with sender organization",
			payment: &message.PaymentData{
				Amount:       1200,
				NoticeNumber: "302000100000019421",
			},
			wantPayee: &message.Payee{FiscalCode: testOrgFiscal},
		},
		{
			name: "explicit payee preserved",
			payment: &message.PaymentData{
				Amount:       1200,
				NoticeNumber: "302000100000019421",
				Payee:        &message.Payee{FiscalCode: "00000000002"},
			},
			wantPayee: &message.Payee{FiscalCode: "00000000002"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newActivityFixture(t)
			f.saveProfile(t, domain.ModeAuto)

			event := validEvent()
			event.Content.PaymentData = tt.payment

			result, err := f.activity.Store(context.Background(), event)
			require.NoError(t, err)
			require.Equal(t, KindSuccess, result.Kind)

			stored, err := f.contents.Get(context.Background(), testMessageID)
			require.NoError(t, err)
			if tt.payment == nil {
				assert.Nil(t, stored.PaymentData)
			} else {
				require.NotNil(t, stored.PaymentData)
				assert.Equal(t, tt.wantPayee, stored.PaymentData.Payee)
			}
			// The incoming event is left untouched.
			if tt.payment != nil && tt.payment.Payee == nil {
				assert.Nil(t, event.Content.PaymentData.Payee)
			}
		})
	}
}

func TestStore_Idempotent(t *testing.T) {
	f := newActivityFixture(t)
	f.saveProfile(t, domain.ModeAuto)

	first, err := f.activity.Store(context.Background(), validEvent())
	require.NoError(t, err)
	second, err := f.activity.Store(context.Background(), validEvent())
	require.NoError(t, err)

	assert.Equal(t, first, second)

	meta, err := f.messages.Find(context.Background(), testMessageID)
	require.NoError(t, err)
	assert.False(t, meta.IsPending)
}

func TestStore_TransientContentFailure(t *testing.T) {
	ctrl := gomock.NewController(t)

	f := newActivityFixture(t)
	f.saveProfile(t, domain.ModeAuto)

	contents := messagemocks.NewMockContentStore(ctrl)
	contents.EXPECT().
		Put(gomock.Any(), testMessageID, gomock.Any()).
		Return(errors.New("blob store unavailable"))
	messages := messagemocks.NewMockStore(ctrl)

	engine := permission.NewEngine(f.profiles, f.preferences, f.activations, time.Time{}, false, nil)
	activity := NewActivity(engine, contents, messages, slog.New(slog.DiscardHandler))

	result, err := activity.Store(context.Background(), validEvent())
	require.Error(t, err, "granted permission must not mask a persistence fault")
	assert.Nil(t, result)
}

func TestStore_TransientUpsertFailure(t *testing.T) {
	ctrl := gomock.NewController(t)

	f := newActivityFixture(t)
	f.saveProfile(t, domain.ModeAuto)

	contents := messagemocks.NewMockContentStore(ctrl)
	contents.EXPECT().
		Put(gomock.Any(), testMessageID, gomock.Any()).
		Return(nil)
	messages := messagemocks.NewMockStore(ctrl)
	messages.EXPECT().
		Upsert(gomock.Any(), gomock.Any()).
		Return(errors.New("index unavailable"))

	engine := permission.NewEngine(f.profiles, f.preferences, f.activations, time.Time{}, false, nil)
	activity := NewActivity(engine, contents, messages, slog.New(slog.DiscardHandler))

	result, err := activity.Store(context.Background(), validEvent())
	require.Error(t, err)
	assert.Nil(t, result)
}

func TestStore_VisibilityFlippedOnUpsert(t *testing.T) {
	ctrl := gomock.NewController(t)

	f := newActivityFixture(t)
	f.saveProfile(t, domain.ModeAuto)

	contents := messagemocks.NewMockContentStore(ctrl)
	contents.EXPECT().Put(gomock.Any(), testMessageID, gomock.Any()).Return(nil)
	messages := messagemocks.NewMockStore(ctrl)
	messages.EXPECT().
		Upsert(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, meta *message.Metadata) error {
			assert.False(t, meta.IsPending)
			return nil
		})

	engine := permission.NewEngine(f.profiles, f.preferences, f.activations, time.Time{}, false, nil)
	activity := NewActivity(engine, contents, messages, slog.New(slog.DiscardHandler))

	event := validEvent()
	event.Message.IsPending = true
	_, err := activity.Store(context.Background(), event)
	require.NoError(t, err)
}
