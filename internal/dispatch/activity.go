package dispatch

import (
	"context"
	"fmt"
	"log/slog"

	"avviso/internal/message"
	"avviso/internal/permission"
)

// Activity stores one created message: permission check, payee completion,
// content blob write, then the visibility flip. Both writes are idempotent,
// so a retry after a partial failure converges on the same stored artifact.
type Activity struct {
	engine   *permission.Engine
	contents message.ContentStore
	messages message.Store
	logger   *slog.Logger
}

func NewActivity(engine *permission.Engine, contents message.ContentStore, messages message.Store, logger *slog.Logger) *Activity {
	return &Activity{
		engine:   engine,
		contents: contents,
		messages: messages,
		logger:   logger,
	}
}

// Store processes one created-message event to a terminal Result, or returns
// an error when a lookup or persistence call failed transiently; in that
// case the caller retries the whole event and nothing about the verdict can
// be assumed.
func (a *Activity) Store(ctx context.Context, event *CreatedMessageEvent) (*Result, error) {
	if err := event.Validate(); err != nil {
		a.logger.WarnContext(ctx, "rejecting malformed message event",
			"message_id", event.Message.ID,
			"error", err,
		)
		return failure(ReasonBadData), nil
	}

	msgID := event.Message.ID

	decision, err := a.engine.Evaluate(ctx, permission.Input{
		FiscalCode: event.Message.FiscalCode,
		ServiceID:  event.Message.SenderServiceID,
		Special:    event.SenderMetadata.IsSpecial(),
	})
	if err != nil {
		return nil, fmt.Errorf("evaluate permission for message %s: %w", msgID, err)
	}

	if !decision.Admitted {
		a.logger.InfoContext(ctx, "message delivery denied",
			"message_id", msgID,
			"service_id", event.Message.SenderServiceID,
			"reason", decision.Reason,
		)
		return failure(decision.Reason.String()), nil
	}

	content := completePayee(&event.Content, event.SenderMetadata)

	if err := a.contents.Put(ctx, msgID, content); err != nil {
		return nil, fmt.Errorf("store content for message %s: %w", msgID, err)
	}

	metadata := event.Message
	metadata.IsPending = false
	if err := a.messages.Upsert(ctx, &metadata); err != nil {
		return nil, fmt.Errorf("mark message %s visible: %w", msgID, err)
	}

	a.logger.InfoContext(ctx, "message stored",
		"message_id", msgID,
		"service_id", event.Message.SenderServiceID,
		"blocked_channels", decision.BlockedChannels,
	)
	return success(decision), nil
}

// completePayee fills a missing payee with the sender's organization fiscal
// code. Payment data that already names a payee, or is absent, passes
// through unchanged. The event is never mutated.
func completePayee(content *message.Content, sender message.SenderMetadata) *message.Content {
	if content.PaymentData == nil || content.PaymentData.Payee != nil {
		return content
	}
	completed := *content
	pd := *content.PaymentData
	pd.Payee = &message.Payee{FiscalCode: sender.OrganizationFiscalCode}
	completed.PaymentData = &pd
	return &completed
}
