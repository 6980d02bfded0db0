package dispatch

import (
	"fmt"

	"avviso/internal/message"
	"avviso/internal/permission"
	"avviso/internal/profile"
	"avviso/pkg/domain"
)

// CreatedMessageEvent is the payload of one record on the created-messages
// topic: the message index entry, its content, and a snapshot of the sender
// service taken at submission time.
type CreatedMessageEvent struct {
	Message        message.Metadata       `json:"message"`
	Content        message.Content        `json:"content"`
	SenderMetadata message.SenderMetadata `json:"sender_metadata"`
}

// Validate checks the event is structurally sound. A failure here is final:
// the record can never be processed and must not trigger any store lookup.
func (e *CreatedMessageEvent) Validate() error {
	if e.Message.ID == "" {
		return fmt.Errorf("missing message id")
	}
	if _, err := domain.ParseFiscalCode(e.Message.FiscalCode.String()); err != nil {
		return fmt.Errorf("fiscal code: %w", err)
	}
	if e.Message.SenderServiceID == "" {
		return fmt.Errorf("missing sender service id")
	}
	if e.Content.Subject == "" {
		return fmt.Errorf("missing subject")
	}
	if e.Content.Markdown == "" {
		return fmt.Errorf("missing markdown body")
	}
	if _, err := domain.ParseOrganizationFiscalCode(e.SenderMetadata.OrganizationFiscalCode.String()); err != nil {
		return fmt.Errorf("organization fiscal code: %w", err)
	}
	if pd := e.Content.PaymentData; pd != nil {
		if pd.NoticeNumber == "" {
			return fmt.Errorf("payment data without notice number")
		}
		if pd.Amount <= 0 {
			return fmt.Errorf("payment data with non-positive amount")
		}
	}
	return nil
}

// ResultKind tags the outcome of a store attempt.
type ResultKind string

const (
	KindSuccess ResultKind = "SUCCESS"
	KindFailure ResultKind = "FAILURE"
)

// Failure reasons beyond the engine's deny reasons.
const ReasonBadData = "BAD_DATA"

// Result is the terminal outcome of processing one created-message event.
// FAILURE is a stable verdict the caller must not retry; transient faults
// are returned as errors instead and never reach a Result.
type Result struct {
	Kind   ResultKind
	Reason string

	// Set on SUCCESS only.
	BlockedInboxOrChannels []domain.Channel
	Profile                *profile.Profile
}

func success(decision *permission.Decision) *Result {
	return &Result{
		Kind:                   KindSuccess,
		BlockedInboxOrChannels: decision.BlockedChannels,
		Profile:                decision.Profile,
	}
}

func failure(reason string) *Result {
	return &Result{Kind: KindFailure, Reason: reason}
}
