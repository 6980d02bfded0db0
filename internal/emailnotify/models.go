package emailnotify

import (
	"fmt"

	"avviso/internal/message"
)

// Event is one email notification request, produced by the dispatch worker
// after a message has been admitted and the recipient's email channel is
// open. NotificationID identifies the attempt for dedup and logging.
type Event struct {
	NotificationID string                 `json:"notification_id"`
	Message        message.Metadata       `json:"message"`
	Content        message.Content        `json:"content"`
	SenderMetadata message.SenderMetadata `json:"sender_metadata"`
	To             string                 `json:"to"`
}

func (e *Event) Validate() error {
	if e.NotificationID == "" {
		return fmt.Errorf("missing notification_id")
	}
	if e.Message.ID == "" {
		return fmt.Errorf("missing message id")
	}
	if e.To == "" {
		return fmt.Errorf("missing recipient address")
	}
	if e.Content.Subject == "" {
		return fmt.Errorf("missing subject")
	}
	return nil
}
