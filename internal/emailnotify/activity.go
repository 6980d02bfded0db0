package emailnotify

import (
	"context"
	"fmt"
	"log/slog"
)

// Activity renders and sends one email notification.
type Activity struct {
	mailer Mailer
	from   string
	logger *slog.Logger
}

func NewActivity(mailer Mailer, from string, logger *slog.Logger) *Activity {
	return &Activity{mailer: mailer, from: from, logger: logger}
}

// Notify handles one notification event. A malformed event is dropped after
// logging: it can never succeed and must not block the partition. A send
// failure is transient and propagates for retry.
func (a *Activity) Notify(ctx context.Context, event *Event) error {
	if err := event.Validate(); err != nil {
		a.logger.WarnContext(ctx, "dropping malformed notification event",
			"notification_id", event.NotificationID,
			"error", err,
		)
		return nil
	}

	html, err := RenderHTML(event)
	if err != nil {
		a.logger.WarnContext(ctx, "dropping unrenderable notification",
			"notification_id", event.NotificationID,
			"message_id", event.Message.ID,
			"error", err,
		)
		return nil
	}

	email := Email{
		From:    a.from,
		To:      event.To,
		Subject: event.Content.Subject,
		HTML:    html,
		Text:    RenderText(event),
	}
	if err := a.mailer.Send(ctx, email); err != nil {
		return fmt.Errorf("notify message %s: %w", event.Message.ID, err)
	}

	a.logger.InfoContext(ctx, "email notification sent",
		"notification_id", event.NotificationID,
		"message_id", event.Message.ID,
	)
	return nil
}
