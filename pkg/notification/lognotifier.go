package notification

import (
	"context"
	"log/slog"
)

// LogNotifier writes notices to the default logger instead of delivering them.
// Used for local development with NOTIFIER=mock.
type LogNotifier struct{}

func (LogNotifier) Send(ctx context.Context, noticeType NoticeType, notification NotificationData, tmpl NoticeTemplate) error {
	slog.InfoContext(ctx, "Notice logged, not delivered", "type", noticeType, "to", notification.To, "subject", tmpl.Subject, "data", notification.Data)
	return nil
}
