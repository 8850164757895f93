package notification

import "context"

// NotificationData is one message for one recipient. Data feeds the templates.
type NotificationData struct {
	To   string            // Recipient address
	Data map[string]string // Template values, e.g. Name, Code
}

// Notifier delivers a rendered notice over one transport.
type Notifier interface {
	Send(ctx context.Context, noticeType NoticeType, notification NotificationData, noticeTemplate NoticeTemplate) error
}

// Sender sends a notice type to a recipient through every registered transport.
type Sender interface {
	Send(ctx context.Context, noticeType NoticeType, notification NotificationData) error
}

// Enqueuer accepts notices for delivery outside the caller's request.
type Enqueuer interface {
	Enqueue(noticeType NoticeType, notification NotificationData) error
}
