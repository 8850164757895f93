package notification

import (
	"context"
	"sync"
)

// SentNotification is one message captured by MockNotifier.
type SentNotification struct {
	Type NoticeType
	Data NotificationData
}

// MockNotifier records notices instead of delivering them. It satisfies both Notifier
// and Enqueuer. The first FailTimes calls fail with Err.
type MockNotifier struct {
	mu        sync.Mutex
	sent      []SentNotification
	FailTimes int
	Err       error
	calls     int
}

func (m *MockNotifier) record(noticeType NoticeType, notification NotificationData) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.calls <= m.FailTimes {
		return m.Err
	}
	m.sent = append(m.sent, SentNotification{Type: noticeType, Data: notification})
	return nil
}

func (m *MockNotifier) Send(ctx context.Context, noticeType NoticeType, notification NotificationData, _ NoticeTemplate) error {
	return m.record(noticeType, notification)
}

func (m *MockNotifier) Enqueue(noticeType NoticeType, notification NotificationData) error {
	return m.record(noticeType, notification)
}

// Sent returns a copy of the captured notices.
func (m *MockNotifier) Sent() []SentNotification {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]SentNotification, len(m.sent))
	copy(out, m.sent)
	return out
}

// Calls returns how many deliveries were attempted.
func (m *MockNotifier) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Last returns the most recent notice and whether there is one.
func (m *MockNotifier) Last() (SentNotification, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.sent) == 0 {
		return SentNotification{}, false
	}
	return m.sent[len(m.sent)-1], true
}
