package notification

import (
	"context"
	"errors"
	"fmt"
)

// NotificationSystem represents a transport (e.g. email).
type NotificationSystem string

// NoticeType identifies what is being sent.
type NoticeType string

const (
	EmailSystem NotificationSystem = "email"

	RegistrationCodeNotice  NoticeType = "registration_code"
	PasswordResetCodeNotice NoticeType = "password_reset_code"
	EmailChangeCodeNotice   NoticeType = "email_change_code"
)

// NoticeTemplate holds the subject and bodies of a notice. Either body may be empty.
type NoticeTemplate struct {
	Subject string
	Text    string
	Html    string
}

// NotificationManager manages notifiers and notice templates.
type NotificationManager struct {
	notifiers            map[NotificationSystem]Notifier
	notificationRegistry map[NoticeType]map[NotificationSystem]NoticeTemplate
}

// NewNotificationManager creates and returns a new NotificationManager.
func NewNotificationManager() *NotificationManager {
	return &NotificationManager{
		notifiers:            make(map[NotificationSystem]Notifier),
		notificationRegistry: make(map[NoticeType]map[NotificationSystem]NoticeTemplate),
	}
}

// RegisterNotifier registers a notifier for a specific system.
func (nm *NotificationManager) RegisterNotifier(system NotificationSystem, notifier Notifier) {
	nm.notifiers[system] = notifier
}

// RegisterNotification adds or replaces the template of a notice type on a system.
func (nm *NotificationManager) RegisterNotification(noticeType NoticeType, system NotificationSystem, tmpl NoticeTemplate) error {
	if noticeType == "" || system == "" {
		return fmt.Errorf("invalid input: notice type and system cannot be empty")
	}
	if tmpl.Text == "" && tmpl.Html == "" {
		return fmt.Errorf("invalid input: template for %s has no body", noticeType)
	}
	if _, exists := nm.notificationRegistry[noticeType]; !exists {
		nm.notificationRegistry[noticeType] = make(map[NotificationSystem]NoticeTemplate)
	}
	nm.notificationRegistry[noticeType][system] = tmpl
	return nil
}

// Send delivers the notice through every system that has both a template and a notifier.
func (nm *NotificationManager) Send(ctx context.Context, noticeType NoticeType, notification NotificationData) error {
	systemTemplates, exists := nm.notificationRegistry[noticeType]
	if !exists {
		return fmt.Errorf("no templates registered for notice type: %s", noticeType)
	}

	var errs []error
	sent := 0
	for system, tmpl := range systemTemplates {
		notifier, ok := nm.notifiers[system]
		if !ok {
			continue
		}
		if err := notifier.Send(ctx, noticeType, notification, tmpl); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", system, err))
			continue
		}
		sent++
	}
	if sent == 0 && len(errs) == 0 {
		return fmt.Errorf("no notifier registered for notice type: %s", noticeType)
	}
	return errors.Join(errs...)
}
