// Package notice wires the verification-code templates into a notification manager.
package notice

import (
	"embed"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/tendant/agroyield/pkg/notification"
)

//go:embed templates/*
var templateFiles embed.FS

func loadTemplate(filename string) string {
	content, err := templateFiles.ReadFile(filename)
	if err != nil {
		slog.Error("Error reading template file!", "err", err, "filename", filename)
		return ""
	}
	return string(content)
}

var codeNotices = []struct {
	noticeType notification.NoticeType
	subject    string
	file       string
}{
	{notification.RegistrationCodeNotice, "Email Verification Required", "registration_code"},
	{notification.PasswordResetCodeNotice, "Password Reset Request", "password_reset_code"},
	{notification.EmailChangeCodeNotice, "Confirm Your New Email Address", "email_change_code"},
}

// NewNotificationManager registers notifier as the email transport and attaches the
// three code templates to it.
func NewNotificationManager(notifier notification.Notifier) (*notification.NotificationManager, error) {
	nm := notification.NewNotificationManager()
	nm.RegisterNotifier(notification.EmailSystem, notifier)

	for _, n := range codeNotices {
		err := nm.RegisterNotification(n.noticeType, notification.EmailSystem, notification.NoticeTemplate{
			Subject: n.subject,
			Text:    loadTemplate("templates/email/" + n.file + ".txt"),
			Html:    loadTemplate("templates/email/" + n.file + ".html"),
		})
		if err != nil {
			return nil, fmt.Errorf("failed to register %s notification: %w", n.noticeType, err)
		}
	}
	return nm, nil
}

// CodeData builds the template values shared by every code notice.
func CodeData(to, name, code string, ttl time.Duration) notification.NotificationData {
	if name == "" {
		name = "there"
	}
	return notification.NotificationData{
		To: to,
		Data: map[string]string{
			"Name":         name,
			"Code":         code,
			"ValidMinutes": strconv.Itoa(int(ttl.Minutes())),
		},
	}
}
