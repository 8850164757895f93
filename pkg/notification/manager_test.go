package notification

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterNotification(t *testing.T) {
	tests := []struct {
		name        string
		noticeType  NoticeType
		system      NotificationSystem
		template    NoticeTemplate
		shouldError bool
	}{
		{"text and html", PasswordResetCodeNotice, EmailSystem, NoticeTemplate{Subject: "s", Text: "t", Html: "<p>h</p>"}, false},
		{"html only", PasswordResetCodeNotice, EmailSystem, NoticeTemplate{Subject: "s", Html: "<p>h</p>"}, false},
		{"empty type", "", EmailSystem, NoticeTemplate{Subject: "s", Text: "t"}, true},
		{"empty system", PasswordResetCodeNotice, "", NoticeTemplate{Subject: "s", Text: "t"}, true},
		{"no body", PasswordResetCodeNotice, EmailSystem, NoticeTemplate{Subject: "s"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			nm := NewNotificationManager()
			err := nm.RegisterNotification(tt.noticeType, tt.system, tt.template)
			if tt.shouldError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestManagerSend(t *testing.T) {
	ctx := context.Background()

	t.Run("unregistered type", func(t *testing.T) {
		nm := NewNotificationManager()
		nm.RegisterNotifier(EmailSystem, &MockNotifier{})
		assert.Error(t, nm.Send(ctx, EmailChangeCodeNotice, NotificationData{To: "a@example.com"}))
	})

	t.Run("no notifier for system", func(t *testing.T) {
		nm := NewNotificationManager()
		require.NoError(t, nm.RegisterNotification(EmailChangeCodeNotice, EmailSystem, NoticeTemplate{Subject: "s", Text: "t"}))
		assert.Error(t, nm.Send(ctx, EmailChangeCodeNotice, NotificationData{To: "a@example.com"}))
	})

	t.Run("delivers", func(t *testing.T) {
		mock := &MockNotifier{}
		nm := NewNotificationManager()
		nm.RegisterNotifier(EmailSystem, mock)
		require.NoError(t, nm.RegisterNotification(EmailChangeCodeNotice, EmailSystem, NoticeTemplate{Subject: "s", Text: "t"}))
		require.NoError(t, nm.Send(ctx, EmailChangeCodeNotice, NotificationData{To: "a@example.com"}))
		assert.Len(t, mock.Sent(), 1)
	})
}

func TestRenderTemplate(t *testing.T) {
	text, html, err := RenderTemplate(NoticeTemplate{
		Text: "Hello {{.Name}}, code {{.Code}}",
		Html: "<p>{{.Name}}</p>",
	}, map[string]string{"Name": "<Ali>", "Code": "4821"})
	require.NoError(t, err)
	assert.Equal(t, "Hello <Ali>, code 4821", text)
	assert.Equal(t, "<p>&lt;Ali&gt;</p>", html)
}

func TestManagerSend_LogNotifier(t *testing.T) {
	nm := NewNotificationManager()
	nm.RegisterNotifier(EmailSystem, LogNotifier{})
	require.NoError(t, nm.RegisterNotification(RegistrationCodeNotice, EmailSystem, NoticeTemplate{Subject: "s", Text: "code {{.Code}}"}))

	err := nm.Send(context.Background(), RegistrationCodeNotice, NotificationData{To: "a@example.com", Data: map[string]string{"Code": "1234"}})
	assert.NoError(t, err)
}
