package config

import (
	"github.com/tendant/agroyield/pkg/notification"
)

// EmailConfig holds SMTP settings for the code notifier.
type EmailConfig struct {
	Host     string `env:"EMAIL_HOST" env-default:"smtp.gmail.com"`
	Port     uint16 `env:"EMAIL_PORT" env-default:"587"`
	Username string `env:"EMAIL_USERNAME" env-default:"email@example.com"`
	Password string `env:"EMAIL_PASSWORD" env-default:"password"`
	From     string `env:"EMAIL_FROM" env-default:"noreply@example.com"`
	TLS      bool   `env:"EMAIL_TLS" env-default:"true"`
	// Notifier selects the transport: "smtp" or "mock".
	Notifier string `env:"NOTIFIER" env-default:"smtp"`
}

// ToSMTPConfig converts the config to a notification.SMTPConfig
func (e EmailConfig) ToSMTPConfig() notification.SMTPConfig {
	return notification.SMTPConfig{
		Host:     e.Host,
		Port:     int(e.Port),
		Username: e.Username,
		Password: e.Password,
		From:     e.From,
		TLS:      e.TLS,
	}
}

// NotificationConfig controls the asynchronous delivery worker.
type NotificationConfig struct {
	MaxRetries  int    `env:"NOTIFY_MAX_RETRIES" env-default:"3"`
	BackoffBase string `env:"NOTIFY_BACKOFF_BASE" env-default:"PT60S"`
	QueueSize   int    `env:"NOTIFY_QUEUE_SIZE" env-default:"256"`
	Workers     int    `env:"NOTIFY_WORKERS" env-default:"2"`
}

// DispatcherOptions converts the config into notification.Dispatcher options.
func (n NotificationConfig) DispatcherOptions() ([]notification.DispatcherOption, error) {
	base, err := parseDurationISO8601(n.BackoffBase)
	if err != nil {
		return nil, err
	}
	return []notification.DispatcherOption{
		notification.WithMaxRetries(n.MaxRetries),
		notification.WithBackoffBase(base),
		notification.WithQueueSize(n.QueueSize),
		notification.WithWorkers(n.Workers),
	}, nil
}
