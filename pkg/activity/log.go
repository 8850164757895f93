package activity

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	apperrors "github.com/tendant/agroyield/pkg/errors"
)

const (
	DefaultLimit  = 500
	DefaultTrim   = 10
	DefaultRecent = 20
)

// Log records activity for accounts.
type Log struct {
	repo  Repository
	limit int
	trim  int
	now   func() time.Time
}

type Option func(*Log)

// WithCap sets the entry count at which trim oldest entries are dropped before inserting.
func WithCap(limit, trim int) Option {
	return func(l *Log) {
		l.limit = limit
		l.trim = trim
	}
}

func WithClock(now func() time.Time) Option {
	return func(l *Log) {
		l.now = now
	}
}

func NewLog(repo Repository, opts ...Option) *Log {
	l := &Log{
		repo:  repo,
		limit: DefaultLimit,
		trim:  DefaultTrim,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Now returns the log's clock reading, used to render TimeAgo consistently.
func (l *Log) Now() time.Time {
	return l.now()
}

// Record appends an entry for accountID describing action on subject.
func (l *Log) Record(ctx context.Context, accountID uuid.UUID, action Action, subject Subject) error {
	if !action.Valid() {
		return apperrors.Validation("Unknown activity action")
	}
	entry, err := l.repo.Append(ctx, Entry{
		AccountID:  accountID,
		Action:     action,
		ModelName:  ModelTag(subject.ActivityModel()),
		ObjectID:   subject.ActivityID(),
		ObjectName: subject.String(),
		Timestamp:  l.now().UTC(),
	}, l.limit, l.trim)
	if err != nil {
		slog.Error("Failed to record activity", "account_id", accountID, "action", action, "error", err)
		return err
	}
	slog.Debug("Activity recorded", "account_id", accountID, "action", action, "model", entry.ModelName, "object_id", entry.ObjectID)
	return nil
}

// Recent returns the newest n entries of accountID, newest first.
func (l *Log) Recent(ctx context.Context, accountID uuid.UUID, n int) ([]Entry, error) {
	if n <= 0 {
		n = DefaultRecent
	}
	return l.repo.Recent(ctx, accountID, n)
}
