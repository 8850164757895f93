package verification

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/tendant/agroyield/pkg/account"
)

// InMemoryRepository implements Repository with maps. Account mutations go
// through accounts; the mutex makes each composite operation atomic with respect
// to other callers of this repository.
type InMemoryRepository struct {
	mu           sync.Mutex
	accounts     account.Repository
	pending      map[string]PendingRegistration
	emailCodes   map[string]CodeRecord
	resetCodes   map[uuid.UUID]CodeRecord
	emailChanges map[uuid.UUID]EmailChangeRequest
}

func NewInMemoryRepository(accounts account.Repository) *InMemoryRepository {
	return &InMemoryRepository{
		accounts:     accounts,
		pending:      make(map[string]PendingRegistration),
		emailCodes:   make(map[string]CodeRecord),
		resetCodes:   make(map[uuid.UUID]CodeRecord),
		emailChanges: make(map[uuid.UUID]EmailChangeRequest),
	}
}

func (r *InMemoryRepository) SavePendingRegistration(ctx context.Context, pending PendingRegistration, code CodeRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pending[pending.Email] = pending
	r.emailCodes[pending.Email] = code
	return nil
}

func (r *InMemoryRepository) GetPendingRegistration(ctx context.Context, email string) (PendingRegistration, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.pending[email]
	if !ok {
		return PendingRegistration{}, ErrPendingNotFound
	}
	return p, nil
}

func (r *InMemoryRepository) GetEmailCode(ctx context.Context, email string) (CodeRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.emailCodes[email]
	if !ok {
		return CodeRecord{}, ErrCodeNotFound
	}
	return c, nil
}

func (r *InMemoryRepository) CompleteRegistration(ctx context.Context, email, code string, params account.CreateParams) (account.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.emailCodes[email]
	if !ok || c.Code != code {
		return account.Account{}, ErrCodeNotFound
	}
	if _, ok := r.pending[email]; !ok {
		return account.Account{}, ErrPendingNotFound
	}
	// Create first: it is the only step that can fail.
	created, err := r.accounts.Create(ctx, params)
	if err != nil {
		return account.Account{}, err
	}
	delete(r.emailCodes, email)
	delete(r.pending, email)
	return created, nil
}

func (r *InMemoryRepository) SaveResetCode(ctx context.Context, accountID uuid.UUID, code CodeRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.resetCodes[accountID] = code
	return nil
}

func (r *InMemoryRepository) GetResetCode(ctx context.Context, accountID uuid.UUID) (CodeRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.resetCodes[accountID]
	if !ok {
		return CodeRecord{}, ErrCodeNotFound
	}
	return c, nil
}

func (r *InMemoryRepository) ConsumeResetCode(ctx context.Context, accountID uuid.UUID, code string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.resetCodes[accountID]
	if !ok || c.Code != code {
		return ErrCodeNotFound
	}
	delete(r.resetCodes, accountID)
	return nil
}

func (r *InMemoryRepository) CompletePasswordReset(ctx context.Context, accountID uuid.UUID, passwordHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.accounts.UpdatePassword(ctx, accountID, passwordHash); err != nil {
		return err
	}
	delete(r.resetCodes, accountID)
	return nil
}

func (r *InMemoryRepository) SaveEmailChange(ctx context.Context, req EmailChangeRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, existing := range r.emailChanges {
		if existing.NewEmail == req.NewEmail && id != req.AccountID {
			delete(r.emailChanges, id)
		}
	}
	r.emailChanges[req.AccountID] = req
	return nil
}

func (r *InMemoryRepository) GetEmailChange(ctx context.Context, newEmail string) (EmailChangeRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, req := range r.emailChanges {
		if req.NewEmail == newEmail {
			return req, nil
		}
	}
	return EmailChangeRequest{}, ErrRequestNotFound
}

func (r *InMemoryRepository) CompleteEmailChange(ctx context.Context, accountID uuid.UUID, newEmail, code string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	req, ok := r.emailChanges[accountID]
	if !ok || req.NewEmail != newEmail || req.Code != code {
		return ErrRequestNotFound
	}
	if err := r.accounts.UpdateEmail(ctx, accountID, newEmail); err != nil {
		return err
	}
	delete(r.emailChanges, accountID)
	return nil
}

func (r *InMemoryRepository) PurgeExpired(ctx context.Context, now, pendingBefore time.Time) (PurgeResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var res PurgeResult
	for k, c := range r.emailCodes {
		if c.ExpiresAt.Before(now) {
			delete(r.emailCodes, k)
			res.EmailCodes++
		}
	}
	for k, c := range r.resetCodes {
		if c.ExpiresAt.Before(now) {
			delete(r.resetCodes, k)
			res.ResetCodes++
		}
	}
	for k, c := range r.emailChanges {
		if c.ExpiresAt.Before(now) {
			delete(r.emailChanges, k)
			res.EmailChanges++
		}
	}
	for k, p := range r.pending {
		if _, live := r.emailCodes[k]; !live && p.CreatedAt.Before(pendingBefore) {
			delete(r.pending, k)
			res.PendingRegistrations++
		}
	}
	return res, nil
}
