package account

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// InMemoryRepository implements Repository with maps. Used by tests and the
// in-memory server profile.
type InMemoryRepository struct {
	mu       sync.RWMutex
	accounts map[uuid.UUID]Account
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{accounts: make(map[uuid.UUID]Account)}
}

// conflictLocked returns the conflict error if another account than self
// already holds one of the unique values.
func (r *InMemoryRepository) conflictLocked(self uuid.UUID, email string, phone, googleID *string) error {
	for id, a := range r.accounts {
		if id == self {
			continue
		}
		if email != "" && a.Email == email {
			return ErrEmailTaken
		}
		if phone != nil && a.PhoneNumber != nil && *a.PhoneNumber == *phone {
			return ErrPhoneTaken
		}
		if googleID != nil && a.GoogleID != nil && *a.GoogleID == *googleID {
			return ErrGoogleIDTaken
		}
	}
	return nil
}

func (r *InMemoryRepository) Create(ctx context.Context, params CreateParams) (Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	email := NormalizeEmail(params.Email)
	phone := NormalizePhone(params.PhoneNumber)
	if err := r.conflictLocked(uuid.Nil, email, phone, params.GoogleID); err != nil {
		return Account{}, err
	}
	role := params.Role
	if role == "" {
		role = DefaultRole
	}
	now := time.Now().UTC()
	a := Account{
		ID:              uuid.New(),
		Email:           email,
		PhoneNumber:     phone,
		FirstName:       params.FirstName,
		LastName:        params.LastName,
		Region:          params.Region,
		GoogleID:        params.GoogleID,
		PasswordHash:    params.PasswordHash,
		Role:            role,
		IsActive:        true,
		ProfileComplete: params.ProfileComplete,
		DateJoined:      now,
		UpdatedAt:       now,
	}
	r.accounts[a.ID] = a
	return a, nil
}

func (r *InMemoryRepository) find(match func(Account) bool) (Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, a := range r.accounts {
		if match(a) {
			return a, nil
		}
	}
	return Account{}, ErrAccountNotFound
}

func (r *InMemoryRepository) GetByID(ctx context.Context, id uuid.UUID) (Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.accounts[id]
	if !ok {
		return Account{}, ErrAccountNotFound
	}
	return a, nil
}

func (r *InMemoryRepository) GetByEmail(ctx context.Context, email string) (Account, error) {
	email = NormalizeEmail(email)
	return r.find(func(a Account) bool { return a.Email == email })
}

func (r *InMemoryRepository) GetByPhone(ctx context.Context, phone string) (Account, error) {
	return r.find(func(a Account) bool { return a.PhoneNumber != nil && *a.PhoneNumber == phone })
}

func (r *InMemoryRepository) GetByGoogleID(ctx context.Context, googleID string) (Account, error) {
	return r.find(func(a Account) bool { return a.GoogleID != nil && *a.GoogleID == googleID })
}

func (r *InMemoryRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	_, err := r.GetByEmail(ctx, email)
	return err == nil, nil
}

func (r *InMemoryRepository) PhoneExists(ctx context.Context, phone string) (bool, error) {
	_, err := r.GetByPhone(ctx, phone)
	return err == nil, nil
}

func (r *InMemoryRepository) update(id uuid.UUID, apply func(*Account) error) (Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.accounts[id]
	if !ok {
		return Account{}, ErrAccountNotFound
	}
	if err := apply(&a); err != nil {
		return Account{}, err
	}
	a.UpdatedAt = time.Now().UTC()
	r.accounts[id] = a
	return a, nil
}

func (r *InMemoryRepository) UpdateProfile(ctx context.Context, id uuid.UUID, update ProfileUpdate) (Account, error) {
	return r.update(id, func(a *Account) error {
		if update.PhoneNumber != nil {
			phone := NormalizePhone(update.PhoneNumber)
			if err := r.conflictLocked(id, "", phone, nil); err != nil {
				return err
			}
			a.PhoneNumber = phone
		}
		if update.FirstName != nil {
			a.FirstName = *update.FirstName
		}
		if update.LastName != nil {
			a.LastName = *update.LastName
		}
		if update.Region != nil {
			a.Region = *update.Region
		}
		if update.Role != nil {
			a.Role = *update.Role
		}
		if update.ProfileComplete != nil {
			a.ProfileComplete = *update.ProfileComplete
		}
		return nil
	})
}

func (r *InMemoryRepository) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	_, err := r.update(id, func(a *Account) error {
		a.PasswordHash = passwordHash
		return nil
	})
	return err
}

func (r *InMemoryRepository) UpdateEmail(ctx context.Context, id uuid.UUID, email string) error {
	email = NormalizeEmail(email)
	_, err := r.update(id, func(a *Account) error {
		if err := r.conflictLocked(id, email, nil, nil); err != nil {
			return err
		}
		a.Email = email
		return nil
	})
	return err
}

func (r *InMemoryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.accounts[id]; !ok {
		return ErrAccountNotFound
	}
	delete(r.accounts, id)
	return nil
}

func (r *InMemoryRepository) ListByRole(ctx context.Context, role Role) ([]Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []Account
	for _, a := range r.accounts {
		if a.Role == role {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].DateJoined.Equal(out[j].DateJoined) {
			return out[i].ID.String() < out[j].ID.String()
		}
		return out[i].DateJoined.Before(out[j].DateJoined)
	})
	return out, nil
}
