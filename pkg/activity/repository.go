package activity

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/tendant/agroyield/pkg/account"
)

// Repository stores entries. Append enforces the soft cap atomically: when the account
// already holds at least limit entries, its trim oldest entries are removed before the
// new one is written.
type Repository interface {
	Append(ctx context.Context, e Entry, limit, trim int) (Entry, error)
	Recent(ctx context.Context, accountID uuid.UUID, n int) ([]Entry, error)
	Count(ctx context.Context, accountID uuid.UUID) (int, error)
}

// TxDB is a database handle that can open transactions, such as *pgxpool.Pool.
type TxDB interface {
	account.DBTX
	Begin(ctx context.Context) (pgx.Tx, error)
}

type PostgresRepository struct {
	db TxDB
}

func NewPostgresRepository(db TxDB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Append(ctx context.Context, e Entry, limit, trim int) (Entry, error) {
	err := pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		// Serialize writers per account so two inserts cannot both skip the trim.
		if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, e.AccountID.String()); err != nil {
			return fmt.Errorf("failed to lock activity log: %w", err)
		}

		var count int
		if err := tx.QueryRow(ctx, `SELECT count(*) FROM activity_log WHERE account_id = $1`, e.AccountID).Scan(&count); err != nil {
			return fmt.Errorf("failed to count activity: %w", err)
		}
		if count >= limit {
			_, err := tx.Exec(ctx, `
				DELETE FROM activity_log WHERE id IN (
					SELECT id FROM activity_log WHERE account_id = $1
					ORDER BY created_at ASC, id ASC
					LIMIT $2
				)`, e.AccountID, trim)
			if err != nil {
				return fmt.Errorf("failed to trim activity: %w", err)
			}
		}

		return tx.QueryRow(ctx, `
			INSERT INTO activity_log (account_id, action, model_name, object_id, object_name, created_at)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING id`,
			e.AccountID, string(e.Action), e.ModelName, e.ObjectID, e.ObjectName, e.Timestamp,
		).Scan(&e.ID)
	})
	if err != nil {
		return Entry{}, err
	}
	return e, nil
}

func (r *PostgresRepository) Recent(ctx context.Context, accountID uuid.UUID, n int) ([]Entry, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, account_id, action, model_name, object_id, object_name, created_at
		FROM activity_log
		WHERE account_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2`, accountID, n)
	if err != nil {
		return nil, fmt.Errorf("failed to list activity: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var action string
		if err := rows.Scan(&e.ID, &e.AccountID, &action, &e.ModelName, &e.ObjectID, &e.ObjectName, &e.Timestamp); err != nil {
			return nil, err
		}
		e.Action = Action(action)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (r *PostgresRepository) Count(ctx context.Context, accountID uuid.UUID) (int, error) {
	var n int
	err := r.db.QueryRow(ctx, `SELECT count(*) FROM activity_log WHERE account_id = $1`, accountID).Scan(&n)
	return n, err
}

// InMemoryRepository keeps entries in process memory.
type InMemoryRepository struct {
	mu      sync.Mutex
	nextID  int64
	entries map[uuid.UUID][]Entry
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{entries: make(map[uuid.UUID][]Entry)}
}

// sortOldestFirst orders by timestamp, then id.
func sortOldestFirst(entries []Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Timestamp.Equal(entries[j].Timestamp) {
			return entries[i].ID < entries[j].ID
		}
		return entries[i].Timestamp.Before(entries[j].Timestamp)
	})
}

func (r *InMemoryRepository) Append(ctx context.Context, e Entry, limit, trim int) (Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	list := r.entries[e.AccountID]
	if len(list) >= limit {
		sortOldestFirst(list)
		if trim > len(list) {
			trim = len(list)
		}
		list = append([]Entry(nil), list[trim:]...)
	}
	r.nextID++
	e.ID = r.nextID
	r.entries[e.AccountID] = append(list, e)
	return e, nil
}

func (r *InMemoryRepository) Recent(ctx context.Context, accountID uuid.UUID, n int) ([]Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	list := append([]Entry(nil), r.entries[accountID]...)
	sortOldestFirst(list)
	out := make([]Entry, 0, n)
	for i := len(list) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, list[i])
	}
	return out, nil
}

func (r *InMemoryRepository) Count(ctx context.Context, accountID uuid.UUID) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries[accountID]), nil
}
