package account

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX is satisfied by *pgxpool.Pool, *pgx.Conn and pgx.Tx so the same queries
// run standalone or inside a caller's transaction.
type DBTX interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

// ProfileUpdate carries the editable profile fields. Nil means unchanged.
type ProfileUpdate struct {
	FirstName       *string
	LastName        *string
	PhoneNumber     *string
	Region          *string
	Role            *Role
	ProfileComplete *bool
}

// Repository persists accounts.
type Repository interface {
	Create(ctx context.Context, params CreateParams) (Account, error)
	GetByID(ctx context.Context, id uuid.UUID) (Account, error)
	GetByEmail(ctx context.Context, email string) (Account, error)
	GetByPhone(ctx context.Context, phone string) (Account, error)
	GetByGoogleID(ctx context.Context, googleID string) (Account, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	PhoneExists(ctx context.Context, phone string) (bool, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, update ProfileUpdate) (Account, error)
	UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error
	UpdateEmail(ctx context.Context, id uuid.UUID, email string) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListByRole(ctx context.Context, role Role) ([]Account, error)
}

const accountColumns = `id, email, phone_number, first_name, last_name, region, google_id, password_hash,
	role, is_active, is_staff, is_superuser, profile_complete, date_joined, updated_at`

// PostgresRepository implements Repository on the accounts table.
type PostgresRepository struct {
	db DBTX
}

func NewPostgresRepository(db DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func scanAccount(row pgx.Row) (Account, error) {
	var a Account
	var role string
	err := row.Scan(
		&a.ID, &a.Email, &a.PhoneNumber, &a.FirstName, &a.LastName, &a.Region, &a.GoogleID, &a.PasswordHash,
		&role, &a.IsActive, &a.IsStaff, &a.IsSuperuser, &a.ProfileComplete, &a.DateJoined, &a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Account{}, ErrAccountNotFound
		}
		return Account{}, err
	}
	a.Role = Role(role)
	return a, nil
}

// MapUniqueViolation converts a unique-constraint error on accounts into the
// matching conflict error. Other errors are returned unchanged.
func MapUniqueViolation(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != "23505" {
		return err
	}
	switch pgErr.ConstraintName {
	case "accounts_email_key", "email_change_requests_new_email_key":
		return ErrEmailTaken
	case "accounts_phone_number_key":
		return ErrPhoneTaken
	case "accounts_google_id_key":
		return ErrGoogleIDTaken
	}
	return err
}

// CreateTx inserts an account using db, which may be a transaction.
func CreateTx(ctx context.Context, db DBTX, params CreateParams) (Account, error) {
	role := params.Role
	if role == "" {
		role = DefaultRole
	}
	now := time.Now().UTC()
	row := db.QueryRow(ctx, `
		INSERT INTO accounts (id, email, phone_number, first_name, last_name, region, google_id, password_hash,
			role, profile_complete, date_joined, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $11)
		RETURNING `+accountColumns,
		uuid.New(), NormalizeEmail(params.Email), NormalizePhone(params.PhoneNumber), params.FirstName,
		params.LastName, params.Region, params.GoogleID, params.PasswordHash, string(role), params.ProfileComplete, now,
	)
	a, err := scanAccount(row)
	if err != nil {
		return Account{}, MapUniqueViolation(err)
	}
	return a, nil
}

func (r *PostgresRepository) Create(ctx context.Context, params CreateParams) (Account, error) {
	return CreateTx(ctx, r.db, params)
}

func (r *PostgresRepository) GetByID(ctx context.Context, id uuid.UUID) (Account, error) {
	return scanAccount(r.db.QueryRow(ctx, `SELECT `+accountColumns+` FROM accounts WHERE id = $1`, id))
}

func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (Account, error) {
	return scanAccount(r.db.QueryRow(ctx, `SELECT `+accountColumns+` FROM accounts WHERE email = $1`, NormalizeEmail(email)))
}

func (r *PostgresRepository) GetByPhone(ctx context.Context, phone string) (Account, error) {
	return scanAccount(r.db.QueryRow(ctx, `SELECT `+accountColumns+` FROM accounts WHERE phone_number = $1`, phone))
}

func (r *PostgresRepository) GetByGoogleID(ctx context.Context, googleID string) (Account, error) {
	return scanAccount(r.db.QueryRow(ctx, `SELECT `+accountColumns+` FROM accounts WHERE google_id = $1`, googleID))
}

func (r *PostgresRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM accounts WHERE email = $1)`, NormalizeEmail(email)).Scan(&exists)
	return exists, err
}

func (r *PostgresRepository) PhoneExists(ctx context.Context, phone string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM accounts WHERE phone_number = $1)`, phone).Scan(&exists)
	return exists, err
}

func (r *PostgresRepository) UpdateProfile(ctx context.Context, id uuid.UUID, update ProfileUpdate) (Account, error) {
	var role *string
	if update.Role != nil {
		s := string(*update.Role)
		role = &s
	}
	row := r.db.QueryRow(ctx, `
		UPDATE accounts SET
			first_name       = COALESCE($2, first_name),
			last_name        = COALESCE($3, last_name),
			phone_number     = CASE WHEN $4::text IS NULL THEN phone_number WHEN $4 = '' THEN NULL ELSE $4 END,
			region           = COALESCE($5, region),
			role             = COALESCE($6, role),
			profile_complete = COALESCE($7, profile_complete),
			updated_at       = now()
		WHERE id = $1
		RETURNING `+accountColumns,
		id, update.FirstName, update.LastName, update.PhoneNumber, update.Region, role, update.ProfileComplete,
	)
	a, err := scanAccount(row)
	if err != nil {
		return Account{}, MapUniqueViolation(err)
	}
	return a, nil
}

func (r *PostgresRepository) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	return UpdatePasswordTx(ctx, r.db, id, passwordHash)
}

// UpdatePasswordTx replaces the password hash using db, which may be a transaction.
func UpdatePasswordTx(ctx context.Context, db DBTX, id uuid.UUID, passwordHash string) error {
	tag, err := db.Exec(ctx, `UPDATE accounts SET password_hash = $2, updated_at = now() WHERE id = $1`, id, passwordHash)
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrAccountNotFound
	}
	return nil
}

func (r *PostgresRepository) UpdateEmail(ctx context.Context, id uuid.UUID, email string) error {
	return UpdateEmailTx(ctx, r.db, id, email)
}

// UpdateEmailTx replaces the account email using db, which may be a transaction.
func UpdateEmailTx(ctx context.Context, db DBTX, id uuid.UUID, email string) error {
	tag, err := db.Exec(ctx, `UPDATE accounts SET email = $2, updated_at = now() WHERE id = $1`, id, NormalizeEmail(email))
	if err != nil {
		return MapUniqueViolation(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrAccountNotFound
	}
	return nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM accounts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete account: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrAccountNotFound
	}
	return nil
}

func (r *PostgresRepository) ListByRole(ctx context.Context, role Role) ([]Account, error) {
	rows, err := r.db.Query(ctx, `SELECT `+accountColumns+` FROM accounts WHERE role = $1 ORDER BY date_joined, id`, string(role))
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	defer rows.Close()

	var accounts []Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}
