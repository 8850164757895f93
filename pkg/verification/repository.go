package verification

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/tendant/agroyield/pkg/account"
)

// Repository stores pending registrations, codes and email change requests.
// Each Complete* method is one atomic unit: it consumes the matching code and
// applies the account mutation, or does nothing.
type Repository interface {
	SavePendingRegistration(ctx context.Context, pending PendingRegistration, code CodeRecord) error
	GetPendingRegistration(ctx context.Context, email string) (PendingRegistration, error)
	GetEmailCode(ctx context.Context, email string) (CodeRecord, error)
	CompleteRegistration(ctx context.Context, email, code string, params account.CreateParams) (account.Account, error)

	SaveResetCode(ctx context.Context, accountID uuid.UUID, code CodeRecord) error
	GetResetCode(ctx context.Context, accountID uuid.UUID) (CodeRecord, error)
	ConsumeResetCode(ctx context.Context, accountID uuid.UUID, code string) error
	CompletePasswordReset(ctx context.Context, accountID uuid.UUID, passwordHash string) error

	SaveEmailChange(ctx context.Context, req EmailChangeRequest) error
	GetEmailChange(ctx context.Context, newEmail string) (EmailChangeRequest, error)
	CompleteEmailChange(ctx context.Context, accountID uuid.UUID, newEmail, code string) error

	PurgeExpired(ctx context.Context, now, pendingBefore time.Time) (PurgeResult, error)
}

// TxDB is a database handle that can open transactions, such as *pgxpool.Pool.
type TxDB interface {
	account.DBTX
	Begin(ctx context.Context) (pgx.Tx, error)
}

// PostgresRepository implements Repository with pgx transactions.
type PostgresRepository struct {
	db TxDB
}

func NewPostgresRepository(db TxDB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) SavePendingRegistration(ctx context.Context, pending PendingRegistration, code CodeRecord) error {
	return pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO pending_registrations (email, phone_number, first_name, last_name, region, role, password, re_password, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			ON CONFLICT (email) DO UPDATE SET
				phone_number = EXCLUDED.phone_number,
				first_name   = EXCLUDED.first_name,
				last_name    = EXCLUDED.last_name,
				region       = EXCLUDED.region,
				role         = EXCLUDED.role,
				password     = EXCLUDED.password,
				re_password  = EXCLUDED.re_password,
				created_at   = EXCLUDED.created_at`,
			pending.Email, pending.PhoneNumber, pending.FirstName, pending.LastName, pending.Region,
			pending.Role, pending.Password, pending.RePassword, pending.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to save pending registration: %w", err)
		}
		_, err = tx.Exec(ctx, `
			INSERT INTO email_codes (email, code, expires_at, created_at)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (email) DO UPDATE SET
				code       = EXCLUDED.code,
				expires_at = EXCLUDED.expires_at,
				created_at = EXCLUDED.created_at`,
			pending.Email, code.Code, code.ExpiresAt, code.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to save email code: %w", err)
		}
		return nil
	})
}

func (r *PostgresRepository) GetPendingRegistration(ctx context.Context, email string) (PendingRegistration, error) {
	var p PendingRegistration
	err := r.db.QueryRow(ctx, `
		SELECT email, phone_number, first_name, last_name, region, role, password, re_password, created_at
		FROM pending_registrations WHERE email = $1`, email,
	).Scan(&p.Email, &p.PhoneNumber, &p.FirstName, &p.LastName, &p.Region, &p.Role, &p.Password, &p.RePassword, &p.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return PendingRegistration{}, ErrPendingNotFound
	}
	return p, err
}

func scanCode(row pgx.Row, notFound error) (CodeRecord, error) {
	var c CodeRecord
	err := row.Scan(&c.Code, &c.ExpiresAt, &c.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return CodeRecord{}, notFound
	}
	return c, err
}

func (r *PostgresRepository) GetEmailCode(ctx context.Context, email string) (CodeRecord, error) {
	return scanCode(r.db.QueryRow(ctx, `SELECT code, expires_at, created_at FROM email_codes WHERE email = $1`, email), ErrCodeNotFound)
}

func (r *PostgresRepository) CompleteRegistration(ctx context.Context, email, code string, params account.CreateParams) (account.Account, error) {
	var created account.Account
	err := pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		// The conditional delete makes the code single-use under concurrent verifies.
		tag, err := tx.Exec(ctx, `DELETE FROM email_codes WHERE email = $1 AND code = $2`, email, code)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return ErrCodeNotFound
		}
		tag, err = tx.Exec(ctx, `DELETE FROM pending_registrations WHERE email = $1`, email)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return ErrPendingNotFound
		}
		created, err = account.CreateTx(ctx, tx, params)
		return err
	})
	if err != nil {
		return account.Account{}, err
	}
	return created, nil
}

func (r *PostgresRepository) SaveResetCode(ctx context.Context, accountID uuid.UUID, code CodeRecord) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO password_reset_codes (account_id, code, expires_at, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (account_id) DO UPDATE SET
			code       = EXCLUDED.code,
			expires_at = EXCLUDED.expires_at,
			created_at = EXCLUDED.created_at`,
		accountID, code.Code, code.ExpiresAt, code.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save reset code: %w", err)
	}
	return nil
}

func (r *PostgresRepository) GetResetCode(ctx context.Context, accountID uuid.UUID) (CodeRecord, error) {
	return scanCode(r.db.QueryRow(ctx, `SELECT code, expires_at, created_at FROM password_reset_codes WHERE account_id = $1`, accountID), ErrCodeNotFound)
}

// ConsumeResetCode deletes the reset code when it still matches code.
func (r *PostgresRepository) ConsumeResetCode(ctx context.Context, accountID uuid.UUID, code string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM password_reset_codes WHERE account_id = $1 AND code = $2`, accountID, code)
	if err != nil {
		return fmt.Errorf("failed to consume reset code: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrCodeNotFound
	}
	return nil
}

func (r *PostgresRepository) CompletePasswordReset(ctx context.Context, accountID uuid.UUID, passwordHash string) error {
	return pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		if err := account.UpdatePasswordTx(ctx, tx, accountID, passwordHash); err != nil {
			return err
		}
		_, err := tx.Exec(ctx, `DELETE FROM password_reset_codes WHERE account_id = $1`, accountID)
		return err
	})
}

func (r *PostgresRepository) SaveEmailChange(ctx context.Context, req EmailChangeRequest) error {
	return pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM email_change_requests WHERE new_email = $2 AND account_id <> $1`, req.AccountID, req.NewEmail); err != nil {
			return err
		}
		_, err := tx.Exec(ctx, `
			INSERT INTO email_change_requests (account_id, new_email, code, expires_at, created_at)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (account_id) DO UPDATE SET
				new_email  = EXCLUDED.new_email,
				code       = EXCLUDED.code,
				expires_at = EXCLUDED.expires_at,
				created_at = EXCLUDED.created_at`,
			req.AccountID, req.NewEmail, req.Code, req.ExpiresAt, req.CreatedAt,
		)
		if err != nil {
			return account.MapUniqueViolation(err)
		}
		return nil
	})
}

func (r *PostgresRepository) GetEmailChange(ctx context.Context, newEmail string) (EmailChangeRequest, error) {
	var req EmailChangeRequest
	err := r.db.QueryRow(ctx, `
		SELECT account_id, new_email, code, expires_at, created_at
		FROM email_change_requests WHERE new_email = $1`, newEmail,
	).Scan(&req.AccountID, &req.NewEmail, &req.Code, &req.ExpiresAt, &req.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return EmailChangeRequest{}, ErrRequestNotFound
	}
	return req, err
}

func (r *PostgresRepository) CompleteEmailChange(ctx context.Context, accountID uuid.UUID, newEmail, code string) error {
	return pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
			DELETE FROM email_change_requests WHERE account_id = $1 AND new_email = $2 AND code = $3`,
			accountID, newEmail, code,
		)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return ErrRequestNotFound
		}
		return account.UpdateEmailTx(ctx, tx, accountID, newEmail)
	})
}

func (r *PostgresRepository) PurgeExpired(ctx context.Context, now, pendingBefore time.Time) (PurgeResult, error) {
	var res PurgeResult
	err := pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		steps := []struct {
			query string
			arg   time.Time
			n     *int64
		}{
			{`DELETE FROM email_codes WHERE expires_at < $1`, now, &res.EmailCodes},
			{`DELETE FROM password_reset_codes WHERE expires_at < $1`, now, &res.ResetCodes},
			{`DELETE FROM email_change_requests WHERE expires_at < $1`, now, &res.EmailChanges},
			{`DELETE FROM pending_registrations p WHERE p.created_at < $1
				AND NOT EXISTS (SELECT 1 FROM email_codes c WHERE c.email = p.email)`, pendingBefore, &res.PendingRegistrations},
		}
		for _, step := range steps {
			tag, err := tx.Exec(ctx, step.query, step.arg)
			if err != nil {
				return fmt.Errorf("failed to purge expired rows: %w", err)
			}
			*step.n = tag.RowsAffected()
		}
		return nil
	})
	return res, err
}
