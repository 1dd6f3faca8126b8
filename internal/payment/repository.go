package payment

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"p24-gateway/internal/p24"

	"github.com/lib/pq"
)

var (
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrDuplicateSession    = errors.New("transaction with this session id already exists")
)

const uniqueViolation = "23505"

type Repository interface {
	SaveTransaction(ctx context.Context, t *Transaction) error
	GetTransaction(ctx context.Context, sessionID string) (*Transaction, error)
	UpdateTransactionStatus(ctx context.Context, sessionID, status string) error

	// SaveNotification stores a status post. isDuplicate is true when the
	// same (session, order) pair already reached a terminal status.
	SaveNotification(ctx context.Context, n *p24.Notification) (notificationID int64, isDuplicate bool, err error)
	MarkNotificationConfirmed(ctx context.Context, notificationID int64) error
	MarkNotificationRejected(ctx context.Context, notificationID int64, code, reason string) error
	MarkNotificationFailed(ctx context.Context, notificationID int64, status, reason string) error
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

func (r *repository) SaveTransaction(ctx context.Context, t *Transaction) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO p24_transactions (session_id,
		merchant_id,
		amount,
		currency,
		description,
		email,
		sign,
		status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`,
		t.SessionID, t.MerchantID, t.Amount, t.Currency, t.Description, t.Email, t.Sign, t.Status,
	)
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return ErrDuplicateSession
	}
	return err
}

func (r *repository) GetTransaction(ctx context.Context, sessionID string) (*Transaction, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, session_id, merchant_id, amount, currency, description, email, sign, status, created_at, updated_at
		FROM p24_transactions WHERE session_id = $1
	`, sessionID)

	var t Transaction
	err := row.Scan(
		&t.ID, &t.SessionID, &t.MerchantID, &t.Amount, &t.Currency,
		&t.Description, &t.Email, &t.Sign, &t.Status, &t.CreatedAt, &t.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrTransactionNotFound
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *repository) UpdateTransactionStatus(ctx context.Context, sessionID, status string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE p24_transactions SET status = $1, updated_at = now() WHERE session_id = $2
	`, status, sessionID)
	return err
}

func (r *repository) SaveNotification(ctx context.Context, n *p24.Notification) (int64, bool, error) {
	payload, err := json.Marshal(n.Params())
	if err != nil {
		return 0, false, fmt.Errorf("marshal notification: %w", err)
	}

	// A repeated post is only re-processed while the earlier attempt is
	// still pending or failed in transport.
	const q = `
	INSERT INTO p24_notifications (
		session_id,
		order_id,
		amount,
		currency,
		method,
		statement,
		payload,
		status
	)
	VALUES ($1, $2, $3, $4, $5, $6, $7, 'PENDING')
	ON CONFLICT (session_id, order_id)
	DO UPDATE SET attempts = p24_notifications.attempts + 1,
		payload = EXCLUDED.payload,
		status = 'PENDING'
	WHERE p24_notifications.status IN ('PENDING', 'FAILED')
	RETURNING id;
	`

	var id int64
	err = r.db.QueryRowContext(
		ctx,
		q,
		n.ItemID(),
		n.TransactionID(),
		n.Amount(),
		n.Currency(),
		n.Method(),
		n.Statement(),
		payload,
	).Scan(&id)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, true, nil
		}
		return 0, false, err
	}

	return id, false, nil
}

func (r *repository) MarkNotificationConfirmed(ctx context.Context, notificationID int64) error {
	const q = `
	UPDATE p24_notifications
	SET status = 'CONFIRMED', processed_at = now()
	WHERE id = $1;
	`

	_, err := r.db.ExecContext(ctx, q, notificationID)
	return err
}

func (r *repository) MarkNotificationRejected(ctx context.Context, notificationID int64, code, reason string) error {
	const q = `
	UPDATE p24_notifications
	SET status = 'REJECTED', error_code = $2, process_error = $3, processed_at = now()
	WHERE id = $1;
	`

	_, err := r.db.ExecContext(ctx, q, notificationID, code, reason)
	return err
}

func (r *repository) MarkNotificationFailed(ctx context.Context, notificationID int64, status, reason string) error {
	const q = `
	UPDATE p24_notifications
	SET status = $2, process_error = $3
	WHERE id = $1;
	`

	_, err := r.db.ExecContext(ctx, q, notificationID, status, reason)
	return err
}
