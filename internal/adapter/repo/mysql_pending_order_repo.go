package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	domain "github.com/aq2208/tableorder/internal/entity"
	"github.com/aq2208/tableorder/internal/usecase"
	"github.com/shopspring/decimal"
)

// MySQLPendingOrderRepo keeps the order a session has started paying for,
// one row per session.
type MySQLPendingOrderRepo struct{ db *sql.DB }

func NewMySQLPendingOrderRepo(db *sql.DB) *MySQLPendingOrderRepo {
	return &MySQLPendingOrderRepo{db: db}
}

func (r *MySQLPendingOrderRepo) Put(ctx context.Context, rec domain.PendingOrderRecord) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO pending_orders (session_token,order_uuid,payment_method,email,total,created_at)
VALUES (?,?,?,?,?,?)
ON DUPLICATE KEY UPDATE order_uuid=VALUES(order_uuid), payment_method=VALUES(payment_method),
  email=VALUES(email), total=VALUES(total), created_at=VALUES(created_at)`,
		rec.SessionToken, rec.OrderUUID, rec.PaymentMethod, rec.Email, rec.Total.String(), rec.CreatedAt.UTC())
	return err
}

// Take reads and deletes the record in one transaction so that two
// verifications never both see it.
func (r *MySQLPendingOrderRepo) Take(ctx context.Context, token string) (*domain.PendingOrderRecord, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	rec := domain.PendingOrderRecord{SessionToken: token}
	var total string
	err = tx.QueryRowContext(ctx, `
SELECT order_uuid,payment_method,email,total,created_at
FROM pending_orders WHERE session_token=? FOR UPDATE`, token).
		Scan(&rec.OrderUUID, &rec.PaymentMethod, &rec.Email, &total, &rec.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if rec.Total, err = decimal.NewFromString(total); err != nil {
		return nil, &domain.DecodeError{What: "pending order total", Err: err}
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM pending_orders WHERE session_token=?`, token); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return &rec, nil
}

func (r *MySQLPendingOrderRepo) Delete(ctx context.Context, token string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM pending_orders WHERE session_token=?`, token)
	return err
}

var _ usecase.PendingOrderStore = (*MySQLPendingOrderRepo)(nil)
