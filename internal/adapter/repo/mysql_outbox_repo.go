package repo

import (
	"context"
	"database/sql"
	"time"

	"github.com/aq2208/tableorder/internal/usecase"
)

const channelPaymentResolved = "payments.resolved.v1"

type MySQLOutboxRepo struct {
	db  *sql.DB
	now func() time.Time
}

func NewMySQLOutboxRepo(db *sql.DB) *MySQLOutboxRepo {
	return &MySQLOutboxRepo{db: db, now: time.Now}
}

func (r *MySQLOutboxRepo) InsertPaymentResolved(ctx context.Context, payload []byte) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO outbox (channel,payload,status,retry_count,next_attempt_at,created_at)
VALUES (?, ?, 'PENDING', 0, NOW(), NOW())
`, channelPaymentResolved, payload)
	return err
}

// FetchPending returns due rows, oldest first.
func (r *MySQLOutboxRepo) FetchPending(ctx context.Context, limit int) ([]usecase.OutboxEntry, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id,channel,payload,retry_count
FROM outbox WHERE status='PENDING' AND next_attempt_at<=NOW()
ORDER BY id LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []usecase.OutboxEntry
	for rows.Next() {
		var e usecase.OutboxEntry
		if err := rows.Scan(&e.ID, &e.Channel, &e.Payload, &e.Attempts); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *MySQLOutboxRepo) MarkSent(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `UPDATE outbox SET status='SENT', sent_at=NOW() WHERE id=?`, id)
	return err
}

// MarkRetry pushes the row back with a linear backoff. Rows that keep
// failing past maxAttempts are parked as DEAD.
func (r *MySQLOutboxRepo) MarkRetry(ctx context.Context, id int64, attempts int, maxAttempts int) error {
	if attempts >= maxAttempts {
		_, err := r.db.ExecContext(ctx, `UPDATE outbox SET status='DEAD', retry_count=? WHERE id=?`, attempts, id)
		return err
	}
	next := r.now().Add(time.Duration(attempts) * 10 * time.Second).UTC()
	_, err := r.db.ExecContext(ctx, `UPDATE outbox SET retry_count=?, next_attempt_at=? WHERE id=?`, attempts, next, id)
	return err
}

var (
	_ usecase.OutboxRepo   = (*MySQLOutboxRepo)(nil)
	_ usecase.OutboxSource = (*MySQLOutboxRepo)(nil)
)
