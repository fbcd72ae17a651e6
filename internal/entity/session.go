package domain

import "time"

// Session is the table-bound authorization context created by scanning a QR code.
type Session struct {
	Token      string    `json:"token"`
	CustomerID string    `json:"customer_id"`
	TableID    string    `json:"table_id"`
	TableName  string    `json:"table_name,omitempty"`
	ExpiresAt  time.Time `json:"expires_at"`
}

// Expired reports whether the session can no longer be used to order.
func (s Session) Expired(now time.Time) bool {
	return s.Token == "" || now.After(s.ExpiresAt)
}

// TTL is the remaining lifetime of the session, zero once expired.
func (s Session) TTL(now time.Time) time.Duration {
	if s.Expired(now) {
		return 0
	}
	return s.ExpiresAt.Sub(now)
}
