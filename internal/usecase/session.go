package usecase

import (
	"context"
	"errors"
	"time"

	domain "github.com/aq2208/tableorder/internal/entity"
	"github.com/aq2208/tableorder/internal/logging"
)

// Sessions is the source of truth for "is this customer allowed to order".
// Expiry, local or reported by the backend, purges everything kept for the
// token so the customer has to scan the QR code again.
type Sessions struct {
	store   SessionStore
	api     SessionAPI
	carts   CartStore
	pending PendingOrderStore
	now     func() time.Time
}

func NewSessions(store SessionStore, api SessionAPI, carts CartStore, pending PendingOrderStore) *Sessions {
	return &Sessions{store: store, api: api, carts: carts, pending: pending, now: time.Now}
}

// Require returns the live session for token or domain.ErrSessionExpired.
func (s *Sessions) Require(ctx context.Context, token string) (domain.Session, error) {
	if token == "" {
		return domain.Session{}, domain.ErrSessionExpired
	}
	sess, err := s.store.Get(ctx, token)
	if err != nil {
		return domain.Session{}, err
	}
	if sess == nil {
		// not seen locally yet (e.g. a different instance did the handshake)
		fetched, err := s.api.GetSession(ctx, token)
		if err != nil {
			return domain.Session{}, s.Check(ctx, token, err)
		}
		if err := s.store.Save(ctx, fetched); err != nil {
			return domain.Session{}, err
		}
		sess = &fetched
	}
	if sess.Expired(s.now()) {
		_ = s.Purge(ctx, token)
		return domain.Session{}, domain.ErrSessionExpired
	}
	return *sess, nil
}

// Lookup returns the locally kept session without checking expiry, or nil
// when none is kept.
func (s *Sessions) Lookup(ctx context.Context, token string) (*domain.Session, error) {
	if token == "" {
		return nil, nil
	}
	return s.store.Get(ctx, token)
}

// Scan performs the QR handshake and keeps the resulting session.
func (s *Sessions) Scan(ctx context.Context, qrCode string) (domain.Session, error) {
	sess, err := s.api.ScanQR(ctx, qrCode)
	if err != nil {
		return domain.Session{}, err
	}
	if sess.Expired(s.now()) {
		return domain.Session{}, domain.ErrSessionExpired
	}
	if err := s.store.Save(ctx, sess); err != nil {
		return domain.Session{}, err
	}
	logging.FromCtx(ctx).Info("session started", "table_id", sess.TableID, "expires_at", sess.ExpiresAt)
	return sess, nil
}

func (s *Sessions) Extend(ctx context.Context, token string) (domain.Session, error) {
	if _, err := s.Require(ctx, token); err != nil {
		return domain.Session{}, err
	}
	sess, err := s.api.ExtendSession(ctx, token)
	if err != nil {
		return domain.Session{}, s.Check(ctx, token, err)
	}
	if err := s.store.Save(ctx, sess); err != nil {
		return domain.Session{}, err
	}
	return sess, nil
}

// Purge removes the session, its cart and any pending order record.
func (s *Sessions) Purge(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	errs := []error{
		s.store.Delete(ctx, token),
		s.carts.Delete(ctx, token),
		s.pending.Delete(ctx, token),
	}
	logging.FromCtx(ctx).Info("session purged")
	return errors.Join(errs...)
}

// Check purges the session when err reports an authorization failure and
// returns err unchanged.
func (s *Sessions) Check(ctx context.Context, token string, err error) error {
	if errors.Is(err, domain.ErrSessionExpired) {
		if perr := s.Purge(ctx, token); perr != nil {
			logging.FromCtx(ctx).Error("purge expired session", "err", perr)
		}
	}
	return err
}
