package queue

import (
	"context"
	"fmt"

	"github.com/aq2208/tableorder/internal/logging"
	"github.com/aq2208/tableorder/internal/usecase"
)

type SessionPurger interface {
	Purge(ctx context.Context, token string) error
}

// SessionRevokedHandler drops everything held for a session once staff close
// its table.
type SessionRevokedHandler struct {
	sessions SessionPurger
}

func NewSessionRevokedHandler(p SessionPurger) *SessionRevokedHandler {
	return &SessionRevokedHandler{sessions: p}
}

// HandleRevoked is intended to be used with JSONHandler[usecase.SessionRevokedMsg].
func (h *SessionRevokedHandler) HandleRevoked(ctx context.Context, msg usecase.SessionRevokedMsg) error {
	if msg.SessionToken == "" {
		return fmt.Errorf("%w: session_token missing", ErrPoison)
	}
	logging.FromCtx(ctx).Info("session revoked", "table_id", msg.TableID, "reason", msg.Reason)
	return h.sessions.Purge(ctx, msg.SessionToken)
}
