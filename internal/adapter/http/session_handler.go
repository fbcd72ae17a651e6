package http

import (
	"net/http"
	"time"

	"github.com/aq2208/tableorder/internal/adapter/http/middleware"
	domain "github.com/aq2208/tableorder/internal/entity"
	"github.com/aq2208/tableorder/internal/usecase"
	"github.com/gin-gonic/gin"
)

type SessionHandler struct {
	sessions     *usecase.Sessions
	secureCookie bool
}

func NewSessionHandler(sessions *usecase.Sessions, secureCookie bool) *SessionHandler {
	return &SessionHandler{sessions: sessions, secureCookie: secureCookie}
}

type scanReq struct {
	QRCode string `json:"qr_code" binding:"required"`
}

type sessionResp struct {
	SessionToken string    `json:"session_token"`
	TableID      string    `json:"table_id"`
	TableName    string    `json:"table_name,omitempty"`
	ExpiresAt    time.Time `json:"expires_at"`
}

func toSessionResp(s domain.Session) sessionResp {
	return sessionResp{SessionToken: s.Token, TableID: s.TableID, TableName: s.TableName, ExpiresAt: s.ExpiresAt}
}

// POST /v1/sessions/scan
func (h *SessionHandler) Scan(c *gin.Context) {
	var req scanReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "qr_code is required")
		return
	}
	sess, err := h.sessions.Scan(c.Request.Context(), req.QRCode)
	if err != nil {
		writeError(c, err)
		return
	}
	h.setCookie(c, sess)
	c.JSON(http.StatusCreated, toSessionResp(sess))
}

// GET /v1/session
func (h *SessionHandler) Current(c *gin.Context) {
	sess, err := h.sessions.Require(c.Request.Context(), middleware.SessionToken(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toSessionResp(sess))
}

// POST /v1/session/extend
func (h *SessionHandler) Extend(c *gin.Context) {
	sess, err := h.sessions.Extend(c.Request.Context(), middleware.SessionToken(c))
	if err != nil {
		writeError(c, err)
		return
	}
	h.setCookie(c, sess)
	c.JSON(http.StatusOK, toSessionResp(sess))
}

// the cookie lets the gateway redirect back to /v1/payments/result
func (h *SessionHandler) setCookie(c *gin.Context, s domain.Session) {
	maxAge := int(s.TTL(time.Now()).Seconds())
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.SessionCookie, s.Token, maxAge, "/", "", h.secureCookie, true)
}
