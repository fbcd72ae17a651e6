package backend

import (
	"context"
	"net/http"
	"net/url"

	domain "github.com/aq2208/tableorder/internal/entity"
	"github.com/aq2208/tableorder/internal/usecase"
)

var _ usecase.SessionAPI = (*Client)(nil)

func (c *Client) ScanQR(ctx context.Context, qrCode string) (domain.Session, error) {
	var w sessionWire
	if err := c.do(ctx, http.MethodPost, "/scan-qr", "", nil, map[string]string{"qr_code": qrCode}, &w); err != nil {
		return domain.Session{}, err
	}
	return parseSession(w)
}

func (c *Client) GetSession(ctx context.Context, token string) (domain.Session, error) {
	var w sessionWire
	if err := c.do(ctx, http.MethodGet, "/session/"+url.PathEscape(token), token, nil, nil, &w); err != nil {
		return domain.Session{}, err
	}
	if w.SessionToken == "" && w.Token == "" {
		w.SessionToken = token
	}
	return parseSession(w)
}

func (c *Client) ExtendSession(ctx context.Context, token string) (domain.Session, error) {
	var w sessionWire
	if err := c.do(ctx, http.MethodPost, "/session/extend/"+url.PathEscape(token), token, nil, nil, &w); err != nil {
		return domain.Session{}, err
	}
	if w.SessionToken == "" && w.Token == "" {
		w.SessionToken = token
	}
	return parseSession(w)
}
