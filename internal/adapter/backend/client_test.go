package backend

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	domain "github.com/aq2208/tableorder/internal/entity"
	"github.com/aq2208/tableorder/internal/usecase"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, 2*time.Second, "tableorder-test")
}

func TestCheckStock_UnwrapsEnvelope(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/stock/check/42", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{"data":{"is_available":true,"stock_quantity":3}}`))
	})

	lvl, err := c.CheckStock(context.Background(), "tok", 42)
	require.NoError(t, err)
	assert.Equal(t, domain.StockLevel{MenuID: 42, IsAvailable: true, Quantity: 3}, lvl)
}

func TestCheckStock_MissingFieldIsDecodeError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"is_available":true}`))
	})

	_, err := c.CheckStock(context.Background(), "tok", 1)
	var de *domain.DecodeError
	require.ErrorAs(t, err, &de)
}

func TestUnauthorizedMapsToSessionExpired(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	_, err := c.GetOrder(context.Background(), "tok", "o-1")
	assert.ErrorIs(t, err, domain.ErrSessionExpired)
}

func TestNon2xxCarriesBackendMessage(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"message":"Table is closed"}`))
	})

	_, err := c.CreateOrder(context.Background(), "tok", usecase.CreateOrderRequest{})
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnprocessableEntity, apiErr.Status)
	assert.Equal(t, "Table is closed", apiErr.UserMessage())
}

func TestUnreachableBackendIsNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	base := srv.URL
	srv.Close()

	c := NewClient(base, time.Second, "")
	_, err := c.CheckStock(context.Background(), "tok", 1)
	assert.ErrorIs(t, err, domain.ErrNetworkOrTimeout)
}

func TestCreateOrder_SendsRequestAndParses(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/orders", r.URL.Path)

		var got usecase.CreateOrderRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		assert.Equal(t, "a@b.co", got.Email)
		require.Len(t, got.Items, 1)
		assert.Equal(t, int64(7), got.Items[0].MenuID)

		_, _ = w.Write([]byte(`{"data":{"order_uuid":"o-1","order_number":1024,"total_amount":"105000","payment_url":"https://pay.test/x"}}`))
	})

	placed, err := c.CreateOrder(context.Background(), "tok", usecase.CreateOrderRequest{
		SessionToken: "tok",
		Email:        "a@b.co",
		Items:        []usecase.CreateOrderItem{{MenuID: 7, Quantity: 2}},
	})
	require.NoError(t, err)
	assert.Equal(t, "o-1", placed.UUID)
	assert.Equal(t, "1024", placed.OrderNumber)
	assert.Equal(t, "105000", placed.TotalAmount.String())
	assert.Equal(t, "https://pay.test/x", placed.PaymentURL)
}

func TestCreateOrder_MissingUUID(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"total_amount":100}`))
	})

	_, err := c.CreateOrder(context.Background(), "tok", usecase.CreateOrderRequest{})
	var de *domain.DecodeError
	assert.ErrorAs(t, err, &de)
}

func TestGetOrder_ParsesStatusAndItems(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/orders/o-1", r.URL.Path)
		_, _ = w.Write([]byte(`{"data":{
			"uuid":"o-1","order_number":"A-12","payment_status":"PAID","total_amount":105000,
			"table":{"table_number":7},
			"items":[{"menu_name":"Latte","quantity":2,"price":"30000"}]
		}}`))
	})

	order, err := c.GetOrder(context.Background(), "tok", "o-1")
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentPaid, order.PaymentStatus)
	assert.Equal(t, "7", order.Table)
	require.Len(t, order.Items, 1)
	assert.Equal(t, "Latte", order.Items[0].Name)
	assert.Equal(t, "60000", order.Items[0].Subtotal.String())
}

func TestProcessPayment_AcceptsEitherURLKey(t *testing.T) {
	cases := map[string]string{
		"camel": `{"paymentUrl":"https://pay.test/a"}`,
		"snake": `{"data":{"payment_url":"https://pay.test/a"}}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/payment/process", r.URL.Path)
				_, _ = w.Write([]byte(body))
			})
			u, err := c.ProcessPayment(context.Background(), "tok", "o-1", "qris", "a@b.co")
			require.NoError(t, err)
			assert.Equal(t, "https://pay.test/a", u)
		})
	}
}

func TestProcessPayment_NoURL(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":{}}`))
	})
	u, err := c.ProcessPayment(context.Background(), "tok", "o-1", "qris", "a@b.co")
	require.NoError(t, err)
	assert.Empty(t, u)
}

func TestFinishPayment_ForwardsQuery(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/payment/finish", r.URL.Path)
		assert.Equal(t, "settlement", r.URL.Query().Get("transaction_status"))
		_, _ = w.Write([]byte(`{"orderUuid":"o-9"}`))
	})

	id, err := c.FinishPayment(context.Background(), "tok", url.Values{
		"order_id":           {"A-12"},
		"transaction_status": {"settlement"},
	})
	require.NoError(t, err)
	assert.Equal(t, "o-9", id)
}

func TestFinishPayment_FailureIsVerificationError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"message":"signature mismatch"}`))
	})

	_, err := c.FinishPayment(context.Background(), "tok", url.Values{"order_id": {"x"}})
	var pv *domain.PaymentVerificationError
	require.ErrorAs(t, err, &pv)
	assert.Equal(t, "signature mismatch", pv.Msg)
	assert.False(t, errors.Is(err, domain.ErrSessionExpired))
}

func TestGetSession_FillsTokenWhenOmitted(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"customer_id":5,"table_id":"T7","table_name":"Patio 7","expires_at":"2030-01-01T00:00:00Z"}`))
	})

	s, err := c.GetSession(context.Background(), "tok")
	require.NoError(t, err)
	assert.Equal(t, "tok", s.Token)
	assert.Equal(t, "5", s.CustomerID)
	assert.Equal(t, "Patio 7", s.TableName)
}
