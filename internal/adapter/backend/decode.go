package backend

import (
	"encoding/json"
	"errors"
	"time"

	domain "github.com/aq2208/tableorder/internal/entity"
	"github.com/shopspring/decimal"
)

// flexString accepts ids sent either as JSON strings or numbers.
type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*f = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*f = flexString(n.String())
	return nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

type sessionWire struct {
	SessionToken string     `json:"session_token"`
	Token        string     `json:"token"`
	CustomerID   flexString `json:"customer_id"`
	TableID      flexString `json:"table_id"`
	TableName    string     `json:"table_name"`
	ExpiresAt    *time.Time `json:"expires_at"`
}

func parseSession(w sessionWire) (domain.Session, error) {
	token := firstNonEmpty(w.SessionToken, w.Token)
	if token == "" {
		return domain.Session{}, &domain.DecodeError{What: "session", Err: errors.New("missing session_token")}
	}
	if w.ExpiresAt == nil {
		return domain.Session{}, &domain.DecodeError{What: "session", Err: errors.New("missing expires_at")}
	}
	return domain.Session{
		Token:      token,
		CustomerID: string(w.CustomerID),
		TableID:    string(w.TableID),
		TableName:  w.TableName,
		ExpiresAt:  *w.ExpiresAt,
	}, nil
}

type stockWire struct {
	IsAvailable   *bool `json:"is_available"`
	StockQuantity *int  `json:"stock_quantity"`
}

func parseStock(menuID int64, w stockWire) (domain.StockLevel, error) {
	if w.IsAvailable == nil || w.StockQuantity == nil {
		return domain.StockLevel{}, &domain.DecodeError{What: "stock", Err: errors.New("missing is_available or stock_quantity")}
	}
	return domain.StockLevel{MenuID: menuID, IsAvailable: *w.IsAvailable, Quantity: *w.StockQuantity}, nil
}

type placedOrderWire struct {
	OrderUUID   string              `json:"order_uuid"`
	OrderNumber flexString          `json:"order_number"`
	TotalAmount decimal.NullDecimal `json:"total_amount"`
	PaymentURL  string              `json:"payment_url"`
	RedirectURL string              `json:"redirect_url"`
}

func parsePlacedOrder(w placedOrderWire) (domain.PlacedOrder, error) {
	if w.OrderUUID == "" {
		return domain.PlacedOrder{}, &domain.DecodeError{What: "created order", Err: errors.New("missing order_uuid")}
	}
	if !w.TotalAmount.Valid {
		return domain.PlacedOrder{}, &domain.DecodeError{What: "created order", Err: errors.New("missing total_amount")}
	}
	return domain.PlacedOrder{
		UUID:        w.OrderUUID,
		OrderNumber: string(w.OrderNumber),
		TotalAmount: w.TotalAmount.Decimal,
		PaymentURL:  firstNonEmpty(w.PaymentURL, w.RedirectURL),
	}, nil
}

type orderItemWire struct {
	Name      string          `json:"name"`
	MenuName  string          `json:"menu_name"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Subtotal  decimal.Decimal `json:"subtotal"`
	Status    string          `json:"status"`
}

type orderWire struct {
	UUID          string              `json:"uuid"`
	OrderUUID     string              `json:"order_uuid"`
	OrderNumber   flexString          `json:"order_number"`
	Items         []orderItemWire     `json:"items"`
	TotalAmount   decimal.NullDecimal `json:"total_amount"`
	PaymentStatus string              `json:"payment_status"`
	Table         struct {
		Name        string     `json:"name"`
		TableNumber flexString `json:"table_number"`
	} `json:"table"`
	Customer struct {
		Name  string `json:"name"`
		Email string `json:"email"`
	} `json:"customer"`
	CreatedAt time.Time `json:"created_at"`
}

func parseOrder(w orderWire) (domain.Order, error) {
	id := firstNonEmpty(w.UUID, w.OrderUUID)
	if id == "" {
		return domain.Order{}, &domain.DecodeError{What: "order", Err: errors.New("missing uuid")}
	}
	if w.PaymentStatus == "" {
		return domain.Order{}, &domain.DecodeError{What: "order", Err: errors.New("missing payment_status")}
	}
	if !w.TotalAmount.Valid {
		return domain.Order{}, &domain.DecodeError{What: "order", Err: errors.New("missing total_amount")}
	}

	items := make([]domain.OrderItem, 0, len(w.Items))
	for _, it := range w.Items {
		price := it.UnitPrice
		if price.IsZero() {
			price = it.Price
		}
		sub := it.Subtotal
		if sub.IsZero() {
			sub = price.Mul(decimal.NewFromInt(int64(it.Quantity)))
		}
		items = append(items, domain.OrderItem{
			Name:      firstNonEmpty(it.Name, it.MenuName),
			Quantity:  it.Quantity,
			UnitPrice: price,
			Subtotal:  sub,
			Status:    it.Status,
		})
	}

	return domain.Order{
		UUID:          id,
		OrderNumber:   string(w.OrderNumber),
		Items:         items,
		TotalAmount:   w.TotalAmount.Decimal,
		PaymentStatus: domain.ParsePaymentStatus(w.PaymentStatus),
		Table:         firstNonEmpty(w.Table.Name, string(w.Table.TableNumber)),
		Customer:      firstNonEmpty(w.Customer.Name, w.Customer.Email),
		CreatedAt:     w.CreatedAt,
	}, nil
}

type paymentProcessWire struct {
	PaymentURL  string `json:"paymentUrl"`
	PaymentURL2 string `json:"payment_url"`
	RedirectURL string `json:"redirect_url"`
}

type paymentFinishWire struct {
	OrderUUID  string `json:"orderUuid"`
	OrderUUID2 string `json:"order_uuid"`
}

func parseFinish(w paymentFinishWire) (string, error) {
	id := firstNonEmpty(w.OrderUUID, w.OrderUUID2)
	if id == "" {
		return "", &domain.DecodeError{What: "payment finish", Err: errors.New("missing orderUuid")}
	}
	return id, nil
}
