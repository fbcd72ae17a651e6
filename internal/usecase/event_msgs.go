package usecase

import "time"

// Written to the outbox and published on RabbitMQ once a verification
// reaches a terminal state.
type PaymentResolvedMsg struct {
	Type          string    `json:"type"` // "PaymentResolvedV1"
	OrderUUID     string    `json:"orderUuid"`
	OrderNumber   string    `json:"orderNumber,omitempty"`
	TableID       string    `json:"tableId,omitempty"`
	State         string    `json:"state"` // success | failed
	PaymentStatus string    `json:"paymentStatus,omitempty"`
	PaymentMethod string    `json:"paymentMethod,omitempty"`
	Source        string    `json:"source"`
	ResolvedAt    time.Time `json:"resolvedAt"`
}

// Sent by the ordering backend on Kafka
type OrderStatusChangedMsg struct {
	OrderUUID     string `json:"order_uuid"`
	OrderNumber   string `json:"order_number"`
	PaymentStatus string `json:"payment_status"`
}

// Sent by the table management service on RabbitMQ when staff close a table.
type SessionRevokedMsg struct {
	SessionToken string `json:"session_token"`
	TableID      string `json:"table_id"`
	Reason       string `json:"reason"`
}
