package models

import "time"

const EventOrderCreated = "order_created"

// OrderCreatedEvent is published after an order is persisted and consumed by
// the seller notification worker.
type OrderCreatedEvent struct {
	EventType      string      `json:"event_type"`
	OrderID        string      `json:"order_id"`
	BuyerName      string      `json:"buyer_name"`
	BuyerPhone     string      `json:"buyer_phone"`
	PickupDatetime time.Time   `json:"pickup_datetime"`
	Items          []OrderItem `json:"items"`
	Total          float64     `json:"total"`
	ReceiptURL     string      `json:"receipt_url"`
	CreatedAt      time.Time   `json:"created_at"`
}

func NewOrderCreatedEvent(o *Order) OrderCreatedEvent {
	return OrderCreatedEvent{
		EventType:      EventOrderCreated,
		OrderID:        o.ID.Hex(),
		BuyerName:      o.BuyerName,
		BuyerPhone:     o.BuyerPhone,
		PickupDatetime: o.PickupDatetime,
		Items:          o.Items,
		Total:          o.Total,
		ReceiptURL:     o.ReceiptURL,
		CreatedAt:      o.CreatedAt,
	}
}
