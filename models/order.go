package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusConfirmed OrderStatus = "confirmed"
	OrderStatusCompleted OrderStatus = "completed"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// OrderItem is a snapshot of a cart line at checkout time.
type OrderItem struct {
	ProductID   string  `bson:"productId" json:"productId"`
	Name        string  `bson:"name" json:"name"`
	Description string  `bson:"description,omitempty" json:"description,omitempty"`
	Price       float64 `bson:"price" json:"price"`
	Quantity    int     `bson:"quantity" json:"quantity"`
}

// LineTotal is price times quantity.
func (i OrderItem) LineTotal() float64 {
	return i.Price * float64(i.Quantity)
}

// Order is a submitted checkout awaiting manual payment confirmation by the
// seller. ReceiptURL is never empty for a persisted order.
type Order struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	BuyerName      string             `bson:"buyerName" json:"buyerName"`
	BuyerPhone     string             `bson:"buyerPhone" json:"buyerPhone"`
	PickupDatetime time.Time          `bson:"pickupDatetime" json:"pickupDatetime"`
	Items          []OrderItem        `bson:"items" json:"items"`
	Total          float64            `bson:"total" json:"total"`
	ReceiptURL     string             `bson:"receiptUrl" json:"receiptUrl"`
	Status         OrderStatus        `bson:"status" json:"status"`
	// LegacyConflictKey is only set when the first insert collided on the
	// legacy unique index left over from card checkout.
	LegacyConflictKey string    `bson:"stripeSessionId,omitempty" json:"-"`
	CreatedAt         time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt         time.Time `bson:"updatedAt" json:"updatedAt"`
}

// ItemsTotal sums the line totals of the order.
func (o *Order) ItemsTotal() float64 {
	var sum float64
	for _, it := range o.Items {
		sum += it.LineTotal()
	}
	return sum
}
