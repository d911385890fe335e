package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// CheckoutRequest is the storefront's checkout payload. Receipt is the payment
// proof image as a data URL.
type CheckoutRequest struct {
	BuyerName      string         `json:"buyerName" validate:"required,notblank"`
	BuyerPhone     string         `json:"buyerPhone" validate:"required,notblank"`
	PickupDatetime string         `json:"pickupDatetime" validate:"required"`
	Items          []CheckoutItem `json:"items" validate:"required,min=1"`
	Total          Amount         `json:"total"`
	Receipt        string         `json:"receipt" validate:"required,startswith=data:"`
}

type CheckoutItem struct {
	ID          string `json:"_id"`
	ProductID   string `json:"productId"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Price       Amount `json:"price"`
	Quantity    int    `json:"quantity"`
}

// Ref returns the product reference, accepting either the catalog "_id" or
// an explicit productId.
func (i CheckoutItem) Ref() string {
	if i.ProductID != "" {
		return i.ProductID
	}
	return i.ID
}

// Amount decodes a JSON number, a numeric string or null. Anything that is
// not a number decodes to zero.
type Amount float64

func (a *Amount) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*a = 0
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return fmt.Errorf("amount: %w", err)
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			*a = 0
			return nil
		}
		*a = Amount(f)
		return nil
	}
	var f float64
	if err := json.Unmarshal(b, &f); err != nil {
		*a = 0
		return nil
	}
	*a = Amount(f)
	return nil
}

// CheckoutResponse is returned for a successful submission.
type CheckoutResponse struct {
	OrderID     string `json:"orderId"`
	ReceiptURL  string `json:"receiptUrl"`
	WhatsAppURL string `json:"whatsappUrl,omitempty"`
}
