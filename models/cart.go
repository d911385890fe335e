package models

import "time"

type CartItem struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

type Cart struct {
	UserID    string     `json:"userId"`
	Items     []CartItem `json:"items"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// CartLine is a cart item joined with its product for display.
type CartLine struct {
	Product
	Quantity int `json:"quantity"`
}

type CartView struct {
	Items []CartLine `json:"items"`
	Total float64    `json:"total"`
}
