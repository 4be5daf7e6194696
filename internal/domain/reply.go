package domain

import "github.com/shopspring/decimal"

// ProductInfo is the machine-readable slice of a catalog listing included in
// list-products replies.
type ProductInfo struct {
	ID    string          `json:"id"`
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
	Stock int             `json:"stock"`
}

// Reply is what the vending machine says back. Every request terminates in a
// Reply; Success=false marks expected conversational outcomes (unknown
// product, not enough stock), not transport errors.
type Reply struct {
	Success       bool             `json:"success"`
	Message       string           `json:"message"`
	Intent        *PurchaseIntent  `json:"purchase_intent,omitempty"`
	TransactionID *string          `json:"transaction_id,omitempty"`
	TotalPrice    *decimal.Decimal `json:"total_price,omitempty"`
	Products      []ProductInfo    `json:"products,omitempty"`
}
