package models

import "github.com/fairsplit/fairsplit/internal/money"

// ReceiptAnalysis is the structured output of the receipt image analyzer.
// Quantities are already expanded: every entry is one unit at its unit price.
type ReceiptAnalysis struct {
	StoreName string        `json:"store_name"`
	Currency  string        `json:"currency"`
	Total     money.Cents   `json:"total_cents"`
	Items     []ReceiptItem `json:"items"`
}

// ReceiptItem is a single line of an analyzed receipt.
type ReceiptItem struct {
	Name  string      `json:"name"`
	Price money.Cents `json:"price_cents"`
}

// PendingReceipt holds an analysis between the scan and apportion steps.
// It replaces server-side session state: the client carries the token and
// the payload stays in the store until it is consumed or expires.
type PendingReceipt struct {
	Token     string
	GroupID   string
	CreatedBy string
	Analysis  ReceiptAnalysis
	CreatedAt int64
	ExpiresAt int64
}
