package domain

// PurchaseIntent is the structured interpretation of one user message. It is
// produced per request and never persisted directly; the interesting parts
// end up on the Transaction row when a purchase goes through.
type PurchaseIntent struct {
	Kind        IntentKind `json:"intent"`
	ProductName *string    `json:"product_name,omitempty"`
	Quantity    *int       `json:"quantity,omitempty"`
	Confidence  float64    `json:"confidence"`
}

// UnknownIntent is the safe fallback returned whenever extraction cannot
// produce anything better. It is a valid intent, not an error.
func UnknownIntent() PurchaseIntent {
	return PurchaseIntent{Kind: IntentUnknown, Confidence: 0.0}
}
