package intent

import (
	"testing"

	"github.com/happyloop/vendbot/internal/domain"
)

func TestParseIntent(t *testing.T) {
	tests := []struct {
		name        string
		raw         string
		wantKind    domain.IntentKind
		wantProduct string
		wantQty     int // 0 means nil expected
		wantConf    float64
	}{
		{
			name:        "plain object",
			raw:         `{"intent": "purchase", "product_name": "Coca-Cola", "quantity": 3, "confidence": 0.95}`,
			wantKind:    domain.IntentPurchase,
			wantProduct: "Coca-Cola",
			wantQty:     3,
			wantConf:    0.95,
		},
		{
			name:     "fenced json",
			raw:      "```json\n{\"intent\": \"list_products\", \"product_name\": null, \"quantity\": null, \"confidence\": 0.9}\n```",
			wantKind: domain.IntentListProducts,
			wantConf: 0.9,
		},
		{
			name:     "bare fences",
			raw:      "```\n{\"intent\": \"unknown\", \"confidence\": 0}\n```",
			wantKind: domain.IntentUnknown,
		},
		{
			name:        "chatty preamble",
			raw:         "Here is the classification: {\"intent\": \"check_stock\", \"product_name\": \"Pepsi\", \"confidence\": 0.8} hope that helps",
			wantKind:    domain.IntentCheckStock,
			wantProduct: "Pepsi",
			wantConf:    0.8,
		},
		{
			name:     "uppercase kind normalized",
			raw:      `{"intent": "PURCHASE", "confidence": 0.7}`,
			wantKind: domain.IntentPurchase,
			wantConf: 0.7,
		},
		{
			name:     "confidence clamped high",
			raw:      `{"intent": "purchase", "confidence": 3.2}`,
			wantKind: domain.IntentPurchase,
			wantConf: 1,
		},
		{
			name:     "confidence clamped low",
			raw:      `{"intent": "purchase", "confidence": -1}`,
			wantKind: domain.IntentPurchase,
			wantConf: 0,
		},
		{
			name:     "non-positive quantity dropped",
			raw:      `{"intent": "purchase", "product_name": "Sprite", "quantity": -2, "confidence": 0.6}`,
			wantKind: domain.IntentPurchase, wantProduct: "Sprite", wantConf: 0.6,
		},
		{
			name:     "blank product dropped",
			raw:      `{"intent": "check_stock", "product_name": "   ", "confidence": 0.6}`,
			wantKind: domain.IntentCheckStock,
			wantConf: 0.6,
		},
		{
			name:     "unrecognized kind falls back",
			raw:      `{"intent": "refund", "confidence": 0.9}`,
			wantKind: domain.IntentUnknown,
		},
		{
			name:     "not json falls back",
			raw:      "I could not classify that",
			wantKind: domain.IntentUnknown,
		},
		{
			name:     "empty falls back",
			raw:      "",
			wantKind: domain.IntentUnknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseIntent(tt.raw)
			if got.Kind != tt.wantKind {
				t.Errorf("Kind = %s, want %s", got.Kind, tt.wantKind)
			}
			if tt.wantProduct == "" && got.ProductName != nil {
				t.Errorf("ProductName = %q, want nil", *got.ProductName)
			}
			if tt.wantProduct != "" && (got.ProductName == nil || *got.ProductName != tt.wantProduct) {
				t.Errorf("ProductName = %v, want %q", got.ProductName, tt.wantProduct)
			}
			if tt.wantQty == 0 && got.Quantity != nil {
				t.Errorf("Quantity = %d, want nil", *got.Quantity)
			}
			if tt.wantQty != 0 && (got.Quantity == nil || *got.Quantity != tt.wantQty) {
				t.Errorf("Quantity = %v, want %d", got.Quantity, tt.wantQty)
			}
			if got.Confidence != tt.wantConf {
				t.Errorf("Confidence = %v, want %v", got.Confidence, tt.wantConf)
			}
		})
	}
}

func TestCleanModelJSON(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"clean passthrough", `{"intent":"unknown"}`, `{"intent":"unknown"}`},
		{"json fence", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"plain fence", "```\n{\"a\":1}\n```", `{"a":1}`},
		{"surrounding prose", "sure: {\"a\":1} done", `{"a":1}`},
		{"whitespace", "  {\"a\":1}  ", `{"a":1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := cleanModelJSON(tt.raw); got != tt.want {
				t.Errorf("cleanModelJSON(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}
