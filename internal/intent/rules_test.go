package intent

import (
	"context"
	"testing"

	"github.com/happyloop/vendbot/internal/domain"
)

func testRules() *Rules {
	names := []string{"Coca-Cola", "Pepsi", "Sprite", "Fanta Orange", "Guarana Antarctica"}
	aliases := map[string]string{
		"coke":    "Coca-Cola",
		"cokes":   "Coca-Cola",
		"cola":    "Coca-Cola",
		"fanta":   "Fanta Orange",
		"guarana": "Guarana Antarctica",
		"sprite":  "Sprite",
		"pepsi":   "Pepsi",
	}
	return NewRules(names, aliases)
}

func TestRulesExtract(t *testing.T) {
	rules := testRules()

	tests := []struct {
		message     string
		wantKind    domain.IntentKind
		wantProduct string
		wantQty     int // 0 means nil expected
	}{
		{"I want to buy 3 cokes", domain.IntentPurchase, "Coca-Cola", 3},
		{"Give me 2 sprites please", domain.IntentPurchase, "Sprite", 2},
		{"I want two pepsis", domain.IntentPurchase, "Pepsi", 2},
		{"buy guarana", domain.IntentPurchase, "Guarana Antarctica", 0},
		{"3 fantas", domain.IntentPurchase, "Fanta Orange", 3},
		{"What do you have?", domain.IntentListProducts, "", 0},
		{"show me the menu", domain.IntentListProducts, "", 0},
		{"How many pepsis are left?", domain.IntentCheckStock, "Pepsi", 0},
		{"is sprite in stock", domain.IntentCheckStock, "Sprite", 0},
		{"asdkjfh nonsense", domain.IntentUnknown, "", 0},
		{"", domain.IntentUnknown, "", 0},
		{"hello there", domain.IntentUnknown, "", 0},
	}

	for _, tt := range tests {
		t.Run(tt.message, func(t *testing.T) {
			got := rules.Extract(context.Background(), tt.message)
			if got.Kind != tt.wantKind {
				t.Fatalf("Kind = %s, want %s", got.Kind, tt.wantKind)
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
			if tt.wantKind == domain.IntentUnknown && got.Confidence != 0 {
				t.Errorf("unknown intent must carry zero confidence, got %v", got.Confidence)
			}
			if tt.wantKind != domain.IntentUnknown && got.Confidence <= 0 {
				t.Errorf("recognized intent must carry positive confidence, got %v", got.Confidence)
			}
		})
	}
}

func TestRulesExtract_LongestAliasWins(t *testing.T) {
	names := []string{"Guarana Antarctica", "Guarana Jesus"}
	aliases := map[string]string{
		"guarana":       "Guarana Antarctica",
		"guarana jesus": "Guarana Jesus",
	}
	rules := NewRules(names, aliases)

	got := rules.Extract(context.Background(), "buy 1 guarana jesus")
	if got.ProductName == nil || *got.ProductName != "Guarana Jesus" {
		t.Errorf("expected longest alias to win, got %v", got.ProductName)
	}
}
