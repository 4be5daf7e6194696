// Package intent turns free-form user text into a typed PurchaseIntent.
//
// Extraction is a total function: implementations never return an error.
// Whatever goes wrong internally (model unreachable, malformed output,
// unintelligible text), the caller receives the unknown intent with zero
// confidence and carries on.
package intent

import (
	"encoding/json"
	"strings"

	"github.com/happyloop/vendbot/internal/domain"
)

// intentWire is the JSON shape the model is instructed to emit.
type intentWire struct {
	Intent      string  `json:"intent"`
	ProductName *string `json:"product_name"`
	Quantity    *int    `json:"quantity"`
	Confidence  float64 `json:"confidence"`
}

// parseIntent converts raw model output into a well-formed PurchaseIntent.
// Anything that does not decode into a known intent kind falls back to
// unknown.
func parseIntent(raw string) domain.PurchaseIntent {
	clean := cleanModelJSON(raw)

	var wire intentWire
	if err := json.Unmarshal([]byte(clean), &wire); err != nil {
		return domain.UnknownIntent()
	}

	kind := domain.IntentKind(strings.ToLower(strings.TrimSpace(wire.Intent)))
	switch kind {
	case domain.IntentPurchase, domain.IntentCheckStock, domain.IntentListProducts, domain.IntentUnknown:
	default:
		return domain.UnknownIntent()
	}

	out := domain.PurchaseIntent{Kind: kind, Confidence: clamp01(wire.Confidence)}
	if wire.ProductName != nil && strings.TrimSpace(*wire.ProductName) != "" {
		name := strings.TrimSpace(*wire.ProductName)
		out.ProductName = &name
	}
	if wire.Quantity != nil && *wire.Quantity > 0 {
		qty := *wire.Quantity
		out.Quantity = &qty
	}
	return out
}

// cleanModelJSON strips Markdown fences and surrounding junk the model may
// wrap around its JSON object despite instructions.
func cleanModelJSON(raw string) string {
	s := strings.TrimSpace(raw)

	if strings.HasPrefix(s, "```") {
		// Drop the first line (``` or ```json).
		if idx := strings.Index(s, "\n"); idx != -1 {
			s = s[idx+1:]
		} else {
			return s
		}
		s = strings.TrimSpace(s)
	}

	if idx := strings.LastIndex(s, "```"); idx != -1 {
		s = s[:idx]
	}

	s = strings.TrimSpace(s)

	// If there is still junk around the object, keep only from the first
	// '{' to the last '}'.
	if start := strings.Index(s, "{"); start != -1 {
		if end := strings.LastIndex(s, "}"); end != -1 && end > start {
			s = strings.TrimSpace(s[start : end+1])
		}
	}

	return s
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
