package intent

import (
	"context"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/happyloop/vendbot/internal/domain"
)

var numberPattern = regexp.MustCompile(`\b([0-9]+)\b`)

var numberWords = map[string]int{
	"one": 1, "two": 2, "three": 3, "four": 4, "five": 5,
	"six": 6, "seven": 7, "eight": 8, "nine": 9, "ten": 10,
	"eleven": 11, "twelve": 12,
}

var (
	listPhrases = []string{
		"what do you have", "what do you sell", "what's available",
		"list products", "show me", "menu", "available products",
	}
	checkPhrases = []string{
		"how many", "how much", "are left", "in stock", "check stock",
		"still have", "remaining",
	}
	purchasePhrases = []string{
		"buy", "want", "purchase", "give me", "get me", "i'll take",
		"can i have", "dispense", "sell me", "order",
	}
)

// Rules is a deterministic keyword extractor. It serves two roles: the
// extractor when no Gemini credential is configured, and a predictable
// double for exercising the machine without the network.
type Rules struct {
	names   []string          // canonical product names
	aliases map[string]string // alias -> canonical name
}

// NewRules creates a rule-based extractor over the given product vocabulary.
func NewRules(names []string, aliases map[string]string) *Rules {
	return &Rules{names: names, aliases: aliases}
}

// Extract classifies one user message by keyword matching. Never fails
// outward.
func (r *Rules) Extract(_ context.Context, message string) domain.PurchaseIntent {
	msg := strings.ToLower(strings.TrimSpace(message))
	if msg == "" {
		return domain.UnknownIntent()
	}

	product := r.matchProduct(msg)
	quantity := matchQuantity(msg)

	var kind domain.IntentKind
	switch {
	case containsAny(msg, listPhrases):
		kind = domain.IntentListProducts
	case containsAny(msg, checkPhrases):
		kind = domain.IntentCheckStock
	case containsAny(msg, purchasePhrases):
		kind = domain.IntentPurchase
	case product != nil && quantity != nil:
		// "3 cokes please" carries no verb but is clearly a purchase.
		kind = domain.IntentPurchase
	default:
		return domain.UnknownIntent()
	}

	out := domain.PurchaseIntent{Kind: kind}
	switch kind {
	case domain.IntentListProducts:
		out.Confidence = 0.9
	case domain.IntentCheckStock:
		out.ProductName = product
		out.Confidence = 0.85
	case domain.IntentPurchase:
		out.ProductName = product
		out.Quantity = quantity
		if product != nil && quantity != nil {
			out.Confidence = 0.9
		} else {
			out.Confidence = 0.6
		}
	}
	return out
}

// matchProduct finds a canonical product name mentioned in the message,
// either directly or through an alias. Longer aliases are tried first so
// "guarana antarctica" wins over "guarana".
func (r *Rules) matchProduct(msg string) *string {
	for _, name := range r.names {
		if strings.Contains(msg, strings.ToLower(name)) {
			canonical := name
			return &canonical
		}
	}

	aliases := make([]string, 0, len(r.aliases))
	for alias := range r.aliases {
		aliases = append(aliases, alias)
	}
	sort.Slice(aliases, func(i, j int) bool {
		if len(aliases[i]) != len(aliases[j]) {
			return len(aliases[i]) > len(aliases[j])
		}
		return aliases[i] < aliases[j]
	})
	for _, alias := range aliases {
		if strings.Contains(msg, alias) {
			canonical := r.aliases[alias]
			return &canonical
		}
	}
	return nil
}

func matchQuantity(msg string) *int {
	if m := numberPattern.FindStringSubmatch(msg); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil && n > 0 {
			return &n
		}
	}
	for _, word := range strings.Fields(msg) {
		if n, ok := numberWords[strings.Trim(word, ".,!?")]; ok {
			return &n
		}
	}
	return nil
}

func containsAny(msg string, phrases []string) bool {
	for _, phrase := range phrases {
		if strings.Contains(msg, phrase) {
			return true
		}
	}
	return false
}
