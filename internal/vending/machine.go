// Package vending holds the purchase orchestrator: the state machine that
// takes a classified intent through validation, pricing and the commit
// protocol that keeps stock and ledger consistent.
package vending

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/happyloop/vendbot/internal/domain"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// Extractor is the intent-extraction collaborator. Implementations are total
// functions: on any internal failure they return the unknown intent, never
// an error.
type Extractor interface {
	Extract(ctx context.Context, message string) domain.PurchaseIntent
}

// Committer performs the atomic debit-plus-success-flip for a pending ledger
// row. A false result means stock was insufficient at commit time.
type Committer interface {
	CommitPurchase(ctx context.Context, transactionID, productID string, quantity int) (bool, error)
}

// Ledger is the slice of the transaction store the vending flow writes to.
type Ledger interface {
	Create(ctx context.Context, tx *domain.Transaction) error
	UpdateStatus(ctx context.Context, id string, status domain.TransactionStatus) error
}

const (
	msgSpecifyProduct = "Please specify which product and how many you want. For example: 'I want 2 cokes'"
	msgCapabilities   = "I'm a soda vending machine! You can:\n• Buy products: 'I want 2 cokes'\n• Check inventory: 'What do you have?'\n• Check stock: 'How many sprites are left?'"
	msgAllOutOfStock  = "Sorry, we're currently out of stock on all products."
	msgWhichProduct   = "Which product would you like to check stock for?"
	msgCommitFailed   = "Transaction failed. Please try again."
	msgSomethingWrong = "Sorry, something went wrong with your purchase. Please try again."
	msgGenericTrouble = "Sorry, I'm having trouble right now. Please try again in a moment."
)

// Machine is the purchase orchestrator. It owns no state between requests;
// the datastore is the only shared mutable resource.
type Machine struct {
	extractor Extractor
	resolver  *Resolver
	products  Catalog
	ledger    Ledger
	committer Committer
	log       zerolog.Logger
}

// NewMachine wires the orchestrator to its collaborators.
func NewMachine(extractor Extractor, resolver *Resolver, products Catalog, ledger Ledger, committer Committer, log zerolog.Logger) *Machine {
	return &Machine{
		extractor: extractor,
		resolver:  resolver,
		products:  products,
		ledger:    ledger,
		committer: committer,
		log:       log,
	}
}

// Handle is the single inbound entry point: raw text in, Reply out. Every
// request terminates in a Reply; faults are caught at this boundary and
// reported conversationally.
func (m *Machine) Handle(ctx context.Context, message string) (reply domain.Reply) {
	defer func() {
		if r := recover(); r != nil {
			m.log.Error().Interface("panic", r).Str("message", message).Msg("Recovered panic in purchase flow")
			reply = domain.Reply{Success: false, Message: msgGenericTrouble}
		}
	}()

	it := m.extractor.Extract(ctx, message)
	reply = m.dispatch(ctx, it, message)
	reply.Intent = &it
	return reply
}

func (m *Machine) dispatch(ctx context.Context, it domain.PurchaseIntent, message string) domain.Reply {
	switch it.Kind {
	case domain.IntentListProducts:
		return m.AvailableProducts(ctx)
	case domain.IntentCheckStock:
		return m.checkStock(ctx, it)
	case domain.IntentPurchase:
		return m.purchase(ctx, it, message)
	default:
		// Unrecognized intents get the capability pitch; not understanding
		// is a conversational outcome, not a failure.
		return domain.Reply{Success: true, Message: msgCapabilities}
	}
}

// AvailableProducts builds the list-products reply: every active product
// with stock remaining. An empty machine is a valid state, reported with
// Success=true.
func (m *Machine) AvailableProducts(ctx context.Context) domain.Reply {
	products, err := m.products.ListAvailable(ctx)
	if err != nil {
		m.log.Error().Err(err).Msg("Failed to list available products")
		return domain.Reply{Success: false, Message: msgGenericTrouble}
	}

	if len(products) == 0 {
		return domain.Reply{Success: true, Message: msgAllOutOfStock}
	}

	var lines []string
	infos := make([]domain.ProductInfo, 0, len(products))
	for _, p := range products {
		lines = append(lines, fmt.Sprintf("• %s: $%s (%d available)", p.Name, p.Price.StringFixed(2), p.StockQuantity))
		infos = append(infos, domain.ProductInfo{ID: p.ID, Name: p.Name, Price: p.Price, Stock: p.StockQuantity})
	}

	return domain.Reply{
		Success:  true,
		Message:  "Available Products:\n" + strings.Join(lines, "\n"),
		Products: infos,
	}
}

func (m *Machine) checkStock(ctx context.Context, it domain.PurchaseIntent) domain.Reply {
	if it.ProductName == nil {
		return domain.Reply{Success: true, Message: msgWhichProduct}
	}

	product, err := m.resolver.Resolve(ctx, *it.ProductName)
	if err != nil {
		m.log.Error().Err(err).Str("product", *it.ProductName).Msg("Stock check resolution failed")
		return domain.Reply{Success: false, Message: msgGenericTrouble}
	}
	if product == nil {
		return domain.Reply{
			Success: false,
			Message: fmt.Sprintf("I don't have '%s'. Available: %s", *it.ProductName, m.availableNames(ctx)),
		}
	}

	if product.StockQuantity == 0 {
		return domain.Reply{Success: true, Message: fmt.Sprintf("Sorry, %s is out of stock.", product.Name)}
	}
	return domain.Reply{
		Success: true,
		Message: fmt.Sprintf("%s: %d units available at $%s each", product.Name, product.StockQuantity, product.Price.StringFixed(2)),
	}
}

// purchase runs the validation chain in order (slots present, product
// resolvable, stock sufficient) and then the commit protocol. Ordering
// matters: each step short-circuits with its own guidance message.
func (m *Machine) purchase(ctx context.Context, it domain.PurchaseIntent, message string) domain.Reply {
	if it.ProductName == nil || it.Quantity == nil || *it.Quantity <= 0 {
		return domain.Reply{Success: false, Message: msgSpecifyProduct}
	}

	product, err := m.resolver.Resolve(ctx, *it.ProductName)
	if err != nil {
		m.log.Error().Err(err).Str("product", *it.ProductName).Msg("Purchase resolution failed")
		return domain.Reply{Success: false, Message: msgSomethingWrong}
	}
	if product == nil {
		return domain.Reply{
			Success: false,
			Message: fmt.Sprintf("Sorry, I don't have '%s'. Available products: %s", *it.ProductName, m.availableNames(ctx)),
		}
	}

	quantity := *it.Quantity
	if quantity > product.StockQuantity {
		return domain.Reply{
			Success: false,
			Message: fmt.Sprintf("Sorry, I only have %d %s in stock.", product.StockQuantity, product.Name),
		}
	}

	// Price snapshot: the ledger row keeps this price even if the catalog
	// changes later.
	unitPrice := product.Price
	totalPrice := unitPrice.Mul(decimal.NewFromInt(int64(quantity))).Round(2)

	record := &domain.Transaction{
		ID:          uuid.NewString(),
		ProductID:   product.ID,
		Quantity:    quantity,
		UnitPrice:   unitPrice,
		TotalPrice:  totalPrice,
		UserMessage: message,
		Status:      domain.StatusPending,
		Intent:      it.Kind,
		Confidence:  it.Confidence,
	}
	if err := m.ledger.Create(ctx, record); err != nil {
		m.log.Error().Err(err).Str("product_id", product.ID).Msg("Failed to create ledger entry")
		return domain.Reply{Success: false, Message: msgSomethingWrong}
	}

	applied, err := m.committer.CommitPurchase(ctx, record.ID, product.ID, quantity)
	if err != nil {
		m.log.Error().Err(err).Str("transaction_id", record.ID).Msg("Purchase commit errored")
		// Best effort: leave an audit trail of the failed attempt.
		if ferr := m.ledger.UpdateStatus(ctx, record.ID, domain.StatusFailed); ferr != nil {
			m.log.Error().Err(ferr).Str("transaction_id", record.ID).Msg("Failed to mark transaction failed")
		}
		return domain.Reply{Success: false, Message: msgSomethingWrong}
	}
	if !applied {
		// Stock ran out between validation and commit. The failed row
		// persists as the audit trail of the attempt.
		if ferr := m.ledger.UpdateStatus(ctx, record.ID, domain.StatusFailed); ferr != nil {
			m.log.Error().Err(ferr).Str("transaction_id", record.ID).Msg("Failed to mark transaction failed")
		}
		return domain.Reply{Success: false, Message: msgCommitFailed}
	}

	m.log.Info().
		Str("transaction_id", record.ID).
		Str("product", product.Name).
		Int("quantity", quantity).
		Str("total", totalPrice.StringFixed(2)).
		Msg("Purchase committed")

	return domain.Reply{
		Success:       true,
		Message:       fmt.Sprintf("Great! I've dispensed %d %s for $%s. Enjoy your drink!", quantity, product.Name, totalPrice.StringFixed(2)),
		TransactionID: &record.ID,
		TotalPrice:    &totalPrice,
	}
}

// availableNames renders the currently sellable product names for guidance
// messages.
func (m *Machine) availableNames(ctx context.Context) string {
	products, err := m.products.ListAvailable(ctx)
	if err != nil || len(products) == 0 {
		return "none"
	}
	names := make([]string, 0, len(products))
	for _, p := range products {
		names = append(names, p.Name)
	}
	return strings.Join(names, ", ")
}
