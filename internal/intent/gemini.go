package intent

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/happyloop/vendbot/internal/domain"
	"github.com/rs/zerolog"
	"google.golang.org/genai"
)

// CatalogSource is the narrow slice of the product repository the extractor
// needs to list sellable products in its prompt.
type CatalogSource interface {
	ListAvailable(ctx context.Context) ([]domain.Product, error)
}

// Gemini extracts purchase intents with the Gemini API. It satisfies the
// total-extraction contract: every internal failure degrades to the unknown
// intent rather than an error.
type Gemini struct {
	client  *genai.Client
	model   string
	catalog CatalogSource
	aliases map[string]string
	log     zerolog.Logger
}

// NewGemini creates a Gemini-backed extractor. The catalog source is
// consulted per call so prompts track the live product list.
func NewGemini(ctx context.Context, apiKey, model string, catalog CatalogSource, aliases map[string]string, log zerolog.Logger) (*Gemini, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      apiKey,
		HTTPOptions: genai.HTTPOptions{APIVersion: "v1"},
	})
	if err != nil {
		return nil, fmt.Errorf("NewGemini: create genai client: %w", err)
	}
	return &Gemini{
		client:  client,
		model:   model,
		catalog: catalog,
		aliases: aliases,
		log:     log,
	}, nil
}

// Extract classifies one user message. Never fails outward.
func (g *Gemini) Extract(ctx context.Context, message string) domain.PurchaseIntent {
	prompt := g.buildPrompt(ctx)

	contents := []*genai.Content{
		{
			Role: "user",
			Parts: []*genai.Part{
				{Text: prompt},
				{Text: "User message: " + message},
			},
		},
	}

	cfg := &genai.GenerateContentConfig{
		Temperature:      genai.Ptr[float32](0.1),
		ResponseMIMEType: "application/json",
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, cfg)
	if err != nil {
		g.log.Warn().Err(err).Msg("Intent extraction call failed, falling back to unknown")
		return domain.UnknownIntent()
	}

	rawText := resp.Text()
	if rawText == "" {
		g.log.Warn().Msg("Empty intent extraction response, falling back to unknown")
		return domain.UnknownIntent()
	}

	return parseIntent(rawText)
}

// buildPrompt assembles the classification instructions plus the current
// catalog and alias table. A catalog read failure degrades to a prompt
// without the product list; classification still works, resolution catches
// bad names later.
func (g *Gemini) buildPrompt(ctx context.Context) string {
	var b strings.Builder

	b.WriteString("You are the brain of a soda vending machine.\n")
	b.WriteString("Classify the user message and extract purchase details.\n\n")
	b.WriteString("Output STRICT JSON only (no comments, no extra text, no Markdown fences).\n")
	b.WriteString("Output a single JSON object with these fields:\n")
	b.WriteString("- \"intent\": one of \"purchase\", \"check_stock\", \"list_products\", \"unknown\"\n")
	b.WriteString("- \"product_name\": string or null (canonical product name)\n")
	b.WriteString("- \"quantity\": positive integer or null\n")
	b.WriteString("- \"confidence\": number between 0 and 1\n\n")

	if products, err := g.catalog.ListAvailable(ctx); err == nil && len(products) > 0 {
		b.WriteString("Products currently for sale:\n")
		for _, p := range products {
			b.WriteString("- " + p.Name + "\n")
		}
		b.WriteString("\n")
	}

	if len(g.aliases) > 0 {
		keys := make([]string, 0, len(g.aliases))
		for alias := range g.aliases {
			keys = append(keys, alias)
		}
		sort.Strings(keys)
		b.WriteString("Common aliases:\n")
		for _, alias := range keys {
			b.WriteString("- \"" + alias + "\" means " + g.aliases[alias] + "\n")
		}
		b.WriteString("\n")
	}

	b.WriteString("Examples:\n")
	b.WriteString("- \"I want to buy 3 cokes\" -> {\"intent\": \"purchase\", \"product_name\": \"Coca-Cola\", \"quantity\": 3, \"confidence\": 0.95}\n")
	b.WriteString("- \"Give me 2 sprites please\" -> {\"intent\": \"purchase\", \"product_name\": \"Sprite\", \"quantity\": 2, \"confidence\": 0.95}\n")
	b.WriteString("- \"What do you have?\" -> {\"intent\": \"list_products\", \"product_name\": null, \"quantity\": null, \"confidence\": 0.9}\n")
	b.WriteString("- \"How many pepsis are left?\" -> {\"intent\": \"check_stock\", \"product_name\": \"Pepsi\", \"quantity\": null, \"confidence\": 0.9}\n")

	return b.String()
}
