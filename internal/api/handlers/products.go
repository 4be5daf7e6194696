package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/happyloop/vendbot/internal/api/middleware"
	"github.com/happyloop/vendbot/internal/domain"
	"github.com/happyloop/vendbot/internal/store"
	"github.com/happyloop/vendbot/internal/vending"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// ProductsHandler handles catalog endpoints.
type ProductsHandler struct {
	repo    store.ProductRepository
	machine *vending.Machine
	log     zerolog.Logger
}

// NewProductsHandler creates a new products handler.
func NewProductsHandler(repo store.ProductRepository, machine *vending.Machine, log zerolog.Logger) *ProductsHandler {
	return &ProductsHandler{repo: repo, machine: machine, log: log}
}

// Available handles GET /api/v1/products: the customer-facing listing, same
// Reply shape as the chat endpoint produces for list-products intents.
func (h *ProductsHandler) Available(w http.ResponseWriter, r *http.Request) {
	reply := h.machine.AvailableProducts(r.Context())
	middleware.WriteJSON(w, http.StatusOK, reply)
}

// ListAll handles GET /api/v1/products/all with offset/limit paging. Returns
// the full catalog, inactive and sold-out rows included.
func (h *ProductsHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	offset := intQuery(r, "offset", 0)
	limit := intQuery(r, "limit", 100)

	products, err := h.repo.ListAll(r.Context(), offset, limit)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list products")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to list products")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"products": products,
		"count":    len(products),
	})
}

// Create handles POST /api/v1/products.
func (h *ProductsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SKU           string          `json:"sku"`
		Name          string          `json:"name"`
		Description   string          `json:"description"`
		Price         decimal.Decimal `json:"price"`
		StockQuantity int             `json:"stock_quantity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.SKU == "" || req.Name == "" {
		middleware.WriteError(w, http.StatusBadRequest, "sku and name are required")
		return
	}
	if req.Price.IsNegative() || req.StockQuantity < 0 {
		middleware.WriteError(w, http.StatusBadRequest, "price and stock_quantity must be non-negative")
		return
	}

	product := &domain.Product{
		ID:            uuid.NewString(),
		SKU:           req.SKU,
		Name:          req.Name,
		Description:   req.Description,
		Price:         req.Price.Round(2),
		StockQuantity: req.StockQuantity,
		IsActive:      true,
	}
	if err := h.repo.Create(r.Context(), product); err != nil {
		h.log.Error().Err(err).Str("sku", req.SKU).Msg("Failed to create product")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to create product")
		return
	}

	middleware.WriteJSON(w, http.StatusCreated, product)
}

// Restock handles POST /api/v1/products/{id}/restock.
func (h *ProductsHandler) Restock(w http.ResponseWriter, r *http.Request, productID string) {
	var req struct {
		Quantity int `json:"quantity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Quantity <= 0 {
		middleware.WriteError(w, http.StatusBadRequest, "quantity must be positive")
		return
	}

	product, err := h.repo.Restock(r.Context(), productID, req.Quantity)
	if err != nil {
		h.log.Error().Err(err).Str("product_id", productID).Msg("Failed to restock product")
		middleware.WriteError(w, http.StatusNotFound, "Product not found")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, product)
}

// Deactivate handles DELETE /api/v1/products/{id}. Soft delete: the row
// stays for ledger linkage.
func (h *ProductsHandler) Deactivate(w http.ResponseWriter, r *http.Request, productID string) {
	if err := h.repo.Deactivate(r.Context(), productID); err != nil {
		h.log.Error().Err(err).Str("product_id", productID).Msg("Failed to deactivate product")
		middleware.WriteError(w, http.StatusNotFound, "Product not found")
		return
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]string{"status": "deactivated", "id": productID})
}

// LowStock handles GET /api/v1/products/low-stock?threshold=N.
func (h *ProductsHandler) LowStock(w http.ResponseWriter, r *http.Request) {
	threshold := intQuery(r, "threshold", 5)

	products, err := h.repo.ListLowStock(r.Context(), threshold)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list low-stock products")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to list low-stock products")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"threshold": threshold,
		"products":  products,
		"count":     len(products),
	})
}

func intQuery(r *http.Request, key string, def int) int {
	v := r.URL.Query().Get(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return def
	}
	return n
}
