package handlers

import (
	"net/http"
	"time"

	"cloud.google.com/go/civil"
	"github.com/happyloop/vendbot/internal/api/middleware"
	"github.com/happyloop/vendbot/internal/store"
	"github.com/rs/zerolog"
)

// TransactionsHandler handles ledger and analytics endpoints.
type TransactionsHandler struct {
	repo store.TransactionRepository
	log  zerolog.Logger
}

// NewTransactionsHandler creates a new transactions handler.
func NewTransactionsHandler(repo store.TransactionRepository, log zerolog.Logger) *TransactionsHandler {
	return &TransactionsHandler{repo: repo, log: log}
}

// List handles GET /api/v1/transactions with offset/limit paging, newest
// first.
func (h *TransactionsHandler) List(w http.ResponseWriter, r *http.Request) {
	offset := intQuery(r, "offset", 0)
	limit := intQuery(r, "limit", 100)

	txs, err := h.repo.ListAll(r.Context(), offset, limit)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list transactions")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to list transactions")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"transactions": txs,
		"count":        len(txs),
	})
}

// Recent handles GET /api/v1/transactions/recent?hours=N.
func (h *TransactionsHandler) Recent(w http.ResponseWriter, r *http.Request) {
	hours := intQuery(r, "hours", 24)
	if hours <= 0 {
		hours = 24
	}

	txs, err := h.repo.ListRecent(r.Context(), hours)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list recent transactions")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to list recent transactions")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"hours":        hours,
		"transactions": txs,
		"count":        len(txs),
	})
}

// DailySummary handles GET /api/v1/transactions/summary/daily?date=YYYY-MM-DD.
// Defaults to today.
func (h *TransactionsHandler) DailySummary(w http.ResponseWriter, r *http.Request) {
	date := civil.DateOf(time.Now())
	if raw := r.URL.Query().Get("date"); raw != "" {
		parsed, err := civil.ParseDate(raw)
		if err != nil {
			middleware.WriteError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
			return
		}
		date = parsed
	}

	summary, err := h.repo.DailySummary(r.Context(), date)
	if err != nil {
		h.log.Error().Err(err).Str("date", date.String()).Msg("Failed to build daily summary")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to build daily summary")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, summary)
}

// Popular handles GET /api/v1/transactions/analytics/popular?days=N.
func (h *TransactionsHandler) Popular(w http.ResponseWriter, r *http.Request) {
	days := intQuery(r, "days", 7)
	if days <= 0 {
		days = 7
	}

	sales, err := h.repo.PopularProducts(r.Context(), days)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to compute popular products")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to compute popular products")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"days":     days,
		"products": sales,
	})
}

// Hourly handles GET /api/v1/transactions/analytics/hourly?days=N.
func (h *TransactionsHandler) Hourly(w http.ResponseWriter, r *http.Request) {
	days := intQuery(r, "days", 7)
	if days <= 0 {
		days = 7
	}

	pattern, err := h.repo.HourlySalesPattern(r.Context(), days)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to compute hourly sales pattern")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to compute hourly sales pattern")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"days":  days,
		"hours": pattern,
	})
}
