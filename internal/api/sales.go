package api

import (
	"database/sql"
	"log/slog"
	"net/http"
	"time"

	"github.com/erazemk/resell/internal/model"
	"github.com/erazemk/resell/internal/sales"
	"github.com/erazemk/resell/internal/store"
)

// SalesHandler exposes the sale reconciliation engine.
type SalesHandler struct {
	Engine *sales.Engine
	DB     *sql.DB
}

type updateSaleRequest struct {
	ID int64 `json:"id"`
	sales.SaleFields
}

// Create handles POST /api/sales.
func (h *SalesHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req sales.CreateSaleInput
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	claims := GetClaims(r.Context())
	sale, err := h.Engine.RecordSale(r.Context(), claims.UserID, req)
	if err != nil {
		engineError(w, err, "record sale")
		return
	}

	slog.Info("sale recorded", "user", claims.Username, "sale", sale.ID, "item", sale.ItemID,
		"platform", sale.Platform, "quantity", sale.QuantitySold, "net_profit", sale.NetProfit)
	jsonResponse(w, http.StatusCreated, sale)
}

// Update handles PATCH /api/sales.
func (h *SalesHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req updateSaleRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	claims := GetClaims(r.Context())
	sale, err := h.Engine.UpdateSale(r.Context(), claims.UserID, req.ID, req.SaleFields)
	if err != nil {
		engineError(w, err, "update sale")
		return
	}

	slog.Info("sale updated", "user", claims.Username, "sale", sale.ID, "quantity", sale.QuantitySold)
	jsonResponse(w, http.StatusOK, sale)
}

// Delete handles DELETE /api/sales?id=.
func (h *SalesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := queryID(r, "id")
	if err != nil || id == 0 {
		jsonError(w, http.StatusBadRequest, "invalid sale id")
		return
	}

	claims := GetClaims(r.Context())
	if err := h.Engine.DeleteSale(r.Context(), claims.UserID, id); err != nil {
		engineError(w, err, "delete sale")
		return
	}

	slog.Info("sale deleted", "user", claims.Username, "sale", id)
	jsonResponse(w, http.StatusOK, map[string]string{"message": "sale deleted"})
}

// List handles GET /api/sales.
func (h *SalesHandler) List(w http.ResponseWriter, r *http.Request) {
	itemID, err := queryID(r, "item_id")
	if err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	q := r.URL.Query()
	platform := model.Platform(q.Get("platform"))
	if platform != "" && !platform.Valid() {
		jsonError(w, http.StatusBadRequest, "invalid platform")
		return
	}

	from, to, ok := dateRange(w, r)
	if !ok {
		return
	}

	claims := GetClaims(r.Context())
	list, err := store.ListSales(r.Context(), h.DB, store.SaleFilter{
		UserID:   claims.UserID,
		ItemID:   itemID,
		Platform: platform,
		From:     from,
		To:       to,
	})
	if err != nil {
		slog.Error("failed to list sales", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to list sales")
		return
	}
	if list == nil {
		list = []model.Sale{}
	}
	jsonResponse(w, http.StatusOK, list)
}

// Get handles GET /api/sales/{id}.
func (h *SalesHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid sale id")
		return
	}

	claims := GetClaims(r.Context())
	sale, err := store.GetSale(r.Context(), h.DB, id, claims.UserID)
	if err != nil {
		slog.Error("failed to get sale", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to get sale")
		return
	}
	if sale == nil {
		jsonError(w, http.StatusNotFound, "sale not found")
		return
	}
	jsonResponse(w, http.StatusOK, sale)
}

// Summary handles GET /api/sales/summary.
func (h *SalesHandler) Summary(w http.ResponseWriter, r *http.Request) {
	from, to, ok := dateRange(w, r)
	if !ok {
		return
	}

	claims := GetClaims(r.Context())
	sum, err := h.Engine.Summary(r.Context(), claims.UserID, from, to)
	if err != nil {
		engineError(w, err, "summarize sales")
		return
	}
	jsonResponse(w, http.StatusOK, sum)
}

// dateRange reads the optional from/to query parameters. On a malformed date
// it writes a 400 and returns ok=false.
func dateRange(w http.ResponseWriter, r *http.Request) (from, to string, ok bool) {
	q := r.URL.Query()
	from, to = q.Get("from"), q.Get("to")
	for _, d := range []string{from, to} {
		if d == "" {
			continue
		}
		if _, err := time.Parse(model.DateLayout, d); err != nil {
			jsonError(w, http.StatusBadRequest, "dates must be formatted as "+model.DateLayout)
			return "", "", false
		}
	}
	return from, to, true
}
