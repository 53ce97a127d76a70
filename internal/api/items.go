package api

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/erazemk/resell/internal/model"
	"github.com/erazemk/resell/internal/store"
	"github.com/erazemk/resell/internal/validation"
)

// ItemsHandler handles inventory endpoints. Every query is scoped to the
// signed-in user.
type ItemsHandler struct {
	DB *sql.DB
}

type createItemRequest struct {
	Name             string           `json:"name" validate:"required,max=200"`
	Category         string           `json:"category" validate:"max=100"`
	PurchasePrice    *decimal.Decimal `json:"purchase_price" validate:"required,dgte=0"`
	Quantity         *int             `json:"quantity" validate:"required,gt=0"`
	PurchaseLocation string           `json:"purchase_location" validate:"max=200"`
	PurchaseDate     string           `json:"purchase_date" validate:"omitempty,datetime=2006-01-02"`
	Notes            string           `json:"notes" validate:"max=2000"`
}

// Quantities and cost are fixed at intake; only sales move the counters.
type updateItemRequest struct {
	Name             string `json:"name" validate:"required,max=200"`
	Category         string `json:"category" validate:"max=100"`
	PurchaseLocation string `json:"purchase_location" validate:"max=200"`
	Notes            string `json:"notes" validate:"max=2000"`
	Archived         bool   `json:"archived"`
}

// List handles GET /api/items.
func (h *ItemsHandler) List(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())
	archived := r.URL.Query().Get("archived") == "true"

	items, err := store.ListItems(r.Context(), h.DB, claims.UserID, archived)
	if err != nil {
		slog.Error("failed to list items", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to list items")
		return
	}
	if items == nil {
		items = []model.Item{}
	}
	jsonResponse(w, http.StatusOK, items)
}

// Create handles POST /api/items.
func (h *ItemsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createItemRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validation.Struct(req); err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	claims := GetClaims(r.Context())
	item, err := store.CreateItem(r.Context(), h.DB, store.ItemParams{
		UserID:           claims.UserID,
		Name:             req.Name,
		Category:         req.Category,
		PurchasePrice:    *req.PurchasePrice,
		Quantity:         *req.Quantity,
		PurchaseLocation: req.PurchaseLocation,
		PurchaseDate:     req.PurchaseDate,
		Notes:            req.Notes,
	})
	if err != nil {
		slog.Error("failed to create item", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to create item")
		return
	}

	slog.Info("item created", "user", claims.Username, "item", item.Name, "quantity", item.QuantityPurchased)
	jsonResponse(w, http.StatusCreated, item)
}

// Get handles GET /api/items/{id}.
func (h *ItemsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	claims := GetClaims(r.Context())
	item, err := store.GetItem(r.Context(), h.DB, id, claims.UserID)
	if err != nil {
		slog.Error("failed to get item", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to get item")
		return
	}
	if item == nil {
		jsonError(w, http.StatusNotFound, "item not found")
		return
	}

	history, err := store.ListSales(r.Context(), h.DB, store.SaleFilter{UserID: claims.UserID, ItemID: id})
	if err != nil {
		slog.Error("failed to list item sales", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to list item sales")
		return
	}
	if history == nil {
		history = []model.Sale{}
	}

	jsonResponse(w, http.StatusOK, map[string]any{
		"item":  item,
		"sales": history,
	})
}

// Update handles PUT /api/items/{id}.
func (h *ItemsHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	var req updateItemRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validation.Struct(req); err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	claims := GetClaims(r.Context())
	existing, err := store.GetItem(r.Context(), h.DB, id, claims.UserID)
	if err != nil {
		slog.Error("failed to get item", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to get item")
		return
	}
	if existing == nil {
		jsonError(w, http.StatusNotFound, "item not found")
		return
	}

	if err := store.UpdateItem(r.Context(), h.DB, id, claims.UserID,
		req.Name, req.Category, req.PurchaseLocation, req.Notes, req.Archived); err != nil {
		slog.Error("failed to update item", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to update item")
		return
	}

	item, err := store.GetItem(r.Context(), h.DB, id, claims.UserID)
	if err != nil || item == nil {
		slog.Error("failed to reload item", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to get item")
		return
	}

	slog.Info("item updated", "user", claims.Username, "item", item.Name, "archived", item.Archived)
	jsonResponse(w, http.StatusOK, item)
}

// Sales handles GET /api/items/{id}/sales.
func (h *ItemsHandler) Sales(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	claims := GetClaims(r.Context())
	item, err := store.GetItem(r.Context(), h.DB, id, claims.UserID)
	if err != nil {
		slog.Error("failed to get item", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to get item")
		return
	}
	if item == nil {
		jsonError(w, http.StatusNotFound, "item not found")
		return
	}

	history, err := store.ListSales(r.Context(), h.DB, store.SaleFilter{UserID: claims.UserID, ItemID: id})
	if err != nil {
		slog.Error("failed to list item sales", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to list item sales")
		return
	}
	if history == nil {
		history = []model.Sale{}
	}
	jsonResponse(w, http.StatusOK, history)
}
