package api

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/erazemk/resell/internal/model"
	"github.com/erazemk/resell/internal/sales"
	"github.com/erazemk/resell/internal/store"
	"github.com/erazemk/resell/internal/validation"
)

// ShoppingHandler handles the restock shopping list.
type ShoppingHandler struct {
	Engine *sales.Engine
	DB     *sql.DB
}

type createShoppingEntryRequest struct {
	Name              string           `json:"name" validate:"required,max=200"`
	Category          string           `json:"category" validate:"max=100"`
	TargetPrice       *decimal.Decimal `json:"target_price" validate:"omitempty,dgte=0"`
	PreferredLocation string           `json:"preferred_location" validate:"max=200"`
	Quantity          int              `json:"quantity" validate:"gte=0"`
	Notes             string           `json:"notes" validate:"max=2000"`
}

// List handles GET /api/shopping-list.
func (h *ShoppingHandler) List(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())
	entries, err := store.ListShoppingEntries(r.Context(), h.DB, claims.UserID)
	if err != nil {
		slog.Error("failed to list shopping list", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to list shopping list")
		return
	}
	if entries == nil {
		entries = []model.ShoppingEntry{}
	}
	jsonResponse(w, http.StatusOK, entries)
}

// Create handles POST /api/shopping-list. Quantity defaults to 1.
func (h *ShoppingHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createShoppingEntryRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validation.Struct(req); err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	claims := GetClaims(r.Context())
	entry, err := store.CreateShoppingEntry(r.Context(), h.DB, &model.ShoppingEntry{
		UserID:            claims.UserID,
		Name:              req.Name,
		Category:          req.Category,
		TargetPrice:       req.TargetPrice,
		PreferredLocation: req.PreferredLocation,
		Quantity:          req.Quantity,
		Notes:             req.Notes,
	})
	if err != nil {
		slog.Error("failed to create shopping list entry", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to create shopping list entry")
		return
	}

	slog.Info("shopping list entry added", "user", claims.Username, "name", entry.Name)
	jsonResponse(w, http.StatusCreated, entry)
}

// Delete handles DELETE /api/shopping-list/{id}.
func (h *ShoppingHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid shopping list id")
		return
	}

	claims := GetClaims(r.Context())
	entry, err := store.GetShoppingEntry(r.Context(), h.DB, id, claims.UserID)
	if err != nil {
		slog.Error("failed to get shopping list entry", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to get shopping list entry")
		return
	}
	if entry == nil {
		jsonError(w, http.StatusNotFound, "shopping list entry not found")
		return
	}

	if err := store.DeleteShoppingEntry(r.Context(), h.DB, id, claims.UserID); err != nil {
		slog.Error("failed to delete shopping list entry", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to delete shopping list entry")
		return
	}

	slog.Info("shopping list entry removed", "user", claims.Username, "name", entry.Name)
	jsonResponse(w, http.StatusOK, map[string]string{"message": "entry deleted"})
}

// Purchase handles POST /api/shopping-list/purchase.
func (h *ShoppingHandler) Purchase(w http.ResponseWriter, r *http.Request) {
	var req sales.PurchaseInput
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	claims := GetClaims(r.Context())
	itemID, err := h.Engine.MarkPurchased(r.Context(), claims.UserID, req)
	if err != nil {
		engineError(w, err, "mark item purchased")
		return
	}

	slog.Info("shopping list entry purchased", "user", claims.Username,
		"entry", req.ShoppingListID, "item", itemID)
	jsonResponse(w, http.StatusOK, map[string]int64{"new_item_id": itemID})
}
