package api

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/erazemk/resell/internal/model"
	"github.com/erazemk/resell/internal/sales"
	"github.com/erazemk/resell/internal/store"
)

// DashboardHandler serves the seller's overview.
type DashboardHandler struct {
	Engine            *sales.Engine
	DB                *sql.DB
	LowStockThreshold int
}

type dashboardResponse struct {
	Summary        *sales.Summary  `json:"summary"`
	RestockAlerts  []model.Item    `json:"restock_alerts"`
	InventoryValue decimal.Decimal `json:"inventory_value"`
	UnitsOnHand    int             `json:"units_on_hand"`
}

// Get handles GET /api/dashboard.
func (h *DashboardHandler) Get(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())

	var (
		resp   dashboardResponse
		active []model.Item
	)

	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() error {
		var err error
		resp.Summary, err = h.Engine.Summary(ctx, claims.UserID, "", "")
		return err
	})
	g.Go(func() error {
		var err error
		resp.RestockAlerts, err = store.ListLowStockItems(ctx, h.DB, claims.UserID, h.LowStockThreshold)
		return err
	})
	g.Go(func() error {
		var err error
		active, err = store.ListItems(ctx, h.DB, claims.UserID, false)
		return err
	})
	if err := g.Wait(); err != nil {
		slog.Error("failed to load dashboard", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to load dashboard")
		return
	}

	if resp.RestockAlerts == nil {
		resp.RestockAlerts = []model.Item{}
	}
	for i := range active {
		resp.InventoryValue = resp.InventoryValue.Add(active[i].InventoryValue())
		resp.UnitsOnHand += active[i].QuantityOnHand
	}

	jsonResponse(w, http.StatusOK, resp)
}
