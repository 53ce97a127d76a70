package api

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/go-chi/httprate"

	"github.com/erazemk/resell/internal/model"
	"github.com/erazemk/resell/internal/sales"
)

// Options tunes the router. Zero values select the defaults.
type Options struct {
	// RateLimit is the number of /api requests allowed per client IP per minute.
	RateLimit int
	// LowStockThreshold is the on-hand quantity at or below which an item
	// shows up as a restock alert.
	LowStockThreshold int
}

const (
	defaultRateLimit         = 120
	defaultLowStockThreshold = 1
)

// NewRouter creates the API router with all endpoints registered.
func NewRouter(db *sql.DB, jwtSecret string, opts Options) http.Handler {
	if opts.RateLimit <= 0 {
		opts.RateLimit = defaultRateLimit
	}
	if opts.LowStockThreshold <= 0 {
		opts.LowStockThreshold = defaultLowStockThreshold
	}

	engine := sales.NewEngine(db)

	authHandler := &AuthHandler{DB: db, JWTSecret: jwtSecret}
	usersHandler := &UsersHandler{DB: db}
	itemsHandler := &ItemsHandler{DB: db}
	salesHandler := &SalesHandler{Engine: engine, DB: db}
	shoppingHandler := &ShoppingHandler{Engine: engine, DB: db}
	dashboardHandler := &DashboardHandler{Engine: engine, DB: db, LowStockThreshold: opts.LowStockThreshold}

	authMW := AuthMiddleware(jwtSecret, db)
	requireAdmin := RequireRole(model.RoleAdmin)
	requireSeller := RequireRole(model.RoleSeller)

	// seller wraps handlers every signed-in account may use.
	seller := func(h http.HandlerFunc) http.Handler {
		return authMW(requireSeller(h))
	}
	admin := func(h http.HandlerFunc) http.Handler {
		return authMW(requireAdmin(h))
	}

	api := http.NewServeMux()

	// Public: login.
	api.HandleFunc("POST /api/auth/login", authHandler.Login)

	// Authenticated routes.
	api.Handle("PUT /api/auth/password", authMW(http.HandlerFunc(authHandler.ChangePassword)))
	api.Handle("POST /api/auth/logout", authMW(http.HandlerFunc(authHandler.Logout)))

	// Users (admin only).
	api.Handle("GET /api/users", admin(usersHandler.List))
	api.Handle("POST /api/users", admin(usersHandler.Create))
	api.Handle("GET /api/users/{id}", admin(usersHandler.Get))
	api.Handle("PUT /api/users/{id}", admin(usersHandler.Update))
	api.Handle("PUT /api/users/{id}/password", admin(usersHandler.ResetPassword))
	api.Handle("DELETE /api/users/{id}", admin(usersHandler.Delete))

	// Items.
	api.Handle("GET /api/items", seller(itemsHandler.List))
	api.Handle("POST /api/items", seller(itemsHandler.Create))
	api.Handle("GET /api/items/{id}", seller(itemsHandler.Get))
	api.Handle("PUT /api/items/{id}", seller(itemsHandler.Update))
	api.Handle("GET /api/items/{id}/sales", seller(itemsHandler.Sales))

	// Sales.
	api.Handle("POST /api/sales", seller(salesHandler.Create))
	api.Handle("PATCH /api/sales", seller(salesHandler.Update))
	api.Handle("DELETE /api/sales", seller(salesHandler.Delete))
	api.Handle("GET /api/sales", seller(salesHandler.List))
	api.Handle("GET /api/sales/summary", seller(salesHandler.Summary))
	api.Handle("GET /api/sales/{id}", seller(salesHandler.Get))

	// Shopping list.
	api.Handle("GET /api/shopping-list", seller(shoppingHandler.List))
	api.Handle("POST /api/shopping-list", seller(shoppingHandler.Create))
	api.Handle("DELETE /api/shopping-list/{id}", seller(shoppingHandler.Delete))
	api.Handle("POST /api/shopping-list/purchase", seller(shoppingHandler.Purchase))

	api.Handle("GET /api/dashboard", seller(dashboardHandler.Get))

	mux := http.NewServeMux()
	mux.Handle("/api/", httprate.LimitByIP(opts.RateLimit, time.Minute)(api))
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		if err := db.PingContext(r.Context()); err != nil {
			jsonError(w, http.StatusServiceUnavailable, "database unavailable")
			return
		}
		jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	return mux
}
