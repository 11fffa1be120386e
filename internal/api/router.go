package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/isdelr/ledger-be/internal/api/handlers"
	"github.com/isdelr/ledger-be/internal/auth"
	"github.com/isdelr/ledger-be/internal/services"
	"github.com/isdelr/ledger-be/internal/websocket"
)

// Services bundles everything the router dispatches to.
type Services struct {
	Users       services.UserServiceProvider
	Accounts    services.AccountServiceProvider
	Entries     services.EntryServiceProvider
	Reports     services.ReportServiceProvider
	Events      services.EventServiceProvider
	Maintenance services.MaintenanceServiceProvider
}

// NewRouter creates and configures a new Chi router.
func NewRouter(svc Services, tokens *auth.Manager, hub *websocket.Hub, allowedOrigins []string) *chi.Mux {
	r := chi.NewRouter()

	// Basic middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"},
		ExposedHeaders: []string{"Link"},
		MaxAge:         300,
	}))

	// Initialize handlers
	userHandler := handlers.NewUserHandler(svc.Users, tokens)
	accountHandler := handlers.NewAccountHandler(svc.Accounts, hub)
	entryHandler := handlers.NewEntryHandler(svc.Entries, hub)
	reportHandler := handlers.NewReportHandler(svc.Reports)
	eventHandler := handlers.NewEventHandler(svc.Events)
	adminHandler := handlers.NewAdminHandler(svc.Maintenance, hub)
	wsHandler := handlers.NewWebSocketHandler(hub, allowedOrigins)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	// Public routes
	r.Post("/register", userHandler.Register)
	r.Post("/login", userHandler.Login)
	r.Post("/admin/backfill-codes", adminHandler.BackfillCodes)

	// Protected routes
	r.Group(func(r chi.Router) {
		r.Use(tokens.Middleware())

		r.Get("/me", userHandler.GetMe)
		r.Get("/data", reportHandler.GetData)
		r.Get("/reports", reportHandler.GetReports)
		r.Get("/events", eventHandler.GetRecent)
		r.Get("/ws", wsHandler.Serve)

		r.Post("/accounts", accountHandler.Create)
		r.Delete("/accounts/{id}", accountHandler.Delete)

		r.Post("/entries", entryHandler.Save)
		r.Delete("/entries/{id}", entryHandler.Delete)
	})

	return r
}
