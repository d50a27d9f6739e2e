package handlers

import (
	"log/slog"
	"net/http"

	"remit/internal/config"
	"remit/internal/db"
	"remit/internal/middleware"
	"remit/internal/websocket"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

type Handler struct {
	cfg          config.Config
	logger       *slog.Logger
	txRunner     db.TxRunner
	users        UserStore
	accounts     AccountStore
	transactions TransactionStore
	methods      PaymentMethodStore
	audit        AuditStore
	engine       TransferEngine
	hub          *websocket.Hub
	metrics      http.Handler
}

func New(cfg config.Config, logger *slog.Logger, txRunner db.TxRunner, users UserStore, accounts AccountStore, transactions TransactionStore, methods PaymentMethodStore, audit AuditStore, engine TransferEngine, hub *websocket.Hub, metrics http.Handler) *Handler {
	return &Handler{
		cfg:          cfg,
		logger:       logger,
		txRunner:     txRunner,
		users:        users,
		accounts:     accounts,
		transactions: transactions,
		methods:      methods,
		audit:        audit,
		engine:       engine,
		hub:          hub,
		metrics:      metrics,
	}
}

func (h *Handler) Routes() http.Handler {
	router := chi.NewRouter()
	router.Use(chimiddleware.Logger)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{h.cfg.AllowedOrigins},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	router.Route("/auth", func(r chi.Router) {
		r.Post("/register", h.Register)
		r.Post("/login", h.Login)
		r.With(middleware.Auth(h.cfg.JWTSecret)).Get("/me", h.Me)
		r.With(middleware.Auth(h.cfg.JWTSecret)).Put("/profile", h.UpdateProfile)
	})

	router.Route("/payments", func(r chi.Router) {
		r.Use(middleware.Auth(h.cfg.JWTSecret))
		r.Post("/deposit", h.Deposit)
		r.Post("/withdraw", h.Withdraw)
		r.Post("/send", h.Send)
		r.Get("/transactions", h.ListTransactions)
		r.Get("/transactions/{id}", h.GetTransaction)
		r.Get("/rates", h.Rates)
		r.Post("/fees", h.FeeQuote)
	})

	router.Route("/meta", func(r chi.Router) {
		r.Get("/countries", h.Countries)
		r.Get("/countries/{code}", h.CountryByCode)
		r.Get("/currencies", h.Currencies)
		r.Get("/methods/{country}", h.MethodsForCountry)
	})

	router.Route("/payment-methods", func(r chi.Router) {
		r.Use(middleware.Auth(h.cfg.JWTSecret))
		r.Get("/", h.ListPaymentMethods)
		r.Post("/", h.AddPaymentMethod)
	})

	router.Route("/accounts", func(r chi.Router) {
		r.Use(middleware.Auth(h.cfg.JWTSecret))
		r.Get("/balances", h.Balances)
		r.Get("/stats", h.Stats)
		r.Get("/self-check", h.SelfCheck)
	})
	router.Get("/ws/balances", h.WSBalances)

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	router.Method(http.MethodGet, "/metrics", h.metrics)
	return router
}
