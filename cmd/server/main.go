package main

import (
	"database/sql"
	"net/http"
	"time"

	"p24-gateway/internal/checkout"
	"p24-gateway/internal/config"
	"p24-gateway/internal/db"
	"p24-gateway/internal/logger"
	"p24-gateway/internal/metrics"
	"p24-gateway/internal/middleware"
	"p24-gateway/internal/p24"
	"p24-gateway/internal/payment"
	"p24-gateway/internal/payment/webhook"
	"p24-gateway/internal/utils"

	"github.com/julienschmidt/httprouter"
	"go.uber.org/zap"
)

var (
	initDBFunc      = db.NewDatabase
	startServerFunc = func(addr string, handler http.Handler) error {
		srv := &http.Server{
			Addr:              addr,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		}
		return srv.ListenAndServe()
	}
)

func main() {
	if err := run(); err != nil {
		logger.L().Fatal("Server stopped", zap.Error(err))
	}
}

func run() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}

	logger.Init(cfg.AppEnv)
	defer logger.Sync()

	database, err := initDBFunc(cfg)
	if err != nil {
		return err
	}
	defer database.Close()

	logger.L().Info("P24 gateway running",
		zap.String("port", cfg.AppPort),
		zap.String("p24_mode", cfg.P24.Mode),
	)
	return startServerFunc(":"+cfg.AppPort, newServer(cfg, database))
}

func newServer(cfg *config.Config, database *sql.DB) http.Handler {
	stats := &metrics.PaymentStats{}
	repo := payment.NewRepository(database)

	acknowledger := p24.NewAcknowledger(cfg.Endpoints(), cfg.P24.CRCKey)

	checkoutHandler := checkout.NewHandler(repo, cfg, stats)
	webhookHandler := webhook.NewWebhookHandler(repo, acknowledger, stats, cfg.P24.AckTimeout)

	// Only backends holding a service token may open checkouts; P24 itself
	// is authenticated on /p24/notify through the verification round trip.
	requireToken := middleware.RequireServiceToken([]byte(cfg.ServiceTokenSecret))
	protectedCheckout := requireToken(http.HandlerFunc(checkoutHandler.CreateHandler))

	return setupRouter(protectedCheckout.ServeHTTP, webhookHandler.NotifyHandler, stats)
}

func setupRouter(checkoutHandler, notifyHandler http.HandlerFunc, stats *metrics.PaymentStats) http.Handler {
	router := httprouter.New()

	router.HandlerFunc(http.MethodGet, "/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
	router.HandlerFunc(http.MethodGet, "/metrics", func(w http.ResponseWriter, r *http.Request) {
		utils.WriteJSON(w, http.StatusOK, stats.Snapshot())
	})

	router.HandlerFunc(http.MethodPost, "/p24/checkout", checkoutHandler)
	router.HandlerFunc(http.MethodPost, "/p24/notify", notifyHandler)

	return logger.RequestIDMiddleware(
		middleware.LoggingMiddleware(
			middleware.RateLimitMiddleware(router),
		),
	)
}
