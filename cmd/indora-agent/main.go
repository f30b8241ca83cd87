package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/vishalsinha2004/Indora-Customer/internal/backend"
	"github.com/vishalsinha2004/Indora-Customer/internal/booking"
	"github.com/vishalsinha2004/Indora-Customer/internal/config"
	"github.com/vishalsinha2004/Indora-Customer/internal/gateway"
	"github.com/vishalsinha2004/Indora-Customer/internal/geocode"
	"github.com/vishalsinha2004/Indora-Customer/internal/logging"
	"github.com/vishalsinha2004/Indora-Customer/internal/mapview"
	"github.com/vishalsinha2004/Indora-Customer/internal/payment"
	"github.com/vishalsinha2004/Indora-Customer/internal/routing"
	"github.com/vishalsinha2004/Indora-Customer/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		os.Stderr.WriteString("config: " + err.Error() + "\n")
		os.Exit(1)
	}
	logger := logging.NewLogger(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var st store.Store
	switch {
	case cfg.RedisAddr != "":
		st = store.NewRedisStore(cfg.RedisAddr, cfg.RedisPassword)
		logger.Info("session persistence on redis", "addr", cfg.RedisAddr)
	case cfg.StatePath != "":
		st = store.NewFileStore(cfg.StatePath)
		logger.Info("session persistence on file", "path", cfg.StatePath)
	default:
		st = store.NewMemoryStore()
		logger.Warn("session persistence disabled, state dies with the process")
	}

	api := backend.NewClient(cfg.BackendBaseURL, backend.StoreTokens{Store: st})

	wsreg := mapview.NewWSRegistry(logging.Component(logger, "mapview"))
	routes := routing.NewCachedClient(routing.NewOSRMClient(cfg.OSRMURL), cfg.RouteCacheTTL)
	view := mapview.NewRenderer(routes, wsreg, logging.Component(logger, "mapview"))

	handoff := payment.NewRazorpayCheckout(
		cfg.RazorpayKeyID, cfg.RazorpayKeySecret, cfg.Currency,
		cfg.PaymentTimeout, wsreg, logging.Component(logger, "payment"),
	)

	machine := booking.NewMachine(booking.Deps{
		Backend:      api,
		Geocoder:     geocode.NewClient(cfg.NominatimURL),
		Locator:      geocode.NewDeviceLocator(cfg.DeviceLocationURL, cfg.DeviceLocationTimeout),
		Handoff:      handoff,
		View:         view,
		Store:        st,
		Logger:       logging.Component(logger, "booking"),
		Catalog:      cfg.Catalog,
		Capabilities: cfg.Capabilities,
		PollInterval: cfg.PollInterval,
	})
	if err := machine.Restore(ctx); err != nil {
		logger.Warn("session restore failed, starting fresh", "error", err)
	}
	view.Recenter(cfg.MapCenter)

	srv := &http.Server{
		Addr: cfg.HTTPAddr,
		Handler: gateway.NewServer(gateway.Deps{
			Machine: machine,
			Auth:    api,
			Handoff: handoff,
			Store:   st,
			WSReg:   wsreg,
			Logger:  logging.Component(logger, "gateway"),
		}),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	go func() {
		logger.Info("indora agent listening", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown incomplete", "error", err)
	}
}
