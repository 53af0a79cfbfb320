package app

import (
	"context"
	"net/http"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/app"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/andeanlabs/farmakiosk/internal/domain/cart"
	"github.com/andeanlabs/farmakiosk/internal/domain/checkout"
	"github.com/andeanlabs/farmakiosk/internal/domain/payment"
	"github.com/andeanlabs/farmakiosk/internal/domain/session"
	"github.com/andeanlabs/farmakiosk/internal/gateway"
	"github.com/andeanlabs/farmakiosk/internal/handler"
	"github.com/andeanlabs/farmakiosk/internal/journal"
	"github.com/andeanlabs/farmakiosk/pkg/health"
	"github.com/andeanlabs/farmakiosk/pkg/httpmiddleware"
)

// Run creates all dependencies, starts the local bridge server, and
// handles graceful shutdown. It is the single wiring point for the agent.
func Run(ctx context.Context, lg *zap.Logger, m *app.Telemetry, cfg *Config) error {
	lg.Info("Initializing",
		zap.String("addr", cfg.Addr),
		zap.String("backend", cfg.BackendURL),
		zap.String("store_id", cfg.StoreID),
	)

	// Backend client.
	client := gateway.NewClient(cfg.BackendURL,
		gateway.WithLogger(lg.Named("gateway")),
		gateway.WithTracerProvider(m.TracerProvider()),
	)

	// Session collaborators.
	store := cart.New()
	planner := checkout.NewWindowPlanner(client)
	poller := payment.NewPoller(client,
		payment.WithInterval(cfg.Session.PollInterval),
		payment.WithLogger(lg.Named("payment")),
	)

	ctrlOpts := []session.ControllerOption{
		session.WithControllerLogger(lg.Named("session")),
	}

	// Optional order journal.
	if cfg.JournalDatabaseURL != "" {
		j, err := journal.Open(ctx, cfg.JournalDatabaseURL, lg.Named("journal"))
		if err != nil {
			return errors.Wrap(err, "open journal")
		}
		defer j.Close()
		ctrlOpts = append(ctrlOpts, session.WithReceiptHook(j.ReceiptHook(cfg.StoreID)))
	}

	ctrl := session.NewController(
		session.Config{
			IdleTimeout:   cfg.Session.IdleTimeout,
			ReceiptReturn: cfg.Session.ReceiptReturn,
		},
		store, checkout.NewValidator(), planner, client, poller, ctrlOpts...,
	)
	ctrl.Start(ctx)
	defer ctrl.Stop()

	// Health check service. Readiness means the backend answers.
	healthSvc := health.New()
	healthSvc.AddReadinessCheck("backend", 5*time.Second, func(ctx context.Context) error {
		_, err := client.ListCategories(ctx)
		return err
	})
	healthSvc.SetReady(true)

	// Bridge routes + probe endpoints on one server.
	bridge := handler.NewBridge(
		handler.Config{StoreID: cfg.StoreID},
		ctrl, store, planner, client, lg.Named("bridge"),
	)
	mux := bridge.Routes()
	mux.Get("/livez", healthSvc.LiveEndpoint)
	mux.Get("/readyz", healthSvc.ReadyEndpoint)

	server := &http.Server{
		ReadHeaderTimeout: time.Second,
		ReadTimeout:       5 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20,
		Addr:              cfg.Addr,
		Handler: httpmiddleware.Wrap(mux,
			httpmiddleware.Recovery(),
			httpmiddleware.RequestID(),
			httpmiddleware.InjectLogger(zctx.From(ctx)),
			httpmiddleware.LogRequests(),
		),
	}

	// Graceful shutdown: wait for context cancellation, drain, then stop.
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		lg.Info("Bridge listening", zap.String("addr", cfg.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return errors.Wrap(err, "server")
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		healthSvc.SetReady(false)
		lg.Info("Readiness set to false, draining", zap.Duration("delay", cfg.Graceful.ReadinessDelay))
		time.Sleep(cfg.Graceful.ReadinessDelay)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Graceful.ShutdownTimeout)
		defer cancel()

		lg.Info("Shutting down server", zap.Duration("timeout", cfg.Graceful.ShutdownTimeout))
		return server.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
