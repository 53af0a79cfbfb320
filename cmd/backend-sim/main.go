// Command backend-sim runs the in-memory store backend simulator used for
// local development and end-to-end testing of the kiosk agent.
package main

import (
	"context"
	"net/http"
	"time"

	"github.com/cristalhq/aconfig"
	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/app"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/andeanlabs/farmakiosk/internal/sim"
	"github.com/andeanlabs/farmakiosk/pkg/httpmiddleware"
)

type config struct {
	Addr        string `default:"0.0.0.0:8080" usage:"simulator listen address"`
	SettleAfter int    `default:"2" usage:"status polls before a paid order settles" flag:"settle-after"`
}

func main() {
	app.Run(func(ctx context.Context, lg *zap.Logger, _ *app.Telemetry) error {
		var cfg config
		loader := aconfig.LoaderFor(&cfg, aconfig.Config{EnvPrefix: "SIM"})
		if err := loader.Load(); err != nil {
			return errors.Wrap(err, "load config")
		}

		srv := sim.NewServer(sim.Config{SettleAfter: cfg.SettleAfter}, lg.Named("sim"))
		server := &http.Server{
			ReadHeaderTimeout: time.Second,
			ReadTimeout:       5 * time.Second,
			WriteTimeout:      10 * time.Second,
			Addr:              cfg.Addr,
			Handler: httpmiddleware.Wrap(srv.Routes(),
				httpmiddleware.Recovery(),
				httpmiddleware.RequestID(),
				httpmiddleware.InjectLogger(zctx.From(ctx)),
				httpmiddleware.LogRequests(),
			),
		}

		go func() {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = server.Shutdown(shutdownCtx)
		}()

		lg.Info("Simulator listening", zap.String("addr", cfg.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return errors.Wrap(err, "server")
		}
		return nil
	})
}
