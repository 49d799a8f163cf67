package cli

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	httpAdapter "github.com/DanielDerefaka/tao-cli/pkg/adapters/http"
	"golang.org/x/sync/errgroup"
)

// shutdownGrace bounds how long in-flight requests may finish after ctx ends.
const shutdownGrace = 5 * time.Second

// ServeOptions contains the configuration for the serve command.
type ServeOptions struct {
	Addr    string
	Version string
	// Ready, when set, receives the bound address once the listener is open.
	Ready func(addr string)
}

// RunServe exposes the engine over HTTP until ctx is cancelled.
func RunServe(ctx context.Context, app *App, opts ServeOptions) error {
	addr := opts.Addr
	if addr == "" {
		addr = app.Config.Server.Addr
	}

	handler := httpAdapter.NewHandler(app.Engine, app.Sessions,
		httpAdapter.WithMetrics(app.Metrics.Handler()),
		httpAdapter.WithVersion(opts.Version),
		httpAdapter.WithLogger(app.Logger),
	)

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", addr, err)
	}
	srv := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		// Event streams end with ctx instead of holding shutdown open.
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		app.Logger.Info("Server Started", "addr", ln.Addr().String(), "network", app.Config.Network, "dry_run", app.Config.DryRun)
		if opts.Ready != nil {
			opts.Ready(ln.Addr().String())
		}
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		// Give outstanding requests a deadline for completion.
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownGrace)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			app.Logger.Warn("Graceful shutdown did not complete", "grace", shutdownGrace, "err", err)
			return srv.Close()
		}
		app.Logger.Info("Server Stopped")
		return nil
	})
	return g.Wait()
}
