package main

import (
	"context"
	stdhttp "net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/openimis/openimis-be-dhis2-py/internal/core/version"
	"github.com/openimis/openimis-be-dhis2-py/internal/platform/logger"
	"github.com/openimis/openimis-be-dhis2-py/internal/platform/net/middleware"
	phttp "github.com/openimis/openimis-be-dhis2-py/internal/platform/net/http"
)

// ServeCmd runs the export API until interrupted
type ServeCmd struct {
	app     *app
	grace   time.Duration
	timeout time.Duration
}

func newServeCmd(a *app) *cobra.Command {
	sc := &ServeCmd{app: a}
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the export API on API_PORT",
		RunE:  sc.run,
	}
	cmd.Flags().DurationVar(&sc.grace, "grace", 10*time.Second, "Shutdown grace period")
	cmd.Flags().DurationVar(&sc.timeout, "request-timeout", 5*time.Minute, "Per request deadline")
	return cmd
}

func (sc *ServeCmd) run(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m, closeFn, err := sc.app.open(ctx, nil)
	if err != nil {
		return err
	}
	defer closeFn()

	srv := sc.server()
	m.MountRoutes(srv.Router())

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return srv.Run(gctx) })
	g.Go(func() error {
		<-gctx.Done()
		logger.Named("http").Info().Msg("shutting down")
		sctx, cancel := context.WithTimeout(context.Background(), sc.grace)
		defer cancel()
		return srv.Shutdown(sctx)
	})
	return g.Wait()
}

func (sc *ServeCmd) server() *phttp.Server {
	root := sc.app.root
	origins := root.MayCSV("API_CORS_ORIGINS", nil)
	slow := root.MayDuration("API_SLOW_REQUEST", 10*time.Second)

	return phttp.NewServer(root, func(mux *chi.Mux) {
		mux.Use(middleware.Heartbeat("/healthz"))
		for _, mw := range middleware.Defaults(middleware.AccessLogOptions{Slow: slow}, sc.timeout) {
			mux.Use(mw)
		}
		if len(origins) > 0 {
			mux.Use(middleware.CORS(middleware.CORSOptions{AllowedOrigins: origins}))
		}
		mux.Get("/version", func(w stdhttp.ResponseWriter, r *stdhttp.Request) {
			phttp.RespondOK(w, r, version.Info())
		})
	})
}
