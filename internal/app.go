package internal

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"drinkaware/internal/providers"
	"drinkaware/internal/structures"
	"drinkaware/internal/tracker/interfaces"
)

// App ties the HTTP server and the scheduler together and owns the
// shutdown order: stop scheduling, persist state, drain the server.
type App struct {
	conf      *structures.Config
	logger    providers.Logger
	scheduler interfaces.SchedulerInterface
	server    *http.Server
}

func NewApp(conf *structures.Config, logger providers.Logger, metrics providers.MetricsProviderInterface, scheduler interfaces.SchedulerInterface, router providers.RouterProviderInterface) *App {
	mux := http.NewServeMux()
	for _, route := range router.GetRoutes() {
		mux.Handle(route.Url, route.Handler)
	}
	if conf.Metrics.Enabled {
		mux.Handle("/metrics", promhttp.Handler())
	}

	return &App{
		conf:      conf,
		logger:    logger,
		scheduler: scheduler,
		server: &http.Server{
			Addr:              fmt.Sprintf("%s:%d", conf.WebServer.Host, conf.WebServer.Port),
			Handler:           providers.MetricsMiddleware(metrics, mux),
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
}

// Run blocks until SIGINT or SIGTERM.
func (a *App) Run() error {
	a.scheduler.Restore()
	a.scheduler.Init()

	errCh := make(chan error, 1)
	go func() {
		a.logger.Infof(providers.TypeApp, "listening on %s", a.server.Addr)
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		a.scheduler.Stop()
		return err
	case sig := <-stop:
		a.logger.Infof(providers.TypeApp, "received %s, shutting down", sig)
	}

	a.scheduler.Stop()
	a.scheduler.Persist()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := a.server.Shutdown(ctx); err != nil {
		return err
	}

	a.logger.Infof(providers.TypeApp, "shutdown complete")
	a.logger.Close()
	return nil
}
