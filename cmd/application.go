package main

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/skadri1601/TradeSignal-sub001/internal/infrastructure/logger"
	"github.com/skadri1601/TradeSignal-sub001/internal/infrastructure/server"
)

type Application struct {
	logger   logger.Logger
	httpSrv  server.Server
	starters []func()
	stoppers []func() error
}

func newApplication(logger logger.Logger, httpSrv server.Server) *Application {
	return &Application{
		logger:  logger,
		httpSrv: httpSrv,
	}
}

func (app *Application) onStart(fn func()) {
	app.starters = append(app.starters, fn)
}

// onStop registers a shutdown step; steps run in registration order before
// the HTTP server stops.
func (app *Application) onStop(fn func() error) {
	app.stoppers = append(app.stoppers, fn)
}

func (app *Application) Run(ctx context.Context) error {
	eg, gctx := errgroup.WithContext(ctx)

	for _, start := range app.starters {
		start()
	}

	eg.Go(func() error {
		return app.httpSrv.Start(ctx)
	})

	eg.Go(func() error {
		// Also unblocks when the HTTP server fails to start.
		<-gctx.Done()

		gracefulshutdownCtx, cancel := context.WithTimeout(
			context.Background(),
			5*time.Second,
		)
		defer cancel()

		for _, stop := range app.stoppers {
			if err := stop(); err != nil {
				app.logger.Errorf("shutdown step failed: %v", err)
			}
		}

		return app.httpSrv.Stop(gracefulshutdownCtx)
	})

	if err := eg.Wait(); err != nil {
		app.logger.Errorf("failed to run application: %v", err)
		return err
	}

	return nil
}
