package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/reusee/dscope"
	"github.com/reusee/taibf/bfconfigs"
	"github.com/reusee/taibf/cmds"
	"github.com/reusee/taibf/daemons"
	"github.com/reusee/taibf/logs"
	"github.com/reusee/taibf/metrics"
	"github.com/reusee/taibf/modes"
	"github.com/reusee/taibf/nets"
	"github.com/reusee/taibf/schemes"
	"github.com/reusee/taibf/servers"
)

var devFlag = cmds.Switch("-dev")

func init() {
	cmds.Define("serve", cmds.Func(func() {}).Desc("start the daemon, the default"))
}

func main() {
	cmds.Execute(os.Args[1:])

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	scope := dscope.New(
		new(Module),
		modes.ForProduction(),
	)
	if *devFlag {
		scope = scope.Fork(func() modes.Mode {
			return modes.ModeDevelopment
		})
	}

	exitCode := 0
	scope.Call(func(
		logger logs.Logger,
		listen nets.Listen,
		server *servers.Server,
		registry *schemes.Registry,
		m *metrics.Metrics,
		metricsAddr bfconfigs.MetricsAddr,
		closeTimeout bfconfigs.CloseTimeout,
		mode modes.Mode,
	) {
		logger.InfoContext(ctx, "start", "mode", mode.String())

		ln, err := listen(ctx)
		if err != nil {
			logger.ErrorContext(ctx, "listen", "error", err)
			if err := daemons.Fail(1); err != nil {
				logger.ErrorContext(ctx, "notify", "error", err)
			}
			exitCode = 1
			return
		}

		var metricsServer *http.Server
		if metricsAddr != "" {
			mux := http.NewServeMux()
			mux.Handle("/metrics", m.Handler())
			metricsServer = &http.Server{
				Addr:              string(metricsAddr),
				Handler:           mux,
				ReadHeaderTimeout: time.Second * 10,
			}
			go func() {
				logger.InfoContext(ctx, "serving metrics", "addr", metricsAddr)
				if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					logger.ErrorContext(ctx, "metrics server", "error", err)
				}
			}()
		}

		served := make(chan error, 1)
		go func() {
			served <- server.Serve(ctx, ln)
		}()

		if err := daemons.Ready(); err != nil {
			logger.WarnContext(ctx, "notify readiness", "error", err)
		}

		select {
		case <-ctx.Done():
			logger.InfoContext(ctx, "shutting down")
		case err := <-served:
			logger.ErrorContext(ctx, "serve", "error", err)
			exitCode = 1
		}

		// connections first, so no handle is opened after the registry drains
		if err := server.Close(); err != nil {
			logger.WarnContext(ctx, "close server", "error", err)
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(closeTimeout)+time.Second*5)
		defer cancel()
		if err := registry.Shutdown(shutdownCtx); err != nil {
			logger.WarnContext(ctx, "shutdown registry", "error", err)
		}
		if metricsServer != nil {
			if err := metricsServer.Shutdown(shutdownCtx); err != nil {
				logger.WarnContext(ctx, "shutdown metrics server", "error", err)
			}
		}

		logger.InfoContext(ctx, "exit")
	})

	stop()
	if exitCode != 0 {
		os.Exit(exitCode)
	}
}
