package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/els0r/telemetry/logging"
	"github.com/spf13/cobra"
	"golang.org/x/time/rate"

	"github.com/nrescobar/sentryrules/cmd/sentryrules/config"
	asserver "github.com/nrescobar/sentryrules/pkg/api/addrsetapi/server"
)

const (
	shutdownGracePeriod        = 10 * time.Second
	defaultAPIAddr             = "localhost:8796"
	defaultCompileRPS          = 20
	defaultCompileBurst        = 40
	defaultServeResolveTimeout = 2 * time.Second
)

func newServeCmd() *cobra.Command {
	var addr string
	var metrics bool
	var compileRPS float64
	var compileBurst int

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the address-set compilation and lookup HTTP service",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.API.Addr = addr
			}
			if cfg.API.Addr == "" {
				cfg.API.Addr = defaultAPIAddr
			}
			if metrics {
				cfg.API.Metrics = true
			}
			return runServe(cmd.Context(), cfg.API.Addr, cfg.API.Metrics, compileRPS, compileBurst, cfg.Resolver)
		},
	}

	serveCmd.Flags().StringVar(&addr, "addr", "", fmt.Sprintf("listen address (default %q)", defaultAPIAddr))
	serveCmd.Flags().BoolVar(&metrics, "metrics", false, "expose pprof profiling routes, Prometheus metrics and OpenTelemetry tracing alongside the API")
	serveCmd.Flags().Float64Var(&compileRPS, "compile-rate-limit", defaultCompileRPS, "requests/sec allowed for POST /api/v1/addrsets (0 disables)")
	serveCmd.Flags().IntVar(&compileBurst, "compile-rate-burst", defaultCompileBurst, "burst size for the compile rate limit")
	return serveCmd
}

func runServe(ctx context.Context, addr string, observability bool, compileRPS float64, compileBurst int, resolverCfg config.ResolverConfig) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	defer stop()

	logger := logging.FromContext(ctx)
	var opts []asserver.Option
	if observability {
		opts = append(opts, asserver.WithProfiling(), asserver.WithMetrics(), asserver.WithTracing())
	}
	if compileRPS > 0 {
		opts = append(opts, asserver.WithCompileRateLimit(rate.Limit(compileRPS), compileBurst))
	}
	if resolverCfg.BaseURL != "" {
		timeout := defaultServeResolveTimeout
		if resolverCfg.TimeoutSeconds > 0 {
			timeout = time.Duration(resolverCfg.TimeoutSeconds) * time.Second
		}
		opts = append(opts, asserver.WithResolver(resolverCfg.BaseURL, timeout))
	}
	srv := asserver.New(addr, opts...)

	errCh := make(chan error, 1)
	go func() {
		logger.Infof("listening on %s", addr)
		if err := srv.Serve(); err != nil {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGracePeriod)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}
