package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"

	"tuition/internal/eligibility"
	"tuition/internal/eligibility/handler"
	eligibilitymetrics "tuition/internal/eligibility/metrics"
	"tuition/internal/eligibility/ruleset"
	httpapi "tuition/internal/http"
	"tuition/internal/platform/config"
	"tuition/internal/platform/httpserver"
	"tuition/internal/platform/logger"
	platformmetrics "tuition/internal/platform/metrics"
)

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in internal/eligibility.
func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "tuition: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.FromEnv()
	if err != nil {
		return err
	}
	log := logger.New(os.Stdout, cfg.LogFormat, cfg.LogLevel)

	rules, err := ruleset.LoadRules(cfg.RulesFile)
	if err != nil {
		return fmt.Errorf("load rules: %w", err)
	}

	reg := platformmetrics.NewRegistry()
	svc, err := newService(rules, log, reg, cfg.BatchConcurrency)
	if err != nil {
		return err
	}

	router := httpapi.NewRouter(log, platformmetrics.Handler(reg), handler.New(svc, log))
	srv := httpserver.New(cfg.Addr, router)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting tuition server",
			"addr", cfg.Addr,
			"rules", svc.RuleNames(),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down", "timeout", cfg.ShutdownTimeout)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return nil
}

func newService(rules []eligibility.Rule, log *slog.Logger, reg prometheus.Registerer, concurrency int) (*eligibility.Service, error) {
	evaluator := eligibility.NewEvaluator(rules, eligibility.WithDiagnostics(log))
	return eligibility.NewService(evaluator,
		eligibility.WithLogger(log),
		eligibility.WithMetrics(eligibilitymetrics.New(reg)),
		eligibility.WithBatchConcurrency(concurrency),
	)
}
