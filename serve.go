package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"loan-calculator/config"
	httpLayer "loan-calculator/http"
	"loan-calculator/metrics"
	"loan-calculator/repository"
	"loan-calculator/service"
)

func newServeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, a.cfg, a.logger)
		},
	}
}

// server bundles everything serve has to tear down.
type server struct {
	http     *http.Server
	registry *repository.CalculatorRegistry
	limiter  *httpLayer.RateLimiter
	redis    *repository.RedisCache
	memory   *repository.MemoryCache
}

func newServer(ctx context.Context, cfg config.Config, logger *zap.Logger) (*server, error) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(reg)

	s := &server{}

	var cache repository.CacheRepository
	var health httpLayer.HealthChecker
	if cfg.Redis.URL != "" {
		dialCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		rc, err := repository.NewRedisCache(dialCtx, cfg.Redis.URL, cfg.Redis.KeyPrefix)
		cancel()
		if err != nil {
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		s.redis = rc
		cache = rc
		health = rc
		logger.Info("using redis result cache", zap.String("prefix", cfg.Redis.KeyPrefix))
	} else {
		s.memory = repository.NewMemoryCache(cfg.Redis.MemorySize)
		cache = s.memory
		logger.Info("using in-memory result cache", zap.Int("size", cfg.Redis.MemorySize))
	}

	defaults := cfg.Calculator.Defaults
	loans := service.NewLoanService(
		repository.NewLoanRepositoryMemory(cfg.Calculator.HistorySize),
		cache,
		cfg.Redis.TTL,
		defaults.Locale,
		m,
		logger,
	)

	s.registry = repository.NewCalculatorRegistry(cfg.Calculator.MaxSessions, cfg.Calculator.IdleTTL, m)
	s.limiter = httpLayer.NewRateLimiter(cfg.RateLimit.Capacity, cfg.RateLimit.Window, m)

	router := httpLayer.NewRouter(httpLayer.RouterDependencies{
		Loans:       httpLayer.NewLoanHandler(loans, logger),
		Terms:       httpLayer.NewTermHandler(service.NewTermService(loans, logger), logger),
		Calculators: httpLayer.NewCalculatorHandler(s.registry, loans, defaults, m, logger),
		Limiter:     s.limiter,
		Gatherer:    reg,
		Health:      health,
		Logger:      logger,
	})

	s.http = &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      router,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}
	return s, nil
}

// close releases background resources. The HTTP server must already be
// shut down.
func (s *server) close(logger *zap.Logger) {
	s.registry.Close()
	s.limiter.Stop()
	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			logger.Warn("closing redis failed", zap.Error(err))
		}
	}
}

// sweepInterval is how often idle sessions and expired cache entries are
// dropped.
func sweepInterval(cfg config.Config) time.Duration {
	every := cfg.Calculator.IdleTTL / 2
	if every <= 0 || (cfg.Redis.TTL > 0 && cfg.Redis.TTL < every) {
		every = cfg.Redis.TTL
	}
	return every
}

// sweep closes idle calculator sessions and drops expired in-process cache
// entries until ctx is done.
func (s *server) sweep(ctx context.Context, every time.Duration, logger *zap.Logger) {
	if every <= 0 {
		return
	}
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.sweepOnce(logger)
		case <-ctx.Done():
			return
		}
	}
}

func (s *server) sweepOnce(logger *zap.Logger) {
	if n := s.registry.Sweep(); n > 0 {
		logger.Info("closed idle calculators", zap.Int("count", n))
	}
	if s.memory != nil {
		if n := s.memory.Sweep(); n > 0 {
			logger.Debug("dropped expired cache entries", zap.Int("count", n))
		}
	}
}

func serve(ctx context.Context, cfg config.Config, logger *zap.Logger) error {
	s, err := newServer(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer s.close(logger)

	sweepCtx, stopSweep := context.WithCancel(ctx)
	defer stopSweep()
	go s.sweep(sweepCtx, sweepInterval(cfg), logger)

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("api listening", zap.String("addr", cfg.HTTP.Addr))
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case err := <-serverErr:
		return fmt.Errorf("start server: %w", err)
	case <-ctx.Done():
		logger.Info("shutting down server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := s.http.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown server: %w", err)
	}

	logger.Info("server exited")
	return nil
}
