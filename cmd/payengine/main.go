package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/jessevdk/go-flags"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/ledgerworks/payengine-backend/internal/audit"
	"github.com/ledgerworks/payengine-backend/internal/engine"
	"github.com/ledgerworks/payengine-backend/internal/metrics"
	"github.com/ledgerworks/payengine-backend/internal/report"
	"github.com/ledgerworks/payengine-backend/internal/source"
)

type config struct {
	Strict                bool   `long:"strict" env:"PAYENGINE_STRICT" description:"abort the run on the first malformed row instead of skipping it"`
	DisputableWithdrawals bool   `long:"disputable-withdrawals" env:"PAYENGINE_DISPUTABLE_WITHDRAWALS" description:"allow disputes against withdrawal transactions"`
	Workers               int    `long:"workers" env:"PAYENGINE_WORKERS" description:"number of client-sharded processing lanes" default:"1"`
	Precision             int    `long:"precision" env:"PAYENGINE_PRECISION" description:"fractional digits accepted on input and rendered on output" default:"4"`
	ReadBuffer            int    `long:"read-buffer" env:"PAYENGINE_READ_BUFFER" description:"input read buffer size in bytes" default:"1048576"`
	AuditFile             string `long:"audit-file" env:"PAYENGINE_AUDIT_FILE" description:"JSONL journal of rejected transactions"`
	MetricsAddr           string `long:"metrics-addr" env:"PAYENGINE_METRICS_ADDR" description:"address for metrics server, disabled when empty"`

	Args struct {
		Input string `positional-arg-name:"input" description:"transaction CSV file"`
	} `positional-args:"true" required:"true"`
}

func main() {
	cfg := config{}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	_ = godotenv.Load()

	logger, err := zap.NewDevelopment()
	if err != nil {
		panic("can't initialize zap logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync()
	}()

	if _, err := flags.ParseArgs(&cfg, os.Args[1:]); err != nil {
		var ferr *flags.Error
		if errors.As(err, &ferr) && ferr.Type == flags.ErrHelp {
			return
		}
		logger.Fatal("failed to parse flags", zap.Error(err))
	}

	runID := uuid.NewString()
	logger = logger.With(zap.String("run_id", runID))

	if err := run(ctx, cfg, runID, logger); err != nil {
		logger.Fatal("payengine failed", zap.Error(err))
	}
}

func run(ctx context.Context, cfg config, runID string, logger *zap.Logger) error {
	if cfg.MetricsAddr != "" {
		startMetricsServer(ctx, cfg.MetricsAddr, logger)
	}

	input, err := os.Open(cfg.Args.Input)
	if err != nil {
		return fmt.Errorf("open input: %w", err)
	}
	defer func() {
		_ = input.Close()
	}()

	var auditor engine.Auditor
	if cfg.AuditFile != "" {
		sink, err := os.Create(cfg.AuditFile)
		if err != nil {
			return fmt.Errorf("open audit file: %w", err)
		}
		defer func() {
			_ = sink.Close()
		}()

		journal := audit.NewJournal(sink, runID, logger)
		journal.Start(ctx)
		defer journal.Stop()
		auditor = journal
	}

	src := source.NewCSVSource(
		bufio.NewReaderSize(input, cfg.ReadBuffer),
		cfg.Strict,
		cfg.Precision,
		metrics.NewSource(),
		logger.Named("source"),
	)
	runner := engine.NewRunner(
		metrics.NewEngine(),
		auditor,
		cfg.Workers,
		cfg.DisputableWithdrawals,
		logger,
	)

	accounts, err := runner.Run(ctx, src)
	if err != nil {
		return err
	}

	if err := report.NewWriter(os.Stdout, cfg.Precision).Write(accounts); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	return nil
}

func startMetricsServer(ctx context.Context, addr string, logger *zap.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.Info("starting metrics server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server failed", zap.Error(err))
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("failed to shutdown metrics server", zap.Error(err))
		}
	}()
}
