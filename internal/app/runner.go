// internal/app/runner.go
package app

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/gagliardetto/solana-go"
	solanarpc "github.com/gagliardetto/solana-go/rpc"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/solana-price-report/internal/blockchain/solbc"
	"github.com/rovshanmuradov/solana-price-report/internal/blockchain/solbc/rpc"
	"github.com/rovshanmuradov/solana-price-report/internal/config"
	"github.com/rovshanmuradov/solana-price-report/internal/pool"
	"github.com/rovshanmuradov/solana-price-report/internal/pyth"
	"github.com/rovshanmuradov/solana-price-report/internal/report"
	"github.com/rovshanmuradov/solana-price-report/internal/utils/logger"
	"github.com/rovshanmuradov/solana-price-report/internal/utils/metrics"
)

// Runner связывает конфиг, RPC-клиент и сервис отчёта для одного запуска.
type Runner struct {
	log       *logger.Logger
	config    *config.Config
	solClient *solbc.Client
	metrics   *metrics.Collector
	service   *report.Service
	format    report.Format
	mapping   solana.PublicKey
}

// NewRunner проверяет входные данные и собирает зависимости отчёта.
func NewRunner(cfg *config.Config, log *logger.Logger) (*Runner, error) {
	format, err := report.ParseFormat(cfg.OutputFormat)
	if err != nil {
		return nil, err
	}
	mapping, err := solana.PublicKeyFromBase58(cfg.MappingAccount)
	if err != nil {
		return nil, fmt.Errorf("invalid mapping account: %w", err)
	}
	swapInfo, err := pool.LoadSwapInfo(cfg.SwapInfo)
	if err != nil {
		return nil, err
	}

	collector := metrics.NewCollector()
	client, err := solbc.NewClient(cfg.RPCList, log.Logger, solbc.Options{
		Commitment: solanarpc.CommitmentType(cfg.Commitment),
		RPC: rpc.Options{
			MaxRetries:     cfg.Retries,
			RetryDelay:     time.Duration(cfg.RetryDelayMs) * time.Millisecond,
			RequestTimeout: time.Duration(cfg.RequestTimeoutMs) * time.Millisecond,
		},
		Metrics: collector,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create RPC client: %w", err)
	}

	service := report.NewService(
		pyth.NewResolver(client, collector, log.Logger),
		pool.NewReader(client, log.Logger),
		report.Options{
			Mapping:     mapping,
			Symbols:     cfg.Symbols,
			Aliases:     cfg.ReportAliases(),
			QuoteAlias:  cfg.QuoteSymbol,
			CrossAssets: cfg.CrossAssets,
			SwapInfo:    *swapInfo,
		},
		log.Logger,
	)

	return &Runner{
		log:       log,
		config:    cfg,
		solClient: client,
		metrics:   collector,
		service:   service,
		format:    format,
		mapping:   mapping,
	}, nil
}

// Run строит отчёт и пишет его в stdout либо в output_file.
// Файл метрик пишется и при ошибке.
func (r *Runner) Run(ctx context.Context, stdout io.Writer) error {
	defer r.writeMetrics()

	r.log.WithAccount(r.mapping).Info("Building price report",
		zap.Strings("rpc", r.config.RPCList),
		zap.Strings("aliases", r.config.ReportAliases()))

	end := r.log.TrackPerformance("build_report")
	rep, err := r.service.Build(ctx)
	end()
	if err != nil {
		return err
	}

	precision := int32(r.config.Precision)
	if r.config.OutputFile != "" {
		if err := report.WriteFile(r.config.OutputFile, rep, r.format, precision); err != nil {
			return err
		}
		r.log.Info("Report written",
			zap.String("file", r.config.OutputFile),
			zap.String("format", string(r.format)))
		return nil
	}
	return report.Render(stdout, rep, r.format, precision)
}

func (r *Runner) writeMetrics() {
	if r.config.MetricsTextfile == "" {
		return
	}
	if err := r.metrics.WriteTextfile(r.config.MetricsTextfile); err != nil {
		r.log.LogError("Failed to write metrics textfile", err,
			zap.String("file", r.config.MetricsTextfile))
	}
}

// Close освобождает RPC-клиент.
func (r *Runner) Close() {
	r.solClient.Close()
}
