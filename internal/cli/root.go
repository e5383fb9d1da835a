package cli

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/rovshanmuradov/solana-price-report/internal/app"
	"github.com/rovshanmuradov/solana-price-report/internal/config"
	"github.com/rovshanmuradov/solana-price-report/internal/utils/logger"
)

// flagKeys maps command line flags to configuration keys
var flagKeys = map[string]string{
	"url":              "rpc_list",
	"info":             "swap_info",
	"precision":        "precision",
	"format":           "output_format",
	"output":           "output_file",
	"metrics-textfile": "metrics_textfile",
	"debug":            "debug_logging",
	"log-file":         "log_file",
}

// NewRootCommand builds the price-report command. Reports are written to out.
func NewRootCommand(out io.Writer) *cobra.Command {
	v := config.New()
	var configFile string

	cmd := &cobra.Command{
		Use:   "price-report",
		Short: "Report a custom AMM token price using Pyth oracle data",
		Long: `price-report resolves USD prices from the Pyth mapping chain, reads the
balances of the token and quote vaults of an AMM pool, and derives the token
price in the quote asset, in USD and in every configured cross asset.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.LoadConfig(v, configFile)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			return run(cmd, cfg, out)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&configFile, "config", "", "configuration file path (optional)")
	flags.StringSlice("url", []string{config.DefaultRPC}, "Solana RPC endpoint (repeatable)")
	flags.String("info", config.DefaultSwapInfo, "path to swap-info.json")
	flags.Int("precision", config.DefaultPrecision, "decimal places to display in reports")
	flags.String("format", config.DefaultOutputFormat, "output format: text, json or csv")
	flags.String("output", "", "write the report to this file instead of stdout")
	flags.String("metrics-textfile", "", "write Prometheus metrics to this file on exit")
	flags.Bool("debug", false, "enable debug logging")
	flags.String("log-file", config.DefaultLogFile, "JSON log file (empty disables)")

	for name, key := range flagKeys {
		if err := v.BindPFlag(key, flags.Lookup(name)); err != nil {
			panic(fmt.Sprintf("bind flag %s: %v", name, err))
		}
	}

	return cmd
}

func run(cmd *cobra.Command, cfg *config.Config, out io.Writer) error {
	logCfg := logger.DefaultConfig()
	logCfg.LogFile = cfg.LogFile
	logCfg.Development = cfg.DebugLogging
	log, err := logger.New(logCfg)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	runner, err := app.NewRunner(cfg, log)
	if err != nil {
		log.LogError("Failed to initialize price report", err)
		return err
	}
	defer runner.Close()

	if err := runner.Run(ctx, out); err != nil {
		log.LogError("Price report failed", err)
		return err
	}
	return nil
}

// Execute runs the root command and exits with status 1 on failure.
func Execute() {
	if err := NewRootCommand(os.Stdout).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
