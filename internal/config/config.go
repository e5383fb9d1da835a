// =================================
// File: internal/config/config.go
// =================================
package config

import (
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strings"

	"github.com/gagliardetto/solana-go"
	"github.com/spf13/viper"
)

type Config struct {
	RPCList          []string          `mapstructure:"rpc_list"`
	Commitment       string            `mapstructure:"commitment"`
	MappingAccount   string            `mapstructure:"mapping_account"`
	Symbols          map[string]string `mapstructure:"symbols"`
	QuoteSymbol      string            `mapstructure:"quote_symbol"`
	CrossAssets      []string          `mapstructure:"cross_assets"`
	SwapInfo         string            `mapstructure:"swap_info"`
	Precision        int               `mapstructure:"precision"`
	Retries          int               `mapstructure:"retries"`
	RetryDelayMs     int               `mapstructure:"retry_delay_ms"`
	RequestTimeoutMs int               `mapstructure:"request_timeout_ms"`
	OutputFormat     string            `mapstructure:"output_format"`
	OutputFile       string            `mapstructure:"output_file"`
	MetricsTextfile  string            `mapstructure:"metrics_textfile"`
	DebugLogging     bool              `mapstructure:"debug_logging"`
	LogFile          string            `mapstructure:"log_file"`
}

const (
	DefaultRPC              = "https://api.devnet.solana.com"
	DefaultMappingAccount   = "BmA9Z6FjioHJPpjT39QazZyhDRUdZy2ezwx4GiDdE2u2"
	DefaultCommitment       = "finalized"
	DefaultQuoteSymbol      = "SOL"
	DefaultSwapInfo         = "swap-info.json"
	DefaultPrecision        = 6
	DefaultRetries          = 3
	DefaultRetryDelayMs     = 200
	DefaultRequestTimeoutMs = 10000
	DefaultOutputFormat     = "text"
	DefaultLogFile          = "price-report.log"

	// MaxPrecision matches the working precision of the derivation.
	MaxPrecision = 28

	envPrefix = "PRICE_REPORT"
)

var outputFormats = map[string]struct{}{"text": {}, "json": {}, "csv": {}}

var commitments = map[string]struct{}{"processed": {}, "confirmed": {}, "finalized": {}}

// DefaultSymbols maps report aliases to Pyth product symbols.
func DefaultSymbols() map[string]string {
	return map[string]string{
		"SOL": "Crypto.SOL/USD",
		"BTC": "Crypto.BTC/USD",
		"ETH": "Crypto.ETH/USD",
	}
}

// New returns a viper instance preloaded with defaults and environment bindings.
// An optional config file is read by LoadConfig.
func New() *viper.Viper {
	v := viper.New()

	defaults := map[string]interface{}{
		"rpc_list":           []string{DefaultRPC},
		"commitment":         DefaultCommitment,
		"mapping_account":    DefaultMappingAccount,
		"quote_symbol":       DefaultQuoteSymbol,
		"cross_assets":       []string{"BTC", "ETH"},
		"swap_info":          DefaultSwapInfo,
		"precision":          DefaultPrecision,
		"retries":            DefaultRetries,
		"retry_delay_ms":     DefaultRetryDelayMs,
		"request_timeout_ms": DefaultRequestTimeoutMs,
		"output_format":      DefaultOutputFormat,
		"log_file":           DefaultLogFile,
	}
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// LoadConfig reads the optional config file into v and returns a validated Config.
func LoadConfig(v *viper.Viper, path string) (*Config, error) {
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if err := loadEnvironmentVariables(v, &cfg); err != nil {
		return nil, err
	}
	// viper сливает вложенные карты по ключам, поэтому таблица символов
	// по умолчанию подставляется только целиком
	if len(cfg.Symbols) == 0 {
		cfg.Symbols = DefaultSymbols()
	}
	normalizeAliases(&cfg)

	return &cfg, validateConfig(&cfg)
}

// normalizeAliases upper-cases report aliases; viper lower-cases map keys.
func normalizeAliases(cfg *Config) {
	symbols := make(map[string]string, len(cfg.Symbols))
	for alias, symbol := range cfg.Symbols {
		symbols[strings.ToUpper(alias)] = symbol
	}
	cfg.Symbols = symbols
	cfg.QuoteSymbol = strings.ToUpper(cfg.QuoteSymbol)
	for i, asset := range cfg.CrossAssets {
		cfg.CrossAssets[i] = strings.ToUpper(asset)
	}
}

func validateConfig(cfg *Config) error {
	if len(cfg.RPCList) == 0 {
		return errors.New("rpc_list is empty")
	}
	for _, rpcURL := range cfg.RPCList {
		if err := validateURL(rpcURL, "http"); err != nil {
			return fmt.Errorf("invalid RPC URL %q: %w", rpcURL, err)
		}
	}
	if _, ok := commitments[cfg.Commitment]; !ok {
		return fmt.Errorf("invalid commitment %q", cfg.Commitment)
	}
	if _, err := solana.PublicKeyFromBase58(cfg.MappingAccount); err != nil {
		return fmt.Errorf("invalid mapping_account: %w", err)
	}
	if err := validateSymbols(cfg); err != nil {
		return err
	}
	if err := validateNumericParams(cfg); err != nil {
		return err
	}
	if _, ok := outputFormats[cfg.OutputFormat]; !ok {
		return fmt.Errorf("unsupported output_format %q", cfg.OutputFormat)
	}
	return nil
}

func validateSymbols(cfg *Config) error {
	if len(cfg.Symbols) == 0 {
		return errors.New("symbols is empty")
	}
	if _, ok := cfg.Symbols[cfg.QuoteSymbol]; !ok {
		return fmt.Errorf("quote_symbol %q is not listed in symbols", cfg.QuoteSymbol)
	}
	for _, asset := range cfg.CrossAssets {
		if _, ok := cfg.Symbols[asset]; !ok {
			return fmt.Errorf("cross asset %q is not listed in symbols", asset)
		}
	}
	return nil
}

func validateNumericParams(cfg *Config) error {
	if cfg.Precision < 0 || cfg.Precision > MaxPrecision {
		return fmt.Errorf("invalid precision %d: must be within [0, %d]", cfg.Precision, MaxPrecision)
	}
	if cfg.Retries < 0 {
		return errors.New("invalid retries count")
	}
	if cfg.RetryDelayMs < 0 {
		return errors.New("invalid retry_delay_ms")
	}
	if cfg.RequestTimeoutMs <= 0 {
		return errors.New("invalid request_timeout_ms")
	}
	return nil
}

func validateURL(rawURL string, protocol string) error {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return errors.New("invalid URL format")
	}
	if !strings.HasPrefix(parsed.Scheme, protocol) || parsed.Host == "" {
		return errors.New("invalid URL protocol")
	}
	return nil
}

func loadEnvironmentVariables(v *viper.Viper, cfg *Config) error {
	envRPCList := v.GetString("RPC_LIST")
	if envRPCList != "" && !strings.HasPrefix(envRPCList, "[") {
		var cleanRPCs []string
		for _, rpc := range strings.Split(envRPCList, ",") {
			clean := strings.TrimSpace(rpc)
			if clean != "" {
				cleanRPCs = append(cleanRPCs, clean)
			}
		}
		if len(cleanRPCs) > 0 {
			cfg.RPCList = cleanRPCs
		}
	}

	envCross := v.GetString("CROSS_ASSETS")
	if envCross != "" && !strings.HasPrefix(envCross, "[") {
		var assets []string
		for _, asset := range strings.Split(envCross, ",") {
			if clean := strings.TrimSpace(asset); clean != "" {
				assets = append(assets, clean)
			}
		}
		cfg.CrossAssets = assets
	}
	return nil
}

// ReportAliases returns every configured alias in report order: the quote
// asset, the cross assets, then the remaining aliases sorted.
func (c *Config) ReportAliases() []string {
	seen := make(map[string]struct{}, len(c.Symbols))
	var out []string
	add := func(alias string) {
		if _, ok := seen[alias]; ok {
			return
		}
		seen[alias] = struct{}{}
		out = append(out, alias)
	}

	add(c.QuoteSymbol)
	for _, asset := range c.CrossAssets {
		add(asset)
	}
	rest := make([]string, 0, len(c.Symbols))
	for alias := range c.Symbols {
		rest = append(rest, alias)
	}
	sort.Strings(rest)
	for _, alias := range rest {
		add(alias)
	}
	return out
}
