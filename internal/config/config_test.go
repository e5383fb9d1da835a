// internal/config/config_test.go
package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// validConfigJSON содержит полный рабочий конфиг
var validConfigJSON = `{
    "rpc_list": [
        "https://api.mainnet-beta.solana.com",
        "https://solana-api.projectserum.com"
    ],
    "commitment": "confirmed",
    "mapping_account": "AHtgzX45WTKfkPG53L6WYhGEXwQkN1BVknET3sVsLL8J",
    "symbols": {
        "SOL": "Crypto.SOL/USD",
        "BTC": "Crypto.BTC/USD"
    },
    "quote_symbol": "SOL",
    "cross_assets": ["BTC"],
    "swap_info": "pool.json",
    "precision": 8,
    "retries": 5,
    "output_format": "json",
    "debug_logging": true
}`

func setupTestConfig(t *testing.T, content string) string {
	t.Helper()
	configPath := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(configPath, []byte(content), 0600))
	return configPath
}

func TestLoadConfig(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
		check   func(*testing.T, *Config)
	}{
		{
			name:    "Valid config",
			content: validConfigJSON,
			check: func(t *testing.T, cfg *Config) {
				assert.Len(t, cfg.RPCList, 2)
				assert.Equal(t, "confirmed", cfg.Commitment)
				assert.Equal(t, "AHtgzX45WTKfkPG53L6WYhGEXwQkN1BVknET3sVsLL8J", cfg.MappingAccount)
				assert.Equal(t, "Crypto.SOL/USD", cfg.Symbols["SOL"])
				assert.Equal(t, []string{"BTC"}, cfg.CrossAssets)
				assert.Equal(t, 8, cfg.Precision)
				assert.Equal(t, 5, cfg.Retries)
				assert.Equal(t, "json", cfg.OutputFormat)
				assert.True(t, cfg.DebugLogging)
				// не указанные ключи берутся из значений по умолчанию
				assert.Equal(t, DefaultRetryDelayMs, cfg.RetryDelayMs)
				assert.Equal(t, DefaultRequestTimeoutMs, cfg.RequestTimeoutMs)
			},
		},
		{
			name:    "Empty RPC list",
			content: `{"rpc_list": []}`,
			wantErr: "rpc_list",
		},
		{
			name:    "Invalid RPC URL",
			content: `{"rpc_list": ["ftp://example.com"]}`,
			wantErr: "invalid RPC URL",
		},
		{
			name:    "Invalid commitment",
			content: `{"commitment": "eventual"}`,
			wantErr: "commitment",
		},
		{
			name:    "Invalid mapping account",
			content: `{"mapping_account": "not-base58!"}`,
			wantErr: "mapping_account",
		},
		{
			name:    "Quote symbol not listed",
			content: `{"symbols": {"BTC": "Crypto.BTC/USD"}, "cross_assets": ["BTC"]}`,
			wantErr: "quote_symbol",
		},
		{
			name:    "Cross asset not listed",
			content: `{"cross_assets": ["DOGE"]}`,
			wantErr: "DOGE",
		},
		{
			name:    "Precision out of range",
			content: `{"precision": 29}`,
			wantErr: "precision",
		},
		{
			name:    "Negative retries",
			content: `{"retries": -1}`,
			wantErr: "retries",
		},
		{
			name:    "Unsupported output format",
			content: `{"output_format": "xml"}`,
			wantErr: "output_format",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := LoadConfig(New(), setupTestConfig(t, tt.content))
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			tt.check(t, cfg)
		})
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig(New(), "")
	require.NoError(t, err)

	assert.Equal(t, []string{DefaultRPC}, cfg.RPCList)
	assert.Equal(t, DefaultCommitment, cfg.Commitment)
	assert.Equal(t, DefaultMappingAccount, cfg.MappingAccount)
	assert.Equal(t, DefaultSymbols(), cfg.Symbols)
	assert.Equal(t, DefaultQuoteSymbol, cfg.QuoteSymbol)
	assert.Equal(t, []string{"BTC", "ETH"}, cfg.CrossAssets)
	assert.Equal(t, DefaultPrecision, cfg.Precision)
	assert.Equal(t, DefaultOutputFormat, cfg.OutputFormat)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(New(), filepath.Join(t.TempDir(), "absent.json"))
	assert.Error(t, err)
}

func TestEnvironmentVariables(t *testing.T) {
	t.Setenv("PRICE_REPORT_RPC_LIST", "https://rpc-1.example.com, https://rpc-2.example.com")
	t.Setenv("PRICE_REPORT_CROSS_ASSETS", "btc")
	t.Setenv("PRICE_REPORT_PRECISION", "4")

	cfg, err := LoadConfig(New(), setupTestConfig(t, validConfigJSON))
	require.NoError(t, err)

	assert.Equal(t, []string{"https://rpc-1.example.com", "https://rpc-2.example.com"}, cfg.RPCList)
	assert.Equal(t, []string{"BTC"}, cfg.CrossAssets)
	assert.Equal(t, 4, cfg.Precision)
}

func TestLowerCaseAliasesAreNormalized(t *testing.T) {
	content := `{
        "symbols": {"sol": "Crypto.SOL/USD", "eth": "Crypto.ETH/USD"},
        "quote_symbol": "sol",
        "cross_assets": ["eth"]
    }`

	cfg, err := LoadConfig(New(), setupTestConfig(t, content))
	require.NoError(t, err)

	assert.Equal(t, "SOL", cfg.QuoteSymbol)
	assert.Equal(t, []string{"ETH"}, cfg.CrossAssets)
	assert.Equal(t, "Crypto.ETH/USD", cfg.Symbols["ETH"])
}

func TestReportAliases(t *testing.T) {
	cfg := &Config{
		Symbols: map[string]string{
			"SOL":  "Crypto.SOL/USD",
			"BTC":  "Crypto.BTC/USD",
			"ETH":  "Crypto.ETH/USD",
			"USDC": "Crypto.USDC/USD",
			"BONK": "Crypto.BONK/USD",
		},
		QuoteSymbol: "SOL",
		CrossAssets: []string{"ETH", "BTC", "ETH"},
	}

	assert.Equal(t, []string{"SOL", "ETH", "BTC", "BONK", "USDC"}, cfg.ReportAliases())
}
