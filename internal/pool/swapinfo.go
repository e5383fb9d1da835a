// internal/pool/swapinfo.go
package pool

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/spf13/viper"
)

// SwapInfo описывает пул: кастомный токен (token A) против WSOL (token B).
type SwapInfo struct {
	CustomTokenMint     solana.PublicKey
	CustomTokenDecimals uint8
	TokenVault          solana.PublicKey // token_a_vault
	QuoteVault          solana.PublicKey // token_b_vault
}

type swapInfoFile struct {
	CustomTokenMint     string `mapstructure:"custom_token_mint"`
	CustomTokenDecimals int    `mapstructure:"custom_token_decimals"`
	TokenAVault         string `mapstructure:"token_a_vault"`
	TokenBVault         string `mapstructure:"token_b_vault"`
}

var requiredSwapInfoKeys = []string{
	"custom_token_mint",
	"custom_token_decimals",
	"token_a_vault",
	"token_b_vault",
}

// LoadSwapInfo читает swap-info.json, проверяя обязательные поля и адреса.
func LoadSwapInfo(path string) (*SwapInfo, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("json")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read swap info %s: %w", path, err)
	}
	for _, key := range requiredSwapInfoKeys {
		if !v.IsSet(key) {
			return nil, fmt.Errorf("swap info %s is missing required field %q", path, key)
		}
	}

	var raw swapInfoFile
	if err := v.Unmarshal(&raw); err != nil {
		return nil, fmt.Errorf("failed to decode swap info %s: %w", path, err)
	}
	if raw.CustomTokenDecimals < 0 || raw.CustomTokenDecimals > 255 {
		return nil, fmt.Errorf("invalid custom_token_decimals: %d", raw.CustomTokenDecimals)
	}

	info := &SwapInfo{CustomTokenDecimals: uint8(raw.CustomTokenDecimals)}
	fields := []struct {
		name  string
		value string
		dst   *solana.PublicKey
	}{
		{"custom_token_mint", raw.CustomTokenMint, &info.CustomTokenMint},
		{"token_a_vault", raw.TokenAVault, &info.TokenVault},
		{"token_b_vault", raw.TokenBVault, &info.QuoteVault},
	}
	for _, f := range fields {
		key, err := solana.PublicKeyFromBase58(f.value)
		if err != nil {
			return nil, fmt.Errorf("invalid %s %q: %w", f.name, f.value, err)
		}
		*f.dst = key
	}
	return info, nil
}
