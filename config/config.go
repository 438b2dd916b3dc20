// Package config loads service configuration from the environment and an
// optional config file.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// EVMConfig configures the EVM execution path. Empty RPCUrl disables it.
type EVMConfig struct {
	RPCUrl     string
	PrivateKey string
	ChainID    int64
}

// SolanaConfig configures the Solana execution path. Empty RPCUrl disables it.
type SolanaConfig struct {
	RPCUrl     string
	PrivateKey string
}

// TONConfig configures the sweep flow. Empty Treasury disables it.
type TONConfig struct {
	ConfigURL string
	Seed      string
	Treasury  string
}

// Config holds the application configuration. It is loaded once and passed
// explicitly; there is no package-level instance.
type Config struct {
	RedisURL    string
	NetworkFee  float64
	PlatformFee float64
	LedgerPath  string
	LogLevel    string
	StonfiURL   string

	EVM    EVMConfig
	Solana SolanaConfig
	TON    TONConfig
}

// Load reads configuration from DECENT_* environment variables and an
// optional .decent-service.yaml in the home or working directory.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName(".decent-service")
	v.SetConfigType("yaml")
	v.AddConfigPath("$HOME")
	v.AddConfigPath(".")

	v.SetDefault("network_fee", 0.02)
	v.SetDefault("platform_fee", 0.2)
	v.SetDefault("log_level", "info")
	v.SetDefault("ton.config_url", "https://ton.org/global.config.json")

	v.SetEnvPrefix("DECENT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Config file is optional; environment alone is a valid setup.
	_ = v.ReadInConfig()

	cfg := &Config{
		RedisURL:    v.GetString("redis_url"),
		NetworkFee:  v.GetFloat64("network_fee"),
		PlatformFee: v.GetFloat64("platform_fee"),
		LedgerPath:  v.GetString("ledger_path"),
		LogLevel:    v.GetString("log_level"),
		StonfiURL:   v.GetString("stonfi_url"),
		EVM: EVMConfig{
			RPCUrl:     v.GetString("evm.rpc_url"),
			PrivateKey: v.GetString("evm.private_key"),
			ChainID:    v.GetInt64("evm.chain_id"),
		},
		Solana: SolanaConfig{
			RPCUrl:     v.GetString("solana.rpc_url"),
			PrivateKey: v.GetString("solana.private_key"),
		},
		TON: TONConfig{
			ConfigURL: v.GetString("ton.config_url"),
			Seed:      v.GetString("ton.seed"),
			Treasury:  v.GetString("ton.treasury"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.NetworkFee < 0 || c.PlatformFee < 0 {
		return fmt.Errorf("fees must be non-negative")
	}
	if c.EVM.RPCUrl != "" {
		if c.EVM.PrivateKey == "" {
			return fmt.Errorf("DECENT_EVM_PRIVATE_KEY is required when the EVM RPC is configured")
		}
		if c.EVM.ChainID == 0 {
			return fmt.Errorf("DECENT_EVM_CHAIN_ID is required when the EVM RPC is configured")
		}
	}
	if c.Solana.RPCUrl != "" && c.Solana.PrivateKey == "" {
		return fmt.Errorf("DECENT_SOLANA_PRIVATE_KEY is required when the Solana RPC is configured")
	}
	if c.TON.Treasury != "" && c.TON.Seed == "" {
		return fmt.Errorf("DECENT_TON_SEED is required when the TON treasury is configured")
	}
	return nil
}

// SeedWords splits the configured TON seed phrase.
func (c *TONConfig) SeedWords() []string {
	return strings.Fields(c.Seed)
}
