package config

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
)

// Well-known mainnet mints used as defaults.
const (
	WrappedSOLMint = "So11111111111111111111111111111111111111112"
	USDCMint       = "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v"
)

// Config holds the application configuration
type Config struct {
	AggregatorBaseURL string
	RPCUrl            string
	DefaultInputMint  string
	OutputMint        string
	KeypairPath       string
	PrivateKey        string
	Commitment        string
	SkipPreflight     bool
	RequestTimeout    time.Duration
	SlippageBps       int
}

var globalConfig *Config

// Load reads configuration from environment variables and config file
func Load() (*Config, error) {
	viper.SetConfigName(".solpay")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("$HOME")
	viper.AddConfigPath(".")

	// Set default values
	viper.SetDefault("aggregator_base_url", "https://quote-api.jup.ag/v6")
	viper.SetDefault("rpc_url", "https://api.mainnet-beta.solana.com")
	viper.SetDefault("default_input_mint", WrappedSOLMint)
	viper.SetDefault("output_mint", USDCMint)
	viper.SetDefault("commitment", "finalized")
	viper.SetDefault("skip_preflight", false)
	viper.SetDefault("request_timeout", "15s")
	viper.SetDefault("slippage_bps", 50)

	// Read from environment variables
	viper.SetEnvPrefix("SOLPAY")
	viper.AutomaticEnv()

	// Read config file (optional)
	_ = viper.ReadInConfig()

	cfg := &Config{
		AggregatorBaseURL: viper.GetString("aggregator_base_url"),
		RPCUrl:            viper.GetString("rpc_url"),
		DefaultInputMint:  viper.GetString("default_input_mint"),
		OutputMint:        viper.GetString("output_mint"),
		KeypairPath:       viper.GetString("keypair_path"),
		PrivateKey:        viper.GetString("private_key"),
		Commitment:        viper.GetString("commitment"),
		SkipPreflight:     viper.GetBool("skip_preflight"),
		RequestTimeout:    viper.GetDuration("request_timeout"),
		SlippageBps:       viper.GetInt("slippage_bps"),
	}

	if cfg.AggregatorBaseURL == "" {
		return nil, fmt.Errorf("aggregator base URL not configured. Set SOLPAY_AGGREGATOR_BASE_URL or create a .solpay.yaml config file")
	}
	if cfg.RPCUrl == "" {
		return nil, fmt.Errorf("RPC URL not configured. Set SOLPAY_RPC_URL or create a .solpay.yaml config file")
	}

	globalConfig = cfg
	return cfg, nil
}

// Get returns the global configuration
func Get() *Config {
	if globalConfig == nil {
		cfg, err := Load()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
			os.Exit(1)
		}
		return cfg
	}
	return globalConfig
}

// Set updates the global configuration
func Set(cfg *Config) {
	globalConfig = cfg
}
