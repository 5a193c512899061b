// Package config loads the walletpilot config file and applies environment
// overrides. A loaded Config is not modified afterwards.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/neboloop/walletpilot/internal/browser"
	"github.com/neboloop/walletpilot/internal/defaults"
)

// Environment variables read by ApplyEnv.
const (
	EnvNetworkName   = "NETWORK_NAME"
	EnvRPCURL        = "RPC_URL"
	EnvChainID       = "CHAIN_ID"
	EnvSymbol        = "SYMBOL"
	EnvBlockExplorer = "BLOCK_EXPLORER"
	EnvIsTestnet     = "IS_TESTNET"
	EnvReset         = "RESET_METAMASK"
	EnvSecretWords   = "SECRET_WORDS"
	EnvPrivateKey    = "PRIVATE_KEY"
	EnvPassword      = "WALLET_PASSWORD"
	EnvCDPURL        = "WALLETPILOT_CDP_URL"
	EnvExtensionPath = "WALLETPILOT_EXTENSION_PATH"
	EnvScreenshots   = "WALLETPILOT_SCREENSHOTS"
)

type Config struct {
	Browser     browser.Config `yaml:"browser"`
	Wallet      WalletConfig   `yaml:"wallet"`
	Log         LogConfig      `yaml:"log"`
	Screenshots string         `yaml:"screenshots"`
}

type WalletConfig struct {
	// Network is a well-known network name used when CustomNetwork is empty.
	Network                string        `yaml:"network"`
	CustomNetwork          NetworkConfig `yaml:"customNetwork"`
	EnableAdvancedSettings bool          `yaml:"enableAdvancedSettings"`

	// Reset forces re-initialization instead of reusing an unlocked wallet.
	Reset bool `yaml:"reset"`

	// Secrets never come from the file.
	SecretWords string `yaml:"-"`
	PrivateKey  string `yaml:"-"`
	Password    string `yaml:"-"`
}

// NetworkConfig describes a custom network as written in the config file or
// the environment. Validation happens in the wallet package.
type NetworkConfig struct {
	Name          string `yaml:"name"`
	RPCURL        string `yaml:"rpcUrl"`
	ChainID       string `yaml:"chainId"`
	Symbol        string `yaml:"symbol"`
	BlockExplorer string `yaml:"blockExplorer"`
	IsTestnet     bool   `yaml:"isTestnet"`
}

// IsSet reports whether the descriptor names a custom network.
func (n NetworkConfig) IsSet() bool {
	return n.Name != "" && n.RPCURL != "" && n.ChainID != ""
}

type LogConfig struct {
	Level string `yaml:"level"`
	JSON  bool   `yaml:"json"`
}

// LoadFromBytes loads configuration from YAML bytes with environment variable expansion
func LoadFromBytes(data []byte) (Config, error) {
	var c Config
	expanded := os.ExpandEnv(string(data))
	if err := yaml.Unmarshal([]byte(expanded), &c); err != nil {
		return c, fmt.Errorf("parse config: %w", err)
	}
	return c, nil
}

// Load reads the config file at path. An empty path uses config.yaml in the
// data directory, creating it from the defaults on first run. Environment
// overrides are applied.
func Load(path string) (Config, error) {
	if path == "" {
		dir, err := defaults.EnsureDataDir()
		if err != nil {
			return Config{}, err
		}
		path = filepath.Join(dir, defaults.ConfigFile)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	c, err := LoadFromBytes(data)
	if err != nil {
		return c, err
	}
	return c.ApplyEnv(os.Getenv), nil
}

// ApplyEnv returns a copy of c with environment overrides applied. The
// custom network is overridden only when name, RPC URL and chain ID are all
// present.
func (c Config) ApplyEnv(getenv func(string) string) Config {
	env := func(key string) string { return strings.TrimSpace(getenv(key)) }

	n := NetworkConfig{
		Name:          env(EnvNetworkName),
		RPCURL:        env(EnvRPCURL),
		ChainID:       env(EnvChainID),
		Symbol:        env(EnvSymbol),
		BlockExplorer: env(EnvBlockExplorer),
		IsTestnet:     parseBool(env(EnvIsTestnet), false),
	}
	if n.IsSet() {
		c.Wallet.CustomNetwork = n
	}

	c.Wallet.Reset = parseBool(env(EnvReset), c.Wallet.Reset)
	if v := getenv(EnvSecretWords); v != "" {
		c.Wallet.SecretWords = strings.TrimSpace(v)
	}
	if v := env(EnvPrivateKey); v != "" {
		c.Wallet.PrivateKey = v
	}
	if v := getenv(EnvPassword); v != "" {
		c.Wallet.Password = v
	}
	if v := env(EnvCDPURL); v != "" {
		c.Browser.CDPUrl = v
	}
	if v := env(EnvExtensionPath); v != "" {
		c.Browser.ExtensionPath = v
	}
	if v := env(EnvScreenshots); v != "" {
		c.Screenshots = v
	}
	return c
}

// HasCustomNetwork reports whether setup should add a network rather than
// switch to a well-known one.
func (c Config) HasCustomNetwork() bool {
	return c.Wallet.CustomNetwork.IsSet()
}

// parseBool parses a string as boolean with a default value.
// Accepts: "true", "1", "yes" as true; empty returns the default.
func parseBool(s string, defaultVal bool) bool {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "" {
		return defaultVal
	}
	return s == "true" || s == "1" || s == "yes"
}
