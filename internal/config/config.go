// Copyright (C) 2024 Creditor Corp. Group.
// See LICENSE for copying information.

package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/btcsuite/btcd/chaincfg"
	"github.com/kelseyhightower/envconfig"
	"github.com/pkg/errors"
)

// EnvPrefix defines prefix of every environment variable read by Environment.
const EnvPrefix = "BITCOFF"

// Explorer endpoints used when no endpoint is configured.
const (
	MainNetExplorerEndpoint = "https://blockstream.info/api/"
	TestNetExplorerEndpoint = "https://blockstream.info/testnet/api/"
)

var (
	// ErrUnknownNetwork defines that network name is not supported.
	ErrUnknownNetwork = errors.New("unknown network")
	// ErrNoExplorerEndpoint defines that network has no public explorer and endpoint is not configured.
	ErrNoExplorerEndpoint = errors.New("explorer endpoint is required for the network")
)

// Config is used to hold all runtime configuration.
type Config struct {
	Bitcoin struct {
		Network        string `default:"testnet" envconfig:"NETWORK"`
		SatoshiPerByte uint64 `default:"50" envconfig:"SATOSHI_PER_BYTE"`
		ChangeAddress  string `envconfig:"CHANGE_ADDRESS"`
	}
	Keyfile struct {
		Path   string `default:"./keyfile.gpg" envconfig:"KEYFILE"`
		GPGBin string `default:"gpg" envconfig:"GPG_BIN"`
	}
	Explorer struct {
		Endpoint string        `envconfig:"EXPLORER_ENDPOINT"`
		Timeout  time.Duration `default:"30s" envconfig:"EXPLORER_TIMEOUT"`
	}
	Store struct {
		Path string `envconfig:"STORE"`
	}
	LogLevel string `default:"none" envconfig:"LOG_LEVEL"`
}

// Environment returns configuration sourced from environment variables.
func Environment() (*Config, error) {
	var cfg Config

	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, errors.Wrap(err, "process environment")
	}

	return &cfg, nil
}

// SafeConfig masks sensitive config values.
func SafeConfig(cfg Config) *Config {
	cfgSafe := cfg

	if len(cfgSafe.Keyfile.Path) > 0 {
		cfgSafe.Keyfile.Path = "*** Masked ***"
	}

	return &cfgSafe
}

// String returns one line description of the masked config.
func (cfg Config) String() string {
	safe := SafeConfig(cfg)

	explorer, _ := safe.ExplorerEndpoint()

	return fmt.Sprintf("network=%s satoshiPerByte=%d changeAddress=%q keyfile=%s explorer=%q timeout=%s store=%q logLevel=%s",
		safe.Bitcoin.Network, safe.Bitcoin.SatoshiPerByte, safe.Bitcoin.ChangeAddress, safe.Keyfile.Path,
		explorer, safe.Explorer.Timeout, safe.Store.Path, safe.LogLevel)
}

// ChainParams returns network parameters of the configured network.
func (cfg Config) ChainParams() (*chaincfg.Params, error) {
	return NewChainParams(cfg.Bitcoin.Network)
}

// ExplorerEndpoint returns configured explorer endpoint or the default one for the network.
// Regtest has no default, its endpoint must be configured.
func (cfg Config) ExplorerEndpoint() (string, error) {
	if cfg.Explorer.Endpoint != "" {
		return cfg.Explorer.Endpoint, nil
	}

	params, err := cfg.ChainParams()
	if err != nil {
		return "", err
	}

	switch params.Net {
	case chaincfg.MainNetParams.Net:
		return MainNetExplorerEndpoint, nil
	case chaincfg.TestNet3Params.Net:
		return TestNetExplorerEndpoint, nil
	default:
		return "", errors.Wrapf(ErrNoExplorerEndpoint, "%s, use --explorer", params.Name)
	}
}

// NewChainParams returns chain configuration parameters
// based on the supplied string.
//
// - mainnet, bitcoin = Bitcoin main network
// - testnet, testnet3 = Bitcoin test network 3
// - regtest = Bitcoin regression test network
//
// Names are case insensitive.
func NewChainParams(network string) (*chaincfg.Params, error) {
	switch strings.ToLower(network) {
	case "mainnet", "bitcoin":
		return &chaincfg.MainNetParams, nil
	case "testnet", "testnet3":
		return &chaincfg.TestNet3Params, nil
	case "regtest":
		return &chaincfg.RegressionNetParams, nil
	default:
		return nil, errors.Wrapf(ErrUnknownNetwork, "%q", network)
	}
}
