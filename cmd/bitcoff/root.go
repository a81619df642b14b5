// Copyright (C) 2024 Creditor Corp. Group.
// See LICENSE for copying information.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/wire"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/gskapka/bitcoff/bitcoin"
	"github.com/gskapka/bitcoff/bitcoin/signer"
	"github.com/gskapka/bitcoff/bitcoin/txbuilder"
	"github.com/gskapka/bitcoff/internal/config"
	"github.com/gskapka/bitcoff/internal/explorer"
	"github.com/gskapka/bitcoff/internal/keyfile"
	"github.com/gskapka/bitcoff/internal/store"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

// signerChange defines --change value meaning address of the signing key.
const signerChange = "signer"

// app holds state shared by every command.
type app struct {
	cfg        *config.Config
	cfgErr     error
	params     *chaincfg.Params
	outputPath string
	utxoFile   string
	fromStore  bool
	nonce      uint64
	now        func() time.Time
	// newExplorer is replaced in tests.
	newExplorer func(endpoint string, timeout time.Duration) (explorer.Service, error)
}

// newRootCmd builds command tree, flag defaults are taken from the environment.
func newRootCmd() *cobra.Command {
	return newApp().rootCmd()
}

// newApp is a constructor for app.
func newApp() *app {
	cfg, err := config.Environment()
	if cfg == nil {
		cfg = new(config.Config)
	}

	return &app{
		cfg:    cfg,
		cfgErr: err,
		now:    time.Now,
		newExplorer: func(endpoint string, timeout time.Duration) (explorer.Service, error) {
			return explorer.NewClient(endpoint, timeout)
		},
	}
}

// rootCmd builds command tree bound to the app state.
func (a *app) rootCmd() *cobra.Command {
	cfg := a.cfg

	rootCmd := &cobra.Command{
		Use:               "bitcoff",
		Short:             "Offline-capable legacy bitcoin transaction signer",
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfg.Bitcoin.Network, "network", cfg.Bitcoin.Network, "bitcoin network: mainnet (Bitcoin), testnet (Testnet) or regtest")
	flags.Uint64Var(&cfg.Bitcoin.SatoshiPerByte, "fee", cfg.Bitcoin.SatoshiPerByte, "fee to pay in Satoshis-per-byte")
	flags.StringVar(&cfg.Bitcoin.ChangeAddress, "change", orDefault(cfg.Bitcoin.ChangeAddress, signerChange), "address to send change to, signer means address of the private key")
	flags.StringVar(&cfg.Keyfile.Path, "keyfile", cfg.Keyfile.Path, "path to GPG encrypted private key in WIF")
	flags.StringVar(&cfg.Keyfile.GPGBin, "gpg", cfg.Keyfile.GPGBin, "gpg binary used to decrypt keyfile")
	flags.StringVar(&cfg.Explorer.Endpoint, "explorer", cfg.Explorer.Endpoint, "Esplora API endpoint, network default if empty")
	flags.DurationVar(&cfg.Explorer.Timeout, "timeout", cfg.Explorer.Timeout, "explorer request timeout")
	flags.StringVar(&cfg.Store.Path, "store", cfg.Store.Path, "path to bbolt database persisting utxo sets and signed transactions")
	flags.StringVar(&cfg.LogLevel, "logLevel", cfg.LogLevel, "log level: none, info, debug, trace or error")
	flags.StringVar(&a.outputPath, "outputPath", "", "save output to given path")

	rootCmd.AddCommand(
		a.versionCmd(),
		a.getUtxosCmd(),
		a.getUtxosForAddressCmd(),
		a.makeOnlineTxCmd(),
		a.makeOfflineTxCmd(),
		a.makeOnlineOpReturnTxCmd(),
		a.makeOfflineOpReturnTxCmd(),
		a.getDepositAddressCmd(),
		a.spendCommittedUtxosCmd(),
		a.generateKeyCmd(),
	)

	return rootCmd
}

// setup validates configuration and initializes logging.
func (a *app) setup(cmd *cobra.Command, _ []string) (err error) {
	if a.cfgErr != nil {
		return a.cfgErr
	}

	if err = setupLogging(cmd.ErrOrStderr(), a.cfg.LogLevel); err != nil {
		return err
	}

	if a.params, err = a.cfg.ChainParams(); err != nil {
		return err
	}

	if a.cfg.Bitcoin.ChangeAddress == signerChange {
		a.cfg.Bitcoin.ChangeAddress = ""
	}

	log.Debugf("Config: %s", a.cfg)

	return nil
}

// privateKey decrypts keyfile.
func (a *app) privateKey(ctx context.Context) (*signer.PrivateKey, error) {
	log.Infof("Decrypting keyfile")

	return keyfile.NewDecryptor(a.cfg.Keyfile.GPGBin).PrivateKey(ctx, a.cfg.Keyfile.Path)
}

// signerAddress returns address of the private key.
func signerAddress(privateKey *signer.PrivateKey) (string, error) {
	address, err := privateKey.Address()
	if err != nil {
		return "", err
	}

	return address.EncodeAddress(), nil
}

// withStore opens store if configured and runs fn with it, fn receives nil otherwise.
func (a *app) withStore(fn func(s *store.Store) error) (err error) {
	if a.cfg.Store.Path == "" {
		return fn(nil)
	}

	s, err := store.Open(a.cfg.Store.Path)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := s.Close(); err == nil {
			err = closeErr
		}
	}()

	return fn(s)
}

// fetchUTXOs fetches utxo set of the address from explorer, persisting it if store is configured.
func (a *app) fetchUTXOs(ctx context.Context, address string) (bitcoin.UTXOSet, error) {
	endpoint, err := a.cfg.ExplorerEndpoint()
	if err != nil {
		return nil, err
	}

	service, err := a.newExplorer(endpoint, a.cfg.Explorer.Timeout)
	if err != nil {
		return nil, err
	}

	utxos, err := explorer.FetchUTXOSet(ctx, service, address)
	if err != nil {
		return nil, errors.Wrapf(err, "fetch utxos of %s", address)
	}

	err = a.withStore(func(s *store.Store) error {
		if s == nil {
			return nil
		}

		return s.PutUTXOSet(address, utxos)
	})

	return utxos, err
}

// offlineUTXOs returns utxo set from --utxoFile, --fromStore or provided json, in that order.
func (a *app) offlineUTXOs(address, utxosJSON string) (utxos bitcoin.UTXOSet, err error) {
	switch {
	case a.utxoFile != "":
		data, err := os.ReadFile(a.utxoFile)
		if err != nil {
			return nil, bitcoin.WrapError(bitcoin.ErrIO, errors.Wrap(err, "read utxo file"))
		}

		return bitcoin.ParseUTXOSetJSON(data)
	case a.fromStore:
		if a.cfg.Store.Path == "" {
			return nil, errors.New("--fromStore requires --store")
		}

		err = a.withStore(func(s *store.Store) (err error) {
			utxos, err = s.UTXOSet(address)
			return err
		})

		return utxos, err
	default:
		return bitcoin.ParseUTXOSetJSON([]byte(utxosJSON))
	}
}

// hasUTXOSource returns true if utxos are not passed as an argument.
func (a *app) hasUTXOSource() bool {
	return a.utxoFile != "" || a.fromStore
}

// outputTx prints signed transaction hex and persists it if store is configured.
func (a *app) outputTx(cmd *cobra.Command, tx *wire.MsgTx) error {
	txHex, err := txbuilder.SignedTxToHex(tx)
	if err != nil {
		return err
	}

	log.Infof("Signed tx %s", tx.TxHash())

	err = a.withStore(func(s *store.Store) error {
		if s == nil {
			return nil
		}

		_, err := s.PutSignedTx(tx)
		return err
	})
	if err != nil {
		return err
	}

	return a.output(cmd, txHex)
}

// outputJSON prints v as indented json.
func (a *app) outputJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return bitcoin.WrapError(bitcoin.ErrSerialization, err)
	}

	return a.output(cmd, string(data))
}

// output prints result and saves it to --outputPath if provided.
func (a *app) output(cmd *cobra.Command, result string) error {
	if a.outputPath != "" {
		if err := os.WriteFile(a.outputPath, []byte(result), 0o600); err != nil {
			return bitcoin.WrapError(bitcoin.ErrIO, errors.Wrap(err, "save output"))
		}

		log.Infof("Output saved to %s", a.outputPath)
	}

	_, err := fmt.Fprintln(cmd.OutOrStdout(), result)

	return err
}

// orDefault returns value or fallback if value is empty.
func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}

	return value
}
