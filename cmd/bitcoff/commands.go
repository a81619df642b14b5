// Copyright (C) 2024 Creditor Corp. Group.
// See LICENSE for copying information.

package main

import (
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/gskapka/bitcoff/bitcoin"
	"github.com/gskapka/bitcoff/bitcoin/commitment"
	"github.com/gskapka/bitcoff/bitcoin/signer"
	"github.com/gskapka/bitcoff/bitcoin/txbuilder"
	"github.com/gskapka/bitcoff/bitcoin/utils"
	"github.com/gskapka/bitcoff/internal/sequencereader"
)

// ErrRecipients defines malformed `<to> <amount>` argument pairs.
var ErrRecipients = errors.New("expected one or more <to> <amount> pairs")

func (a *app) versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version info",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.output(cmd, "bitcoff "+version)
		},
	}
}

func (a *app) getUtxosCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "getUtxos",
		Short: "Get UTXOs of the address derived from the encrypted private key",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			privateKey, err := a.privateKey(cmd.Context())
			if err != nil {
				return err
			}

			address, err := signerAddress(privateKey)
			if err != nil {
				return err
			}

			return a.outputUTXOs(cmd, address)
		},
	}
}

func (a *app) getUtxosForAddressCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "getUtxosForAddress <btcAddress>",
		Short: "Get UTXOs of the supplied address",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.outputUTXOs(cmd, args[0])
		},
	}
}

// outputUTXOs fetches and prints utxo set json of the address.
func (a *app) outputUTXOs(cmd *cobra.Command, address string) error {
	utxos, err := a.fetchUTXOs(cmd.Context(), address)
	if err != nil {
		return err
	}

	data, err := utxos.JSON()
	if err != nil {
		return err
	}

	return a.output(cmd, string(data))
}

func (a *app) makeOnlineTxCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "makeOnlineTx (<to> <amount>)...",
		Short: "Create p2pkh transaction spending UTXOs of the private key fetched from explorer",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.makeTx(cmd, args, nil, true)
		},
	}
}

func (a *app) makeOfflineTxCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "makeOfflineTx (<to> <amount>)... (--utxoFile=<path> | --fromStore | <utxos>)",
		Short: "Create p2pkh transaction spending supplied UTXOs",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.makeTx(cmd, args, nil, false)
		},
	}
	a.utxoSourceFlags(cmd)

	return cmd
}

func (a *app) makeOnlineOpReturnTxCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "makeOnlineOpReturnTx (<to> <amount>)... <data>",
		Short: "Create p2pkh transaction with OP_RETURN output holding hex data, spending UTXOs fetched from explorer",
		Args:  cobra.MinimumNArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := parseHexData(args[len(args)-1])
			if err != nil {
				return err
			}

			return a.makeTx(cmd, args[:len(args)-1], data, true)
		},
	}
}

func (a *app) makeOfflineOpReturnTxCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "makeOfflineOpReturnTx (<to> <amount>)... <data> (--utxoFile=<path> | --fromStore | <utxos>)",
		Short: "Create p2pkh transaction with OP_RETURN output holding hex data, spending supplied UTXOs",
		Args:  cobra.MinimumNArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			dataIdx := len(args) - 1
			if !a.hasUTXOSource() {
				dataIdx--
			}
			if dataIdx < 2 {
				return ErrRecipients
			}

			data, err := parseHexData(args[dataIdx])
			if err != nil {
				return err
			}

			return a.makeTx(cmd, append(args[:dataIdx:dataIdx], args[dataIdx+1:]...), data, false)
		},
	}
	a.utxoSourceFlags(cmd)

	return cmd
}

// makeTx builds signed transaction paying recipients from args. In offline mode the last
// argument holds utxo set json unless utxos come from a file or the store.
func (a *app) makeTx(cmd *cobra.Command, args []string, data []byte, online bool) error {
	utxosJSON := ""
	if !online && !a.hasUTXOSource() {
		utxosJSON, args = args[len(args)-1], args[:len(args)-1]
	}

	recipients, err := parseRecipients(args)
	if err != nil {
		return err
	}

	privateKey, err := a.privateKey(cmd.Context())
	if err != nil {
		return err
	}

	address, err := signerAddress(privateKey)
	if err != nil {
		return err
	}

	var utxos bitcoin.UTXOSet
	if online {
		utxos, err = a.fetchUTXOs(cmd.Context(), address)
	} else {
		utxos, err = a.offlineUTXOs(address, utxosJSON)
	}
	if err != nil {
		return err
	}

	tx, err := txbuilder.NewTxBuilder(a.params).BuildSignedTx(txbuilder.SignedTxParams{
		SatoshiPerByte: a.cfg.Bitcoin.SatoshiPerByte,
		Recipients:     recipients,
		DataCarrier:    data,
		ChangeAddress:  a.cfg.Bitcoin.ChangeAddress,
		PrivateKey:     privateKey,
		UTXOs:          utxos,
	})
	if err != nil {
		return err
	}

	return a.outputTx(cmd, tx)
}

// depositInfo describes committed script deposit address.
type depositInfo struct {
	DepositAddress string `json:"deposit_address"`
	Identifier     string `json:"identifier"`
	Nonce          uint64 `json:"nonce"`
	CommitmentHash string `json:"commitment_hash"`
	RedeemScript   string `json:"redeem_script"`
	PublicKey      string `json:"public_key"`
}

func (a *app) getDepositAddressCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "getDepositAddress <identifier>",
		Short: "Derive deposit address committing to the identifier and nonce",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			identifier, err := commitment.ParseIdentifier(args[0])
			if err != nil {
				return err
			}

			privateKey, err := a.privateKey(cmd.Context())
			if err != nil {
				return err
			}

			nonce := a.nonce
			if nonce == 0 {
				nonce = uint64(a.now().Unix())
				log.Infof("Using unix timestamp %d as nonce", nonce)
			}

			hash := commitment.Hash(identifier, nonce)
			redeemScript, err := commitment.Script(privateKey.PublicKeyBytes(), hash)
			if err != nil {
				return err
			}

			address, err := utils.NewScriptHashAddress(redeemScript, a.params)
			if err != nil {
				return bitcoin.WrapError(bitcoin.ErrDecode, err)
			}

			return a.outputJSON(cmd, depositInfo{
				DepositAddress: address.EncodeAddress(),
				Identifier:     "0x" + hex.EncodeToString(identifier),
				Nonce:          nonce,
				CommitmentHash: hex.EncodeToString(hash[:]),
				RedeemScript:   hex.EncodeToString(redeemScript),
				PublicKey:      hex.EncodeToString(privateKey.PublicKeyBytes()),
			})
		},
	}
	cmd.Flags().Uint64Var(&a.nonce, "nonce", 0, "nonce combined with the identifier before hashing, 0 means unix timestamp")

	return cmd
}

func (a *app) spendCommittedUtxosCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "spendCommittedUtxos <identifier> (<to> <amount>)... --nonce=<uint>",
		Short: "Spend UTXOs of the deposit address committing to the identifier and nonce",
		Args:  cobra.MinimumNArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.nonce == 0 {
				return errors.New("--nonce of the deposit address is required")
			}

			identifier, err := commitment.ParseIdentifier(args[0])
			if err != nil {
				return err
			}

			recipients, err := parseRecipients(args[1:])
			if err != nil {
				return err
			}

			privateKey, err := a.privateKey(cmd.Context())
			if err != nil {
				return err
			}

			depositAddress, err := commitment.DepositAddress(privateKey.PublicKeyBytes(), identifier, a.nonce, a.params)
			if err != nil {
				return err
			}

			var utxos bitcoin.UTXOSet
			if a.hasUTXOSource() {
				utxos, err = a.offlineUTXOs(depositAddress.EncodeAddress(), "")
			} else {
				utxos, err = a.fetchUTXOs(cmd.Context(), depositAddress.EncodeAddress())
			}
			if err != nil {
				return err
			}

			tx, err := txbuilder.NewTxBuilder(a.params).BuildCommittedSpendTx(txbuilder.CommittedSpendParams{
				SatoshiPerByte: a.cfg.Bitcoin.SatoshiPerByte,
				Recipients:     recipients,
				CommitmentHash: commitment.Hash(identifier, a.nonce),
				ChangeAddress:  a.cfg.Bitcoin.ChangeAddress,
				PrivateKey:     privateKey,
				UTXOs:          utxos,
			})
			if err != nil {
				return err
			}

			return a.outputTx(cmd, tx)
		},
	}
	cmd.Flags().Uint64Var(&a.nonce, "nonce", 0, "nonce of the deposit address")
	a.utxoSourceFlags(cmd)

	return cmd
}

// keyInfo describes generated private key.
type keyInfo struct {
	WIF       string `json:"wif"`
	PublicKey string `json:"public_key"`
	Address   string `json:"address"`
}

func (a *app) generateKeyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "generateKey",
		Short: "Generate random private key for the network",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			privateKey, err := signer.GeneratePrivateKey(a.params)
			if err != nil {
				return err
			}

			address, err := signerAddress(privateKey)
			if err != nil {
				return err
			}

			return a.outputJSON(cmd, keyInfo{
				WIF:       privateKey.String(),
				PublicKey: hex.EncodeToString(privateKey.PublicKeyBytes()),
				Address:   address,
			})
		},
	}
}

// utxoSourceFlags registers offline utxo source flags.
func (a *app) utxoSourceFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&a.utxoFile, "utxoFile", "", "path to file with JSON array of UTXOs")
	cmd.Flags().BoolVar(&a.fromStore, "fromStore", false, "spend UTXO set previously fetched into --store")
	cmd.MarkFlagsMutuallyExclusive("utxoFile", "fromStore")
}

// parseRecipients reads `<to> <amount>` argument pairs.
func parseRecipients(args []string) ([]txbuilder.Recipient, error) {
	if len(args) == 0 || len(args)%2 != 0 {
		return nil, bitcoin.WrapError(bitcoin.ErrDecode, fmt.Errorf("%w, got %d argument(s)", ErrRecipients, len(args)))
	}

	reader := sequencereader.New(args)
	recipients := make([]txbuilder.Recipient, 0, reader.Len()/2)
	for reader.HasNext() {
		pair, err := reader.NextN(2)
		if err != nil {
			return nil, bitcoin.WrapError(bitcoin.ErrDecode, err)
		}

		amount, err := strconv.ParseUint(pair[1], 10, 64)
		if err != nil {
			return nil, bitcoin.WrapError(bitcoin.ErrDecode, errors.Wrapf(err, "amount of %s", pair[0]))
		}

		recipients = append(recipients, txbuilder.Recipient{Address: pair[0], Amount: amount})
	}

	return recipients, nil
}

// parseHexData decodes OP_RETURN data given as hex, optionally 0x prefixed.
func parseHexData(s string) ([]byte, error) {
	data, err := hex.DecodeString(strings.TrimPrefix(s, "0x"))
	if err != nil {
		return nil, bitcoin.WrapError(bitcoin.ErrDecode, errors.Wrapf(err, "data %q", s))
	}

	return data, nil
}
