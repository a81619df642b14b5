// Copyright (C) 2024 Creditor Corp. Group.
// See LICENSE for copying information.

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/btcsuite/btclog"
	"github.com/stretchr/testify/require"

	"github.com/gskapka/bitcoff/bitcoin"
	"github.com/gskapka/bitcoff/bitcoin/txbuilder"
	"github.com/gskapka/bitcoff/internal/config"
	"github.com/gskapka/bitcoff/internal/explorer"
)

const (
	testWIF          = "cP2Dv4mx1DwJzN8iF6CCyPZmuS27bT9MV4Qmgb9h6cNQNq2Jgpmy"
	testAddress      = "moBSQbHn7N9BC9pdtAMnA7GBiALzNMQJyE"
	testRecipient    = "mudzxCq9aCQ4Una9MmayvJVCF1Tj9fypiM"
	testIdentifier   = "0xfedfe2616eb3661cb8fed2782f5f0cc91d59dcac"
	testDeposit      = "2N2LHYbt8K1KDBogd6XUG9VBv5YM6xefdM2"
	scenarioUTXOs    = `[{"value":891168,"serialized_utxo":"6e3fa15afcd9b579b7ed082e0ee8cfba1f27a6cf007cb7ca95b06ab0fda2880c020000001976a91454102783c8640c5144d039cea53eb7dbb470081488acffffffff"}]`
	scenarioTxHex    = "01000000016e3fa15afcd9b579b7ed082e0ee8cfba1f27a6cf007cb7ca95b06ab0fda2880c020000006b483045022100d5dec195ae624af5708ca7834b9e052b93bcf935c92c19dcf1be39ce1aa60d31022019db89b0938e14c82f1f66ad8ab7377fe5895c78293df5b3a50ffa221fa04700012103d2a5e3b162eb580fe2ce023cd5e0dddbb6286923acde77e3e5468314dc9373f7ffffffff0289130000000000001976a9149ae6e42c56f1ea319cfc704ad50db0683015029b88ac333a0d00000000001976a91454102783c8640c5144d039cea53eb7dbb470081488ac00000000"
	sampleTxID       = "85f8faf4a3da404a833d0a21b1cea215da74a4b2c1ce8187cbf6379f42c02924"
	sampleTxHex      = "01000000018986374e3404c889f3da5fd8b07311cad5b0e81e333a994638f65c9a9cdf4742010000006a47304402201db6cfd4be08ed4605b5eed60281438ea325af6ea6f0ff7e19f46431c29fcbcb0220157d5a1773f5eaff369735ea7608fd31b603fe279a45b5ee2f5d555c25711566012103d8d40098fa07622a89491597be95836a05de0fa5fcca1e474eb6a6213fc1f33fffffffff0282060000000000001976a91454102783c8640c5144d039cea53eb7dbb470081488acb4b81b01000000001976a9148302e646c0d9bf8b7292c6da11a721149e06749d88ac00000000"
	sampleUTXOsJSON  = `[{"value":1666,"serialized_utxo":"2429c0429f37f6cb8781cec1b2a474da15a2ceb1210a3d834a40daa3f4faf885000000001976a91454102783c8640c5144d039cea53eb7dbb470081488acffffffff"}]`
	committedSpendTx = "01000000010c07ffe5fe0be9f06a1bd84c712bffe94c5eabcd75aa1374d067b457e9e4a45a000000008f483045022100fa6cc3c196059261fa6a6577600602a60a408865b376c89d6d7e6fd7de1738a402207a2cecb8535c8336487541427ec31cd04c5c69c14069e44182d6d4fd784aab0001452098eaf3812c998a46e0ee997ccdadf736c7bc13c18a5292df7a8d39089fd28d9e752103d2a5e3b162eb580fe2ce023cd5e0dddbb6286923acde77e3e5468314dc9373f7acffffffff0289130000000000001976a9149ae6e42c56f1ea319cfc704ad50db0683015029b88ac8d6b0100000000001976a91454102783c8640c5144d039cea53eb7dbb470081488ac00000000"
	committedUTXOs   = `[{"value":100000,"serialized_utxo":"0c07ffe5fe0be9f06a1bd84c712bffe94c5eabcd75aa1374d067b457e9e4a45a0000000017a91463ae2e67f25332dd737b149986f755c5dc29a26387ffffffff"}]`
)

// fakeGPG writes shell script printing testWIF instead of decrypting.
func fakeGPG(t *testing.T) string {
	t.Helper()

	if runtime.GOOS == "windows" {
		t.Skip("shell scripts are not supported")
	}

	path := filepath.Join(t.TempDir(), "gpg")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\necho "+testWIF+"\n"), 0o700))

	return path
}

// run executes cli with args against testnet and returns stdout.
func run(t *testing.T, a *app, args ...string) (string, error) {
	t.Helper()

	var stdout, stderr bytes.Buffer
	cmd := a.rootCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(append([]string{"--network", "testnet", "--logLevel", "none"}, args...))

	err := cmd.ExecuteContext(context.Background())

	return stdout.String(), err
}

func TestCLI(t *testing.T) {
	gpg := fakeGPG(t)

	t.Run("version", func(t *testing.T) {
		out, err := run(t, newApp(), "version")
		require.NoError(t, err)
		require.Equal(t, "bitcoff dev\n", out)
	})

	t.Run("makeOfflineTx", func(t *testing.T) {
		out, err := run(t, newApp(), "makeOfflineTx", testRecipient, "5001", scenarioUTXOs, "--fee", "100", "--gpg", gpg)
		require.NoError(t, err)
		require.Equal(t, scenarioTxHex+"\n", out)
	})

	t.Run("makeOfflineTx from file with output path", func(t *testing.T) {
		dir := t.TempDir()
		utxoFile := filepath.Join(dir, "utxos.json")
		outputPath := filepath.Join(dir, "tx.hex")
		require.NoError(t, os.WriteFile(utxoFile, []byte(scenarioUTXOs), 0o600))

		out, err := run(t, newApp(), "makeOfflineTx", testRecipient, "5001",
			"--utxoFile", utxoFile, "--fee", "100", "--gpg", gpg, "--outputPath", outputPath)
		require.NoError(t, err)
		require.Equal(t, scenarioTxHex+"\n", out)

		saved, err := os.ReadFile(outputPath)
		require.NoError(t, err)
		require.Equal(t, scenarioTxHex, string(saved))
	})

	t.Run("makeOfflineOpReturnTx", func(t *testing.T) {
		out, err := run(t, newApp(), "makeOfflineOpReturnTx", testRecipient, "5001", "0xdeadbeef", scenarioUTXOs,
			"--fee", "10", "--gpg", gpg)
		require.NoError(t, err)

		tx, err := txbuilder.DecodeTxHex(strings.TrimSpace(out))
		require.NoError(t, err)
		require.Len(t, tx.TxOut, 3)
		require.Equal(t, []byte{0x6a, 0x04, 0xde, 0xad, 0xbe, 0xef}, tx.TxOut[1].PkScript)
	})

	t.Run("online and stored", func(t *testing.T) {
		a := newApp()
		a.newExplorer = func(string, time.Duration) (explorer.Service, error) {
			return &explorer.Mock{
				AddressUTXOsFn: func(_ context.Context, address string) ([]explorer.UTXOInfo, error) {
					require.Equal(t, testAddress, address)
					return []explorer.UTXOInfo{{TxID: sampleTxID, Vout: 0, Value: 1666}}, nil
				},
				TxHexFn: func(context.Context, string) (string, error) { return sampleTxHex, nil },
			}, nil
		}
		storePath := filepath.Join(t.TempDir(), "bitcoff.db")

		out, err := run(t, a, "getUtxos", "--gpg", gpg, "--store", storePath)
		require.NoError(t, err)
		require.JSONEq(t, sampleUTXOsJSON, out)

		online, err := run(t, a, "makeOnlineTx", testRecipient, "100", "--fee", "1", "--gpg", gpg, "--store", storePath)
		require.NoError(t, err)

		offline, err := run(t, newApp(), "makeOfflineTx", testRecipient, "100", "--fromStore", "--fee", "1",
			"--gpg", gpg, "--store", storePath)
		require.NoError(t, err)
		require.Equal(t, online, offline)
	})

	t.Run("getDepositAddress", func(t *testing.T) {
		out, err := run(t, newApp(), "getDepositAddress", testIdentifier, "--nonce", "1337", "--gpg", gpg)
		require.NoError(t, err)

		var info depositInfo
		require.NoError(t, json.Unmarshal([]byte(out), &info))
		require.Equal(t, testDeposit, info.DepositAddress)
		require.EqualValues(t, 1337, info.Nonce)

		a := newApp()
		a.now = func() time.Time { return time.Unix(1700000000, 0) }
		out, err = run(t, a, "getDepositAddress", testIdentifier, "--gpg", gpg)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal([]byte(out), &info))
		require.EqualValues(t, 1700000000, info.Nonce)
		require.NotEqual(t, testDeposit, info.DepositAddress)
	})

	t.Run("spendCommittedUtxos", func(t *testing.T) {
		utxoFile := filepath.Join(t.TempDir(), "utxos.json")
		require.NoError(t, os.WriteFile(utxoFile, []byte(committedUTXOs), 0o600))

		out, err := run(t, newApp(), "spendCommittedUtxos", testIdentifier, testRecipient, "5001",
			"--nonce", "1337", "--utxoFile", utxoFile, "--fee", "10", "--gpg", gpg)
		require.NoError(t, err)
		require.Equal(t, committedSpendTx+"\n", out)

		_, err = run(t, newApp(), "spendCommittedUtxos", testIdentifier, testRecipient, "5001",
			"--utxoFile", utxoFile, "--gpg", gpg)
		require.Error(t, err)
	})

	t.Run("generateKey", func(t *testing.T) {
		out, err := run(t, newApp(), "generateKey")
		require.NoError(t, err)

		var info keyInfo
		require.NoError(t, json.Unmarshal([]byte(out), &info))
		require.Equal(t, byte('c'), info.WIF[0])
		require.Contains(t, "mn", string(info.Address[0]))
	})

	t.Run("errors", func(t *testing.T) {
		_, err := run(t, newApp(), "makeOfflineTx", testRecipient, "5001", "[]", "--gpg", gpg)
		require.ErrorIs(t, err, bitcoin.ErrInsufficientFunds)

		_, err = run(t, newApp(), "makeOfflineTx", testRecipient, "5001", "--fromStore", "--gpg", gpg)
		require.Error(t, err)

		_, err = run(t, newApp(), "getUtxosForAddress", testAddress, "--network", "regtest")
		require.ErrorIs(t, err, config.ErrNoExplorerEndpoint)

		_, err = run(t, newApp(), "version", "--logLevel", "loud")
		require.ErrorIs(t, err, ErrLogLevel)
	})
}

func TestParseRecipients(t *testing.T) {
	recipients, err := parseRecipients([]string{testRecipient, "5001", testAddress, "1"})
	require.NoError(t, err)
	require.Equal(t, []txbuilder.Recipient{{Address: testRecipient, Amount: 5001}, {Address: testAddress, Amount: 1}}, recipients)

	for _, args := range [][]string{nil, {testRecipient}, {testRecipient, "-1"}, {testRecipient, "1", testAddress}} {
		_, err := parseRecipients(args)
		require.ErrorIs(t, err, bitcoin.ErrDecode, args)
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		name  string
		level btclog.Level
	}{
		{"none", btclog.LevelOff},
		{"error", btclog.LevelError},
		{"info", btclog.LevelInfo},
		{"debug", btclog.LevelDebug},
		{"trace", btclog.LevelTrace},
	}

	for _, test := range tests {
		level, err := parseLogLevel(test.name)
		require.NoError(t, err)
		require.Equal(t, test.level, level)
	}

	_, err := parseLogLevel("verbose")
	require.ErrorIs(t, err, ErrLogLevel)
}
