// Copyright (C) 2024 Creditor Corp. Group.
// See LICENSE for copying information.

package store_test

import (
	"path/filepath"
	"testing"

	"github.com/btcsuite/btcd/wire"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/gskapka/bitcoff/bitcoin"
	"github.com/gskapka/bitcoff/bitcoin/txbuilder"
	"github.com/gskapka/bitcoff/internal/store"
)

const (
	testAddress = "moBSQbHn7N9BC9pdtAMnA7GBiALzNMQJyE"
	sampleTxHex = "01000000018986374e3404c889f3da5fd8b07311cad5b0e81e333a994638f65c9a9cdf4742010000006a47304402201db6cfd4be" +
		"08ed4605b5eed60281438ea325af6ea6f0ff7e19f46431c29fcbcb0220157d5a1773f5eaff369735ea7608fd31b603fe279a45b5ee2f5d5" +
		"55c25711566012103d8d40098fa07622a89491597be95836a05de0fa5fcca1e474eb6a6213fc1f33fffffffff0282060000000000001976" +
		"a91454102783c8640c5144d039cea53eb7dbb470081488acb4b81b01000000001976a9148302e646c0d9bf8b7292c6da11a721149e06749" +
		"d88ac00000000"
	sampleTxID = "85f8faf4a3da404a833d0a21b1cea215da74a4b2c1ce8187cbf6379f42c02924"
)

func openStore(t *testing.T) *store.Store {
	t.Helper()

	s, err := store.Open(filepath.Join(t.TempDir(), "nested", "bitcoff.db"))
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, s.Close()) })

	return s
}

func TestStore(t *testing.T) {
	tx := mustTx(t, sampleTxHex)

	t.Run("utxo sets", func(t *testing.T) {
		s := openStore(t)

		_, err := s.UTXOSet(testAddress)
		require.ErrorIs(t, err, store.ErrNotFound)
		require.ErrorIs(t, err, bitcoin.ErrIO)

		utxos, err := bitcoin.UTXOsForScript(tx, tx.TxOut[0].PkScript)
		require.NoError(t, err)
		require.NoError(t, s.PutUTXOSet(testAddress, utxos))

		stored, err := s.UTXOSet(testAddress)
		require.NoError(t, err)
		require.Len(t, stored, 1)
		require.True(t, utxos[0].Equal(stored[0]))

		// replaced by the latest set.
		require.NoError(t, s.PutUTXOSet(testAddress, nil))
		stored, err = s.UTXOSet(testAddress)
		require.NoError(t, err)
		require.Empty(t, stored)
	})

	t.Run("signed txs", func(t *testing.T) {
		s := openStore(t)

		first, err := s.PutSignedTx(tx)
		require.NoError(t, err)
		require.Equal(t, sampleTxID, first.TxID)
		require.Equal(t, sampleTxHex, first.Hex)

		second, err := s.PutSignedTx(tx)
		require.NoError(t, err)
		require.NotEqual(t, first.ID, second.ID)

		record, err := s.SignedTx(first.ID)
		require.NoError(t, err)
		require.Equal(t, first.ID, record.ID)
		require.Equal(t, first.Hex, record.Hex)
		require.True(t, first.CreatedAt.Equal(record.CreatedAt))

		records, err := s.SignedTxs()
		require.NoError(t, err)
		require.Len(t, records, 2)
		require.Equal(t, first.ID, records[0].ID)
		require.Equal(t, second.ID, records[1].ID)

		_, err = s.SignedTx(uuid.New())
		require.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("reopen", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "bitcoff.db")

		s, err := store.Open(path)
		require.NoError(t, err)
		record, err := s.PutSignedTx(tx)
		require.NoError(t, err)
		require.NoError(t, s.Close())

		s, err = store.Open(path)
		require.NoError(t, err)
		defer func() { require.NoError(t, s.Close()) }()

		stored, err := s.SignedTx(record.ID)
		require.NoError(t, err)
		require.Equal(t, sampleTxHex, stored.Hex)
	})
}

func mustTx(t *testing.T, s string) *wire.MsgTx {
	t.Helper()

	tx, err := txbuilder.DecodeTxHex(s)
	require.NoError(t, err)

	return tx
}
