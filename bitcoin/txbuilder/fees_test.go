// Copyright (C) 2024 Creditor Corp. Group.
// See LICENSE for copying information.

package txbuilder_test

import (
	"math"
	"testing"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/stretchr/testify/require"

	"github.com/gskapka/bitcoff/bitcoin"
	"github.com/gskapka/bitcoff/bitcoin/txbuilder"
)

func TestEstimateFee(t *testing.T) {
	tests := []struct {
		inputs, outputs, rate uint64
		size, fee             uint64
	}{
		{0, 0, 0, 10, 0},
		{0, 0, 1, 10, 10},
		{1, 1, 1, 193, 193},
		{1, 1, 100, 193, 19300},
		{1, 2, 100, 227, 22700},
		{1, 2, 10, 227, 2270},
		{2, 3, 10, 410, 4100},
		{3, 4, 5, 593, 2965},
		{10, 1, 1, 1534, 1534},
	}

	for _, test := range tests {
		size, err := txbuilder.EstimateSize(test.inputs, test.outputs)
		require.NoError(t, err)
		require.Equal(t, test.size, size)
		require.Equal(t, 148*test.inputs+34*test.outputs+10+test.inputs, size)

		fee, err := txbuilder.EstimateFee(test.inputs, test.outputs, test.rate)
		require.NoError(t, err)
		require.Equal(t, test.fee, fee)
	}

	t.Run("overflow", func(t *testing.T) {
		_, err := txbuilder.EstimateSize(math.MaxUint64, 1)
		require.ErrorIs(t, err, bitcoin.ErrDecode)

		_, err = txbuilder.EstimateSize(1, math.MaxUint64)
		require.ErrorIs(t, err, bitcoin.ErrDecode)

		_, err = txbuilder.EstimateFee(1, 2, math.MaxUint64)
		require.ErrorIs(t, err, bitcoin.ErrDecode)
	})
}

func TestNewTxOut(t *testing.T) {
	t.Run("amount too big", func(t *testing.T) {
		_, err := txbuilder.NewTxOut(txbuilder.PayToAddress{
			Address: testRecipient,
			Value:   btcutil.MaxSatoshi + 1,
		}, &chaincfg.TestNet3Params)
		require.ErrorIs(t, err, txbuilder.ErrAmountTooBig)
		require.ErrorIs(t, err, bitcoin.ErrDecode)
	})

	t.Run("empty committed script", func(t *testing.T) {
		_, err := txbuilder.NewTxOut(txbuilder.PayToCommittedScript{Value: 1}, &chaincfg.TestNet3Params)
		require.ErrorIs(t, err, bitcoin.ErrDecode)
	})

	t.Run("data carrier", func(t *testing.T) {
		txOut, err := txbuilder.NewTxOut(txbuilder.DataCarrier{Data: []byte{0xde, 0xad}}, &chaincfg.TestNet3Params)
		require.NoError(t, err)
		require.Zero(t, txOut.Value)
		require.Equal(t, []byte{0x6a, 0x02, 0xde, 0xad}, txOut.PkScript)
	})
}
