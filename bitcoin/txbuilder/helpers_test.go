// Copyright (C) 2024 Creditor Corp. Group.
// See LICENSE for copying information.

package txbuilder_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gskapka/bitcoff/bitcoin"
	"github.com/gskapka/bitcoff/bitcoin/txbuilder"
)

func TestTxHex(t *testing.T) {
	t.Run("decode and encode", func(t *testing.T) {
		for _, txHex := range []string{scenarioTxHex, committedSpendTxHex} {
			tx, err := txbuilder.DecodeTxHex(txHex)
			require.NoError(t, err)

			encoded, err := txbuilder.SignedTxToHex(tx)
			require.NoError(t, err)
			require.Equal(t, txHex, encoded)

			tx, err = txbuilder.DecodeTxHex("0x" + txHex)
			require.NoError(t, err)
			require.EqualValues(t, 1, tx.Version)
		}
	})

	t.Run("malformed", func(t *testing.T) {
		_, err := txbuilder.DecodeTxHex("zz")
		require.ErrorIs(t, err, bitcoin.ErrDecode)

		_, err = txbuilder.DecodeTxHex(scenarioTxHex[:40])
		require.ErrorIs(t, err, bitcoin.ErrSerialization)

		_, err = txbuilder.DecodeTxHex(scenarioTxHex + "00")
		require.ErrorIs(t, err, bitcoin.ErrSerialization)
		require.ErrorIs(t, err, bitcoin.ErrTrailingBytes)
	})
}
