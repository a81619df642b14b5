// Copyright (C) 2024 Creditor Corp. Group.
// See LICENSE for copying information.

package sequencereader_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gskapka/bitcoff/internal/sequencereader"
)

func TestSequenceReader(t *testing.T) {
	seq := []string{"mudzxCq9aCQ4Una9MmayvJVCF1Tj9fypiM", "5001", "moBSQbHn7N9BC9pdtAMnA7GBiALzNMQJyE", "1337"}

	t.Run("HasNext", func(t *testing.T) {
		sr := sequencereader.New(seq)
		require.True(t, sr.HasNext())

		_, _ = sr.Next()
		_, _ = sr.Next()
		_, _ = sr.Next()
		require.True(t, sr.HasNext())

		_, _ = sr.Next()
		require.False(t, sr.HasNext())
	})

	t.Run("Next", func(t *testing.T) {
		sr := sequencereader.New(seq)
		for idx, expected := range seq {
			require.Equal(t, len(seq)-idx, sr.Len())

			val, err := sr.Next()
			require.NoError(t, err)
			require.Equal(t, expected, val)
		}

		_, err := sr.Next()
		require.ErrorIs(t, err, sequencereader.ErrSequenceEnded)
		require.Zero(t, sr.Len())
	})

	t.Run("NextN", func(t *testing.T) {
		sr := sequencereader.New(seq)

		pair, err := sr.NextN(2)
		require.NoError(t, err)
		require.Equal(t, seq[:2], pair)

		_, err = sr.NextN(3)
		require.ErrorIs(t, err, sequencereader.ErrSequenceEnded)
		require.Equal(t, 2, sr.Len())

		pair, err = sr.NextN(2)
		require.NoError(t, err)
		require.Equal(t, seq[2:], pair)
		require.False(t, sr.HasNext())

		_, err = sr.NextN(-1)
		require.ErrorIs(t, err, sequencereader.ErrSequenceEnded)
	})

	t.Run("empty", func(t *testing.T) {
		sr := sequencereader.New[string](nil)
		require.False(t, sr.HasNext())

		_, err := sr.Next()
		require.ErrorIs(t, err, sequencereader.ErrSequenceEnded)

		group, err := sr.NextN(0)
		require.NoError(t, err)
		require.Empty(t, group)
	})
}
