// Copyright (C) 2022 Creditor Corp. Group.
// See LICENSE for copying information.

package numbers_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gskapka/bitcoff/internal/numbers"
)

func TestNumbers(t *testing.T) {
	t.Run("Add", func(t *testing.T) {
		sum, err := numbers.Add(1, 2)
		require.NoError(t, err)
		require.EqualValues(t, 3, sum)

		sum, err = numbers.Add(math.MaxUint64-1, 1)
		require.NoError(t, err)
		require.EqualValues(t, uint64(math.MaxUint64), sum)

		_, err = numbers.Add(math.MaxUint64, 1)
		require.ErrorIs(t, err, numbers.ErrOverflow)
	})

	t.Run("Mul", func(t *testing.T) {
		product, err := numbers.Mul(327, 100)
		require.NoError(t, err)
		require.EqualValues(t, 32700, product)

		product, err = numbers.Mul(0, math.MaxUint64)
		require.NoError(t, err)
		require.Zero(t, product)

		_, err = numbers.Mul(math.MaxUint64/2+1, 2)
		require.ErrorIs(t, err, numbers.ErrOverflow)
	})

	t.Run("Sum", func(t *testing.T) {
		sum, err := numbers.Sum()
		require.NoError(t, err)
		require.Zero(t, sum)

		sum, err = numbers.Sum(891168, 5001, 1)
		require.NoError(t, err)
		require.EqualValues(t, 896170, sum)

		_, err = numbers.Sum(math.MaxUint64, 0, 1)
		require.ErrorIs(t, err, numbers.ErrOverflow)
	})

	t.Run("SumBy", func(t *testing.T) {
		type item struct{ amount uint64 }
		items := []item{{10}, {20}, {30}}

		sum, err := numbers.SumBy(items, func(i item) uint64 { return i.amount })
		require.NoError(t, err)
		require.EqualValues(t, 60, sum)
	})
}
