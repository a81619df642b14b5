// Copyright (C) 2022 Creditor Corp. Group.
// See LICENSE for copying information.

package numbers

import (
	"errors"
	"math/bits"
)

// ErrOverflow defines that the result does not fit into uint64.
var ErrOverflow = errors.New("uint64 overflow")

// Add returns a + b, fails on overflow.
func Add(a, b uint64) (uint64, error) {
	sum, carry := bits.Add64(a, b, 0)
	if carry != 0 {
		return 0, ErrOverflow
	}

	return sum, nil
}

// Mul returns a * b, fails on overflow.
func Mul(a, b uint64) (uint64, error) {
	hi, lo := bits.Mul64(a, b)
	if hi != 0 {
		return 0, ErrOverflow
	}

	return lo, nil
}

// Sum returns the sum of all provided values, fails on overflow.
func Sum(values ...uint64) (uint64, error) {
	return SumBy(values, func(v uint64) uint64 { return v })
}

// SumBy returns the sum of amounts taken from items by amountFn, fails on overflow.
func SumBy[T any](items []T, amountFn func(T) uint64) (total uint64, err error) {
	for _, item := range items {
		total, err = Add(total, amountFn(item))
		if err != nil {
			return 0, err
		}
	}

	return total, nil
}
