// Copyright (C) 2024 Creditor Corp. Group.
// See LICENSE for copying information.

package sequencereader

import (
	"errors"
	"fmt"
)

// ErrSequenceEnded defines that there are not enough items left in the sequence.
var ErrSequenceEnded = errors.New("the sequence is ended")

// SequenceReader reads items of a sequence one by one or in fixed size groups,
// e.g. `<to> <amount>` pairs of command line arguments.
type SequenceReader[T any] struct {
	s   []T
	idx int
}

// New is a constructor for SequenceReader.
func New[T any](seq []T) *SequenceReader[T] {
	return &SequenceReader[T]{s: seq}
}

// HasNext returns true is sequence is not ended.
func (sr *SequenceReader[T]) HasNext() bool {
	return sr.idx < len(sr.s)
}

// Next returns next element of the sequence.
func (sr *SequenceReader[T]) Next() (T, error) {
	if !sr.HasNext() {
		return *new(T), ErrSequenceEnded
	}

	sr.idx++

	return sr.s[sr.idx-1], nil
}

// NextN returns next n elements of the sequence, nothing is consumed if less than n are left.
func (sr *SequenceReader[T]) NextN(n int) ([]T, error) {
	if n < 0 || sr.Len() < n {
		return nil, fmt.Errorf("%w: want %d, left %d", ErrSequenceEnded, n, sr.Len())
	}

	group := sr.s[sr.idx : sr.idx+n : sr.idx+n]
	sr.idx += n

	return group, nil
}

// Len returns how many items are left.
func (sr *SequenceReader[T]) Len() int {
	return len(sr.s) - sr.idx
}
