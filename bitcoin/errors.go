// Copyright (C) 2024 Creditor Corp. Group.
// See LICENSE for copying information.

package bitcoin

import (
	"errors"
)

// Error classes returned by transaction construction. Concrete failures are
// joined with one of them, so callers classify with errors.Is.
var (
	// ErrInsufficientFunds defines that utxo total does not cover spend amount and fee.
	ErrInsufficientFunds = errors.New("insufficient funds")
	// ErrDecode defines malformed caller input (address, hex, json, script).
	ErrDecode = errors.New("decode")
	// ErrKey defines invalid WIF or out-of-range secret scalar.
	ErrKey = errors.New("invalid private key")
	// ErrSigning defines signing invariant violation.
	ErrSigning = errors.New("signing")
	// ErrSerialization defines consensus encode/decode failure of a transaction or utxo record.
	ErrSerialization = errors.New("serialization")
	// ErrIO defines failure propagated from an external collaborator.
	ErrIO = errors.New("io")
)

// WrapError joins err with provided error class, keeps nil as is.
func WrapError(class, err error) error {
	if err == nil || errors.Is(err, class) {
		return err
	}

	return errors.Join(class, err)
}
