// Copyright (C) 2024 Creditor Corp. Group.
// See LICENSE for copying information.

package txbuilder

import (
	"fmt"

	"github.com/gskapka/bitcoff/bitcoin"
)

type causerSign string

const (
	// CauserSpend defines that spend amount alone exceeds utxo total.
	CauserSpend causerSign = "spend"
	// CauserFee defines that utxo total covers spend amount, but not the fee.
	CauserFee causerSign = "fee"
)

// InsufficientError is the error type to describe insufficient funds errors with details.
type InsufficientError struct {
	Need   uint64 // spend amount plus fee in Satoshi.
	Have   uint64 // utxo total in Satoshi.
	Causer causerSign
}

// NewInsufficientError is a constructor for InsufficientError.
func NewInsufficientError(need, have uint64) *InsufficientError {
	return &InsufficientError{need, have, ""}
}

// Error returns error description.
func (e *InsufficientError) Error() string {
	var errMsg = fmt.Sprintf("%s: need %d, have %d", bitcoin.ErrInsufficientFunds, e.Need, e.Have)

	if e.Causer != "" {
		errMsg += " (" + string(e.Causer) + ")"
	}

	return errMsg
}

// Is implements comparator method for [errors] package.
func (e *InsufficientError) Is(target error) bool {
	return target == bitcoin.ErrInsufficientFunds
}

// setCauser updates InsufficientError with provided causer.
func (e *InsufficientError) setCauser(causer causerSign) *InsufficientError {
	e.Causer = causer
	return e
}
