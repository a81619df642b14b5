// Copyright (C) 2024 Creditor Corp. Group.
// See LICENSE for copying information.

package txbuilder

import (
	"github.com/gskapka/bitcoff/bitcoin"
	"github.com/gskapka/bitcoff/internal/numbers"
)

const (
	// headerSizeBytes defines estimated tx header size: version, lock time and in/out counters.
	headerSizeBytes uint64 = 10
	// inputSizeBytes defines estimated pay-to-public-key-hash input size with compressed key:
	// outpoint (36), script length (1), signature push (73), public key push (34), sequence (4).
	inputSizeBytes uint64 = 148
	// inputSlackBytes defines extra byte added per input.
	inputSlackBytes uint64 = 1
	// outputSizeBytes defines estimated pay-to-public-key-hash output size:
	// value (8), script length (1), script (25).
	outputSizeBytes uint64 = 34
)

// EstimateSize returns estimated legacy transaction size in bytes:
// inputs*148 + outputs*34 + 10 + inputs.
// NOTE: DER signatures are 71-72 bytes long, so real size may slightly differ from the estimate.
func EstimateSize(inputs, outputs uint64) (uint64, error) {
	inputsSize, err := numbers.Mul(inputs, inputSizeBytes+inputSlackBytes)
	if err != nil {
		return 0, bitcoin.WrapError(bitcoin.ErrDecode, err)
	}

	outputsSize, err := numbers.Mul(outputs, outputSizeBytes)
	if err != nil {
		return 0, bitcoin.WrapError(bitcoin.ErrDecode, err)
	}

	size, err := numbers.Sum(inputsSize, outputsSize, headerSizeBytes)

	return size, bitcoin.WrapError(bitcoin.ErrDecode, err)
}

// EstimateFee returns estimated fee in Satoshi for provided fee rate in Satoshi per byte.
func EstimateFee(inputs, outputs, satoshiPerByte uint64) (uint64, error) {
	size, err := EstimateSize(inputs, outputs)
	if err != nil {
		return 0, err
	}

	fee, err := numbers.Mul(size, satoshiPerByte)

	return fee, bitcoin.WrapError(bitcoin.ErrDecode, err)
}
