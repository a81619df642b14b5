// Copyright (C) 2024 Creditor Corp. Group.
// See LICENSE for copying information.

package bitcoin

import (
	"bytes"

	"github.com/btcsuite/btcd/wire"

	"github.com/gskapka/bitcoff/internal/numbers"
)

// FinalSequence defines sequence number of every input built from utxo.
const FinalSequence uint32 = wire.MaxTxInSequenceNum

// UTXO describes spendable previous output in the form passed between online and offline runs.
// INFO: serialized descriptor is a consensus-encoded transaction input: previous outpoint,
// placeholder unlocking script (the previous output locking script) and sequence, witness is always empty.
type UTXO struct {
	value      uint64 // in Satoshi.
	serialized []byte // consensus-encoded previous output descriptor.
}

// NewUTXO is a constructor for UTXO.
func NewUTXO(value uint64, descriptor *wire.TxIn) (UTXO, error) {
	serialized, err := EncodeDescriptor(descriptor)
	if err != nil {
		return UTXO{}, err
	}

	return UTXO{value: value, serialized: serialized}, nil
}

// NewUTXOFromSerialized returns UTXO from already encoded descriptor, fails if descriptor is malformed.
func NewUTXOFromSerialized(value uint64, serialized []byte) (UTXO, error) {
	if _, err := DecodeDescriptor(serialized); err != nil {
		return UTXO{}, err
	}

	return UTXO{value: value, serialized: bytes.Clone(serialized)}, nil
}

// Value returns utxo value in Satoshi.
func (u UTXO) Value() uint64 {
	return u.value
}

// Serialized returns copy of the consensus-encoded descriptor.
func (u UTXO) Serialized() []byte {
	return bytes.Clone(u.serialized)
}

// TxIn decodes descriptor into transaction input.
func (u UTXO) TxIn() (*wire.TxIn, error) {
	return DecodeDescriptor(u.serialized)
}

// Equal returns true if both utxos have the same value and descriptor.
func (u UTXO) Equal(other UTXO) bool {
	return u.value == other.value && bytes.Equal(u.serialized, other.serialized)
}

// UTXOSet is an ordered utxo collection, order is preserved into transaction inputs.
type UTXOSet []UTXO

// Len returns amount of utxos in set.
func (s UTXOSet) Len() int {
	return len(s)
}

// TotalValue returns sum of all utxo values in Satoshi.
func (s UTXOSet) TotalValue() (uint64, error) {
	total, err := numbers.SumBy(s, UTXO.Value)
	if err != nil {
		return 0, WrapError(ErrSerialization, err)
	}

	return total, nil
}

// TxIns decodes every utxo descriptor preserving set order.
func (s UTXOSet) TxIns() ([]*wire.TxIn, error) {
	txIns := make([]*wire.TxIn, len(s))
	for idx, utxo := range s {
		txIn, err := utxo.TxIn()
		if err != nil {
			return nil, err
		}

		txIns[idx] = txIn
	}

	return txIns, nil
}
