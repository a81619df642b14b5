// Copyright (C) 2024 Creditor Corp. Group.
// See LICENSE for copying information.

package bitcoin

import (
	"bytes"
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
)

// maxDescriptorScriptSize defines the biggest allowed placeholder script in descriptor.
const maxDescriptorScriptSize = wire.MaxMessagePayload

var (
	// ErrTrailingBytes defines that encoded data has bytes after the decoded value.
	ErrTrailingBytes = errors.New("unexpected trailing bytes")
	// ErrMissingField defines that required json field is absent.
	ErrMissingField = errors.New("missing required field")
	// ErrOutputIndex defines that referenced output does not exist in transaction.
	ErrOutputIndex = errors.New("output index out of range")
)

// utxoJSON is the canonical utxo json shape.
type utxoJSON struct {
	Value          *uint64 `json:"value"`
	SerializedUTXO *string `json:"serialized_utxo"`
}

// EncodeDescriptor returns consensus-encoded transaction input without witness.
//
//	┌──────────────┬──────────┬──────────────────────────────┐
//	│ field        │ size     │ description                  │
//	├==============┼==========┼==============================┤
//	│ txid         │ 32       │ previous tx hash, internal   │
//	│              │          │ byte order.                  │
//	├──────────────┼──────────┼──────────────────────────────┤
//	│ index        │ 4        │ previous output index, LE.   │
//	├──────────────┼──────────┼──────────────────────────────┤
//	│ script       │ varint+n │ placeholder unlocking script │
//	├──────────────┼──────────┼──────────────────────────────┤
//	│ sequence     │ 4        │ LE.                          │
//	└──────────────┴──────────┴──────────────────────────────┘
func EncodeDescriptor(txIn *wire.TxIn) (_ []byte, err error) {
	defer func() { err = WrapError(ErrSerialization, err) }()

	if txIn == nil {
		return nil, errors.New("nil descriptor")
	}

	w := bytes.NewBuffer(make([]byte, 0, chainhash.HashSize+4+1+len(txIn.SignatureScript)+4))
	w.Write(txIn.PreviousOutPoint.Hash[:])
	w.Write(binary.LittleEndian.AppendUint32(nil, txIn.PreviousOutPoint.Index))

	err = wire.WriteVarBytes(w, 0, txIn.SignatureScript)
	if err != nil {
		return nil, err
	}

	w.Write(binary.LittleEndian.AppendUint32(nil, txIn.Sequence))

	return w.Bytes(), nil
}

// DecodeDescriptor parses consensus-encoded transaction input, rejects trailing bytes.
func DecodeDescriptor(data []byte) (_ *wire.TxIn, err error) {
	defer func() { err = WrapError(ErrSerialization, err) }()

	var (
		r     = bytes.NewReader(data)
		txIn  = new(wire.TxIn)
		field [4]byte
	)

	if _, err = io.ReadFull(r, txIn.PreviousOutPoint.Hash[:]); err != nil {
		return nil, fmt.Errorf("read previous tx hash: %w", err)
	}

	if _, err = io.ReadFull(r, field[:]); err != nil {
		return nil, fmt.Errorf("read previous output index: %w", err)
	}
	txIn.PreviousOutPoint.Index = binary.LittleEndian.Uint32(field[:])

	txIn.SignatureScript, err = wire.ReadVarBytes(r, 0, maxDescriptorScriptSize, "script")
	if err != nil {
		return nil, err
	}

	if _, err = io.ReadFull(r, field[:]); err != nil {
		return nil, fmt.Errorf("read sequence: %w", err)
	}
	txIn.Sequence = binary.LittleEndian.Uint32(field[:])

	if r.Len() != 0 {
		return nil, ErrTrailingBytes
	}

	return txIn, nil
}

// NewUTXOFromTx builds UTXO that spends tx output with provided index.
// Output locking script is used as the descriptor placeholder script.
func NewUTXOFromTx(tx *wire.MsgTx, index uint32) (UTXO, error) {
	if tx == nil || int(index) >= len(tx.TxOut) {
		return UTXO{}, WrapError(ErrDecode, ErrOutputIndex)
	}

	txOut := tx.TxOut[index]
	if txOut.Value < 0 {
		return UTXO{}, WrapError(ErrDecode, fmt.Errorf("negative output value %d", txOut.Value))
	}

	txHash := tx.TxHash()

	return NewUTXO(uint64(txOut.Value), wire.NewTxIn(wire.NewOutPoint(&txHash, index), bytes.Clone(txOut.PkScript), nil))
}

// UTXOsForScript returns utxos of every tx output locked by provided script.
func UTXOsForScript(tx *wire.MsgTx, pkScript []byte) (UTXOSet, error) {
	var utxos UTXOSet
	for idx, txOut := range tx.TxOut {
		if !bytes.Equal(txOut.PkScript, pkScript) {
			continue
		}

		utxo, err := NewUTXOFromTx(tx, uint32(idx))
		if err != nil {
			return nil, err
		}

		utxos = append(utxos, utxo)
	}

	return utxos, nil
}

// MarshalJSON implements json.Marshaler with {"value", "serialized_utxo"} shape.
func (u UTXO) MarshalJSON() ([]byte, error) {
	serialized := hex.EncodeToString(u.serialized)

	return json.Marshal(utxoJSON{Value: &u.value, SerializedUTXO: &serialized})
}

// UnmarshalJSON implements json.Unmarshaler. Unknown fields, missing fields and
// malformed descriptors are rejected. Hex may be prefixed with "0x".
func (u *UTXO) UnmarshalJSON(data []byte) (err error) {
	var raw utxoJSON
	if err = decodeStrictJSON(data, &raw); err != nil {
		return err
	}

	switch {
	case raw.Value == nil:
		return WrapError(ErrDecode, fmt.Errorf("%w: value", ErrMissingField))
	case raw.SerializedUTXO == nil:
		return WrapError(ErrDecode, fmt.Errorf("%w: serialized_utxo", ErrMissingField))
	}

	serialized, err := hex.DecodeString(strings.TrimPrefix(*raw.SerializedUTXO, "0x"))
	if err != nil {
		return WrapError(ErrDecode, err)
	}

	*u, err = NewUTXOFromSerialized(*raw.Value, serialized)

	return err
}

// ParseUTXOJSON parses single utxo json record.
func ParseUTXOJSON(data []byte) (UTXO, error) {
	var utxo UTXO
	err := decodeStrictJSON(data, &utxo)

	return utxo, err
}

// ParseUTXOSetJSON parses json array of utxo records.
func ParseUTXOSetJSON(data []byte) (UTXOSet, error) {
	var set UTXOSet
	err := decodeStrictJSON(data, &set)

	return set, err
}

// JSON returns utxo set encoded as json array, empty set is encoded as [].
func (s UTXOSet) JSON() ([]byte, error) {
	if s == nil {
		s = UTXOSet{}
	}

	data, err := json.Marshal(s)

	return data, WrapError(ErrSerialization, err)
}

// decodeStrictJSON decodes exactly one json value, unknown fields are not allowed.
func decodeStrictJSON(data []byte, v any) error {
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(v); err != nil {
		if errors.Is(err, ErrSerialization) {
			return err
		}

		return WrapError(ErrDecode, err)
	}

	if _, err := decoder.Token(); !errors.Is(err, io.EOF) {
		return WrapError(ErrDecode, ErrTrailingBytes)
	}

	return nil
}
