// Copyright (C) 2024 Creditor Corp. Group.
// See LICENSE for copying information.

package txbuilder

import (
	"bytes"
	"encoding/hex"
	"strings"

	"github.com/btcsuite/btcd/wire"

	"github.com/gskapka/bitcoff/bitcoin"
)

// SignedTxToHex returns lowercase hex of legacy transaction serialization.
func SignedTxToHex(tx *wire.MsgTx) (string, error) {
	var buf bytes.Buffer
	buf.Grow(tx.SerializeSizeStripped())
	if err := tx.SerializeNoWitness(&buf); err != nil {
		return "", bitcoin.WrapError(bitcoin.ErrSerialization, err)
	}

	return hex.EncodeToString(buf.Bytes()), nil
}

// DecodeTxHex parses hex (optionally 0x prefixed) transaction serialization.
// Witness serialization is accepted as well, e.g. funding transactions of spent utxos.
func DecodeTxHex(s string) (*wire.MsgTx, error) {
	data, err := hex.DecodeString(strings.TrimPrefix(strings.TrimSpace(s), "0x"))
	if err != nil {
		return nil, bitcoin.WrapError(bitcoin.ErrDecode, err)
	}

	tx := new(wire.MsgTx)
	reader := bytes.NewReader(data)
	if err = tx.Deserialize(reader); err != nil {
		return nil, bitcoin.WrapError(bitcoin.ErrSerialization, err)
	}
	if reader.Len() != 0 {
		return nil, bitcoin.WrapError(bitcoin.ErrSerialization, bitcoin.ErrTrailingBytes)
	}

	return tx, nil
}
