// Copyright (C) 2024 Creditor Corp. Group.
// See LICENSE for copying information.

// Package commitment derives scripts that commit to an external identifier
// (e.g. a foreign-chain address) hashed together with a nonce.
//
// Implemented protocol: redeem script {<dsha256(identifier || LE64(nonce))> OP_DROP <pubKey33> OP_CHECKSIG},
// deposit address is the pay-to-script-hash address of the script, the script is spent by {<signature> <script>}.
// The hash160/dup/equalverify script variant is deprecated and not supported.
package commitment

import (
	"encoding/binary"
	"encoding/hex"
	"errors"
	"strings"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/chaincfg/chainhash"

	"github.com/gskapka/bitcoff/bitcoin"
	"github.com/gskapka/bitcoff/bitcoin/utils"
)

// ErrEmptyIdentifier defines that no identifier bytes are provided.
var ErrEmptyIdentifier = errors.New("empty identifier")

// Hash returns double sha256 of identifier concatenated with little-endian nonce.
func Hash(identifier []byte, nonce uint64) chainhash.Hash {
	data := make([]byte, 0, len(identifier)+8)
	data = append(data, identifier...)
	data = binary.LittleEndian.AppendUint64(data, nonce)

	return chainhash.DoubleHashH(data)
}

// Script returns committed redeem script for public key and commitment hash.
func Script(pubKey []byte, hash chainhash.Hash) ([]byte, error) {
	return utils.NewCommittedScript(hash[:], pubKey)
}

// DepositAddress returns pay-to-script-hash address of the script committing to identifier and nonce.
func DepositAddress(pubKey, identifier []byte, nonce uint64, chainParams *chaincfg.Params) (*btcutil.AddressScriptHash, error) {
	if len(identifier) == 0 {
		return nil, bitcoin.WrapError(bitcoin.ErrDecode, ErrEmptyIdentifier)
	}

	script, err := Script(pubKey, Hash(identifier, nonce))
	if err != nil {
		return nil, err
	}

	address, err := utils.NewScriptHashAddress(script, chainParams)

	return address, bitcoin.WrapError(bitcoin.ErrDecode, err)
}

// ParseIdentifier decodes hex identifier, "0x" prefix is optional.
func ParseIdentifier(s string) ([]byte, error) {
	identifier, err := hex.DecodeString(strings.TrimPrefix(s, "0x"))
	if err != nil {
		return nil, bitcoin.WrapError(bitcoin.ErrDecode, err)
	}
	if len(identifier) == 0 {
		return nil, bitcoin.WrapError(bitcoin.ErrDecode, ErrEmptyIdentifier)
	}

	return identifier, nil
}
