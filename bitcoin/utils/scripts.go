// Copyright (C) 2025 Creditor Corp. Group.
// See LICENSE for copying information.

package utils

import (
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/txscript"

	"github.com/gskapka/bitcoff/bitcoin"
)

const (
	// pubKeyHashSize defines hash160 size in bytes.
	pubKeyHashSize = 20
	// commitmentHashSize defines committed script hash size in bytes.
	commitmentHashSize = chainhash.HashSize
)

// NewPayToPubKeyHashScript builds pay-to-public-key-hash locking script.
// INFO: Script will have the next format: {OP_DUP OP_HASH160 <pubKeyHash> OP_EQUALVERIFY OP_CHECKSIG}.
func NewPayToPubKeyHashScript(pubKeyHash []byte) ([]byte, error) {
	if len(pubKeyHash) != pubKeyHashSize {
		return nil, bitcoin.WrapError(bitcoin.ErrDecode, fmt.Errorf("invalid public key hash size %d", len(pubKeyHash)))
	}

	return txscript.NewScriptBuilder().
		AddOp(txscript.OP_DUP).
		AddOp(txscript.OP_HASH160).
		AddData(pubKeyHash).
		AddOp(txscript.OP_EQUALVERIFY).
		AddOp(txscript.OP_CHECKSIG).
		Script()
}

// NewScriptHashScript builds pay-to-script-hash locking script for provided redeem script.
// INFO: Script will have the next format: {OP_HASH160 <hash160(redeemScript)> OP_EQUAL}.
func NewScriptHashScript(redeemScript []byte) ([]byte, error) {
	return txscript.NewScriptBuilder().
		AddOp(txscript.OP_HASH160).
		AddData(btcutil.Hash160(redeemScript)).
		AddOp(txscript.OP_EQUAL).
		Script()
}

// NewUnspendableScript builds provably unspendable script (e.g. OP_RETURN) with optional data added after.
// INFO: Def: https://en.bitcoin.it/wiki/OP_RETURN.
func NewUnspendableScript(msg ...byte) ([]byte, error) {
	scriptBuilder := txscript.NewScriptBuilder().AddOp(txscript.OP_RETURN)
	if len(msg) > 0 {
		scriptBuilder.AddData(msg)
	}

	return scriptBuilder.Script()
}

// MustUnspendableScript uses NewUnspendableScript, panics in case of error.
func MustUnspendableScript(msg ...byte) []byte {
	script, err := NewUnspendableScript(msg...)
	if err != nil {
		panic(err)
	}

	return script
}

// NewCommittedScript builds script that commits to external data hash and is spendable by public key owner.
// INFO: Script will have the next format: {<hash32> OP_DROP <pubKey33> OP_CHECKSIG}.
// NOTE: The script is non-standard, the whole script is pushed into the spending script-sig.
func NewCommittedScript(hash, pubKey []byte) ([]byte, error) {
	if len(hash) != commitmentHashSize {
		return nil, bitcoin.WrapError(bitcoin.ErrDecode, fmt.Errorf("invalid commitment hash size %d", len(hash)))
	}
	if len(pubKey) != btcec.PubKeyBytesLenCompressed {
		return nil, bitcoin.WrapError(bitcoin.ErrDecode, fmt.Errorf("invalid compressed public key size %d", len(pubKey)))
	}

	return txscript.NewScriptBuilder().
		AddData(hash).
		AddOp(txscript.OP_DROP).
		AddData(pubKey).
		AddOp(txscript.OP_CHECKSIG).
		Script()
}

// MustCommittedScript uses NewCommittedScript, panics in case of error.
func MustCommittedScript(hash, pubKey []byte) []byte {
	script, err := NewCommittedScript(hash, pubKey)
	if err != nil {
		panic(err)
	}

	return script
}

// NewPayToPubKeyHashScriptSig builds unlocking script for pay-to-public-key-hash output.
// INFO: Script will have the next format: {<signature+hashType> <pubKey>}.
func NewPayToPubKeyHashScriptSig(signature, pubKey []byte) ([]byte, error) {
	return txscript.NewScriptBuilder().
		AddData(signature).
		AddData(pubKey).
		Script()
}

// NewCommittedScriptSig builds unlocking script for committed script output.
// INFO: Script will have the next format: {<signature+hashType> <redeemScript>}.
func NewCommittedScriptSig(signature, redeemScript []byte) ([]byte, error) {
	return txscript.NewScriptBuilder().
		AddData(signature).
		AddData(redeemScript).
		Script()
}
