// Copyright (C) 2024 Creditor Corp. Group.
// See LICENSE for copying information.

package signer

import (
	"errors"
	"fmt"
	"runtime"

	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"
	"golang.org/x/sync/errgroup"

	"github.com/gskapka/bitcoff/bitcoin"
)

// SigHashType defines the only signature hash type used for input signing.
const SigHashType = txscript.SigHashAll

var (
	// ErrSubScriptsMismatch defines that sub scripts amount differs from transaction inputs amount.
	ErrSubScriptsMismatch = errors.New("sub scripts amount does not match inputs amount")
	// ErrNetworkMismatch defines that private key belongs to another network.
	ErrNetworkMismatch = errors.New("private key network mismatch")
)

// SignLegacyParams defines parameters for SignLegacy method.
type SignLegacyParams struct {
	Tx         *wire.MsgTx // unsigned transaction, is not modified.
	SubScripts [][]byte    // per input script substituted into the signed input while hashing.
	PrivateKey *PrivateKey
}

// signLegacyInputParams defines parameters for signLegacyInput method.
type signLegacyInputParams struct {
	tx         *wire.MsgTx
	input      int
	subScript  []byte
	privateKey *PrivateKey
}

// Signer provides transaction signing related logic.
type Signer struct {
	networkParams *chaincfg.Params
}

// NewSigner is a constructor for Signer.
func NewSigner(networkParams *chaincfg.Params) *Signer {
	return &Signer{
		networkParams: networkParams,
	}
}

// SignLegacy computes legacy signature hash of every input and signs it, returns signatures
// (with hash type byte appended) positionally matching transaction inputs.
// INFO: every signature hash depends on the unsigned transaction only, so inputs are signed concurrently.
func (signer *Signer) SignLegacy(params SignLegacyParams) ([][]byte, error) {
	if params.PrivateKey == nil {
		return nil, bitcoin.WrapError(bitcoin.ErrKey, errors.New("no private key provided"))
	}
	if params.PrivateKey.Network().PrivateKeyID != signer.networkParams.PrivateKeyID {
		return nil, bitcoin.WrapError(bitcoin.ErrKey, fmt.Errorf("%w: want %s, got %s",
			ErrNetworkMismatch, signer.networkParams.Name, params.PrivateKey.Network().Name))
	}
	if len(params.SubScripts) != len(params.Tx.TxIn) {
		return nil, bitcoin.WrapError(bitcoin.ErrSigning, fmt.Errorf("%w: %d sub scripts, %d inputs",
			ErrSubScriptsMismatch, len(params.SubScripts), len(params.Tx.TxIn)))
	}

	var (
		signatures = make([][]byte, len(params.Tx.TxIn))
		group      errgroup.Group
	)
	group.SetLimit(runtime.NumCPU())

	for input := range params.Tx.TxIn {
		group.Go(func() (err error) {
			signatures[input], err = signer.signLegacyInput(signLegacyInputParams{
				tx:         params.Tx,
				input:      input,
				subScript:  params.SubScripts[input],
				privateKey: params.PrivateKey,
			})

			return err
		})
	}

	if err := group.Wait(); err != nil {
		return nil, err
	}

	return signatures, nil
}

// signLegacyInput computes legacy signature hash of one input and signs it.
func (signer *Signer) signLegacyInput(params signLegacyInputParams) ([]byte, error) {
	hash, err := txscript.CalcSignatureHash(params.subScript, SigHashType, params.tx, params.input)
	if err != nil {
		return nil, bitcoin.WrapError(bitcoin.ErrSigning, fmt.Errorf("input %d signature hash: %w", params.input, err))
	}

	signature, err := params.privateKey.SignDigestWithSigHash(hash, SigHashType)
	if err != nil {
		return nil, fmt.Errorf("input %d: %w", params.input, err)
	}

	log.Tracef("Input %d signature hash %x signed", params.input, hash)

	return signature, nil
}
