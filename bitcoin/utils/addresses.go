// Copyright (C) 2025 Creditor Corp. Group.
// See LICENSE for copying information.

package utils

import (
	"errors"
	"fmt"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"

	"github.com/gskapka/bitcoff/bitcoin"
)

var (
	// ErrUnsupportedAddress defines that address is not pay-to-public-key-hash.
	ErrUnsupportedAddress = errors.New("only pay-to-public-key-hash addresses are supported")
	// ErrAddressNetwork defines that address belongs to another network.
	ErrAddressNetwork = errors.New("address is not for the network")
)

// DecodePayToPubKeyHashAddress decodes base58 address and ensures it is pay-to-public-key-hash for provided network.
func DecodePayToPubKeyHashAddress(address string, chainParams *chaincfg.Params) (_ *btcutil.AddressPubKeyHash, err error) {
	defer func() { err = bitcoin.WrapError(bitcoin.ErrDecode, err) }()

	decoded, err := btcutil.DecodeAddress(address, chainParams)
	if err != nil {
		return nil, fmt.Errorf("decode address %q: %w", address, err)
	}

	pubKeyHashAddress, ok := decoded.(*btcutil.AddressPubKeyHash)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedAddress, address)
	}

	if !pubKeyHashAddress.IsForNet(chainParams) {
		return nil, fmt.Errorf("%w %s: %q", ErrAddressNetwork, chainParams.Name, address)
	}

	return pubKeyHashAddress, nil
}

// NewPayToAddressScript returns pay-to-public-key-hash locking script for provided address.
func NewPayToAddressScript(address string, chainParams *chaincfg.Params) ([]byte, error) {
	decoded, err := DecodePayToPubKeyHashAddress(address, chainParams)
	if err != nil {
		return nil, err
	}

	return NewPayToPubKeyHashScript(decoded.Hash160()[:])
}

// NewPubKeyHashAddress generates pay-to-public-key-hash address from serialized public key.
func NewPubKeyHashAddress(pubKey []byte, chainParams *chaincfg.Params) (*btcutil.AddressPubKeyHash, error) {
	return btcutil.NewAddressPubKeyHash(btcutil.Hash160(pubKey), chainParams)
}

// NewScriptHashAddress generates pay-to-script-hash address from redeem script.
func NewScriptHashAddress(redeemScript []byte, chainParams *chaincfg.Params) (*btcutil.AddressScriptHash, error) {
	return btcutil.NewAddressScriptHash(redeemScript, chainParams)
}

// MustScriptHashAddress uses NewScriptHashAddress, panics in case of error.
func MustScriptHashAddress(redeemScript []byte, chainParams *chaincfg.Params) *btcutil.AddressScriptHash {
	address, err := NewScriptHashAddress(redeemScript, chainParams)
	if err != nil {
		panic(err)
	}

	return address
}
