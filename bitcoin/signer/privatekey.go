// Copyright (C) 2024 Creditor Corp. Group.
// See LICENSE for copying information.

package signer

import (
	"errors"
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/ecdsa"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/txscript"

	"github.com/gskapka/bitcoff/bitcoin"
	"github.com/gskapka/bitcoff/bitcoin/utils"
)

var (
	// ErrUnknownNetwork defines that WIF prefix does not match any supported network.
	ErrUnknownNetwork = errors.New("unknown private key network")
	// ErrDigestSize defines that signed digest is not 32 bytes long.
	ErrDigestSize = errors.New("digest must be 32 bytes")
)

// wifNetworks defines networks private key can be imported for, in lookup order.
// NOTE: testnet, regtest and signet share WIF prefix, such keys resolve to testnet.
var wifNetworks = []*chaincfg.Params{&chaincfg.MainNetParams, &chaincfg.TestNet3Params}

// PrivateKey holds secret scalar with network and public key compression metadata.
// It is immutable once constructed.
type PrivateKey struct {
	key           *btcec.PrivateKey
	networkParams *chaincfg.Params
	compressed    bool // WIF compression flag, defines public key serialization for address.
}

// NewPrivateKey is a constructor for PrivateKey.
func NewPrivateKey(key *btcec.PrivateKey, networkParams *chaincfg.Params, compressed bool) *PrivateKey {
	return &PrivateKey{
		key:           key,
		networkParams: networkParams,
		compressed:    compressed,
	}
}

// NewPrivateKeyFromWIF parses wallet import format string, network and compression flag are taken from it.
func NewPrivateKeyFromWIF(wif string) (*PrivateKey, error) {
	decoded, err := btcutil.DecodeWIF(wif)
	if err != nil {
		return nil, bitcoin.WrapError(bitcoin.ErrKey, err)
	}

	for _, networkParams := range wifNetworks {
		if decoded.IsForNet(networkParams) {
			return NewPrivateKey(decoded.PrivKey, networkParams, decoded.CompressPubKey), nil
		}
	}

	return nil, bitcoin.WrapError(bitcoin.ErrKey, ErrUnknownNetwork)
}

// GeneratePrivateKey returns random private key for provided network flagged as compressed.
// INFO: scalar range check is done by the curve library.
func GeneratePrivateKey(networkParams *chaincfg.Params) (*PrivateKey, error) {
	key, err := btcec.NewPrivateKey()
	if err != nil {
		return nil, bitcoin.WrapError(bitcoin.ErrKey, err)
	}

	return NewPrivateKey(key, networkParams, true), nil
}

// Network returns network params the key belongs to.
func (k *PrivateKey) Network() *chaincfg.Params {
	return k.networkParams
}

// IsCompressed returns WIF compression flag.
func (k *PrivateKey) IsCompressed() bool {
	return k.compressed
}

// PublicKeyBytes returns 33 bytes compressed public key used in committed scripts.
func (k *PrivateKey) PublicKeyBytes() []byte {
	return k.key.PubKey().SerializeCompressed()
}

// AddressPublicKeyBytes returns public key serialized according to the compression flag,
// as wallets do for imported WIF. Its hash is the key's address, so it is the key pushed
// into pay-to-public-key-hash script-sigs.
func (k *PrivateKey) AddressPublicKeyBytes() []byte {
	if k.compressed {
		return k.PublicKeyBytes()
	}

	return k.key.PubKey().SerializeUncompressed()
}

// Address returns pay-to-public-key-hash address for the key's network.
func (k *PrivateKey) Address() (*btcutil.AddressPubKeyHash, error) {
	address, err := utils.NewPubKeyHashAddress(k.AddressPublicKeyBytes(), k.networkParams)

	return address, bitcoin.WrapError(bitcoin.ErrKey, err)
}

// SignDigest returns deterministic (RFC6979) low-S ECDSA signature of the digest in DER form.
func (k *PrivateKey) SignDigest(digest []byte) ([]byte, error) {
	if len(digest) != chainhash.HashSize {
		return nil, bitcoin.WrapError(bitcoin.ErrSigning, fmt.Errorf("%w, got %d", ErrDigestSize, len(digest)))
	}

	return ecdsa.Sign(k.key, digest).Serialize(), nil
}

// SignDigestWithSigHash returns DER signature with signature hash type appended as the last byte,
// it is the exact byte sequence placed into a script-sig.
func (k *PrivateKey) SignDigestWithSigHash(digest []byte, hashType txscript.SigHashType) ([]byte, error) {
	signature, err := k.SignDigest(digest)
	if err != nil {
		return nil, err
	}

	return append(signature, byte(hashType)), nil
}

// WIF returns key encoded in wallet import format.
func (k *PrivateKey) WIF() (string, error) {
	wif, err := btcutil.NewWIF(k.key, k.networkParams, k.compressed)
	if err != nil {
		return "", bitcoin.WrapError(bitcoin.ErrKey, err)
	}

	return wif.String(), nil
}

// String implements fmt.Stringer, renders key back to WIF.
func (k *PrivateKey) String() string {
	wif, err := k.WIF()
	if err != nil {
		return ""
	}

	return wif
}
