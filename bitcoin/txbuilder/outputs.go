// Copyright (C) 2024 Creditor Corp. Group.
// See LICENSE for copying information.

package txbuilder

import (
	"errors"
	"fmt"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/wire"

	"github.com/gskapka/bitcoff/bitcoin"
	"github.com/gskapka/bitcoff/bitcoin/utils"
)

// ErrAmountTooBig defines that output amount exceeds total bitcoin supply.
var ErrAmountTooBig = errors.New("amount exceeds max satoshi")

// Output describes transaction output specification, one of:
// PayToAddress, DataCarrier or PayToCommittedScript.
type Output interface {
	// Amount returns output value in Satoshi.
	Amount() uint64
	// lockingScript builds output locking script.
	lockingScript(chainParams *chaincfg.Params) ([]byte, error)
}

// PayToAddress defines pay-to-public-key-hash output.
type PayToAddress struct {
	Address string
	Value   uint64 // in Satoshi.
}

// Amount implements Output.
func (o PayToAddress) Amount() uint64 { return o.Value }

func (o PayToAddress) lockingScript(chainParams *chaincfg.Params) ([]byte, error) {
	return utils.NewPayToAddressScript(o.Address, chainParams)
}

// DataCarrier defines zero value OP_RETURN output with embedded data.
type DataCarrier struct {
	Data []byte
}

// Amount implements Output.
func (o DataCarrier) Amount() uint64 { return 0 }

func (o DataCarrier) lockingScript(*chaincfg.Params) ([]byte, error) {
	script, err := utils.NewUnspendableScript(o.Data...)

	return script, bitcoin.WrapError(bitcoin.ErrDecode, err)
}

// PayToCommittedScript defines output that funds committed script, locked by the script hash.
type PayToCommittedScript struct {
	Script []byte // committed redeem script.
	Value  uint64 // in Satoshi.
}

// Amount implements Output.
func (o PayToCommittedScript) Amount() uint64 { return o.Value }

func (o PayToCommittedScript) lockingScript(*chaincfg.Params) ([]byte, error) {
	if len(o.Script) == 0 {
		return nil, bitcoin.WrapError(bitcoin.ErrDecode, errors.New("empty committed script"))
	}

	script, err := utils.NewScriptHashScript(o.Script)

	return script, bitcoin.WrapError(bitcoin.ErrDecode, err)
}

// NewTxOut builds transaction output from specification.
func NewTxOut(output Output, chainParams *chaincfg.Params) (*wire.TxOut, error) {
	if output.Amount() > btcutil.MaxSatoshi {
		return nil, bitcoin.WrapError(bitcoin.ErrDecode, fmt.Errorf("%w: %d", ErrAmountTooBig, output.Amount()))
	}

	script, err := output.lockingScript(chainParams)
	if err != nil {
		return nil, err
	}

	return wire.NewTxOut(int64(output.Amount()), script), nil
}
