// Copyright (C) 2024 Creditor Corp. Group.
// See LICENSE for copying information.

package txbuilder

import (
	"bytes"
	"errors"
	"math"

	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"

	"github.com/gskapka/bitcoff/bitcoin"
	"github.com/gskapka/bitcoff/bitcoin/commitment"
	"github.com/gskapka/bitcoff/bitcoin/signer"
	"github.com/gskapka/bitcoff/bitcoin/utils"
	"github.com/gskapka/bitcoff/internal/numbers"
)

const (
	// txVersion defines transaction version for this builder.
	txVersion int32 = 1
	// txLockTime defines transaction lock time for this builder.
	txLockTime uint32 = 0
)

// ErrNoUTXOs defines that utxo set is empty.
var ErrNoUTXOs = errors.New("no utxos to spend")

// Recipient describes pay-to-public-key-hash payment.
type Recipient struct {
	Address string
	Amount  uint64 // in Satoshi.
}

// SignedTxParams describes data needed to build signed pay-to-address transaction.
type SignedTxParams struct {
	SatoshiPerByte  uint64                // fee rate in Satoshi per byte.
	Recipients      []Recipient           // paid in provided order.
	DataCarrier     []byte                // optional OP_RETURN data, nil means no data-carrier output.
	CommittedOutput *PayToCommittedScript // optional committed script funding output.
	ChangeAddress   string                // empty means address of the private key.
	PrivateKey      *signer.PrivateKey
	UTXOs           bitcoin.UTXOSet // spent completely in provided order.
}

// CommittedSpendParams describes data needed to build signed transaction spending committed script utxos.
type CommittedSpendParams struct {
	SatoshiPerByte uint64         // fee rate in Satoshi per byte.
	Recipients     []Recipient    // paid in provided order.
	CommitmentHash chainhash.Hash // hash committed to by the spent script.
	ChangeAddress  string         // empty means address of the private key.
	PrivateKey     *signer.PrivateKey
	UTXOs          bitcoin.UTXOSet // spent completely in provided order.
}

// UnsignedTxParams describes data needed to build unsigned transaction.
type UnsignedTxParams struct {
	SatoshiPerByte uint64   // fee rate in Satoshi per byte.
	Outputs        []Output // outputs in provided order, change is appended.
	ChangeAddress  string
	UTXOs          bitcoin.UTXOSet
	RedeemScript   []byte // committed script used as sub script of every input, nil means utxo locking script.
}

// UnsignedTx is the first build phase: transaction with empty script-sigs.
type UnsignedTx struct {
	tx           *wire.MsgTx
	subScripts   [][]byte
	redeemScript []byte
	fee          uint64
	change       uint64
}

// Tx returns copy of the unsigned transaction.
func (u *UnsignedTx) Tx() *wire.MsgTx { return u.tx.Copy() }

// Fee returns estimated fee in Satoshi.
func (u *UnsignedTx) Fee() uint64 { return u.fee }

// Change returns change amount in Satoshi, 0 means no change output.
func (u *UnsignedTx) Change() uint64 { return u.change }

// SignedInputs is the second build phase: script-sig of every input is assembled.
type SignedInputs struct {
	unsigned   *UnsignedTx
	scriptSigs [][]byte
}

// Finalize returns signed transaction, every input gets its script-sig exactly once.
func (s *SignedInputs) Finalize() *wire.MsgTx {
	tx := s.unsigned.tx.Copy()
	for idx, txIn := range tx.TxIn {
		txIn.SignatureScript = s.scriptSigs[idx]
	}

	return tx
}

// TxBuilder provides transaction building related logic.
type TxBuilder struct {
	networkParams *chaincfg.Params
	signer        *signer.Signer
}

// NewTxBuilder is a constructor for TxBuilder.
func NewTxBuilder(networkParams *chaincfg.Params) *TxBuilder {
	return &TxBuilder{
		networkParams: networkParams,
		signer:        signer.NewSigner(networkParams),
	}
}

// BuildSignedTx constructs and signs pay-to-address transaction with optional data-carrier
// and committed script outputs.
//
//	outputs:
//	┌─────────┬────────────────┬────────────────────────────────────────┐
//	│  index  │      type      │             description                │
//	├=========┼================┼========================================┤
//	│   0 - k │ recipients     │ pay-to-public-key-hash, possibly many  │
//	├─────────┼────────────────┼────────────────────────────────────────┤
//	│     k+1 │ data carrier   │ optional, zero value OP_RETURN output  │
//	├─────────┼────────────────┼────────────────────────────────────────┤
//	│     k+2 │ committed      │ optional, pay-to-script-hash of the    │
//	│         │ script         │ committed script.                      │
//	├─────────┼────────────────┼────────────────────────────────────────┤
//	│     k+3 │ change         │ only if anything is left after fee.    │
//	└─────────┴────────────────┴────────────────────────────────────────┘
func (b *TxBuilder) BuildSignedTx(params SignedTxParams) (*wire.MsgTx, error) {
	outputs := recipientOutputs(params.Recipients)
	if params.DataCarrier != nil {
		outputs = append(outputs, DataCarrier{Data: params.DataCarrier})
	}
	if params.CommittedOutput != nil {
		outputs = append(outputs, *params.CommittedOutput)
	}

	changeAddress, err := b.changeAddress(params.ChangeAddress, params.PrivateKey)
	if err != nil {
		return nil, err
	}

	unsignedTx, err := b.BuildUnsignedTx(UnsignedTxParams{
		SatoshiPerByte: params.SatoshiPerByte,
		Outputs:        outputs,
		ChangeAddress:  changeAddress,
		UTXOs:          params.UTXOs,
	})
	if err != nil {
		return nil, err
	}

	signedInputs, err := b.SignInputs(unsignedTx, params.PrivateKey)
	if err != nil {
		return nil, err
	}

	return signedInputs.Finalize(), nil
}

// BuildCommittedSpendTx constructs and signs transaction spending utxos locked by committed script.
// Every input is signed against the committed script and unlocked by {<signature> <committed script>}.
func (b *TxBuilder) BuildCommittedSpendTx(params CommittedSpendParams) (*wire.MsgTx, error) {
	if params.PrivateKey == nil {
		return nil, bitcoin.WrapError(bitcoin.ErrKey, errors.New("no private key provided"))
	}

	redeemScript, err := commitment.Script(params.PrivateKey.PublicKeyBytes(), params.CommitmentHash)
	if err != nil {
		return nil, err
	}

	changeAddress, err := b.changeAddress(params.ChangeAddress, params.PrivateKey)
	if err != nil {
		return nil, err
	}

	unsignedTx, err := b.BuildUnsignedTx(UnsignedTxParams{
		SatoshiPerByte: params.SatoshiPerByte,
		Outputs:        recipientOutputs(params.Recipients),
		ChangeAddress:  changeAddress,
		UTXOs:          params.UTXOs,
		RedeemScript:   redeemScript,
	})
	if err != nil {
		return nil, err
	}

	signedInputs, err := b.SignInputs(unsignedTx, params.PrivateKey)
	if err != nil {
		return nil, err
	}

	return signedInputs.Finalize(), nil
}

// BuildUnsignedTx builds outputs, checks funds and constructs transaction with empty script-sigs.
// Fee is estimated for provided outputs only, change output is not counted.
func (b *TxBuilder) BuildUnsignedTx(params UnsignedTxParams) (*UnsignedTx, error) {
	if params.UTXOs.Len() == 0 {
		return nil, bitcoin.WrapError(bitcoin.ErrInsufficientFunds, ErrNoUTXOs)
	}

	utxoTotal, err := params.UTXOs.TotalValue()
	if err != nil {
		return nil, err
	}

	spendTotal, err := numbers.SumBy(params.Outputs, Output.Amount)
	if err != nil {
		return nil, bitcoin.WrapError(bitcoin.ErrDecode, err)
	}

	fee, err := EstimateFee(uint64(params.UTXOs.Len()), uint64(len(params.Outputs)), params.SatoshiPerByte)
	if err != nil {
		return nil, err
	}

	log.Infof("UTXO(s) total: %d", utxoTotal)
	log.Infof("Outgoing total: %d", spendTotal)
	log.Infof("Tx fee: %d", fee)

	need, err := numbers.Add(spendTotal, fee)
	if err != nil {
		need = math.MaxUint64
	}
	if need > utxoTotal {
		insufficientErr := NewInsufficientError(need, utxoTotal).setCauser(CauserFee)
		if spendTotal > utxoTotal {
			insufficientErr.setCauser(CauserSpend)
		}

		return nil, insufficientErr
	}

	tx := wire.NewMsgTx(txVersion)
	tx.LockTime = txLockTime

	for _, output := range params.Outputs {
		txOut, err := NewTxOut(output, b.networkParams)
		if err != nil {
			return nil, err
		}

		tx.AddTxOut(txOut)
	}

	change := utxoTotal - need
	if change > 0 {
		log.Infof("Change amount: %d", change)

		txOut, err := NewTxOut(PayToAddress{Address: params.ChangeAddress, Value: change}, b.networkParams)
		if err != nil {
			return nil, err
		}

		tx.AddTxOut(txOut)
	}

	txIns, err := params.UTXOs.TxIns()
	if err != nil {
		return nil, err
	}

	subScripts := make([][]byte, len(txIns))
	for idx, txIn := range txIns {
		input := wire.NewTxIn(&txIn.PreviousOutPoint, nil, nil)
		input.Sequence = txIn.Sequence
		tx.AddTxIn(input)

		subScripts[idx] = txIn.SignatureScript
		if params.RedeemScript != nil {
			subScripts[idx] = params.RedeemScript
		}
	}

	return &UnsignedTx{
		tx:           tx,
		subScripts:   subScripts,
		redeemScript: bytes.Clone(params.RedeemScript),
		fee:          fee,
		change:       change,
	}, nil
}

// SignInputs signs every input of unsigned transaction and assembles script-sigs.
func (b *TxBuilder) SignInputs(unsignedTx *UnsignedTx, privateKey *signer.PrivateKey) (*SignedInputs, error) {
	signatures, err := b.signer.SignLegacy(signer.SignLegacyParams{
		Tx:         unsignedTx.tx,
		SubScripts: unsignedTx.subScripts,
		PrivateKey: privateKey,
	})
	if err != nil {
		return nil, err
	}

	scriptSigs := make([][]byte, len(signatures))
	for idx, signature := range signatures {
		if unsignedTx.redeemScript != nil {
			scriptSigs[idx], err = utils.NewCommittedScriptSig(signature, unsignedTx.redeemScript)
		} else {
			scriptSigs[idx], err = utils.NewPayToPubKeyHashScriptSig(signature, privateKey.AddressPublicKeyBytes())
		}
		if err != nil {
			return nil, bitcoin.WrapError(bitcoin.ErrSigning, err)
		}
	}

	log.Debugf("%d input(s) signed", len(scriptSigs))

	return &SignedInputs{unsigned: unsignedTx, scriptSigs: scriptSigs}, nil
}

// changeAddress returns provided change address or address of the private key if empty.
func (b *TxBuilder) changeAddress(changeAddress string, privateKey *signer.PrivateKey) (string, error) {
	if privateKey == nil {
		return "", bitcoin.WrapError(bitcoin.ErrKey, errors.New("no private key provided"))
	}
	if changeAddress != "" {
		return changeAddress, nil
	}

	address, err := privateKey.Address()
	if err != nil {
		return "", err
	}

	return address.EncodeAddress(), nil
}

// recipientOutputs converts recipients to pay-to-address outputs.
func recipientOutputs(recipients []Recipient) []Output {
	outputs := make([]Output, 0, len(recipients)+2)
	for _, recipient := range recipients {
		outputs = append(outputs, PayToAddress{Address: recipient.Address, Value: recipient.Amount})
	}

	return outputs
}
