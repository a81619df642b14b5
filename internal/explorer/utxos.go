// Copyright (C) 2024 Creditor Corp. Group.
// See LICENSE for copying information.

package explorer

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/gskapka/bitcoff/bitcoin"
	"github.com/gskapka/bitcoff/bitcoin/txbuilder"
)

// fetchConcurrency defines how many transactions are requested at once.
const fetchConcurrency = 4

var (
	// ErrTxIDMismatch defines that fetched transaction hash differs from the requested one.
	ErrTxIDMismatch = errors.New("fetched transaction id mismatch")
	// ErrValueMismatch defines that listed utxo value differs from the transaction output value.
	ErrValueMismatch = errors.New("utxo value mismatch")
)

// FetchUTXOSet lists unspent outputs of the address and turns each into a utxo record
// by fetching its transaction. Records keep the order of the explorer listing.
func FetchUTXOSet(ctx context.Context, service Service, address string) (bitcoin.UTXOSet, error) {
	infos, err := service.AddressUTXOs(ctx, address)
	if err != nil {
		return nil, err
	}

	utxos := make(bitcoin.UTXOSet, len(infos))
	group, ctx := errgroup.WithContext(ctx)
	group.SetLimit(fetchConcurrency)

	for idx, info := range infos {
		group.Go(func() (err error) {
			utxos[idx], err = fetchUTXO(ctx, service, info)
			return err
		})
	}

	if err = group.Wait(); err != nil {
		return nil, err
	}

	log.Infof("Fetched %d utxo(s) of %s", len(utxos), address)

	return utxos, nil
}

// fetchUTXO fetches transaction of the listed utxo and builds utxo record from its output.
func fetchUTXO(ctx context.Context, service Service, info UTXOInfo) (bitcoin.UTXO, error) {
	txHex, err := service.TxHex(ctx, info.TxID)
	if err != nil {
		return bitcoin.UTXO{}, err
	}

	tx, err := txbuilder.DecodeTxHex(txHex)
	if err != nil {
		return bitcoin.UTXO{}, errors.Wrapf(err, "decode tx %s", info.TxID)
	}

	if txHash := tx.TxHash(); txHash.String() != info.TxID {
		return bitcoin.UTXO{}, bitcoin.WrapError(bitcoin.ErrIO,
			fmt.Errorf("%w: want %s, got %s", ErrTxIDMismatch, info.TxID, txHash))
	}

	utxo, err := bitcoin.NewUTXOFromTx(tx, info.Vout)
	if err != nil {
		return bitcoin.UTXO{}, errors.Wrapf(err, "utxo %s:%d", info.TxID, info.Vout)
	}

	if utxo.Value() != info.Value {
		return bitcoin.UTXO{}, bitcoin.WrapError(bitcoin.ErrIO,
			fmt.Errorf("%w: %s:%d listed %d, output %d", ErrValueMismatch, info.TxID, info.Vout, info.Value, utxo.Value()))
	}

	return utxo, nil
}
