// Copyright (C) 2024 Creditor Corp. Group.
// See LICENSE for copying information.

// Package store persists fetched utxo sets and signed transactions in bbolt,
// so that sets fetched online can be spent by an offline run.
package store

import (
	"encoding/json"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/btcsuite/btcd/wire"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.etcd.io/bbolt"

	"github.com/gskapka/bitcoff/bitcoin"
	"github.com/gskapka/bitcoff/bitcoin/txbuilder"
)

var (
	bucketUTXOSets  = []byte("utxo_sets")
	bucketSignedTxs = []byte("signed_txs")
)

// ErrNotFound defines that requested record is absent.
var ErrNotFound = errors.New("not found")

// SignedTx describes stored signed transaction.
type SignedTx struct {
	ID        uuid.UUID `json:"id"`
	TxID      string    `json:"txid"`
	Hex       string    `json:"hex"`
	CreatedAt time.Time `json:"created_at"`
}

// Store wraps a bbolt database.
type Store struct {
	db *bbolt.DB
}

// Open opens or creates the bbolt database at path.
// The parent directory is created if it does not exist.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, bitcoin.WrapError(bitcoin.ErrIO, errors.Wrap(err, "create store directory"))
	}

	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, bitcoin.WrapError(bitcoin.ErrIO, errors.Wrapf(err, "open store %s", path))
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		for _, name := range [][]byte{bucketUTXOSets, bucketSignedTxs} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return errors.Wrapf(err, "create bucket %q", name)
			}
		}

		return nil
	})
	if err != nil {
		_ = db.Close()
		return nil, bitcoin.WrapError(bitcoin.ErrIO, err)
	}

	log.Debugf("Store opened at %s", path)

	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return bitcoin.WrapError(bitcoin.ErrIO, s.db.Close())
}

// PutUTXOSet stores utxo set of the address, replacing previous one.
func (s *Store) PutUTXOSet(address string, utxos bitcoin.UTXOSet) error {
	data, err := utxos.JSON()
	if err != nil {
		return err
	}

	err = s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketUTXOSets).Put([]byte(address), data)
	})
	if err != nil {
		return bitcoin.WrapError(bitcoin.ErrIO, errors.Wrapf(err, "put utxo set of %s", address))
	}

	log.Debugf("%d utxo(s) of %s stored", utxos.Len(), address)

	return nil
}

// UTXOSet returns stored utxo set of the address.
func (s *Store) UTXOSet(address string) (bitcoin.UTXOSet, error) {
	var data []byte
	err := s.db.View(func(tx *bbolt.Tx) error {
		stored := tx.Bucket(bucketUTXOSets).Get([]byte(address))
		if stored == nil {
			return errors.Wrapf(ErrNotFound, "utxo set of %s", address)
		}
		data = append(data, stored...)

		return nil
	})
	if err != nil {
		return nil, bitcoin.WrapError(bitcoin.ErrIO, err)
	}

	return bitcoin.ParseUTXOSetJSON(data)
}

// PutSignedTx stores signed transaction under a new random id.
func (s *Store) PutSignedTx(signedTx *wire.MsgTx) (SignedTx, error) {
	txHex, err := txbuilder.SignedTxToHex(signedTx)
	if err != nil {
		return SignedTx{}, err
	}

	record := SignedTx{
		ID:        uuid.New(),
		TxID:      signedTx.TxHash().String(),
		Hex:       txHex,
		CreatedAt: time.Now().UTC(),
	}

	data, err := json.Marshal(record)
	if err != nil {
		return SignedTx{}, bitcoin.WrapError(bitcoin.ErrSerialization, err)
	}

	err = s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketSignedTxs).Put(record.ID[:], data)
	})
	if err != nil {
		return SignedTx{}, bitcoin.WrapError(bitcoin.ErrIO, errors.Wrapf(err, "put signed tx %s", record.TxID))
	}

	log.Infof("Signed tx %s stored with id %s", record.TxID, record.ID)

	return record, nil
}

// SignedTx returns stored signed transaction by id.
func (s *Store) SignedTx(id uuid.UUID) (SignedTx, error) {
	var record SignedTx
	err := s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketSignedTxs).Get(id[:])
		if data == nil {
			return errors.Wrapf(ErrNotFound, "signed tx %s", id)
		}

		return json.Unmarshal(data, &record)
	})

	return record, bitcoin.WrapError(bitcoin.ErrIO, err)
}

// SignedTxs returns every stored signed transaction ordered by creation time.
func (s *Store) SignedTxs() ([]SignedTx, error) {
	var records []SignedTx
	err := s.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketSignedTxs).ForEach(func(_, data []byte) error {
			var record SignedTx
			if err := json.Unmarshal(data, &record); err != nil {
				return err
			}
			records = append(records, record)

			return nil
		})
	})
	if err != nil {
		return nil, bitcoin.WrapError(bitcoin.ErrIO, err)
	}

	slices.SortStableFunc(records, func(a, b SignedTx) int { return a.CreatedAt.Compare(b.CreatedAt) })

	return records, nil
}
