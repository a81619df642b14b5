// Copyright (C) 2024 Creditor Corp. Group.
// See LICENSE for copying information.

package explorer

import (
	"context"
)

// ensures that Mock implements Service.
var _ Service = (*Mock)(nil)

// Mock is a Service with replaceable methods, for offline runs and tests.
type Mock struct {
	AddressUTXOsFn func(ctx context.Context, address string) ([]UTXOInfo, error)
	TxHexFn        func(ctx context.Context, txID string) (string, error)
}

// AddressUTXOs implements Service.
func (m *Mock) AddressUTXOs(ctx context.Context, address string) ([]UTXOInfo, error) {
	return m.AddressUTXOsFn(ctx, address)
}

// TxHex implements Service.
func (m *Mock) TxHex(ctx context.Context, txID string) (string, error) {
	return m.TxHexFn(ctx, txID)
}
