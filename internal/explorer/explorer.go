// Copyright (C) 2024 Creditor Corp. Group.
// See LICENSE for copying information.

// Package explorer provides client of the Esplora block explorer HTTP API
// (blockstream.info compatible) used to fetch spendable outputs of an address.
package explorer

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/gskapka/bitcoff/bitcoin"
)

// maxErrorBodyBytes defines how many bytes of a failed response body are kept in the error.
const maxErrorBodyBytes = 1024

// ErrStatus defines that explorer responded with non 2xx status.
var ErrStatus = errors.New("unexpected explorer response status")

// UTXOInfo describes unspent output as listed by the explorer.
type UTXOInfo struct {
	TxID  string `json:"txid"`
	Vout  uint32 `json:"vout"`
	Value uint64 `json:"value"`
}

// Service is the explorer surface used to assemble utxo sets.
type Service interface {
	// AddressUTXOs returns unspent outputs of the address.
	AddressUTXOs(ctx context.Context, address string) ([]UTXOInfo, error)
	// TxHex returns hex of the serialized transaction.
	TxHex(ctx context.Context, txID string) (string, error)
}

// ensures that Client implements Service.
var _ Service = (*Client)(nil)

// Client is an Esplora API client.
type Client struct {
	endpoint *url.URL
	client   *http.Client
}

// NewClient is a constructor for Client, endpoint is the api root, e.g. https://blockstream.info/testnet/api/.
func NewClient(endpoint string, timeout time.Duration) (*Client, error) {
	if !strings.HasSuffix(endpoint, "/") {
		endpoint += "/"
	}

	parsed, err := url.Parse(endpoint)
	if err != nil {
		return nil, bitcoin.WrapError(bitcoin.ErrDecode, errors.Wrapf(err, "parse explorer endpoint %q", endpoint))
	}

	return &Client{
		endpoint: parsed,
		client:   &http.Client{Timeout: timeout},
	}, nil
}

// AddressUTXOs implements Service.
func (c *Client) AddressUTXOs(ctx context.Context, address string) ([]UTXOInfo, error) {
	body, err := c.get(ctx, "address/"+url.PathEscape(address)+"/utxo")
	if err != nil {
		return nil, err
	}

	var utxos []UTXOInfo
	if err = json.Unmarshal(body, &utxos); err != nil {
		return nil, bitcoin.WrapError(bitcoin.ErrIO, errors.Wrapf(err, "decode utxos of %s", address))
	}

	log.Debugf("%d utxo(s) listed for %s", len(utxos), address)

	return utxos, nil
}

// TxHex implements Service.
func (c *Client) TxHex(ctx context.Context, txID string) (string, error) {
	body, err := c.get(ctx, "tx/"+url.PathEscape(txID)+"/hex")
	if err != nil {
		return "", err
	}

	return strings.TrimSpace(string(body)), nil
}

// get performs GET request to the path relative to endpoint and returns response body.
func (c *Client) get(ctx context.Context, path string) ([]byte, error) {
	reqURL := c.endpoint.JoinPath(path).String()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, bitcoin.WrapError(bitcoin.ErrIO, errors.Wrap(err, "create request"))
	}

	log.Tracef("GET %s", reqURL)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, bitcoin.WrapError(bitcoin.ErrIO, errors.Wrapf(err, "GET %s", reqURL))
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
		return nil, bitcoin.WrapError(bitcoin.ErrIO,
			fmt.Errorf("%w: GET %s: HTTP %d: %s", ErrStatus, reqURL, resp.StatusCode, strings.TrimSpace(string(body))))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, bitcoin.WrapError(bitcoin.ErrIO, errors.Wrapf(err, "read %s", reqURL))
	}

	return body, nil
}
