// Copyright (C) 2024 Creditor Corp. Group.
// See LICENSE for copying information.

// Package keyfile decrypts GPG encrypted keyfile holding WIF private key.
package keyfile

import (
	"bytes"
	"context"
	"os/exec"
	"strings"

	"github.com/pkg/errors"

	"github.com/gskapka/bitcoff/bitcoin"
	"github.com/gskapka/bitcoff/bitcoin/signer"
)

// DefaultGPGBin defines gpg binary looked up in PATH.
const DefaultGPGBin = "gpg"

// ErrEmptyOutput defines that decryption produced no output.
var ErrEmptyOutput = errors.New("keyfile decryption produced no output")

// Decryptor decrypts keyfile with external gpg binary.
type Decryptor struct {
	gpgBin string
}

// NewDecryptor is a constructor for Decryptor, empty gpgBin means DefaultGPGBin.
func NewDecryptor(gpgBin string) *Decryptor {
	if gpgBin == "" {
		gpgBin = DefaultGPGBin
	}

	return &Decryptor{gpgBin: gpgBin}
}

// Decrypt runs `gpg -d <path>` and returns trimmed plaintext. When nothing is
// written to stdout the error carries what gpg printed to stderr.
func (d *Decryptor) Decrypt(ctx context.Context, path string) (string, error) {
	var stdout, stderr bytes.Buffer

	cmd := exec.CommandContext(ctx, d.gpgBin, "-d", path)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	runErr := cmd.Run()

	plaintext := strings.TrimSpace(stdout.String())
	if plaintext == "" {
		return "", bitcoin.WrapError(bitcoin.ErrIO, errors.Wrapf(ErrEmptyOutput, "%s -d %s (exit: %v): %s",
			d.gpgBin, path, runErr, strings.TrimSpace(stderr.String())))
	}
	if runErr != nil {
		return "", bitcoin.WrapError(bitcoin.ErrIO, errors.Wrapf(runErr, "%s -d %s", d.gpgBin, path))
	}

	return plaintext, nil
}

// PrivateKey decrypts keyfile and parses its content as WIF.
func (d *Decryptor) PrivateKey(ctx context.Context, path string) (*signer.PrivateKey, error) {
	wif, err := d.Decrypt(ctx, path)
	if err != nil {
		return nil, err
	}

	return signer.NewPrivateKeyFromWIF(wif)
}
