// Copyright (C) 2024 Creditor Corp. Group.
// See LICENSE for copying information.

package main

import (
	"io"

	"github.com/btcsuite/btclog"
	"github.com/pkg/errors"

	"github.com/gskapka/bitcoff/bitcoin/signer"
	"github.com/gskapka/bitcoff/bitcoin/txbuilder"
	"github.com/gskapka/bitcoff/internal/explorer"
	"github.com/gskapka/bitcoff/internal/store"
)

// subsystem loggers tags.
const (
	tagCLI      = "BCOF"
	tagBuilder  = "TXBD"
	tagSigner   = "SIGN"
	tagExplorer = "EXPL"
	tagStore    = "STOR"
)

// ErrLogLevel defines that log level name is not supported.
var ErrLogLevel = errors.New("unknown log level, use one of: none, info, debug, trace, error")

// log is the cli logger, disabled until setupLogging is called.
var log = btclog.Disabled

// parseLogLevel converts cli log level name to btclog level.
func parseLogLevel(name string) (btclog.Level, error) {
	switch name {
	case "none", "off":
		return btclog.LevelOff, nil
	case "error", "info", "debug", "trace", "warn":
		level, _ := btclog.LevelFromString(name)
		return level, nil
	default:
		return btclog.LevelOff, errors.Wrapf(ErrLogLevel, "%q", name)
	}
}

// setupLogging creates backend writing to w and hands sub-loggers to every package that logs.
func setupLogging(w io.Writer, levelName string) error {
	level, err := parseLogLevel(levelName)
	if err != nil {
		return err
	}

	backend := btclog.NewBackend(w)
	newLogger := func(tag string) btclog.Logger {
		logger := backend.Logger(tag)
		logger.SetLevel(level)

		return logger
	}

	log = newLogger(tagCLI)
	txbuilder.UseLogger(newLogger(tagBuilder))
	signer.UseLogger(newLogger(tagSigner))
	explorer.UseLogger(newLogger(tagExplorer))
	store.UseLogger(newLogger(tagStore))

	return nil
}
