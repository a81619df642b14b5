// Copyright (C) 2024 Creditor Corp. Group.
// See LICENSE for copying information.

package txbuilder

import (
	"github.com/btcsuite/btclog"
)

// log is a logger that is initialized with no output filters.
// The package does not log anything until UseLogger is called.
var log = btclog.Disabled

// UseLogger sets logger used by the package.
func UseLogger(logger btclog.Logger) {
	log = logger
}
