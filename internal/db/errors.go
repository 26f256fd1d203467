// Copyright (c) 2026 ToeiRei
// Signet - SSH signing key resolver
// This source code is licensed under the MIT license found in the LICENSE file.

// package db provides the data access layer for Signet.
// This file folds driver-specific errors into package sentinels.
package db // import "github.com/toeirei/signet/internal/db"

import (
	"errors"
	"strings"
)

// ErrDuplicate reports an insert that collided with an existing row. The
// schema's only unique index is the fingerprint per signer and source, so
// a violated key constraint always means this.
var ErrDuplicate = errors.New("duplicate record")

// duplicateProbes holds the message fragments the supported drivers emit
// for a unique constraint violation. Matching on message text keeps the
// driver packages out of the shared adapter code.
var duplicateProbes = []string{
	"unique constraint", // modernc.org/sqlite
	"sqlstate 23505",    // pgx unique_violation
	"error 1062",        // mysql ER_DUP_ENTRY
	"duplicate",
}

// MapDBError maps constraint violations onto the package sentinels.
// Errors it does not recognize pass through unchanged.
func MapDBError(err error) error {
	if err == nil {
		return nil
	}
	msg := strings.ToLower(err.Error())
	for _, probe := range duplicateProbes {
		if strings.Contains(msg, probe) {
			return ErrDuplicate
		}
	}
	return err
}
