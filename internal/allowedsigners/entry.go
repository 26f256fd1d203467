// Copyright (c) 2026 ToeiRei
// Signet - SSH signing key resolver
// This source code is licensed under the MIT license found in the LICENSE file.

// Package allowedsigners models the OpenSSH allowed_signers file.
// It aggregates resolved public keys into deduplicated, ordered entries
// and serializes them in the format documented in ssh-keygen(1),
// section ALLOWED SIGNERS.
package allowedsigners

import (
	"fmt"
	"strings"
	"time"

	"github.com/toeirei/signet/internal/model"
)

// timestampFormat renders validity timestamps. Timestamps are always
// converted to UTC and suffixed with a literal Z, regardless of the
// zone carried on the underlying value.
const timestampFormat = "20060102150405"

// Entry is a single line of the allowed signers file: one or more
// principals bound to a public key with an optional validity window.
// Identity is structural over (principals, key); the principal list is
// order-sensitive.
type Entry struct {
	Principals []string
	Key        model.PublicKey
}

// NewEntry creates a signer entry. It panics if principals is empty;
// an entry without a principal cannot occur in a validated
// configuration and indicates a programming error.
func NewEntry(principals []string, key model.PublicKey) Entry {
	if len(principals) == 0 {
		panic("signer entry requires at least one principal")
	}
	return Entry{Principals: principals, Key: key}
}

// String renders the entry in the allowed_signers line format:
// principals comma-joined, optional valid-after/valid-before options,
// then the key blob.
func (e Entry) String() string {
	var b strings.Builder
	b.WriteString(strings.Join(e.Principals, ","))

	if e.Key.ValidAfter != nil {
		b.WriteString(" valid-after=")
		b.WriteString(e.Key.ValidAfter.UTC().Format(timestampFormat))
		b.WriteByte('Z')
	}
	if e.Key.ValidBefore != nil {
		b.WriteString(" valid-before=")
		b.WriteString(e.Key.ValidBefore.UTC().Format(timestampFormat))
		b.WriteByte('Z')
	}

	b.WriteByte(' ')
	b.WriteString(e.Key.Blob)
	return b.String()
}

// Compare orders entries structurally: principals element-wise, then
// key blob, then validity window (absent sorts before present). The
// resulting order is total, so repeated runs over an unchanged key set
// serialize byte-identically.
func (e Entry) Compare(other Entry) int {
	if c := comparePrincipals(e.Principals, other.Principals); c != 0 {
		return c
	}
	if c := strings.Compare(e.Key.Blob, other.Key.Blob); c != 0 {
		return c
	}
	if c := compareTime(e.Key.ValidAfter, other.Key.ValidAfter); c != 0 {
		return c
	}
	return compareTime(e.Key.ValidBefore, other.Key.ValidBefore)
}

// identity returns an unambiguous key for set membership, using the
// same fields Compare consults.
func (e Entry) identity() string {
	return fmt.Sprintf("%q|%s|%s|%s",
		e.Principals, e.Key.Blob, identityTime(e.Key.ValidAfter), identityTime(e.Key.ValidBefore))
}

func comparePrincipals(a, b []string) int {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		if c := strings.Compare(a[i], b[i]); c != 0 {
			return c
		}
	}
	return len(a) - len(b)
}

func compareTime(a, b *time.Time) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	default:
		return a.Compare(*b)
	}
}

func identityTime(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return fmt.Sprintf("%d", t.UnixNano())
}
