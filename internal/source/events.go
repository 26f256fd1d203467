// Copyright (c) 2026 ToeiRei
// Signet - SSH signing key resolver
// This source code is licensed under the MIT license found in the LICENSE file.

package source

import "time"

// Events receives notable non-fatal conditions observed while querying a
// source. Implementations must be safe for concurrent use.
type Events interface {
	// RateLimit reports the rate limit state a source returned alongside a
	// response.
	RateLimit(source string, remaining int, reset time.Time)
	// PaginationStopped reports that pagination was cut short by a
	// malformed Link header. Keys collected so far are kept.
	PaginationStopped(source string, err error)
}

// NopEvents discards all events.
type NopEvents struct{}

func (NopEvents) RateLimit(string, int, time.Time) {}

func (NopEvents) PaginationStopped(string, error) {}
