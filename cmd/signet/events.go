// Copyright (c) 2026 ToeiRei
// Signet - SSH signing key resolver
// This source code is licensed under the MIT license found in the LICENSE file.

package main

import (
	"time"

	"github.com/toeirei/signet/internal/i18n"
	"github.com/toeirei/signet/internal/logging"
)

// cliEvents renders resolver events as localized log lines. The resolution
// core reports through this interface instead of logging on its own, so the
// CLI decides wording and verbosity.
type cliEvents struct{}

func (cliEvents) RateLimit(source string, remaining int, reset time.Time) {
	logging.Debugf("%s", i18n.T("update.rate_limit", source, remaining, reset.UTC().Format(time.RFC3339)))
}

func (cliEvents) PaginationStopped(source string, err error) {
	logging.Warnf("%s", i18n.T("update.pagination_skipped", source, err))
}

func (cliEvents) SignerNotFound(signer, source string) {
	logging.Warnf("%s", i18n.T("update.signer_not_found", signer, source))
}

func (cliEvents) NoKeys(signer, source string) {
	logging.Warnf("%s", i18n.T("update.no_keys", signer, source))
}
