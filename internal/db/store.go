// Copyright (c) 2026 ToeiRei
// Signet - SSH signing key resolver
// This source code is licensed under the MIT license found in the LICENSE file.

package db

import (
	"github.com/toeirei/signet/internal/model"
)

// Store defines the interface for all database operations in Signet.
// This allows for multiple database backends to be implemented.
type Store interface {
	// Run history methods
	SaveRun(run model.Run) (int, error)
	GetRuns(limit int) ([]model.Run, error)
	PruneRuns(keep int) (int64, error)

	// Signer key state methods
	GetSignerKeys() ([]model.SignerKey, error)
	SyncSignerKeys(signer, source string, observed []model.SignerKey) (added, removed []model.SignerKey, err error)

	// Audit log methods
	GetAllAuditLogEntries() ([]model.AuditLogEntry, error)
	LogAction(action string, details string) error

	// Backup methods
	ExportDataForBackup() (*model.BackupData, error)
	ImportDataFromBackup(backup *model.BackupData) error
}
