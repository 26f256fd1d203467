// Copyright (c) 2026 ToeiRei
// Signet - SSH signing key resolver
// This source code is licensed under the MIT license found in the LICENSE file.

// package db provides the data access layer for Signet.
// This file contains the MySQL implementation of the database store.
package db // import "github.com/toeirei/signet/internal/db"

import (
	"github.com/toeirei/signet/internal/model"
	"github.com/uptrace/bun"
	_ "github.com/go-sql-driver/mysql" // MySQL driver
)

// MySQLStore is the MySQL implementation of the Store interface.
type MySQLStore struct {
	bun *bun.DB
}

// SaveRun records a completed update run and returns its ID.
func (s *MySQLStore) SaveRun(run model.Run) (int, error) {
	return SaveRunBun(s.bun, run)
}

// GetRuns retrieves the most recent runs, newest first.
func (s *MySQLStore) GetRuns(limit int) ([]model.Run, error) {
	return GetRunsBun(s.bun, limit)
}

// PruneRuns deletes all but the most recent keep runs.
func (s *MySQLStore) PruneRuns(keep int) (int64, error) {
	return PruneRunsBun(s.bun, keep)
}

// GetSignerKeys retrieves the tracked key state for all signers.
func (s *MySQLStore) GetSignerKeys() ([]model.SignerKey, error) {
	return GetSignerKeysBun(s.bun)
}

// SyncSignerKeys reconciles the stored key state for a signer and source.
func (s *MySQLStore) SyncSignerKeys(signer, source string, observed []model.SignerKey) ([]model.SignerKey, []model.SignerKey, error) {
	return SyncSignerKeysBun(s.bun, signer, source, observed)
}

// GetAllAuditLogEntries retrieves all entries from the audit log, most recent first.
func (s *MySQLStore) GetAllAuditLogEntries() ([]model.AuditLogEntry, error) {
	return GetAllAuditLogEntriesBun(s.bun)
}

// LogAction records an audit trail event.
func (s *MySQLStore) LogAction(action string, details string) error {
	return LogActionBun(s.bun, action, details)
}

// ExportDataForBackup retrieves all data from the database for a backup.
func (s *MySQLStore) ExportDataForBackup() (*model.BackupData, error) {
	return ExportDataForBackupBun(s.bun)
}

// ImportDataFromBackup restores the database from a backup data structure.
// MySQL advances AUTO_INCREMENT counters past explicitly inserted IDs.
func (s *MySQLStore) ImportDataFromBackup(backup *model.BackupData) error {
	return ImportDataFromBackupBun(s.bun, backup)
}
