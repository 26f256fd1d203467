// Copyright (c) 2026 ToeiRei
// Signet - SSH signing key resolver
// This source code is licensed under the MIT license found in the LICENSE file.

// package db provides the data access layer for Signet.
// This file contains the PostgreSQL implementation of the database store.
package db // import "github.com/toeirei/signet/internal/db"

import (
	"context"
	"fmt"

	"github.com/toeirei/signet/internal/model"
	"github.com/uptrace/bun"
	_ "github.com/jackc/pgx/v5/stdlib" // pgx database/sql driver
)

// PostgresStore is the PostgreSQL implementation of the Store interface.
type PostgresStore struct {
	bun *bun.DB
}

// SaveRun records a completed update run and returns its ID.
func (s *PostgresStore) SaveRun(run model.Run) (int, error) {
	return SaveRunBun(s.bun, run)
}

// GetRuns retrieves the most recent runs, newest first.
func (s *PostgresStore) GetRuns(limit int) ([]model.Run, error) {
	return GetRunsBun(s.bun, limit)
}

// PruneRuns deletes all but the most recent keep runs.
func (s *PostgresStore) PruneRuns(keep int) (int64, error) {
	return PruneRunsBun(s.bun, keep)
}

// GetSignerKeys retrieves the tracked key state for all signers.
func (s *PostgresStore) GetSignerKeys() ([]model.SignerKey, error) {
	return GetSignerKeysBun(s.bun)
}

// SyncSignerKeys reconciles the stored key state for a signer and source.
func (s *PostgresStore) SyncSignerKeys(signer, source string, observed []model.SignerKey) ([]model.SignerKey, []model.SignerKey, error) {
	return SyncSignerKeysBun(s.bun, signer, source, observed)
}

// GetAllAuditLogEntries retrieves all entries from the audit log, most recent first.
func (s *PostgresStore) GetAllAuditLogEntries() ([]model.AuditLogEntry, error) {
	return GetAllAuditLogEntriesBun(s.bun)
}

// LogAction records an audit trail event.
func (s *PostgresStore) LogAction(action string, details string) error {
	return LogActionBun(s.bun, action, details)
}

// ExportDataForBackup retrieves all data from the database for a backup.
func (s *PostgresStore) ExportDataForBackup() (*model.BackupData, error) {
	return ExportDataForBackupBun(s.bun)
}

// ImportDataFromBackup restores the database from a backup data structure.
// Sequences are resynchronized afterwards so that new inserts do not collide
// with the restored row IDs.
func (s *PostgresStore) ImportDataFromBackup(backup *model.BackupData) error {
	if err := ImportDataFromBackupBun(s.bun, backup); err != nil {
		return err
	}
	return resyncPostgresSequences(s.bun)
}

// resyncPostgresSequences advances the id sequences past the highest
// restored row ID. Inserting explicit IDs leaves sequences untouched, so a
// restore would otherwise make the next insert fail with a duplicate key.
func resyncPostgresSequences(bdb *bun.DB) error {
	ctx := context.Background()
	for _, table := range []string{"runs", "signer_keys", "audit_log"} {
		query := fmt.Sprintf(
			"SELECT setval(pg_get_serial_sequence('%s', 'id'), COALESCE((SELECT MAX(id) FROM %s), 1))",
			table, table)
		if _, err := ExecRaw(ctx, bdb, query); err != nil {
			return fmt.Errorf("failed to resync sequence for %s: %w", table, err)
		}
	}
	return nil
}
