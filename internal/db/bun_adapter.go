// Copyright (c) 2026 ToeiRei
// Signet - SSH signing key resolver
// This source code is licensed under the MIT license found in the LICENSE file.

package db

import (
	"context"
	"database/sql"
	"fmt"
	"os/user"
	"strings"
	"time"

	"github.com/toeirei/signet/internal/model"
	"github.com/uptrace/bun"
)

// RunModel maps the `runs` table for Bun queries.
type RunModel struct {
	bun.BaseModel `bun:"table:runs"`
	ID            int    `bun:"id,pk,autoincrement"`
	StartedAt     string `bun:"started_at"`
	DurationMS    int64  `bun:"duration_ms"`
	FilePath      string `bun:"file_path"`
	SignerCount   int    `bun:"signer_count"`
	KeyCount      int    `bun:"key_count"`
}

// SignerKeyModel maps the `signer_keys` table for Bun queries.
type SignerKeyModel struct {
	bun.BaseModel `bun:"table:signer_keys"`
	ID            int    `bun:"id,pk,autoincrement"`
	Signer        string `bun:"signer"`
	Source        string `bun:"source"`
	Algorithm     string `bun:"algorithm"`
	Fingerprint   string `bun:"fingerprint"`
	FirstSeen     string `bun:"first_seen"`
	LastSeen      string `bun:"last_seen"`
}

// AuditLogModel maps the audit_log table.
type AuditLogModel struct {
	bun.BaseModel `bun:"table:audit_log"`
	ID            int    `bun:"id,pk,autoincrement"`
	Timestamp     string `bun:"timestamp"`
	Username      string `bun:"username"`
	Action        string `bun:"action"`
	Details       string `bun:"details"`
}

// --- Mapping helpers (centralized conversions) ---

func runModelToModel(r RunModel) model.Run {
	return model.Run{
		ID:         r.ID,
		StartedAt:  r.StartedAt,
		DurationMS: r.DurationMS,
		FilePath:   r.FilePath,
		Signers:    r.SignerCount,
		Keys:       r.KeyCount,
	}
}

func signerKeyModelToModel(k SignerKeyModel) model.SignerKey {
	return model.SignerKey{
		ID:          k.ID,
		Signer:      k.Signer,
		Source:      k.Source,
		Algorithm:   k.Algorithm,
		Fingerprint: k.Fingerprint,
		FirstSeen:   k.FirstSeen,
		LastSeen:    k.LastSeen,
	}
}

func auditLogModelToModel(a AuditLogModel) model.AuditLogEntry {
	return model.AuditLogEntry{
		ID:        a.ID,
		Timestamp: a.Timestamp,
		Username:  a.Username,
		Action:    a.Action,
		Details:   a.Details,
	}
}

// nowStamp returns the timestamp format stored in the database. RFC 3339 in
// UTC sorts lexicographically in chronological order.
func nowStamp() string {
	return time.Now().UTC().Format(time.RFC3339)
}

// execRawProvider is a small interface used to accept either *bun.DB or *bun.Tx
// since both expose NewRaw(...).* methods returning *bun.RawQuery.
type execRawProvider interface {
	NewRaw(query string, args ...interface{}) *bun.RawQuery
}

// ExecRaw executes a raw SQL statement using the provided Bun DB or transaction.
// It returns the standard sql.Result to match existing call sites.
func ExecRaw(ctx context.Context, exec execRawProvider, query string, args ...interface{}) (sql.Result, error) {
	return exec.NewRaw(query, args...).Exec(ctx)
}

// QueryRawInto runs a raw query and scans the result into dest using Bun's RawQuery.Scan.
func QueryRawInto(ctx context.Context, exec execRawProvider, dest interface{}, query string, args ...interface{}) error {
	return exec.NewRaw(query, args...).Scan(ctx, dest)
}

// WithTx runs fn within a transaction, committing when fn returns nil and
// rolling back otherwise.
func WithTx(ctx context.Context, bdb *bun.DB, fn func(ctx context.Context, tx bun.Tx) error) error {
	return bdb.RunInTx(ctx, nil, fn)
}

// SaveRunBun inserts a run record and returns its ID.
func SaveRunBun(bdb *bun.DB, run model.Run) (int, error) {
	ctx := context.Background()
	rm := &RunModel{
		StartedAt:   run.StartedAt,
		DurationMS:  run.DurationMS,
		FilePath:    run.FilePath,
		SignerCount: run.Signers,
		KeyCount:    run.Keys,
	}
	if _, err := bdb.NewInsert().Model(rm).Returning("id").Exec(ctx); err != nil {
		return 0, MapDBError(err)
	}
	return rm.ID, nil
}

// GetRunsBun returns runs ordered newest first, limited to limit when positive.
func GetRunsBun(bdb *bun.DB, limit int) ([]model.Run, error) {
	ctx := context.Background()
	var rms []RunModel
	q := bdb.NewSelect().Model(&rms).OrderExpr("id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Scan(ctx); err != nil {
		return nil, err
	}
	out := make([]model.Run, 0, len(rms))
	for _, r := range rms {
		out = append(out, runModelToModel(r))
	}
	return out, nil
}

// PruneRunsBun deletes all but the keep most recent runs. The inner derived
// table keeps the statement valid on MySQL, which rejects LIMIT directly
// inside an IN subquery.
func PruneRunsBun(bdb *bun.DB, keep int) (int64, error) {
	ctx := context.Background()
	if keep < 0 {
		keep = 0
	}
	res, err := ExecRaw(ctx, bdb,
		"DELETE FROM runs WHERE id NOT IN (SELECT id FROM (SELECT id FROM runs ORDER BY id DESC LIMIT ?) AS keep_rows)", keep)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// GetSignerKeysBun returns the tracked key state for all signers.
func GetSignerKeysBun(bdb *bun.DB) ([]model.SignerKey, error) {
	ctx := context.Background()
	var kms []SignerKeyModel
	if err := bdb.NewSelect().Model(&kms).OrderExpr("signer, source, fingerprint").Scan(ctx); err != nil {
		return nil, err
	}
	out := make([]model.SignerKey, 0, len(kms))
	for _, k := range kms {
		out = append(out, signerKeyModelToModel(k))
	}
	return out, nil
}

// SyncSignerKeysBun reconciles the stored key state for one signer and source
// with the keys observed during a run, all within a single transaction.
// Previously unseen fingerprints are inserted, surviving ones get their
// last_seen bumped and fingerprints that are gone from the source are
// deleted. Every appearance and disappearance is recorded in the audit log.
func SyncSignerKeysBun(bdb *bun.DB, signer, source string, observed []model.SignerKey) (added, removed []model.SignerKey, err error) {
	ctx := context.Background()
	now := nowStamp()
	err = WithTx(ctx, bdb, func(ctx context.Context, tx bun.Tx) error {
		var existing []SignerKeyModel
		if err := tx.NewSelect().Model(&existing).
			Where("signer = ?", signer).
			Where("source = ?", source).
			Scan(ctx); err != nil {
			return err
		}
		known := make(map[string]SignerKeyModel, len(existing))
		for _, k := range existing {
			known[k.Fingerprint] = k
		}

		seen := make(map[string]bool, len(observed))
		for _, k := range observed {
			if seen[k.Fingerprint] {
				continue
			}
			seen[k.Fingerprint] = true
			if prev, ok := known[k.Fingerprint]; ok {
				if _, err := tx.NewUpdate().Model((*SignerKeyModel)(nil)).
					Set("last_seen = ?", now).
					Where("id = ?", prev.ID).
					Exec(ctx); err != nil {
					return err
				}
				continue
			}
			row := &SignerKeyModel{
				Signer:      signer,
				Source:      source,
				Algorithm:   k.Algorithm,
				Fingerprint: k.Fingerprint,
				FirstSeen:   now,
				LastSeen:    now,
			}
			if _, err := tx.NewInsert().Model(row).Exec(ctx); err != nil {
				return MapDBError(err)
			}
			added = append(added, signerKeyModelToModel(*row))
		}

		for _, prev := range existing {
			if seen[prev.Fingerprint] {
				continue
			}
			if _, err := tx.NewDelete().Model((*SignerKeyModel)(nil)).
				Where("id = ?", prev.ID).
				Exec(ctx); err != nil {
				return err
			}
			removed = append(removed, signerKeyModelToModel(prev))
		}

		for _, k := range added {
			details := fmt.Sprintf("signer: %s, source: %s, key: %s %s", signer, source, k.Algorithm, k.Fingerprint)
			if err := insertAuditEntry(ctx, tx, "NEW_KEY", details); err != nil {
				return err
			}
		}
		for _, k := range removed {
			details := fmt.Sprintf("signer: %s, source: %s, key: %s %s", signer, source, k.Algorithm, k.Fingerprint)
			if err := insertAuditEntry(ctx, tx, "KEY_REMOVED", details); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return added, removed, nil
}

// GetAllAuditLogEntriesBun returns all audit log entries, most recent first.
func GetAllAuditLogEntriesBun(bdb *bun.DB) ([]model.AuditLogEntry, error) {
	ctx := context.Background()
	var am []AuditLogModel
	if err := bdb.NewSelect().Model(&am).OrderExpr("id DESC").Scan(ctx); err != nil {
		return nil, err
	}
	out := make([]model.AuditLogEntry, 0, len(am))
	for _, a := range am {
		out = append(out, auditLogModelToModel(a))
	}
	return out, nil
}

// LogActionBun inserts an audit log entry with the current OS user.
func LogActionBun(bdb *bun.DB, action string, details string) error {
	return insertAuditEntry(context.Background(), bdb, action, details)
}

func insertAuditEntry(ctx context.Context, idb bun.IDB, action, details string) error {
	entry := &AuditLogModel{
		Timestamp: nowStamp(),
		Username:  currentUsername(),
		Action:    action,
		Details:   details,
	}
	_, err := idb.NewInsert().Model(entry).Exec(ctx)
	return MapDBError(err)
}

// currentUsername returns the OS user recorded in audit entries. Windows
// style DOMAIN\user names are reduced to the bare user part.
func currentUsername() string {
	curUser, err := user.Current()
	if err != nil {
		return "unknown"
	}
	if parts := strings.Split(curUser.Username, `\`); len(parts) > 1 {
		return parts[1]
	}
	return curUser.Username
}

// ExportDataForBackupBun exports all tables' data into a model.BackupData using a Bun transaction.
func ExportDataForBackupBun(bdb *bun.DB) (*model.BackupData, error) {
	ctx := context.Background()
	var backup *model.BackupData
	err := WithTx(ctx, bdb, func(ctx context.Context, tx bun.Tx) error {
		backup = &model.BackupData{SchemaVersion: 1}

		var runs []RunModel
		if err := tx.NewSelect().Model(&runs).OrderExpr("id").Scan(ctx); err != nil {
			return err
		}
		for _, r := range runs {
			backup.Runs = append(backup.Runs, runModelToModel(r))
		}

		var keys []SignerKeyModel
		if err := tx.NewSelect().Model(&keys).OrderExpr("id").Scan(ctx); err != nil {
			return err
		}
		for _, k := range keys {
			backup.SignerKeys = append(backup.SignerKeys, signerKeyModelToModel(k))
		}

		var entries []AuditLogModel
		if err := tx.NewSelect().Model(&entries).OrderExpr("id").Scan(ctx); err != nil {
			return err
		}
		for _, e := range entries {
			backup.AuditLog = append(backup.AuditLog, auditLogModelToModel(e))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return backup, nil
}

// ImportDataFromBackupBun wipes all tables and restores them from the backup
// within a single transaction. Row IDs are preserved.
func ImportDataFromBackupBun(bdb *bun.DB, backup *model.BackupData) error {
	ctx := context.Background()
	return WithTx(ctx, bdb, func(ctx context.Context, tx bun.Tx) error {
		tables := []interface{}{
			(*AuditLogModel)(nil),
			(*SignerKeyModel)(nil),
			(*RunModel)(nil),
		}
		for _, t := range tables {
			if _, err := tx.NewDelete().Model(t).Where("1 = 1").Exec(ctx); err != nil {
				return err
			}
		}

		for _, r := range backup.Runs {
			rm := &RunModel{
				ID:          r.ID,
				StartedAt:   r.StartedAt,
				DurationMS:  r.DurationMS,
				FilePath:    r.FilePath,
				SignerCount: r.Signers,
				KeyCount:    r.Keys,
			}
			if _, err := tx.NewInsert().Model(rm).Exec(ctx); err != nil {
				return MapDBError(err)
			}
		}
		for _, k := range backup.SignerKeys {
			km := &SignerKeyModel{
				ID:          k.ID,
				Signer:      k.Signer,
				Source:      k.Source,
				Algorithm:   k.Algorithm,
				Fingerprint: k.Fingerprint,
				FirstSeen:   k.FirstSeen,
				LastSeen:    k.LastSeen,
			}
			if _, err := tx.NewInsert().Model(km).Exec(ctx); err != nil {
				return MapDBError(err)
			}
		}
		for _, e := range backup.AuditLog {
			am := &AuditLogModel{
				ID:        e.ID,
				Timestamp: e.Timestamp,
				Username:  e.Username,
				Action:    e.Action,
				Details:   e.Details,
			}
			if _, err := tx.NewInsert().Model(am).Exec(ctx); err != nil {
				return MapDBError(err)
			}
		}
		return nil
	})
}
