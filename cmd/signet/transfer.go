// Copyright (c) 2026 ToeiRei
// Signet - SSH signing key resolver
// This source code is licensed under the MIT license found in the LICENSE file.

package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/klauspost/compress/zstd"
	"github.com/spf13/cobra"
	"github.com/toeirei/signet/internal/db"
	"github.com/toeirei/signet/internal/i18n"
	"github.com/toeirei/signet/internal/logging"
	"github.com/toeirei/signet/internal/model"
)

// backupCmd represents the 'backup' command.
// It dumps all data from the database into a single compressed JSON file.
var backupCmd = &cobra.Command{
	Use:   "backup [output-file]",
	Short: "Create a compressed (zstd) JSON backup of the database",
	Long: `Dumps the run history, per-signer key state and the audit log into a
single, Zstandard-compressed JSON file.

If an output file is specified, '.zst' will be appended to the name if it's
not already present. If no output file is specified, a default filename
'signet-backup-YYYY-MM-DD.json.zst' is used.

This file can be used for disaster recovery or for migrating to a different
database backend.

Examples:
  # Backup to a default file (e.g., signet-backup-2026-08-25.json.zst)
  signet backup

  # Backup to a specific file
  signet backup my-backup.json`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		var outputFile string
		if len(args) == 0 {
			outputFile = fmt.Sprintf("signet-backup-%s.json.zst", time.Now().Format("2006-01-02"))
		} else {
			outputFile = args[0]
			if !strings.HasSuffix(outputFile, ".zst") {
				outputFile += ".zst"
			}
		}

		data, err := db.ExportDataForBackup()
		if err != nil {
			logging.Fatalf("%s", i18n.T("backup.failed", err))
		}
		if err := writeCompressedBackup(outputFile, data); err != nil {
			logging.Fatalf("%s", i18n.T("backup.failed", err))
		}
		fmt.Println(i18n.T("backup.success", outputFile))
	},
}

// restoreCmd represents the 'restore' command.
// It restores the database from a compressed JSON backup file.
var restoreCmd = &cobra.Command{
	Use:   "restore <backup-file.zst>",
	Short: "Restore the database from a compressed JSON backup",
	Long: `Restores the database from a Zstandard-compressed JSON backup file.

The restore replaces the run history, key state and audit log with the
backup's contents. It is intended for disaster recovery or for migrating
between database backends (e.g., from SQLite to PostgreSQL).`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if yes, _ := cmd.Flags().GetBool("yes"); !yes {
			answer := promptForConfirmation(i18n.T("restore.confirm"))
			if answer != "y" && answer != "yes" {
				fmt.Println(i18n.T("restore.aborted"))
				return
			}
		}

		data, err := readCompressedBackup(args[0])
		if err != nil {
			logging.Fatalf("%s", i18n.T("restore.failed", err))
		}
		if err := db.ImportDataFromBackup(data); err != nil {
			logging.Fatalf("%s", i18n.T("restore.failed", err))
		}
		fmt.Println(i18n.T("restore.success", len(data.Runs), len(data.SignerKeys), len(data.AuditLog)))
	},
}

// writeCompressedBackup writes the backup data to a zstd-compressed file.
// The JSON encoding is streamed directly into the compressor.
func writeCompressedBackup(filename string, data *model.BackupData) error {
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("could not create file: %w", err)
	}
	defer func() { _ = file.Close() }()

	zstdWriter, err := zstd.NewWriter(file)
	if err != nil {
		return fmt.Errorf("could not create zstd writer: %w", err)
	}
	defer func() { _ = zstdWriter.Close() }()

	encoder := json.NewEncoder(zstdWriter)
	encoder.SetIndent("", "  ") // Pretty-print the JSON inside the compressed file

	if err := encoder.Encode(data); err != nil {
		return fmt.Errorf("could not encode json to zstd writer: %w", err)
	}

	return nil
}

// readCompressedBackup reads and decodes a zstd-compressed JSON backup file.
func readCompressedBackup(filename string) (*model.BackupData, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("could not open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	zstdReader, err := zstd.NewReader(file)
	if err != nil {
		return nil, fmt.Errorf("could not create zstd reader: %w", err)
	}
	defer zstdReader.Close()

	var backupData model.BackupData
	if err := json.NewDecoder(zstdReader).Decode(&backupData); err != nil {
		return nil, fmt.Errorf("could not decode json from zstd reader: %w", err)
	}

	return &backupData, nil
}

func init() {
	restoreCmd.Flags().BoolP("yes", "y", false, "skip the confirmation prompt")
}
