// Copyright (c) 2026 ToeiRei
// Signet - SSH signing key resolver
// This source code is licensed under the MIT license found in the LICENSE file.

package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/toeirei/signet/internal/config"
	"github.com/toeirei/signet/internal/db"
	"github.com/toeirei/signet/internal/gitcfg"
	"github.com/toeirei/signet/internal/i18n"
	"github.com/toeirei/signet/internal/logging"
	"github.com/toeirei/signet/internal/model"
	"github.com/toeirei/signet/internal/source"
	"github.com/toeirei/signet/internal/sshkey"
	"github.com/toeirei/signet/internal/update"
)

var updateFile string

// updateCmd represents the 'update' command.
// It queries every signer's sources for their published signing keys and
// rewrites the allowed signers file from the result.
var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Resolve signing keys and rewrite the allowed signers file",
	Long: `Queries the configured sources for every signer's published SSH signing
keys and rewrites the allowed signers file from scratch. Signers without an
account or without keys on a source are skipped with a warning; credential,
rate limit and server errors abort the run without touching the file.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		// DB and i18n are initialized in PersistentPreRunE.
		if err := runUpdateFlow(cmd.Context(), appConfig, updateFile); err != nil {
			logging.Fatalf("%s", err)
		}
	},
}

func init() {
	updateCmd.Flags().StringVarP(&updateFile, "file", "f", "", "allowed signers file to write (overrides config and git config)")
}

// runUpdateFlow performs one full update: it resolves the target path,
// queries all sources, rewrites the file and records the run. It is also
// invoked after signer mutations unless those are run with --no-update.
func runUpdateFlow(ctx context.Context, cfg *config.Config, pathOverride string) error {
	signers := cfg.ModelSigners()
	if len(signers) == 0 {
		fmt.Println(i18n.T("update.no_signers"))
		return nil
	}

	path, err := resolveTargetPath(cfg, pathOverride)
	if err != nil {
		return err
	}

	sink := cliEvents{}
	sources, err := source.NewMap(cfg.ModelSources(), sink)
	if err != nil {
		return errors.New(i18n.T("update.failed", err))
	}

	summary, err := update.Run(ctx, path, signers, sources, sink)
	if err != nil {
		return errors.New(i18n.T("update.failed", err))
	}

	recordRun(signers, summary)

	fmt.Println(i18n.T("update.success", summary.Path, summary.Duration.Round(time.Millisecond)))
	fmt.Println(i18n.T("update.summary", summary.Keys, summary.Signers))
	return nil
}

// resolveTargetPath picks the file to write: the --file flag wins, then the
// config file, then gpg.ssh.allowedsignersfile from the git configuration.
func resolveTargetPath(cfg *config.Config, override string) (string, error) {
	if override != "" {
		return override, nil
	}
	if cfg.AllowedSigners != "" {
		return cfg.AllowedSigners, nil
	}
	path, err := gitcfg.AllowedSignersFile(".")
	if err != nil {
		if errors.Is(err, gitcfg.ErrNotConfigured) {
			return "", errors.New(i18n.T("update.no_file"))
		}
		return "", err
	}
	logging.Infof("%s", i18n.T("update.using_git_file", path))
	return path, nil
}

// recordRun stores the run in history and reconciles the per-signer key
// state. History is best-effort: failures are logged, never fatal.
func recordRun(signers []model.Signer, summary *update.Summary) {
	if !db.IsInitialized() {
		return
	}

	run := model.Run{
		StartedAt:  time.Now().UTC().Format(time.RFC3339),
		DurationMS: summary.Duration.Milliseconds(),
		FilePath:   summary.Path,
		Signers:    summary.Signers,
		Keys:       summary.Keys,
	}
	if _, err := db.SaveRun(run); err != nil {
		logging.Warnf("%s", i18n.T("history.record_failed", err))
	}

	syncKeyState(signers, summary)
}

type signerSourcePair struct {
	signer string
	source string
}

// syncKeyState upserts the fingerprints observed in this run and logs keys
// appearing for the first time or no longer published. Pairs that yielded
// nothing are synced with an empty set so stale keys are retired.
func syncKeyState(signers []model.Signer, summary *update.Summary) {
	observed := make(map[signerSourcePair][]model.SignerKey)
	for _, rk := range summary.Resolved {
		algorithm, _, _, err := sshkey.Parse(rk.Blob)
		if err != nil {
			algorithm = ""
		}
		pair := signerSourcePair{signer: rk.Signer, source: rk.Source}
		observed[pair] = append(observed[pair], model.SignerKey{
			Signer:      rk.Signer,
			Source:      rk.Source,
			Algorithm:   algorithm,
			Fingerprint: sshkey.Fingerprint(rk.Blob),
		})
	}

	for _, signer := range signers {
		for _, src := range signer.SourceNames {
			pair := signerSourcePair{signer: signer.Name, source: src}
			added, removed, err := db.SyncSignerKeys(signer.Name, src, observed[pair])
			if err != nil {
				logging.Warnf("%s", i18n.T("update.key_state_failed", signer.Name, src, err))
				continue
			}
			for _, k := range added {
				logging.Infof("%s", i18n.T("update.new_key", k.Signer, k.Source, k.Fingerprint))
			}
			for _, k := range removed {
				logging.Warnf("%s", i18n.T("update.key_removed", k.Signer, k.Source, k.Fingerprint))
			}
		}
	}
}
