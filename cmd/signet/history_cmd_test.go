// Copyright (c) 2026 ToeiRei
// Signet - SSH signing key resolver
// This source code is licensed under the MIT license found in the LICENSE file.

package main

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/toeirei/signet/internal/db"
	"github.com/toeirei/signet/internal/model"
)

func seedRuns(t *testing.T, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		run := model.Run{
			StartedAt:  time.Now().UTC().Format(time.RFC3339),
			DurationMS: int64(100 + i),
			FilePath:   fmt.Sprintf("/tmp/allowed_signers_%d", i),
			Signers:    1,
			Keys:       i,
		}
		if _, err := db.SaveRun(run); err != nil {
			t.Fatalf("SaveRun() error = %v", err)
		}
	}
}

func TestHistoryCmd_ListsRuns(t *testing.T) {
	initTestDB(t)
	seedRuns(t, 2)

	out := captureStdout(t, func() {
		if err := historyCmd.RunE(historyCmd, nil); err != nil {
			t.Errorf("history error = %v", err)
		}
	})

	for _, want := range []string{"ID", "STARTED", "/tmp/allowed_signers_0", "/tmp/allowed_signers_1"} {
		if !strings.Contains(out, want) {
			t.Errorf("history output missing %q:\n%s", want, out)
		}
	}
}

func TestHistoryCmd_EmptyMessage(t *testing.T) {
	initTestDB(t)

	out := captureStdout(t, func() {
		if err := historyCmd.RunE(historyCmd, nil); err != nil {
			t.Errorf("history error = %v", err)
		}
	})
	if !strings.Contains(out, "No runs recorded yet.") {
		t.Errorf("expected the empty message, got:\n%s", out)
	}
}

func TestHistoryCmd_Events(t *testing.T) {
	initTestDB(t)
	if err := db.LogAction("NEW_KEY", "signer: octocat, source: github, key: ssh-ed25519 SHA256:abc"); err != nil {
		t.Fatalf("LogAction() error = %v", err)
	}

	historyCmd.Flags().Set("events", "true")
	t.Cleanup(func() { historyCmd.Flags().Set("events", "false") })

	out := captureStdout(t, func() {
		if err := historyCmd.RunE(historyCmd, nil); err != nil {
			t.Errorf("history --events error = %v", err)
		}
	})

	for _, want := range []string{"TIMESTAMP", "NEW_KEY", "octocat"} {
		if !strings.Contains(out, want) {
			t.Errorf("events output missing %q:\n%s", want, out)
		}
	}
}

func TestHistoryCmd_EventsEmptyMessage(t *testing.T) {
	initTestDB(t)

	historyCmd.Flags().Set("events", "true")
	t.Cleanup(func() { historyCmd.Flags().Set("events", "false") })

	out := captureStdout(t, func() {
		if err := historyCmd.RunE(historyCmd, nil); err != nil {
			t.Errorf("history --events error = %v", err)
		}
	})
	if !strings.Contains(out, "No key events recorded yet.") {
		t.Errorf("expected the empty message, got:\n%s", out)
	}
}

func TestHistoryCmd_PruneKeepsMostRecent(t *testing.T) {
	initTestDB(t)
	seedRuns(t, 3)

	pruneFlag := historyCmd.Flags().Lookup("prune")
	historyCmd.Flags().Set("prune", "1")
	t.Cleanup(func() {
		pruneFlag.Value.Set("0")
		pruneFlag.Changed = false
	})

	out := captureStdout(t, func() {
		if err := historyCmd.RunE(historyCmd, nil); err != nil {
			t.Errorf("history --prune error = %v", err)
		}
	})
	if !strings.Contains(out, "Pruned 2 run(s) from history.") {
		t.Errorf("expected the prune summary, got:\n%s", out)
	}

	runs, err := db.GetRuns(0)
	if err != nil {
		t.Fatalf("GetRuns() error = %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("expected 1 remaining run, got %d", len(runs))
	}
	if runs[0].FilePath != "/tmp/allowed_signers_2" {
		t.Errorf("kept run = %q, want the most recent one", runs[0].FilePath)
	}
}
