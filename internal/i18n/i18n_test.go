// Copyright (c) 2026 ToeiRei
// Signet - SSH signing key resolver
// This source code is licensed under the MIT license found in the LICENSE file.

package i18n

import (
	"strings"
	"testing"
)

func TestTranslatesKnownMessage(t *testing.T) {
	SetLang("en")
	got := T("update.no_signers")
	if !strings.Contains(got, "No signers configured") {
		t.Fatalf("unexpected translation: %q", got)
	}
}

func TestFormatsArguments(t *testing.T) {
	SetLang("en")
	got := T("update.success", "/tmp/allowed_signers", "1.2s")
	want := "Updated allowed signers file /tmp/allowed_signers in 1.2s."
	if got != want {
		t.Fatalf("T() = %q, want %q", got, want)
	}
}

func TestFallsBackToMessageID(t *testing.T) {
	SetLang("en")
	const id = "nonexistent.message_id"
	if got := T(id); got != id {
		t.Fatalf("T() = %q, want the message ID %q", got, id)
	}
}

func TestSwitchingLanguage(t *testing.T) {
	SetLang("de")
	defer SetLang("en")
	got := T("signer.none")
	if !strings.Contains(got, "Keine Signierer") {
		t.Fatalf("expected German translation, got %q", got)
	}
}

// TestLocalesAreComplete ensures every English message has a German
// counterpart so no user sees mixed-language output.
func TestLocalesAreComplete(t *testing.T) {
	SetLang("de")
	defer SetLang("en")
	ids := []string{
		"config.created_default",
		"update.no_signers",
		"update.success",
		"update.signer_not_found",
		"update.pagination_skipped",
		"signer.added",
		"signer.removed",
		"source.added",
		"source.token_prompt",
		"history.none",
		"backup.success",
		"restore.confirm",
	}
	for _, id := range ids {
		if got := T(id); got == id {
			t.Errorf("message %q missing from German locale", id)
		}
	}
}
