// Copyright (c) 2026 ToeiRei
// Signet - SSH signing key resolver
// This source code is licensed under the MIT license found in the LICENSE file.

package main

import (
	"os"
	"strings"
	"testing"

	"github.com/toeirei/signet/internal/config"
	"github.com/toeirei/signet/internal/i18n"
)

func TestSourceAdd_SavesConfig(t *testing.T) {
	setupMutationTest(t)

	err := sourceAddCmd.RunE(sourceAddCmd, []string{"corp", "gitlab", "https://gitlab.example.com"})
	if err != nil {
		t.Fatalf("source add error = %v", err)
	}

	if !appConfig.HasSource("corp") {
		t.Fatalf("source missing from config after add")
	}

	saved, err := os.ReadFile(defaultConfigPath)
	if err != nil {
		t.Fatalf("config file not written: %v", err)
	}
	for _, want := range []string{"corp", "gitlab", "https://gitlab.example.com"} {
		if !strings.Contains(string(saved), want) {
			t.Errorf("saved config missing %q:\n%s", want, saved)
		}
	}
}

func TestSourceAdd_RejectsDuplicateAndBadProvider(t *testing.T) {
	setupMutationTest(t)

	// github is a built-in default source.
	err := sourceAddCmd.RunE(sourceAddCmd, []string{"github", "github", "https://api.github.com"})
	if err == nil {
		t.Fatalf("expected an error for a duplicate source")
	}
	if !strings.Contains(err.Error(), "already exists") {
		t.Errorf("error = %q, want the duplicate message", err)
	}

	err = sourceAddCmd.RunE(sourceAddCmd, []string{"corp", "bitbucket", "https://bitbucket.example.com"})
	if err == nil {
		t.Fatalf("expected an error for an unknown provider")
	}
	if !strings.Contains(err.Error(), "unknown provider") {
		t.Errorf("error = %q, want the provider message", err)
	}
}

func TestSourceRemove_EnforcesReferences(t *testing.T) {
	setupMutationTest(t)
	if err := appConfig.AddSigner("octocat", []string{"octocat@example.com"}, []string{"github"}); err != nil {
		t.Fatalf("AddSigner() error = %v", err)
	}

	err := sourceRemoveCmd.RunE(sourceRemoveCmd, []string{"github"})
	if err == nil {
		t.Fatalf("expected an error removing a referenced source")
	}
	if !strings.Contains(err.Error(), "still referenced by signer 'octocat'") {
		t.Errorf("error = %q, want the in-use message", err)
	}

	// gitlab is unreferenced and may go.
	if err := sourceRemoveCmd.RunE(sourceRemoveCmd, []string{"gitlab"}); err != nil {
		t.Fatalf("source remove error = %v", err)
	}
	if appConfig.HasSource("gitlab") {
		t.Fatalf("source still configured after remove")
	}

	err = sourceRemoveCmd.RunE(sourceRemoveCmd, []string{"gitlab"})
	if err == nil {
		t.Fatalf("expected an error removing an unknown source")
	}
	if !strings.Contains(err.Error(), "not found") {
		t.Errorf("error = %q, want the not-found message", err)
	}
}

func TestSourceList_MasksTokens(t *testing.T) {
	setupMutationTest(t)
	t.Setenv("SIGNET_TOKEN_GITHUB", "sekrit-token")

	out := captureStdout(t, func() {
		if err := sourceListCmd.RunE(sourceListCmd, nil); err != nil {
			t.Errorf("source list error = %v", err)
		}
	})

	for _, want := range []string{"NAME", "github", "gitlab", "https://api.github.com", "set"} {
		if !strings.Contains(out, want) {
			t.Errorf("list output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "sekrit-token") {
		t.Errorf("token value must never be printed:\n%s", out)
	}
}

func TestPromptForToken_PipedInput(t *testing.T) {
	i18n.Init("en")

	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("os.Pipe() error = %v", err)
	}
	if _, err := w.WriteString("glpat-abc123\n"); err != nil {
		t.Fatalf("writing to pipe: %v", err)
	}
	w.Close()

	oldStdin := os.Stdin
	os.Stdin = r
	defer func() { os.Stdin = oldStdin }()

	var token string
	_ = captureStdout(t, func() {
		var perr error
		token, perr = promptForToken("gitlab")
		if perr != nil {
			t.Errorf("promptForToken() error = %v", perr)
		}
	})

	if token != "glpat-abc123" {
		t.Errorf("token = %q, want glpat-abc123", token)
	}
}

func TestAppliedSourceConfig_ResolvesTokenFromEnv(t *testing.T) {
	setupMutationTest(t)
	t.Setenv("SIGNET_TOKEN_CORP_GITLAB", "env-token")
	if err := appConfig.AddSource("corp-gitlab", "gitlab", "https://gitlab.example.com", ""); err != nil {
		t.Fatalf("AddSource() error = %v", err)
	}

	var got config.Source
	for _, s := range appConfig.Sources {
		if s.Name == "corp-gitlab" {
			got = s
		}
	}
	if got.Token != "" {
		t.Fatalf("config file token should stay empty, got %q", got.Token)
	}

	for _, s := range appConfig.ModelSources() {
		if s.Name == "corp-gitlab" && s.Token != "env-token" {
			t.Errorf("resolved token = %q, want env-token", s.Token)
		}
	}
}
