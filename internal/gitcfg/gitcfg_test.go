// Copyright (c) 2026 ToeiRei
// Signet - SSH signing key resolver
// This source code is licensed under the MIT license found in the LICENSE file.

package gitcfg

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	git "github.com/go-git/go-git/v5"
)

// initRepoWithOption creates a repository whose local configuration sets
// gpg.ssh.allowedSignersFile to the given value.
func initRepoWithOption(t *testing.T, value string) string {
	t.Helper()
	dir := t.TempDir()
	repo, err := git.PlainInit(dir, false)
	if err != nil {
		t.Fatalf("PlainInit() error = %v", err)
	}
	cfg, err := repo.Config()
	if err != nil {
		t.Fatalf("Config() error = %v", err)
	}
	cfg.Raw.Section("gpg").Subsection("ssh").SetOption("allowedsignersfile", value)
	if err := repo.SetConfig(cfg); err != nil {
		t.Fatalf("SetConfig() error = %v", err)
	}
	return dir
}

// isolateGlobalConfig points the global configuration lookup at a private
// directory so the host's real configuration cannot leak into the test.
func isolateGlobalConfig(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	xdg := filepath.Join(home, "xdg")
	t.Setenv("XDG_CONFIG_HOME", xdg)
	if err := os.MkdirAll(filepath.Join(xdg, "git"), 0o755); err != nil {
		t.Fatalf("MkdirAll() error = %v", err)
	}
	return home
}

func writeGlobalConfig(t *testing.T, home, content string) {
	t.Helper()
	path := filepath.Join(home, "xdg", "git", "config")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
}

func TestAllowedSignersFileFromRepository(t *testing.T) {
	home := isolateGlobalConfig(t)
	writeGlobalConfig(t, home, "")
	dir := initRepoWithOption(t, "/etc/ssh/corp_signers")

	got, err := AllowedSignersFile(dir)
	if err != nil {
		t.Fatalf("AllowedSignersFile() error = %v", err)
	}
	if got != "/etc/ssh/corp_signers" {
		t.Errorf("path = %q, want /etc/ssh/corp_signers", got)
	}
}

func TestAllowedSignersFileWalksUpToRepositoryRoot(t *testing.T) {
	home := isolateGlobalConfig(t)
	writeGlobalConfig(t, home, "")
	dir := initRepoWithOption(t, "/etc/ssh/corp_signers")
	sub := filepath.Join(dir, "docs", "adr")
	if err := os.MkdirAll(sub, 0o755); err != nil {
		t.Fatalf("MkdirAll() error = %v", err)
	}

	got, err := AllowedSignersFile(sub)
	if err != nil {
		t.Fatalf("AllowedSignersFile() error = %v", err)
	}
	if got != "/etc/ssh/corp_signers" {
		t.Errorf("path = %q, want /etc/ssh/corp_signers", got)
	}
}

func TestAllowedSignersFileFromGlobalConfig(t *testing.T) {
	home := isolateGlobalConfig(t)
	writeGlobalConfig(t, home, "[gpg \"ssh\"]\n\tallowedSignersFile = ~/.config/git/allowed_signers\n")

	got, err := AllowedSignersFile(t.TempDir())
	if err != nil {
		t.Fatalf("AllowedSignersFile() error = %v", err)
	}
	want := filepath.Join(home, ".config", "git", "allowed_signers")
	if got != want {
		t.Errorf("path = %q, want %q", got, want)
	}
}

func TestAllowedSignersFileLocalWinsOverGlobal(t *testing.T) {
	home := isolateGlobalConfig(t)
	writeGlobalConfig(t, home, "[gpg \"ssh\"]\n\tallowedSignersFile = /global/signers\n")
	dir := initRepoWithOption(t, "/local/signers")

	got, err := AllowedSignersFile(dir)
	if err != nil {
		t.Fatalf("AllowedSignersFile() error = %v", err)
	}
	if got != "/local/signers" {
		t.Errorf("path = %q, want /local/signers", got)
	}
}

func TestAllowedSignersFileNotConfigured(t *testing.T) {
	if _, err := os.Stat("/etc/gitconfig"); err == nil {
		t.Skip("system git configuration present on this machine")
	}
	home := isolateGlobalConfig(t)
	writeGlobalConfig(t, home, "")

	_, err := AllowedSignersFile(t.TempDir())
	if !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("error = %v, want ErrNotConfigured", err)
	}
}

func TestExpandHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	tests := []struct {
		in   string
		want string
	}{
		{"~/signers", filepath.Join(home, "signers")},
		{"~", home},
		{"/abs/signers", "/abs/signers"},
		{"relative/signers", "relative/signers"},
	}
	for _, tt := range tests {
		got, err := expandHome(tt.in)
		if err != nil {
			t.Fatalf("expandHome(%q) error = %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("expandHome(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
