// Copyright (c) 2026 ToeiRei
// Signet - SSH signing key resolver
// This source code is licensed under the MIT license found in the LICENSE file.

// Package gitcfg discovers the allowed signers file path from Git
// configuration. Git verifies SSH signatures against the file named by
// gpg.ssh.allowedSignersFile, so when signet is not told a path explicitly
// it targets the same file Git would read.
package gitcfg

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	git "github.com/go-git/go-git/v5"
	gitconfig "github.com/go-git/go-git/v5/config"
)

// ErrNotConfigured is returned when no Git configuration in scope sets
// gpg.ssh.allowedSignersFile.
var ErrNotConfigured = errors.New("allowed signers file not configured in git")

// AllowedSignersFile returns the path of the allowed signers file Git is
// configured with. The repository enclosing dir is consulted first,
// followed by the global and system configuration, matching Git's own
// precedence. A leading ~ in the configured value is expanded to the
// user's home directory.
func AllowedSignersFile(dir string) (string, error) {
	if path := fromRepository(dir); path != "" {
		return expandHome(path)
	}
	for _, scope := range []gitconfig.Scope{gitconfig.GlobalScope, gitconfig.SystemScope} {
		cfg, err := gitconfig.LoadConfig(scope)
		if err != nil {
			continue
		}
		if path := allowedSignersOption(cfg); path != "" {
			return expandHome(path)
		}
	}
	return "", ErrNotConfigured
}

// fromRepository reads the local configuration of the repository enclosing
// dir. It returns the empty string when dir is not inside a repository or
// the option is unset.
func fromRepository(dir string) string {
	repo, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return ""
	}
	cfg, err := repo.Config()
	if err != nil {
		return ""
	}
	return allowedSignersOption(cfg)
}

func allowedSignersOption(cfg *gitconfig.Config) string {
	return cfg.Raw.Section("gpg").Subsection("ssh").Option("allowedsignersfile")
}

func expandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot expand %s: %w", path, err)
	}
	return filepath.Join(home, path[1:]), nil
}
