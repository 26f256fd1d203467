// Copyright (c) 2026 ToeiRei
// Signet - SSH signing key resolver
// This source code is licensed under the MIT license found in the LICENSE file.

package model

import "testing"

func TestSourceString(t *testing.T) {
	s := Source{Name: "corp-gitlab", Provider: ProviderGitLab, BaseURL: "https://gitlab.example.com"}
	if got := s.String(); got != "corp-gitlab (gitlab)" {
		t.Errorf("unexpected Source.String(): %q", got)
	}
}

func TestSignerString(t *testing.T) {
	s := Signer{Name: "octocat", Principals: []string{"octocat@example.com"}}
	if got := s.String(); got != "octocat" {
		t.Errorf("unexpected Signer.String(): %q", got)
	}
}

func TestProviderValid(t *testing.T) {
	valid := []Provider{ProviderGitHub, ProviderGitLab}
	for _, p := range valid {
		if !p.Valid() {
			t.Errorf("Provider(%q).Valid() = false, want true", p)
		}
	}

	invalid := []Provider{"", "bitbucket", "GitHub"}
	for _, p := range invalid {
		if p.Valid() {
			t.Errorf("Provider(%q).Valid() = true, want false", p)
		}
	}
}
