// Copyright (c) 2026 ToeiRei
// Signet - SSH signing key resolver
// This source code is licensed under the MIT license found in the LICENSE file.

// Package model contains the core data types shared across Signet.
package model

import (
	"fmt"
	"time"
)

// Provider identifies the kind of Git hosting product behind a source.
// The set is closed: every provider needs its own wire contract and
// error-mapping rules, so new values only appear together with code.
type Provider string

const (
	// ProviderGitHub is the GitHub REST API (github.com or GHES).
	ProviderGitHub Provider = "github"
	// ProviderGitLab is the GitLab REST API (gitlab.com or self-managed).
	ProviderGitLab Provider = "gitlab"
)

// Valid reports whether p is a known provider.
func (p Provider) Valid() bool {
	return p == ProviderGitHub || p == ProviderGitLab
}

// Source is a configured Git provider endpoint queried for the public
// signing keys of a user. Sources are built once from configuration and
// shared read-only across all resolution tasks of a run.
type Source struct {
	Name     string
	Provider Provider
	BaseURL  string
	// Token is an optional API token sent with every request. Unset
	// means anonymous access.
	Token string
}

// String returns the name and provider, e.g. "corp-gitlab (gitlab)".
func (s Source) String() string {
	return fmt.Sprintf("%s (%s)", s.Name, s.Provider)
}

// Signer is an identity whose published signing keys should be trusted.
// SourceNames reference sources by name; configuration validation
// guarantees that every referenced source exists.
type Signer struct {
	Name        string
	Principals  []string
	SourceNames []string
}

// String returns the signer name.
func (s Signer) String() string {
	return s.Name
}

// PublicKey is SSH public key material as served by a provider, together
// with the validity window the provider attached to it. Blob holds the
// full "algorithm base64 [comment]" line.
type PublicKey struct {
	Blob        string
	ValidAfter  *time.Time
	ValidBefore *time.Time
}

// Run records one completed update of the allowed signers file.
type Run struct {
	ID         int
	StartedAt  string
	DurationMS int64
	FilePath   string
	Signers    int
	Keys       int
}

// SignerKey tracks a key observed for a signer on a source, keyed by
// fingerprint. It backs the new-key/removed-key audit trail.
type SignerKey struct {
	ID          int
	Signer      string
	Source      string
	Algorithm   string
	Fingerprint string
	FirstSeen   string
	LastSeen    string
}

// AuditLogEntry represents a single audit trail event.
type AuditLogEntry struct {
	ID        int
	Timestamp string
	Username  string
	Action    string
	Details   string
}

// BackupData aggregates all database content for export and import.
type BackupData struct {
	SchemaVersion int             `json:"schema_version"`
	Runs          []Run           `json:"runs"`
	SignerKeys    []SignerKey     `json:"signer_keys"`
	AuditLog      []AuditLogEntry `json:"audit_log"`
}
