// Copyright (c) 2026 ToeiRei
// Signet - SSH signing key resolver
// This source code is licensed under the MIT license found in the LICENSE file.

// Package source implements the Git providers that publish SSH signing
// keys. Each provider speaks its own API dialect but every adapter
// satisfies the same Source interface and reports failures through the
// shared error taxonomy, so callers never branch on the provider type.
package source

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/toeirei/signet/buildvars"
	"github.com/toeirei/signet/internal/model"
)

// Timeouts applied to every request made to a source.
const (
	connectTimeout = 2 * time.Second
	requestTimeout = 10 * time.Second
)

// Source fetches the public SSH signing keys a provider publishes for a
// user. Implementations are safe for concurrent use.
type Source interface {
	// Keys returns the signing keys published for username. A username
	// unknown to the source yields ErrUserNotFound.
	Keys(ctx context.Context, username string) ([]model.PublicKey, error)
}

// Map holds constructed sources by their configured name.
type Map map[string]Source

// New constructs the adapter for a configured source.
func New(cfg model.Source, events Events) (Source, error) {
	switch cfg.Provider {
	case model.ProviderGitHub:
		return NewGitHub(cfg, events)
	case model.ProviderGitLab:
		return NewGitLab(cfg, events)
	default:
		return nil, fmt.Errorf("source %s has unknown provider %q", cfg.Name, cfg.Provider)
	}
}

// NewMap constructs adapters for all configured sources.
func NewMap(cfgs []model.Source, events Events) (Map, error) {
	m := make(Map, len(cfgs))
	for _, cfg := range cfgs {
		src, err := New(cfg, events)
		if err != nil {
			return nil, err
		}
		m[cfg.Name] = src
	}
	return m, nil
}

// userAgent identifies this tool to the APIs it talks to.
func userAgent() string {
	return "signet/" + buildvars.VersionOrDefault("dev")
}

// newHTTPClient returns the HTTP client used by all sources.
func newHTTPClient() *http.Client {
	dialer := &net.Dialer{Timeout: connectTimeout}
	return &http.Client{
		Timeout: requestTimeout,
		Transport: &http.Transport{
			Proxy:               http.ProxyFromEnvironment,
			DialContext:         dialer.DialContext,
			TLSHandshakeTimeout: connectTimeout,
		},
	}
}
