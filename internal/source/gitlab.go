// Copyright (c) 2026 ToeiRei
// Signet - SSH signing key resolver
// This source code is licensed under the MIT license found in the LICENSE file.

package source

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/toeirei/signet/internal/model"
)

const gitlabAcceptType = "application/json"

// GitLab queries the GitLab REST API for the SSH keys a user has published.
//
// API documentation:
// https://docs.gitlab.com/ee/api/users.html#list-ssh-keys-for-a-user
type GitLab struct {
	name    string
	baseURL *url.URL
	token   string
	client  *http.Client
	events  Events
}

// NewGitLab returns a source backed by the GitLab users API.
func NewGitLab(cfg model.Source, events Events) (*GitLab, error) {
	base, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("source %s has invalid base URL %q: %w", cfg.Name, cfg.BaseURL, err)
	}
	if events == nil {
		events = NopEvents{}
	}
	return &GitLab{
		name:    cfg.Name,
		baseURL: base,
		token:   cfg.Token,
		client:  newHTTPClient(),
		events:  events,
	}, nil
}

// gitlabKey is the wire representation of a key returned by the GitLab API.
// Unlike GitHub, GitLab returns all of a user's keys and marks what each one
// may be used for.
type gitlabKey struct {
	Key       string `json:"key"`
	UsageType string `json:"usage_type"`
	ExpiresAt string `json:"expires_at"`
}

// signing reports whether the key may be used for signing. Keys that are
// not signing-capable must never end up in an allowed signers file, no
// matter what the server claims elsewhere.
func (k gitlabKey) signing() bool {
	return k.UsageType == "signing" || k.UsageType == "auth_and_signing"
}

// Keys implements Source. A key's expiry, when set, becomes the valid
// before bound of the resulting entry.
func (g *GitLab) Keys(ctx context.Context, username string) ([]model.PublicKey, error) {
	next := g.baseURL.JoinPath("api", "v4", "users", username, "keys")

	var keys []model.PublicKey
	for next != nil {
		current := next
		next = nil

		body, header, err := g.get(ctx, current)
		if err != nil {
			return nil, err
		}

		nextPage, err := nextURLFromLinkHeader(header)
		if err != nil {
			g.events.PaginationStopped(g.name, err)
			nextPage = nil
		}

		var page []gitlabKey
		if err := json.Unmarshal(body, &page); err != nil {
			return nil, newInvalidBodyError()
		}
		for _, k := range page {
			if !k.signing() {
				continue
			}
			key := model.PublicKey{Blob: k.Key}
			if k.ExpiresAt != "" {
				expiry, err := time.Parse(time.RFC3339, k.ExpiresAt)
				if err != nil {
					return nil, newInvalidBodyError()
				}
				key.ValidBefore = &expiry
			}
			keys = append(keys, key)
		}

		// Guard against a next link pointing back at the page just fetched.
		if nextPage != nil && nextPage.String() != current.String() {
			next = nextPage
		}
	}
	return keys, nil
}

func (g *GitLab) get(ctx context.Context, u *url.URL) ([]byte, http.Header, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, nil, err
	}
	req.Header.Set("User-Agent", userAgent())
	req.Header.Set("Accept", gitlabAcceptType)
	if g.token != "" {
		req.Header.Set("PRIVATE-TOKEN", g.token)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, nil, classifyTransportError(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, newInvalidBodyError()
	}
	if resp.StatusCode >= 400 {
		return nil, nil, mapGitlabStatusError(resp.StatusCode)
	}
	return body, resp.Header, nil
}

// mapGitlabStatusError applies the GitLab-specific error rules before
// falling back to the shared classifier.
func mapGitlabStatusError(status int) error {
	switch status {
	case http.StatusNotFound:
		return ErrUserNotFound
	case http.StatusUnauthorized:
		return ErrBadCredentials
	default:
		return classifyStatus(status)
	}
}
