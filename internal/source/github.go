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
	"strconv"
	"strings"
	"time"

	"github.com/toeirei/signet/internal/model"
)

const (
	githubAPIVersion = "2022-11-28"
	githubAcceptType = "application/vnd.github+json"
)

// GitHub queries the GitHub REST API for the SSH signing keys a user has
// published.
//
// API documentation:
// https://docs.github.com/en/rest/users/ssh-signing-keys#list-ssh-signing-keys-for-a-user
type GitHub struct {
	name    string
	baseURL *url.URL
	token   string
	client  *http.Client
	events  Events
}

// NewGitHub returns a source backed by the GitHub users API.
func NewGitHub(cfg model.Source, events Events) (*GitHub, error) {
	base, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("source %s has invalid base URL %q: %w", cfg.Name, cfg.BaseURL, err)
	}
	if events == nil {
		events = NopEvents{}
	}
	return &GitHub{
		name:    cfg.Name,
		baseURL: base,
		token:   cfg.Token,
		client:  newHTTPClient(),
		events:  events,
	}, nil
}

// githubKey is the wire representation of a key returned by the GitHub API.
type githubKey struct {
	Key string `json:"key"`
}

// githubMessage is the error message body the GitHub API attaches to failed
// requests.
type githubMessage struct {
	Message string `json:"message"`
}

// Keys implements Source. GitHub does not expose an expiry for signing
// keys, so the returned keys never carry a validity window.
func (g *GitHub) Keys(ctx context.Context, username string) ([]model.PublicKey, error) {
	next := g.baseURL.JoinPath("users", username, "ssh_signing_keys")

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

		var page []githubKey
		if err := json.Unmarshal(body, &page); err != nil {
			return nil, newInvalidBodyError()
		}
		for _, k := range page {
			keys = append(keys, model.PublicKey{Blob: k.Key})
		}

		// Guard against a next link pointing back at the page just fetched.
		if nextPage != nil && nextPage.String() != current.String() {
			next = nextPage
		}
	}
	return keys, nil
}

func (g *GitHub) get(ctx context.Context, u *url.URL) ([]byte, http.Header, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, nil, err
	}
	req.Header.Set("User-Agent", userAgent())
	req.Header.Set("Accept", githubAcceptType)
	req.Header.Set("X-GitHub-Api-Version", githubAPIVersion)
	if g.token != "" {
		req.Header.Set("Authorization", "Bearer "+g.token)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, nil, classifyTransportError(err)
	}
	defer resp.Body.Close()

	g.reportRateLimit(resp.Header)

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, newInvalidBodyError()
	}
	if resp.StatusCode >= 400 {
		return nil, nil, g.mapStatusError(resp.StatusCode, body)
	}
	return body, resp.Header, nil
}

// mapStatusError applies the GitHub-specific error rules before falling
// back to the shared classifier.
func (g *GitHub) mapStatusError(status int, body []byte) error {
	var payload githubMessage
	_ = json.Unmarshal(body, &payload)
	message := strings.ToLower(payload.Message)

	switch {
	case status == http.StatusNotFound:
		return ErrUserNotFound
	case status == http.StatusForbidden && strings.Contains(message, "rate limit exceeded"):
		return ErrRatelimitExceeded
	case status == http.StatusUnauthorized && strings.Contains(message, "bad credentials"):
		return ErrBadCredentials
	default:
		return classifyStatus(status)
	}
}

// reportRateLimit forwards the rate limit headers GitHub attaches to every
// response. Absent or unparseable headers are ignored.
func (g *GitHub) reportRateLimit(h http.Header) {
	remainingValue := h.Get("x-ratelimit-remaining")
	resetValue := h.Get("x-ratelimit-reset")
	if remainingValue == "" || resetValue == "" {
		return
	}
	remaining, err := strconv.Atoi(remainingValue)
	if err != nil {
		return
	}
	resetEpoch, err := strconv.ParseInt(resetValue, 10, 64)
	if err != nil {
		return
	}
	g.events.RateLimit(g.name, remaining, time.Unix(resetEpoch, 0))
}
