// Copyright (c) 2026 ToeiRei
// Signet - SSH signing key resolver
// This source code is licensed under the MIT license found in the LICENSE file.

// Package update resolves the signing keys of all configured signers and
// writes them to an OpenSSH allowed signers file.
package update

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/toeirei/signet/internal/allowedsigners"
	"github.com/toeirei/signet/internal/model"
	"github.com/toeirei/signet/internal/source"
)

// Events extends the source events with conditions observed while resolving
// signers. Implementations must be safe for concurrent use.
type Events interface {
	source.Events
	// SignerNotFound reports that a signer has no account on a source. The
	// run continues without entries from that source.
	SignerNotFound(signer, source string)
	// NoKeys reports that a source returned zero signing keys for a signer.
	NoKeys(signer, source string)
}

// NopEvents discards all events.
type NopEvents struct{ source.NopEvents }

func (NopEvents) SignerNotFound(string, string) {}

func (NopEvents) NoKeys(string, string) {}

// ResolvedKey records where a collected key came from.
type ResolvedKey struct {
	Signer string
	Source string
	Blob   string
}

// Summary describes a completed run.
type Summary struct {
	Path     string
	Signers  int
	Keys     int
	Duration time.Duration
	Resolved []ResolvedKey
}

// Run queries every signer's sources concurrently, assembles the collected
// keys into entries and writes the allowed signers file at path. A signer
// unknown to one of its sources contributes nothing and the run goes on.
// Any other source failure cancels all in-flight work and aborts the run
// with the file untouched.
func Run(ctx context.Context, path string, signers []model.Signer, sources source.Map, events Events) (*Summary, error) {
	if events == nil {
		events = NopEvents{}
	}
	start := time.Now()

	// Reject dangling source references before spawning anything.
	for _, signer := range signers {
		for _, name := range signer.SourceNames {
			if _, ok := sources[name]; !ok {
				return nil, fmt.Errorf("signer %s references unknown source %s", signer.Name, name)
			}
		}
	}

	file := allowedsigners.New(path, nil)
	var (
		mu       sync.Mutex
		resolved []ResolvedKey
	)

	g, ctx := errgroup.WithContext(ctx)
	for _, signer := range signers {
		for _, name := range signer.SourceNames {
			src := sources[name]
			g.Go(func() error {
				keys, err := src.Keys(ctx, signer.Name)
				if err != nil {
					if errors.Is(err, source.ErrUserNotFound) {
						events.SignerNotFound(signer.Name, name)
						return nil
					}
					return fmt.Errorf("resolving keys for signer %s from source %s: %w", signer.Name, name, err)
				}
				if len(keys) == 0 {
					events.NoKeys(signer.Name, name)
					return nil
				}

				mu.Lock()
				defer mu.Unlock()
				for _, key := range keys {
					file.Add(allowedsigners.NewEntry(signer.Principals, key))
					resolved = append(resolved, ResolvedKey{Signer: signer.Name, Source: name, Blob: key.Blob})
				}
				return nil
			})
		}
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	if err := file.Write(); err != nil {
		return nil, err
	}

	return &Summary{
		Path:     path,
		Signers:  len(signers),
		Keys:     file.Len(),
		Duration: time.Since(start),
		Resolved: resolved,
	}, nil
}
