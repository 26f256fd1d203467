// Copyright (c) 2026 ToeiRei
// Signet - SSH signing key resolver
// This source code is licensed under the MIT license found in the LICENSE file.

package allowedsigners

import (
	"bufio"
	"fmt"
	"os"
	"sort"
)

// File is an allowed signers file being assembled for one run. Entries
// form a set under structural identity; duplicates collapse. The file
// is write-only: existing content is never read back, and Write fully
// replaces whatever was on disk before.
type File struct {
	Path string

	entries map[string]Entry
}

// New creates a file for the given path from a collection of entries.
func New(path string, entries []Entry) *File {
	f := &File{Path: path, entries: make(map[string]Entry, len(entries))}
	for _, e := range entries {
		f.Add(e)
	}
	return f
}

// Add inserts an entry, collapsing structural duplicates.
func (f *File) Add(e Entry) {
	f.entries[e.identity()] = e
}

// Len returns the number of distinct entries.
func (f *File) Len() int {
	return len(f.entries)
}

// Entries returns the entries in their structural order.
func (f *File) Entries() []Entry {
	out := make([]Entry, 0, len(f.entries))
	for _, e := range f.entries {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Compare(out[j]) < 0 })
	return out
}

// Write creates or truncates the file at Path and writes every entry
// as one line, sorted, followed by a trailing blank line. There is no
// temp-file indirection: a failed write can leave a partial file
// behind, which callers surface as a fatal run error.
func (f *File) Write() error {
	out, err := os.Create(f.Path)
	if err != nil {
		return fmt.Errorf("failed to open allowed signers file %s: %w", f.Path, err)
	}

	w := bufio.NewWriter(out)
	for _, e := range f.Entries() {
		if _, err := w.WriteString(e.String() + "\n"); err != nil {
			_ = out.Close()
			return fmt.Errorf("failed to write allowed signers file %s: %w", f.Path, err)
		}
	}
	if _, err := w.WriteString("\n"); err != nil {
		_ = out.Close()
		return fmt.Errorf("failed to write allowed signers file %s: %w", f.Path, err)
	}
	if err := w.Flush(); err != nil {
		_ = out.Close()
		return fmt.Errorf("failed to write allowed signers file %s: %w", f.Path, err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("failed to close allowed signers file %s: %w", f.Path, err)
	}
	return nil
}
