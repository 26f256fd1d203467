// Copyright (c) 2026 ToeiRei
// Signet - SSH signing key resolver
// This source code is licensed under the MIT license found in the LICENSE file.

package source

import (
	"errors"
	"net/http"
	"strings"
	"testing"
)

func TestNextURLFromLinkHeader(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   string
	}{
		{
			name:   "no header",
			header: "",
			want:   "",
		},
		{
			name:   "only prev",
			header: `<https://api.github.com/repositories/1300192/issues?per_page=2&page=1&before=Y3Vyc29yOnYyOpLPAAABkOs68TjOkOKw1A%3D%3D>; rel="prev"`,
			want:   "",
		},
		{
			name:   "single next",
			header: `<https://api.github.com/repositories/1300192/issues?per_page=2&after=Y3Vyc29yOnYyOpLPAAABmbe5SzDOz8JUuQ%3D%3D&page=2>; rel="next"`,
			want:   "https://api.github.com/repositories/1300192/issues?per_page=2&after=Y3Vyc29yOnYyOpLPAAABmbe5SzDOz8JUuQ%3D%3D&page=2",
		},
		{
			name:   "github style with all rels",
			header: `<https://api.github.com/repositories/1300192/issues?page=2>; rel="prev", <https://api.github.com/repositories/1300192/issues?page=4>; rel="next", <https://api.github.com/repositories/1300192/issues?page=515>; rel="last", <https://api.github.com/repositories/1300192/issues?page=1>; rel="first"`,
			want:   "https://api.github.com/repositories/1300192/issues?page=4",
		},
		{
			name:   "gitlab style with all rels",
			header: `<https://gitlab.example.com/api/v4/projects/8/issues/8/notes?page=1&per_page=3>; rel="prev", <https://gitlab.example.com/api/v4/projects/8/issues/8/notes?page=3&per_page=3>; rel="next", <https://gitlab.example.com/api/v4/projects/8/issues/8/notes?page=1&per_page=3>; rel="first", <https://gitlab.example.com/api/v4/projects/8/issues/8/notes?page=3&per_page=3>; rel="last"`,
			want:   "https://gitlab.example.com/api/v4/projects/8/issues/8/notes?page=3&per_page=3",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			headers := http.Header{}
			if tt.header != "" {
				headers.Set("Link", tt.header)
			}

			got, err := nextURLFromLinkHeader(headers)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tt.want == "" {
				if got != nil {
					t.Fatalf("expected no next URL, got %s", got)
				}
				return
			}
			if got == nil {
				t.Fatalf("expected next URL %s, got none", tt.want)
			}
			if got.String() != tt.want {
				t.Errorf("next URL = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestNextURLFromLinkHeaderMalformed(t *testing.T) {
	tests := []struct {
		name    string
		header  string
		wantMsg string
	}{
		{
			name:    "missing url terminator",
			header:  `<https://api.example.com/items?page=2; rel="next"`,
			wantMsg: "incorrect format",
		},
		{
			name:    "empty rel value",
			header:  `<https://api.example.com/items?page=2>; rel=""`,
			wantMsg: "incorrect format",
		},
		{
			name:    "relative url",
			header:  `<not-a-valid-url>; rel="next"`,
			wantMsg: "incorrect format",
		},
		{
			name:    "not valid utf-8",
			header:  "\xff",
			wantMsg: "value is not valid UTF-8",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			headers := http.Header{"Link": {tt.header}}

			_, err := nextURLFromLinkHeader(headers)
			if err == nil {
				t.Fatal("expected an error")
			}
			var serverErr *ServerError
			if !errors.As(err, &serverErr) {
				t.Fatalf("expected a ServerError, got %T: %v", err, err)
			}
			if !strings.HasPrefix(serverErr.Reason, "malformed `Link` header: "+tt.wantMsg) {
				t.Errorf("reason = %q, want prefix %q", serverErr.Reason, "malformed `Link` header: "+tt.wantMsg)
			}
		})
	}
}
