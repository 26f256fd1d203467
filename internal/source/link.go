// Copyright (c) 2026 ToeiRei
// Signet - SSH signing key resolver
// This source code is licensed under the MIT license found in the LICENSE file.

package source

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"unicode/utf8"
)

// nextURLFromLinkHeader looks for a Link header and returns the URL tagged
// rel="next" if present, or nil if the header is absent or carries no next
// page. A malformed header value yields a ServerError; callers decide
// whether that is fatal.
func nextURLFromLinkHeader(headers http.Header) (*url.URL, error) {
	linkValue := headers.Get("Link")
	if linkValue == "" {
		return nil, nil
	}
	if !utf8.ValidString(linkValue) {
		return nil, newMalformedHeaderError("Link", "value is not valid UTF-8")
	}

	invalidHeader := func() error {
		return newMalformedHeaderError("Link", fmt.Sprintf("incorrect format `%s`", linkValue))
	}

	for _, segment := range strings.Split(linkValue, ",") {
		parts := strings.Split(strings.TrimSpace(segment), ";")
		urlPart := strings.TrimSpace(parts[0])

		isNext := false
		for _, param := range parts[1:] {
			param = strings.TrimSpace(param)
			if rel, ok := strings.CutPrefix(param, "rel="); ok {
				rel = strings.Trim(rel, `"`)
				if rel == "" {
					return nil, invalidHeader()
				}
				if rel == "next" {
					isNext = true
				}
			}
		}

		if !isNext {
			continue
		}

		inner, ok := strings.CutPrefix(urlPart, "<")
		if ok {
			inner, ok = strings.CutSuffix(inner, ">")
		}
		if !ok {
			return nil, invalidHeader()
		}

		next, err := url.Parse(inner)
		if err != nil || !next.IsAbs() {
			return nil, invalidHeader()
		}
		return next, nil
	}

	return nil, nil
}
