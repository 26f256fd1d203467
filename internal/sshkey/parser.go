// Copyright (c) 2026 ToeiRei
// Signet - SSH signing key resolver
// This source code is licensed under the MIT license found in the LICENSE file.

// Package sshkey inspects SSH public key material as served by the
// Git providers: splitting blobs into their components and deriving
// the fingerprints used to track key state between runs.
package sshkey

import (
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"strings"

	"golang.org/x/crypto/ssh"
)

// Parse splits a raw public key string (like one line of an
// authorized_keys file) into its three core components: algorithm, key
// data, and comment. It tolerates leading options in the line.
func Parse(rawKey string) (algorithm, keyData, comment string, err error) {
	fields := strings.Fields(rawKey)
	if len(fields) == 0 {
		err = fmt.Errorf("empty line")
		return
	}

	keyStartIndex := -1
	for i, field := range fields {
		if strings.HasPrefix(field, "ssh-") || strings.HasPrefix(field, "ecdsa-") || strings.HasPrefix(field, "sk-") {
			keyStartIndex = i
			break
		}
	}

	if keyStartIndex == -1 {
		err = fmt.Errorf("no valid SSH key type found in line")
		return
	}

	if len(fields) < keyStartIndex+2 {
		err = fmt.Errorf("invalid public key format: missing key data after algorithm")
		return
	}

	algorithm = fields[keyStartIndex]
	keyData = fields[keyStartIndex+1]
	if len(fields) > keyStartIndex+2 {
		comment = strings.Join(fields[keyStartIndex+2:], " ")
	}

	return
}

// Fingerprint returns the SHA256 fingerprint of the given public key
// blob in the OpenSSH notation (e.g. "SHA256:gera..."). Blobs that do
// not parse as an authorized_keys line get a fingerprint over their
// raw key data instead, so unknown algorithms still track state.
func Fingerprint(blob string) string {
	if key, _, _, _, err := ssh.ParseAuthorizedKey([]byte(blob)); err == nil {
		return ssh.FingerprintSHA256(key)
	}

	material := blob
	if _, keyData, _, err := Parse(blob); err == nil {
		material = keyData
	}
	sum := sha256.Sum256([]byte(material))
	return "SHA256:" + strings.TrimRight(base64.StdEncoding.EncodeToString(sum[:]), "=")
}
