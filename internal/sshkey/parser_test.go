package sshkey

import (
	"strings"
	"testing"
)

func TestParse(t *testing.T) {
	cases := []struct {
		name          string
		raw           string
		wantAlgorithm string
		wantKeyData   string
		wantComment   string
		wantErr       bool
	}{
		{
			name:          "ed25519 with comment",
			raw:           "ssh-ed25519 AAAAC3NzaC1lZDI1NTE5AAAAIGtQUDZWhs8k/cZcykMkaoX7ZE7DXld8TP79HyddMVTS john@example.com",
			wantAlgorithm: "ssh-ed25519",
			wantKeyData:   "AAAAC3NzaC1lZDI1NTE5AAAAIGtQUDZWhs8k/cZcykMkaoX7ZE7DXld8TP79HyddMVTS",
			wantComment:   "john@example.com",
		},
		{
			name:          "ed25519 without comment",
			raw:           "ssh-ed25519 AAAAC3NzaC1lZDI1NTE5AAAAIGtQUDZWhs8k/cZcykMkaoX7ZE7DXld8TP79HyddMVTS",
			wantAlgorithm: "ssh-ed25519",
			wantKeyData:   "AAAAC3NzaC1lZDI1NTE5AAAAIGtQUDZWhs8k/cZcykMkaoX7ZE7DXld8TP79HyddMVTS",
		},
		{
			name:          "ecdsa with multi word comment",
			raw:           "ecdsa-sha2-nistp256 AAAAE2VjZHNhLXNoYTItbmlzdHAyNTYAAAAIbmlzdHAyNTY= John Doe (gitlab.com)",
			wantAlgorithm: "ecdsa-sha2-nistp256",
			wantKeyData:   "AAAAE2VjZHNhLXNoYTItbmlzdHAyNTYAAAAIbmlzdHAyNTY=",
			wantComment:   "John Doe (gitlab.com)",
		},
		{
			name:          "leading options",
			raw:           `from="10.0.0.0/8",no-agent-forwarding ssh-ed25519 AAAAC3NzaC1lZDI1NTE5AAAAIGtQUDZWhs8k/cZcykMkaoX7ZE7DXld8TP79HyddMVTS deploy`,
			wantAlgorithm: "ssh-ed25519",
			wantKeyData:   "AAAAC3NzaC1lZDI1NTE5AAAAIGtQUDZWhs8k/cZcykMkaoX7ZE7DXld8TP79HyddMVTS",
			wantComment:   "deploy",
		},
		{
			name:    "empty line",
			raw:     "   ",
			wantErr: true,
		},
		{
			name:    "no key type",
			raw:     "this is not a key",
			wantErr: true,
		},
		{
			name:    "algorithm without key data",
			raw:     "ssh-ed25519",
			wantErr: true,
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			algorithm, keyData, comment, err := Parse(c.raw)
			if c.wantErr {
				if err == nil {
					t.Fatalf("expected error, got algorithm=%q keyData=%q", algorithm, keyData)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if algorithm != c.wantAlgorithm || keyData != c.wantKeyData || comment != c.wantComment {
				t.Fatalf("got (%q, %q, %q), want (%q, %q, %q)",
					algorithm, keyData, comment, c.wantAlgorithm, c.wantKeyData, c.wantComment)
			}
		})
	}
}

func TestFingerprintIgnoresComment(t *testing.T) {
	withComment := "ssh-ed25519 AAAAC3NzaC1lZDI1NTE5AAAAIGtQUDZWhs8k/cZcykMkaoX7ZE7DXld8TP79HyddMVTS John Doe (gitlab.com)"
	withoutComment := "ssh-ed25519 AAAAC3NzaC1lZDI1NTE5AAAAIGtQUDZWhs8k/cZcykMkaoX7ZE7DXld8TP79HyddMVTS"

	a := Fingerprint(withComment)
	b := Fingerprint(withoutComment)
	if a != b {
		t.Fatalf("fingerprints should not depend on the comment: %q vs %q", a, b)
	}
	if !strings.HasPrefix(a, "SHA256:") {
		t.Fatalf("expected SHA256 notation, got %q", a)
	}
}

func TestFingerprintDistinguishesKeys(t *testing.T) {
	a := Fingerprint("ssh-ed25519 AAAAC3NzaC1lZDI1NTE5AAAAIGtQUDZWhs8k/cZcykMkaoX7ZE7DXld8TP79HyddMVTS")
	b := Fingerprint("ssh-ed25519 AAAAC3NzaC1lZDI1NTE5AAAAILWtK6WxXw7NVhbn6fTQ0dECF8y98fahSIsqKMh+sSo9")
	if a == b {
		t.Fatalf("different keys must yield different fingerprints, both %q", a)
	}
}

// Unparsable blobs still produce a stable fingerprint so key-state
// tracking keeps working for algorithms x/crypto does not know.
func TestFingerprintFallbackIsStable(t *testing.T) {
	blob := "ssh-futurealg AAAAnotbase64key comment"

	a := Fingerprint(blob)
	b := Fingerprint(blob)
	if a != b {
		t.Fatalf("fallback fingerprint must be deterministic: %q vs %q", a, b)
	}
	if !strings.HasPrefix(a, "SHA256:") {
		t.Fatalf("expected SHA256 notation, got %q", a)
	}
	if strings.HasSuffix(a, "=") {
		t.Fatalf("fingerprint should use unpadded base64, got %q", a)
	}
}
