package main

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/crypto/ssh"

	"github.com/gritvcs/grit/pkg/repo"
)

// Signature lines are "sshsig-v1:{algorithm}:{pubkey b64}:{signature b64}",
// stored detached so the commit encoding never changes.
const signatureVersion = "sshsig-v1"

// Keys tried under ~/.ssh when --sign-key is given without a path.
var defaultKeyNames = []string{"id_ed25519", "id_ecdsa", "id_rsa"}

// newSSHCommitSigner loads the SSH private key at keyPath (or a default key
// when keyPath is empty) and returns a repo.Signer producing detached
// signature lines, along with the path of the key actually used.
func newSSHCommitSigner(keyPath string) (repo.Signer, string, error) {
	keyPath, err := signingKeyPath(keyPath)
	if err != nil {
		return nil, "", err
	}

	pem, err := os.ReadFile(keyPath)
	if err != nil {
		return nil, "", fmt.Errorf("signing key %q: %w", keyPath, err)
	}
	key, err := ssh.ParsePrivateKey(pem)
	if err != nil {
		return nil, "", fmt.Errorf("signing key %q: %w", keyPath, err)
	}
	pubB64 := base64.StdEncoding.EncodeToString(key.PublicKey().Marshal())

	sign := func(payload []byte) (string, error) {
		sig, err := key.Sign(rand.Reader, payload)
		if err != nil {
			return "", err
		}
		parts := []string{
			signatureVersion,
			sig.Format,
			pubB64,
			base64.StdEncoding.EncodeToString(sig.Blob),
		}
		return strings.Join(parts, ":"), nil
	}
	return sign, keyPath, nil
}

// signingKeyPath picks the private key file to sign with. An explicit path is
// used as given, with a leading ~/ expanded; an empty path falls back to the
// first usable default key under ~/.ssh.
func signingKeyPath(path string) (string, error) {
	path = strings.TrimSpace(path)
	if path != "" {
		if rest, ok := strings.CutPrefix(path, "~/"); ok {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", fmt.Errorf("signing key: %w", err)
			}
			path = filepath.Join(home, rest)
		}
		return filepath.Abs(path)
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("signing key: %w", err)
	}
	for _, name := range defaultKeyNames {
		p := filepath.Join(home, ".ssh", name)
		if st, err := os.Stat(p); err == nil && st.Mode().IsRegular() {
			return p, nil
		}
	}
	return "", fmt.Errorf("signing key: none of %s found under ~/.ssh", strings.Join(defaultKeyNames, ", "))
}
