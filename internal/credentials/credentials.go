// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package credentials stores the agent API key sealed at rest.
//
// The key is encrypted with AES-256-GCM under a key derived with
// PBKDF2-SHA-256 from a per-install random salt and the local user and host
// names. That keeps the key out of plain-text config files and backups; it
// is not protection against someone who already runs as the same user.
package credentials

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"os"
	"os/user"
	"strings"

	"golang.org/x/crypto/pbkdf2"

	"github.com/nashihabdul/simple-agentic-zus-coffee/internal/util"
)

// =============================================================================
// CONSTANTS
// =============================================================================

// SealedPrefix marks a sealed value (format: ENC:base64(nonce|ciphertext|tag)).
const SealedPrefix = "ENC:"

const (
	keySize  = 32
	saltSize = 32

	// DefaultIterations is the PBKDF2 work factor for new installs.
	DefaultIterations = 600000
)

// =============================================================================
// ERRORS
// =============================================================================

var (
	// ErrAPIKeyRequired is returned when no key is configured and the user
	// declined to enter one.
	ErrAPIKeyRequired = errors.New("API key is required to continue.")
	// ErrNoKey means no key has been saved yet.
	ErrNoKey = errors.New("no API key saved")
	// ErrUnseal means the sealed key could not be decrypted (moved to
	// another machine or user, or tampered with).
	ErrUnseal = errors.New("could not unseal API key")
)

// =============================================================================
// STORE
// =============================================================================

// Store reads and writes the sealed API key file.
type Store struct {
	// Path is the sealed key file; the salt lives next to it in Path+".salt".
	Path string
	// Iterations is the PBKDF2 work factor.
	Iterations int
	// Identity returns the machine-bound secret mixed into the key.
	Identity func() string
}

// NewStore returns a store for path with the default work factor.
func NewStore(path string) *Store {
	return &Store{
		Path:       path,
		Iterations: DefaultIterations,
		Identity:   localIdentity,
	}
}

// Save seals key and writes it. The key is trimmed first; an empty key is
// rejected with ErrAPIKeyRequired.
func (s *Store) Save(key string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return ErrAPIKeyRequired
	}
	aead, err := s.cipher(true)
	if err != nil {
		return err
	}

	nonce := make([]byte, aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return fmt.Errorf("generate nonce: %w", err)
	}
	sealed := aead.Seal(nonce, nonce, []byte(key), nil)
	encoded := SealedPrefix + base64.StdEncoding.EncodeToString(sealed)

	if err := util.AtomicWriteFile(s.Path, []byte(encoded), 0o600); err != nil {
		return fmt.Errorf("write API key: %w", err)
	}
	return nil
}

// Load returns the saved key, or ErrNoKey.
func (s *Store) Load() (string, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", ErrNoKey
		}
		return "", fmt.Errorf("read API key: %w", err)
	}
	text := strings.TrimSpace(string(data))
	if !strings.HasPrefix(text, SealedPrefix) {
		return "", fmt.Errorf("%w: missing %s prefix", ErrUnseal, SealedPrefix)
	}
	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(text, SealedPrefix))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnseal, err)
	}

	aead, err := s.cipher(false)
	if err != nil {
		return "", err
	}
	if len(raw) < aead.NonceSize() {
		return "", fmt.Errorf("%w: truncated", ErrUnseal)
	}
	nonce, ct := raw[:aead.NonceSize()], raw[aead.NonceSize():]
	plain, err := aead.Open(nil, nonce, ct, nil)
	if err != nil {
		return "", ErrUnseal
	}
	return string(plain), nil
}

// Delete removes the sealed key and its salt. Deleting a missing key is
// not an error.
func (s *Store) Delete() error {
	for _, p := range []string{s.Path, s.saltPath()} {
		if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("remove %s: %w", p, err)
		}
	}
	return nil
}

// Exists reports whether a sealed key file is present.
func (s *Store) Exists() bool {
	_, err := os.Stat(s.Path)
	return err == nil
}

func (s *Store) saltPath() string {
	return s.Path + ".salt"
}

// cipher derives the AEAD. When create is set a missing salt is generated.
func (s *Store) cipher(create bool) (cipher.AEAD, error) {
	salt, err := os.ReadFile(s.saltPath())
	switch {
	case err == nil && len(salt) == saltSize:
	case create && (errors.Is(err, os.ErrNotExist) || (err == nil && len(salt) != saltSize)):
		salt = make([]byte, saltSize)
		if _, err := io.ReadFull(rand.Reader, salt); err != nil {
			return nil, fmt.Errorf("generate salt: %w", err)
		}
		if err := util.AtomicWriteFile(s.saltPath(), salt, 0o600); err != nil {
			return nil, fmt.Errorf("write salt: %w", err)
		}
	case err != nil && errors.Is(err, os.ErrNotExist):
		return nil, fmt.Errorf("%w: salt missing", ErrUnseal)
	case err != nil:
		return nil, fmt.Errorf("read salt: %w", err)
	default:
		return nil, fmt.Errorf("%w: bad salt", ErrUnseal)
	}

	iterations := s.Iterations
	if iterations <= 0 {
		iterations = DefaultIterations
	}
	identity := localIdentity
	if s.Identity != nil {
		identity = s.Identity
	}

	key := pbkdf2.Key([]byte(identity()), salt, iterations, keySize, sha256.New)
	defer zeroBytes(key)

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("create AES cipher: %w", err)
	}
	return cipher.NewGCM(block)
}

// localIdentity is user@host, or a fixed string when neither is known.
func localIdentity() string {
	name := "zuschat"
	if u, err := user.Current(); err == nil && u.Username != "" {
		name = u.Username
	}
	host, _ := os.Hostname()
	return name + "@" + host
}

func zeroBytes(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
