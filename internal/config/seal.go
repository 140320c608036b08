// internal/config/seal.go
package config

import (
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/hkdf"
)

const (
	sealedPrefix = "sealed:"
	plainPrefix  = "plain:"
	keyFileSize  = 32
	hkdfInfo     = "peerproxy settings credentials v1"
)

// ErrNoSealKey means the file holds sealed credentials but the key file is gone.
var ErrNoSealKey = errors.New("credential key file not found")

type sealer struct {
	aead cipher.AEAD
}

func isSealed(v string) bool {
	return strings.HasPrefix(v, sealedPrefix)
}

// escapePlain marks a plaintext value that would otherwise read back as
// sealed or escaped.
func escapePlain(v string) string {
	if isSealed(v) || strings.HasPrefix(v, plainPrefix) {
		return plainPrefix + v
	}
	return v
}

func unescapePlain(v string) (string, bool) {
	return strings.CutPrefix(v, plainPrefix)
}

// loadSealer reads the key file, creating it when create is set.
func loadSealer(path string, create bool) (*sealer, error) {
	master, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist) && create:
		if master, err = createKeyFile(path); err != nil {
			return nil, fmt.Errorf("create key file: %w", err)
		}
	case errors.Is(err, fs.ErrNotExist):
		return nil, fmt.Errorf("%w: %s", ErrNoSealKey, path)
	case err != nil:
		return nil, fmt.Errorf("read key file: %w", err)
	}
	if len(master) != keyFileSize {
		return nil, fmt.Errorf("key file %s: want %d bytes, got %d", path, keyFileSize, len(master))
	}

	key := make([]byte, chacha20poly1305.KeySize)
	if _, err := io.ReadFull(hkdf.New(sha256.New, master, nil, []byte(hkdfInfo)), key); err != nil {
		return nil, fmt.Errorf("derive key: %w", err)
	}
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, err
	}
	return &sealer{aead: aead}, nil
}

func createKeyFile(path string) ([]byte, error) {
	master := make([]byte, keyFileSize)
	if _, err := rand.Read(master); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, err
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return nil, err
	}
	if _, err := f.Write(master); err != nil {
		f.Close()
		return nil, err
	}
	return master, f.Close()
}

// seal encrypts value, binding it to the field name. Empty stays empty.
func (s *sealer) seal(field, value string) (string, error) {
	if value == "" {
		return value, nil
	}
	nonce := make([]byte, chacha20poly1305.NonceSizeX, chacha20poly1305.NonceSizeX+len(value)+s.aead.Overhead())
	if _, err := rand.Read(nonce); err != nil {
		return "", err
	}
	out := s.aead.Seal(nonce, nonce, []byte(value), []byte(field))
	return sealedPrefix + base64.StdEncoding.EncodeToString(out), nil
}

func (s *sealer) open(field, value string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(value, sealedPrefix))
	if err != nil {
		return "", fmt.Errorf("open %s: %w", field, err)
	}
	if len(raw) < chacha20poly1305.NonceSizeX {
		return "", fmt.Errorf("open %s: sealed value too short", field)
	}
	plain, err := s.aead.Open(nil, raw[:chacha20poly1305.NonceSizeX], raw[chacha20poly1305.NonceSizeX:], []byte(field))
	if err != nil {
		return "", fmt.Errorf("open %s: %w", field, err)
	}
	return string(plain), nil
}
