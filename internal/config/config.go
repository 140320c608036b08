// internal/config/config.go
package config

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/zeebo/blake3"
	"gopkg.in/yaml.v3"

	"github.com/saba-futai/peerproxy/internal/settings"
)

// Store reads and writes the persistent view of a Settings to one file.
// ".yaml" and ".yml" files are YAML; anything else is JSON, and comments
// plus trailing commas are accepted when reading.
type Store struct {
	Path string
	// KeyPath holds the credential sealing key. Defaults to Path + ".key".
	KeyPath string
	Log     *slog.Logger

	mu      sync.Mutex
	written bool
	lastSum [32]byte
}

// NewStore returns a Store for path.
func NewStore(path string) *Store {
	return &Store{Path: path}
}

func (st *Store) keyPath() string {
	if st.KeyPath != "" {
		return st.KeyPath
	}
	return st.Path + ".key"
}

func (st *Store) logger() *slog.Logger {
	if st.Log != nil {
		return st.Log
	}
	return slog.Default()
}

func (st *Store) isYAML() bool {
	switch strings.ToLower(filepath.Ext(st.Path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}

// Save writes s.Persistent() to disk. It reports false without touching the
// file when nothing changed since the previous Save. With the keychain
// enabled the OAuth secrets are sealed before they are written.
func (st *Store) Save(s *settings.Settings) (bool, error) {
	p := s.Persistent()
	plain, err := st.encode(p)
	if err != nil {
		return false, err
	}

	keychain := s.KeychainEnabled()
	flag := byte(0)
	if keychain {
		flag = 1
	}
	sum := blake3.Sum256(append(plain, flag))

	st.mu.Lock()
	defer st.mu.Unlock()

	if st.written && sum == st.lastSum {
		st.logger().Debug("settings unchanged, skipping write", "path", st.Path)
		return false, nil
	}

	stored := p
	if err := st.storeCredentials(&stored, keychain); err != nil {
		return false, err
	}
	data, err := st.encode(stored)
	if err != nil {
		return false, err
	}

	if err := writeFileAtomic(st.Path, data); err != nil {
		return false, fmt.Errorf("write %s: %w", st.Path, err)
	}
	st.written = true
	st.lastSum = sum
	st.logger().Info("settings saved", "path", st.Path, "sealed", keychain)
	return true, nil
}

func (st *Store) encode(p settings.Persistent) ([]byte, error) {
	if st.isYAML() {
		data, err := yaml.Marshal(p)
		if err != nil {
			return nil, fmt.Errorf("encode settings: %w", err)
		}
		return data, nil
	}
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode settings: %w", err)
	}
	return append(data, '\n'), nil
}

// storeCredentials rewrites the OAuth secrets in their on-disk form: sealed
// when the keychain is enabled, otherwise plaintext escaped where needed.
func (st *Store) storeCredentials(p *settings.Persistent, keychain bool) error {
	var sl *sealer
	if keychain {
		var err error
		if sl, err = loadSealer(st.keyPath(), true); err != nil {
			return err
		}
	}
	for _, f := range credentialFields(p) {
		if sl == nil {
			*f.value = escapePlain(*f.value)
			continue
		}
		sealed, err := sl.seal(f.name, *f.value)
		if err != nil {
			return err
		}
		*f.value = sealed
	}
	return nil
}

type credentialField struct {
	name  string
	value *string
}

func credentialFields(p *settings.Persistent) []credentialField {
	return []credentialField{
		{"clientSecret", &p.ClientSecret},
		{"accessToken", &p.AccessToken},
		{"refreshToken", &p.RefreshToken},
	}
}

func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}
