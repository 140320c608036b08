// internal/config/init_config.go
package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"

	"github.com/saba-futai/peerproxy/internal/settings"
	"github.com/saba-futai/peerproxy/internal/sitelist"
)

// Load reads the settings file into s. Keys missing from the file keep their
// current values. A missing file is returned as is, so callers can test it
// with errors.Is(err, fs.ErrNotExist) and carry on with defaults.
func (st *Store) Load(s *settings.Settings) error {
	data, err := os.ReadFile(st.Path)
	if err != nil {
		return err
	}
	if err := st.decode(data, s); err != nil {
		return fmt.Errorf("%s: %w", st.Path, err)
	}
	st.logger().Info("settings loaded", "path", st.Path)
	return nil
}

// decode parses the whole file into locals and applies it to s only once
// every part decoded cleanly. A failed load leaves s untouched.
func (st *Store) decode(data []byte, s *settings.Settings) error {
	p := s.Persistent()
	p.Whitelist = nil

	var (
		wl  *sitelist.List
		err error
	)
	if st.isYAML() {
		wl, err = decodeYAML(data, &p)
	} else {
		wl, err = decodeJSON(data, &p)
	}
	if err != nil {
		return err
	}
	if err := st.openCredentials(&p); err != nil {
		return err
	}
	if wl != nil {
		p.Whitelist = wl
	}
	s.ApplyPersistent(p)
	return nil
}

// jsonDocument lets the whitelist be decoded on its own; the outer field
// shadows the promoted one.
type jsonDocument struct {
	*settings.Persistent
	Whitelist json.RawMessage `json:"whitelist"`
}

func decodeJSON(data []byte, p *settings.Persistent) (*sitelist.List, error) {
	data = jsonc.ToJSON(data)
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}

	doc := jsonDocument{Persistent: p}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode settings: %w", err)
	}
	if len(doc.Whitelist) == 0 || string(doc.Whitelist) == "null" {
		return nil, nil
	}
	wl := &sitelist.List{}
	if err := wl.UnmarshalJSON(doc.Whitelist); err != nil {
		return nil, fmt.Errorf("decode whitelist: %w", err)
	}
	return wl, nil
}

func decodeYAML(data []byte, p *settings.Persistent) (*sitelist.List, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse settings: %w", err)
	}
	if len(doc.Content) == 0 {
		return nil, nil
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("settings must be a mapping, got %s", kindName(root.Kind))
	}

	var wl *sitelist.List
	if node := takeKey(root, "whitelist"); node != nil && node.Tag != "!!null" {
		wl = &sitelist.List{}
		if err := node.Decode(wl); err != nil {
			return nil, fmt.Errorf("decode whitelist: %w", err)
		}
	}
	if err := root.Decode(p); err != nil {
		return nil, fmt.Errorf("decode settings: %w", err)
	}
	return wl, nil
}

func (st *Store) openCredentials(p *settings.Persistent) error {
	var sl *sealer
	for _, f := range credentialFields(p) {
		if plain, ok := unescapePlain(*f.value); ok {
			*f.value = plain
			continue
		}
		if !isSealed(*f.value) {
			continue
		}
		if sl == nil {
			var err error
			if sl, err = loadSealer(st.keyPath(), false); err != nil {
				return err
			}
		}
		plain, err := sl.open(f.name, *f.value)
		if err != nil {
			return err
		}
		*f.value = plain
	}
	return nil
}

// takeKey removes key from a mapping node and returns its value node.
func takeKey(mapping *yaml.Node, key string) *yaml.Node {
	for i := 0; i+1 < len(mapping.Content); i += 2 {
		if mapping.Content[i].Value == key {
			value := mapping.Content[i+1]
			mapping.Content = append(mapping.Content[:i], mapping.Content[i+2:]...)
			return value
		}
	}
	return nil
}

func kindName(k yaml.Kind) string {
	switch k {
	case yaml.SequenceNode:
		return "sequence"
	case yaml.ScalarNode:
		return "scalar"
	case yaml.AliasNode:
		return "alias"
	}
	return "node"
}
