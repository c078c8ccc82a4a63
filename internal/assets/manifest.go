package assets

import (
	_ "embed"
	"fmt"
	"net/url"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed manifest.yaml
var defaultManifest []byte

// Manifest lists the shell entries to precache.
type Manifest struct {
	Precache []string `yaml:"precache"`
}

// LoadManifest reads the manifest at path, or the embedded default when path is empty.
func LoadManifest(path string) (*Manifest, error) {
	raw := defaultManifest
	if strings.TrimSpace(path) != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read asset manifest: %w", err)
		}
		raw = data
	}
	return ParseManifest(raw)
}

func ParseManifest(raw []byte) (*Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("parse asset manifest: %w", err)
	}
	seen := make(map[string]struct{}, len(m.Precache))
	entries := m.Precache[:0]
	for _, entry := range m.Precache {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		if _, dup := seen[entry]; dup {
			continue
		}
		if _, err := url.Parse(entry); err != nil {
			return nil, fmt.Errorf("invalid manifest entry %q: %w", entry, err)
		}
		seen[entry] = struct{}{}
		entries = append(entries, entry)
	}
	m.Precache = entries
	return &m, nil
}
