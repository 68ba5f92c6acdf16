package script

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"

	"github.com/openfacts/openfacts/pkg/facts"
)

// loadExternal loads structured external facts from the directories the
// bootstrap (or configuration) scoped fact search to. External facts are
// plain data files, not scripts: each top-level key of a YAML or JSON
// document becomes a fact, and each line of a .txt file is a key=value
// pair. Broken files are logged and skipped.
func (m *module) loadExternal() {
	for _, dir := range m.externalDirs {
		entries, err := os.ReadDir(dir)
		if err != nil {
			log.Debug().Str("dir", dir).Err(err).Msg("Skipping external fact directory")
			continue
		}
		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			path := filepath.Join(dir, entry.Name())
			switch strings.ToLower(filepath.Ext(entry.Name())) {
			case ".yaml", ".yml":
				m.loadStructuredFile(path, yaml.Unmarshal)
			case ".json":
				m.loadStructuredFile(path, json.Unmarshal)
			case ".txt":
				m.loadTextFile(path)
			}
		}
	}
}

func (m *module) loadStructuredFile(path string, unmarshal func([]byte, any) error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		log.Warn().Str("path", path).Err(err).Msg("Failed to read external fact file")
		return
	}
	var doc map[string]any
	if err := unmarshal(raw, &doc); err != nil {
		log.Warn().Str("path", path).Err(err).Msg("Failed to parse external fact file")
		return
	}
	for name, data := range doc {
		m.collection.Add(name, facts.Normalize(data))
	}
}

func (m *module) loadTextFile(path string) {
	raw, err := os.ReadFile(path)
	if err != nil {
		log.Warn().Str("path", path).Err(err).Msg("Failed to read external fact file")
		return
	}
	for _, line := range strings.Split(string(raw), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		name, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		m.collection.Add(strings.TrimSpace(name), strings.TrimSpace(value))
	}
}
