package schema

import (
	_ "embed"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed aliases.yml
var defaultAliasesYAML []byte

// AliasSet maps localized header labels to canonical field names. A built-in
// table covers the known export locales; additional YAML files can extend it
// for labels the built-in table misses.
type AliasSet struct {
	byLabel map[string]string
}

func NewAliasSet() (*AliasSet, error) {
	set := &AliasSet{byLabel: make(map[string]string)}
	if err := set.merge(defaultAliasesYAML); err != nil {
		return nil, fmt.Errorf("failed to load built-in header aliases: %w", err)
	}
	return set, nil
}

// LoadDir merges alias tables from *.yml files in dir. A missing directory
// is not an error; the built-in table remains in effect.
func (a *AliasSet) LoadDir(dir string) error {
	if dir == "" {
		return nil
	}
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return nil
	}

	files, err := filepath.Glob(filepath.Join(dir, "*.yml"))
	if err != nil {
		return fmt.Errorf("failed to find alias files: %w", err)
	}

	for _, file := range files {
		data, err := os.ReadFile(file)
		if err != nil {
			return fmt.Errorf("failed to read alias file %s: %w", file, err)
		}
		if err := a.merge(data); err != nil {
			return fmt.Errorf("invalid alias file %s: %w", file, err)
		}
		slog.Debug("Header aliases loaded", "file", file)
	}

	return nil
}

func (a *AliasSet) merge(data []byte) error {
	var table map[string][]string
	if err := yaml.Unmarshal(data, &table); err != nil {
		return err
	}

	for field, labels := range table {
		// The canonical name always resolves to itself.
		a.byLabel[normalizeLabel(field)] = field
		for _, label := range labels {
			a.byLabel[normalizeLabel(label)] = field
		}
	}

	return nil
}

// Resolve maps a header cell label to its canonical field name. Returns
// empty string for unrecognized labels.
func (a *AliasSet) Resolve(label string) string {
	return a.byLabel[normalizeLabel(label)]
}

func normalizeLabel(label string) string {
	s := strings.ToLower(strings.TrimSpace(label))
	s = strings.ReplaceAll(s, "_", " ")
	return strings.Join(strings.Fields(s), " ")
}
