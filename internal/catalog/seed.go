package catalog

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// SeedFile is the YAML layout of CATALOG_FILE.
//
//	universities:
//	  - Kuwait University
//	  - University of Bath
type SeedFile struct {
	Universities []string `yaml:"universities"`
}

// ReadSeedFile returns the names listed in a YAML seed file.
// An empty path yields no names and no error.
func ReadSeedFile(path string) ([]string, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog file: %w", err)
	}
	var sf SeedFile
	if err := yaml.Unmarshal(data, &sf); err != nil {
		return nil, fmt.Errorf("parse catalog file %s: %w", path, err)
	}
	return sf.Universities, nil
}

// SeedNames returns defaults followed by the names in path, in that order.
func SeedNames(defaults []string, path string) ([]string, error) {
	extra, err := ReadSeedFile(path)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(defaults)+len(extra))
	out = append(out, defaults...)
	return append(out, extra...), nil
}
