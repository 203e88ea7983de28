package schema

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// File is the YAML representation of a schema.
//
//	version: "1"
//	fields:
//	  - ID
//	  - KLASSE
type File struct {
	Version string   `yaml:"version"`
	Fields  []string `yaml:"fields"`
}

// LoadFile reads a schema from path. Files ending in .yaml or .yml are parsed
// as YAML; anything else is read as one field name per line.
func LoadFile(path string) (*Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema file %s: %w", path, err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return Parse(data)
	default:
		return ParseLines(data)
	}
}

// Parse parses YAML schema data.
func Parse(data []byte) (*Schema, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse schema YAML: %w", err)
	}
	return New(f.Fields)
}

// ParseLines parses one field name per line, ignoring blank lines and
// lines starting with '#'.
func ParseLines(data []byte) (*Schema, error) {
	var fields []string
	sc := bufio.NewScanner(bytes.NewReader(data))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields = append(fields, line)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("failed to read schema lines: %w", err)
	}
	return New(fields)
}

// WriteFile writes s as YAML to path.
func WriteFile(s *Schema, path string) error {
	data, err := yaml.Marshal(File{Version: "1", Fields: s.Fields()})
	if err != nil {
		return fmt.Errorf("failed to marshal schema: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write schema file %s: %w", path, err)
	}
	return nil
}
