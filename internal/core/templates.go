package core

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/JonMunkholm/fieldmap/internal/schema"
)

// TemplateMatchThreshold is the minimum header overlap for a template to be
// suggested for a file.
const TemplateMatchThreshold = 0.7

const templateExt = ".yaml"

var templateNameRe = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_.-]*$`)

// Template is a saved mapping keyed by source column names rather than
// indices, so it can be reapplied to files whose column order differs.
type Template struct {
	Version   string            `yaml:"version" json:"version"`
	Name      string            `yaml:"name" json:"name"`
	Headers   []string          `yaml:"headers" json:"headers"`
	Fields    map[string]string `yaml:"fields" json:"fields"` // target field -> source column name
	CreatedAt time.Time         `yaml:"created_at" json:"createdAt"`
	UpdatedAt time.Time         `yaml:"updated_at" json:"updatedAt"`
}

// TemplateMatch is a template whose headers overlap a file's header.
type TemplateMatch struct {
	Template   Template `json:"template"`
	MatchScore float64  `json:"matchScore"`
}

// TemplateFromMapping captures the mapped fields of m as a template.
func TemplateFromMapping(name string, m *Mapping, header []string) *Template {
	fields := make(map[string]string)
	for field, col := range m.Assignments() {
		if col < len(header) {
			fields[field] = header[col]
		}
	}

	headers := make([]string, len(header))
	copy(headers, header)

	return &Template{
		Version: "1",
		Name:    name,
		Headers: headers,
		Fields:  fields,
	}
}

// ApplyTemplate builds a mapping from tpl by resolving each source column
// name case-insensitively against the table header. When a name occurs more
// than once the first column wins. It returns the fields that could not be
// resolved, sorted by name; fields unknown to the schema are reported too.
func ApplyTemplate(t *Table, s *schema.Schema, tpl *Template) (*Mapping, []string) {
	columns := headerColumns(t.Header)

	m := NewMapping(s, t.Width())
	var unresolved []string
	for field, source := range tpl.Fields {
		i, ok := s.Index(field)
		col, found := columns[headerKey(source)]
		if !ok || !found {
			unresolved = append(unresolved, field)
			continue
		}
		m.assign[i] = col
	}

	sort.Strings(unresolved)
	return m, unresolved
}

// TemplateStore keeps templates as YAML files in a directory.
type TemplateStore struct {
	dir string
}

// NewTemplateStore returns a store rooted at dir. The directory is created
// on first save.
func NewTemplateStore(dir string) *TemplateStore {
	return &TemplateStore{dir: dir}
}

// Dir returns the store directory.
func (s *TemplateStore) Dir() string {
	return s.dir
}

// Save writes tpl, replacing any template with the same name.
func (s *TemplateStore) Save(tpl *Template) error {
	if !templateNameRe.MatchString(tpl.Name) {
		return fmt.Errorf("invalid template name %q", tpl.Name)
	}

	now := time.Now().UTC()
	if existing, err := s.Load(tpl.Name); err == nil {
		tpl.CreatedAt = existing.CreatedAt
	} else if tpl.CreatedAt.IsZero() {
		tpl.CreatedAt = now
	}
	tpl.UpdatedAt = now
	if tpl.Version == "" {
		tpl.Version = "1"
	}

	data, err := yaml.Marshal(tpl)
	if err != nil {
		return fmt.Errorf("marshal template: %w", err)
	}

	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return fmt.Errorf("create template dir: %w", err)
	}
	if err := os.WriteFile(s.path(tpl.Name), data, 0644); err != nil {
		return fmt.Errorf("write template %s: %w", tpl.Name, err)
	}
	return nil
}

// Load reads a template by name.
func (s *TemplateStore) Load(name string) (*Template, error) {
	if !templateNameRe.MatchString(name) {
		return nil, fmt.Errorf("%w: %q", ErrTemplateNotFound, name)
	}

	data, err := os.ReadFile(s.path(name))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %q", ErrTemplateNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("read template %s: %w", name, err)
	}

	var tpl Template
	if err := yaml.Unmarshal(data, &tpl); err != nil {
		return nil, fmt.Errorf("parse template %s: %w", name, err)
	}
	if tpl.Name == "" {
		tpl.Name = name
	}
	return &tpl, nil
}

// List returns all templates sorted by name. Unparseable files are skipped.
// A missing directory yields an empty list.
func (s *TemplateStore) List() ([]Template, error) {
	entries, err := os.ReadDir(s.dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}

	var templates []Template
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != templateExt {
			continue
		}
		tpl, err := s.Load(strings.TrimSuffix(e.Name(), templateExt))
		if err != nil {
			continue // Skip invalid templates
		}
		templates = append(templates, *tpl)
	}

	sort.Slice(templates, func(i, j int) bool {
		return templates[i].Name < templates[j].Name
	})
	return templates, nil
}

// Delete removes a template.
func (s *TemplateStore) Delete(name string) error {
	if !templateNameRe.MatchString(name) {
		return fmt.Errorf("%w: %q", ErrTemplateNotFound, name)
	}
	err := os.Remove(s.path(name))
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %q", ErrTemplateNotFound, name)
	}
	return err
}

// Match returns templates whose saved headers overlap header by at least
// TemplateMatchThreshold, best first.
func (s *TemplateStore) Match(header []string) ([]TemplateMatch, error) {
	templates, err := s.List()
	if err != nil {
		return nil, err
	}

	var matches []TemplateMatch
	for _, t := range templates {
		score := matchTemplateHeaders(header, t.Headers)
		if score >= TemplateMatchThreshold {
			matches = append(matches, TemplateMatch{
				Template:   t,
				MatchScore: score,
			})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].MatchScore > matches[j].MatchScore
	})
	return matches, nil
}

func (s *TemplateStore) path(name string) string {
	return filepath.Join(s.dir, name+templateExt)
}

// matchTemplateHeaders is the share of template headers present in header.
func matchTemplateHeaders(header, templateHeaders []string) float64 {
	if len(templateHeaders) == 0 {
		return 0
	}

	present := make(map[string]bool, len(header))
	for _, h := range header {
		present[headerKey(h)] = true
	}

	matched := 0
	for _, h := range templateHeaders {
		if present[headerKey(h)] {
			matched++
		}
	}

	return float64(matched) / float64(len(templateHeaders))
}

func headerKey(h string) string {
	return strings.ToLower(strings.TrimSpace(h))
}
