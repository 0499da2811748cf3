package sources

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// Package sources describes where listing data comes from and how each
// source shape is fetched and mapped onto domain listings.

// Supported source types.
const (
	TypeCSV      = "csv"
	TypeGviz     = "gviz"
	TypeHTML     = "html"
	TypeAirtable = "airtable"
)

// Source is a data-source descriptor loaded from the sources file.
type Source struct {
	ID       string          `json:"id" yaml:"id"`
	Name     string          `json:"name" yaml:"name"`
	Type     string          `json:"type" yaml:"type"`
	URL      string          `json:"url" yaml:"url"`
	Airtable *AirtableConfig `json:"airtable" yaml:"airtable"`
	Config   map[string]any  `json:"config" yaml:"config"`
}

// AirtableConfig holds record-store coordinates and credentials.
type AirtableConfig struct {
	Endpoint  string `json:"endpoint" yaml:"endpoint"`
	BaseID    string `json:"base_id" yaml:"base_id"`
	TableID   string `json:"table_id" yaml:"table_id"`
	APIKey    string `json:"api_key" yaml:"api_key"`
	APIKeyEnv string `json:"api_key_env" yaml:"api_key_env"`
}

// Key returns the API key, reading APIKeyEnv when no literal key is set.
func (a AirtableConfig) Key() string {
	if k := strings.TrimSpace(a.APIKey); k != "" {
		return k
	}
	if a.APIKeyEnv != "" {
		return strings.TrimSpace(os.Getenv(a.APIKeyEnv))
	}
	return ""
}

// Kind resolves the effective source type: the declared type, airtable when
// record-store coordinates are present, otherwise detected from the URL.
func (s Source) Kind() string {
	if t := strings.ToLower(strings.TrimSpace(s.Type)); t != "" {
		return t
	}
	if s.Airtable != nil {
		return TypeAirtable
	}
	return DetectType(s.URL)
}

// Label is the human-facing origin used in diagnostics.
func (s Source) Label() string {
	switch s.Kind() {
	case TypeCSV:
		return "Google Sheets (CSV)"
	case TypeHTML:
		return "Google Sheets (HTML)"
	case TypeAirtable:
		return "Airtable"
	default:
		return "Google Sheets"
	}
}

// ErrUnknownSource is returned when a source id is not declared in the registry.
var ErrUnknownSource = errors.New("unknown source")

type registryFile struct {
	Sources []Source `json:"sources" yaml:"sources"`
}

// Registry holds the configured sources in file order.
type Registry struct {
	mu      sync.RWMutex
	sources []Source
	idx     map[string]Source
}

// NewRegistry validates and indexes the given sources.
func NewRegistry(list []Source) (*Registry, error) {
	reg := &Registry{
		sources: make([]Source, 0, len(list)),
		idx:     make(map[string]Source, len(list)),
	}
	for i := range list {
		src := sanitizeSource(list[i])
		if err := validateSource(src); err != nil {
			return nil, fmt.Errorf("sources[%d]: %w", i, err)
		}
		if _, exists := reg.idx[src.ID]; exists {
			return nil, fmt.Errorf("duplicate source id %q", src.ID)
		}
		reg.sources = append(reg.sources, src)
		reg.idx[src.ID] = src
	}
	return reg, nil
}

// LoadRegistry loads sources from a YAML/JSON file.
func LoadRegistry(path string) (*Registry, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("sources file path is empty")
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open sources file: %w", err)
	}
	defer file.Close()

	raw, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("read sources file: %w", err)
	}

	parsed, err := parseRegistry(raw, filepath.Ext(path))
	if err != nil {
		return nil, err
	}
	return NewRegistry(parsed.Sources)
}

func parseRegistry(data []byte, ext string) (registryFile, error) {
	ext = strings.ToLower(strings.TrimSpace(ext))

	decoders := []struct {
		name string
		ext  string
		fn   unmarshalFn
	}{
		{name: "yaml", ext: ".yaml", fn: yaml.Unmarshal},
		{name: "yaml", ext: ".yml", fn: yaml.Unmarshal},
		{name: "json", ext: ".json", fn: json.Unmarshal},
	}

	for _, d := range decoders {
		if ext != "" && ext != d.ext {
			continue
		}
		if reg, err := unmarshalRegistry(d.name, data, d.fn); err == nil {
			return reg, nil
		}
	}

	return registryFile{}, errors.New("sources file format not recognized (expected YAML or JSON)")
}

type unmarshalFn func([]byte, any) error

func unmarshalRegistry(name string, data []byte, fn unmarshalFn) (registryFile, error) {
	var reg registryFile
	if err := fn(data, &reg); err != nil {
		return registryFile{}, fmt.Errorf("decode %s sources: %w", name, err)
	}
	return reg, nil
}

func sanitizeSource(s Source) Source {
	s.ID = strings.TrimSpace(s.ID)
	s.Name = strings.TrimSpace(s.Name)
	s.Type = strings.ToLower(strings.TrimSpace(s.Type))
	s.URL = strings.TrimSpace(s.URL)
	if s.Airtable != nil {
		a := *s.Airtable
		a.Endpoint = strings.TrimRight(strings.TrimSpace(a.Endpoint), "/")
		a.BaseID = strings.TrimSpace(a.BaseID)
		a.TableID = strings.TrimSpace(a.TableID)
		a.APIKeyEnv = strings.TrimSpace(a.APIKeyEnv)
		s.Airtable = &a
	}
	if s.Config == nil {
		s.Config = map[string]any{}
	}
	return s
}

func validateSource(s Source) error {
	if s.ID == "" {
		return errors.New("id is required")
	}
	switch s.Kind() {
	case TypeCSV, TypeGviz, TypeHTML:
		if s.URL == "" {
			return fmt.Errorf("url is required for source %q", s.ID)
		}
	case TypeAirtable:
		if s.Airtable == nil || s.Airtable.BaseID == "" || s.Airtable.TableID == "" {
			return fmt.Errorf("airtable.base_id and airtable.table_id are required for source %q", s.ID)
		}
	default:
		return fmt.Errorf("unsupported type %q for source %q", s.Type, s.ID)
	}
	return nil
}

// All returns the sources in declaration order.
func (r *Registry) All() []Source {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Source, len(r.sources))
	copy(out, r.sources)
	return out
}

// ByID returns the source with the given id.
func (r *Registry) ByID(id string) (Source, bool) {
	if r == nil {
		return Source{}, false
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return Source{}, false
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.idx[id]
	return s, ok
}

// Active returns the source named id, or the first declared source when id is
// empty. ok is false when nothing matches.
func (r *Registry) Active(id string) (Source, bool) {
	if strings.TrimSpace(id) != "" {
		return r.ByID(id)
	}
	all := r.All()
	if len(all) == 0 {
		return Source{}, false
	}
	return all[0], true
}
