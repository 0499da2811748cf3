package normalize

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Canonical listing keys resolved from spreadsheet headers.
const (
	KeyID            = "id"
	KeyNameEN        = "name.en"
	KeyNameAR        = "name.ar"
	KeyField         = "field"
	KeyDegreeLevel   = "degree_level"
	KeyDestinationEN = "destination.en"
	KeyDestinationAR = "destination.ar"
	KeyDestination   = "destination"
	KeyDeadline      = "deadline"
	KeyApplyURL      = "apply_url"
	KeyDescriptionEN = "description.en"
	KeyDescriptionAR = "description.ar"
)

// Variants maps a canonical key to the header spellings that may carry it,
// highest priority first.
type Variants map[string][]string

// DefaultVariants returns the built-in header synonym table.
func DefaultVariants() Variants {
	return Variants{
		KeyID:            {"id", "identifier", "scholarship_id"},
		KeyNameEN:        {"name_en", "nameen", "name_(en)", "name", "title_en", "title"},
		KeyNameAR:        {"name_ar", "namear", "name_(ar)", "title_ar"},
		KeyField:         {"field", "category", "discipline", "subject", "area"},
		KeyDegreeLevel:   {"degree_level", "degreelevel", "level", "degree", "program_level", "level_of_study"},
		KeyDestinationEN: {"destination_en", "destinationen"},
		KeyDestinationAR: {"destination_ar", "destinationar"},
		KeyDestination:   {"destination", "country", "location", "destination_country", "study_destination", "where"},
		KeyDeadline:      {"deadline", "due_date", "application_deadline", "closing_date"},
		KeyApplyURL:      {"apply_url", "applyurl", "apply", "url", "link", "application_url", "apply_link"},
		KeyDescriptionEN: {"description_en", "descriptionen", "description_(en)", "description", "desc_en"},
		KeyDescriptionAR: {"description_ar", "descriptionar", "description_(ar)", "desc_ar"},
	}
}

// For returns the variant list for key.
func (v Variants) For(key string) []string {
	if v == nil {
		return DefaultVariants()[key]
	}
	return v[key]
}

// Extend appends extra spellings after the existing ones. Existing priority is
// never changed and duplicates are skipped.
func (v Variants) Extend(extra map[string][]string) Variants {
	out := make(Variants, len(v))
	for k, list := range v {
		out[k] = append([]string(nil), list...)
	}
	for key, list := range extra {
		seen := make(map[string]struct{}, len(out[key]))
		for _, s := range out[key] {
			seen[s] = struct{}{}
		}
		for _, s := range list {
			s = Header(s)
			if s == "" {
				continue
			}
			if _, dup := seen[s]; dup {
				continue
			}
			seen[s] = struct{}{}
			out[key] = append(out[key], s)
		}
	}
	return out
}

type variantsFile struct {
	Variants map[string][]string `json:"variants" yaml:"variants"`
}

// LoadVariants reads additional header spellings from a YAML or JSON file and
// layers them over the defaults. An empty path yields the defaults.
func LoadVariants(path string) (Variants, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return DefaultVariants(), nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read synonyms file: %w", err)
	}

	var file variantsFile
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		err = json.Unmarshal(raw, &file)
	case ".yaml", ".yml", "":
		err = yaml.Unmarshal(raw, &file)
	default:
		return nil, errors.New("synonyms file format not recognized (expected YAML or JSON)")
	}
	if err != nil {
		return nil, fmt.Errorf("decode synonyms file: %w", err)
	}

	defaults := DefaultVariants()
	for key := range file.Variants {
		if _, ok := defaults[key]; !ok {
			return nil, fmt.Errorf("unknown synonym key %q", key)
		}
	}
	return defaults.Extend(file.Variants), nil
}

// Pick returns the first non-empty value among variants, or "".
func Pick(row Row, variants []string) string {
	for _, v := range variants {
		if val := row[v]; val != "" {
			return val
		}
	}
	return ""
}
