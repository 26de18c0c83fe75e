package docmodel

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/muhammadmuzzammil1998/jsonc"

	"journalimport/internal/services"
)

//go:embed ruleset_default.jsonc
var defaultRuleset []byte

// MetadataType describes a metadata type allowed by the ruleset.
type MetadataType struct {
	Name       string `json:"name"`
	Repeatable bool   `json:"repeatable,omitempty"`
}

// DocStructType describes a structure type allowed by the ruleset.
type DocStructType struct {
	Name     string `json:"name"`
	Anchor   bool   `json:"anchor,omitempty"`
	Physical bool   `json:"physical,omitempty"`
}

// Ruleset is the vocabulary a document may use.
type Ruleset struct {
	Name           string          `json:"name"`
	MetadataTypes  []MetadataType  `json:"metadata_types"`
	DocStructTypes []DocStructType `json:"docstruct_types"`

	metadata   map[string]MetadataType
	docstructs map[string]DocStructType
}

// DefaultRuleset returns the embedded periodical ruleset.
func DefaultRuleset() (*Ruleset, error) {
	return ParseRuleset(defaultRuleset)
}

// LoadRuleset reads a JSONC ruleset file. An empty path selects the embedded
// default.
func LoadRuleset(path string) (*Ruleset, error) {
	if strings.TrimSpace(path) == "" {
		return DefaultRuleset()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "ruleset", "read", path, err)
	}
	rs, err := ParseRuleset(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return rs, nil
}

// ParseRuleset decodes JSON with comments and trailing commas.
func ParseRuleset(data []byte) (*Ruleset, error) {
	clean := jsonc.ToJSON(data)
	if err := validateJSON(schemaRuleset, clean); err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "ruleset", "validate", "", err)
	}
	var rs Ruleset
	if err := json.Unmarshal(clean, &rs); err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "ruleset", "decode", "", err)
	}
	rs.metadata = make(map[string]MetadataType, len(rs.MetadataTypes))
	for _, mt := range rs.MetadataTypes {
		if _, dup := rs.metadata[mt.Name]; dup {
			return nil, services.Wrap(services.ErrConfiguration, "ruleset", "validate", "duplicate metadata type "+mt.Name, nil)
		}
		rs.metadata[mt.Name] = mt
	}
	rs.docstructs = make(map[string]DocStructType, len(rs.DocStructTypes))
	for _, dt := range rs.DocStructTypes {
		if _, dup := rs.docstructs[dt.Name]; dup {
			return nil, services.Wrap(services.ErrConfiguration, "ruleset", "validate", "duplicate docstruct type "+dt.Name, nil)
		}
		rs.docstructs[dt.Name] = dt
	}
	return &rs, nil
}

// MetadataType resolves a metadata type by name.
func (r *Ruleset) MetadataType(name string) (MetadataType, error) {
	mt, ok := r.metadata[name]
	if !ok {
		return MetadataType{}, services.Wrap(
			services.ErrMetadataMapping,
			"ruleset",
			"metadata type",
			fmt.Sprintf("%q is not defined in ruleset %s", name, r.Name),
			nil,
		)
	}
	return mt, nil
}

// DocStructType resolves a structure type by name.
func (r *Ruleset) DocStructType(name string) (DocStructType, error) {
	dt, ok := r.docstructs[name]
	if !ok {
		return DocStructType{}, services.Wrap(
			services.ErrMetadataMapping,
			"ruleset",
			"docstruct type",
			fmt.Sprintf("%q is not defined in ruleset %s", name, r.Name),
			nil,
		)
	}
	return dt, nil
}
