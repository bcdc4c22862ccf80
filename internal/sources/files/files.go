// Package files loads catalogs and exception rules from YAML or TOML files.
//
// A catalog file lists entities:
//
//	entities:
//	  - id: attr-42
//	    type: attribute
//	    name: pressure
//	    parent_id: class-7
//	    raw_log: |
//	      readOnly
//	      source = false
//	      target = true
//
// A rules file lists exception rules. Actions may be names or codes:
//
//	[[rules]]
//	entity_type = "attribute"
//	property_name = "readOnly"
//	action = "update"
package files

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/pelletier/go-toml/v2"

	"github.com/agentstation/driftmap/internal/sources/memory"
	"github.com/agentstation/driftmap/pkg/catalogs"
	"github.com/agentstation/driftmap/pkg/errors"
	"github.com/agentstation/driftmap/pkg/exceptions"
	"github.com/agentstation/driftmap/pkg/logging"
)

// Format is a file encoding.
type Format string

// Formats.
const (
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
	FormatJSON Format = "json"
)

// DetectFormat picks a format from the file extension. YAML is the default.
func DetectFormat(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FormatTOML
	case ".json":
		return FormatJSON
	default:
		return FormatYAML
	}
}

type entityRecord struct {
	ID             string  `yaml:"id" toml:"id" json:"id"`
	Type           string  `yaml:"type" toml:"type" json:"type"`
	Name           string  `yaml:"name" toml:"name" json:"name"`
	Description    string  `yaml:"description" toml:"description" json:"description"`
	ParentID       *string `yaml:"parent_id" toml:"parent_id" json:"parent_id"`
	ParentName     string  `yaml:"parent_name" toml:"parent_name" json:"parent_name"`
	RawLog         *string `yaml:"raw_log" toml:"raw_log" json:"raw_log"`
	StatusVariance string  `yaml:"status_variance" toml:"status_variance" json:"status_variance"`
	Event          string  `yaml:"event" toml:"event" json:"event"`
	APriznak       string  `yaml:"a_priznak" toml:"a_priznak" json:"a_priznak"`
}

type catalogFile struct {
	Entities []entityRecord `yaml:"entities" toml:"entities" json:"entities"`
}

type ruleRecord struct {
	EntityType   string `yaml:"entity_type" toml:"entity_type" json:"entity_type"`
	PropertyName string `yaml:"property_name" toml:"property_name" json:"property_name"`
	Description  string `yaml:"description" toml:"description" json:"description"`
	Action       any    `yaml:"action" toml:"action" json:"action"`
}

type rulesFile struct {
	Rules []ruleRecord `yaml:"rules" toml:"rules" json:"rules"`
}

// Load reads a catalog file and an optional rules file into a memory source.
func Load(catalogPath, rulesPath string) (*memory.Source, error) {
	entities, err := LoadEntities(catalogPath)
	if err != nil {
		return nil, err
	}
	var rules []exceptions.Rule
	if rulesPath != "" {
		if rules, err = LoadRules(rulesPath); err != nil {
			return nil, err
		}
	}
	logging.Debug().
		Str("catalog", catalogPath).
		Str("rules", rulesPath).
		Int("entities", len(entities)).
		Int("rules", len(rules)).
		Msg("Loaded file source")
	return memory.New(entities, rules), nil
}

// LoadEntities reads a catalog file.
func LoadEntities(path string) ([]catalogs.Entity, error) {
	var f catalogFile
	if err := decodeFile(path, &f); err != nil {
		return nil, err
	}
	entities := make([]catalogs.Entity, 0, len(f.Entities))
	for i, r := range f.Entities {
		t, err := catalogs.ParseEntityType(r.Type)
		if err != nil {
			return nil, errors.NewParseError(string(DetectFormat(path)), path, entryMessage("entities", i, err), err)
		}
		if strings.TrimSpace(r.ID) == "" {
			err := errors.NewValidationError("id", r.ID, "is required")
			return nil, errors.NewParseError(string(DetectFormat(path)), path, entryMessage("entities", i, err), err)
		}
		entities = append(entities, catalogs.Entity{
			ID:             r.ID,
			Type:           t,
			Name:           r.Name,
			Description:    r.Description,
			ParentID:       r.ParentID,
			ParentName:     r.ParentName,
			RawLog:         r.RawLog,
			StatusVariance: r.StatusVariance,
			Event:          r.Event,
			APriznak:       r.APriznak,
		})
	}
	return entities, nil
}

// LoadRules reads a rules file.
func LoadRules(path string) ([]exceptions.Rule, error) {
	var f rulesFile
	if err := decodeFile(path, &f); err != nil {
		return nil, err
	}
	rules := make([]exceptions.Rule, 0, len(f.Rules))
	for i, r := range f.Rules {
		t, err := catalogs.ParseEntityType(r.EntityType)
		if err != nil {
			return nil, errors.NewParseError(string(DetectFormat(path)), path, entryMessage("rules", i, err), err)
		}
		a, err := exceptions.ParseActionValue(r.Action)
		if err != nil {
			return nil, errors.NewParseError(string(DetectFormat(path)), path, entryMessage("rules", i, err), err)
		}
		rules = append(rules, exceptions.Rule{
			EntityType:   t,
			PropertyName: r.PropertyName,
			Description:  r.Description,
			Action:       a,
		})
	}
	return rules, nil
}

func decodeFile(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.WrapIO("read", path, err)
	}
	return Decode(DetectFormat(path), path, data, v)
}

// Decode unmarshals data in the given format. name is used in errors only.
func Decode(format Format, name string, data []byte, v any) error {
	var err error
	switch format {
	case FormatTOML:
		err = toml.Unmarshal(data, v)
	case FormatJSON:
		err = json.Unmarshal(data, v)
	default:
		err = yaml.Unmarshal(data, v)
	}
	if err != nil {
		return errors.WrapParse(string(format), name, err)
	}
	return nil
}

func entryMessage(list string, i int, err error) string {
	return list + "[" + strconv.Itoa(i) + "]: " + err.Error()
}
