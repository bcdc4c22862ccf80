package files

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/driftmap/pkg/catalogs"
	"github.com/agentstation/driftmap/pkg/errors"
	"github.com/agentstation/driftmap/pkg/exceptions"
)

const catalogYAML = `entities:
  - id: class-7
    type: classes
    name: Pump
  - id: attr-42
    type: attribute
    name: pressure
    parent_id: class-7
    parent_name: Pump
    event: modified
    raw_log: |
      readOnly
      source = false
      target = true
`

const rulesTOML = `
[[rules]]
entity_type = "attribute"
property_name = "readOnly"
action = "update"

[[rules]]
entity_type = "attribute"
property_name = "informs"
description = "Informs"
action = 0
`

const rulesYAML = `rules:
  - entity_type: attribute
    property_name: readOnly
    action: 2
  - entity_type: class
    property_name: label
    action: ignore
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestDetectFormat(t *testing.T) {
	assert.Equal(t, FormatTOML, DetectFormat("rules.TOML"))
	assert.Equal(t, FormatJSON, DetectFormat("catalog.json"))
	assert.Equal(t, FormatYAML, DetectFormat("catalog.yml"))
	assert.Equal(t, FormatYAML, DetectFormat("catalog"))
}

func TestLoadEntities(t *testing.T) {
	entities, err := LoadEntities(writeFile(t, "catalog.yaml", catalogYAML))
	require.NoError(t, err)
	require.Len(t, entities, 2)

	assert.Equal(t, catalogs.EntityTypeClass, entities[0].Type)
	assert.Nil(t, entities[0].RawLog)

	attr := entities[1]
	assert.Equal(t, catalogs.EntityTypeAttribute, attr.Type)
	assert.Equal(t, "class-7", attr.Parent())
	assert.Equal(t, "modified", attr.Event)
	assert.Equal(t, "readOnly\nsource = false\ntarget = true\n", attr.Log())
}

func TestLoadEntitiesJSON(t *testing.T) {
	path := writeFile(t, "catalog.json", `{"entities":[{"id":"g1","type":"attribute_group","name":"Sizing"}]}`)
	entities, err := LoadEntities(path)
	require.NoError(t, err)
	require.Len(t, entities, 1)
	assert.Equal(t, catalogs.EntityTypeGroup, entities[0].Type)
}

func TestLoadEntitiesErrors(t *testing.T) {
	_, err := LoadEntities(filepath.Join(t.TempDir(), "missing.yaml"))
	var ioErr *errors.IOError
	assert.True(t, errors.As(err, &ioErr))

	_, err = LoadEntities(writeFile(t, "bad.yaml", "entities: [\n"))
	var parseErr *errors.ParseError
	require.True(t, errors.As(err, &parseErr))
	assert.Equal(t, "yaml", parseErr.Format)

	_, err = LoadEntities(writeFile(t, "type.yaml", "entities:\n  - id: x\n    type: widget\n"))
	require.True(t, errors.As(err, &parseErr))
	assert.Contains(t, parseErr.Message, "entities[0]")

	_, err = LoadEntities(writeFile(t, "id.yaml", "entities:\n  - type: class\n"))
	require.Error(t, err)
	assert.True(t, errors.IsValidationError(err))
}

func TestLoadRulesTOML(t *testing.T) {
	rules, err := LoadRules(writeFile(t, "rules.toml", rulesTOML))
	require.NoError(t, err)
	assert.Equal(t, []exceptions.Rule{
		{EntityType: catalogs.EntityTypeAttribute, PropertyName: "readOnly", Action: exceptions.Update},
		{EntityType: catalogs.EntityTypeAttribute, PropertyName: "informs", Description: "Informs", Action: exceptions.Ignore},
	}, rules)
}

func TestLoadRulesYAML(t *testing.T) {
	rules, err := LoadRules(writeFile(t, "rules.yaml", rulesYAML))
	require.NoError(t, err)
	require.Len(t, rules, 2)
	assert.Equal(t, exceptions.Update, rules[0].Action)
	assert.Equal(t, catalogs.EntityTypeClass, rules[1].EntityType)
	assert.Equal(t, exceptions.Ignore, rules[1].Action)
}

func TestLoadRulesBadAction(t *testing.T) {
	_, err := LoadRules(writeFile(t, "rules.yaml", "rules:\n  - entity_type: class\n    property_name: x\n    action: 1\n"))
	require.Error(t, err)
	assert.True(t, errors.IsValidationError(err))
}

func TestLoad(t *testing.T) {
	src, err := Load(writeFile(t, "catalog.yaml", catalogYAML), writeFile(t, "rules.toml", rulesTOML))
	require.NoError(t, err)

	ctx := context.Background()
	attrs, err := src.ListEntities(ctx, catalogs.EntityTypeAttribute, catalogs.SearchFilters{})
	require.NoError(t, err)
	assert.Len(t, attrs, 1)

	rules, err := src.ListRules(ctx, catalogs.EntityTypeAttribute)
	require.NoError(t, err)
	assert.Len(t, rules, 2)

	src, err = Load(writeFile(t, "catalog.yaml", catalogYAML), "")
	require.NoError(t, err)
	rules, err = src.ListRules(ctx, catalogs.EntityTypeAttribute)
	require.NoError(t, err)
	assert.Empty(t, rules)
}
