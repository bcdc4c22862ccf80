package catalogs

import (
	"strings"

	"github.com/agentstation/driftmap/pkg/errors"
)

// EntityType identifies which schema catalog an entity belongs to.
type EntityType string

// String returns the string representation of an EntityType.
func (t EntityType) String() string {
	return string(t)
}

// Entity types.
const (
	EntityTypeClass     EntityType = "class"     // Schema class
	EntityTypeGroup     EntityType = "group"     // Attribute group
	EntityTypeAttribute EntityType = "attribute" // Attribute (owned by a class)
)

// EntityTypes lists all entity types in catalog order.
func EntityTypes() []EntityType {
	return []EntityType{EntityTypeClass, EntityTypeGroup, EntityTypeAttribute}
}

// Valid reports whether t is a known entity type.
func (t EntityType) Valid() bool {
	switch t {
	case EntityTypeClass, EntityTypeGroup, EntityTypeAttribute:
		return true
	}
	return false
}

// ParseEntityType parses an entity type name, accepting plural forms and
// the attribute_group alias used by catalog exports.
func ParseEntityType(s string) (EntityType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "class", "classes":
		return EntityTypeClass, nil
	case "group", "groups", "attribute_group", "attribute_groups":
		return EntityTypeGroup, nil
	case "attribute", "attributes", "attr":
		return EntityTypeAttribute, nil
	}
	return "", errors.NewValidationError("entity_type", s, "must be one of: class, group, attribute")
}
