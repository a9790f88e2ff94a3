package registration

import (
	"fmt"
	"strings"

	gatherly "gatherly-go"
)

// knownFieldTypes is the closed set of custom-field types the form can
// render.
var knownFieldTypes = map[gatherly.CustomFieldType]bool{
	gatherly.FieldText:     true,
	gatherly.FieldEmail:    true,
	gatherly.FieldPhone:    true,
	gatherly.FieldDropdown: true,
	gatherly.FieldNumber:   true,
	gatherly.FieldDate:     true,
	gatherly.FieldTextarea: true,
	gatherly.FieldInfo:     true,
	gatherly.FieldFile:     true,
}

// FieldSchema is the ordered set of an event's custom registration fields,
// keyed by name. Name uniqueness and dropdown options are validated once at
// load time so the rest of the form can trust lookups.
type FieldSchema struct {
	fields []gatherly.CustomField
	index  map[string]int
}

// NewFieldSchema validates and indexes an event's custom fields, preserving
// their declared order.
func NewFieldSchema(fields []gatherly.CustomField) (*FieldSchema, error) {
	schema := &FieldSchema{
		fields: make([]gatherly.CustomField, 0, len(fields)),
		index:  make(map[string]int, len(fields)),
	}

	for _, field := range fields {
		name := strings.TrimSpace(field.Name)
		if name == "" {
			return nil, fmt.Errorf("custom field with empty name")
		}
		if _, dup := schema.index[name]; dup {
			return nil, fmt.Errorf("duplicate custom field name %q", name)
		}
		if !knownFieldTypes[field.Type] {
			return nil, fmt.Errorf("custom field %q has unknown type %q", name, field.Type)
		}
		if field.Type == gatherly.FieldDropdown && len(field.Options) == 0 {
			return nil, fmt.Errorf("dropdown field %q has no options", name)
		}

		field.Name = name
		schema.index[name] = len(schema.fields)
		schema.fields = append(schema.fields, field)
	}

	return schema, nil
}

// Fields returns the fields in declaration order.
func (s *FieldSchema) Fields() []gatherly.CustomField {
	out := make([]gatherly.CustomField, len(s.fields))
	copy(out, s.fields)
	return out
}

// Lookup returns the field definition for a name.
func (s *FieldSchema) Lookup(name string) (gatherly.CustomField, bool) {
	i, ok := s.index[name]
	if !ok {
		return gatherly.CustomField{}, false
	}
	return s.fields[i], true
}

// Len returns the number of fields.
func (s *FieldSchema) Len() int {
	return len(s.fields)
}
