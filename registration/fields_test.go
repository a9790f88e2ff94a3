package registration_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	gatherly "gatherly-go"
	"gatherly-go/registration"
)

func TestNewFieldSchemaPreservesOrder(t *testing.T) {
	schema, err := registration.NewFieldSchema([]gatherly.CustomField{
		{Name: "college", Type: gatherly.FieldText},
		{Name: "size", Type: gatherly.FieldDropdown, Options: []string{"S", "M"}},
		{Name: "dob", Type: gatherly.FieldDate},
	})
	require.NoError(t, err)

	fields := schema.Fields()
	require.Equal(t, 3, schema.Len())
	assert.Equal(t, "college", fields[0].Name)
	assert.Equal(t, "size", fields[1].Name)
	assert.Equal(t, "dob", fields[2].Name)
}

func TestNewFieldSchemaTrimsNames(t *testing.T) {
	schema, err := registration.NewFieldSchema([]gatherly.CustomField{
		{Name: "  college  ", Type: gatherly.FieldText},
	})
	require.NoError(t, err)

	field, ok := schema.Lookup("college")
	require.True(t, ok)
	assert.Equal(t, "college", field.Name)
}

func TestNewFieldSchemaRejectsEmptyName(t *testing.T) {
	_, err := registration.NewFieldSchema([]gatherly.CustomField{
		{Name: "   ", Type: gatherly.FieldText},
	})
	assert.Error(t, err)
}

func TestNewFieldSchemaRejectsDuplicateName(t *testing.T) {
	_, err := registration.NewFieldSchema([]gatherly.CustomField{
		{Name: "college", Type: gatherly.FieldText},
		{Name: "college", Type: gatherly.FieldEmail},
	})
	assert.Error(t, err)
}

func TestNewFieldSchemaRejectsUnknownType(t *testing.T) {
	_, err := registration.NewFieldSchema([]gatherly.CustomField{
		{Name: "college", Type: gatherly.CustomFieldType("checkbox")},
	})
	assert.Error(t, err)
}

func TestNewFieldSchemaRejectsDropdownWithoutOptions(t *testing.T) {
	_, err := registration.NewFieldSchema([]gatherly.CustomField{
		{Name: "size", Type: gatherly.FieldDropdown},
	})
	assert.Error(t, err)
}

func TestFieldSchemaLookupMiss(t *testing.T) {
	schema, err := registration.NewFieldSchema(nil)
	require.NoError(t, err)

	_, ok := schema.Lookup("nope")
	assert.False(t, ok)
	assert.Equal(t, 0, schema.Len())
}
