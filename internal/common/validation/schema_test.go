package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validDoc() map[string]interface{} {
	return map[string]interface{}{
		"id":          "laptops-0",
		"name":        "Dell Inspiron 15",
		"description": "Thin and light",
		"brand":       "Dell",
		"price":       649.99,
		"category":    "Laptops",
		"image":       "https://example.com/dell.png",
	}
}

func TestValidator_AcceptsProduct(t *testing.T) {
	v, err := NewValidator(ProductSchema(4))
	require.NoError(t, err)

	res, err := v.Validate(validDoc())
	require.NoError(t, err)
	assert.True(t, res.Valid, res.GetErrorMessages())

	doc := validDoc()
	doc["description_vector"] = []float32{0.1, 0.2, 0.3, 0.4}
	res, err = v.Validate(doc)
	require.NoError(t, err)
	assert.True(t, res.Valid, res.GetErrorMessages())
}

func fieldsOf(res *ValidationResult) []string {
	fields := make([]string, len(res.Errors))
	for i, e := range res.Errors {
		fields[i] = e.Field
	}
	return fields
}

func TestValidator_RejectsNegativePrice(t *testing.T) {
	v, err := NewValidator(ProductSchema(4))
	require.NoError(t, err)

	doc := validDoc()
	doc["price"] = -1
	res, err := v.Validate(doc)
	require.NoError(t, err)
	assert.False(t, res.Valid)
	assert.Contains(t, fieldsOf(res), "price")
}

func TestValidator_RejectsWrongVectorLength(t *testing.T) {
	v, err := NewValidator(ProductSchema(4))
	require.NoError(t, err)

	doc := validDoc()
	doc["description_vector"] = []float32{0.1, 0.2}
	res, err := v.Validate(doc)
	require.NoError(t, err)
	assert.False(t, res.Valid)
	assert.Contains(t, fieldsOf(res), "description_vector")
}

func TestValidator_RejectsBlankName(t *testing.T) {
	v, err := NewValidator(ProductSchema(4))
	require.NoError(t, err)

	doc := validDoc()
	doc["name"] = "   "
	res, err := v.Validate(doc)
	require.NoError(t, err)
	assert.False(t, res.Valid)
	assert.NotEmpty(t, res.GetErrorMessages())
}

func TestNewValidator_BadSchema(t *testing.T) {
	_, err := NewValidator(`{"type": 12`)
	assert.Error(t, err)
}

func TestValidateURL(t *testing.T) {
	assert.True(t, ValidateURL("https://dummyimage.com/600x400/cccccc/000000.png&text=No+Image"))
	assert.True(t, ValidateURL("http://cdn.example.com/a.jpg"))
	assert.False(t, ValidateURL("not a url"))
	assert.False(t, ValidateURL(""))
}
