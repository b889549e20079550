package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const personSchema = `{
  "type": "object",
  "required": ["name", "email"],
  "properties": {
    "name":  {"type": "string"},
    "email": {"type": "string"}
  }
}`

func TestSchema_ValidateBytes(t *testing.T) {
	s := MustCompile("person", personSchema)

	tests := []struct {
		name      string
		doc       string
		wantValid bool
		wantField string
	}{
		{"valid", `{"name":"a","email":"a@b.com"}`, true, ""},
		{"extra fields allowed", `{"name":"a","email":"a@b.com","age":3}`, true, ""},
		{"missing field", `{"name":"a"}`, false, "(root)"},
		{"wrong type", `{"name":1,"email":"a@b.com"}`, false, "name"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := s.ValidateBytes([]byte(tt.doc))
			require.NoError(t, err)
			assert.Equal(t, tt.wantValid, res.Valid)
			if !tt.wantValid {
				require.NotEmpty(t, res.Errors)
				assert.Equal(t, tt.wantField, res.Errors[0].Field)
				assert.Error(t, res.Err("person"))
			}
		})
	}
}

func TestSchema_NotJSON(t *testing.T) {
	s := MustCompile("person", personSchema)

	_, err := s.ValidateBytes([]byte("Sure! Here is your email:"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not valid JSON")

	assert.Error(t, s.Check([]byte("```json")))
}

func TestSchema_ValidateGo(t *testing.T) {
	s := MustCompile("person", personSchema)

	res, err := s.ValidateGo(map[string]interface{}{"name": "a", "email": "x"})
	require.NoError(t, err)
	assert.True(t, res.Valid)
	assert.NoError(t, res.Err("person"))
}

func TestCompile_BadSchema(t *testing.T) {
	_, err := Compile("broken", `{"type": 12}`)
	assert.Error(t, err)
	assert.Panics(t, func() { MustCompile("broken", `{`) })
}

func TestCompileGo(t *testing.T) {
	schema := map[string]interface{}{
		"type":     "object",
		"required": []interface{}{"message"},
		"properties": map[string]interface{}{
			"message": map[string]interface{}{"type": "string"},
		},
	}

	s, err := CompileGo("chat", schema)
	require.NoError(t, err)

	res, err := s.ValidateBytes([]byte(`{"message":"hi"}`))
	require.NoError(t, err)
	assert.True(t, res.Valid)

	assert.Error(t, s.Check([]byte(`{"message":1}`)))

	_, err = CompileGo("broken", map[string]interface{}{"type": 12})
	assert.Error(t, err)
}
