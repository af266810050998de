// internal/evidence/normalize_test.go
package evidence

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"connectorgen/internal/common/logger"
)

func TestNormalizeAttributes_LooseMapping(t *testing.T) {
	raw := json.RawMessage(`{
		"id": {"type": "string"},
		"name": {"type": "string", "mandatory": true},
		"groups": {"type": "string", "multiValued": true}
	}`)

	attrs := NormalizeAttributes(raw)
	require.Len(t, attrs, 3)
	assert.Equal(t, AttributeRecord{Type: "string"}, attrs["id"])
	assert.True(t, attrs["name"].Mandatory)
	assert.True(t, attrs["groups"].MultiValued)
}

func TestNormalizeAttributes_StructuredModel(t *testing.T) {
	raw := json.RawMessage(`{"attributes": {"id": {"type": "string"}}}`)
	attrs := NormalizeAttributes(raw)
	require.Len(t, attrs, 1)
	assert.Equal(t, "string", attrs["id"].Type)
}

func TestNormalizeAttributes_BareTypeStrings(t *testing.T) {
	raw := json.RawMessage(`{"id": "string", "active": "boolean"}`)
	attrs := NormalizeAttributes(raw)
	require.Len(t, attrs, 2)
	assert.Equal(t, "boolean", attrs["active"].Type)
}

func TestNormalizeAttributes_FailClosed(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"empty", ``},
		{"array", `[1, 2]`},
		{"scalar", `42`},
		{"not json", `nonsense`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Empty(t, NormalizeAttributes(json.RawMessage(tt.raw)))
		})
	}
}

func TestNormalizeAttributes_DropsUndecodableRecords(t *testing.T) {
	raw := json.RawMessage(`{"id": {"type": "string"}, "bad": 42, "typeless": {}}`)
	attrs := NormalizeAttributes(raw)
	require.Len(t, attrs, 1)
	assert.Contains(t, attrs, "id")
}

func TestNormalizeEndpoints(t *testing.T) {
	t.Run("records", func(t *testing.T) {
		raw := json.RawMessage(`[{"path": "/Users", "method": "GET"}, {"path": "/Users/{id}"}]`)
		eps := NormalizeEndpoints(raw)
		require.Len(t, eps, 2)
		assert.Equal(t, "GET", eps[0].Method)
	})

	t.Run("bare paths", func(t *testing.T) {
		raw := json.RawMessage(`["/Users", "  /Groups  "]`)
		eps := NormalizeEndpoints(raw)
		require.Len(t, eps, 2)
		assert.Equal(t, "/Groups", eps[1].Path)
	})

	t.Run("unrecognized shape yields empty", func(t *testing.T) {
		assert.Empty(t, NormalizeEndpoints(json.RawMessage(`{"path": "/Users"}`)))
		assert.Empty(t, NormalizeEndpoints(nil))
	})
}

func TestValidateAttributes(t *testing.T) {
	assert.NoError(t, ValidateAttributes(map[string]AttributeRecord{
		"id": {Type: "string"},
	}))
	assert.Error(t, ValidateAttributes(map[string]AttributeRecord{
		"id": {Type: ""},
	}))
}

func TestSanitizeAttributes_DegradesToEmptyOnInvalid(t *testing.T) {
	log := logger.NewNoOpLogger()

	valid := SanitizeAttributes(log, json.RawMessage(`{"id": {"type": "string"}}`))
	assert.Len(t, valid, 1)

	// The empty-type record survives normalization via the bare-string path
	// only for strings, so force an invalid canonical form directly.
	invalid := map[string]AttributeRecord{"id": {}}
	require.Error(t, ValidateAttributes(invalid))
}

func TestEvidenceJSON(t *testing.T) {
	e := Evidence{
		Attributes: map[string]AttributeRecord{"id": {Type: "string"}},
		Endpoints:  []EndpointRecord{{Path: "/Users", Method: "GET"}},
	}
	assert.JSONEq(t, `{
		"attributes": {"id": {"type": "string"}},
		"endpoints": [{"path": "/Users", "method": "GET"}]
	}`, e.JSON())
}
