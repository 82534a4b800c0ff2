package dto_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/catalogo-api/internal/application/dto"
)

func TestUpdateCategoryRequest_ParentIDTresEstados(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		wantSet   bool
		wantValue string
	}{
		{"ausente", `{"name":"X"}`, false, ""},
		{"null", `{"parent_id":null}`, true, ""},
		{"vacío", `{"parent_id":""}`, true, ""},
		{"valor", `{"parent_id":"abc"}`, true, "abc"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var in dto.UpdateCategoryRequest
			require.NoError(t, json.Unmarshal([]byte(tt.body), &in))
			assert.Equal(t, tt.wantSet, in.ParentID.Set)
			assert.Equal(t, tt.wantValue, in.ParentID.Value)
		})
	}
}

func TestUpdateCategoryRequest_ParentIDAusenteNoSeSerializa(t *testing.T) {
	raw, err := json.Marshal(dto.UpdateCategoryRequest{})
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "parent_id")

	raw, err = json.Marshal(dto.UpdateCategoryRequest{ParentID: dto.OptionalString{Set: true}})
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"parent_id":null`)
}

func TestOptionalString_TipoInvalido(t *testing.T) {
	var in dto.UpdateCategoryRequest
	assert.Error(t, json.Unmarshal([]byte(`{"parent_id":42}`), &in))
}
