package jwt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testSecret  = "test-secret-key-for-unit-tests"
	testIssuer  = "catalogo-api-test"
	testUser    = "00000000-0000-0000-0000-000000000001"
	testCompany = "00000000-0000-0000-0000-000000000002"
)

func TestGenerateAndParse(t *testing.T) {
	tok, err := Generate(testSecret, testUser, testCompany, "proveedor", testIssuer, 60)
	require.NoError(t, err)

	claims, err := Parse(testSecret, testIssuer, tok)
	require.NoError(t, err)
	assert.Equal(t, testUser, claims.UserID)
	assert.Equal(t, testCompany, claims.CompanyID)
	assert.Equal(t, "proveedor", claims.Role)
}

func TestParse_Rechazos(t *testing.T) {
	valid, err := Generate(testSecret, testUser, testCompany, "proveedor", testIssuer, 60)
	require.NoError(t, err)
	expired, err := Generate(testSecret, testUser, testCompany, "proveedor", testIssuer, -1)
	require.NoError(t, err)
	sinCompania, err := Generate(testSecret, testUser, "", "proveedor", testIssuer, 60)
	require.NoError(t, err)

	tests := []struct {
		name   string
		secret string
		issuer string
		token  string
	}{
		{"expirado", testSecret, testIssuer, expired},
		{"secret incorrecto", "otro-secret", testIssuer, valid},
		{"emisor distinto", testSecret, "otro-emisor", valid},
		{"sin company_id", testSecret, testIssuer, sinCompania},
		{"basura", testSecret, testIssuer, "no.es.jwt"},
		{"secret vacío", "", testIssuer, valid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.secret, tt.issuer, tt.token)
			assert.Error(t, err)
		})
	}
}

func TestGenerate_SecretVacio(t *testing.T) {
	_, err := Generate("", testUser, testCompany, "proveedor", testIssuer, 60)
	assert.ErrorIs(t, err, ErrEmptySecret)
}
