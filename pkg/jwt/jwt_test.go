package jwt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateYParse(t *testing.T) {
	tok, err := Generate("s3cr3t", "emp-7", "María Gómez", "bakery-ops", 5)
	require.NoError(t, err)

	id, err := Parse("s3cr3t", tok)
	require.NoError(t, err)
	assert.Equal(t, "emp-7", id.UserID)
	assert.Equal(t, "María Gómez", id.Name)
}

func TestParse_FirmaIncorrecta(t *testing.T) {
	tok, err := Generate("uno", "emp-7", "X", "bakery-ops", 5)
	require.NoError(t, err)

	_, err = Parse("otro", tok)
	assert.Error(t, err)
}

func TestParse_Expirado(t *testing.T) {
	tok, err := Generate("s", "emp-7", "X", "bakery-ops", -1)
	require.NoError(t, err)

	_, err = Parse("s", tok)
	assert.Error(t, err)
}

func TestSecretVacio(t *testing.T) {
	_, err := Generate("", "a", "b", "c", 1)
	assert.Error(t, err)
	_, err = Parse("", "x")
	assert.Error(t, err)
}
