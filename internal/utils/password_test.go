package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"golang.org/x/crypto/bcrypt"
)

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("s3cret-orebi")
	require.NoError(t, err)
	assert.True(t, IsArgon2Hash(hash))

	ok, err := VerifyPassword("s3cret-orebi", hash)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = VerifyPassword("mauvais-mot-de-passe", hash)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestVerifyBcryptBackCompat(t *testing.T) {
	// les anciens comptes ont encore des hashs bcrypt
	legacy, err := bcrypt.GenerateFromPassword([]byte("ancien-compte"), bcrypt.MinCost)
	require.NoError(t, err)
	assert.True(t, IsBcryptHash(string(legacy)))

	ok, err := VerifyPassword("ancien-compte", string(legacy))
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = VerifyPassword("autre", string(legacy))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestVerifyPasswordRejectsGarbageHash(t *testing.T) {
	_, err := VerifyPassword("peu importe", "pas-un-hash")
	assert.Error(t, err)
}
