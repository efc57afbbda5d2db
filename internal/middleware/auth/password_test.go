package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndVerify(t *testing.T) {
	hash, err := HashPassword("Listener123!")
	require.NoError(t, err)
	assert.NotEqual(t, "Listener123!", hash)

	assert.NoError(t, VerifyPassword(hash, "Listener123!"))
	assert.Error(t, VerifyPassword(hash, "listener123!"))
}

func TestBurnCompare(t *testing.T) {
	assert.NotPanics(t, func() { BurnCompare("anything") })
}
