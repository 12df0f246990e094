package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSealOpenRoundTrip(t *testing.T) {
	t.Parallel()
	sealer, err := NewKeySealer("correct horse battery staple")
	require.NoError(t, err)

	sealed, err := sealer.Seal("sk-proj-abc123")
	require.NoError(t, err)
	assert.NotEqual(t, "sk-proj-abc123", sealed)

	opened, err := sealer.Open(sealed)
	require.NoError(t, err)
	assert.Equal(t, "sk-proj-abc123", opened)
}

func TestSealIsRandomized(t *testing.T) {
	t.Parallel()
	sealer, err := NewKeySealer("passphrase")
	require.NoError(t, err)

	a, err := sealer.Seal("same secret")
	require.NoError(t, err)
	b, err := sealer.Seal("same secret")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestOpenWrongPassphrase(t *testing.T) {
	t.Parallel()
	sealer, err := NewKeySealer("right")
	require.NoError(t, err)
	sealed, err := sealer.Seal("secret")
	require.NoError(t, err)

	other, err := NewKeySealer("wrong")
	require.NoError(t, err)
	_, err = other.Open(sealed)
	require.Error(t, err)
}

func TestOpenRejectsGarbage(t *testing.T) {
	t.Parallel()
	sealer, err := NewKeySealer("passphrase")
	require.NoError(t, err)

	_, err = sealer.Open("not-base64!!!")
	require.Error(t, err)
	_, err = sealer.Open("c2hvcnQ=") // valid base64, too short
	require.Error(t, err)
}

func TestNewKeySealerEmptyPassphrase(t *testing.T) {
	t.Parallel()
	_, err := NewKeySealer("")
	require.Error(t, err)
}
