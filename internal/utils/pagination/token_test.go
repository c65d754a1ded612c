package pagination

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeToken(t *testing.T) {
	createdAt := time.Date(2023, 5, 15, 14, 30, 45, 123456789, time.UTC)

	token := EncodeToken(createdAt, "interview-42")
	assert.NotEmpty(t, token, "Token should not be empty")
	assert.NotContains(t, token, "=", "Token must be safe in a query string")

	decodedCreatedAt, decodedID, err := DecodeToken(token)
	require.NoError(t, err, "Decoding should not return an error")
	assert.True(t, createdAt.Equal(decodedCreatedAt), "Created at time should match after decode")
	assert.Equal(t, "interview-42", decodedID)

	// IDs may themselves contain the separator
	token = EncodeToken(createdAt, "a|b")
	_, decodedID, err = DecodeToken(token)
	require.NoError(t, err)
	assert.Equal(t, "a|b", decodedID)
}

func TestDecodeTokenErrors(t *testing.T) {
	_, _, err := DecodeToken("%%%not-base64")
	assert.Error(t, err, "Invalid base64 should fail")

	_, _, err = DecodeToken(EncodeToken(time.Now(), "")[:4])
	assert.Error(t, err, "Truncated token should fail")

	_, _, err = DecodeToken("bm8tc2VwYXJhdG9y") // "no-separator"
	assert.Error(t, err, "Token without separator should fail")
}

func TestBefore(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	assert.True(t, Before(base, "z", base.Add(time.Second), "a"))
	assert.False(t, Before(base.Add(time.Second), "a", base, "z"))
	assert.True(t, Before(base, "a", base, "b"), "ties break on id")
	assert.False(t, Before(base, "b", base, "b"), "the cursor row itself is excluded")
}
