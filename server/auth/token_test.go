package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccessTokenRoundTrip(t *testing.T) {
	secret := []byte("test-secret")
	token, err := GenerateAccessToken("u1", time.Now().Add(time.Hour), secret)
	require.NoError(t, err)

	userID, err := ParseAccessToken(token, secret)
	require.NoError(t, err)
	assert.Equal(t, "u1", userID)
}

func TestAccessTokenRejected(t *testing.T) {
	secret := []byte("test-secret")

	expired, err := GenerateAccessToken("u1", time.Now().Add(-time.Minute), secret)
	require.NoError(t, err)
	_, err = ParseAccessToken(expired, secret)
	assert.Error(t, err)

	token, err := GenerateAccessToken("u1", time.Time{}, secret)
	require.NoError(t, err)
	_, err = ParseAccessToken(token, []byte("other-secret"))
	assert.Error(t, err)

	_, err = ParseAccessToken("not-a-token", secret)
	assert.Error(t, err)

	_, err = GenerateAccessToken(" ", time.Time{}, secret)
	assert.Error(t, err)
}

func TestExtractBearerToken(t *testing.T) {
	token, ok := ExtractBearerToken("Bearer abc.def")
	assert.True(t, ok)
	assert.Equal(t, "abc.def", token)

	token, ok = ExtractBearerToken("bearer  abc")
	assert.True(t, ok)
	assert.Equal(t, "abc", token)

	for _, header := range []string{"", "Bearer", "Bearer ", "Basic abc"} {
		_, ok := ExtractBearerToken(header)
		assert.False(t, ok, header)
	}
}
