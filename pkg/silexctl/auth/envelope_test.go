package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractToken_EnvelopeVariants(t *testing.T) {
	// The same logical server has been observed to vary its envelope across
	// deployed versions; all known shapes must yield the token.
	tests := []struct {
		name string
		body string
	}{
		{"result wrapper", `{"result":{"token":"T"}}`},
		{"bare token", `{"token":"T"}`},
		{"data wrapper", `{"data":{"token":"T"}}`},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			token, _, err := extractToken([]byte(tc.body))
			require.NoError(t, err)
			assert.Equal(t, "T", token)
		})
	}
}

func TestExtractToken_ProbeOrder(t *testing.T) {
	// result.token wins over a top-level token when both are present.
	token, _, err := extractToken([]byte(`{"token":"outer","result":{"token":"inner"}}`))
	require.NoError(t, err)
	assert.Equal(t, "inner", token)
}

func TestExtractToken_ServerDeclaredLifetime(t *testing.T) {
	token, lifetime, err := extractToken([]byte(`{"result":{"token":"T","expires_in":1800}}`))
	require.NoError(t, err)
	assert.Equal(t, "T", token)
	assert.Equal(t, 30*time.Minute, lifetime)

	// No declared lifetime: zero, caller applies the one-hour assumption.
	_, lifetime, err = extractToken([]byte(`{"result":{"token":"T"}}`))
	require.NoError(t, err)
	assert.Zero(t, lifetime)
}

func TestExtractToken_NoToken(t *testing.T) {
	_, _, err := extractToken([]byte(`{"result":{"message":"ok"}}`))
	assert.ErrorIs(t, err, errNoTokenInResponse)

	_, _, err = extractToken([]byte(`not json`))
	assert.Error(t, err)
}
