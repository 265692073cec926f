package storage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignedURLRoundTrip(t *testing.T) {
	signer := NewSignedURLSigner("secret", time.Hour)

	token, expiresAt, err := signer.Generate("report-1", "reports/report-1.csv")
	require.NoError(t, err)
	assert.True(t, expiresAt.After(time.Now()))

	id, path, _, err := signer.Parse(token, false)
	require.NoError(t, err)
	assert.Equal(t, "report-1", id)
	assert.Equal(t, "reports/report-1.csv", path)
}

func TestSignedURLTamperDetected(t *testing.T) {
	signer := NewSignedURLSigner("secret", time.Hour)
	token, _, err := signer.Generate("report-1", "reports/report-1.csv")
	require.NoError(t, err)

	_, _, _, err = signer.Parse(token+"x", false)
	require.Error(t, err)
}

func TestSignedURLExpired(t *testing.T) {
	signer := NewSignedURLSigner("secret", -time.Minute)
	// TTL <= 0 falls back to a day, so build an expired token manually.
	signer.ttl = -time.Minute
	token, _, err := signer.Generate("report-1", "reports/report-1.csv")
	require.NoError(t, err)

	_, _, _, err = signer.Parse(token, false)
	require.Error(t, err)

	_, _, _, err = signer.Parse(token, true)
	require.NoError(t, err)
}
