package unittest

import (
	"crypto/rand"
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/require"
)

// RandomStringFixture returns a random URL-safe string of size n.
func RandomStringFixture(t testing.TB, n int) string {
	require.Greater(t, n, 0, "size should be positive")

	// every 3 random bytes encode to 4 characters
	byteSlice := make([]byte, (n+3)/4*3)
	_, err := rand.Read(byteSlice)
	require.NoError(t, err)

	return base64.URLEncoding.EncodeToString(byteSlice)[:n]
}
