package io

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileLock(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "data")

	first := NewFileLock(dir)
	assert.Equal(t, filepath.Join(dir, LockFileName), first.Path())
	require.NoError(t, first.Lock())

	// flock locks are per open file description, so a second handle in the
	// same process conflicts like another process would
	second := NewFileLock(dir)
	require.Error(t, second.Lock())

	require.NoError(t, first.Unlock())
	require.NoError(t, second.Lock())
	require.NoError(t, second.Unlock())
}
