package kv

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testStore(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	_, err := s.Get(ctx, "cart")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Set(ctx, "cart", []byte(`{"items":[]}`)))

	got, err := s.Get(ctx, "cart")
	require.NoError(t, err)
	assert.Equal(t, []byte(`{"items":[]}`), got)

	// Overwrite wins.
	require.NoError(t, s.Set(ctx, "cart", []byte(`v2`)))
	got, err = s.Get(ctx, "cart")
	require.NoError(t, err)
	assert.Equal(t, []byte(`v2`), got)

	require.NoError(t, s.Delete(ctx, "cart"))
	_, err = s.Get(ctx, "cart")
	assert.ErrorIs(t, err, ErrNotFound)

	// Deleting an absent key is not an error.
	require.NoError(t, s.Delete(ctx, "cart"))

	assert.NoError(t, s.Ping(ctx))
	assert.NoError(t, s.Close())
}

func TestMemory(t *testing.T) {
	testStore(t, NewMemory())
}

func TestFile(t *testing.T) {
	f, err := NewFile(t.TempDir())
	require.NoError(t, err)
	testStore(t, f)
}

func TestMemory_GetReturnsCopy(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	require.NoError(t, m.Set(ctx, "k", []byte("abc")))

	got, err := m.Get(ctx, "k")
	require.NoError(t, err)
	got[0] = 'x'

	again, err := m.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("abc"), again)
}

func TestFile_SurvivesReopen(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	f, err := NewFile(dir)
	require.NoError(t, err)
	require.NoError(t, f.Set(ctx, "cart", []byte("persisted")))

	reopened, err := NewFile(dir)
	require.NoError(t, err)
	got, err := reopened.Get(ctx, "cart")
	require.NoError(t, err)
	assert.Equal(t, []byte("persisted"), got)
}

func TestFile_KeySanitized(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	f, err := NewFile(dir)
	require.NoError(t, err)
	require.NoError(t, f.Set(ctx, "../escape", []byte("x")))

	// The record stays inside the base directory.
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, filepath.Base(entries[0].Name()), entries[0].Name())

	got, err := f.Get(ctx, "../escape")
	require.NoError(t, err)
	assert.Equal(t, []byte("x"), got)
}

func TestFile_LeavesNoTempFiles(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	f, err := NewFile(dir)
	require.NoError(t, err)
	for range 10 {
		require.NoError(t, f.Set(ctx, "cart", []byte("v")))
	}

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}
