// SPDX-License-Identifier: Apache-2.0

package kvstore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFileStore_RequiresDir(t *testing.T) {
	_, err := NewFileStore("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "data directory is required")
}

func TestFileStore_RoundTrip(t *testing.T) {
	fs, err := NewFileStore(t.TempDir())
	require.NoError(t, err)
	defer fs.Close()

	_, ok, err := fs.Get("companies")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, fs.Set("companies", `[{"id":1,"name":"Acme"}]`))

	v, ok, err := fs.Get("companies")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, `[{"id":1,"name":"Acme"}]`, v)

	// overwrite
	require.NoError(t, fs.Set("companies", `[]`))
	v, ok, err = fs.Get("companies")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, `[]`, v)
}

func TestFileStore_Remove(t *testing.T) {
	fs, err := NewFileStore(t.TempDir())
	require.NoError(t, err)
	defer fs.Close()

	require.NoError(t, fs.Set("settings", `{}`))
	require.NoError(t, fs.Remove("settings"))

	_, ok, err := fs.Get("settings")
	require.NoError(t, err)
	assert.False(t, ok)

	// removing an absent key is not an error
	require.NoError(t, fs.Remove("settings"))
}

func TestFileStore_Keys(t *testing.T) {
	fs, err := NewFileStore(t.TempDir())
	require.NoError(t, err)
	defer fs.Close()

	require.NoError(t, fs.Set("companies", `[]`))
	require.NoError(t, fs.Set("reviews_acme", `{}`))
	require.NoError(t, fs.Set("reviews_globex", `{}`))

	keys, err := fs.Keys()
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"companies", "reviews_acme", "reviews_globex"}, keys)
}

func TestFileStore_KeyEncoding(t *testing.T) {
	fs, err := NewFileStore(t.TempDir())
	require.NoError(t, err)
	defer fs.Close()

	// keys with separator characters must survive the file name mapping
	key := "reviews_acme/eu"
	require.NoError(t, fs.Set(key, `{}`))

	v, ok, err := fs.Get(key)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, `{}`, v)

	keys, err := fs.Keys()
	require.NoError(t, err)
	assert.Contains(t, keys, key)
}

func TestFileStore_ExclusiveLock(t *testing.T) {
	dir := t.TempDir()

	first, err := NewFileStore(dir)
	require.NoError(t, err)

	_, err = NewFileStore(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "locked by another process")

	require.NoError(t, first.Close())

	second, err := NewFileStore(dir)
	require.NoError(t, err)
	require.NoError(t, second.Close())
}

func TestMemStore_RoundTrip(t *testing.T) {
	ms := NewMemStore()

	require.NoError(t, ms.Set("a", "1"))
	require.NoError(t, ms.Set("b", "2"))

	v, ok, err := ms.Get("a")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "1", v)

	require.NoError(t, ms.Remove("a"))
	_, ok, err = ms.Get("a")
	require.NoError(t, err)
	assert.False(t, ok)

	keys, err := ms.Keys()
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, keys)
	assert.Equal(t, 1, ms.Len())
}
