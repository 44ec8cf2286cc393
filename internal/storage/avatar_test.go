package storage

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAvatarStoreSave(t *testing.T) {
	store, err := NewAvatarStore(t.TempDir(), "http://localhost:8080")
	require.NoError(t, err)

	t.Run("saves an image and returns its URL", func(t *testing.T) {
		url, err := store.Save("user-1", "photo.PNG", strings.NewReader("fake image bytes"))
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(url, "http://localhost:8080/uploads/user-1_"))
		assert.True(t, strings.HasSuffix(url, ".png"), "extension should be lowercased")

		name := url[strings.LastIndex(url, "/")+1:]
		data, err := os.ReadFile(filepath.Join(store.Dir(), name))
		require.NoError(t, err)
		assert.Equal(t, "fake image bytes", string(data))
	})

	t.Run("re-uploads get distinct names", func(t *testing.T) {
		first, err := store.Save("user-1", "photo.png", strings.NewReader("a"))
		require.NoError(t, err)
		second, err := store.Save("user-1", "photo.png", strings.NewReader("b"))
		require.NoError(t, err)
		assert.NotEqual(t, first, second)
	})

	t.Run("rejects unsupported extensions", func(t *testing.T) {
		_, err := store.Save("user-1", "malware.exe", strings.NewReader("x"))
		assert.Error(t, err)
		_, err = store.Save("user-1", "noextension", strings.NewReader("x"))
		assert.Error(t, err)
	})
}

func TestAvatarStoreRemove(t *testing.T) {
	store, err := NewAvatarStore(t.TempDir(), "")
	require.NoError(t, err)

	t.Run("removes a stored file", func(t *testing.T) {
		url, err := store.Save("user-1", "photo.png", strings.NewReader("bytes"))
		require.NoError(t, err)

		require.NoError(t, store.Remove(url))

		name := url[strings.LastIndex(url, "/")+1:]
		_, statErr := os.Stat(filepath.Join(store.Dir(), name))
		assert.True(t, os.IsNotExist(statErr))
	})

	t.Run("missing files are not an error", func(t *testing.T) {
		assert.NoError(t, store.Remove("/uploads/already-gone.png"))
	})

	t.Run("ignores paths that escape the upload dir", func(t *testing.T) {
		assert.NoError(t, store.Remove("/uploads/../../etc/passwd"))
		assert.NoError(t, store.Remove("https://evil.example/nothing-here"))
	})
}
