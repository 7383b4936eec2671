package credential_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tasker/internal/credential"
)

func stores(t *testing.T) map[string]credential.Store {
	t.Helper()
	return map[string]credential.Store{
		"memory": credential.NewMemoryStore(),
		"file":   credential.NewFileStore(filepath.Join(t.TempDir(), "nested", "credential.json")),
	}
}

func TestStore_SaveThenLoad(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, store.Save("a.b.c", "alice"))

			cred, ok, err := store.Load()
			require.NoError(t, err)
			require.True(t, ok)
			assert.Equal(t, credential.Credential{Token: "a.b.c", Username: "alice"}, cred)
		})
	}
}

func TestStore_ClearThenLoad(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, store.Save("a.b.c", "alice"))
			require.NoError(t, store.Clear())

			_, ok, err := store.Load()
			require.NoError(t, err)
			assert.False(t, ok)

			// idempotent
			require.NoError(t, store.Clear())
		})
	}
}

func TestStore_SaveEmptyTokenClears(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, store.Save("a.b.c", "alice"))
			require.NoError(t, store.Save("", "alice"))

			_, ok, err := store.Load()
			require.NoError(t, err)
			assert.False(t, ok)
		})
	}
}

func TestStore_LoadDoesNotValidate(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, store.Save("null", "bob"))

			cred, ok, err := store.Load()
			require.NoError(t, err)
			require.True(t, ok)
			assert.Equal(t, "null", cred.Token)
		})
	}
}

func TestFileStore_Mode(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credential.json")
	store := credential.NewFileStore(path)
	require.NoError(t, store.Save("a.b.c", "alice"))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestFileStore_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credential.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0600))

	_, ok, err := credential.NewFileStore(path).Load()
	assert.Error(t, err)
	assert.False(t, ok)
}

func TestTokenSource(t *testing.T) {
	store := credential.NewMemoryStore()
	ts := credential.TokenSource(store)

	_, err := ts.Token()
	assert.ErrorIs(t, err, credential.ErrNoCredential)

	require.NoError(t, store.Save("a.b.c", "alice"))
	tok, err := ts.Token()
	require.NoError(t, err)
	assert.Equal(t, "a.b.c", tok.AccessToken)
	assert.Equal(t, "Bearer", tok.Type())
}
