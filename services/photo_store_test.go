package services

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalPhotoStore(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	store, err := NewLocalPhotoStore(filepath.Join(dir, "photos"), "https://api.ensaj.test/")
	require.NoError(t, err)

	key, err := store.Save(ctx, pngHeader, "image/png")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(key, ".png"))
	assert.Regexp(t, localKeyPattern, key)
	assert.Equal(t, "https://api.ensaj.test/storage/"+key, store.URL(key))
	assert.Empty(t, store.URL(""))

	f, err := store.Open(key)
	require.NoError(t, err)
	data, err := io.ReadAll(f)
	f.Close()
	require.NoError(t, err)
	assert.Equal(t, pngHeader, data)

	t.Run("deux sauvegardes ne partagent jamais une clé", func(t *testing.T) {
		other, err := store.Save(ctx, pngHeader, "image/png")
		require.NoError(t, err)
		assert.NotEqual(t, key, other)
	})

	t.Run("type non supporté", func(t *testing.T) {
		_, err := store.Save(ctx, []byte("x"), "application/pdf")
		assert.Error(t, err)
	})

	t.Run("clé hors du dossier refusée", func(t *testing.T) {
		_, err := store.Open("../config.go")
		assert.ErrorIs(t, err, os.ErrNotExist)
		assert.Error(t, store.Delete(ctx, "../config.go"))
	})

	t.Run("suppression idempotente", func(t *testing.T) {
		require.NoError(t, store.Delete(ctx, key))
		require.NoError(t, store.Delete(ctx, key))
		_, err := store.Open(key)
		assert.ErrorIs(t, err, os.ErrNotExist)
	})
}

func TestCloudinaryPhotoStore(t *testing.T) {
	ctx := context.Background()
	var destroyed string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/demo/image/upload":
			assert.NoError(t, r.ParseMultipartForm(1<<20))
			assert.Equal(t, "key", r.FormValue("api_key"))
			assert.Equal(t, "ensaj/events", r.FormValue("folder"))
			assert.Equal(t, "1700000000", r.FormValue("timestamp"))
			assert.NotEmpty(t, r.FormValue("signature"))
			_, _, err := r.FormFile("file")
			assert.NoError(t, err)
			_ = json.NewEncoder(w).Encode(map[string]any{
				"public_id": "ensaj/events/" + r.FormValue("public_id"),
				"format":    "png",
			})
		case "/demo/image/destroy":
			assert.NoError(t, r.ParseForm())
			destroyed = r.FormValue("public_id")
			_, _ = w.Write([]byte(`{"result":"ok"}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	store := NewCloudinaryPhotoStore("demo", "key", "secret", "/ensaj/events/")
	store.apiBase = srv.URL
	store.now = func() time.Time { return time.Unix(1700000000, 0) }

	key, err := store.Save(ctx, pngHeader, "image/png")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(key, "ensaj/events/"))
	assert.Equal(t, "https://res.cloudinary.com/demo/image/upload/"+key, store.URL(key))

	require.NoError(t, store.Delete(ctx, key))
	assert.Equal(t, key, destroyed)

	t.Run("erreur HTTP remontée", func(t *testing.T) {
		store.apiBase = srv.URL + "/inconnu"
		_, err := store.Save(ctx, pngHeader, "image/png")
		assert.Error(t, err)
	})
}

func TestCloudinarySignature(t *testing.T) {
	store := NewCloudinaryPhotoStore("demo", "key", "abcd", "")
	got := store.sign(map[string]string{"timestamp": "1315060510", "public_id": "sample"})
	assert.Equal(t, "c3470533147774275dd37996cc4d0e68fd03cd4f", got)
}
