package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"ensaj-backend/services"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoragePhoto(t *testing.T) {
	store, err := services.NewLocalPhotoStore(t.TempDir(), "http://localhost:8090")
	require.NoError(t, err)

	key, err := store.Save(context.Background(), pngHeader, "image/png")
	require.NoError(t, err)

	router := mux.NewRouter()
	router.HandleFunc("/storage/{key}", NewStorageHandler(store).Photo)

	t.Run("photo existante", func(t *testing.T) {
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/storage/"+key, nil))
		require.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, pngHeader, rr.Body.Bytes())
		assert.Equal(t, "image/png", rr.Header().Get("Content-Type"))
	})

	t.Run("clé inconnue ou invalide", func(t *testing.T) {
		for _, k := range []string{"00000000-0000-0000-0000-000000000000.png", "pas-une-cle.png"} {
			rr := httptest.NewRecorder()
			router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/storage/"+k, nil))
			assert.Equal(t, http.StatusNotFound, rr.Code, k)
		}
	})
}
