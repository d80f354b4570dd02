package handlers

import (
	"errors"
	"io/fs"
	"log/slog"
	"net/http"
	"os"

	"ensaj-backend/constants"
	"ensaj-backend/utils"

	"github.com/gorilla/mux"
)

// PhotoOpener ouvre une photo stockée localement
type PhotoOpener interface {
	Open(key string) (*os.File, error)
}

// StorageHandler sert les photos du stockage local
type StorageHandler struct {
	photos PhotoOpener
}

// NewStorageHandler crée une nouvelle instance de StorageHandler
func NewStorageHandler(photos PhotoOpener) *StorageHandler {
	return &StorageHandler{photos: photos}
}

// Photo sert /storage/{key}
func (h *StorageHandler) Photo(w http.ResponseWriter, r *http.Request) {
	key := mux.Vars(r)["key"]

	f, err := h.photos.Open(key)
	if errors.Is(err, fs.ErrNotExist) {
		utils.RespondError(w, http.StatusNotFound, "Photo introuvable")
		return
	}
	if err != nil {
		slog.Error("Erreur lors de l'ouverture de la photo", "key", key, "error", err)
		utils.RespondError(w, http.StatusInternalServerError, constants.ErrServerError)
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, constants.ErrServerError)
		return
	}

	w.Header().Set("Cache-Control", "public, max-age=86400")
	http.ServeContent(w, r, key, info.ModTime(), f)
}
