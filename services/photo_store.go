package services

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// PhotoStore stocke les photos d'événements sous une clé opaque
type PhotoStore interface {
	Save(ctx context.Context, data []byte, contentType string) (string, error)
	Delete(ctx context.Context, key string) error
	URL(key string) string
}

var photoExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
}

// LocalPhotoStore enregistre les photos sur le disque, servies sous /storage/{key}
type LocalPhotoStore struct {
	dir     string
	baseURL string
}

var localKeyPattern = regexp.MustCompile(`^[0-9a-f\-]{36}\.(jpg|png|gif)$`)

// NewLocalPhotoStore crée le dossier de stockage si nécessaire
func NewLocalPhotoStore(dir, publicBaseURL string) (*LocalPhotoStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("erreur lors de la création du dossier de stockage: %w", err)
	}
	return &LocalPhotoStore{dir: dir, baseURL: strings.TrimRight(publicBaseURL, "/")}, nil
}

// Save écrit la photo sous un nom UUID
func (s *LocalPhotoStore) Save(_ context.Context, data []byte, contentType string) (string, error) {
	ext, ok := photoExtensions[contentType]
	if !ok {
		return "", fmt.Errorf("type de photo non supporté: %s", contentType)
	}

	key := uuid.NewString() + ext
	tmp := filepath.Join(s.dir, key+".tmp")
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return "", fmt.Errorf("erreur lors de l'écriture de la photo: %w", err)
	}
	if err := os.Rename(tmp, filepath.Join(s.dir, key)); err != nil {
		_ = os.Remove(tmp)
		return "", fmt.Errorf("erreur lors de l'écriture de la photo: %w", err)
	}

	return key, nil
}

// Delete supprime une photo; une photo déjà absente n'est pas une erreur
func (s *LocalPhotoStore) Delete(_ context.Context, key string) error {
	if !localKeyPattern.MatchString(key) {
		return fmt.Errorf("clé de photo invalide: %q", key)
	}
	err := os.Remove(filepath.Join(s.dir, key))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("erreur lors de la suppression de la photo: %w", err)
	}
	return nil
}

// URL retourne l'adresse publique de la photo
func (s *LocalPhotoStore) URL(key string) string {
	if key == "" {
		return ""
	}
	return s.baseURL + "/storage/" + key
}

// Open ouvre une photo pour la servir; la clé est validée avant tout accès disque
func (s *LocalPhotoStore) Open(key string) (*os.File, error) {
	if !localKeyPattern.MatchString(key) {
		return nil, os.ErrNotExist
	}
	return os.Open(filepath.Join(s.dir, key))
}

// CloudinaryPhotoStore envoie les photos sur Cloudinary avec des requêtes signées
type CloudinaryPhotoStore struct {
	cloudName string
	apiKey    string
	apiSecret string
	folder    string
	apiBase   string
	client    *http.Client
	now       func() time.Time
}

// NewCloudinaryPhotoStore crée une nouvelle instance de CloudinaryPhotoStore
func NewCloudinaryPhotoStore(cloudName, apiKey, apiSecret, folder string) *CloudinaryPhotoStore {
	return &CloudinaryPhotoStore{
		cloudName: cloudName,
		apiKey:    apiKey,
		apiSecret: apiSecret,
		folder:    strings.Trim(folder, "/"),
		apiBase:   "https://api.cloudinary.com/v1_1",
		client:    &http.Client{Timeout: 30 * time.Second},
		now:       time.Now,
	}
}

type cloudinaryUploadResponse struct {
	PublicID  string `json:"public_id"`
	SecureURL string `json:"secure_url"`
	Format    string `json:"format"`
	Bytes     int    `json:"bytes"`
}

// sign calcule la signature Cloudinary: sha1 des paramètres triés suivis du secret
func (s *CloudinaryPhotoStore) sign(params map[string]string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+"="+params[k])
	}

	sum := sha1.Sum([]byte(strings.Join(parts, "&") + s.apiSecret))
	return hex.EncodeToString(sum[:])
}

// Save envoie la photo et retourne son public_id (dossier/uuid)
func (s *CloudinaryPhotoStore) Save(ctx context.Context, data []byte, contentType string) (string, error) {
	ext, ok := photoExtensions[contentType]
	if !ok {
		return "", fmt.Errorf("type de photo non supporté: %s", contentType)
	}

	params := map[string]string{
		"public_id": uuid.NewString(),
		"timestamp": strconv.FormatInt(s.now().Unix(), 10),
	}
	if s.folder != "" {
		params["folder"] = s.folder
	}

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	part, err := writer.CreateFormFile("file", "photo"+ext)
	if err != nil {
		return "", err
	}
	if _, err := part.Write(data); err != nil {
		return "", err
	}
	for k, v := range params {
		if err := writer.WriteField(k, v); err != nil {
			return "", err
		}
	}
	_ = writer.WriteField("api_key", s.apiKey)
	_ = writer.WriteField("signature", s.sign(params))
	writer.Close()

	uploadURL := fmt.Sprintf("%s/%s/image/upload", s.apiBase, s.cloudName)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, uploadURL, body)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("erreur lors de l'upload Cloudinary: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		slog.Error("❌ Cloudinary upload", "status", resp.StatusCode, "body", string(bodyBytes))
		return "", fmt.Errorf("cloudinary a retourné le statut %d", resp.StatusCode)
	}

	var out cloudinaryUploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("réponse Cloudinary illisible: %w", err)
	}

	return out.PublicID, nil
}

// Delete supprime la photo sur Cloudinary
func (s *CloudinaryPhotoStore) Delete(ctx context.Context, key string) error {
	params := map[string]string{
		"public_id": key,
		"timestamp": strconv.FormatInt(s.now().Unix(), 10),
	}

	form := url.Values{}
	for k, v := range params {
		form.Set(k, v)
	}
	form.Set("api_key", s.apiKey)
	form.Set("signature", s.sign(params))

	deleteURL := fmt.Sprintf("%s/%s/image/destroy", s.apiBase, s.cloudName)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, deleteURL, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("erreur lors de la suppression Cloudinary: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		slog.Warn("⚠️  Cloudinary destroy", "status", resp.StatusCode, "body", string(bodyBytes))
		return fmt.Errorf("cloudinary a retourné le statut %d", resp.StatusCode)
	}

	return nil
}

// URL retourne l'adresse de livraison de la photo
func (s *CloudinaryPhotoStore) URL(key string) string {
	if key == "" {
		return ""
	}
	return fmt.Sprintf("https://res.cloudinary.com/%s/image/upload/%s", s.cloudName, key)
}
