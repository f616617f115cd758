package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/afero"
)

const (
	// MaxImageBytes es el tamaño máximo por imagen (10MB).
	MaxImageBytes = 10 * 1024 * 1024
)

var (
	ErrTooLarge       = errors.New("image too large")
	ErrBadExtension   = errors.New("image extension not allowed")
	allowedExtensions = map[string]struct{}{
		"jpg":  {},
		"jpeg": {},
		"png":  {},
		"gif":  {},
	}
)

// Upload es un archivo recibido del cliente, todavía no persistido.
type Upload struct {
	Filename string
	Size     int64
	Content  []byte
}

// Storage guarda blobs bajo un root (MEDIA_ROOT) y arma sus URLs públicas.
type Storage struct {
	fs      afero.Fs
	baseURL string
}

// NewStorage usa fs tal cual; para disco real pasar afero.NewBasePathFs(afero.NewOsFs(), root).
func NewStorage(fs afero.Fs, baseURL string) *Storage {
	if fs == nil {
		fs = afero.NewMemMapFs()
	}
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		baseURL = "/media/"
	}
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	return &Storage{fs: fs, baseURL: baseURL}
}

// NewDiskStorage crea el root si no existe.
func NewDiskStorage(root, baseURL string) (*Storage, error) {
	osfs := afero.NewOsFs()
	if err := osfs.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("media root: %w", err)
	}
	return NewStorage(afero.NewBasePathFs(osfs, root), baseURL), nil
}

// ValidateImage aplica las reglas de tamaño y extensión.
func ValidateImage(u Upload) error {
	size := u.Size
	if size <= 0 {
		size = int64(len(u.Content))
	}
	if size > MaxImageBytes {
		return ErrTooLarge
	}
	if _, ok := allowedExtensions[Extension(u.Filename)]; !ok {
		return ErrBadExtension
	}
	return nil
}

// ImageMessage traduce el error de ValidateImage al mensaje para el cliente.
func ImageMessage(err error) string {
	switch {
	case errors.Is(err, ErrTooLarge):
		return "El tamaño máximo de la imagen es de 10MB."
	case errors.Is(err, ErrBadExtension):
		return "Solo se permiten archivos JPG, JPEG, PNG y GIF."
	default:
		return "Imagen inválida."
	}
}

func Extension(filename string) string {
	ext := strings.TrimPrefix(filepath.Ext(strings.TrimSpace(filename)), ".")
	return strings.ToLower(ext)
}

// Save escribe el blob como prefix/<uuid>.<ext> y devuelve el path relativo.
func (s *Storage) Save(ctx context.Context, prefix string, u Upload) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	prefix = strings.Trim(strings.TrimSpace(prefix), "/")
	name := uuid.NewString() + "." + Extension(u.Filename)
	rel := path.Join(prefix, name)

	if prefix != "" {
		if err := s.fs.MkdirAll(prefix, 0o755); err != nil {
			return "", fmt.Errorf("media mkdir: %w", err)
		}
	}

	if err := afero.WriteFile(s.fs, rel, u.Content, 0o644); err != nil {
		return "", fmt.Errorf("media write: %w", err)
	}
	return rel, nil
}

// Remove borra un blob; inexistente no es error.
func (s *Storage) Remove(rel string) error {
	rel = strings.TrimSpace(rel)
	if rel == "" {
		return nil
	}
	err := s.fs.Remove(rel)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// RemoveAll borra varios blobs ignorando errores (limpieza tras rollback).
func (s *Storage) RemoveAll(paths []string) {
	for _, p := range paths {
		_ = s.Remove(p)
	}
}

func (s *Storage) Exists(rel string) bool {
	ok, err := afero.Exists(s.fs, rel)
	return err == nil && ok
}

// URL devuelve la URL pública del blob, o "" si no hay path.
func (s *Storage) URL(rel string) string {
	rel = strings.TrimSpace(rel)
	if rel == "" {
		return ""
	}
	return s.baseURL + strings.TrimPrefix(rel, "/")
}

func (s *Storage) Read(rel string) (io.ReadCloser, error) {
	return s.fs.Open(rel)
}
