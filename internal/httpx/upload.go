package httpx

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

var allowedImageExts = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
}

var errUnsupportedImage = errors.New("httpx: unsupported image extension")

// uploadStore persists profile images under a local directory and serves
// them read-only.
type uploadStore struct {
	dir string
}

func newUploadStore(dir string) (*uploadStore, error) {
	if dir == "" {
		return nil, errors.New("empty uploads directory")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create uploads dir: %w", err)
	}
	return &uploadStore{dir: dir}, nil
}

// save stores the uploaded file under a random name, keeping the original
// extension. The extension allow-list is the only content check.
func (u *uploadStore) save(src multipart.File, hdr *multipart.FileHeader) (string, error) {
	ext := strings.ToLower(filepath.Ext(hdr.Filename))
	if !allowedImageExts[ext] {
		return "", errUnsupportedImage
	}
	name := uuid.NewString() + ext
	dst, err := os.Create(filepath.Join(u.dir, name))
	if err != nil {
		return "", fmt.Errorf("create upload file: %w", err)
	}
	defer dst.Close()
	if _, err := io.Copy(dst, src); err != nil {
		_ = os.Remove(dst.Name())
		return "", fmt.Errorf("write upload file: %w", err)
	}
	return name, nil
}

// remove deletes a previously saved file. Used to roll back an upload when
// the registration it belongs to fails.
func (u *uploadStore) remove(name string) {
	if name == "" {
		return
	}
	_ = os.Remove(filepath.Join(u.dir, name))
}

func (u *uploadStore) handler() http.Handler {
	return http.StripPrefix("/uploads/", http.FileServer(http.Dir(u.dir)))
}
