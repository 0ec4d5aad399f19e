package avatar

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"mime"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// ErrNotFound is returned by Open when no avatar has the requested name
var ErrNotFound = errors.New("avatar not found")

// Store keeps normalized avatars and serves them back by name
type Store interface {
	// Save stores img under name and returns the public path clients should use
	Save(ctx context.Context, name string, img *Image) (string, error)
	// Delete removes the avatar behind publicPath. Paths this store does not manage are ignored.
	Delete(ctx context.Context, publicPath string) error
	Open(ctx context.Context, name string) (io.ReadCloser, string, error)
}

// validName rejects anything that could escape the avatar namespace
func validName(name string) bool {
	return name != "" && name != "." && name != ".." && !strings.ContainsAny(name, `/\`)
}

// nameFromPath returns the avatar name behind a public path, or false when the path is foreign
func nameFromPath(prefix, publicPath string) (string, bool) {
	if !strings.HasPrefix(publicPath, prefix) {
		return "", false
	}
	name := path.Base(publicPath)
	return name, validName(name)
}

// LocalStore keeps avatars in a directory on disk
type LocalStore struct {
	dir    string
	prefix string
}

// NewLocalStore creates the avatar directory if needed
func NewLocalStore(dir, urlPrefix string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create avatar directory: %w", err)
	}
	return &LocalStore{dir: dir, prefix: urlPrefix}, nil
}

func (s *LocalStore) Save(_ context.Context, name string, img *Image) (string, error) {
	if !validName(name) {
		return "", fmt.Errorf("invalid avatar name %q", name)
	}
	if err := os.WriteFile(filepath.Join(s.dir, name), img.Data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write avatar: %w", err)
	}
	return s.prefix + name, nil
}

func (s *LocalStore) Delete(_ context.Context, publicPath string) error {
	name, ok := nameFromPath(s.prefix, publicPath)
	if !ok {
		return nil
	}
	if err := os.Remove(filepath.Join(s.dir, name)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to delete avatar: %w", err)
	}
	return nil
}

func (s *LocalStore) Open(_ context.Context, name string) (io.ReadCloser, string, error) {
	if !validName(name) {
		return nil, "", ErrNotFound
	}
	f, err := os.Open(filepath.Join(s.dir, name))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, "", ErrNotFound
		}
		return nil, "", fmt.Errorf("failed to open avatar: %w", err)
	}
	return f, contentTypeFor(name), nil
}

func contentTypeFor(name string) string {
	if ct := mime.TypeByExtension(path.Ext(name)); ct != "" {
		return ct
	}
	return "application/octet-stream"
}
