package localfs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/kirillkom/green-loan-compliance/internal/core/domain"
)

type Storage struct {
	basePath string
}

func New(basePath string) (*Storage, error) {
	if basePath == "" {
		basePath = "./data/storage"
	}
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("create storage dir: %w", err)
	}
	return &Storage{basePath: basePath}, nil
}

// Save writes data under key. The object only becomes visible to Open and
// List once fully written.
func (s *Storage) Save(_ context.Context, key string, data io.Reader) (int64, error) {
	p, err := s.resolve(key)
	if err != nil {
		return 0, err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return 0, fmt.Errorf("create object dir: %w", err)
	}

	f, err := os.CreateTemp(filepath.Dir(p), ".upload-*")
	if err != nil {
		return 0, fmt.Errorf("create file: %w", err)
	}
	tmp := f.Name()
	n, err := io.Copy(f, data)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(tmp)
		return 0, fmt.Errorf("write file: %w", err)
	}
	if err := os.Rename(tmp, p); err != nil {
		_ = os.Remove(tmp)
		return 0, fmt.Errorf("commit file: %w", err)
	}
	return n, nil
}

func (s *Storage) Open(_ context.Context, key string) (io.ReadCloser, error) {
	p, err := s.resolve(key)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(p)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, domain.WrapError(domain.ErrNotFound, "open object", err)
		}
		return nil, fmt.Errorf("open file: %w", err)
	}
	return f, nil
}

// List returns every object key below prefix, slash-separated. A missing
// prefix yields no keys.
func (s *Storage) List(ctx context.Context, prefix string) ([]string, error) {
	root, err := s.resolve(prefix)
	if err != nil {
		return nil, err
	}

	var keys []string
	err = filepath.WalkDir(root, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			if errors.Is(walkErr, fs.ErrNotExist) && p == root {
				return fs.SkipDir
			}
			return walkErr
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() || strings.HasPrefix(d.Name(), ".upload-") {
			return nil
		}
		rel, err := filepath.Rel(s.basePath, p)
		if err != nil {
			return err
		}
		keys = append(keys, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list objects: %w", err)
	}
	return keys, nil
}

func (s *Storage) resolve(key string) (string, error) {
	clean := path.Clean("/" + strings.TrimSpace(key))
	if clean == "/" || strings.Contains(key, "..") {
		return "", domain.WrapError(domain.ErrInvalidInput, "resolve object key", fmt.Errorf("invalid key %q", key))
	}
	return filepath.Join(s.basePath, filepath.FromSlash(strings.TrimPrefix(clean, "/"))), nil
}
