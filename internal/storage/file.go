package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"

	"flowstate/pkg/logx"
)

// fileStore is a dependency-free persistence backend: one JSON document per
// key under a prefix directory, written atomically via tmp+rename.
//
// Files: <prefix>.<key>.json
type fileStore struct {
	log logx.Logger

	mu     sync.Mutex
	prefix string
	closed bool
}

var keyPattern = regexp.MustCompile(`^[a-z][a-z0-9_-]*$`)

func openFile(cfg Config, log logx.Logger) (Store, error) {
	path := strings.TrimSpace(cfg.Path)
	if path == "" {
		return nil, errors.New("storage.path is required for file driver")
	}
	if log.IsZero() {
		log = logx.Nop()
	}

	dir := filepath.Dir(path)
	base := filepath.Base(path)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	prefix := filepath.Join(dir, base)

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	return &fileStore{log: log, prefix: prefix}, nil
}

func (s *fileStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func (s *fileStore) pathFor(key string) (string, error) {
	if !keyPattern.MatchString(key) {
		return "", errors.New("invalid storage key: " + key)
	}
	return s.prefix + "." + key + ".json", nil
}

func (s *fileStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, false, ErrDisabled
	}
	p, err := s.pathFor(key)
	if err != nil {
		return nil, false, err
	}
	b, err := os.ReadFile(p)
	if errors.Is(err, os.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return b, true, nil
}

func (s *fileStore) Put(ctx context.Context, key string, val []byte) error {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrDisabled
	}
	p, err := s.pathFor(key)
	if err != nil {
		return err
	}
	// Atomic replace so a crash mid-write never corrupts the blob.
	tmp := p + ".tmp"
	if err := os.WriteFile(tmp, val, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, p)
}

func (s *fileStore) Del(ctx context.Context, key string) error {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrDisabled
	}
	p, err := s.pathFor(key)
	if err != nil {
		return err
	}
	err = os.Remove(p)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}
