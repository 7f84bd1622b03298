package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

// FileStore keeps the latest reading as a JSON document at a fixed path.
type FileStore struct {
	path string
	log  *zap.Logger
}

func NewFileStore(path string, log *zap.Logger) *FileStore {
	return &FileStore{path: path, log: log}
}

// ensureDir creates the data directory. Failures are only logged: a missing
// directory surfaces as the more useful write error later on.
func (s *FileStore) ensureDir() {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		s.log.Debug("cannot create data directory", zap.String("path", s.path), zap.Error(err))
	}
}

func (s *FileStore) Load(_ context.Context) (map[string]any, error) {
	s.ensureDir()
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrEmpty
		}
		return nil, &ReadError{Err: err}
	}
	return decodeDocument(data)
}

// Save writes doc to a temporary file next to the canonical path and
// renames it into place. Each call uses its own temporary file, so
// concurrent writers never share one; the last rename wins.
func (s *FileStore) Save(_ context.Context, doc map[string]any) error {
	s.ensureDir()
	data, err := encodeDocument(doc, "  ")
	if err != nil {
		return &WriteError{Err: fmt.Errorf("encode: %w", err)}
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return &WriteError{Err: err}
	}
	tmpName := tmp.Name()
	cleanup := func(err error) error {
		_ = tmp.Close()
		if rmErr := os.Remove(tmpName); rmErr != nil && !errors.Is(rmErr, fs.ErrNotExist) {
			s.log.Warn("cannot remove temporary file", zap.String("path", tmpName), zap.Error(rmErr))
		}
		return &WriteError{Err: err}
	}

	if _, err := tmp.Write(data); err != nil {
		return cleanup(err)
	}
	if err := tmp.Sync(); err != nil {
		return cleanup(err)
	}
	if err := tmp.Close(); err != nil {
		return cleanup(err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return cleanup(err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return cleanup(err)
	}
	s.log.Debug("stored reading", zap.String("path", s.path), zap.Int("bytes", len(data)))
	return nil
}

// Ping checks that the data directory exists once created on demand.
func (s *FileStore) Ping(_ context.Context) error {
	s.ensureDir()
	info, err := os.Stat(filepath.Dir(s.path))
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", filepath.Dir(s.path))
	}
	return nil
}
