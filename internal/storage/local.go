package storage

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"
)

// LocalStore writes files into a flat upload directory. It is the fallback
// backend and the only one with a hard failure mode: a write is refused
// when free disk space is below the configured floor, since a partial write
// on a full disk is worse than a clean failure.
type LocalStore struct {
	dir          string
	minFreeBytes uint64
	freeBytes    func(dir string) (uint64, error) // swapped in tests
}

func NewLocalStore(dir string, minFree uint64) (*LocalStore, error) {
	if dir == "" {
		dir = "uploads"
	}
	if minFree == 0 {
		minFree = DefaultMinFreeBytes
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &LocalStore{dir: dir, minFreeBytes: minFree, freeBytes: statfsFree}, nil
}

func statfsFree(dir string) (uint64, error) {
	var st unix.Statfs_t
	if err := unix.Statfs(dir, &st); err != nil {
		return 0, err
	}
	return st.Bavail * uint64(st.Bsize), nil
}

func (s *LocalStore) Put(name string, r io.Reader) error {
	free, err := s.freeBytes(s.dir)
	if err != nil {
		return fmt.Errorf("stat upload dir: %w", err)
	}
	if free < s.minFreeBytes {
		return ErrInsufficientDiskSpace
	}
	f, err := os.Create(filepath.Join(s.dir, filepath.Base(name)))
	if err != nil {
		return err
	}
	defer f.Close()
	if _, err := io.Copy(f, r); err != nil {
		return err
	}
	return f.Sync()
}

func (s *LocalStore) Open(name string) (io.ReadCloser, error) {
	f, err := os.Open(filepath.Join(s.dir, filepath.Base(name)))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	return f, err
}

func (s *LocalStore) Remove(name string) error {
	err := os.Remove(filepath.Join(s.dir, filepath.Base(name)))
	if errors.Is(err, fs.ErrNotExist) {
		return ErrNotFound
	}
	return err
}
