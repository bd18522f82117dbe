package storage

import (
	"errors"
	"fmt"
	"os"

	"github.com/peterbourgon/diskv/v3"
)

// Diskv keeps one file per key under a base directory.
type Diskv struct {
	d *diskv.Diskv
}

func OpenDiskv(basePath string) (*Diskv, error) {
	if basePath == "" {
		return nil, errors.New("diskv path is empty")
	}
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("ensure diskv path: %w", err)
	}
	return &Diskv{d: diskv.New(diskv.Options{
		BasePath:     basePath,
		Transform:    func(string) []string { return []string{} },
		CacheSizeMax: 1024 * 1024, // 1MB
	})}, nil
}

func (s *Diskv) Get(key string) (string, bool, error) {
	if !s.d.Has(key) {
		return "", false, nil
	}
	val, err := s.d.Read(key)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("get %q: %w", key, err)
	}
	return string(val), true, nil
}

func (s *Diskv) Set(key, value string) error {
	if err := s.d.Write(key, []byte(value)); err != nil {
		return fmt.Errorf("set %q: %w", key, err)
	}
	return nil
}

func (s *Diskv) Delete(key string) error {
	if !s.d.Has(key) {
		return nil
	}
	if err := s.d.Erase(key); err != nil {
		return fmt.Errorf("delete %q: %w", key, err)
	}
	return nil
}

func (s *Diskv) Close() error {
	return nil
}
