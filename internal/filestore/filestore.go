package filestore

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"procurement/internal/config"
	"procurement/internal/models"
)

// Allowed spreadsheet extensions, lower case.
var allowedExtensions = map[string]bool{
	".xls":  true,
	".xlsx": true,
	".csv":  true,
}

// StoredFile describes a file persisted on disk. Name is the generated
// on-disk name, not the client-supplied one.
type StoredFile struct {
	Name string
	Size int64
}

// Store keeps raw file bytes on local disk, one subdirectory per file kind.
// Stored names are uuid-based so client-supplied names never reach the
// filesystem.
type Store struct {
	dir     string
	maxSize int64
	log     zerolog.Logger
}

func NewStore(cfg config.FileStoreConfig, log zerolog.Logger) (*Store, error) {
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("filestore.NewStore: %w", err)
	}
	return &Store{dir: cfg.Dir, maxSize: cfg.MaxFileSize, log: log}, nil
}

// Save validates and writes data under subdir. Validation happens before any
// byte is written, so a rejected file leaves no trace.
func (s *Store) Save(data []byte, originalName, subdir string) (StoredFile, error) {
	if int64(len(data)) > s.maxSize {
		return StoredFile{}, fmt.Errorf("filestore.Store.Save: %d bytes: %w", len(data), models.ErrFileTooLarge)
	}

	ext := strings.ToLower(filepath.Ext(originalName))
	if !allowedExtensions[ext] {
		return StoredFile{}, fmt.Errorf("filestore.Store.Save: %q: %w", ext, models.ErrFileType)
	}

	if err := os.MkdirAll(filepath.Join(s.dir, subdir), 0o755); err != nil {
		return StoredFile{}, fmt.Errorf("filestore.Store.Save: %w", err)
	}

	name := uuid.NewString() + ext
	path := filepath.Join(s.dir, subdir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return StoredFile{}, fmt.Errorf("filestore.Store.Save: %w", err)
	}

	s.log.Debug().Str("path", path).Int("size", len(data)).Msg("file stored")
	return StoredFile{Name: name, Size: int64(len(data))}, nil
}

func (s *Store) Get(storedName, subdir string) ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, subdir, storedName))
	if err != nil {
		return nil, fmt.Errorf("filestore.Store.Get: %w", err)
	}
	return data, nil
}

// Delete removes a stored file. A missing file is not an error: cascade
// deletes may run after a previous partial cleanup.
func (s *Store) Delete(storedName, subdir string) error {
	err := os.Remove(filepath.Join(s.dir, subdir, storedName))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("filestore.Store.Delete: %w", err)
	}
	return nil
}

// ContentType returns the MIME type for a stored spreadsheet name.
func ContentType(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".xlsx":
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case ".xls":
		return "application/vnd.ms-excel"
	case ".csv":
		return "text/csv"
	default:
		return "application/octet-stream"
	}
}
