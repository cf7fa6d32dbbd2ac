// Package storage saves uploaded report images on local disk.
package storage

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/aimd54/swachhta-hub/internal/apperr"
	"github.com/aimd54/swachhta-hub/internal/config"
	"github.com/aimd54/swachhta-hub/pkg/logger"
)

// URLPrefix is where stored files are served from.
const URLPrefix = "/uploads/"

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// Store writes uploads below a single directory.
type Store struct {
	cfg *config.UploadsConfig
	log *logger.Logger
}

// NewStore creates the upload directory if needed.
func NewStore(cfg *config.UploadsConfig, log *logger.Logger) (*Store, error) {
	if err := os.MkdirAll(cfg.Dir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create upload directory %s: %w", cfg.Dir, err)
	}
	return &Store{cfg: cfg, log: log}, nil
}

// Dir returns the upload directory.
func (s *Store) Dir() string {
	return s.cfg.Dir
}

// Save validates and stores an uploaded file, returning its stored name.
func (s *Store) Save(fh *multipart.FileHeader) (string, error) {
	name := SanitizeFilename(fh.Filename)
	if name == "" {
		return "", apperr.Validation("Invalid file name")
	}
	if !s.cfg.AllowsExtension(filepath.Ext(name)) {
		return "", apperr.Validation("File type not allowed").
			WithDetails(map[string]any{"allowed": s.cfg.AllowedExtensions})
	}
	if s.cfg.MaxBytes > 0 && fh.Size > s.cfg.MaxBytes {
		return "", apperr.Validation("File too large").
			WithDetails(map[string]any{"max_bytes": s.cfg.MaxBytes})
	}

	src, err := fh.Open()
	if err != nil {
		return "", apperr.Internal(err, "failed to open upload")
	}
	defer src.Close()

	stored := uuid.NewString() + "_" + name
	dst, err := os.OpenFile(filepath.Join(s.cfg.Dir, stored), os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0o640)
	if err != nil {
		return "", apperr.Internal(err, "failed to create upload")
	}

	if _, err := io.Copy(dst, src); err != nil {
		_ = dst.Close()
		s.Remove(stored)
		return "", apperr.Internal(err, "failed to write upload")
	}
	if err := dst.Close(); err != nil {
		s.Remove(stored)
		return "", apperr.Internal(err, "failed to write upload")
	}

	s.log.Debug().
		Str("file", stored).
		Int64("bytes", fh.Size).
		Msg("Upload stored")

	return stored, nil
}

// Remove deletes a stored file. Missing files are ignored.
func (s *Store) Remove(stored string) {
	err := os.Remove(filepath.Join(s.cfg.Dir, filepath.Base(stored)))
	if err != nil && !os.IsNotExist(err) {
		s.log.Warn().Err(err).Str("file", stored).Msg("Failed to remove upload")
	}
}

// URL returns the public path of a stored file.
func URL(stored string) string {
	return URLPrefix + stored
}

// SanitizeFilename reduces name to a safe base name: path components are dropped,
// whitespace becomes underscores, other unsafe characters are removed.
func SanitizeFilename(name string) string {
	name = strings.ReplaceAll(name, `\`, "/")
	name = filepath.Base(strings.TrimSpace(name))
	name = strings.Join(strings.Fields(name), "_")
	name = unsafeChars.ReplaceAllString(name, "")
	name = strings.TrimLeft(name, "._")
	if name == "" || name == "." {
		return ""
	}
	return name
}
