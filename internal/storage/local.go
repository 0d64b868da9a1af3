package storage

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

// File store failures surfaced to handlers
var (
	ErrFileTooLarge   = errors.New("file exceeds the maximum upload size")
	ErrFileType       = errors.New("file type not allowed")
	ErrInvalidName    = errors.New("invalid filename")
	ErrUnknownFileKey = errors.New("unknown file key")
)

// allowedExtensions lists the upload types accepted by the platform
var allowedExtensions = map[string]bool{
	".pdf": true, ".doc": true, ".docx": true, ".xls": true, ".xlsx": true,
	".jpg": true, ".jpeg": true, ".png": true, ".gif": true,
}

// unsafeChars strips everything that is not a plain filename character
var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// FileStore persists attachment bytes addressed by an opaque key. The core
// stores the key and never interprets it.
type FileStore interface {
	Save(name string, src io.Reader) (string, error) // Store bytes, return the key
	Path(key string) (string, error)                 // Resolve a key to a readable path
}

// LocalStore keeps files on local disk under a single directory
type LocalStore struct {
	dir      string // Upload directory
	maxBytes int64  // Per-file size cap
}

// NewLocalStore creates the upload directory if needed
func NewLocalStore(dir string, maxMB int) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err // Upload directory must exist
	}
	return &LocalStore{dir: dir, maxBytes: int64(maxMB) * 1024 * 1024}, nil
}

// Save sanitizes the filename, enforces type and size limits and writes the
// bytes under a collision-free key.
func (s *LocalStore) Save(name string, src io.Reader) (string, error) {
	clean := sanitizeFilename(name) // Strip path components and unsafe characters
	if clean == "" {
		return "", ErrInvalidName
	}
	ext := strings.ToLower(filepath.Ext(clean)) // Extension check only, no content sniffing
	if !allowedExtensions[ext] {
		return "", ErrFileType
	}
	key := fmt.Sprintf("%d_%s", time.Now().UnixNano(), clean) // Timestamp prefix avoids collisions
	dst, err := os.Create(filepath.Join(s.dir, key))
	if err != nil {
		return "", err
	}
	defer dst.Close()
	// Copy at most maxBytes+1 so an oversized upload is detected, not truncated silently
	written, err := io.Copy(dst, io.LimitReader(src, s.maxBytes+1))
	if err != nil {
		os.Remove(dst.Name()) // Drop the partial file
		return "", err
	}
	if written > s.maxBytes {
		os.Remove(dst.Name()) // Drop the oversized file
		return "", ErrFileTooLarge
	}
	return key, nil
}

// Path resolves a stored key back to a path inside the upload directory
func (s *LocalStore) Path(key string) (string, error) {
	// A key is a single sanitized path element; anything else is rejected
	if key == "" || key != filepath.Base(key) {
		return "", ErrUnknownFileKey
	}
	path := filepath.Join(s.dir, key)
	if _, err := os.Stat(path); err != nil {
		return "", ErrUnknownFileKey
	}
	return path, nil
}

// sanitizeFilename keeps only the base name with safe characters, mirroring
// the usual secure-filename treatment of user uploads.
func sanitizeFilename(name string) string {
	base := filepath.Base(strings.ReplaceAll(name, "\\", "/")) // Drop directory components
	base = unsafeChars.ReplaceAllString(base, "_")             // Replace unsafe characters
	base = strings.Trim(base, "._")                            // No hidden or dangling names
	if base == "." || base == ".." {
		return ""
	}
	return base
}
