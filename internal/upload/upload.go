package upload

import (
	"errors"         // Sentinel errors
	"fmt"            // Error wrapping
	"io"             // Copying the upload
	"mime/multipart" // Multipart file headers
	"os"             // File system access
	"path/filepath"  // Path cleaning
	"strings"        // Content type normalization
)

// Upload errors
var (
	ErrNoFile   = errors.New("no accepted image attached") // Missing file or rejected content type
	ErrTooLarge = errors.New("image exceeds size limit")   // Larger than the configured limit
)

// Accepted profile image content types
var allowedTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
}

// Stored describes a saved upload
type Stored struct {
	Path string // Final absolute filesystem path
	URL  string // Public path under /uploads
	tmp  string // Temporary file holding the data until Commit
}

// Storage writes profile images into one directory
type Storage struct {
	dir     string // Absolute upload directory
	maxSize int64  // Maximum image size in bytes
}

// NewStorage creates dir if needed and returns a Storage writing into it
func NewStorage(dir string, maxSize int64) (*Storage, error) {
	abs, err := filepath.Abs(dir) // Stored paths are absolute
	if err != nil {
		return nil, fmt.Errorf("resolve upload dir: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &Storage{dir: abs, maxSize: maxSize}, nil
}

// Dir returns the absolute upload directory
func (s *Storage) Dir() string { return s.dir }

// MaxSize returns the image size limit in bytes
func (s *Storage) MaxSize() int64 { return s.maxSize }

// Save validates the image and writes it to a temporary file next to its
// final name. Nothing is visible under the final name until Commit.
func (s *Storage) Save(fh *multipart.FileHeader) (*Stored, error) {
	if fh == nil {
		return nil, ErrNoFile // No file attached
	}
	// Other content types are treated as absent
	if !allowedTypes[strings.ToLower(fh.Header.Get("Content-Type"))] {
		return nil, ErrNoFile
	}
	if fh.Size > s.maxSize {
		return nil, ErrTooLarge
	}
	name := filepath.Base(filepath.Clean("/" + fh.Filename)) // Strip any directories
	if name == "/" || name == "." {
		return nil, ErrNoFile
	}
	src, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()
	out, err := os.CreateTemp(s.dir, ".upload-*") // Same directory so Commit is a rename
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	// The header size is client supplied, so the limit is enforced on the copy too
	n, err := io.Copy(out, io.LimitReader(src, s.maxSize+1))
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(out.Name())
		return nil, fmt.Errorf("write upload: %w", err)
	}
	if n > s.maxSize {
		_ = os.Remove(out.Name())
		return nil, ErrTooLarge
	}
	return &Stored{
		Path: filepath.Join(s.dir, name), // Final location
		URL:  "/uploads/" + name,         // Served by the static route
		tmp:  out.Name(),                 // Pending data
	}, nil
}

// Commit moves a saved upload to its final name, replacing any file there
func (s *Storage) Commit(st *Stored) error {
	if err := os.Rename(st.tmp, st.Path); err != nil {
		return fmt.Errorf("commit %s: %w", st.Path, err)
	}
	return nil
}

// Discard drops a saved upload that was never committed
func (s *Storage) Discard(st *Stored) error {
	if err := os.Remove(st.tmp); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("discard %s: %w", st.tmp, err)
	}
	return nil
}
