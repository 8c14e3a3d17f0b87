package store

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"

	"ocr-web/api/internal/util"
)

// Files manages the working and preview copies of uploads inside one
// directory. Working copies are transient and must be removed on every
// exit path; preview copies persist for later retrieval.
type Files struct {
	dir string
}

func New(dir string) (*Files, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &Files{dir: dir}, nil
}

func (f *Files) Dir() string { return f.dir }

// Save writes the reader's contents under the given (already sanitized)
// name and returns the full path.
func (f *Files) Save(name string, r io.Reader) (string, error) {
	path := filepath.Join(f.dir, name)
	dst, err := os.Create(path)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(dst, r); err != nil {
		dst.Close()
		f.Remove(path)
		return "", err
	}
	if err := dst.Close(); err != nil {
		f.Remove(path)
		return "", err
	}
	return path, nil
}

// Duplicate copies an existing stored file under a new name.
func (f *Files) Duplicate(path, dstName string) (string, error) {
	src, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer src.Close()
	return f.Save(dstName, src)
}

// Resolve maps a client-supplied name to a path inside the store,
// rejecting anything that would escape the directory.
func (f *Files) Resolve(name string) (string, error) {
	clean := util.SecureFilename(name)
	if clean == "" || strings.Contains(name, "/") || strings.Contains(name, "\\") {
		return "", fmt.Errorf("invalid file name")
	}
	path := filepath.Join(f.dir, clean)
	if _, err := os.Stat(path); err != nil {
		return "", err
	}
	return path, nil
}

// Remove deletes a stored file. Cleanup failures are logged and swallowed;
// they never reach the caller.
func (f *Files) Remove(path string) {
	if path == "" {
		return
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		logrus.WithField("path", path).WithError(err).Warn("could not remove temporary file")
	}
}
