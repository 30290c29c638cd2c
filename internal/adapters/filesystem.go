package adapters

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/h44z/wg-agent/internal/domain"
)

// FilesystemRepo stores key and configuration files below a base directory.
// All files are written with mode 0600 as they contain secrets.
type FilesystemRepo struct {
	basePath string
}

// NewFileSystemRepository creates a new FilesystemRepo instance. The base directory is created if needed.
func NewFileSystemRepository(basePath string) (*FilesystemRepo, error) {
	if basePath == "" {
		return nil, fmt.Errorf("missing base path")
	}

	r := &FilesystemRepo{basePath: basePath}

	if err := os.MkdirAll(r.basePath, 0o700); err != nil {
		return nil, &domain.IoError{Op: "create directory", Path: basePath, Err: err}
	}

	return r, nil
}

// Path returns the absolute path of the given file name.
func (r *FilesystemRepo) Path(name string) string {
	return filepath.Join(r.basePath, name)
}

// WriteFile atomically replaces the file with the given name.
// The content is written to a temporary file in the same directory that is renamed afterwards.
func (r *FilesystemRepo) WriteFile(name string, contents io.Reader) error {
	filePath := r.Path(name)
	parentDirectory := filepath.Dir(filePath)

	if err := os.MkdirAll(parentDirectory, 0o700); err != nil {
		return &domain.IoError{Op: "create directory", Path: parentDirectory, Err: err}
	}

	tmpFile, err := os.CreateTemp(parentDirectory, "."+filepath.Base(filePath)+".tmp-*")
	if err != nil {
		return &domain.IoError{Op: "create temporary file for", Path: filePath, Err: err}
	}
	tmpName := tmpFile.Name()
	defer func() {
		// no-op after a successful rename
		_ = os.Remove(tmpName)
	}()

	if err := tmpFile.Chmod(0o600); err != nil {
		_ = tmpFile.Close()
		return &domain.IoError{Op: "chmod", Path: tmpName, Err: err}
	}
	if _, err := io.Copy(tmpFile, contents); err != nil {
		_ = tmpFile.Close()
		return &domain.IoError{Op: "write", Path: tmpName, Err: err}
	}
	if err := tmpFile.Close(); err != nil {
		return &domain.IoError{Op: "close", Path: tmpName, Err: err}
	}
	if err := os.Rename(tmpName, filePath); err != nil {
		return &domain.IoError{Op: "rename", Path: filePath, Err: err}
	}

	slog.Debug("wrote file", "file", filePath)

	return nil
}

// WriteTempFile writes the contents to a new temporary file below the base directory and returns its path.
// The caller is responsible for removing the file.
func (r *FilesystemRepo) WriteTempFile(pattern string, contents io.Reader) (string, error) {
	tmpFile, err := os.CreateTemp(r.basePath, pattern)
	if err != nil {
		return "", &domain.IoError{Op: "create temporary file in", Path: r.basePath, Err: err}
	}
	defer func() {
		_ = tmpFile.Close()
	}()

	if err := tmpFile.Chmod(0o600); err != nil {
		_ = os.Remove(tmpFile.Name())
		return "", &domain.IoError{Op: "chmod", Path: tmpFile.Name(), Err: err}
	}
	if _, err := io.Copy(tmpFile, contents); err != nil {
		_ = os.Remove(tmpFile.Name())
		return "", &domain.IoError{Op: "write", Path: tmpFile.Name(), Err: err}
	}

	return tmpFile.Name(), nil
}

// RemoveFile removes the file with the given name. A missing file is not an error.
func (r *FilesystemRepo) RemoveFile(name string) error {
	filePath := r.Path(name)
	if err := os.Remove(filePath); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return &domain.IoError{Op: "remove", Path: filePath, Err: err}
	}
	return nil
}

// RemovePath removes the file with the given absolute path. A missing file is not an error.
func (r *FilesystemRepo) RemovePath(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return &domain.IoError{Op: "remove", Path: path, Err: err}
	}
	return nil
}

// Exists returns true if a file with the given name exists.
func (r *FilesystemRepo) Exists(name string) bool {
	_, err := os.Stat(r.Path(name))
	return err == nil
}
