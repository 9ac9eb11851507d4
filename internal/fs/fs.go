package fs

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	iofs "io/fs"
	"os"
	"path/filepath"
	"strings"
)

// PathResolver finds absolute paths for target files.
type PathResolver struct {
	baseDir string
}

// NewPathResolver creates a new PathResolver rooted at baseDir. A leading
// "~" is expanded to the current user's home directory.
func NewPathResolver(baseDir string) (*PathResolver, error) {
	expanded, err := ExpandHome(baseDir)
	if err != nil {
		return nil, err
	}
	if expanded == "" {
		expanded, err = os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("could not get current working directory: %w", err)
		}
	}
	abs, err := filepath.Abs(expanded)
	if err != nil {
		return nil, fmt.Errorf("invalid base directory '%s': %w", baseDir, err)
	}
	return &PathResolver{baseDir: abs}, nil
}

// Resolve returns the absolute path for a target. Absolute and "~" paths
// are kept; anything else is joined onto the base directory.
func (r *PathResolver) Resolve(path string) string {
	if expanded, err := ExpandHome(path); err == nil {
		path = expanded
	}
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Join(r.baseDir, path)
}

// ExpandHome replaces a leading "~" with the user's home directory.
func ExpandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not resolve home directory: %w", err)
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}

// Exists reports whether path exists. Errors other than "not exist" are
// returned so that callers can treat them as fatal.
func Exists(path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, iofs.ErrNotExist) {
		return false, nil
	}
	return false, err
}

// ReadText reads the full file content as text.
func ReadText(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// AppendText appends text to an existing file and returns the file size
// before the write. The file is never created.
func AppendText(path, text string) (offset int64, err error) {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_APPEND, 0)
	if err != nil {
		return 0, err
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	info, err := f.Stat()
	if err != nil {
		return 0, err
	}
	offset = info.Size()

	if _, err = io.WriteString(f, text); err != nil {
		return offset, err
	}
	return offset, nil
}

// Truncate cuts the file back to size bytes.
func Truncate(path string, size int64) error {
	return os.Truncate(path, size)
}

// GetFileSHA256 returns the hex-encoded SHA-256 of the file content.
func GetFileSHA256(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
