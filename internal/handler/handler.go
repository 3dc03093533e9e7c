package handler

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Paintersrp/nervous/internal/constants"
)

type FileHandler struct {
	baseDir string
}

// NewFileHandler returns a handler that resolves relative paths against
// baseDir. An empty baseDir means the working directory.
func NewFileHandler(baseDir string) *FileHandler {
	return &FileHandler{baseDir: baseDir}
}

// Resolve expands a leading ~ and anchors relative paths at the base directory.
func (h *FileHandler) Resolve(path string) string {
	path = strings.TrimSpace(path)
	if path == "" {
		return ""
	}

	if path == "~" || strings.HasPrefix(path, "~"+string(os.PathSeparator)) {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}

	if !filepath.IsAbs(path) && h.baseDir != "" {
		path = filepath.Join(h.baseDir, path)
	}

	return filepath.Clean(path)
}

// WithMarkdownExt appends .md when path has no extension.
func WithMarkdownExt(path string) string {
	if path != "" && filepath.Ext(path) == "" {
		return path + constants.MarkdownExt
	}
	return path
}

func (h *FileHandler) Exists(path string) (bool, error) {
	_, err := os.Stat(h.Resolve(path))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	return false, err
}

func (h *FileHandler) ReadFile(path string) (string, error) {
	abs := h.Resolve(path)
	data, err := os.ReadFile(abs)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", abs, err)
	}
	return string(data), nil
}

// WriteFile atomically replaces path with content: temp file, fsync, rename.
// The mode of an existing file is preserved.
func (h *FileHandler) WriteFile(path, content string) error {
	abs := h.Resolve(path)
	if abs == "" {
		return errors.New("write: empty path")
	}

	dir := filepath.Dir(abs)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("write: mkdir %s: %w", dir, err)
	}

	mode := os.FileMode(0o644)
	if info, err := os.Stat(abs); err == nil {
		if info.IsDir() {
			return fmt.Errorf("write: %s is a directory", abs)
		}
		mode = info.Mode().Perm()
	}

	tmp, err := os.CreateTemp(dir, "."+constants.AppName+"-tmp-*")
	if err != nil {
		return fmt.Errorf("write: create temp: %w", err)
	}
	tmpName := tmp.Name()

	success := false
	defer func() {
		if !success {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.WriteString(content); err != nil {
		return fmt.Errorf("write: temp: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("write: fsync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write: close temp: %w", err)
	}
	if err := os.Chmod(tmpName, mode); err != nil {
		return fmt.Errorf("write: chmod: %w", err)
	}
	if err := os.Rename(tmpName, abs); err != nil {
		return fmt.Errorf("write: rename: %w", err)
	}
	success = true
	return nil
}

// WalkFiles lists Markdown documents under dir, skipping hidden entries and
// the named directories.
func (h *FileHandler) WalkFiles(dir string, excludeDirs []string) ([]string, error) {
	root := h.Resolve(dir)
	if root == "" {
		root = h.Resolve(".")
	}

	var excludePaths []string
	for _, d := range excludeDirs {
		excludePaths = append(excludePaths, filepath.Clean(filepath.Join(root, d)))
	}

	var files []string
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}

		cleanedPath := filepath.Clean(path)
		name := d.Name()

		if d.IsDir() {
			if cleanedPath == root {
				return nil
			}
			if strings.HasPrefix(name, ".") {
				return filepath.SkipDir
			}
			for _, excludePath := range excludePaths {
				if cleanedPath == excludePath {
					return filepath.SkipDir
				}
			}
			return nil
		}

		if strings.HasPrefix(name, ".") {
			return nil
		}

		if filepath.Ext(name) == constants.MarkdownExt {
			files = append(files, path)
		}
		return nil
	})

	return files, err
}
