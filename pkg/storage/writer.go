package storage

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"geoscraper/pkg/twitter"
)

// Writer saves collected posts to a single JSON file
type Writer struct {
	path   string
	indent bool
}

// NewWriter creates a writer for path
func NewWriter(path string) *Writer {
	return &Writer{path: path}
}

// SetIndent switches between compact and indented output
func (w *Writer) SetIndent(indent bool) {
	w.indent = indent
}

// Path returns the output file path
func (w *Writer) Path() string {
	return w.path
}

// WritePosts replaces the output file with posts as a JSON array.
// The file is written to a temporary name first and renamed into place,
// so a failed write leaves any previous file untouched.
func (w *Writer) WritePosts(posts []twitter.Post) error {
	if posts == nil {
		posts = []twitter.Post{}
	}

	dir := filepath.Dir(w.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(w.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}
	tempPath := tmp.Name()

	buf := bufio.NewWriter(tmp)
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	if w.indent {
		enc.SetIndent("", "  ")
	}

	err = enc.Encode(posts)
	if err == nil {
		err = buf.Flush()
	}
	closeErr := tmp.Close()

	if err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to encode posts: %w", err)
	}
	if closeErr != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to close file: %w", closeErr)
	}

	if err := os.Chmod(tempPath, 0644); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to set file mode: %w", err)
	}

	if err := os.Rename(tempPath, w.path); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to rename temporary file: %w", err)
	}

	return nil
}

// ReadPosts loads a file previously written by WritePosts
func ReadPosts(path string) ([]twitter.Post, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read output file: %w", err)
	}

	var posts []twitter.Post
	if err := json.Unmarshal(data, &posts); err != nil {
		return nil, fmt.Errorf("failed to parse output file: %w", err)
	}
	return posts, nil
}
