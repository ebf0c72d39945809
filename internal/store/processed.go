package store

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
)

// WriteProcessedText writes text to path as UTF-8, replacing any existing file.
// Missing parent directories are created.
func WriteProcessedText(path, text string) (err error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output file %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close output file %s: %w", path, cerr)
		}
	}()
	w := bufio.NewWriter(f)
	if _, err := w.WriteString(text); err != nil {
		return fmt.Errorf("write extracted text to %s: %w", path, err)
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("write extracted text to %s: %w", path, err)
	}
	return nil
}

// ReadProcessedText returns the content of a file written by WriteProcessedText.
func ReadProcessedText(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read processed file %s: %w", path, err)
	}
	return string(data), nil
}
