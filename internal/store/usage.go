package store

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Usage is the disk space held by processed-text files.
type Usage struct {
	ProcessedBytes int64 // the current processed-text file
	OutputBytes    int64 // processed-text files under the output directory
	OutputFiles    int
}

// ProcessedUsage measures the processed-text file at processedPath and the
// .txt files under outputDir. Empty or missing paths count as zero.
func ProcessedUsage(processedPath, outputDir string) (Usage, error) {
	var u Usage
	if processedPath != "" {
		info, err := os.Stat(processedPath)
		switch {
		case err == nil:
			u.ProcessedBytes = info.Size()
		case !errors.Is(err, fs.ErrNotExist):
			return Usage{}, err
		}
	}
	if outputDir == "" {
		return u, nil
	}
	err := filepath.WalkDir(outputDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == outputDir && errors.Is(err, fs.ErrNotExist) {
				return filepath.SkipAll
			}
			return err
		}
		if d.IsDir() || !strings.EqualFold(filepath.Ext(path), ".txt") {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		u.OutputBytes += info.Size()
		u.OutputFiles++
		return nil
	})
	if err != nil {
		return Usage{}, err
	}
	return u, nil
}
