package builder

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// DiscoverSources walks root and reads every regular file whose extension is
// in extensions (case-insensitive; an empty list matches all files). Hidden
// files and directories are skipped. Unreadable entries are logged and
// skipped rather than failing the walk.
func DiscoverSources(root string, extensions []string, logger *zap.Logger) ([]SourceFile, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("failed to read source directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("source path %s is not a directory", root)
	}

	var files []SourceFile
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			logger.Warn("skipping unreadable path", zap.String("path", path), zap.Error(err))
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			if path != root && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasPrefix(d.Name(), ".") || !d.Type().IsRegular() {
			return nil
		}
		if !hasExtension(path, extensions) {
			return nil
		}
		content, err := os.ReadFile(path)
		if err != nil {
			logger.Warn("failed to read source file", zap.String("path", path), zap.Error(err))
			return nil
		}
		files = append(files, SourceFile{Path: path, Content: string(content)})
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Debug("discovered source files",
		zap.String("root", root),
		zap.Int("count", len(files)))
	return files, nil
}

func hasExtension(path string, extensions []string) bool {
	if len(extensions) == 0 {
		return true
	}
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range extensions {
		if ext == strings.ToLower(e) {
			return true
		}
	}
	return false
}
