package config

import (
	"os"
	"path/filepath"
	"strings"
)

const (
	configDir  = ".gridedit"
	configFile = "grid.yaml"
)

// FindConfig walks up from dir looking for .gridedit/grid.yaml. An empty dir
// starts from the working directory. The walk stops at the home directory.
func FindConfig(dir string) (string, error) {
	if dir == "" {
		var err error
		dir, err = os.Getwd()
		if err != nil {
			return "", err
		}
	}
	home, _ := os.UserHomeDir()

	for {
		candidate := filepath.Join(dir, configDir, configFile)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break // Reached filesystem root
		}
		if home != "" && dir == home {
			break
		}
		dir = parent
	}
	return "", os.ErrNotExist
}

// ScanConfigs walks root up to maxDepth levels deep and returns every grid
// file found. Hidden directories other than .gridedit are skipped.
func ScanConfigs(root string, maxDepth int) []string {
	if maxDepth <= 0 {
		maxDepth = 3
	}
	root = expandHome(root)
	var results []string

	rootDepth := strings.Count(filepath.Clean(root), string(filepath.Separator))

	_ = filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return filepath.SkipDir
		}
		if !d.IsDir() {
			return nil
		}

		currentDepth := strings.Count(filepath.Clean(path), string(filepath.Separator)) - rootDepth
		if currentDepth > maxDepth {
			return filepath.SkipDir
		}

		name := d.Name()
		if path != root && strings.HasPrefix(name, ".") {
			return filepath.SkipDir
		}

		candidate := filepath.Join(path, configDir, configFile)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			results = append(results, candidate)
		}
		return nil
	})

	return results
}
