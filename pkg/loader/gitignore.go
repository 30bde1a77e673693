package loader

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"
)

// StatePattern is the ignore line for per-user grid state. The grid file
// itself lives next to it and stays tracked.
const StatePattern = ".gridedit/expansion.json"

// EnsureStateIgnored makes sure the project's .gitignore covers the
// expansion state file. It is idempotent. Projects without a .git directory
// are left alone.
func EnsureStateIgnored(projectDir string) error {
	if projectDir == "" {
		var err error
		projectDir, err = os.Getwd()
		if err != nil {
			return err
		}
	}
	if _, err := os.Stat(filepath.Join(projectDir, ".git")); err != nil {
		return nil
	}

	gitignorePath := filepath.Join(projectDir, ".gitignore")

	covered, err := isStateIgnored(gitignorePath)
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	if covered {
		return nil
	}
	return appendToGitignore(gitignorePath, StatePattern)
}

// isStateIgnored scans .gitignore for a line covering the state file.
func isStateIgnored(path string) (bool, error) {
	file, err := os.Open(path)
	if err != nil {
		return false, err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if coversState(line) {
			return true, nil
		}
	}
	return false, scanner.Err()
}

// coversState reports whether a gitignore line matches the state file,
// either directly or by ignoring the whole .gridedit directory.
func coversState(line string) bool {
	normalized := strings.TrimPrefix(line, "/")
	switch normalized {
	case StatePattern,
		".gridedit", ".gridedit/", ".gridedit/*", ".gridedit/**",
		"expansion.json", "**/expansion.json", ".gridedit/*.json":
		return true
	}
	return false
}

// appendToGitignore appends pattern, creating the file when needed and
// keeping a blank line between it and existing content.
func appendToGitignore(path string, pattern string) error {
	content, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return err
	}

	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer file.Close()

	const header = "# gridedit local view state\n"
	var toWrite string
	if len(content) == 0 {
		toWrite = header + pattern + "\n"
	} else {
		if content[len(content)-1] != '\n' {
			toWrite = "\n"
		}
		toWrite += "\n" + header + pattern + "\n"
	}

	_, err = file.WriteString(toWrite)
	return err
}
