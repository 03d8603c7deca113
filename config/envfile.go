package config

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// EnvFileName is the well-known env-file name probed at startup.
const EnvFileName = ".env"

// LoadEnvFile loads environment variables from the first env file found among
// the candidate locations: <root>/.env, then ./.env. First match wins, the
// files are never merged. Variables already present in the process environment
// are not overwritten. Returns the path that was loaded, or "" when no
// candidate exists.
func LoadEnvFile(root string) (string, error) {
	candidates := []string{
		filepath.Join(root, EnvFileName),
		EnvFileName,
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := applyEnvFile(path); err != nil {
			return "", fmt.Errorf("failed to load env file %s: %w", path, err)
		}
		return path, nil
	}

	return "", nil
}

// applyEnvFile parses KEY=VALUE lines and sets them into the process
// environment. Blank lines and #-comments are skipped. Single or double
// quotes around the value are stripped.
func applyEnvFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		line = strings.TrimPrefix(line, "export ")

		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)
		value = strings.Trim(value, `"'`)

		if key == "" {
			continue
		}
		// Real environment wins over the env file
		if _, exists := os.LookupEnv(key); exists {
			continue
		}
		if err := os.Setenv(key, value); err != nil {
			return err
		}
	}

	return scanner.Err()
}
