// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets loads the Notion credentials from the places a CI job or a
// developer machine keeps them: a .env file and a directory of plain-text
// files. In the directory each file is one secret: the filename is the key
// name and the file contents (trimmed) are the value.
//
// Supported key files: notion-token, notion-database-id.
package secrets

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
)

// Key file names recognised in the secrets directory.
const (
	KeyNotionToken      = "notion-token"
	KeyNotionDatabaseID = "notion-database-id"
)

// Load reads all files in dir and returns a map of filename to trimmed contents.
// A missing directory or missing files are not errors; Load returns an empty map.
// Unreadable files produce a warning on stderr but do not abort.
func Load(dir string) (map[string]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	secrets := make(map[string]string)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: could not read secret %s: %v\n", name, err)
			continue
		}

		value := strings.TrimSpace(string(data))
		if value != "" {
			secrets[name] = value
		}
	}

	return secrets, nil
}

// LoadEnvFile copies the variables of a dotenv file into the process
// environment. Variables that are already set win, so a CI secret is never
// shadowed by a stale local file. A missing file is not an error.
func LoadEnvFile(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("loading %s: %w", path, err)
	}
	return nil
}

// Default returns value when it is set, otherwise the secret stored under key.
func Default(secrets map[string]string, key, value string) string {
	if value != "" {
		return value
	}
	return secrets[key]
}
