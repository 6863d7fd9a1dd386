package migration

import (
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/mod/modfile"
)

const modulePath = "github.com/elskow/registry-auth"

// migrationsDir returns <module root>/migrations, walking up from the working
// directory until it meets this module's go.mod. APP_MIGRATIONS_DIR wins when set.
func migrationsDir() (string, error) {
	if dir := os.Getenv("APP_MIGRATIONS_DIR"); dir != "" {
		return dir, nil
	}

	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}
	root, err := findModuleRoot(dir)
	if err != nil {
		return "", fmt.Errorf("failed to find project root: %w", err)
	}
	return filepath.Join(root, "migrations"), nil
}

func findModuleRoot(dir string) (string, error) {
	for {
		content, err := os.ReadFile(filepath.Join(dir, "go.mod"))
		if err == nil && modfile.ModulePath(content) == modulePath {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("go.mod for %s not found", modulePath)
		}
		dir = parent
	}
}
