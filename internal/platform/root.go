package platform

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/aretw0/swiftnote/pkg/adapters/fs"
	"github.com/aretw0/swiftnote/pkg/adapters/sqlite"
)

// FindRoot walks upwards from startDir looking for a SwiftNote data directory.
// Indicators are: the .swiftnote system directory, a swiftnote.yaml config file
// or a swiftnote.db database. It returns the absolute path of the first match.
func FindRoot(startDir string) (string, error) {
	abs, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	dir := abs
	for {
		if hasFile(dir, fs.DefaultSystemDir) || hasFile(dir, ConfigFileName) || hasFile(dir, sqlite.DefaultFile) {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return "", fmt.Errorf("root not found")
}

func hasFile(dir, name string) bool {
	_, err := os.Stat(filepath.Join(dir, name))
	return err == nil
}
