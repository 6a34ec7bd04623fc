package config

import (
	"os"
	"path/filepath"
)

// FindEnvFile returns the path of the nearest file called name, looking in the
// working directory and then each parent up to the filesystem root. An empty
// name means ".env". os.ErrNotExist is returned when nothing matches.
func FindEnvFile(name string) (string, error) {
	if name == "" {
		name = ".env"
	}
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}
	for {
		path := filepath.Join(dir, name)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", os.ErrNotExist
		}
		dir = parent
	}
}
