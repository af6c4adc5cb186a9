package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const userConfigName = "config.yml"

// EnsureUserConfig returns dataDir/config.yml, creating it on first start from
// defaultPath or, when that file is absent too, from Default(). An existing
// user file is never touched.
func EnsureUserConfig(dataDir string, defaultPath string) (string, error) {
	userPath := filepath.Join(dataDir, userConfigName)

	_, err := os.Stat(userPath)
	if err == nil {
		return userPath, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return "", err
	}

	b, err := os.ReadFile(defaultPath)
	if errors.Is(err, os.ErrNotExist) {
		return userPath, SaveAtomic(userPath, Default())
	}
	if err != nil {
		return "", err
	}

	// The shipped file is copied verbatim (comments survive) but must parse.
	probe := Default()
	if err := yaml.Unmarshal(b, &probe); err != nil {
		return "", fmt.Errorf("shipped config %s: %w", defaultPath, err)
	}

	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return "", err
	}
	tmp := userPath + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return "", err
	}
	if err := os.Rename(tmp, userPath); err != nil {
		_ = os.Remove(tmp)
		return "", err
	}
	return userPath, nil
}
