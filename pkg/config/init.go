package config

import (
	"fmt"
	"os"
)

const configHeader = `# blockfs configuration file
#
# Every key can be overridden from the environment with the BLOCKFS_ prefix,
# e.g. BLOCKFS_DISK_TOTAL_BLOCKS=256 or BLOCKFS_IMAGE_BACKEND=badger.

`

// InitConfig writes the default configuration to path, or to the default
// location when path is empty, and returns the path written. An existing
// file is only replaced when force is set.
func InitConfig(path string, force bool) (string, error) {
	if path == "" {
		path = GetDefaultConfigPath()
	}

	if !force {
		if _, err := os.Stat(path); err == nil {
			return "", fmt.Errorf("configuration file already exists at %s (use --force to overwrite)", path)
		}
	}

	if err := SaveConfig(GetDefaultConfig(), path); err != nil {
		return "", err
	}

	body, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read back config file: %w", err)
	}
	if err := os.WriteFile(path, append([]byte(configHeader), body...), 0600); err != nil {
		return "", fmt.Errorf("failed to write config file: %w", err)
	}
	return path, nil
}
