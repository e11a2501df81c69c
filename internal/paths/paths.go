package paths

import (
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
)

// AppName names the application's XDG directories.
const AppName = "fmstage"

// ConfigDirEnv overrides the configuration directory when set.
const ConfigDirEnv = "FMSTAGE_CONFIG_DIR"

// ConfigHome returns the XDG config home directory.
// On Linux: ~/.config
// On macOS: ~/Library/Application Support
// On Windows: %LOCALAPPDATA%
func ConfigHome() string {
	return xdg.ConfigHome
}

// ConfigDir returns the directory holding fmstage's config.yaml:
// $FMSTAGE_CONFIG_DIR if set, otherwise ConfigHome()/fmstage.
func ConfigDir() string {
	if dir := os.Getenv(ConfigDirEnv); dir != "" {
		return dir
	}
	return filepath.Join(ConfigHome(), AppName)
}
