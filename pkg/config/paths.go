package config

import (
	"path/filepath"

	"github.com/adrg/xdg"
)

// AppName names the directory under the XDG config home.
const AppName = "formfix"

var defaultNames = []string{"rules.hcl", "rules.yaml", "rules.yml", "rules.json", "rules.toml"}

// DefaultDir is where user rule sets live, e.g. ~/.config/formfix.
func DefaultDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// 🔍 FindDefault returns the first rules file found in the XDG config
// directories, or "" when there is none.
func FindDefault() string {
	for _, name := range defaultNames {
		if path, err := xdg.SearchConfigFile(filepath.Join(AppName, name)); err == nil {
			return path
		}
	}
	return ""
}
