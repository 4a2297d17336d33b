// Package configpaths computes where configuration files may live.
package configpaths

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

const appDir = "chimera"

// ConfigCandidatePaths returns JSON, YAML and TOML candidates in priority
// order: an explicit user file first, then the user config dir, then the
// system-wide location on unixy platforms. The user file is routed to the
// loader matching its extension.
func ConfigCandidatePaths(userCfg string) (jsonPaths, yamlPaths, tomlPaths []string) {
	if userCfg != "" {
		switch strings.ToLower(filepath.Ext(userCfg)) {
		case ".json":
			jsonPaths = append(jsonPaths, userCfg)
		case ".toml":
			tomlPaths = append(tomlPaths, userCfg)
		default:
			yamlPaths = append(yamlPaths, userCfg)
		}
	}
	if dir, err := os.UserConfigDir(); err == nil {
		base := filepath.Join(dir, appDir)
		jsonPaths = append(jsonPaths, filepath.Join(base, "chimera.json"))
		yamlPaths = append(yamlPaths,
			filepath.Join(base, "chimera.yaml"),
			filepath.Join(base, "chimera.yml"),
		)
		tomlPaths = append(tomlPaths, filepath.Join(base, "chimera.toml"))
	}
	if runtime.GOOS != "windows" {
		jsonPaths = append(jsonPaths, "/etc/chimera/chimera.json")
		yamlPaths = append(yamlPaths, "/etc/chimera/chimera.yaml")
		tomlPaths = append(tomlPaths, "/etc/chimera/chimera.toml")
	}
	return jsonPaths, yamlPaths, tomlPaths
}

// DefaultConfigPath is where `config init` writes unless told otherwise.
func DefaultConfigPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, appDir, "chimera.toml"), nil
}
