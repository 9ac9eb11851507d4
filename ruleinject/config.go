package ruleinject

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/sokinpui/ruleinject/model"
)

const (
	// EnvRepo overrides the base directory.
	EnvRepo = "SETFARM_REPO"
	// EnvStateDir relocates the ~/.openclaw state directory.
	EnvStateDir = "OPENCLAW_STATE_DIR"

	defaultRepoDir = "setfarm-repo"
)

// ResolveBaseDir picks the base directory in order of precedence: the flag
// value, $SETFARM_REPO, the manifest's base_dir, $OPENCLAW_STATE_DIR/setfarm-repo
// and finally ~/.openclaw/setfarm-repo. A leading "~" is expanded later by
// the path resolver.
func ResolveBaseDir(flagValue string, m model.Mapping) string {
	if dir := strings.TrimSpace(flagValue); dir != "" {
		return dir
	}
	if dir := strings.TrimSpace(os.Getenv(EnvRepo)); dir != "" {
		return dir
	}
	if m.BaseDir != "" {
		return m.BaseDir
	}
	if dir := strings.TrimSpace(os.Getenv(EnvStateDir)); dir != "" {
		return filepath.Join(dir, defaultRepoDir)
	}
	return filepath.Join("~", ".openclaw", defaultRepoDir)
}
