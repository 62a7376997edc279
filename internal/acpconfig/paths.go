// ABOUTME: Standard filesystem paths for acp-go profile configuration
// ABOUTME: Resolves ~/.acp/ for global and .acp/ for project-local config

package acpconfig

import (
	"os"
	"path/filepath"
)

const (
	globalDirName  = ".acp"
	projectDirName = ".acp"
)

// GlobalDir returns the user-global config directory (~/.acp/).
func GlobalDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", globalDirName)
	}
	return filepath.Join(home, globalDirName)
}

// ProjectDir returns the project-local config directory (.acp/ under projectRoot).
func ProjectDir(projectRoot string) string {
	return filepath.Join(projectRoot, projectDirName)
}

// GlobalProfilesFile returns the path to the global agent-profiles file.
func GlobalProfilesFile() string {
	return filepath.Join(GlobalDir(), "agents.yaml")
}

// ProjectProfilesFile returns the path to the project-local agent-profiles file.
func ProjectProfilesFile(projectRoot string) string {
	return filepath.Join(ProjectDir(projectRoot), "agents.yaml")
}
