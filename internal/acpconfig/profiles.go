// ABOUTME: Named agent launch profiles loaded from YAML, merged global-then-project (§1.1, §6.5)
// ABOUTME: A profile is either a process recipe (command/args/cwd/env) or an HTTP endpoint

package acpconfig

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Profile describes how to reach one named agent.
type Profile struct {
	// Process launch recipe. Command is empty for an HTTP profile.
	Command string            `yaml:"command,omitempty"`
	Args    []string          `yaml:"args,omitempty"`
	Cwd     string            `yaml:"cwd,omitempty"`
	Env     map[string]string `yaml:"env,omitempty"`

	// HTTP endpoint. URL is empty for a process profile.
	URL string `yaml:"url,omitempty"`
}

// IsHTTP reports whether the profile targets an HTTP agent rather than a
// spawned process.
func (p Profile) IsHTTP() bool { return p.URL != "" }

// profileFile is the top-level shape of an agents.yaml file.
type profileFile struct {
	Agents map[string]Profile `yaml:"agents"`
}

// LoadProfiles merges agent profiles from the global config file and an
// optional project-local file, with project entries overriding global ones
// of the same name — the same precedence the teacher's MCP server config
// loader applies across its settings sources.
func LoadProfiles(projectRoot string) (map[string]Profile, error) {
	merged := make(map[string]Profile)

	for _, path := range []string{GlobalProfilesFile(), ProjectProfilesFile(projectRoot)} {
		profiles, err := loadProfileFile(path)
		if err != nil {
			return nil, err
		}
		for name, p := range profiles {
			merged[name] = p
		}
	}

	return merged, nil
}

func loadProfileFile(path string) (map[string]Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("acpconfig: reading %s: %w", path, err)
	}

	var f profileFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("acpconfig: parsing %s: %w", path, err)
	}
	return f.Agents, nil
}

// EnvSlice flattens a profile's Env map into NAME=VALUE entries suitable
// for exec.Cmd.Env / ProcessTransport's extraEnv.
func EnvSlice(env map[string]string) []string {
	if len(env) == 0 {
		return nil
	}
	out := make([]string, 0, len(env))
	for k, v := range env {
		out = append(out, k+"="+v)
	}
	return out
}
