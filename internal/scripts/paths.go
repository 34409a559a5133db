package scripts

import (
	"os"
	"path/filepath"
)

// ScriptSearchPaths returns script search directories in precedence order.
// Extra directories from configuration come first.
func ScriptSearchPaths(projectDir string, extra ...string) []string {
	paths := make([]string, 0, len(extra)+3)
	for _, dir := range extra {
		if dir != "" {
			paths = append(paths, dir)
		}
	}
	if projectDir != "" {
		paths = append(paths, filepath.Join(projectDir, ".typewriter", "scripts"))
	}

	if home, err := os.UserHomeDir(); err == nil && home != "" {
		paths = append(paths, filepath.Join(home, ".config", "typewriter", "scripts"))
	}

	paths = append(paths, filepath.Join(string(filepath.Separator), "usr", "share", "typewriter", "scripts"))
	return paths
}

// LoadScriptsFromSearchPaths loads scripts from search paths with first-hit
// precedence, falling back to the builtins.
func LoadScriptsFromSearchPaths(projectDir string, extra ...string) ([]*Script, error) {
	seen := make(map[string]*Script)
	order := make([]string, 0)

	for _, path := range ScriptSearchPaths(projectDir, extra...) {
		scripts, err := LoadScriptsFromDir(path)
		if err != nil {
			return nil, err
		}
		for _, script := range scripts {
			if _, exists := seen[script.Name]; exists {
				continue
			}
			seen[script.Name] = script
			order = append(order, script.Name)
		}
	}

	builtins, err := LoadBuiltinScripts()
	if err != nil {
		return nil, err
	}
	for _, script := range builtins {
		if _, exists := seen[script.Name]; exists {
			continue
		}
		seen[script.Name] = script
		order = append(order, script.Name)
	}

	resolved := make([]*Script, 0, len(order))
	for _, name := range order {
		resolved = append(resolved, seen[name])
	}

	return resolved, nil
}
