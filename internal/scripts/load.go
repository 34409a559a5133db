package scripts

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// LoadScript reads a single script from disk.
func LoadScript(path string) (*Script, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("script path is required")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read script %s: %w", path, err)
	}

	script, err := parseScript(data)
	if err != nil {
		return nil, fmt.Errorf("parse script %s: %w", path, err)
	}
	script.Source = path
	return script, nil
}

// LoadScriptsFromDir loads all scripts from a directory. A missing directory
// yields no scripts.
func LoadScriptsFromDir(dir string) ([]*Script, error) {
	if strings.TrimSpace(dir) == "" {
		return []*Script{}, nil
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []*Script{}, nil
		}
		return nil, fmt.Errorf("read scripts dir %s: %w", dir, err)
	}

	scripts := make([]*Script, 0)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		ext := strings.ToLower(filepath.Ext(name))
		if ext != ".yaml" && ext != ".yml" {
			continue
		}
		script, err := LoadScript(filepath.Join(dir, name))
		if err != nil {
			return nil, err
		}
		scripts = append(scripts, script)
	}

	sort.Slice(scripts, func(i, j int) bool {
		return scripts[i].Name < scripts[j].Name
	})

	return scripts, nil
}

func parseScript(data []byte) (*Script, error) {
	var script Script
	if err := yaml.Unmarshal(data, &script); err != nil {
		return nil, err
	}

	script.Name = strings.TrimSpace(script.Name)
	if script.Name == "" {
		return nil, fmt.Errorf("script name is required")
	}
	script.Description = strings.TrimSpace(script.Description)

	script.TypeSpeed = strings.TrimSpace(script.TypeSpeed)
	if script.TypeSpeed != "" {
		if _, err := parseSpeed(script.TypeSpeed); err != nil {
			return nil, fmt.Errorf("type_speed: %w", err)
		}
	}

	if len(script.Steps) == 0 {
		return nil, fmt.Errorf("script steps are required")
	}

	seen := make(map[string]struct{})
	for i := range script.Variables {
		name := strings.TrimSpace(script.Variables[i].Name)
		if name == "" {
			return nil, fmt.Errorf("script variable name is required")
		}
		if _, exists := seen[name]; exists {
			return nil, fmt.Errorf("duplicate script variable %q", name)
		}
		seen[name] = struct{}{}
		script.Variables[i].Name = name
	}

	for i := range script.Steps {
		if err := normalizeStep(&script.Steps[i]); err != nil {
			return nil, fmt.Errorf("script step %d: %w", i+1, err)
		}
	}

	return &script, nil
}

// normalizeStep canonicalizes the step type and validates its fields.
// Text is left untouched: leading spaces and newlines are typed.
func normalizeStep(step *ScriptStep) error {
	stepType := strings.ToLower(strings.TrimSpace(string(step.Type)))
	stepType = strings.ReplaceAll(stepType, "-", "_")
	switch stepType {
	case "type_string", "typestring", "write":
		stepType = string(StepTypeType)
	case "wait", "pause_for":
		stepType = string(StepTypePause)
	case "deleteall":
		stepType = string(StepTypeDeleteAll)
	case "deletechars", "delete":
		stepType = string(StepTypeDeleteChars)
	}
	step.Type = StepType(stepType)

	step.Duration = strings.TrimSpace(step.Duration)
	step.Speed = strings.TrimSpace(step.Speed)

	switch step.Type {
	case StepTypeType:
		if step.Text == "" {
			return fmt.Errorf("type text is required")
		}

	case StepTypePause:
		if step.Duration == "" {
			return fmt.Errorf("pause duration is required")
		}
		duration, err := time.ParseDuration(step.Duration)
		if err != nil {
			return fmt.Errorf("invalid pause duration: %w", err)
		}
		if duration <= 0 {
			return fmt.Errorf("pause duration must be greater than 0")
		}

	case StepTypeDeleteAll:
		if step.Speed != "" {
			if _, err := parseSpeed(step.Speed); err != nil {
				return fmt.Errorf("delete_all speed: %w", err)
			}
		}

	case StepTypeDeleteChars:
		if step.Count == nil {
			return fmt.Errorf("delete_chars count is required")
		}
		if *step.Count < 0 {
			return fmt.Errorf("delete_chars count must not be negative")
		}

	default:
		return fmt.Errorf("unknown step type %q", step.Type)
	}

	return nil
}

// parseSpeed accepts a Go duration or a bare number of milliseconds.
func parseSpeed(value string) (time.Duration, error) {
	if value == "" {
		return 0, nil
	}
	speed, err := time.ParseDuration(value)
	if err != nil {
		ms, convErr := strconv.Atoi(value)
		if convErr != nil {
			return 0, fmt.Errorf("invalid speed %q: %w", value, err)
		}
		speed = time.Duration(ms) * time.Millisecond
	}
	if speed < 0 {
		return 0, fmt.Errorf("speed must not be negative")
	}
	return speed, nil
}
