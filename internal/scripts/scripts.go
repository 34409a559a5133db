// Package scripts provides loading and rendering of typewriter scripts: named,
// YAML-described lists of type, pause and delete steps.
package scripts

// Script represents an ordered list of typewriter steps.
type Script struct {
	Name        string       `yaml:"name"`
	Description string       `yaml:"description"`
	Loop        *bool        `yaml:"loop,omitempty"`
	TypeSpeed   string       `yaml:"type_speed,omitempty"`
	Steps       []ScriptStep `yaml:"steps"`
	Variables   []ScriptVar  `yaml:"variables,omitempty"`
	Tags        []string     `yaml:"tags,omitempty"`
	Source      string       `yaml:"-"` // file path or "builtin"
}

// ScriptStep represents a single step in a script.
type ScriptStep struct {
	Type     StepType `yaml:"type"`
	Text     string   `yaml:"text,omitempty"`
	Duration string   `yaml:"duration,omitempty"`
	Speed    string   `yaml:"speed,omitempty"`
	Count    *int     `yaml:"count,omitempty"`
}

// ScriptVar describes a variable used in a script.
type ScriptVar struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Default     string `yaml:"default,omitempty"`
	Required    bool   `yaml:"required"`
}

// StepType defines the kind of script step.
type StepType string

const (
	StepTypeType        StepType = "type"
	StepTypePause       StepType = "pause"
	StepTypeDeleteAll   StepType = "delete_all"
	StepTypeDeleteChars StepType = "delete_chars"
)
