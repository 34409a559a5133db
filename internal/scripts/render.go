package scripts

import (
	"fmt"
	"strings"
	"text/template"
	"time"

	"github.com/GustavoCosta/typewriter/internal/typewriter"
)

// Step is a rendered script step ready to be enqueued.
type Step struct {
	Type     StepType
	Text     string
	Duration time.Duration
	Speed    time.Duration
	Count    int
}

// RenderScript renders a script into steps with variables applied.
func RenderScript(script *Script, vars map[string]string) ([]Step, error) {
	if script == nil {
		return nil, fmt.Errorf("script is required")
	}

	data := make(map[string]string, len(vars))
	for key, value := range vars {
		data[key] = value
	}

	for _, variable := range script.Variables {
		value := strings.TrimSpace(data[variable.Name])
		if value == "" {
			if variable.Default != "" {
				data[variable.Name] = variable.Default
				continue
			}
			if variable.Required {
				return nil, fmt.Errorf("missing required variable %q", variable.Name)
			}
		}
	}

	steps := make([]Step, 0, len(script.Steps))
	for i, raw := range script.Steps {
		step := Step{Type: raw.Type}

		switch raw.Type {
		case StepTypeType:
			text, err := renderText(script.Name, raw.Text, data)
			if err != nil {
				return nil, fmt.Errorf("render script %q step %d: %w", script.Name, i+1, err)
			}
			step.Text = text

		case StepTypePause:
			duration, err := time.ParseDuration(raw.Duration)
			if err != nil {
				return nil, fmt.Errorf("render script %q step %d: invalid pause duration: %w", script.Name, i+1, err)
			}
			if duration <= 0 {
				return nil, fmt.Errorf("render script %q step %d: pause duration must be greater than 0", script.Name, i+1)
			}
			step.Duration = duration

		case StepTypeDeleteAll:
			speed, err := parseSpeed(raw.Speed)
			if err != nil {
				return nil, fmt.Errorf("render script %q step %d: %w", script.Name, i+1, err)
			}
			step.Speed = speed

		case StepTypeDeleteChars:
			if raw.Count == nil {
				return nil, fmt.Errorf("render script %q step %d: delete_chars count is required", script.Name, i+1)
			}
			step.Count = *raw.Count

		default:
			return nil, fmt.Errorf("render script %q step %d: unknown step type %q", script.Name, i+1, raw.Type)
		}

		steps = append(steps, step)
	}

	return steps, nil
}

// Options returns base with the script's loop and type speed applied.
func Options(script *Script, base typewriter.Options) typewriter.Options {
	if script == nil {
		return base
	}
	if script.Loop != nil {
		base.Loop = *script.Loop
	}
	if speed, err := parseSpeed(script.TypeSpeed); err == nil && speed > 0 {
		base.TypeSpeed = speed
	}
	return base
}

// Apply enqueues steps onto tw in order.
func Apply(tw *typewriter.Typewriter, steps []Step) error {
	if tw == nil {
		return fmt.Errorf("typewriter is required")
	}
	for i, step := range steps {
		switch step.Type {
		case StepTypeType:
			tw.TypeText(step.Text)
		case StepTypePause:
			tw.PauseFor(step.Duration)
		case StepTypeDeleteAll:
			tw.DeleteAll(step.Speed)
		case StepTypeDeleteChars:
			tw.DeleteChars(step.Count)
		default:
			return fmt.Errorf("step %d: unknown step type %q", i+1, step.Type)
		}
	}
	return nil
}

func renderText(name, content string, data map[string]string) (string, error) {
	parsed, err := template.New(name).
		Funcs(template.FuncMap{"default": defaultValue}).
		Option("missingkey=zero").
		Parse(content)
	if err != nil {
		return "", fmt.Errorf("parse template %q: %w", name, err)
	}

	var out strings.Builder
	if err := parsed.Execute(&out, data); err != nil {
		return "", fmt.Errorf("render template %q: %w", name, err)
	}

	return out.String(), nil
}

func defaultValue(def string, value any) string {
	if value == nil {
		return def
	}

	switch v := value.(type) {
	case string:
		if strings.TrimSpace(v) == "" {
			return def
		}
		return v
	default:
		text := strings.TrimSpace(fmt.Sprint(v))
		if text == "" {
			return def
		}
		return text
	}
}
