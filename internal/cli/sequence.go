package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/GustavoCosta/typewriter/internal/config"
	"github.com/GustavoCosta/typewriter/internal/scripts"
	"github.com/GustavoCosta/typewriter/internal/typewriter"
)

const defaultScriptName = "demo"

// sequenceFlags are shared by every command that plays a script.
type sequenceFlags struct {
	loop  bool
	speed string
	vars  []string
	text  string
}

func (f *sequenceFlags) register(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&f.loop, "loop", false, "repeat the sequence until interrupted")
	cmd.Flags().StringVar(&f.speed, "speed", "", "type speed as a duration or milliseconds (e.g. 30ms, 30)")
	cmd.Flags().StringArrayVar(&f.vars, "var", nil, "script variable as key=value (repeatable, comma separated)")
	cmd.Flags().StringVar(&f.text, "text", "", "type this text instead of a script")
}

// sequence is a resolved script ready to be enqueued.
type sequence struct {
	name   string
	path   string
	script *scripts.Script
	vars   map[string]string
}

// load enqueues the sequence onto tw.
func (s *sequence) load(tw *typewriter.Typewriter) error {
	steps, err := scripts.RenderScript(s.script, s.vars)
	if err != nil {
		return err
	}
	return scripts.Apply(tw, steps)
}

// resolveSequence picks the script named by args, a script file path, or an
// ad-hoc --text script.
func resolveSequence(cfg *config.Config, flags *sequenceFlags, args []string) (*sequence, error) {
	vars, err := parseScriptVars(flags.vars)
	if err != nil {
		return nil, err
	}

	if flags.text != "" {
		if len(args) > 0 {
			return nil, fmt.Errorf("--text cannot be combined with a script argument")
		}
		return &sequence{
			name:   "text",
			script: textScript(flags.text),
			vars:   vars,
		}, nil
	}

	target := defaultScriptName
	if len(args) > 0 {
		target = args[0]
	}

	if looksLikePath(target) {
		script, err := scripts.LoadScript(target)
		if err != nil {
			return nil, err
		}
		return &sequence{name: script.Name, path: target, script: script, vars: vars}, nil
	}

	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("resolve working directory: %w", err)
	}
	available, err := scripts.LoadScriptsFromSearchPaths(cwd, cfg.Scripts.Dirs...)
	if err != nil {
		return nil, err
	}
	script := findScriptByName(available, target)
	if script == nil {
		return nil, fmt.Errorf("script %q not found (run 'typewriter scripts list')", target)
	}

	seq := &sequence{name: script.Name, script: script, vars: vars}
	if script.Source != "" && script.Source != "builtin" {
		seq.path = script.Source
	}
	return seq, nil
}

// textScript types text once. Template syntax in text is taken literally.
func textScript(text string) *scripts.Script {
	return &scripts.Script{
		Name: "text",
		Steps: []scripts.ScriptStep{
			{Type: scripts.StepTypeType, Text: `{{.text}}`},
		},
		Variables: []scripts.ScriptVar{
			{Name: "text", Default: text},
		},
	}
}

func looksLikePath(target string) bool {
	ext := strings.ToLower(filepath.Ext(target))
	if ext == ".yaml" || ext == ".yml" {
		return true
	}
	return strings.ContainsRune(target, filepath.Separator)
}

// sequenceOptions layers config defaults, the script's own settings and
// explicit flags, in that order.
func sequenceOptions(cmd *cobra.Command, cfg *config.Config, flags *sequenceFlags, script *scripts.Script) (typewriter.Options, error) {
	opts := typewriter.DefaultOptions()
	if cfg.Typewriter.TypeSpeed > 0 {
		opts.TypeSpeed = cfg.Typewriter.TypeSpeed
	}
	opts.Loop = cfg.Typewriter.Loop
	opts = scripts.Options(script, opts)

	if cmd.Flags().Changed("loop") {
		opts.Loop = flags.loop
	}
	if cmd.Flags().Changed("speed") {
		speed, err := parseSpeedFlag(flags.speed)
		if err != nil {
			return opts, err
		}
		opts.TypeSpeed = speed
	}
	return opts, nil
}

func parseSpeedFlag(value string) (time.Duration, error) {
	value = strings.TrimSpace(value)
	if ms, err := strconv.Atoi(value); err == nil {
		if ms <= 0 {
			return 0, fmt.Errorf("--speed must be greater than 0")
		}
		return time.Duration(ms) * time.Millisecond, nil
	}
	speed, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid --speed %q: %w", value, err)
	}
	if speed <= 0 {
		return 0, fmt.Errorf("--speed must be greater than 0")
	}
	return speed, nil
}

func parseScriptVars(values []string) (map[string]string, error) {
	vars := make(map[string]string)
	for _, raw := range values {
		for _, pair := range strings.Split(raw, ",") {
			pair = strings.TrimSpace(pair)
			if pair == "" {
				continue
			}
			key, value, ok := strings.Cut(pair, "=")
			if !ok {
				return nil, fmt.Errorf("invalid variable %q (expected key=value)", pair)
			}
			key = strings.TrimSpace(key)
			if key == "" {
				return nil, fmt.Errorf("invalid variable %q (empty key)", pair)
			}
			vars[key] = strings.TrimSpace(value)
		}
	}
	return vars, nil
}

func findScriptByName(items []*scripts.Script, name string) *scripts.Script {
	for _, item := range items {
		if strings.EqualFold(item.Name, name) {
			return item
		}
	}
	return nil
}

func filterScripts(items []*scripts.Script, tags []string) []*scripts.Script {
	if len(tags) == 0 {
		return items
	}
	wanted := make(map[string]struct{}, len(tags))
	for _, tag := range tags {
		wanted[strings.ToLower(tag)] = struct{}{}
	}

	filtered := make([]*scripts.Script, 0, len(items))
	for _, item := range items {
		for _, tag := range item.Tags {
			if _, ok := wanted[strings.ToLower(tag)]; ok {
				filtered = append(filtered, item)
				break
			}
		}
	}
	return filtered
}
