package scripts

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/GustavoCosta/typewriter/internal/surface"
	"github.com/GustavoCosta/typewriter/internal/typewriter"
)

func writeScript(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatalf("write script: %v", err)
	}
	return path
}

func TestLoadScript(t *testing.T) {
	dir := t.TempDir()
	path := writeScript(t, dir, "example.yaml", `name: example
description: Example script
loop: true
type_speed: "20"
steps:
  - type: type
    text: "  Hello {{.name}}"
  - type: wait
    duration: 5s
  - type: delete-all
    speed: 10ms
  - type: deleteChars
    count: 3
`)

	script, err := LoadScript(path)
	if err != nil {
		t.Fatalf("LoadScript: %v", err)
	}

	if script.Name != "example" {
		t.Fatalf("expected name example, got %q", script.Name)
	}
	if script.Source != path {
		t.Fatalf("expected source %q, got %q", path, script.Source)
	}
	if script.Steps[0].Text != "  Hello {{.name}}" {
		t.Fatalf("expected text to keep leading spaces, got %q", script.Steps[0].Text)
	}

	want := []StepType{StepTypeType, StepTypePause, StepTypeDeleteAll, StepTypeDeleteChars}
	for i, step := range script.Steps {
		if step.Type != want[i] {
			t.Fatalf("step %d: expected type %q, got %q", i+1, want[i], step.Type)
		}
	}
}

func TestLoadScriptValidation(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{"missing name", "steps:\n  - type: type\n    text: hi\n", "name is required"},
		{"no steps", "name: x\n", "steps are required"},
		{"unknown type", "name: x\nsteps:\n  - type: jump\n", "unknown step type"},
		{"empty text", "name: x\nsteps:\n  - type: type\n", "type text is required"},
		{"bad pause", "name: x\nsteps:\n  - type: pause\n    duration: soon\n", "invalid pause duration"},
		{"zero pause", "name: x\nsteps:\n  - type: pause\n    duration: 0s\n", "greater than 0"},
		{"missing count", "name: x\nsteps:\n  - type: delete_chars\n", "count is required"},
		{"negative count", "name: x\nsteps:\n  - type: delete_chars\n    count: -1\n", "must not be negative"},
		{"bad speed", "name: x\ntype_speed: fast\nsteps:\n  - type: delete_all\n", "type_speed"},
		{"duplicate var", "name: x\nvariables:\n  - name: a\n  - name: a\nsteps:\n  - type: delete_all\n", "duplicate script variable"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeScript(t, t.TempDir(), "bad.yaml", tt.body)
			_, err := LoadScript(path)
			if err == nil {
				t.Fatalf("expected error containing %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestLoadScriptsFromDirSkipsOtherFiles(t *testing.T) {
	dir := t.TempDir()
	writeScript(t, dir, "b.yaml", "name: b\nsteps:\n  - type: delete_all\n")
	writeScript(t, dir, "a.yml", "name: a\nsteps:\n  - type: delete_all\n")
	writeScript(t, dir, "notes.txt", "not a script")

	scripts, err := LoadScriptsFromDir(dir)
	if err != nil {
		t.Fatalf("LoadScriptsFromDir: %v", err)
	}
	if len(scripts) != 2 || scripts[0].Name != "a" || scripts[1].Name != "b" {
		t.Fatalf("unexpected scripts: %+v", scripts)
	}

	missing, err := LoadScriptsFromDir(filepath.Join(dir, "missing"))
	if err != nil {
		t.Fatalf("missing dir should not fail: %v", err)
	}
	if len(missing) != 0 {
		t.Fatalf("expected no scripts from missing dir, got %d", len(missing))
	}
}

func TestRenderScript(t *testing.T) {
	count := 4
	script := &Script{
		Name: "example",
		Steps: []ScriptStep{
			{Type: StepTypeType, Text: "Hello {{.name | default \"world\"}}"},
			{Type: StepTypePause, Duration: "250ms"},
			{Type: StepTypeDeleteAll, Speed: "15"},
			{Type: StepTypeDeleteChars, Count: &count},
		},
	}

	steps, err := RenderScript(script, map[string]string{})
	if err != nil {
		t.Fatalf("RenderScript: %v", err)
	}
	if len(steps) != 4 {
		t.Fatalf("expected 4 steps, got %d", len(steps))
	}
	if steps[0].Text != "Hello world" {
		t.Fatalf("unexpected text: %q", steps[0].Text)
	}
	if steps[1].Duration != 250*time.Millisecond {
		t.Fatalf("unexpected pause: %s", steps[1].Duration)
	}
	if steps[2].Speed != 15*time.Millisecond {
		t.Fatalf("unexpected speed: %s", steps[2].Speed)
	}
	if steps[3].Count != 4 {
		t.Fatalf("unexpected count: %d", steps[3].Count)
	}
}

func TestRenderScriptVariables(t *testing.T) {
	script := &Script{
		Name: "vars",
		Variables: []ScriptVar{
			{Name: "who", Required: true},
			{Name: "greeting", Default: "Hi"},
		},
		Steps: []ScriptStep{
			{Type: StepTypeType, Text: "{{.greeting}} {{.who}}"},
		},
	}

	if _, err := RenderScript(script, map[string]string{}); err == nil {
		t.Fatalf("expected error for missing required variable")
	}

	steps, err := RenderScript(script, map[string]string{"who": "Ada"})
	if err != nil {
		t.Fatalf("RenderScript: %v", err)
	}
	if steps[0].Text != "Hi Ada" {
		t.Fatalf("unexpected text: %q", steps[0].Text)
	}
}

func TestOptionsOverrides(t *testing.T) {
	loop := true
	script := &Script{Loop: &loop, TypeSpeed: "15ms"}
	base := typewriter.Options{TypeSpeed: 50 * time.Millisecond}

	got := Options(script, base)
	if !got.Loop || got.TypeSpeed != 15*time.Millisecond {
		t.Fatalf("unexpected options: %+v", got)
	}

	if got := Options(&Script{}, base); got != base {
		t.Fatalf("expected base options, got %+v", got)
	}
}

func TestApplyRunsSteps(t *testing.T) {
	count := 2
	script := &Script{
		Name: "apply",
		Steps: []ScriptStep{
			{Type: StepTypeType, Text: "abcdef"},
			{Type: StepTypePause, Duration: "1ms"},
			{Type: StepTypeDeleteChars, Count: &count},
			{Type: StepTypeType, Text: "XY"},
		},
	}
	steps, err := RenderScript(script, nil)
	if err != nil {
		t.Fatalf("RenderScript: %v", err)
	}

	buf := surface.NewBuffer()
	tw := typewriter.New(buf, typewriter.Options{TypeSpeed: time.Millisecond})
	if err := Apply(tw, steps); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if tw.Len() != 4 {
		t.Fatalf("expected 4 queued actions, got %d", tw.Len())
	}
	if err := tw.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}

	if got := buf.Text(); got != "abcXY" {
		t.Fatalf("unexpected text: %q", got)
	}
}

func TestLoadBuiltinScripts(t *testing.T) {
	scripts, err := LoadBuiltinScripts()
	if err != nil {
		t.Fatalf("LoadBuiltinScripts: %v", err)
	}
	if len(scripts) < 3 {
		t.Fatalf("expected at least 3 builtin scripts, got %d", len(scripts))
	}

	for _, script := range scripts {
		if script.Source != "builtin" {
			t.Fatalf("expected builtin source, got %q", script.Source)
		}
		if _, err := RenderScript(script, nil); err != nil {
			t.Fatalf("render builtin %q: %v", script.Name, err)
		}
	}
}

func TestLoadScriptsFromSearchPathsPrecedence(t *testing.T) {
	project := t.TempDir()
	dir := filepath.Join(project, ".typewriter", "scripts")
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	writeScript(t, dir, "hello.yaml", "name: hello\ndescription: project override\nsteps:\n  - type: delete_all\n")

	extra := t.TempDir()
	writeScript(t, extra, "custom.yaml", "name: custom\nsteps:\n  - type: delete_all\n")

	scripts, err := LoadScriptsFromSearchPaths(project, extra)
	if err != nil {
		t.Fatalf("LoadScriptsFromSearchPaths: %v", err)
	}

	byName := make(map[string]*Script)
	for _, script := range scripts {
		byName[script.Name] = script
	}
	if byName["hello"] == nil || byName["hello"].Description != "project override" {
		t.Fatalf("expected project hello to win over builtin")
	}
	if byName["custom"] == nil {
		t.Fatalf("expected script from extra dir")
	}
	if byName["demo"] == nil || byName["demo"].Source != "builtin" {
		t.Fatalf("expected builtin demo")
	}
	if scripts[0].Name != "custom" {
		t.Fatalf("expected extra dir first, got %q", scripts[0].Name)
	}
}

func TestWatchReloadsScript(t *testing.T) {
	dir := t.TempDir()
	path := writeScript(t, dir, "live.yaml", "name: live\nsteps:\n  - type: type\n    text: one\n")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changes := make(chan *Script, 4)
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, path, func(script *Script, err error) {
			if err == nil {
				changes <- script
			}
		})
	}()

	// Give the watcher time to register before writing.
	time.Sleep(100 * time.Millisecond)
	writeScript(t, dir, "live.yaml", "name: live\nsteps:\n  - type: type\n    text: two\n")

	select {
	case script := <-changes:
		if script.Steps[0].Text != "two" {
			t.Fatalf("expected reloaded text, got %q", script.Steps[0].Text)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for reload")
	}

	cancel()
	if err := <-done; err != nil {
		t.Fatalf("Watch: %v", err)
	}
}
