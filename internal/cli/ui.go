package cli

import (
	"github.com/spf13/cobra"

	"github.com/GustavoCosta/typewriter/internal/tui"
	"github.com/GustavoCosta/typewriter/internal/typewriter"
)

var uiFlags sequenceFlags

func init() {
	rootCmd.AddCommand(uiCmd)
	uiFlags.register(uiCmd)
}

var uiCmd = &cobra.Command{
	Use:   "ui [script]",
	Short: "Play a script in the full-screen UI",
	Long:  "Play a script in the typewriter terminal user interface (q quit, p pause/resume, r restart).",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTUI(cmd, args)
	},
}

func runTUI(cmd *cobra.Command, args []string) error {
	if IsNonInteractive() {
		return &PreflightError{
			Message:  "TUI requires an interactive terminal",
			Hint:     "Run without --non-interactive and with a TTY, or use the play command",
			NextStep: "typewriter play",
		}
	}

	cfg := GetConfig()
	seq, err := resolveSequence(cfg, &uiFlags, args)
	if err != nil {
		return err
	}
	opts, err := sequenceOptions(cmd, cfg, &uiFlags, seq.script)
	if err != nil {
		return err
	}

	return tui.Run(tui.Config{
		Title:   seq.name,
		Theme:   cfg.TUI.Theme,
		Options: opts,
		Load: func(tw *typewriter.Typewriter) error {
			return seq.load(tw)
		},
	})
}
