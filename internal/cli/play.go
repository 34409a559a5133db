package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/gdamore/tcell/v2"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/GustavoCosta/typewriter/internal/db"
	"github.com/GustavoCosta/typewriter/internal/events"
	"github.com/GustavoCosta/typewriter/internal/logging"
	"github.com/GustavoCosta/typewriter/internal/models"
	"github.com/GustavoCosta/typewriter/internal/scripts"
	"github.com/GustavoCosta/typewriter/internal/surface"
	"github.com/GustavoCosta/typewriter/internal/typewriter"
)

var (
	playFlags  sequenceFlags
	playScreen bool
	playWatch  bool
	playRecord bool
)

func init() {
	rootCmd.AddCommand(playCmd)

	playFlags.register(playCmd)
	playCmd.Flags().BoolVar(&playScreen, "screen", false, "render full-screen with tcell")
	playCmd.Flags().BoolVar(&playWatch, "watch", false, "restart when the script file changes")
	playCmd.Flags().BoolVar(&playRecord, "record", false, "record the run in history")
}

var playCmd = &cobra.Command{
	Use:   "play [script]",
	Short: "Play a script in the terminal",
	Long: `Play a script by name or file path. Without arguments the builtin
demo script is played. Press Ctrl+C to stop a looping script.`,
	Example: `  typewriter play
  typewriter play hello --var name=Ada
  typewriter play ./intro.yaml --watch
  typewriter play --text "Hello, world" --speed 80ms`,
	Args: cobra.MaximumNArgs(1),
	RunE: runPlay,
}

// playResult summarizes one run for output.
type playResult struct {
	RunID    string           `json:"run_id,omitempty"`
	Script   string           `json:"script"`
	Status   models.RunStatus `json:"status"`
	Text     string           `json:"text"`
	Actions  int64            `json:"actions"`
	Duration time.Duration    `json:"duration"`
	Error    string           `json:"error,omitempty"`
}

func runPlay(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()
	seq, err := resolveSequence(cfg, &playFlags, args)
	if err != nil {
		return err
	}
	if playWatch && seq.path == "" {
		return &PreflightError{
			Message:  "--watch needs a script file",
			Hint:     "Builtin scripts and --text cannot change on disk",
			NextStep: "typewriter play ./my-script.yaml --watch",
		}
	}
	if playScreen && IsNonInteractive() {
		return &PreflightError{
			Message:  "--screen requires an interactive terminal",
			Hint:     "Run without --non-interactive and with a TTY",
			NextStep: "typewriter play " + seq.name,
		}
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var history *historyWriter
	if playRecord || cfg.History.Enabled {
		step := beginStep(cmd.ErrOrStderr(), "history")
		database, err := openDatabase(ctx)
		step.finish(err)
		if err != nil {
			return err
		}
		defer database.Close()
		history = newHistoryWriter(database)
	}

	host, err := newPlayHost(ctx, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	defer host.close()

	optionsFor := func(script *scripts.Script) (typewriter.Options, error) {
		return sequenceOptions(cmd, cfg, &playFlags, script)
	}

	if playWatch {
		return watchAndPlay(host.ctx, host, seq, optionsFor, history)
	}

	opts, err := optionsFor(seq.script)
	if err != nil {
		return err
	}
	result, runErr := playOnce(host.ctx, host.container, seq, opts, history)
	host.close()
	if result == nil {
		return runErr
	}

	if IsJSONOutput() || IsJSONLOutput() {
		if err := WriteOutput(cmd.OutOrStdout(), result); err != nil {
			return err
		}
	}
	return runErr
}

// playHost is where the typewriter's element is rendered.
type playHost struct {
	ctx       context.Context
	container typewriter.Container
	close     func()
}

func newPlayHost(ctx context.Context, out io.Writer) (*playHost, error) {
	if IsJSONOutput() || IsJSONLOutput() {
		return &playHost{ctx: ctx, container: surface.NewBuffer(), close: func() {}}, nil
	}
	if playScreen {
		return newScreenHost(ctx)
	}

	opts := []surface.TerminalOption{surface.WithStyle(lipgloss.NewStyle().Bold(true))}
	if f, ok := out.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		opts = append(opts, surface.WithWidthFunc(func() int {
			width, _, err := term.GetSize(int(f.Fd()))
			if err != nil {
				return 0
			}
			return width
		}))
	}
	terminal := surface.NewTerminal(out, opts...)
	closed := false
	return &playHost{
		ctx:       ctx,
		container: terminal,
		close: func() {
			if closed {
				return
			}
			closed = true
			if err := terminal.Finish(); err != nil {
				logger := logging.Component("cli")
				logger.Warn().Err(err).Msg("terminal write failed")
			}
		},
	}, nil
}

// newScreenHost renders on a tcell screen and ends the context on q, Esc or Ctrl+C.
func newScreenHost(ctx context.Context) (*playHost, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, fmt.Errorf("create screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return nil, fmt.Errorf("init screen: %w", err)
	}
	screen.HideCursor()

	ctx, cancel := context.WithCancel(ctx)
	go func() {
		for {
			ev := screen.PollEvent()
			switch ev := ev.(type) {
			case nil:
				return
			case *tcell.EventResize:
				screen.Sync()
			case *tcell.EventKey:
				if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC || (ev.Key() == tcell.KeyRune && ev.Rune() == 'q') {
					cancel()
				}
			}
		}
	}()

	view := surface.NewScreen(screen, 2, 1)
	closed := false
	return &playHost{
		ctx:       ctx,
		container: view,
		close: func() {
			if closed {
				return
			}
			closed = true
			cancel()
			screen.Fini()
		},
	}, nil
}

// playOnce runs seq to completion on container. A stopped run is not an error.
func playOnce(ctx context.Context, container typewriter.Container, seq *sequence, opts typewriter.Options, history *historyWriter) (*playResult, error) {
	logger := logging.Component("cli")

	tw := typewriter.New(container, opts)
	if err := seq.load(tw); err != nil {
		return nil, err
	}

	var run *models.Run
	if history != nil {
		var err error
		run, err = history.begin(ctx, seq.name, opts)
		if err != nil {
			return nil, err
		}
	}

	recordCtx, stopRecording := context.WithCancel(context.Background())
	recorded := make(chan struct{})
	if run != nil {
		recorder := events.NewRecorder(history.events, run.ID)
		go func() {
			defer close(recorded)
			recorder.Run(recordCtx, tw.Events())
		}()
	} else {
		close(recorded)
	}

	started := time.Now()
	logger.Info().Str("script", seq.name).Bool("loop", opts.Loop).Dur("type_speed", opts.TypeSpeed).Msg("playing")
	runErr := tw.Start(ctx)

	stopRecording()
	<-recorded

	status := runStatus(runErr)
	stats := tw.Stats()
	result := &playResult{
		Script:   seq.name,
		Status:   status,
		Text:     tw.Element().Text(),
		Actions:  stats.Completed,
		Duration: time.Since(started),
	}
	if status == models.RunStatusFailed {
		result.Error = runErr.Error()
	}

	if run != nil {
		result.RunID = run.ID
		history.finish(run.ID, status, int(stats.Completed), runErr)
	}

	logger.Info().Str("script", seq.name).Str("status", string(status)).Int64("actions", stats.Completed).Msg("finished")

	if status == models.RunStatusFailed {
		return result, runErr
	}
	return result, nil
}

func runStatus(err error) models.RunStatus {
	switch {
	case err == nil:
		return models.RunStatusCompleted
	case errors.Is(err, typewriter.ErrStopped), errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return models.RunStatusStopped
	default:
		return models.RunStatusFailed
	}
}

// watchAndPlay replays the script every time its file changes until ctx ends.
func watchAndPlay(ctx context.Context, host *playHost, seq *sequence, optionsFor func(*scripts.Script) (typewriter.Options, error), history *historyWriter) error {
	logger := logging.Component("cli")

	changes := make(chan *scripts.Script, 1)
	watchErr := make(chan error, 1)
	go func() {
		watchErr <- scripts.Watch(ctx, seq.path, func(script *scripts.Script, err error) {
			if err != nil {
				logger.Warn().Err(err).Str("path", seq.path).Msg("script reload failed")
				return
			}
			select {
			case changes <- script:
			default:
				select {
				case <-changes:
				default:
				}
				changes <- script
			}
		})
	}()

	current := *seq
	for {
		opts, err := optionsFor(current.script)
		if err != nil {
			return err
		}

		runCtx, cancel := context.WithCancel(ctx)
		done := make(chan error, 1)
		go func(s sequence) {
			_, err := playOnce(runCtx, host.container, &s, opts, history)
			done <- err
		}(current)

		var next *scripts.Script
		select {
		case <-ctx.Done():
			cancel()
			<-done
			return nil
		case err := <-watchErr:
			cancel()
			<-done
			return err
		case next = <-changes:
			cancel()
			<-done
		case err := <-done:
			if err != nil {
				logger.Error().Err(err).Str("script", current.name).Msg("run failed, waiting for changes")
			}
			select {
			case <-ctx.Done():
				cancel()
				return nil
			case err := <-watchErr:
				cancel()
				return err
			case next = <-changes:
			}
			cancel()
		}

		logger.Info().Str("path", seq.path).Msg("script changed, restarting")
		current.script = next
		current.name = next.Name
	}
}

// historyWriter stores runs and their action events.
type historyWriter struct {
	runs   *db.RunRepository
	events *db.EventRepository
}

func newHistoryWriter(database *db.DB) *historyWriter {
	return &historyWriter{
		runs:   db.NewRunRepository(database),
		events: db.NewEventRepository(database),
	}
}

func (h *historyWriter) begin(ctx context.Context, script string, opts typewriter.Options) (*models.Run, error) {
	run := &models.Run{
		Script:    script,
		Loop:      opts.Loop,
		TypeSpeed: opts.TypeSpeed,
	}
	if err := h.runs.Create(ctx, run); err != nil {
		return nil, fmt.Errorf("record run: %w", err)
	}

	if err := events.LogRunStarted(ctx, h.events, run); err != nil {
		logger := logging.Component("cli")
		logger.Warn().Err(err).Str("run_id", run.ID).Msg("failed to record run start")
	}
	return run, nil
}

// finish uses a fresh context so an interrupted run is still closed out.
func (h *historyWriter) finish(runID string, status models.RunStatus, actions int, runErr error) {
	logger := logging.Component("cli")
	ctx := context.Background()

	message := ""
	if status == models.RunStatusFailed && runErr != nil {
		message = runErr.Error()
	}
	if err := h.runs.Finish(ctx, runID, status, actions, message); err != nil {
		logger.Warn().Err(err).Str("run_id", runID).Msg("failed to finish run")
	}

	var finishErr error
	if status == models.RunStatusFailed {
		finishErr = runErr
	}
	if err := events.LogRunFinished(ctx, h.events, runID, status, finishErr); err != nil {
		logger.Warn().Err(err).Str("run_id", runID).Msg("failed to record run end")
	}
}
