package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"sprout/internal/clock"
	"sprout/internal/config"
	"sprout/internal/focus"
)

func addFocus(topLevel *cobra.Command, v *viper.Viper) {
	var minutes int
	cmd := &cobra.Command{
		Use:   "focus <task-id>",
		Short: "Run a focus session for a task without the interface",
		Long: `Counts down one focus session for the task and credits the focused
minutes to it when the countdown finishes. Interrupting the countdown
discards it.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("task id %q: %w", args[0], err)
			}
			a, err := open(v, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer a.Close()

			r, ok := a.view.Task(id)
			if !ok {
				return fmt.Errorf("no task with id %d", id)
			}
			if r.Completed {
				return fmt.Errorf("task %d is already completed", id)
			}

			cfg := a.pomodoro
			if minutes != 0 {
				p := config.Pomodoro{FocusMinutes: minutes, BreakMinutes: cfg.BreakSeconds / 60}
				if err := p.Validate(); err != nil {
					return err
				}
				cfg = focus.FromMinutes(p.FocusMinutes, p.BreakMinutes)
			}
			timer, err := focus.New(cfg,
				focus.WithTask(r.ID, r.Text),
				focus.WithCompletionHook(a.view.RecordFocus),
				focus.WithNotifier(a.notifier()))
			if err != nil {
				return err
			}

			pulse, err := clock.NewPulse(time.Second)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			pulse.Start()
			defer pulse.Stop()
			return runCountdown(ctx, timer, pulse.C, cmd.OutOrStdout())
		},
	}
	cmd.Flags().IntVar(&minutes, "minutes", 0, "focus length for this session (default from settings)")
	topLevel.AddCommand(cmd)
}

// runCountdown starts timer and ticks it once per beat until the focus
// session finishes, ctx is cancelled or beats closes.
func runCountdown(ctx context.Context, timer *focus.Timer, beats <-chan time.Time, out io.Writer) error {
	timer.Start()
	fmt.Fprintf(out, "focusing on %q for %s\n", timer.Label(), focus.FormatClock(timer.State().Remaining))
	for {
		select {
		case <-ctx.Done():
			timer.Close()
			fmt.Fprintln(out, "\nstopped; nothing credited")
			return nil
		case _, ok := <-beats:
			if !ok {
				timer.Close()
				return nil
			}
			if timer.Tick() {
				fmt.Fprintln(out, "\nfocus complete")
				return nil
			}
			fmt.Fprintf(out, "\r%s  %3.0f%%", focus.FormatClock(timer.State().Remaining), timer.Progress()*100)
		}
	}
}
