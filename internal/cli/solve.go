package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/spyglass-sec/spyglass/internal/work"
)

// SolveOptions holds flags for the solve command.
type SolveOptions struct {
	*RootOptions
	Workers int
	Timeout time.Duration
	Force   bool
}

// NewSolveCommand creates the solve command.
func NewSolveCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SolveOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "solve <target>...",
		Short: "Evaluate targets until the unit catalog is exhausted",
		Long: `Submit one or more targets (inline strings, file paths, or URLs) and
run the dispatch engine until every derivation is exhausted or the
timeout elapses. Discovered flags are printed with the chain of
transformations that produced them.

Example:
  spyglass solve ./challenge.bin
  spyglass solve "aGVsbG8gRkxBR3suLi59" --timeout 30s
  spyglass solve https://ctf.example.org/chal.txt --format json`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSolve(opts, args, cmd)
		},
	}

	cmd.Flags().IntVar(&opts.Workers, "workers", 0, "worker pool size (default from config)")
	cmd.Flags().DurationVar(&opts.Timeout, "timeout", 0, "give up waiting for idle after this long (default from config)")
	cmd.Flags().BoolVar(&opts.Force, "force", false, "resubmit even if the content was already evaluated")

	return cmd
}

// solveReport is the solve command's output payload.
type solveReport struct {
	Targets    int             `json:"targets"`
	Completed  bool            `json:"completed"`
	Flags      []work.Solution `json:"flags"`
	Results    int             `json:"results"`
	Exceptions int             `json:"exceptions"`
}

// String renders the report for text output.
func (r solveReport) String() string {
	var b strings.Builder
	if len(r.Flags) == 0 {
		b.WriteString("no flags found")
	}
	for i, sol := range r.Flags {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(sol.String())
	}
	fmt.Fprintf(&b, "\n(%d targets, %d results, %d unit failures", r.Targets, r.Results, r.Exceptions)
	if !r.Completed {
		b.WriteString(", timed out before idle")
	}
	b.WriteString(")")
	return b.String()
}

func runSolve(opts *SolveOptions, args []string, cmd *cobra.Command) error {
	rt, err := buildRuntime(opts.RootOptions)
	if err != nil {
		return err
	}
	defer rt.close()

	workers := rt.cfg.Workers
	if opts.Workers > 0 {
		workers = opts.Workers
	}
	timeout := rt.cfg.Timeout.Std()
	if opts.Timeout > 0 {
		timeout = opts.Timeout
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rt.manager.Start(ctx, workers); err != nil {
		return WrapExitError(ExitCommandError, "failed to start engine", err)
	}

	for _, arg := range args {
		src := work.InferSource(arg)
		var submitErr error
		if opts.Force {
			_, submitErr = rt.manager.RequeueTarget(ctx, src)
		} else {
			_, submitErr = rt.manager.QueueTarget(ctx, src)
		}
		if submitErr != nil {
			rt.manager.Abort()
			rt.manager.Wait()
			return WrapExitError(ExitCommandError, fmt.Sprintf("failed to queue target %q", arg), submitErr)
		}
	}

	// Wait for global idle, a timeout, or an interrupt. The join runs in
	// slices so a signal is honored promptly; interrupted or timed-out
	// runs are aborted and in-flight evaluations still report.
	completed := joinInterruptible(rt, ctx, timeout)

	rt.manager.Abort()
	rt.manager.Wait()

	formatter := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout(), Verbose: opts.Verbose}

	report := solveReport{
		Targets:    len(rt.manager.Roots()),
		Completed:  completed,
		Flags:      []work.Solution{},
		Results:    len(rt.collector.Results()),
		Exceptions: len(rt.collector.Exceptions()),
	}
	for _, ev := range rt.collector.Flags() {
		report.Flags = append(report.Flags, work.Reconstruct(ev.Case, ev.Flag))
	}

	if err := formatter.Success(report); err != nil {
		return WrapExitError(ExitCommandError, "failed to render output", err)
	}
	if len(report.Flags) == 0 {
		return NewExitError(ExitNoFlag, "no flags found")
	}
	return nil
}

// joinInterruptible blocks until the engine is idle, timeout elapses
// (zero means no limit), or ctx is cancelled. Reports whether idle was
// reached.
func joinInterruptible(rt *runtime, ctx context.Context, timeout time.Duration) bool {
	var deadline time.Time
	if timeout > 0 {
		deadline = time.Now().Add(timeout)
	}

	for {
		slice := 100 * time.Millisecond
		if !deadline.IsZero() {
			remaining := time.Until(deadline)
			if remaining <= 0 {
				return rt.manager.Idle()
			}
			if remaining < slice {
				slice = remaining
			}
		}

		if rt.manager.Join(slice) {
			return true
		}
		select {
		case <-ctx.Done():
			return rt.manager.Idle()
		default:
		}
	}
}
