package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/multiverse/internal/invariant"
	"github.com/roach88/multiverse/internal/multiverse"
	"github.com/roach88/multiverse/internal/store"
)

// CheckOptions holds flags for the check command.
type CheckOptions struct {
	*RootOptions
	Database string
	All      bool
	History  bool
}

// CheckReport is the outcome of re-checking a stored snapshot.
type CheckReport struct {
	Snapshot store.SnapshotRecord  `json:"snapshot"`
	Run      store.ValidationRun   `json:"run"`
	History  []store.ValidationRun `json:"history,omitempty"`
}

// NewCheckCommand creates the check command.
func NewCheckCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CheckOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "check <snapshot>",
		Short: "Re-check the consistency properties of a stored snapshot",
		Long: `Load a stored snapshot by digest or unique digest prefix, restore it, and
check its consistency properties. The outcome is recorded as a validation run.

By default checking stops at the first violated property; --all reports
every violated property.

Example:
  multiverse check 3fa9c2
  multiverse check --all --history --db ./multiverse.db 3fa9c2`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (default: store.path from config)")
	cmd.Flags().BoolVar(&opts.All, "all", false, "report every violated property instead of stopping at the first")
	cmd.Flags().BoolVar(&opts.History, "history", false, "include earlier validation runs of the snapshot")

	return cmd
}

func runCheck(opts *CheckOptions, ref string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)
	cfg, logger, err := opts.settings(cmd)
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	db, err := openStore(opts.Database, cfg.Store.Path, true)
	if err != nil {
		_ = formatter.Error(ErrCodeStore, err.Error(), nil)
		return WrapExitError(ExitCommandError, "opening database", err)
	}
	defer db.Close()

	snap, rec, err := db.LoadSnapshot(ctx, ref)
	if err != nil {
		_ = formatter.Error(storeErrorCode(err), err.Error(), nil)
		return WrapExitError(ExitCommandError, "loading snapshot", err)
	}
	m, err := multiverse.Restore(snap)
	if err != nil {
		_ = formatter.Error(ErrCodeStore, err.Error(), nil)
		return WrapExitError(ExitCommandError, "restoring snapshot", err)
	}
	formatter.VerboseLog("Restored %s (%s): %d timeline(s), %d character(s), %d memory(ies), %d event(s)",
		rec.Digest, rec.Label, rec.Timelines, rec.Characters, rec.Memories, rec.Events)

	mode := store.ModeFailFast
	var violations []*invariant.Violation
	if opts.All {
		mode = store.ModeEach
		violations = invariant.CheckEach(m)
	} else if err := invariant.CheckAll(m); err != nil {
		var v *invariant.Violation
		if !errors.As(err, &v) {
			v = &invariant.Violation{Message: err.Error()}
		}
		violations = []*invariant.Violation{v}
	}

	run, err := db.WriteValidationRun(ctx, store.ValidationRun{
		SnapshotDigest: rec.Digest,
		Mode:           mode,
		Violations:     violations,
	})
	if err != nil {
		_ = formatter.Error(ErrCodeStore, err.Error(), nil)
		return WrapExitError(ExitCommandError, "recording validation run", err)
	}
	logger.Debug("validation run recorded", "snapshot", rec.Digest, "run_id", run.ID, "mode", string(mode), "passed", run.Passed)

	report := CheckReport{Snapshot: rec, Run: run}
	if opts.History {
		history, err := db.ReadValidationRuns(ctx, rec.Digest)
		if err != nil {
			_ = formatter.Error(ErrCodeStore, err.Error(), nil)
			return WrapExitError(ExitCommandError, "reading validation runs", err)
		}
		report.History = history
	}

	if !run.Passed {
		msg := fmt.Sprintf("%d property(ies) violated in snapshot %s", len(run.Violations), shortDigest(rec.Digest))
		if formatter.IsJSON() {
			_ = formatter.Failure(ErrCodeViolation, msg, report)
		} else {
			printCheck(formatter, report)
		}
		return NewExitError(ExitFailure, msg)
	}

	if formatter.IsJSON() {
		return formatter.Success(report)
	}
	printCheck(formatter, report)
	return nil
}

func printCheck(formatter *OutputFormatter, report CheckReport) {
	rec, run := report.Snapshot, report.Run
	formatter.Printf("Snapshot %s (%s)\n", shortDigest(rec.Digest), rec.Label)
	if run.Passed {
		formatter.Printf("✓ All properties hold (run %s, %s)\n", run.ID, run.Mode)
	} else {
		formatter.Printf("✗ %d violation(s) (run %s, %s)\n", len(run.Violations), run.ID, run.Mode)
		for _, v := range run.Violations {
			formatter.Printf("  %s\n", v.Error())
		}
	}
	if len(report.History) > 0 {
		formatter.Printf("\nHistory:\n")
		for _, h := range report.History {
			status := "pass"
			if !h.Passed {
				status = fmt.Sprintf("%d violation(s)", len(h.Violations))
			}
			formatter.Printf("  %s  %s  %-9s  %s\n", h.CreatedAt.Format(time.RFC3339), h.ID, h.Mode, status)
		}
	}
}

// shortDigest abbreviates a digest for display.
func shortDigest(digest string) string {
	if len(digest) > 12 {
		return digest[:12]
	}
	return digest
}
