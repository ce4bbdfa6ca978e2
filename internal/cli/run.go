package cli

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/roach88/multiverse/internal/harness"
	"github.com/roach88/multiverse/internal/invariant"
	"github.com/roach88/multiverse/internal/store"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Database  string
	Save      bool
	Golden    bool
	Update    bool
	GoldenDir string
}

// ScenarioReport is the outcome of one scenario file.
type ScenarioReport struct {
	File       string                 `json:"file"`
	Name       string                 `json:"name,omitempty"`
	Pass       bool                   `json:"pass"`
	Errors     []string               `json:"errors"`
	Violations []*invariant.Violation `json:"violations"`
	Snapshot   string                 `json:"snapshot,omitempty"`
	RunID      string                 `json:"run_id,omitempty"`
}

// RunReport summarises a run command.
type RunReport struct {
	Passed    int              `json:"passed"`
	Failed    int              `json:"failed"`
	Total     int              `json:"total"`
	Scenarios []ScenarioReport `json:"scenarios"`
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run <scenario>...",
		Short: "Run scenario files against a fresh multiverse",
		Long: `Run YAML scenarios and evaluate their expectations.

Each argument is a scenario file or a directory of *.yaml files. Every
scenario starts from an empty multiverse. With --save the final state is
stored as a snapshot together with a full validation run. With --golden the
outcome is compared against <golden-dir>/<name>.golden.

Example:
  multiverse run ./scenarios
  multiverse run --save --db ./multiverse.db ./scenarios/grief.yaml
  multiverse run --golden --update ./scenarios`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScenarios(opts, args, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (default: store.path from config)")
	cmd.Flags().BoolVar(&opts.Save, "save", false, "store each final state as a snapshot")
	cmd.Flags().BoolVar(&opts.Golden, "golden", false, "compare outcomes against golden files")
	cmd.Flags().BoolVar(&opts.Update, "update", false, "rewrite golden files instead of comparing (implies --golden)")
	cmd.Flags().StringVar(&opts.GoldenDir, "golden-dir", "", "golden file directory (default: harness.golden_dir from config)")

	return cmd
}

func runScenarios(opts *RunOptions, paths []string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)
	cfg, logger, err := opts.settings(cmd)
	if err != nil {
		return err
	}

	files, err := harness.FindScenarios(paths)
	if err != nil {
		code := ErrCodeGeneric
		var notFound *harness.ScenarioNotFoundError
		if errors.As(err, &notFound) {
			code = ErrCodeNotFound
		}
		_ = formatter.Error(code, err.Error(), nil)
		return WrapExitError(ExitCommandError, "finding scenarios", err)
	}
	if len(files) == 0 {
		_ = formatter.Error(ErrCodeNotFound, "no scenario files found", paths)
		return NewExitError(ExitCommandError, "no scenario files found")
	}
	formatter.VerboseLog("Found %d scenario file(s)", len(files))

	var db *store.Store
	if opts.Save {
		db, err = openStore(opts.Database, cfg.Store.Path, false)
		if err != nil {
			_ = formatter.Error(ErrCodeStore, err.Error(), nil)
			return WrapExitError(ExitCommandError, "opening database", err)
		}
		defer db.Close()
	}

	goldenDir := opts.GoldenDir
	if goldenDir == "" {
		goldenDir = cfg.Harness.GoldenDir
	}

	report := RunReport{Scenarios: []ScenarioReport{}}
	for _, file := range files {
		sr := ScenarioReport{File: file, Errors: []string{}, Violations: []*invariant.Violation{}}

		scenario, err := harness.LoadScenario(file)
		if err != nil {
			sr.Errors = append(sr.Errors, err.Error())
			report.add(sr)
			printScenario(formatter, sr)
			continue
		}
		sr.Name = scenario.Name

		result, err := harness.Run(scenario,
			harness.WithDecayFactor(cfg.Emotion.DecayFactor),
			harness.WithLogger(logger),
		)
		if err != nil {
			sr.Errors = append(sr.Errors, fmt.Sprintf("execution failed: %v", err))
			report.add(sr)
			printScenario(formatter, sr)
			continue
		}
		sr.Pass = result.Pass
		sr.Errors = append(sr.Errors, result.Errors...)
		sr.Violations = result.Violations

		if opts.Golden || opts.Update {
			if err := checkGolden(goldenDir, result, opts.Update); err != nil {
				sr.Pass = false
				sr.Errors = append(sr.Errors, err.Error())
			}
		}

		if db != nil {
			if err := saveResult(cmd, db, result, &sr); err != nil {
				_ = formatter.Error(ErrCodeStore, err.Error(), nil)
				return WrapExitError(ExitCommandError, "saving snapshot", err)
			}
			logger.Debug("snapshot saved", "scenario", scenario.Name, "digest", sr.Snapshot, "run_id", sr.RunID)
		}

		report.add(sr)
		printScenario(formatter, sr)
	}

	if report.Failed > 0 {
		msg := fmt.Sprintf("%d scenario(s) failed", report.Failed)
		if formatter.IsJSON() {
			_ = formatter.Failure(ErrCodeScenarioFailed, msg, report)
		} else {
			formatter.Printf("\nSummary: %d passed, %d failed, %d total\n", report.Passed, report.Failed, report.Total)
		}
		return NewExitError(ExitFailure, msg)
	}

	if formatter.IsJSON() {
		return formatter.Success(report)
	}
	formatter.Printf("\nSummary: %d passed, %d failed, %d total\n", report.Passed, report.Failed, report.Total)
	formatter.Printf("✓ All scenarios passed\n")
	return nil
}

func (r *RunReport) add(sr ScenarioReport) {
	r.Total++
	if sr.Pass {
		r.Passed++
	} else {
		r.Failed++
	}
	r.Scenarios = append(r.Scenarios, sr)
}

func printScenario(formatter *OutputFormatter, sr ScenarioReport) {
	name := sr.Name
	if name == "" {
		name = filepath.Base(sr.File)
	}
	if sr.Pass {
		formatter.Printf("✓ %s\n", name)
	} else {
		formatter.Printf("✗ %s\n", name)
		for _, e := range sr.Errors {
			formatter.Printf("  %s\n", e)
		}
	}
	if formatter.Verbose {
		for _, v := range sr.Violations {
			formatter.Printf("  violation: %s\n", v.Error())
		}
		if sr.Snapshot != "" {
			formatter.Printf("  snapshot %s (run %s)\n", sr.Snapshot, sr.RunID)
		}
	}
}

// checkGolden compares the canonical outcome with <dir>/<name>.golden, or
// rewrites that file when update is set.
func checkGolden(dir string, result *harness.Result, update bool) error {
	data, err := harness.MarshalResult(result)
	if err != nil {
		return fmt.Errorf("marshal outcome: %w", err)
	}
	path := filepath.Join(dir, result.Scenario+".golden")

	if update {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create golden directory: %w", err)
		}
		if err := os.WriteFile(path, data, 0644); err != nil {
			return fmt.Errorf("failed to write golden file: %w", err)
		}
		return nil
	}

	want, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read golden file: %w", err)
	}
	if !bytes.Equal(want, data) {
		return fmt.Errorf("outcome does not match %s (run with --update to regenerate)", path)
	}
	return nil
}

// saveResult stores the final state and a full validation run of it.
func saveResult(cmd *cobra.Command, db *store.Store, result *harness.Result, sr *ScenarioReport) error {
	ctx := cmd.Context()
	rec, _, err := db.SaveSnapshot(ctx, result.Scenario, result.Multiverse.Snapshot())
	if err != nil {
		return err
	}
	run, err := db.WriteValidationRun(ctx, store.ValidationRun{
		SnapshotDigest: rec.Digest,
		Mode:           store.ModeEach,
		Violations:     result.Violations,
	})
	if err != nil {
		return err
	}
	sr.Snapshot = rec.Digest
	sr.RunID = run.ID
	return nil
}
