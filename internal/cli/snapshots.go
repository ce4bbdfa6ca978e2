package cli

import (
	"time"

	"github.com/spf13/cobra"
)

// SnapshotsOptions holds flags for the snapshots command.
type SnapshotsOptions struct {
	*RootOptions
	Database string
}

// NewSnapshotsCommand creates the snapshots command.
func NewSnapshotsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SnapshotsOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "snapshots",
		Short: "List stored snapshots",
		Long: `List every snapshot in the database in the order it was stored.

Any unique digest prefix shown here can be passed to "multiverse check".`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSnapshots(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (default: store.path from config)")

	return cmd
}

func runSnapshots(opts *SnapshotsOptions, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)
	cfg, _, err := opts.settings(cmd)
	if err != nil {
		return err
	}

	db, err := openStore(opts.Database, cfg.Store.Path, true)
	if err != nil {
		_ = formatter.Error(ErrCodeStore, err.Error(), nil)
		return WrapExitError(ExitCommandError, "opening database", err)
	}
	defer db.Close()

	records, err := db.ListSnapshots(cmd.Context())
	if err != nil {
		_ = formatter.Error(ErrCodeStore, err.Error(), nil)
		return WrapExitError(ExitCommandError, "listing snapshots", err)
	}

	if formatter.IsJSON() {
		return formatter.Success(records)
	}
	if len(records) == 0 {
		formatter.Printf("No snapshots stored\n")
		return nil
	}
	formatter.Printf("%-4s  %-12s  %-20s  %-25s  %s\n", "SEQ", "DIGEST", "CREATED", "LABEL", "T/C/M/E")
	for _, rec := range records {
		formatter.Printf("%-4d  %-12s  %-20s  %-25s  %d/%d/%d/%d\n",
			rec.Seq, shortDigest(rec.Digest), rec.CreatedAt.UTC().Format(time.DateTime), rec.Label,
			rec.Timelines, rec.Characters, rec.Memories, rec.Events)
	}
	return nil
}
