package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"decknotes/internal/migrate"
)

func newMigrateCmd(e *env) *cobra.Command {
	var from string
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Move pages from a legacy directory into the page root",
		Long: `Move pages saved by an older install into root_dir.

Files already present under root_dir are never overwritten. The legacy
directory defaults to legacy_dir from the config file.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			legacy := e.cfg.LegacyDir
			if from != "" {
				legacy = from
			}
			if legacy == "" {
				return fmt.Errorf("no legacy directory: set legacy_dir or pass --from")
			}
			report, err := migrate.Run(legacy, e.cfg.RootDir, e.log)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			switch {
			case report.Renamed:
				fmt.Fprintf(out, "Moved %s to %s\n", legacy, e.cfg.RootDir)
			case len(report.Moved) == 0 && len(report.Skipped) == 0:
				fmt.Fprintln(out, "Nothing to migrate")
			default:
				fmt.Fprintf(out, "Moved %d entries, skipped %d already present\n", len(report.Moved), len(report.Skipped))
				for _, s := range report.Skipped {
					fmt.Fprintf(out, "  skipped %s\n", s)
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "legacy directory (overrides legacy_dir)")
	return cmd
}
