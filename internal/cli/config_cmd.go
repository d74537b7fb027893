package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"decknotes/internal/config"
)

func newConfigCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the decknotes config file",
	}

	var root string
	var force bool
	initCmd := &cobra.Command{
		Use:         "init",
		Short:       "Write a default config file",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{skipSetup: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			if config.Exists(e.cfgPath) && !force {
				return fmt.Errorf("config already exists at %s (use --force to overwrite)", e.cfgPath)
			}
			cfg := config.DefaultConfig()
			if root != "" {
				cfg.RootDir = root
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			if err := cfg.Save(e.cfgPath); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", e.cfgPath)
			return nil
		},
	}
	initCmd.Flags().StringVar(&root, "root", "", "page root directory")
	initCmd.Flags().BoolVar(&force, "force", false, "overwrite an existing config")

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "config:      %s\n", e.cfgPath)
			fmt.Fprintf(out, "root_dir:    %s\n", e.cfg.RootDir)
			fmt.Fprintf(out, "legacy_dir:  %s\n", e.cfg.LegacyDir)
			fmt.Fprintf(out, "settings_db: %s\n", e.cfg.SettingsDB)
			fmt.Fprintf(out, "http.addr:   %s\n", e.cfg.HTTP.Addr)
			return nil
		},
	}

	cmd.AddCommand(initCmd, showCmd)
	return cmd
}
