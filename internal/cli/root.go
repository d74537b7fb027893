package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/wailsapp/wails/v2/pkg/logger"

	"decknotes/internal/config"
	"decknotes/internal/logging"
	"decknotes/internal/migrate"
)

// GUIRunner starts the desktop window. It lives in package main because the
// frontend assets are embedded there.
type GUIRunner func(cfg *config.Config, log logger.Logger, level logger.LogLevel) error

// env is what every command gets after the persistent pre-run.
type env struct {
	cfgPath string
	cfg     *config.Config
	log     logger.Logger
	level   logger.LogLevel
}

// NewRootCmd builds the decknotes command tree.
func NewRootCmd(version string, gui GUIRunner) *cobra.Command {
	e := &env{}

	rootCmd := &cobra.Command{
		Use:     "decknotes",
		Short:   "Per-game notes and drawings, stored as plain files",
		Version: version,
		Long: `decknotes keeps handwritten notes for each game on disk:

  <root>/<gameId>/<page>.json   page data
  <root>/<gameId>/page          last viewed page

Run without a subcommand to open the desktop window, or use serve-http /
serve-mcp to expose the same pages to other front ends.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return e.load(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if gui == nil {
				return fmt.Errorf("desktop window not available in this build")
			}
			return gui(e.cfg, e.log, e.level)
		},
	}
	rootCmd.PersistentFlags().StringVar(&e.cfgPath, "config", "", "config file (default is "+config.DefaultPath()+")")

	rootCmd.AddCommand(
		newServeHTTPCmd(e),
		newServeMCPCmd(e, version),
		newMigrateCmd(e),
		newConfigCmd(e),
	)
	return rootCmd
}

// load reads the config, builds the logger and runs the legacy migration.
// Commands annotated with skipSetup only get the config path resolved.
func (e *env) load(cmd *cobra.Command) error {
	if e.cfgPath == "" {
		e.cfgPath = config.DefaultPath()
	}
	if cmd.Annotations[skipSetup] == "true" {
		return nil
	}

	cfg, err := config.Load(e.cfgPath)
	if err != nil {
		return err
	}
	e.cfg = cfg
	e.log, e.level = logging.New(cfg.LogLevel, cfg.LogFile)

	if cfg.LegacyDir != "" && cmd.Name() != "migrate" {
		if _, err := migrate.Run(cfg.LegacyDir, cfg.RootDir, e.log); err != nil {
			// Pages stay where they are; the store works on the new root anyway.
			logging.Errorf(e.log, "[migrate] %v", err)
		}
	}
	return nil
}

const skipSetup = "decknotes/skip-setup"
