package app

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/wailsapp/wails/v2/pkg/logger"

	"decknotes/internal/config"
	"decknotes/internal/httpapi"
	"decknotes/internal/logging"
	mcpserver "decknotes/internal/mcp"
	"decknotes/internal/service"
	"decknotes/internal/storage"
)

// headlessPages builds the page service used when no Wails frontend is
// attached: events have nowhere to go.
func headlessPages(cfg *config.Config, log logger.Logger) *service.PageService {
	return service.NewPageService(storage.NewPageStore(cfg.RootDir, log), service.NoopEmitter{}, log)
}

// ServeMCP runs the page store as a standalone MCP server on stdin/stdout with
// no GUI until stdin closes or the process is interrupted.
func ServeMCP(cfg *config.Config, log logger.Logger, version string) error {
	mcpSrv := mcpserver.New(mcpserver.Deps{
		Pages:   headlessPages(cfg, log),
		Logger:  log,
		Version: version,
	})

	logging.Infof(log, "[MCP] Starting standalone stdio server, root %s", cfg.RootDir)
	return mcpSrv.ServeStdio()
}

// ServeHTTP runs the local HTTP transport until interrupted.
func ServeHTTP(cfg *config.Config, log logger.Logger) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	srv := httpapi.New(cfg.HTTP.Addr, headlessPages(cfg, log), log)
	if err := srv.ListenAndServe(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
