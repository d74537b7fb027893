package app

import (
	"context"
	"fmt"

	"github.com/wailsapp/wails/v2/pkg/logger"
	wailsRuntime "github.com/wailsapp/wails/v2/pkg/runtime"

	"decknotes/internal/config"
	"decknotes/internal/domain"
	"decknotes/internal/httpapi"
	"decknotes/internal/logging"
	"decknotes/internal/service"
	"decknotes/internal/storage"
)

// App is the main Wails application struct.
// All exported methods are available as Wails bindings.
type App struct {
	ctx context.Context
	cfg *config.Config
	log logger.Logger

	db      *storage.DB
	pages   *service.PageService
	window  *service.WindowSettingsService
	watcher *pageWatcher
	stopAPI context.CancelFunc
}

// New creates a new App. The settings database is opened here so the window
// size is known before the window is created.
func New(cfg *config.Config, log logger.Logger) (*App, error) {
	if log == nil {
		log = logging.Discard()
	}
	db, err := storage.New(cfg.SettingsDB)
	if err != nil {
		return nil, fmt.Errorf("open settings: %w", err)
	}

	a := &App{cfg: cfg, log: log, db: db}
	a.pages = service.NewPageService(storage.NewPageStore(cfg.RootDir, log), a, log)
	a.window = service.NewWindowSettingsService(db)
	return a, nil
}

// Startup is called when the app starts.
func (a *App) Startup(ctx context.Context) {
	a.ctx = ctx
	wailsRuntime.LogInfof(ctx, "[startup] page root: %s", a.cfg.RootDir)

	if a.cfg.Watch.Enabled {
		w := newPageWatcher(a.cfg.RootDir, a.cfg.Watch.Debounce(), a, a.log)
		if err := w.Start(ctx); err != nil {
			wailsRuntime.LogWarningf(ctx, "[startup] page watcher disabled: %v", err)
		} else {
			a.watcher = w
		}
	}

	if a.cfg.HTTP.Enabled {
		apiCtx, cancel := context.WithCancel(ctx)
		a.stopAPI = cancel
		srv := httpapi.New(a.cfg.HTTP.Addr, a.pages, a.log)
		go func() {
			if err := srv.ListenAndServe(apiCtx); err != nil {
				wailsRuntime.LogErrorf(ctx, "[http] %v", err)
			}
		}()
	}
}

// Shutdown is called when the app is closing.
func (a *App) Shutdown(ctx context.Context) {
	if a.stopAPI != nil {
		a.stopAPI()
	}
	if a.watcher != nil {
		a.watcher.Stop()
	}
	width, height := wailsRuntime.WindowGetSize(ctx)
	if err := a.window.SaveWindowSize(width, height); err != nil {
		wailsRuntime.LogErrorf(ctx, "[shutdown] save window size: %v", err)
	}
	if a.db != nil {
		a.db.Close()
	}
}

// Emit implements service.EventEmitter on top of the Wails event bus.
// The Wails context from Startup is always used, since callers such as the
// HTTP transport pass request contexts the runtime cannot emit on. Events
// raised before Startup have no frontend to go to and are dropped.
func (a *App) Emit(_ context.Context, event string, data any) {
	if a.ctx == nil {
		return
	}
	wailsRuntime.EventsEmit(a.ctx, event, data)
}

// InitialWindowSize returns the window size saved by the last session.
func (a *App) InitialWindowSize() service.WindowSize {
	return a.window.LoadWindowSize()
}

// ============================================================
// Pages
// ============================================================

// ReadPage returns one page of a game's notes.
func (a *App) ReadPage(gameID, page int) domain.Page {
	return a.pages.ReadPage(gameID, page)
}

// WritePage replaces a page's data and returns its new timestamp (0 on failure).
func (a *App) WritePage(gameID, page int, data string) domain.WriteResult {
	return a.pages.WritePage(a.ctx, gameID, page, data)
}

// DeletePage removes a page; false means it did not exist.
func (a *App) DeletePage(gameID, page int) bool {
	return a.pages.DeletePage(a.ctx, gameID, page)
}

// ListPages lists the stored pages of a game.
func (a *App) ListPages(gameID int) []domain.PageSummary {
	return a.pages.ListPages(gameID)
}

// SaveLastSelectedPage remembers the page the user is looking at.
func (a *App) SaveLastSelectedPage(gameID, page int) bool {
	return a.pages.SaveLastSelectedPage(a.ctx, gameID, page)
}

// LoadLastSelectedPage returns the page to reopen for a game (0 if none).
func (a *App) LoadLastSelectedPage(gameID int) int {
	return a.pages.LoadLastSelectedPage(gameID)
}

// GetWindowSize returns the persisted window size.
func (a *App) GetWindowSize() service.WindowSize {
	return a.window.LoadWindowSize()
}
