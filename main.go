package main

import (
	"embed"
	"fmt"
	"os"

	"github.com/wailsapp/wails/v2"
	"github.com/wailsapp/wails/v2/pkg/logger"
	"github.com/wailsapp/wails/v2/pkg/menu"
	"github.com/wailsapp/wails/v2/pkg/options"
	"github.com/wailsapp/wails/v2/pkg/options/assetserver"
	"github.com/wailsapp/wails/v2/pkg/options/mac"

	notesApp "decknotes/internal/app"
	"decknotes/internal/cli"
	"decknotes/internal/config"
)

//go:embed all:frontend/dist
var assets embed.FS

var version = "dev"

func main() {
	if err := cli.NewRootCmd(version, runGUI).Execute(); err != nil {
		os.Exit(1)
	}
}

func runGUI(cfg *config.Config, log logger.Logger, level logger.LogLevel) error {
	app, err := notesApp.New(cfg, log)
	if err != nil {
		return fmt.Errorf("start app: %w", err)
	}
	size := app.InitialWindowSize()

	// macOS needs an Edit menu for Cmd+C/V/X/A to reach the WebView
	appMenu := menu.NewMenu()
	appMenu.Append(menu.EditMenu())

	return wails.Run(&options.App{
		Title:     "Deck Notes",
		Width:     size.Width,
		Height:    size.Height,
		MinWidth:  640,
		MinHeight: 400,
		AssetServer: &assetserver.Options{
			Assets: assets,
		},
		BackgroundColour: &options.RGBA{R: 15, G: 15, B: 20, A: 1},
		Menu:             appMenu,
		Logger:           log,
		LogLevel:         level,
		OnStartup:        app.Startup,
		OnShutdown:       app.Shutdown,
		Bind: []interface{}{
			app,
		},
		Mac: &mac.Options{
			TitleBar: &mac.TitleBar{
				TitlebarAppearsTransparent: true,
				HideTitle:                  true,
				FullSizeContent:            true,
			},
			About: &mac.AboutInfo{
				Title:   "Deck Notes",
				Message: "Per-game handwritten notes",
			},
		},
	})
}
