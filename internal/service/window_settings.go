package service

import (
	"fmt"
	"strconv"

	"decknotes/internal/storage"
)

// ─────────────────────────────────────────────────────────────
// Window Size Persistence
// ─────────────────────────────────────────────────────────────
//
// Saves and restores the main Wails window size between sessions.
// Stored in the settings database as two rows of app_settings.

// WindowSize holds the saved window dimensions.
type WindowSize struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// WindowSettingsService persists window size between sessions.
type WindowSettingsService struct {
	db *storage.DB
}

// NewWindowSettingsService creates a WindowSettingsService.
func NewWindowSettingsService(db *storage.DB) *WindowSettingsService {
	return &WindowSettingsService{db: db}
}

const (
	settingWindowWidth  = "window_width"
	settingWindowHeight = "window_height"
	defaultWindowWidth  = 1280
	defaultWindowHeight = 800
	minWindowWidth      = 640
	minWindowHeight     = 400
)

// LoadWindowSize returns the saved window dimensions, or sensible defaults.
func (s *WindowSettingsService) LoadWindowSize() WindowSize {
	if s.db == nil {
		return WindowSize{Width: defaultWindowWidth, Height: defaultWindowHeight}
	}
	w := s.loadInt(settingWindowWidth, defaultWindowWidth)
	h := s.loadInt(settingWindowHeight, defaultWindowHeight)

	if w < minWindowWidth {
		w = defaultWindowWidth
	}
	if h < minWindowHeight {
		h = defaultWindowHeight
	}
	return WindowSize{Width: w, Height: h}
}

// SaveWindowSize persists the current window dimensions.
func (s *WindowSettingsService) SaveWindowSize(width, height int) error {
	if s.db == nil {
		return fmt.Errorf("window settings: no db")
	}
	if err := s.db.SetSetting(settingWindowWidth, strconv.Itoa(width)); err != nil {
		return err
	}
	return s.db.SetSetting(settingWindowHeight, strconv.Itoa(height))
}

func (s *WindowSettingsService) loadInt(key string, def int) int {
	raw, err := s.db.GetSetting(key)
	if err != nil {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return v
}
