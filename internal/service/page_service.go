package service

import (
	"context"

	"github.com/wailsapp/wails/v2/pkg/logger"

	"decknotes/internal/domain"
	"decknotes/internal/logging"
)

// ─────────────────────────────────────────────────────────────
// Page Service: per-game page storage plus change events
// ─────────────────────────────────────────────────────────────

// PageService delegates to a domain.PageStore and tells the front end about
// successful changes. Like the store, it never returns errors.
type PageService struct {
	store   domain.PageStore
	emitter EventEmitter
	log     logger.Logger
}

// NewPageService creates a PageService. A nil emitter drops events.
func NewPageService(store domain.PageStore, emitter EventEmitter, log logger.Logger) *PageService {
	if emitter == nil {
		emitter = NoopEmitter{}
	}
	if log == nil {
		log = logging.Discard()
	}
	return &PageService{store: store, emitter: emitter, log: log}
}

// ── Pages ──────────────────────────────────────────────────

func (s *PageService) ReadPage(gameID, page int) domain.Page {
	return s.store.ReadPage(gameID, page)
}

func (s *PageService) WritePage(ctx context.Context, gameID, page int, data string) domain.WriteResult {
	res := s.store.WritePage(gameID, page, data)
	if res.Timestamp == 0 {
		logging.Warningf(s.log, "[pages] write failed game=%d page=%d", gameID, page)
		return res
	}
	s.emitter.Emit(ctx, EventPagesChanged, PageEvent{GameID: gameID, Page: &page})
	return res
}

func (s *PageService) DeletePage(ctx context.Context, gameID, page int) bool {
	deleted := s.store.DeletePage(gameID, page)
	if deleted {
		s.emitter.Emit(ctx, EventPagesChanged, PageEvent{GameID: gameID, Page: &page})
	}
	return deleted
}

func (s *PageService) ListPages(gameID int) []domain.PageSummary {
	return s.store.ListPages(gameID)
}

// ── Last selected page ─────────────────────────────────────

func (s *PageService) SaveLastSelectedPage(ctx context.Context, gameID, page int) bool {
	ok := s.store.SaveLastSelectedPage(gameID, page)
	if !ok {
		logging.Warningf(s.log, "[pages] save last page failed game=%d page=%d", gameID, page)
		return false
	}
	s.emitter.Emit(ctx, EventPageSelected, PageEvent{GameID: gameID, Page: &page})
	return true
}

func (s *PageService) LoadLastSelectedPage(gameID int) int {
	return s.store.LoadLastSelectedPage(gameID)
}
