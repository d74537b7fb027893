package storage

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"unicode"

	"github.com/wailsapp/wails/v2/pkg/logger"

	"decknotes/internal/domain"
	"decknotes/internal/logging"
)

// LastPageFileName is the per-game file holding the last selected page.
const LastPageFileName = "page"

const (
	pageSuffix      = ".json"
	dirPerm         = 0755
	filePerm        = 0644
	tempFilePattern = "-*.tmp"
)

// PageStore implements domain.PageStore on top of a plain directory tree:
//
//	<root>/<gameId>/<pageNumber>.json   opaque page data
//	<root>/<gameId>/page                last selected page number
//
// Nothing is cached and no locks are taken; the file system is the only
// source of truth. Every exported method swallows its failures and returns
// the documented fallback value.
type PageStore struct {
	root string
	log  logger.Logger
}

var _ domain.PageStore = (*PageStore)(nil)

// NewPageStore creates a PageStore rooted at root. The directory does not
// have to exist yet; game directories are created on first write.
func NewPageStore(root string, log logger.Logger) *PageStore {
	if log == nil {
		log = logging.Discard()
	}
	return &PageStore{root: root, log: log}
}

// Root returns the configured root directory.
func (s *PageStore) Root() string {
	return s.root
}

// GameDir returns the directory holding all files of one game.
func (s *PageStore) GameDir(gameID int) string {
	return filepath.Join(s.root, strconv.Itoa(gameID))
}

// PagePath returns the file path of a single page.
func (s *PageStore) PagePath(gameID, page int) string {
	return filepath.Join(s.GameDir(gameID), strconv.Itoa(page)+pageSuffix)
}

func (s *PageStore) lastPagePath(gameID int) string {
	return filepath.Join(s.GameDir(gameID), LastPageFileName)
}

// ── Pages ──────────────────────────────────────────────────

// ReadPage returns the page record. Missing or unreadable files yield
// domain.MissingPage.
func (s *PageStore) ReadPage(gameID, page int) domain.Page {
	p, err := s.readPage(gameID, page)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			s.degraded("read page", gameID, page, err)
		}
		return domain.MissingPage(page)
	}
	return p
}

func (s *PageStore) readPage(gameID, page int) (domain.Page, error) {
	path := s.PagePath(gameID, page)
	info, err := os.Stat(path)
	if err != nil {
		return domain.Page{}, err
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return domain.Page{}, err
	}
	data := strings.TrimSpace(string(raw))
	return domain.Page{
		Page:      page,
		Timestamp: info.ModTime().UnixMilli(),
		Empty:     len(data) == 0,
		Data:      data,
	}, nil
}

// WritePage replaces the page contents with data, verbatim. The returned
// timestamp is zero when the write failed.
func (s *PageStore) WritePage(gameID, page int, data string) domain.WriteResult {
	ts, err := s.writePage(gameID, page, data)
	if err != nil {
		s.degraded("write page", gameID, page, err)
		return domain.WriteResult{Timestamp: 0}
	}
	return domain.WriteResult{Timestamp: ts}
}

func (s *PageStore) writePage(gameID, page int, data string) (int64, error) {
	path := s.PagePath(gameID, page)
	if err := os.MkdirAll(filepath.Dir(path), dirPerm); err != nil {
		return 0, fmt.Errorf("create game dir: %w", err)
	}
	if err := writeFileAtomically(path, []byte(data)); err != nil {
		return 0, err
	}
	info, err := os.Stat(path)
	if err != nil {
		return 0, err
	}
	return info.ModTime().UnixMilli(), nil
}

// DeletePage removes the page file. It reports false only when there was no
// such file; any other failure is masked as success.
func (s *PageStore) DeletePage(gameID, page int) bool {
	path := s.PagePath(gameID, page)
	// os.Remove would rmdir an empty directory; only files are unlinked.
	if info, err := os.Lstat(path); err == nil && info.IsDir() {
		s.degraded("delete page", gameID, page, fmt.Errorf("%s is a directory", path))
		return true
	}
	err := os.Remove(path)
	if err == nil {
		return true
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false
	}
	s.degraded("delete page", gameID, page, err)
	return true
}

// ── Last selected page ─────────────────────────────────────

// SaveLastSelectedPage records page as the last one viewed for the game.
func (s *PageStore) SaveLastSelectedPage(gameID, page int) bool {
	path := s.lastPagePath(gameID)
	if err := os.MkdirAll(filepath.Dir(path), dirPerm); err != nil {
		s.degraded("save last page", gameID, page, fmt.Errorf("create game dir: %w", err))
		return false
	}
	if err := os.WriteFile(path, []byte(strconv.Itoa(page)), filePerm); err != nil {
		s.degraded("save last page", gameID, page, err)
		return false
	}
	return true
}

// LoadLastSelectedPage returns the last selected page, or 0 when none was
// saved or the pointer file cannot be read or parsed.
func (s *PageStore) LoadLastSelectedPage(gameID int) int {
	raw, err := os.ReadFile(s.lastPagePath(gameID))
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			s.degraded("load last page", gameID, -1, err)
		}
		return 0
	}
	page, err := strconv.Atoi(strings.TrimSpace(string(raw)))
	if err != nil {
		s.degraded("load last page", gameID, -1, err)
		return 0
	}
	return page
}

// ── Listing ────────────────────────────────────────────────

// ListPages enumerates the page files of a game. Unlike ReadPage, Empty here
// reflects the file size, so a whitespace-only page is listed as non-empty.
// A failure part way through the scan stops it and returns the entries
// collected so far; entries that vanish or dangle are skipped.
func (s *PageStore) ListPages(gameID int) []domain.PageSummary {
	pages, err := s.listPages(gameID)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		s.degraded("list pages", gameID, -1, err)
	}
	return pages
}

func (s *PageStore) listPages(gameID int) ([]domain.PageSummary, error) {
	pages := []domain.PageSummary{}
	dir := s.GameDir(gameID)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return pages, err
	}
	for _, e := range entries {
		stem, ok := pageStem(e.Name())
		if !ok {
			continue
		}
		// Stat follows symlinks, so a link to a regular file counts and a
		// dangling link is skipped like any other non-regular entry.
		info, err := os.Stat(filepath.Join(dir, e.Name()))
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return pages, err
		}
		if !info.Mode().IsRegular() {
			continue
		}
		page, err := strconv.Atoi(stem)
		if err != nil {
			return pages, err
		}
		pages = append(pages, domain.PageSummary{
			Page:      page,
			Timestamp: info.ModTime().UnixMilli(),
			Empty:     info.Size() == 0,
		})
	}
	return pages, nil
}

// PageNumber returns the page number encoded in a page file name.
func PageNumber(name string) (int, bool) {
	stem, ok := pageStem(name)
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(stem)
	if err != nil {
		return 0, false
	}
	return n, true
}

// pageStem strips the page suffix from name and reports whether what is left
// is made of decimal digits only.
func pageStem(name string) (string, bool) {
	stem, found := strings.CutSuffix(name, pageSuffix)
	if !found || stem == "" {
		return "", false
	}
	for _, r := range stem {
		if !unicode.IsDigit(r) {
			return "", false
		}
	}
	return stem, true
}

// ── Helpers ────────────────────────────────────────────────

// writeFileAtomically writes data next to path and renames it into place,
// so readers never observe a half-written page.
func writeFileAtomically(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+tempFilePattern)
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmpPath, filePerm); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := replaceFile(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("replace page file: %w", err)
	}
	return nil
}

// replaceFile renames src over dst, falling back to remove-then-rename on
// platforms where rename refuses to replace an existing file. A directory
// at dst is never removed.
func replaceFile(src, dst string) error {
	err := os.Rename(src, dst)
	if err == nil {
		return nil
	}
	info, statErr := os.Lstat(dst)
	if statErr != nil || info.IsDir() {
		return err
	}
	if err := os.Remove(dst); err != nil {
		return err
	}
	return os.Rename(src, dst)
}

func (s *PageStore) degraded(op string, gameID, page int, err error) {
	if page < 0 {
		logging.Debugf(s.log, "[pages] %s game=%d: %v", op, gameID, err)
		return
	}
	logging.Debugf(s.log, "[pages] %s game=%d page=%d: %v", op, gameID, page, err)
}
