package storage

import (
	"os"
	"path/filepath"
	"sort"
	"sync"
	"testing"

	"decknotes/internal/domain"
)

func newTestStore(t *testing.T) *PageStore {
	t.Helper()
	return NewPageStore(filepath.Join(t.TempDir(), "store"), nil)
}

func pageNumbers(pages []domain.PageSummary) []int {
	nums := make([]int, len(pages))
	for i, p := range pages {
		nums[i] = p.Page
	}
	sort.Ints(nums)
	return nums
}

// ── ReadPage / WritePage ───────────────────────────────────

func TestReadPage_NeverWritten(t *testing.T) {
	s := newTestStore(t)
	got := s.ReadPage(42, 3)
	want := domain.Page{Page: 3, Timestamp: 0, Empty: true, Data: ""}
	if got != want {
		t.Errorf("expected %+v, got %+v", want, got)
	}
	if _, err := os.Stat(s.Root()); !os.IsNotExist(err) {
		t.Error("reading must not create the root directory")
	}
}

func TestWriteReadRoundTrip(t *testing.T) {
	s := newTestStore(t)

	res := s.WritePage(42, 1, " hello ")
	if res.Timestamp <= 0 {
		t.Fatalf("expected positive timestamp, got %d", res.Timestamp)
	}

	got := s.ReadPage(42, 1)
	want := domain.Page{Page: 1, Timestamp: res.Timestamp, Empty: false, Data: "hello"}
	if got != want {
		t.Errorf("expected %+v, got %+v", want, got)
	}

	// Stored verbatim, trimmed only on read.
	raw, err := os.ReadFile(filepath.Join(s.Root(), "42", "1.json"))
	if err != nil {
		t.Fatalf("page file missing: %v", err)
	}
	if string(raw) != " hello " {
		t.Errorf("expected verbatim contents, got %q", raw)
	}

	pages := s.ListPages(42)
	if len(pages) != 1 {
		t.Fatalf("expected 1 listed page, got %d", len(pages))
	}
	if pages[0] != (domain.PageSummary{Page: 1, Timestamp: res.Timestamp, Empty: false}) {
		t.Errorf("unexpected listing entry %+v", pages[0])
	}
}

func TestWritePage_Overwrite(t *testing.T) {
	s := newTestStore(t)

	first := s.WritePage(1, 0, "[1,2,3]")
	second := s.WritePage(1, 0, "[1,2,3]")
	if second.Timestamp < first.Timestamp {
		t.Errorf("timestamp went backwards: %d then %d", first.Timestamp, second.Timestamp)
	}
	if got := s.ReadPage(1, 0).Data; got != "[1,2,3]" {
		t.Errorf("expected identical data, got %q", got)
	}

	s.WritePage(1, 0, "x")
	if got := s.ReadPage(1, 0).Data; got != "x" {
		t.Errorf("expected shorter content to fully replace, got %q", got)
	}
}

func TestWritePage_WhitespaceOnlyReadsEmpty(t *testing.T) {
	s := newTestStore(t)
	res := s.WritePage(5, 2, " \n\t ")
	if res.Timestamp <= 0 {
		t.Fatalf("expected write to succeed")
	}
	got := s.ReadPage(5, 2)
	if !got.Empty || got.Data != "" {
		t.Errorf("expected empty trimmed page, got %+v", got)
	}
	if got.Timestamp != res.Timestamp {
		t.Errorf("expected timestamp %d, got %d", res.Timestamp, got.Timestamp)
	}
}

func TestWritePage_FailureReturnsZero(t *testing.T) {
	dir := t.TempDir()
	root := filepath.Join(dir, "root")
	// A file where the root directory should be makes MkdirAll fail.
	if err := os.WriteFile(root, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	s := NewPageStore(root, nil)

	if res := s.WritePage(1, 1, "data"); res.Timestamp != 0 {
		t.Errorf("expected zero timestamp on failure, got %d", res.Timestamp)
	}
	if got := s.ReadPage(1, 1); got != domain.MissingPage(1) {
		t.Errorf("expected default record, got %+v", got)
	}
}

func TestWritePage_DirectoryAtPagePath(t *testing.T) {
	s := newTestStore(t)
	path := s.PagePath(8, 3)
	if err := os.MkdirAll(path, 0755); err != nil {
		t.Fatal(err)
	}

	if res := s.WritePage(8, 3, "x"); res.Timestamp != 0 {
		t.Errorf("expected zero timestamp, got %d", res.Timestamp)
	}
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		t.Fatalf("directory at page path should be left in place: %v", err)
	}
	entries, _ := os.ReadDir(s.GameDir(8))
	if len(entries) != 1 {
		t.Errorf("expected no temp files left behind, got %d entries", len(entries))
	}
}

func TestReadPage_UnreadableReturnsDefault(t *testing.T) {
	s := newTestStore(t)
	// Stat succeeds on a directory but reading it fails.
	if err := os.MkdirAll(s.PagePath(5, 2), 0755); err != nil {
		t.Fatal(err)
	}
	if got := s.ReadPage(5, 2); got != domain.MissingPage(2) {
		t.Errorf("expected default record, got %+v", got)
	}
}

func TestWritePage_LeavesNoTempFiles(t *testing.T) {
	s := newTestStore(t)
	s.WritePage(9, 1, "a")
	s.WritePage(9, 1, "b")

	entries, err := os.ReadDir(s.GameDir(9))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Name() != "1.json" {
		names := []string{}
		for _, e := range entries {
			names = append(names, e.Name())
		}
		t.Errorf("expected only 1.json, got %v", names)
	}
}

// ── DeletePage ─────────────────────────────────────────────

func TestDeletePage(t *testing.T) {
	s := newTestStore(t)

	if s.DeletePage(42, 1) {
		t.Error("expected false for a page that was never written")
	}

	s.WritePage(42, 1, "data")
	if !s.DeletePage(42, 1) {
		t.Error("expected true after deleting a written page")
	}
	if got := s.ReadPage(42, 1); got != domain.MissingPage(1) {
		t.Errorf("expected default record after delete, got %+v", got)
	}
	if s.DeletePage(42, 1) {
		t.Error("expected false on second delete")
	}
}

func TestDeletePage_OtherFailureReportsSuccess(t *testing.T) {
	s := newTestStore(t)
	// A non-empty directory at the page path cannot be removed.
	blocker := filepath.Join(s.PagePath(3, 4), "inner")
	if err := os.MkdirAll(blocker, 0755); err != nil {
		t.Fatal(err)
	}

	if !s.DeletePage(3, 4) {
		t.Error("expected failures other than not-found to report true")
	}
	if _, err := os.Stat(blocker); err != nil {
		t.Errorf("blocker should still exist: %v", err)
	}
}

func TestDeletePage_KeepsEmptyDirectory(t *testing.T) {
	s := newTestStore(t)
	path := s.PagePath(3, 6)
	if err := os.MkdirAll(path, 0755); err != nil {
		t.Fatal(err)
	}

	if !s.DeletePage(3, 6) {
		t.Error("expected a directory at the page path to report true")
	}
	if info, err := os.Stat(path); err != nil || !info.IsDir() {
		t.Errorf("directory should not be removed: %v", err)
	}
}

// ── Last selected page ─────────────────────────────────────

func TestLastSelectedPage(t *testing.T) {
	s := newTestStore(t)

	if got := s.LoadLastSelectedPage(42); got != 0 {
		t.Errorf("expected 0 before any save, got %d", got)
	}
	if !s.SaveLastSelectedPage(42, 3) {
		t.Fatal("expected save to succeed")
	}
	if got := s.LoadLastSelectedPage(42); got != 3 {
		t.Errorf("expected 3, got %d", got)
	}

	raw, _ := os.ReadFile(filepath.Join(s.Root(), "42", "page"))
	if string(raw) != "3" {
		t.Errorf("expected pointer file to hold %q, got %q", "3", raw)
	}

	s.SaveLastSelectedPage(42, 11)
	if got := s.LoadLastSelectedPage(42); got != 11 {
		t.Errorf("expected 11 after overwrite, got %d", got)
	}
	if got := s.LoadLastSelectedPage(43); got != 0 {
		t.Errorf("expected other game unaffected, got %d", got)
	}
}

func TestLoadLastSelectedPage_Unparseable(t *testing.T) {
	s := newTestStore(t)
	tests := []struct {
		content string
		want    int
	}{
		{"7", 7},
		{" 5\n", 5},
		{"", 0},
		{"abc", 0},
		{"1.5", 0},
	}
	for _, tt := range tests {
		path := filepath.Join(s.GameDir(1), "page")
		os.MkdirAll(filepath.Dir(path), 0755)
		os.WriteFile(path, []byte(tt.content), 0644)
		if got := s.LoadLastSelectedPage(1); got != tt.want {
			t.Errorf("content %q: expected %d, got %d", tt.content, tt.want, got)
		}
	}
}

func TestSaveLastSelectedPage_Failure(t *testing.T) {
	dir := t.TempDir()
	root := filepath.Join(dir, "root")
	os.WriteFile(root, []byte("x"), 0644)
	s := NewPageStore(root, nil)

	if s.SaveLastSelectedPage(1, 2) {
		t.Error("expected false when the game dir cannot be created")
	}
	if got := s.LoadLastSelectedPage(1); got != 0 {
		t.Errorf("expected 0, got %d", got)
	}
}

// ── ListPages ──────────────────────────────────────────────

func TestListPages(t *testing.T) {
	s := newTestStore(t)
	for _, p := range []int{0, 2, 5} {
		s.WritePage(42, p, "[]")
	}
	s.SaveLastSelectedPage(42, 2)

	pages := s.ListPages(42)
	nums := pageNumbers(pages)
	if len(nums) != 3 || nums[0] != 0 || nums[1] != 2 || nums[2] != 5 {
		t.Fatalf("expected pages [0 2 5], got %v", nums)
	}
	for _, p := range pages {
		if p.Timestamp <= 0 {
			t.Errorf("page %d: expected positive timestamp", p.Page)
		}
		if p.Empty {
			t.Errorf("page %d: expected non-empty", p.Page)
		}
	}

	s.WritePage(42, 7, "")
	for _, p := range s.ListPages(42) {
		if p.Page == 7 && !p.Empty {
			t.Error("expected page 7 to be listed as empty")
		}
	}
}

func TestListPages_EmptyUsesByteSize(t *testing.T) {
	s := newTestStore(t)
	s.WritePage(1, 1, "   ")

	pages := s.ListPages(1)
	if len(pages) != 1 {
		t.Fatalf("expected 1 page, got %d", len(pages))
	}
	if pages[0].Empty {
		t.Error("whitespace-only page must be listed as non-empty")
	}
	if !s.ReadPage(1, 1).Empty {
		t.Error("whitespace-only page must read as empty")
	}
}

func TestListPages_NoDirectory(t *testing.T) {
	s := newTestStore(t)
	pages := s.ListPages(99)
	if pages == nil {
		t.Fatal("expected empty slice, got nil")
	}
	if len(pages) != 0 {
		t.Errorf("expected no pages, got %v", pages)
	}
}

func TestListPages_SkipsNonPageEntries(t *testing.T) {
	s := newTestStore(t)
	s.WritePage(8, 1, "x")
	dir := s.GameDir(8)
	for _, name := range []string{"abc.json", "3.txt", "4", ".json", "-1.json", "1.json.bak", "page"} {
		os.WriteFile(filepath.Join(dir, name), []byte("x"), 0644)
	}
	os.Mkdir(filepath.Join(dir, "9.json"), 0755)

	nums := pageNumbers(s.ListPages(8))
	if len(nums) != 1 || nums[0] != 1 {
		t.Errorf("expected only page 1, got %v", nums)
	}
}

func TestListPages_FollowsSymlinks(t *testing.T) {
	s := newTestStore(t)
	s.WritePage(8, 1, "x")
	target := filepath.Join(t.TempDir(), "elsewhere.json")
	os.WriteFile(target, []byte("y"), 0644)
	if err := os.Symlink(target, filepath.Join(s.GameDir(8), "2.json")); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}

	nums := pageNumbers(s.ListPages(8))
	if len(nums) != 2 || nums[1] != 2 {
		t.Errorf("expected pages [1 2], got %v", nums)
	}
}

func TestListPages_SkipsDanglingSymlink(t *testing.T) {
	s := newTestStore(t)
	s.WritePage(8, 1, "x")
	s.WritePage(8, 5, "y")
	missing := filepath.Join(t.TempDir(), "gone.json")
	if err := os.Symlink(missing, filepath.Join(s.GameDir(8), "2.json")); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}

	nums := pageNumbers(s.ListPages(8))
	if len(nums) != 2 || nums[0] != 1 || nums[1] != 5 {
		t.Errorf("expected pages [1 5], got %v", nums)
	}
}

func TestListPages_ParseFailureStopsScan(t *testing.T) {
	s := newTestStore(t)
	s.WritePage(4, 1, "a")
	s.WritePage(4, 5, "b")
	// All digits, but too large for an int: the scan stops here.
	os.WriteFile(filepath.Join(s.GameDir(4), "99999999999999999999999.json"), []byte("c"), 0644)

	// Entries are read in name order, so the pages before it survive.
	nums := pageNumbers(s.ListPages(4))
	if len(nums) != 2 || nums[0] != 1 || nums[1] != 5 {
		t.Errorf("expected pages collected before the failure [1 5], got %v", nums)
	}
}

func TestListPages_NonASCIIDigitsStopScan(t *testing.T) {
	s := newTestStore(t)
	s.WritePage(4, 1, "a")
	os.WriteFile(filepath.Join(s.GameDir(4), "٣.json"), []byte("c"), 0644)

	nums := pageNumbers(s.ListPages(4))
	if len(nums) != 1 || nums[0] != 1 {
		t.Errorf("expected [1], got %v", nums)
	}
}

func TestPageStem(t *testing.T) {
	tests := []struct {
		name string
		stem string
		ok   bool
	}{
		{"0.json", "0", true},
		{"123.json", "123", true},
		{"007.json", "007", true},
		{".json", "", false},
		{"abc.json", "", false},
		{"1a.json", "", false},
		{"1.JSON", "", false},
		{"page", "", false},
		{".1.json-123.tmp", "", false},
	}
	for _, tt := range tests {
		stem, ok := pageStem(tt.name)
		if stem != tt.stem || ok != tt.ok {
			t.Errorf("pageStem(%q) = (%q, %v), want (%q, %v)", tt.name, stem, ok, tt.stem, tt.ok)
		}
	}
}

// ── Concurrency ────────────────────────────────────────────

func TestConcurrentGames(t *testing.T) {
	s := newTestStore(t)
	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(game int) {
			defer wg.Done()
			for p := 0; p < 5; p++ {
				if s.WritePage(game, p, "stroke").Timestamp == 0 {
					t.Errorf("game %d page %d: write failed", game, p)
				}
				s.SaveLastSelectedPage(game, p)
			}
		}(g)
	}
	wg.Wait()

	for g := 0; g < 8; g++ {
		if n := len(s.ListPages(g)); n != 5 {
			t.Errorf("game %d: expected 5 pages, got %d", g, n)
		}
		if got := s.LoadLastSelectedPage(g); got != 4 {
			t.Errorf("game %d: expected last page 4, got %d", g, got)
		}
	}
}

func TestConcurrentWritesSamePage(t *testing.T) {
	s := newTestStore(t)
	var wg sync.WaitGroup
	contents := []string{"aaaa", "bbbb", "cccc", "dddd"}
	for _, c := range contents {
		wg.Add(1)
		go func(data string) {
			defer wg.Done()
			s.WritePage(1, 1, data)
		}(c)
	}
	wg.Wait()

	got := s.ReadPage(1, 1).Data
	found := false
	for _, c := range contents {
		if got == c {
			found = true
		}
	}
	if !found {
		t.Errorf("expected one complete write to win, got %q", got)
	}
}
