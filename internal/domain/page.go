package domain

// Page is the full view of one stored page, returned to the front end when a
// page is opened. Data is the trimmed file contents.
type Page struct {
	Page      int    `json:"page"`
	Timestamp int64  `json:"timestamp"`
	Empty     bool   `json:"empty"`
	Data      string `json:"data"`
}

// PageSummary is one entry of a game's page listing (no payload).
type PageSummary struct {
	Page      int   `json:"page"`
	Timestamp int64 `json:"timestamp"`
	Empty     bool  `json:"empty"`
}

// WriteResult carries the modification time of a freshly written page.
// A zero Timestamp means the write did not happen.
type WriteResult struct {
	Timestamp int64 `json:"timestamp"`
}

// MissingPage is the record returned for a page that has never been written.
func MissingPage(page int) Page {
	return Page{Page: page, Timestamp: 0, Empty: true, Data: ""}
}

// PageStore persists pages per game. Implementations never return errors:
// every failure degrades to the documented default value.
type PageStore interface {
	ReadPage(gameID, page int) Page
	WritePage(gameID, page int, data string) WriteResult
	DeletePage(gameID, page int) bool
	SaveLastSelectedPage(gameID, page int) bool
	LoadLastSelectedPage(gameID int) int
	ListPages(gameID int) []PageSummary
}
