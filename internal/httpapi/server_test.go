package httpapi

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"decknotes/internal/domain"
	"decknotes/internal/service"
	"decknotes/internal/storage"
)

func newTestServer(t *testing.T) (*Server, *storage.PageStore) {
	t.Helper()
	store := storage.NewPageStore(filepath.Join(t.TempDir(), "notebook"), nil)
	svc := service.NewPageService(store, nil, nil)
	return New("127.0.0.1:0", svc, nil), store
}

func TestGetReadsPage(t *testing.T) {
	srv, store := newTestServer(t)
	res := store.WritePage(42, 1, " hello ")

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/?appid=42&page=1", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var got domain.Page
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	want := domain.Page{Page: 1, Timestamp: res.Timestamp, Empty: false, Data: "hello"}
	if got != want {
		t.Errorf("expected %+v, got %+v", want, got)
	}
	if rec.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Error("expected permissive CORS header")
	}
	if rec.Header().Get(requestIDHeader) == "" {
		t.Error("expected request id header")
	}
}

func TestGetMissingPageReturnsDefault(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/?appid=1&page=9", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := rec.Body.String()
	for _, field := range []string{`"page":9`, `"timestamp":0`, `"empty":true`, `"data":""`} {
		if !strings.Contains(body, field) {
			t.Errorf("expected %s in %s", field, body)
		}
	}
}

func TestPostWritesPage(t *testing.T) {
	srv, store := newTestServer(t)

	rec := httptest.NewRecorder()
	body := `{"appid": 42, "page": 2, "data": "[{\"paths\":[]}]"}`
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body)))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var got domain.WriteResult
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if got.Timestamp <= 0 {
		t.Errorf("expected positive timestamp, got %d", got.Timestamp)
	}
	if data := store.ReadPage(42, 2).Data; data != `[{"paths":[]}]` {
		t.Errorf("unexpected stored data %q", data)
	}
}

func TestPostTrailingNewlineIsAllowed(t *testing.T) {
	srv, store := newTestServer(t)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader("{\"appid\":1,\"page\":1,\"data\":\"x\"}\n")))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if data := store.ReadPage(1, 1).Data; data != "x" {
		t.Errorf("unexpected stored data %q", data)
	}
}

func TestBadRequestDoesNotWrite(t *testing.T) {
	srv, store := newTestServer(t)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"appid":1,"page":4,"data":"x"} garbage`)))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if got := store.ReadPage(1, 4); got != domain.MissingPage(4) {
		t.Errorf("page should not be written, got %+v", got)
	}
}

func TestPostEmptyDataIsAllowed(t *testing.T) {
	srv, store := newTestServer(t)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"appid":1,"page":0,"data":""}`)))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !store.ReadPage(1, 0).Empty {
		t.Error("expected empty page")
	}
}

func TestBadRequests(t *testing.T) {
	srv, _ := newTestServer(t)
	tests := []struct {
		name   string
		method string
		target string
		body   string
	}{
		{"missing appid", http.MethodGet, "/?page=1", ""},
		{"non-numeric page", http.MethodGet, "/?appid=1&page=x", ""},
		{"invalid json", http.MethodPost, "/", "{not json"},
		{"missing data", http.MethodPost, "/", `{"appid":1,"page":1}`},
		{"wrong type", http.MethodPost, "/", `{"appid":"a","page":1,"data":""}`},
		{"trailing garbage", http.MethodPost, "/", `{"appid":1,"page":1,"data":"x"} garbage`},
		{"two objects", http.MethodPost, "/", `{"appid":1,"page":1,"data":"x"}{}`},
		{"unknown path", http.MethodGet, "/pages?appid=1&page=1", ""},
		{"unsupported method", http.MethodDelete, "/?appid=1&page=1", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			srv.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.target, strings.NewReader(tt.body)))
			if rec.Code != http.StatusBadRequest {
				t.Errorf("expected 400, got %d", rec.Code)
			}
			if rec.Header().Get("Access-Control-Allow-Origin") != "*" {
				t.Error("expected CORS header on error responses")
			}
		})
	}
}

func TestPreflight(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, "/", nil))
	if rec.Code != http.StatusNoContent {
		t.Errorf("expected 204, got %d", rec.Code)
	}
	if got := rec.Header().Get("Access-Control-Allow-Methods"); !strings.Contains(got, "POST") {
		t.Errorf("expected POST in allowed methods, got %q", got)
	}
}

func TestServeStopsOnCancel(t *testing.T) {
	srv, _ := newTestServer(t)
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, ln) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/?appid=1&page=1")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected 200, got %d", resp.StatusCode)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("expected clean shutdown, got %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}
