// Package httpapi serves page reads and writes over a local HTTP listener so
// front ends without a direct binding can reach the page store.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/wailsapp/wails/v2/pkg/logger"

	"decknotes/internal/domain"
	"decknotes/internal/logging"
)

const (
	maxBodyBytes    = 16 << 20
	shutdownTimeout = 5 * time.Second
	requestIDHeader = "X-Request-Id"
)

// Pages is the subset of the page service the transport needs.
type Pages interface {
	ReadPage(gameID, page int) domain.Page
	WritePage(ctx context.Context, gameID, page int, data string) domain.WriteResult
}

// Server is the local HTTP front for the page store.
type Server struct {
	pages Pages
	log   logger.Logger
	srv   *http.Server
}

// New creates a Server listening on addr once Serve is called.
func New(addr string, pages Pages, log logger.Logger) *Server {
	if log == nil {
		log = logging.Discard()
	}
	s := &Server{pages: pages, log: log}
	s.srv = &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Addr returns the configured listen address.
func (s *Server) Addr() string {
	return s.srv.Addr
}

// Serve accepts connections on ln until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	errCh := make(chan error, 1)
	go func() {
		logging.Infof(s.log, "[http] listening on %s", ln.Addr())
		errCh <- s.srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := s.srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		logging.Infof(s.log, "[http] stopped")
		return nil
	}
}

// ListenAndServe listens on the configured address and calls Serve.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.srv.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.srv.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// ── Handler ────────────────────────────────────────────────

// writeRequest is the POST body. Pointers tell missing fields from zeros.
type writeRequest struct {
	AppID *int    `json:"appid"`
	Page  *int    `json:"page"`
	Data  *string `json:"data"`
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	reqID := uuid.New().String()
	w.Header().Set(requestIDHeader, reqID)
	setCORSHeaders(w)

	if r.URL.Path != "/" {
		s.badRequest(w, reqID, "unknown path %s", r.URL.Path)
		return
	}

	switch r.Method {
	case http.MethodOptions:
		w.WriteHeader(http.StatusNoContent)
	case http.MethodGet:
		s.handleRead(w, r, reqID)
	case http.MethodPost:
		s.handleWrite(w, r, reqID)
	default:
		s.badRequest(w, reqID, "unsupported method %s", r.Method)
	}
}

func (s *Server) handleRead(w http.ResponseWriter, r *http.Request, reqID string) {
	q := r.URL.Query()
	appID, err := strconv.Atoi(q.Get("appid"))
	if err != nil {
		s.badRequest(w, reqID, "invalid appid %q", q.Get("appid"))
		return
	}
	page, err := strconv.Atoi(q.Get("page"))
	if err != nil {
		s.badRequest(w, reqID, "invalid page %q", q.Get("page"))
		return
	}

	logging.Debugf(s.log, "[http] %s read game=%d page=%d", reqID, appID, page)
	s.writeJSON(w, reqID, s.pages.ReadPage(appID, page))
}

func (s *Server) handleWrite(w http.ResponseWriter, r *http.Request, reqID string) {
	var req writeRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&req); err != nil {
		s.badRequest(w, reqID, "decode body: %v", err)
		return
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		s.badRequest(w, reqID, "unexpected data after request body")
		return
	}
	if req.AppID == nil || req.Page == nil || req.Data == nil {
		s.badRequest(w, reqID, "appid, page and data are required")
		return
	}

	logging.Debugf(s.log, "[http] %s write game=%d page=%d bytes=%d", reqID, *req.AppID, *req.Page, len(*req.Data))
	s.writeJSON(w, reqID, s.pages.WritePage(r.Context(), *req.AppID, *req.Page, *req.Data))
}

func setCORSHeaders(w http.ResponseWriter) {
	h := w.Header()
	h.Set("Access-Control-Allow-Origin", "*")
	h.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
	h.Set("Access-Control-Allow-Headers", "Content-Type")
}

func (s *Server) writeJSON(w http.ResponseWriter, reqID string, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Warningf(s.log, "[http] %s encode response: %v", reqID, err)
	}
}

func (s *Server) badRequest(w http.ResponseWriter, reqID, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	logging.Warningf(s.log, "[http] %s bad request: %s", reqID, msg)
	http.Error(w, "bad request", http.StatusBadRequest)
}
