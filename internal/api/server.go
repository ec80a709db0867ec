// Package api provides the HTTP server and handlers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/rs/cors"

	"github.com/marbeau17/cms-app/internal/charset"
	"github.com/marbeau17/cms-app/internal/config"
	"github.com/marbeau17/cms-app/internal/ftp"
	"github.com/marbeau17/cms-app/internal/logging"
	"github.com/marbeau17/cms-app/internal/metrics"
)

// serverVersion is reported by the health endpoint.
const serverVersion = "1.2.0"

// FileBridge is the transfer surface the handlers depend on. The ftp
// package provides the production implementation; tests stub it.
type FileBridge interface {
	List(ctx context.Context, dir string) ([]ftp.DirectoryEntry, error)
	Read(ctx context.Context, path string) (*ftp.ReadResult, error)
	Write(ctx context.Context, path, content, encoding string) error
	UploadBinary(ctx context.Context, dir, filename string, data []byte) (string, error)
}

// ErrorResponse is the JSON error envelope all handlers use.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  int    `json:"code"`
}

// Server is the HTTP server.
type Server struct {
	bridge        FileBridge
	images        *ImageClient
	maxUploadSize int64
	config        *config.Config
}

// NewServer creates a new server.
func NewServer(bridge FileBridge, images *ImageClient, cfg *config.Config) *Server {
	return &Server{
		bridge:        bridge,
		images:        images,
		maxUploadSize: cfg.MaxUploadSize,
		config:        cfg,
	}
}

// Handler returns the HTTP handler with CSRF, CORS, logging and
// metrics middleware applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	// Public endpoints (safe methods, no CSRF token required)
	mux.HandleFunc("GET /api/health", s.handleHealth)
	mux.HandleFunc("GET /api/csrf-token", s.handleCSRFToken)

	// Content and proxy endpoints; unsafe methods carry a CSRF token
	protected := http.NewServeMux()
	protected.HandleFunc("GET /api/ftp/list", s.handleList)
	protected.HandleFunc("GET /api/ftp/read", s.handleRead)
	protected.HandleFunc("POST /api/ftp/write", s.handleWrite)
	protected.HandleFunc("POST /api/ftp/upload-image", s.handleUploadImage)
	protected.HandleFunc("POST /api/ai/generate-image", s.handleGenerateImage)

	guarded := s.csrfMiddleware(protected)
	mux.Handle("/api/ftp/", guarded)
	mux.Handle("/api/ai/", guarded)

	// The editor frontend calls from another origin, so CORS sits
	// outside CSRF: preflights never reach the token check and
	// rejections still carry CORS headers.
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   s.config.CORSOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	}).Handler(mux)

	// Apply logging and metrics middleware
	return metrics.Middleware(logging.Middleware(corsHandler))
}

// ─── Health ─────────────────────────────────────────────────────────────────

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok", "version": serverVersion})
}

// ─── Listing ────────────────────────────────────────────────────────────────

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	dir := r.URL.Query().Get("path")
	if dir == "" {
		dir = "/"
	}

	entries, err := s.bridge.List(r.Context(), dir)
	if err != nil {
		s.bridgeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(entries)
}

// ─── Read ───────────────────────────────────────────────────────────────────

func (s *Server) handleRead(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Query().Get("path")
	if path == "" {
		s.sendError(w, http.StatusBadRequest, "path query parameter required")
		return
	}

	result, err := s.bridge.Read(r.Context(), path)
	if err != nil {
		s.bridgeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(result)
}

// ─── Write ──────────────────────────────────────────────────────────────────

// WriteRequest is the save-file request body. Content is always
// UTF-8; Encoding names the on-disk encoding to save in, utf-8 when
// empty.
type WriteRequest struct {
	Path     string `json:"path"`
	Content  string `json:"content"`
	Encoding string `json:"encoding"`
}

func (s *Server) handleWrite(w http.ResponseWriter, r *http.Request) {
	var req WriteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.sendError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Path == "" {
		s.sendError(w, http.StatusBadRequest, "path required")
		return
	}

	if err := s.bridge.Write(r.Context(), req.Path, req.Content, req.Encoding); err != nil {
		s.bridgeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// ─── Upload ─────────────────────────────────────────────────────────────────

func (s *Server) handleUploadImage(w http.ResponseWriter, r *http.Request) {
	// Check content length before reading the body
	if r.ContentLength > s.maxUploadSize {
		s.sendError(w, http.StatusRequestEntityTooLarge,
			fmt.Sprintf("file too large: max %d bytes", s.maxUploadSize))
		return
	}
	if err := r.ParseMultipartForm(s.maxUploadSize); err != nil {
		s.sendError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	dir := r.FormValue("path")
	if dir == "" {
		s.sendError(w, http.StatusBadRequest, "path field required")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		s.sendError(w, http.StatusBadRequest, "file field required")
		return
	}
	defer file.Close()

	// Limit reader to max upload size
	limitedReader := io.LimitReader(file, s.maxUploadSize+1)
	data, err := io.ReadAll(limitedReader)
	if err != nil {
		s.sendError(w, http.StatusInternalServerError, "failed to read upload")
		return
	}
	if int64(len(data)) > s.maxUploadSize {
		s.sendError(w, http.StatusRequestEntityTooLarge,
			fmt.Sprintf("file too large: max %d bytes", s.maxUploadSize))
		return
	}

	url, err := s.bridge.UploadBinary(r.Context(), dir, header.Filename, data)
	if err != nil {
		s.bridgeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"url": url})
}

// ─── Errors ─────────────────────────────────────────────────────────────────

// bridgeError maps bridge failures to HTTP statuses: bad paths and
// unencodable content are client errors, transport faults surface as
// bad gateway.
func (s *Server) bridgeError(w http.ResponseWriter, err error) {
	var encErr *charset.EncodeError
	var xferErr *ftp.TransferError
	switch {
	case errors.Is(err, ftp.ErrInvalidPath):
		s.sendError(w, http.StatusBadRequest, err.Error())
	case errors.As(err, &encErr):
		s.sendError(w, http.StatusBadRequest, err.Error())
	case errors.As(err, &xferErr):
		s.sendError(w, http.StatusBadGateway, err.Error())
	default:
		s.sendError(w, http.StatusInternalServerError, err.Error())
	}
}

func (s *Server) sendError(w http.ResponseWriter, code int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(ErrorResponse{
		Error: message,
		Code:  code,
	})
}
