package api

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net"
	"net/http"
	"os"
	"runtime"
	"strings"
	"sync"

	"github.com/klauspost/compress/gzhttp"

	"github.com/coredeck/coredeck/internal/blob"
	"github.com/coredeck/coredeck/internal/codec"
	"github.com/coredeck/coredeck/internal/config"
	"github.com/coredeck/coredeck/internal/icon"
	"github.com/coredeck/coredeck/internal/registry"
	"github.com/coredeck/coredeck/internal/version"
)

// Server is the coredeckd HTTP API server.
type Server struct {
	cfg        *config.Config
	registry   *registry.DB
	blobs      blob.Store
	normalizer *icon.Normalizer

	// blobMu orders blob writes and registry saves against reference
	// counted blob deletes.
	blobMu sync.Mutex

	mux    *http.ServeMux
	server *http.Server
	ln     net.Listener
}

// NewServer creates a new API server.
func NewServer(cfg *config.Config, reg *registry.DB, blobs blob.Store) (*Server, error) {
	n, err := cfg.Normalizer()
	if err != nil {
		return nil, err
	}
	s := &Server{
		cfg:        cfg,
		registry:   reg,
		blobs:      blobs,
		normalizer: n,
		mux:        http.NewServeMux(),
	}
	s.registerRoutes()
	s.server = &http.Server{Handler: s.Handler()}
	return s, nil
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("GET /v1/status", s.handleStatus)
	s.mux.HandleFunc("POST /v1/normalize", s.handleNormalize)
	s.mux.HandleFunc("POST /v1/icons", s.handleCreateIcon)
	s.mux.HandleFunc("GET /v1/icons", s.handleListIcons)
	s.mux.HandleFunc("GET /v1/icons/{id}", s.handleGetIcon)
	s.mux.HandleFunc("GET /v1/icons/{id}/image", s.handleIconImage)
	s.mux.HandleFunc("DELETE /v1/icons/{id}", s.handleDeleteIcon)
}

// Handler returns the root handler, with gzip for clients that accept it.
func (s *Server) Handler() http.Handler {
	return gzhttp.GzipHandler(s.mux)
}

// Start begins listening on the unix socket.
func (s *Server) Start() error {
	// Remove stale socket
	os.Remove(s.cfg.SocketPath)

	ln, err := net.Listen("unix", s.cfg.SocketPath)
	if err != nil {
		return err
	}
	s.ln = ln

	// Make socket accessible
	os.Chmod(s.cfg.SocketPath, 0600)

	log.Printf("coredeckd API listening on %s", s.cfg.SocketPath)

	go func() {
		if err := s.server.Serve(ln); err != nil && err != http.ErrServerClosed {
			log.Printf("server error: %v", err)
		}
	}()

	return nil
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// Status response

type statusResponse struct {
	Status    string `json:"status"`
	Version   string `json:"version"`
	Platform  string `json:"platform"`
	FinalSize int    `json:"final_size"`
	Border    int    `json:"border"`
	Filter    string `json:"filter"`
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, statusResponse{
		Status:    "running",
		Version:   version.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
		FinalSize: s.cfg.FinalSize,
		Border:    s.cfg.Border,
		Filter:    s.cfg.Filter,
	})
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeErr maps a pipeline error to its HTTP status.
func writeErr(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	var maxErr *http.MaxBytesError
	switch {
	case errors.As(err, &maxErr), errors.Is(err, icon.ErrInputTooLarge):
		status = http.StatusRequestEntityTooLarge
	case errors.Is(err, codec.ErrUnsupported):
		status = http.StatusUnsupportedMediaType
	case errors.Is(err, icon.ErrInvalidInput), errors.Is(err, codec.ErrBadDataURI), errors.Is(err, errBadRequest):
		status = http.StatusBadRequest
	case errors.Is(err, registry.ErrNameTaken):
		status = http.StatusConflict
	case errors.Is(err, icon.ErrRenderingUnavailable):
		log.Printf("render: %v", err)
	default:
		log.Printf("request failed: %v", err)
	}
	writeError(w, status, err.Error())
}

// pathParam extracts a path parameter from the request.
func pathParam(r *http.Request, name string) string {
	return r.PathValue(name)
}

// isValidName checks if an icon name is safe.
func isValidName(id string) bool {
	if len(id) == 0 || len(id) > 128 {
		return false
	}
	for _, c := range id {
		if !((c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') || c == '-' || c == '_' || c == '.') {
			return false
		}
	}
	return !strings.Contains(id, "..")
}
