package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"quadvoice/internal/api"
	"quadvoice/internal/config"
	"quadvoice/internal/services"
	"quadvoice/internal/store"
)

const maxUploadBytes = 4 << 20

type apiServer struct {
	bind   string
	logger *slog.Logger
	svc    *api.Service

	listener net.Listener
	server   *http.Server
}

func newAPIServer(cfg *config.Config, svc *api.Service, logger *slog.Logger) *apiServer {
	srv := &apiServer{
		bind:   strings.TrimSpace(cfg.Paths.APIBind),
		logger: logger,
		svc:    svc,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/health", srv.handleHealth)
	mux.HandleFunc("/api/v1/ingest/identity", srv.handleIngestIdentity)
	mux.HandleFunc("/api/v1/ingest/style", srv.handleIngestStyle)
	mux.HandleFunc("/api/v1/generate", srv.handleGenerate)
	mux.HandleFunc("/api/v1/generate/", srv.handleProject)

	srv.server = &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return srv
}

func (s *apiServer) start(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.bind)
	if err != nil {
		return fmt.Errorf("api listen: %w", err)
	}
	s.listener = listener
	s.server.BaseContext = func(net.Listener) context.Context { return ctx }

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("api server error", slog.String("error", err.Error()))
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}()

	s.logger.Info("api server listening", slog.String("address", listener.Addr().String()))
	return nil
}

func (s *apiServer) stop() {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = s.server.Shutdown(shutdownCtx)
	if s.listener != nil {
		_ = s.listener.Close()
		s.listener = nil
	}
}

func (s *apiServer) addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

func (s *apiServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *apiServer) handleGenerate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var payload struct {
		Theme string `json:"theme"`
	}
	if err := json.NewDecoder(io.LimitReader(r.Body, maxUploadBytes)).Decode(&payload); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	if strings.TrimSpace(payload.Theme) == "" {
		s.writeError(w, http.StatusBadRequest, "theme is required")
		return
	}
	resp, err := s.svc.Generate(r.Context(), payload.Theme)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, resp)
}

// handleProject serves GET /api/v1/generate/{id} and its /stream variant.
func (s *apiServer) handleProject(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	rest := strings.TrimPrefix(r.URL.Path, "/api/v1/generate/")
	projectID, tail, hasTail := strings.Cut(rest, "/")
	if projectID == "" {
		s.writeError(w, http.StatusBadRequest, "missing project id")
		return
	}
	switch {
	case !hasTail:
		s.serveProject(w, r, projectID)
	case tail == "stream":
		s.serveStream(w, r, projectID)
	default:
		s.writeError(w, http.StatusNotFound, "unknown resource")
	}
}

func (s *apiServer) serveProject(w http.ResponseWriter, r *http.Request, projectID string) {
	resp, err := s.svc.Get(r.Context(), projectID)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			s.writeError(w, http.StatusNotFound, "project not found")
			return
		}
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, resp)
}

// serveStream re-runs the project's pipeline and relays it as server-sent
// events: one "node" event per stage, then a single "result" event.
func (s *apiServer) serveStream(w http.ResponseWriter, r *http.Request, projectID string) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		s.writeError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	items, err := s.svc.Stream(r.Context(), projectID)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			s.writeError(w, http.StatusNotFound, "project not found")
			return
		}
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	for item := range items {
		switch {
		case item.Event != nil:
			writeSSE(w, "node", item.Event)
		case item.Result != nil:
			writeSSE(w, "result", map[string]any{
				"status":  item.Result.Status,
				"outputs": item.Result.Outputs,
			})
		}
		flusher.Flush()
	}
}

func writeSSE(w io.Writer, event string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, data)
}

func (s *apiServer) handleIngestIdentity(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	docType, ok := store.ParseIdentityDocType(r.FormValue("doc_type"))
	if !ok {
		s.writeError(w, http.StatusBadRequest, "doc_type must be one of skill, goal, knowledge")
		return
	}
	files := r.MultipartForm.File["files"]
	if len(files) == 0 {
		s.writeError(w, http.StatusBadRequest, "at least one file is required")
		return
	}

	uploads := make([]api.IdentityUpload, 0, len(files))
	for _, header := range files {
		file, err := header.Open()
		if err != nil {
			s.writeError(w, http.StatusBadRequest, fmt.Sprintf("open upload %q: %v", header.Filename, err))
			return
		}
		content, err := io.ReadAll(io.LimitReader(file, maxUploadBytes))
		_ = file.Close()
		if err != nil {
			s.writeError(w, http.StatusBadRequest, fmt.Sprintf("read upload %q: %v", header.Filename, err))
			return
		}
		uploads = append(uploads, api.IdentityUpload{Name: header.Filename, Content: string(content)})
	}

	resp := s.svc.IngestIdentity(r.Context(), docType, uploads, r.FormValue("user_id"))
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *apiServer) handleIngestStyle(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	platform, ok := store.ParsePlatform(r.FormValue("platform"))
	if !ok {
		s.writeError(w, http.StatusBadRequest, "platform must be one of qiita, zenn, note, owned")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "file is required")
		return
	}
	defer file.Close()
	content, err := io.ReadAll(io.LimitReader(file, maxUploadBytes))
	if err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Sprintf("read upload %q: %v", header.Filename, err))
		return
	}

	resp := s.svc.IngestStyle(r.Context(), platform, string(content), r.FormValue("user_id"))
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *apiServer) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("encode response", slog.String("error", err.Error()))
	}
}

func (s *apiServer) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}
