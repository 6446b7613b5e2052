package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"lightbox/internal/logging"
	"lightbox/internal/pipeline"
	"lightbox/internal/services"
)

const shutdownGrace = 5 * time.Second

// Source is the read side of the coordinator the server reports on.
type Source interface {
	Items() []pipeline.Item
	ItemAt(index int) (pipeline.Item, bool)
	Stats() pipeline.Stats
}

// Server exposes pipeline state over HTTP.
type Server struct {
	source Source
	logger *slog.Logger
}

// NewServer builds a status server over source.
func NewServer(source Source, logger *slog.Logger) *Server {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Server{source: source, logger: logging.NewComponentLogger(logger, "api")}
}

// Handler returns the chi router with all routes registered.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)

	r.Route("/api", func(r chi.Router) {
		r.Get("/items", s.listItems)
		r.Get("/items/{key}", s.getItem)
		r.Get("/items/{key}/artifact", s.getArtifact)
		r.Get("/stats", s.getStats)
	})
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			s.logger.Debug("health write failed", logging.Error(err))
		}
	})
	return r
}

// ListenAndServe serves on addr until ctx is done, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return services.Wrap(services.ErrConfiguration, "api", "listen", addr, err)
	}
	return s.Serve(ctx, listener)
}

// Serve serves on listener until ctx is done.
func (s *Server) Serve(ctx context.Context, listener net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(listener)
	}()
	s.logger.Info("status server listening",
		logging.String("address", listener.Addr().String()),
		logging.String(logging.FieldEventType, "api_listening"),
	)

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) listItems(w http.ResponseWriter, r *http.Request) {
	items := s.source.Items()
	views := make([]ItemView, 0, len(items))
	for _, item := range items {
		views = append(views, itemView(item))
	}
	s.respondJSON(w, http.StatusOK, views)
}

func (s *Server) getItem(w http.ResponseWriter, r *http.Request) {
	item, ok := s.lookup(w, r)
	if !ok {
		return
	}
	s.respondJSON(w, http.StatusOK, itemView(item))
}

func (s *Server) getArtifact(w http.ResponseWriter, r *http.Request) {
	item, ok := s.lookup(w, r)
	if !ok {
		return
	}
	if len(item.Artifact) == 0 {
		s.respondError(w, r, http.StatusNotFound, "item has no artifact yet")
		return
	}
	w.Header().Set("Content-Type", http.DetectContentType(item.Artifact))
	w.Header().Set("Content-Length", strconv.Itoa(len(item.Artifact)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(item.Artifact); err != nil {
		s.logger.Debug("artifact write failed", logging.Int(logging.FieldItemKey, item.Key), logging.Error(err))
	}
}

func (s *Server) getStats(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, statsView(s.source.Stats()))
}

func (s *Server) lookup(w http.ResponseWriter, r *http.Request) (pipeline.Item, bool) {
	key, err := strconv.Atoi(chi.URLParam(r, "key"))
	if err != nil {
		s.respondError(w, r, http.StatusBadRequest, "item key must be an integer")
		return pipeline.Item{}, false
	}
	item, ok := s.source.ItemAt(key)
	if !ok {
		s.respondError(w, r, http.StatusNotFound, "item not found")
		return pipeline.Item{}, false
	}
	return item, true
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error("failed to encode JSON response", logging.Error(err))
	}
}

func (s *Server) respondError(w http.ResponseWriter, r *http.Request, status int, message string) {
	s.respondJSON(w, status, ErrorResponse{
		Error:     message,
		Code:      status,
		RequestID: middleware.GetReqID(r.Context()),
	})
}

// requestLogger logs each request at debug level with the chi request id as
// the correlation id.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		ctx := services.WithRequestID(r.Context(), middleware.GetReqID(r.Context()))
		next.ServeHTTP(ww, r.WithContext(ctx))
		logging.WithContext(ctx, s.logger).Debug("request served",
			logging.String("method", r.Method),
			logging.String("path", r.URL.Path),
			logging.Int("status", ww.Status()),
			logging.Int("bytes", ww.BytesWritten()),
			logging.Duration("elapsed", time.Since(start)),
			logging.String(logging.FieldEventType, "api_request"),
		)
	})
}
