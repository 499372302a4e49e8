// Package server exposes the pipeline over HTTP. Routes mirror the frontend
// contract: form, chat, chat-fin, edit, and video, plus a health probe.
package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/akakura-hackathon/LocAIver/internal/pipeline"
	"github.com/akakura-hackathon/LocAIver/internal/store"
	"github.com/akakura-hackathon/LocAIver/internal/story"
)

// Server routes HTTP requests into the pipeline.
type Server struct {
	pipe *pipeline.Pipeline
}

// New builds a Server over the pipeline.
func New(pipe *pipeline.Pipeline) *Server {
	return &Server{pipe: pipe}
}

// Router builds the chi handler tree.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(middleware.CleanPath)
	r.Use(requestID)

	r.Get("/api/health", s.handleHealth)
	r.Post("/form", s.handleForm)
	r.Post("/chat", s.handleChat)
	r.Post("/chat-fin", s.handleChatFin)
	r.Post("/edit", s.handleEdit)
	r.Post("/video", s.handleVideo)

	return r
}

// requestID tags every request with a UUID for log correlation.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := uuid.New().String()
		w.Header().Set("X-Request-Id", id)
		logger := log.With().Str("request_id", id).Str("path", r.URL.Path).Logger()
		next.ServeHTTP(w, r.WithContext(logger.WithContext(r.Context())))
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleForm(w http.ResponseWriter, r *http.Request) {
	var form json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		httpError(w, http.StatusBadRequest, "invalid JSON body", err.Error())
		return
	}

	res, err := s.pipe.StartProject(r.Context(), form)
	if err != nil {
		httpError(w, http.StatusInternalServerError, "failed to start project", err.Error())
		return
	}
	respondJSON(w, http.StatusOK, res)
}

// chatRequest absorbs the frontend's message shapes: a bare message string,
// an input alias, or the latest user entry of the messages array.
type chatRequest struct {
	Message  string              `json:"message"`
	Input    string              `json:"input"`
	Messages []story.ChatMessage `json:"messages"`
}

func (c chatRequest) latest() string {
	if c.Message != "" {
		return c.Message
	}
	if c.Input != "" {
		return c.Input
	}
	for i := len(c.Messages) - 1; i >= 0; i-- {
		if c.Messages[i].Role == "user" {
			return c.Messages[i].Body()
		}
	}
	return ""
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpError(w, http.StatusBadRequest, "invalid JSON body", err.Error())
		return
	}

	reply, err := s.pipe.Chat(r.Context(), req.Messages, req.latest())
	if err != nil {
		httpError(w, http.StatusInternalServerError, "failed to generate reply", err.Error())
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"reply": reply})
}

type chatFinRequest struct {
	ProjectFolder string              `json:"project_folder"`
	Messages      []story.ChatMessage `json:"messages"`
}

func (s *Server) handleChatFin(w http.ResponseWriter, r *http.Request) {
	var req chatFinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpError(w, http.StatusBadRequest, "invalid JSON body", err.Error())
		return
	}
	if req.ProjectFolder == "" {
		httpError(w, http.StatusBadRequest, "project_folder is required")
		return
	}

	view, err := s.pipe.FinishChat(r.Context(), req.ProjectFolder, req.Messages)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			httpError(w, http.StatusNotFound, "project not found", err.Error())
			return
		}
		httpError(w, http.StatusInternalServerError, "failed to generate storyboard", err.Error())
		return
	}
	respondRaw(w, http.StatusOK, view)
}

func (s *Server) handleEdit(w http.ResponseWriter, r *http.Request) {
	var req story.RevisionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpError(w, http.StatusBadRequest, "invalid JSON body", err.Error())
		return
	}
	if req.ProjectFolder == "" {
		httpError(w, http.StatusBadRequest, "project_folder is required")
		return
	}

	view, err := s.pipe.Edit(r.Context(), req)
	switch {
	case errors.Is(err, pipeline.ErrStaleCounter):
		httpError(w, http.StatusConflict, "revision counter is stale", err.Error())
	case errors.Is(err, store.ErrNotFound):
		httpError(w, http.StatusNotFound, "project not found", err.Error())
	case err != nil:
		httpError(w, http.StatusInternalServerError, "failed to apply revision", err.Error())
	default:
		respondRaw(w, http.StatusOK, view)
	}
}

type videoRequest struct {
	ProjectFolder string `json:"project_folder"`
}

func (s *Server) handleVideo(w http.ResponseWriter, r *http.Request) {
	var req videoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpError(w, http.StatusBadRequest, "invalid JSON body", err.Error())
		return
	}
	if req.ProjectFolder == "" {
		httpError(w, http.StatusBadRequest, "project_folder is required")
		return
	}

	url, err := s.pipe.RenderVideo(r.Context(), req.ProjectFolder)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			httpError(w, http.StatusNotFound, "project not found", err.Error())
			return
		}
		httpError(w, http.StatusInternalServerError, "failed to render video", err.Error())
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"url": url})
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// respondRaw writes a pre-encoded JSON document.
func respondRaw(w http.ResponseWriter, status int, doc json.RawMessage) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(doc)
}

// httpError sends a JSON error response. clientMsg is returned to the
// caller; internalDetails are logged server-side only, so store paths and
// backend errors never leak to the frontend.
func httpError(w http.ResponseWriter, status int, clientMsg string, internalDetails ...string) {
	if len(internalDetails) > 0 {
		log.Error().
			Int("status", status).
			Str("client_msg", clientMsg).
			Strs("details", internalDetails).
			Msg("HTTP error")
	}
	respondJSON(w, status, map[string]string{"error": clientMsg})
}
