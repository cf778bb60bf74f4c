package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/comigor/mindcare-go/internal/composer"
	"github.com/comigor/mindcare-go/internal/conversation"
	"github.com/comigor/mindcare-go/internal/logger"
	"github.com/comigor/mindcare-go/internal/resources"
	"github.com/comigor/mindcare-go/internal/session"
)

// maxBodyBytes bounds a request body; it comfortably fits a message of
// composer.MaxMessageLength characters.
const maxBodyBytes = 16 << 10

// ChatHandler serves the chat screen's session API.
type ChatHandler struct {
	sessions *session.Manager
}

// NewChatHandler creates the chat handler.
func NewChatHandler(sessions *session.Manager) *ChatHandler {
	return &ChatHandler{sessions: sessions}
}

// RegisterRoutes registers the session routes.
func (h *ChatHandler) RegisterRoutes(r chi.Router) {
	r.Post("/sessions", h.handleCreateSession)
	r.Route("/sessions/{sessionID}", func(r chi.Router) {
		r.Get("/", h.handleGetSession)
		r.Delete("/", h.handleCloseSession)
		r.Post("/messages", h.handleSendMessage)
		r.Delete("/messages", h.handleClearMessages)
	})
}

type sessionResponse struct {
	ID           string                 `json:"id"`
	CreatedAt    time.Time              `json:"createdAt"`
	Busy         bool                   `json:"busy"`
	Messages     []conversation.Message `json:"messages"`
	QuickReplies []string               `json:"quickReplies,omitempty"`
}

func (h *ChatHandler) snapshot(r *http.Request, s *session.Session) (sessionResponse, error) {
	msgs, err := s.Conversation().Messages(r.Context())
	if err != nil {
		return sessionResponse{}, err
	}
	resp := sessionResponse{
		ID:        s.ID,
		CreatedAt: s.CreatedAt,
		Busy:      s.Composer.Busy(),
		Messages:  msgs,
	}
	if len(msgs) == 1 {
		resp.QuickReplies = resources.QuickReplies()
	}
	return resp, nil
}

func (h *ChatHandler) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	s, err := h.sessions.Create(r.Context())
	if errors.Is(err, session.ErrTooManySessions) {
		respondError(w, http.StatusServiceUnavailable, err.Error())
		return
	}
	if err != nil {
		logger.FromContext(r.Context()).Error("create session failed", "error", err)
		respondError(w, http.StatusInternalServerError, "failed to create session")
		return
	}
	resp, err := h.snapshot(r, s)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to load messages")
		return
	}
	respondJSON(w, http.StatusCreated, resp)
}

func (h *ChatHandler) lookup(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	s, err := h.sessions.Get(chi.URLParam(r, "sessionID"))
	if err != nil {
		respondError(w, http.StatusNotFound, err.Error())
		return nil, false
	}
	return s, true
}

func (h *ChatHandler) handleGetSession(w http.ResponseWriter, r *http.Request) {
	s, ok := h.lookup(w, r)
	if !ok {
		return
	}
	resp, err := h.snapshot(r, s)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to load messages")
		return
	}
	respondJSON(w, http.StatusOK, resp)
}

func (h *ChatHandler) handleCloseSession(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Close(r.Context(), chi.URLParam(r, "sessionID")); err != nil {
		if errors.Is(err, session.ErrSessionNotFound) {
			respondError(w, http.StatusNotFound, err.Error())
			return
		}
		respondError(w, http.StatusInternalServerError, "failed to close session")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *ChatHandler) handleSendMessage(w http.ResponseWriter, r *http.Request) {
	s, ok := h.lookup(w, r)
	if !ok {
		return
	}

	var payload struct {
		Text string `json:"text"`
	}
	if !decodeJSON(w, r, &payload) {
		return
	}

	ex, err := s.Composer.Send(r.Context(), payload.Text)
	switch {
	case errors.Is(err, composer.ErrEmptyDraft):
		respondError(w, http.StatusUnprocessableEntity, err.Error())
		return
	case errors.Is(err, composer.ErrTooLong):
		respondError(w, http.StatusRequestEntityTooLarge, err.Error())
		return
	case errors.Is(err, composer.ErrBusy):
		respondError(w, http.StatusConflict, err.Error())
		return
	case errors.Is(err, composer.ErrClosed):
		respondError(w, http.StatusGone, err.Error())
		return
	case err != nil:
		logger.FromContext(r.Context()).Error("send message failed", "session", s.ID, "error", err)
		respondError(w, http.StatusInternalServerError, "failed to send message")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"user":      ex.User,
		"reply":     ex.Reply,
		"discarded": ex.Discarded,
	})
}

func (h *ChatHandler) handleClearMessages(w http.ResponseWriter, r *http.Request) {
	s, ok := h.lookup(w, r)
	if !ok {
		return
	}
	if r.URL.Query().Get("confirm") != "true" {
		respondError(w, http.StatusBadRequest, "clearing the chat requires confirm=true")
		return
	}
	if err := s.Composer.Reset(r.Context()); err != nil {
		logger.FromContext(r.Context()).Error("clear chat failed", "session", s.ID, "error", err)
		respondError(w, http.StatusInternalServerError, "failed to clear chat")
		return
	}
	resp, err := h.snapshot(r, s)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to load messages")
		return
	}
	respondJSON(w, http.StatusOK, resp)
}
