package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/escobedo-lab/school/internal/auth"
	"github.com/escobedo-lab/school/internal/message"
	"github.com/escobedo-lab/school/internal/rbac"
)

type MessageStore interface {
	Create(ctx context.Context, m message.Message) (message.Message, error)
	Conversation(ctx context.Context, a, b string) ([]message.Message, error)
	Inbox(ctx context.Context, userID string) ([]message.Message, error)
	MarkRead(ctx context.Context, id, recipientID string) error
	UnreadCount(ctx context.Context, userID string) (int, error)
}

func MountMessages(r chi.Router, store MessageStore) {
	r.Post("/", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			RecipientID   string `json:"recipient_id"`
			RecipientRole string `json:"recipient_role"`
			Body          string `json:"body"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		if req.RecipientID == "" || req.Body == "" {
			http.Error(w, "recipient_id and body required", http.StatusBadRequest)
			return
		}
		m, err := store.Create(r.Context(), message.Message{
			SenderID:      auth.SubjectFromContext(r.Context()),
			SenderRole:    rbac.RoleFromContext(r.Context()),
			RecipientID:   req.RecipientID,
			RecipientRole: req.RecipientRole,
			Body:          req.Body,
		})
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusCreated, m)
	})

	r.Get("/inbox", func(w http.ResponseWriter, r *http.Request) {
		out, err := store.Inbox(r.Context(), auth.SubjectFromContext(r.Context()))
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, out)
	})

	r.Get("/unread-count", func(w http.ResponseWriter, r *http.Request) {
		n, err := store.UnreadCount(r.Context(), auth.SubjectFromContext(r.Context()))
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, map[string]int{"unread": n})
	})

	r.Get("/conversation/{peer}", func(w http.ResponseWriter, r *http.Request) {
		out, err := store.Conversation(r.Context(),
			auth.SubjectFromContext(r.Context()), chi.URLParam(r, "peer"))
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, out)
	})

	// Only the recipient can mark a message read; the store enforces it.
	r.Put("/{id}/read", func(w http.ResponseWriter, r *http.Request) {
		err := store.MarkRead(r.Context(), chi.URLParam(r, "id"), auth.SubjectFromContext(r.Context()))
		if errors.Is(err, message.ErrNotFound) {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})
}
