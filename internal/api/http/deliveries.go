package http

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/escobedo-lab/school/internal/audit"
	"github.com/escobedo-lab/school/internal/auth"
	"github.com/escobedo-lab/school/internal/delivery"
	"github.com/escobedo-lab/school/internal/rbac"
	"github.com/escobedo-lab/school/internal/student"
)

type DeliveryStore interface {
	Create(ctx context.Context, d delivery.Delivery) (delivery.Delivery, error)
	Get(ctx context.Context, id string) (delivery.Delivery, error)
	List(ctx context.Context, studentID string) ([]delivery.Delivery, error)
	Review(ctx context.Context, id string, stars int, comments string) error
	Delete(ctx context.Context, id string) error
}

type studentLookup interface {
	Get(ctx context.Context, id string) (student.Student, error)
}

func MountDeliveries(r chi.Router, store DeliveryStore, students studentLookup, gw FileGateway, events *audit.Log) {
	// Students hand in homework as multipart: a title field plus the file.
	r.With(rbac.Require("delivery:create")).Post("/", func(w http.ResponseWriter, r *http.Request) {
		sub := auth.SubjectFromContext(r.Context())
		st, err := students.Get(r.Context(), sub)
		if err != nil {
			http.Error(w, "unknown student", http.StatusForbidden)
			return
		}
		title := r.FormValue("title")
		if title == "" {
			http.Error(w, "title required", http.StatusBadRequest)
			return
		}
		f, hdr, err := r.FormFile("file")
		if err != nil {
			http.Error(w, "file required", http.StatusBadRequest)
			return
		}
		defer f.Close()
		ref, err := gw.Store(r.Context(), f, hdr.Filename)
		if err != nil {
			http.Error(w, err.Error(), storageStatus(err))
			return
		}
		d, err := store.Create(r.Context(), delivery.Delivery{
			StudentID:   st.ID,
			StudentName: st.FullName,
			GradeGroup:  st.GradeGroup,
			Title:       title,
			FileKey:     ref.Key,
			FileRemote:  ref.Remote(),
		})
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		events.Record(r.Context(), audit.TypeFileStored, ref.Key, sub,
			map[string]any{"delivery_id": d.ID, "backend": ref.Backend})
		writeJSON(w, http.StatusCreated, d)
	})

	// Teachers see everything; students only their own rows.
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		studentID := r.URL.Query().Get("student_id")
		if rbac.RoleFromContext(r.Context()) == auth.RoleStudent {
			studentID = auth.SubjectFromContext(r.Context())
		}
		out, err := store.List(r.Context(), studentID)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, out)
	})

	r.Get("/{id}", func(w http.ResponseWriter, r *http.Request) {
		d, err := store.Get(r.Context(), chi.URLParam(r, "id"))
		if errors.Is(err, delivery.ErrNotFound) {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if rbac.RoleFromContext(r.Context()) == auth.RoleStudent &&
			d.StudentID != auth.SubjectFromContext(r.Context()) {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}
		writeJSON(w, http.StatusOK, d)
	})

	r.Get("/{id}/file", func(w http.ResponseWriter, r *http.Request) {
		d, err := store.Get(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		if rbac.RoleFromContext(r.Context()) == auth.RoleStudent &&
			d.StudentID != auth.SubjectFromContext(r.Context()) {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}
		serveFile(w, r, gw, d.FileKey, d.FileRemote, d.FileKey)
	})

	r.With(rbac.Require("delivery:review")).Put("/{id}/review", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Stars    int    `json:"stars"`
			Comments string `json:"comments"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		if req.Stars < 0 || req.Stars > 5 {
			http.Error(w, "stars must be 0-5", http.StatusBadRequest)
			return
		}
		id := chi.URLParam(r, "id")
		if err := store.Review(r.Context(), id, req.Stars, req.Comments); err != nil {
			if errors.Is(err, delivery.ErrNotFound) {
				http.Error(w, "not found", http.StatusNotFound)
				return
			}
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		d, err := store.Get(r.Context(), id)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, d)
	})

	r.With(rbac.Require("delivery:delete")).Delete("/{id}", func(w http.ResponseWriter, r *http.Request) {
		d, err := store.Get(r.Context(), chi.URLParam(r, "id"))
		if errors.Is(err, delivery.ErrNotFound) {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if err := store.Delete(r.Context(), d.ID); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if err := deleteFile(r.Context(), gw, d.FileKey, d.FileRemote); err != nil {
			log.Printf("deliveries: file cleanup for %s: %v", d.ID, err)
		}
		w.WriteHeader(http.StatusNoContent)
	})
}
