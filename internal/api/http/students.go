package http

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/escobedo-lab/school/internal/audit"
	"github.com/escobedo-lab/school/internal/auth"
	"github.com/escobedo-lab/school/internal/student"
)

type StudentStore interface {
	Create(ctx context.Context, st student.Student) (student.Student, error)
	Get(ctx context.Context, id string) (student.Student, error)
	List(ctx context.Context, gradeGroup string) ([]student.Student, error)
	Update(ctx context.Context, st student.Student) error
	SetPassword(ctx context.Context, id, hash string) error
	SetPhoto(ctx context.Context, id, key string, remote bool) error
	Delete(ctx context.Context, id string) error
}

func MountStudents(r chi.Router, store StudentStore, gw FileGateway, events *audit.Log) {
	r.Post("/", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Username   string `json:"username"`
			FullName   string `json:"full_name"`
			GradeGroup string `json:"grade_group"`
			Password   string `json:"password"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		if req.Username == "" || req.FullName == "" || req.GradeGroup == "" || req.Password == "" {
			http.Error(w, "username, full_name, grade_group and password required", http.StatusBadRequest)
			return
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), 12)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		st, err := store.Create(r.Context(), student.Student{
			Username:     req.Username,
			FullName:     req.FullName,
			GradeGroup:   req.GradeGroup,
			PasswordHash: string(hash),
		})
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusCreated, st)
	})

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		out, err := store.List(r.Context(), r.URL.Query().Get("grade_group"))
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, out)
	})

	r.Get("/{id}", func(w http.ResponseWriter, r *http.Request) {
		st, err := store.Get(r.Context(), chi.URLParam(r, "id"))
		if errors.Is(err, student.ErrNotFound) {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, st)
	})

	r.Put("/{id}", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			FullName   string `json:"full_name"`
			GradeGroup string `json:"grade_group"`
			Active     *bool  `json:"active"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		st, err := store.Get(r.Context(), chi.URLParam(r, "id"))
		if errors.Is(err, student.ErrNotFound) {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if req.FullName != "" {
			st.FullName = req.FullName
		}
		if req.GradeGroup != "" {
			st.GradeGroup = req.GradeGroup
		}
		if req.Active != nil {
			st.Active = *req.Active
		}
		if err := store.Update(r.Context(), st); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, st)
	})

	r.Put("/{id}/password", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Password string `json:"password"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Password == "" {
			http.Error(w, "password required", http.StatusBadRequest)
			return
		}
		id := chi.URLParam(r, "id")
		if _, err := store.Get(r.Context(), id); err != nil {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), 12)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if err := store.SetPassword(r.Context(), id, string(hash)); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})

	r.Delete("/{id}", func(w http.ResponseWriter, r *http.Request) {
		st, err := store.Get(r.Context(), chi.URLParam(r, "id"))
		if errors.Is(err, student.ErrNotFound) {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if err := store.Delete(r.Context(), st.ID); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if err := deleteFile(r.Context(), gw, st.PhotoKey, st.PhotoRemote); err != nil {
			log.Printf("students: photo cleanup for %s: %v", st.ID, err)
		}
		w.WriteHeader(http.StatusNoContent)
	})

	r.Post("/{id}/photo", func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if _, err := store.Get(r.Context(), id); err != nil {
			http.Error(w, "not found", http.StatusNotFound)
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
		if err := store.SetPhoto(r.Context(), id, ref.Key, ref.Remote()); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		events.Record(r.Context(), audit.TypeFileStored, ref.Key, auth.SubjectFromContext(r.Context()),
			map[string]any{"student_id": id, "backend": ref.Backend})
		writeJSON(w, http.StatusOK, ref)
	})

	r.Get("/{id}/photo", func(w http.ResponseWriter, r *http.Request) {
		st, err := store.Get(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		serveFile(w, r, gw, st.PhotoKey, st.PhotoRemote, "")
	})
}
