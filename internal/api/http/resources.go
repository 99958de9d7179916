package http

import (
	"context"
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/escobedo-lab/school/internal/audit"
	"github.com/escobedo-lab/school/internal/auth"
	"github.com/escobedo-lab/school/internal/rbac"
	"github.com/escobedo-lab/school/internal/resource"
)

type ResourceStore interface {
	Create(ctx context.Context, r resource.Resource) (resource.Resource, error)
	Get(ctx context.Context, id string) (resource.Resource, error)
	List(ctx context.Context, gradeGroup string) ([]resource.Resource, error)
	Delete(ctx context.Context, id string) error
}

func MountResources(r chi.Router, store ResourceStore, students studentLookup, gw FileGateway, events *audit.Log) {
	r.With(rbac.Require("resource:create")).Post("/", func(w http.ResponseWriter, r *http.Request) {
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
		res, err := store.Create(r.Context(), resource.Resource{
			Title:       title,
			Description: r.FormValue("description"),
			GradeGroup:  r.FormValue("grade_group"),
			FileKey:     ref.Key,
			FileRemote:  ref.Remote(),
		})
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		events.Record(r.Context(), audit.TypeFileStored, ref.Key, auth.SubjectFromContext(r.Context()),
			map[string]any{"resource_id": res.ID, "backend": ref.Backend})
		writeJSON(w, http.StatusCreated, res)
	})

	// Students see their group's resources plus the ones shared with all;
	// teachers see everything.
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		gradeGroup := r.URL.Query().Get("grade_group")
		if rbac.RoleFromContext(r.Context()) == auth.RoleStudent {
			st, err := students.Get(r.Context(), auth.SubjectFromContext(r.Context()))
			if err != nil {
				http.Error(w, "unknown student", http.StatusForbidden)
				return
			}
			gradeGroup = st.GradeGroup
		}
		out, err := store.List(r.Context(), gradeGroup)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, out)
	})

	r.Get("/{id}/file", func(w http.ResponseWriter, r *http.Request) {
		res, err := store.Get(r.Context(), chi.URLParam(r, "id"))
		if errors.Is(err, resource.ErrNotFound) {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		serveFile(w, r, gw, res.FileKey, res.FileRemote, res.FileKey)
	})

	r.With(rbac.Require("resource:delete")).Delete("/{id}", func(w http.ResponseWriter, r *http.Request) {
		res, err := store.Get(r.Context(), chi.URLParam(r, "id"))
		if errors.Is(err, resource.ErrNotFound) {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if err := store.Delete(r.Context(), res.ID); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if err := deleteFile(r.Context(), gw, res.FileKey, res.FileRemote); err != nil {
			log.Printf("resources: file cleanup for %s: %v", res.ID, err)
		}
		w.WriteHeader(http.StatusNoContent)
	})
}
