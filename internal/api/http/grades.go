package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/escobedo-lab/school/internal/audit"
	"github.com/escobedo-lab/school/internal/auth"
	"github.com/escobedo-lab/school/internal/grading"
	"github.com/escobedo-lab/school/internal/rbac"
)

type GradingStore interface {
	PutCriterion(ctx context.Context, c grading.Criterion) (grading.Criterion, error)
	ListCriteria(ctx context.Context) ([]grading.Criterion, error)
	DeleteCriterion(ctx context.Context, id string) error
	CreateReportCard(ctx context.Context, rc grading.ReportCard) (grading.ReportCard, error)
	GetReportCard(ctx context.Context, id string) (grading.ReportCard, error)
	ListReportCards(ctx context.Context, studentID string) ([]grading.ReportCard, error)
}

func MountGrading(r chi.Router, store GradingStore) {
	r.With(rbac.Require("grading:manage")).Post("/criteria", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Name string `json:"name"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
			http.Error(w, "name required", http.StatusBadRequest)
			return
		}
		c, err := store.PutCriterion(r.Context(), grading.Criterion{Name: req.Name})
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusCreated, c)
	})

	r.With(rbac.Require("grading:view")).Get("/criteria", func(w http.ResponseWriter, r *http.Request) {
		out, err := store.ListCriteria(r.Context())
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, out)
	})

	r.With(rbac.Require("grading:manage")).Delete("/criteria/{id}", func(w http.ResponseWriter, r *http.Request) {
		if err := store.DeleteCriterion(r.Context(), chi.URLParam(r, "id")); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})
}

func MountReportCards(r chi.Router, store GradingStore, students studentLookup, gw FileGateway, events *audit.Log) {
	// Generating a boleta renders the document, stores it through the
	// gateway and persists the metadata row in one request.
	r.With(rbac.Require("reportcard:create")).Post("/", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			StudentID    string             `json:"student_id"`
			Period       string             `json:"period"`
			Scores       map[string]float64 `json:"scores"`
			Observations string             `json:"observations"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		if req.StudentID == "" || req.Period == "" || len(req.Scores) == 0 {
			http.Error(w, "student_id, period and scores required", http.StatusBadRequest)
			return
		}
		for name, v := range req.Scores {
			if v < 0 || v > 10 {
				http.Error(w, "score out of range for "+name, http.StatusBadRequest)
				return
			}
		}
		st, err := students.Get(r.Context(), req.StudentID)
		if err != nil {
			http.Error(w, "unknown student", http.StatusNotFound)
			return
		}
		avg := grading.Average(req.Scores)
		doc := grading.RenderDocument(st.FullName, st.GradeGroup, req.Period, req.Scores, avg, req.Observations)
		name := grading.DocumentFilename(st.GradeGroup, st.FullName, time.Now())
		ref, err := gw.Store(r.Context(), bytes.NewReader(doc.Bytes()), name)
		if err != nil {
			http.Error(w, err.Error(), storageStatus(err))
			return
		}
		rc, err := store.CreateReportCard(r.Context(), grading.ReportCard{
			StudentID:    st.ID,
			Period:       req.Period,
			Scores:       req.Scores,
			Average:      avg,
			Observations: req.Observations,
			FileKey:      ref.Key,
			FileRemote:   ref.Remote(),
		})
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		events.Record(r.Context(), audit.TypeReportGenerated, ref.Key, auth.SubjectFromContext(r.Context()),
			map[string]any{"report_card_id": rc.ID, "student_id": st.ID})
		writeJSON(w, http.StatusCreated, rc)
	})

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		studentID := r.URL.Query().Get("student_id")
		if rbac.RoleFromContext(r.Context()) == auth.RoleStudent {
			studentID = auth.SubjectFromContext(r.Context())
		}
		if studentID == "" {
			http.Error(w, "student_id required", http.StatusBadRequest)
			return
		}
		out, err := store.ListReportCards(r.Context(), studentID)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, out)
	})

	r.Get("/{id}", func(w http.ResponseWriter, r *http.Request) {
		rc, err := store.GetReportCard(r.Context(), chi.URLParam(r, "id"))
		if errors.Is(err, grading.ErrNotFound) {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if rbac.RoleFromContext(r.Context()) == auth.RoleStudent &&
			rc.StudentID != auth.SubjectFromContext(r.Context()) {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}
		writeJSON(w, http.StatusOK, rc)
	})

	r.Get("/{id}/file", func(w http.ResponseWriter, r *http.Request) {
		rc, err := store.GetReportCard(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		if rbac.RoleFromContext(r.Context()) == auth.RoleStudent &&
			rc.StudentID != auth.SubjectFromContext(r.Context()) {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}
		serveFile(w, r, gw, rc.FileKey, rc.FileRemote, rc.FileKey)
	})
}
