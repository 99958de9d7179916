package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/escobedo-lab/school/internal/attendance"
	"github.com/escobedo-lab/school/internal/audit"
	"github.com/escobedo-lab/school/internal/auth"
)

type AttendanceStore interface {
	RecordBulk(ctx context.Context, records []attendance.Record) ([]attendance.Record, error)
	ListByGroup(ctx context.Context, gradeGroup, fromDay, toDay string) ([]attendance.Record, error)
	CreateReport(ctx context.Context, r attendance.Report) (attendance.Report, error)
	GetReport(ctx context.Context, id string) (attendance.Report, error)
	ListReports(ctx context.Context, gradeGroup string) ([]attendance.Report, error)
}

func MountAttendance(r chi.Router, store AttendanceStore, gw FileGateway, events *audit.Log) {
	r.Post("/", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Day     string `json:"day"`
			Records []struct {
				StudentID string `json:"student_id"`
				Status    string `json:"status"`
			} `json:"records"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		if req.Day == "" || len(req.Records) == 0 {
			http.Error(w, "day and records required", http.StatusBadRequest)
			return
		}
		records := make([]attendance.Record, 0, len(req.Records))
		for _, in := range req.Records {
			if !attendance.ValidStatus(in.Status) {
				http.Error(w, "invalid status "+in.Status, http.StatusBadRequest)
				return
			}
			records = append(records, attendance.Record{
				StudentID: in.StudentID,
				Day:       req.Day,
				Status:    in.Status,
			})
		}
		saved, err := store.RecordBulk(r.Context(), records)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusCreated, saved)
	})

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		group := q.Get("grade_group")
		from := q.Get("from")
		if group == "" || from == "" {
			http.Error(w, "grade_group and from required", http.StatusBadRequest)
			return
		}
		out, err := store.ListByGroup(r.Context(), group, from, q.Get("to"))
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, out)
	})

	r.Post("/reports", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			GradeGroup string `json:"grade_group"`
			From       string `json:"from"`
			To         string `json:"to"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		if req.GradeGroup == "" || req.From == "" {
			http.Error(w, "grade_group and from required", http.StatusBadRequest)
			return
		}
		records, err := store.ListByGroup(r.Context(), req.GradeGroup, req.From, req.To)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		doc, studentCount, err := attendance.BuildCSV(req.GradeGroup, req.From, req.To, records)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		suffix := strings.Split(uuid.NewString(), "-")[0]
		name := attendance.ReportFilename(req.GradeGroup, req.From, suffix)
		ref, err := gw.Store(r.Context(), bytes.NewReader(doc.Bytes()), name)
		if err != nil {
			http.Error(w, err.Error(), storageStatus(err))
			return
		}
		actor := auth.SubjectFromContext(r.Context())
		rep, err := store.CreateReport(r.Context(), attendance.Report{
			GradeGroup:   req.GradeGroup,
			FromDay:      req.From,
			ToDay:        req.To,
			FileKey:      ref.Key,
			FileRemote:   ref.Remote(),
			GeneratedBy:  actor,
			StudentCount: studentCount,
			RecordCount:  len(records),
		})
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		events.Record(r.Context(), audit.TypeReportGenerated, ref.Key, actor,
			map[string]any{"report_id": rep.ID, "grade_group": req.GradeGroup})
		writeJSON(w, http.StatusCreated, rep)
	})

	r.Get("/reports", func(w http.ResponseWriter, r *http.Request) {
		out, err := store.ListReports(r.Context(), r.URL.Query().Get("grade_group"))
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, out)
	})

	r.Get("/reports/{id}/file", func(w http.ResponseWriter, r *http.Request) {
		rep, err := store.GetReport(r.Context(), chi.URLParam(r, "id"))
		if errors.Is(err, attendance.ErrReportNotFound) {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		serveFile(w, r, gw, rep.FileKey, rep.FileRemote, rep.FileKey)
	})
}
