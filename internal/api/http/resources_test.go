package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/escobedo-lab/school/internal/auth"
	"github.com/escobedo-lab/school/internal/resource"
	"github.com/escobedo-lab/school/internal/student"
)

type fakeResourceStore struct {
	rows map[string]resource.Resource
}

func newFakeResourceStore() *fakeResourceStore {
	return &fakeResourceStore{rows: map[string]resource.Resource{}}
}

func (s *fakeResourceStore) Create(_ context.Context, r resource.Resource) (resource.Resource, error) {
	r.ID = uuid.NewString()
	s.rows[r.ID] = r
	return r, nil
}

func (s *fakeResourceStore) Get(_ context.Context, id string) (resource.Resource, error) {
	r, ok := s.rows[id]
	if !ok {
		return resource.Resource{}, resource.ErrNotFound
	}
	return r, nil
}

func (s *fakeResourceStore) List(_ context.Context, gradeGroup string) ([]resource.Resource, error) {
	var out []resource.Resource
	for _, r := range s.rows {
		if gradeGroup == "" || r.GradeGroup == gradeGroup || r.GradeGroup == "" {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *fakeResourceStore) Delete(_ context.Context, id string) error {
	if _, ok := s.rows[id]; !ok {
		return resource.ErrNotFound
	}
	delete(s.rows, id)
	return nil
}

func TestResourceUploadListDownload(t *testing.T) {
	store := newFakeResourceStore()
	students := &fakeStudents{rows: map[string]student.Student{
		"s1": {ID: "s1", FullName: "Ana Torres", GradeGroup: "3A", Active: true},
	}}
	r := chi.NewRouter()
	MountResources(r, store, students, testGateway(t), nil)

	body, ct := multipartBody(t, map[string]string{
		"title":       "Guía de prácticas",
		"grade_group": "3A",
	}, "file", "guia.pdf", pdfDoc)
	req := httptest.NewRequest("POST", "/", body)
	req.Header.Set("Content-Type", ct)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, asUser(req, "profesor", auth.RoleTeacher))
	if w.Code != http.StatusCreated {
		t.Fatalf("upload: got %d, body %s", w.Code, w.Body.String())
	}
	var res resource.Resource
	if err := json.Unmarshal(w.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if res.FileKey != "guia.pdf" || res.FileRemote {
		t.Fatalf("unexpected file ref: key=%q remote=%v", res.FileKey, res.FileRemote)
	}

	// A student in the group sees it listed without passing any filter.
	req = httptest.NewRequest("GET", "/", nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, asUser(req, "s1", auth.RoleStudent))
	if w.Code != http.StatusOK {
		t.Fatalf("list: got %d", w.Code)
	}
	var listed []resource.Resource
	if err := json.Unmarshal(w.Body.Bytes(), &listed); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(listed) != 1 || listed[0].ID != res.ID {
		t.Fatalf("student listing = %+v", listed)
	}

	// And can download the file.
	req = httptest.NewRequest("GET", "/"+res.ID+"/file", nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, asUser(req, "s1", auth.RoleStudent))
	if w.Code != http.StatusOK {
		t.Fatalf("download: got %d", w.Code)
	}
	got, _ := io.ReadAll(w.Body)
	if !bytes.Equal(got, pdfDoc) {
		t.Fatal("downloaded bytes differ")
	}
}

func TestResourceUploadRequiresTeacher(t *testing.T) {
	store := newFakeResourceStore()
	students := &fakeStudents{rows: map[string]student.Student{}}
	r := chi.NewRouter()
	MountResources(r, store, students, testGateway(t), nil)

	body, ct := multipartBody(t, map[string]string{"title": "x"}, "file", "guia.pdf", pdfDoc)
	req := httptest.NewRequest("POST", "/", body)
	req.Header.Set("Content-Type", ct)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, asUser(req, "s1", auth.RoleStudent))
	if w.Code != http.StatusForbidden {
		t.Fatalf("got %d, want 403", w.Code)
	}
	if len(store.rows) != 0 {
		t.Fatal("student upload must not create a row")
	}
}

func TestResourceDelete(t *testing.T) {
	store := newFakeResourceStore()
	store.rows["r1"] = resource.Resource{ID: "r1", Title: "vieja"}
	students := &fakeStudents{rows: map[string]student.Student{}}
	r := chi.NewRouter()
	MountResources(r, store, students, testGateway(t), nil)

	req := httptest.NewRequest("DELETE", "/r1", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, asUser(req, "profesor", auth.RoleTeacher))
	if w.Code != http.StatusNoContent {
		t.Fatalf("got %d, want 204", w.Code)
	}
	if len(store.rows) != 0 {
		t.Fatal("row not deleted")
	}
}
