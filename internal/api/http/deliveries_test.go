package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/escobedo-lab/school/internal/auth"
	"github.com/escobedo-lab/school/internal/delivery"
	"github.com/escobedo-lab/school/internal/rbac"
	"github.com/escobedo-lab/school/internal/storage"
	"github.com/escobedo-lab/school/internal/student"
)

type fakeDeliveryStore struct {
	rows map[string]delivery.Delivery
}

func newFakeDeliveryStore() *fakeDeliveryStore {
	return &fakeDeliveryStore{rows: map[string]delivery.Delivery{}}
}

func (s *fakeDeliveryStore) Create(_ context.Context, d delivery.Delivery) (delivery.Delivery, error) {
	d.ID = uuid.NewString()
	s.rows[d.ID] = d
	return d, nil
}

func (s *fakeDeliveryStore) Get(_ context.Context, id string) (delivery.Delivery, error) {
	d, ok := s.rows[id]
	if !ok {
		return delivery.Delivery{}, delivery.ErrNotFound
	}
	return d, nil
}

func (s *fakeDeliveryStore) List(_ context.Context, studentID string) ([]delivery.Delivery, error) {
	var out []delivery.Delivery
	for _, d := range s.rows {
		if studentID == "" || d.StudentID == studentID {
			out = append(out, d)
		}
	}
	return out, nil
}

func (s *fakeDeliveryStore) Review(_ context.Context, id string, stars int, comments string) error {
	d, ok := s.rows[id]
	if !ok {
		return delivery.ErrNotFound
	}
	d.Stars, d.Comments = stars, comments
	s.rows[id] = d
	return nil
}

func (s *fakeDeliveryStore) Delete(_ context.Context, id string) error {
	if _, ok := s.rows[id]; !ok {
		return delivery.ErrNotFound
	}
	delete(s.rows, id)
	return nil
}

type fakeStudents struct {
	rows map[string]student.Student
}

func (s *fakeStudents) Get(_ context.Context, id string) (student.Student, error) {
	st, ok := s.rows[id]
	if !ok {
		return student.Student{}, student.ErrNotFound
	}
	return st, nil
}

func testGateway(t *testing.T) *storage.Gateway {
	t.Helper()
	local, err := storage.NewLocalStore(t.TempDir(), 1)
	if err != nil {
		t.Fatalf("local store: %v", err)
	}
	return storage.NewGatewayWith(storage.NewValidator(0), nil, local)
}

func asUser(r *http.Request, sub, role string) *http.Request {
	ctx := auth.WithSubject(r.Context(), sub)
	ctx = rbac.WithRole(ctx, role)
	return r.WithContext(ctx)
}

func multipartBody(t *testing.T, fields map[string]string, fileField, filename string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	buf := &bytes.Buffer{}
	mw := multipart.NewWriter(buf)
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatalf("write field: %v", err)
		}
	}
	fw, err := mw.CreateFormFile(fileField, filename)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := fw.Write(content); err != nil {
		t.Fatalf("write file: %v", err)
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close multipart: %v", err)
	}
	return buf, mw.FormDataContentType()
}

var pdfDoc = []byte("%PDF-1.4\n1 0 obj\n<< /Type /Catalog >>\nendobj\ntrailer\n<< /Root 1 0 R >>\n%%EOF\n")

func TestDeliveryUploadAndDownload(t *testing.T) {
	store := newFakeDeliveryStore()
	students := &fakeStudents{rows: map[string]student.Student{
		"s1": {ID: "s1", FullName: "Ana Torres", GradeGroup: "3A", Active: true},
	}}
	r := chi.NewRouter()
	MountDeliveries(r, store, students, testGateway(t), nil)

	body, ct := multipartBody(t, map[string]string{"title": "Práctica 4"}, "file", "tarea.pdf", pdfDoc)
	req := httptest.NewRequest("POST", "/", body)
	req.Header.Set("Content-Type", ct)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, asUser(req, "s1", auth.RoleStudent))

	if w.Code != http.StatusCreated {
		t.Fatalf("upload: got %d, body %s", w.Code, w.Body.String())
	}
	var d delivery.Delivery
	if err := json.Unmarshal(w.Body.Bytes(), &d); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if d.StudentName != "Ana Torres" || d.GradeGroup != "3A" {
		t.Fatalf("student fields not filled in: %+v", d)
	}
	if d.FileKey != "tarea.pdf" || d.FileRemote {
		t.Fatalf("unexpected file ref: key=%q remote=%v", d.FileKey, d.FileRemote)
	}

	// Owner downloads it back.
	req = httptest.NewRequest("GET", "/"+d.ID+"/file", nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, asUser(req, "s1", auth.RoleStudent))
	if w.Code != http.StatusOK {
		t.Fatalf("download: got %d", w.Code)
	}
	got, _ := io.ReadAll(w.Body)
	if !bytes.Equal(got, pdfDoc) {
		t.Fatalf("downloaded bytes differ")
	}
}

func TestDeliveryUploadRejectsBadFile(t *testing.T) {
	store := newFakeDeliveryStore()
	students := &fakeStudents{rows: map[string]student.Student{
		"s1": {ID: "s1", FullName: "Ana Torres", GradeGroup: "3A", Active: true},
	}}
	r := chi.NewRouter()
	MountDeliveries(r, store, students, testGateway(t), nil)

	body, ct := multipartBody(t, map[string]string{"title": "x"}, "file", "tarea.exe", []byte("MZ\x00\x00"))
	req := httptest.NewRequest("POST", "/", body)
	req.Header.Set("Content-Type", ct)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, asUser(req, "s1", auth.RoleStudent))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("got %d, want 400", w.Code)
	}
	if len(store.rows) != 0 {
		t.Fatalf("rejected upload must not create a row")
	}
}

func TestDeliveryStudentCannotSeeOthers(t *testing.T) {
	store := newFakeDeliveryStore()
	store.rows["d1"] = delivery.Delivery{ID: "d1", StudentID: "s2", Title: "ajena"}
	students := &fakeStudents{rows: map[string]student.Student{}}
	r := chi.NewRouter()
	MountDeliveries(r, store, students, testGateway(t), nil)

	req := httptest.NewRequest("GET", "/d1", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, asUser(req, "s1", auth.RoleStudent))
	if w.Code != http.StatusForbidden {
		t.Fatalf("got %d, want 403", w.Code)
	}

	// Listing silently scopes to the caller.
	req = httptest.NewRequest("GET", "/?student_id=s2", nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, asUser(req, "s1", auth.RoleStudent))
	if w.Code != http.StatusOK {
		t.Fatalf("list: got %d", w.Code)
	}
	var out []delivery.Delivery
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(out) != 0 {
		t.Fatalf("student saw %d foreign deliveries", len(out))
	}
}

func TestDeliveryReview(t *testing.T) {
	store := newFakeDeliveryStore()
	store.rows["d1"] = delivery.Delivery{ID: "d1", StudentID: "s1", Title: "tarea"}
	students := &fakeStudents{rows: map[string]student.Student{}}
	r := chi.NewRouter()
	MountDeliveries(r, store, students, testGateway(t), nil)

	body := bytes.NewBufferString(`{"stars":4,"comments":"bien"}`)
	req := httptest.NewRequest("PUT", "/d1/review", body)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, asUser(req, "profesor", auth.RoleTeacher))
	if w.Code != http.StatusOK {
		t.Fatalf("review: got %d, body %s", w.Code, w.Body.String())
	}
	if d := store.rows["d1"]; d.Stars != 4 || d.Comments != "bien" {
		t.Fatalf("review not applied: %+v", d)
	}

	// Students hold no review permission.
	req = httptest.NewRequest("PUT", "/d1/review", bytes.NewBufferString(`{"stars":5}`))
	w = httptest.NewRecorder()
	r.ServeHTTP(w, asUser(req, "s1", auth.RoleStudent))
	if w.Code != http.StatusForbidden {
		t.Fatalf("student review: got %d, want 403", w.Code)
	}
}
