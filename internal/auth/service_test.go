package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/escobedo-lab/school/internal/rbac"
)

func TestIssueParseRoundTrip(t *testing.T) {
	s := NewService("test-secret")
	tok, err := s.Issue("alumno-1", RoleStudent, "Ana López")
	if err != nil {
		t.Fatal(err)
	}
	c, err := s.Parse(tok)
	if err != nil {
		t.Fatal(err)
	}
	if c.Sub != "alumno-1" || c.Role != RoleStudent || c.Name != "Ana López" {
		t.Fatalf("claims = %+v", c)
	}
}

func TestParseRejectsWrongSecret(t *testing.T) {
	tok, err := NewService("secret-a").Issue("u", RoleTeacher, "")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := NewService("secret-b").Parse(tok); err == nil {
		t.Fatal("expected error for token signed with another secret")
	}
}

func TestMiddleware(t *testing.T) {
	s := NewService("test-secret")
	var gotSub, gotRole string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotSub = SubjectFromContext(r.Context())
		gotRole = rbac.RoleFromContext(r.Context())
	})
	h := Middleware(s)(next)

	// No token.
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("no token: status = %d, want 401", rec.Code)
	}

	// Valid token.
	tok, _ := s.Issue("prof-1", RoleTeacher, "")
	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("valid token: status = %d, want 200", rec.Code)
	}
	if gotSub != "prof-1" || gotRole != RoleTeacher {
		t.Fatalf("context sub=%q role=%q", gotSub, gotRole)
	}
}
