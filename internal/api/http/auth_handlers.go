package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"golang.org/x/crypto/bcrypt"

	"github.com/escobedo-lab/school/internal/auth"
	"github.com/escobedo-lab/school/internal/student"
)

type loginReq struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type tokenResp struct {
	AccessToken string `json:"access_token"`
	Role        string `json:"role"`
	Name        string `json:"name,omitempty"`
}

// TeacherLoginHandler checks the single staff account configured at startup.
func TeacherLoginHandler(adminUser, adminPassHash string, svc *auth.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		if req.Username != adminUser ||
			bcrypt.CompareHashAndPassword([]byte(adminPassHash), []byte(req.Password)) != nil {
			http.Error(w, "invalid credentials", http.StatusUnauthorized)
			return
		}
		tok, err := svc.Issue(req.Username, auth.RoleTeacher, "")
		if err != nil {
			http.Error(w, "issue token", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, tokenResp{AccessToken: tok, Role: auth.RoleTeacher})
	}
}

type studentAuthStore interface {
	GetByUsername(ctx context.Context, username string) (student.Student, error)
}

// StudentLoginHandler checks a student row. Inactive accounts cannot log in.
func StudentLoginHandler(store studentAuthStore, svc *auth.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		st, err := store.GetByUsername(r.Context(), req.Username)
		if errors.Is(err, student.ErrNotFound) {
			http.Error(w, "invalid credentials", http.StatusUnauthorized)
			return
		}
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if !st.Active ||
			bcrypt.CompareHashAndPassword([]byte(st.PasswordHash), []byte(req.Password)) != nil {
			http.Error(w, "invalid credentials", http.StatusUnauthorized)
			return
		}
		tok, err := svc.Issue(st.ID, auth.RoleStudent, st.FullName)
		if err != nil {
			http.Error(w, "issue token", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, tokenResp{AccessToken: tok, Role: auth.RoleStudent, Name: st.FullName})
	}
}
