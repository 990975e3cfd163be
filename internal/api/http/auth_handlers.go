package http

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	authmw "github.com/knowledge-challenge/quiz-platform/internal/auth/middleware"
	"golang.org/x/crypto/bcrypt"
)

type registerReq struct {
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
	FirstName       string `json:"firstName"`
	LastName        string `json:"lastName"`
}

// RegisterHandler creates an account. Validation failures that belong to a
// single input come back as {field, message} so the form can highlight it;
// everything else is a form-level {message}.
func RegisterHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req registerReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			formError(w, http.StatusBadRequest, "Invalid request body.")
			return
		}
		req.Email = strings.ToLower(strings.TrimSpace(req.Email))

		if req.Email == "" || req.Password == "" || req.ConfirmPassword == "" {
			formError(w, http.StatusBadRequest, "Please fill out all fields.")
			return
		}
		if req.Password != req.ConfirmPassword {
			fieldError(w, http.StatusBadRequest, "confirmPassword", "Passwords do not match.")
			return
		}
		if len(req.Password) < 6 {
			fieldError(w, http.StatusBadRequest, "password", "Password must be at least 6 characters long.")
			return
		}

		var exists int
		err := db.QueryRowContext(r.Context(), `SELECT 1 FROM users WHERE email=$1`, req.Email).Scan(&exists)
		if err == nil {
			fieldError(w, http.StatusBadRequest, "email", "This email is already registered.")
			return
		}
		if !errors.Is(err, sql.ErrNoRows) {
			formError(w, http.StatusInternalServerError, "Server error during registration.")
			return
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), 10)
		if err != nil {
			formError(w, http.StatusInternalServerError, "Server error during registration.")
			return
		}

		first := req.FirstName
		if first == "" {
			// same default the original signup flow used
			first = strings.SplitN(req.Email, "@", 2)[0]
		}

		_, err = db.ExecContext(r.Context(),
			`INSERT INTO users (id, email, password_hash, first_name, last_name, created_at)
			 VALUES ($1,$2,$3,$4,$5,$6)`,
			uuid.NewString(), req.Email, string(hash), first, req.LastName, time.Now().Unix())
		if err != nil {
			formError(w, http.StatusInternalServerError, "Server error during registration.")
			return
		}

		writeJSON(w, http.StatusCreated, map[string]any{
			"success": true,
			"message": "User registered successfully!",
		})
	}
}

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginHandler verifies credentials and mints the auth token. Unknown email
// and wrong password produce the same message on purpose.
func LoginHandler(db *sql.DB, a *authmw.AuthService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			formError(w, http.StatusBadRequest, "Invalid request body.")
			return
		}
		req.Email = strings.ToLower(strings.TrimSpace(req.Email))
		if req.Email == "" || req.Password == "" {
			formError(w, http.StatusBadRequest, "Please provide email and password.")
			return
		}

		var (
			id, first, last string
			hash            sql.NullString
		)
		err := db.QueryRowContext(r.Context(),
			`SELECT id, password_hash, first_name, last_name FROM users WHERE email=$1`, req.Email).
			Scan(&id, &hash, &first, &last)
		if errors.Is(err, sql.ErrNoRows) {
			formError(w, http.StatusBadRequest, "Invalid credentials.")
			return
		}
		if err != nil {
			formError(w, http.StatusInternalServerError, "Server error during login.")
			return
		}
		// Google-only accounts have no password hash.
		if !hash.Valid || hash.String == "" {
			formError(w, http.StatusBadRequest, "Invalid credentials.")
			return
		}
		if bcrypt.CompareHashAndPassword([]byte(hash.String), []byte(req.Password)) != nil {
			formError(w, http.StatusBadRequest, "Invalid credentials.")
			return
		}

		token, err := a.IssueToken(id)
		if err != nil {
			formError(w, http.StatusInternalServerError, "Server error during login.")
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"success": true,
			"token":   token,
			"user": map[string]string{
				"id":        id,
				"email":     req.Email,
				"firstName": first,
				"lastName":  last,
			},
		})
	}
}
