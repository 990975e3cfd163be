package http

import (
	"database/sql"
	"errors"
	"net/http"

	authmw "github.com/knowledge-challenge/quiz-platform/internal/auth/middleware"
)

// MeHandler returns the authenticated user's profile, password hash excluded.
func MeHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := authmw.SubjectFromContext(r.Context())
		if userID == "" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"msg": "No token, authorization denied"})
			return
		}

		var (
			email, first, last string
			picture            sql.NullString
		)
		err := db.QueryRowContext(r.Context(),
			`SELECT email, first_name, last_name, profile_picture FROM users WHERE id=$1`, userID).
			Scan(&email, &first, &last, &picture)
		if errors.Is(err, sql.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"msg": "User not found"})
			return
		}
		if err != nil {
			formError(w, http.StatusInternalServerError, "Server error.")
			return
		}

		writeJSON(w, http.StatusOK, map[string]string{
			"id":             userID,
			"email":          email,
			"firstName":      first,
			"lastName":       last,
			"profilePicture": picture.String,
		})
	}
}
