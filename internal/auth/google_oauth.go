package auth

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	authmw "github.com/knowledge-challenge/quiz-platform/internal/auth/middleware"
	"github.com/knowledge-challenge/quiz-platform/internal/config"
)

// Federated sign-in: /api/auth/google sends the browser to Google's consent
// screen, /api/auth/google/callback exchanges the code, verifies the id_token,
// upserts the account and redirects back to the frontend with a ?token= query
// parameter the SPA stores exactly like a password login token.

func GoogleLoginHandler(cfg config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		state := fmt.Sprintf("s-%d", time.Now().UnixNano())
		http.SetCookie(w, &http.Cookie{
			Name:     "qc_oauth_state",
			Value:    state,
			Path:     "/",
			HttpOnly: true,
			Secure:   true,
			SameSite: http.SameSiteLaxMode,
			Expires:  time.Now().Add(10 * time.Minute),
		})

		q := url.Values{}
		q.Set("client_id", cfg.GoogleClientID)
		q.Set("redirect_uri", cfg.GoogleRedirectURI)
		q.Set("response_type", "code")
		q.Set("scope", "openid email profile")
		q.Set("state", state)
		http.Redirect(w, r, "https://accounts.google.com/o/oauth2/v2/auth?"+q.Encode(), http.StatusFound)
	}
}

func GoogleCallbackHandler(a *authmw.AuthService, db *sql.DB, cfg config.Config) http.HandlerFunc {
	type tokenResp struct {
		AccessToken string `json:"access_token"`
		IdToken     string `json:"id_token"`
	}
	type tokenInfo struct {
		Iss     string `json:"iss"`
		Aud     string `json:"aud"`
		Sub     string `json:"sub"`
		Email   string `json:"email"`
		Name    string `json:"name"`
		Picture string `json:"picture"`
	}

	return func(w http.ResponseWriter, r *http.Request) {
		state := r.URL.Query().Get("state")
		if c, err := r.Cookie("qc_oauth_state"); err != nil || state == "" || c.Value != state {
			http.Error(w, "bad state", http.StatusBadRequest)
			return
		}
		code := r.URL.Query().Get("code")
		if code == "" {
			http.Error(w, "missing code", http.StatusBadRequest)
			return
		}

		form := url.Values{}
		form.Set("code", code)
		form.Set("client_id", cfg.GoogleClientID)
		form.Set("client_secret", cfg.GoogleClientSecret)
		form.Set("redirect_uri", cfg.GoogleRedirectURI)
		form.Set("grant_type", "authorization_code")

		resp, err := http.PostForm("https://oauth2.googleapis.com/token", form)
		if err != nil {
			http.Error(w, "token exchange error", http.StatusBadGateway)
			return
		}
		defer resp.Body.Close()
		var tr tokenResp
		if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil || tr.IdToken == "" {
			http.Error(w, "bad token response", http.StatusBadGateway)
			return
		}

		// Server-side verification via Google's tokeninfo endpoint.
		tiResp, err := http.Get("https://oauth2.googleapis.com/tokeninfo?id_token=" + url.QueryEscape(tr.IdToken))
		if err != nil {
			http.Error(w, "tokeninfo fetch error", http.StatusBadGateway)
			return
		}
		defer tiResp.Body.Close()
		var ti tokenInfo
		if err := json.NewDecoder(tiResp.Body).Decode(&ti); err != nil {
			http.Error(w, "tokeninfo parse error", http.StatusBadGateway)
			return
		}
		if ti.Aud != cfg.GoogleClientID {
			http.Error(w, "invalid aud", http.StatusUnauthorized)
			return
		}
		if ti.Iss != "accounts.google.com" && ti.Iss != "https://accounts.google.com" {
			http.Error(w, "invalid iss", http.StatusUnauthorized)
			return
		}

		userID, err := upsertGoogleUser(db, ti.Sub, ti.Email, ti.Name, ti.Picture)
		if err != nil {
			http.Error(w, "user upsert failed", http.StatusInternalServerError)
			return
		}

		tok, err := a.IssueToken(userID)
		if err != nil {
			http.Error(w, "issue token", http.StatusInternalServerError)
			return
		}

		http.SetCookie(w, &http.Cookie{Name: "qc_oauth_state", Value: "", Path: "/", Expires: time.Unix(0, 0), MaxAge: -1})

		target := strings.TrimSuffix(cfg.FrontendURL, "/")
		if target == "" {
			target = "/"
		}
		u, err := url.Parse(target)
		if err != nil {
			http.Error(w, "bad frontend url", http.StatusInternalServerError)
			return
		}
		q := u.Query()
		q.Set("token", tok)
		u.RawQuery = q.Encode()
		http.Redirect(w, r, u.String(), http.StatusFound)
	}
}

func upsertGoogleUser(db *sql.DB, googleID, email, name, picture string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	first, last := splitName(name)

	var id string
	err := db.QueryRow(`SELECT id FROM users WHERE email=$1`, email).Scan(&id)
	switch {
	case err == nil:
		_, err = db.Exec(`UPDATE users SET google_id=$1, profile_picture=$2 WHERE id=$3`, googleID, picture, id)
		return id, err
	case errors.Is(err, sql.ErrNoRows):
		id = uuid.NewString()
		_, err = db.Exec(
			`INSERT INTO users (id, email, first_name, last_name, google_id, profile_picture, created_at)
			 VALUES ($1,$2,$3,$4,$5,$6,$7)`,
			id, email, first, last, googleID, picture, time.Now().Unix())
		return id, err
	default:
		return "", err
	}
}

func splitName(name string) (first, last string) {
	parts := strings.Fields(name)
	if len(parts) == 0 {
		return "", ""
	}
	if len(parts) == 1 {
		return parts[0], ""
	}
	return parts[0], strings.Join(parts[1:], " ")
}
