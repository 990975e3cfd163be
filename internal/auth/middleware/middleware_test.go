package auth_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	auth "github.com/knowledge-challenge/quiz-platform/internal/auth/middleware"
)

func TestIssueAndParseRoundTrip(t *testing.T) {
	svc := auth.NewAuthService("secret")
	tok, err := svc.IssueToken("user-42")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	claims, err := svc.Parse(tok)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.UserID != "user-42" {
		t.Fatalf("want user-42, got %q", claims.UserID)
	}
}

func TestParseRejectsWrongSecret(t *testing.T) {
	tok, err := auth.NewAuthService("secret-a").IssueToken("user-42")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := auth.NewAuthService("secret-b").Parse(tok); err == nil {
		t.Fatal("expected parse failure with a different secret")
	}
}

func TestTokenMiddleware(t *testing.T) {
	svc := auth.NewAuthService("secret")
	var gotSubject string
	h := auth.TokenMiddleware(svc)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotSubject = auth.SubjectFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	// missing header
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("missing token: want 401, got %d", rec.Code)
	}
	var body map[string]string
	_ = json.NewDecoder(rec.Body).Decode(&body)
	if body["msg"] != "No token, authorization denied" {
		t.Fatalf("unexpected body: %v", body)
	}

	// garbage token
	rec = httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("auth-token", "bogus")
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("bogus token: want 401, got %d", rec.Code)
	}

	// valid token
	tok, _ := svc.IssueToken("user-7")
	rec = httptest.NewRecorder()
	req = httptest.NewRequest("GET", "/", nil)
	req.Header.Set("auth-token", tok)
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("valid token: want 200, got %d", rec.Code)
	}
	if gotSubject != "user-7" {
		t.Fatalf("subject not attached: %q", gotSubject)
	}
}
