package auth

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// AuthService mints and verifies the signed, time-limited credentials the
// frontend stores after login. Tokens ride in the custom "auth-token" request
// header rather than a Bearer scheme.
type AuthService struct{ hmac []byte }

func NewAuthService(secret string) *AuthService { return &AuthService{hmac: []byte(secret)} }

type Claims struct {
	UserID string `json:"_id"`
	jwt.RegisteredClaims
}

const tokenTTL = time.Hour

func (a *AuthService) IssueToken(userID string) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "quiz-platform",
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL)),
		},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(a.hmac)
}

func (a *AuthService) Parse(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return a.hmac, nil
	})
	if err != nil || !token.Valid {
		return nil, err
	}
	c, _ := token.Claims.(*Claims)
	return c, nil
}

// TokenMiddleware guards a route group: it reads the auth-token header,
// verifies the JWT and attaches the user ID to the request context. A missing
// or expired token forces the client back through login.
func TokenMiddleware(a *AuthService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := r.Header.Get("auth-token")
			if token == "" {
				unauthorized(w, "No token, authorization denied")
				return
			}
			claims, err := a.Parse(token)
			if err != nil || claims == nil || claims.UserID == "" {
				unauthorized(w, "Token is not valid")
				return
			}
			next.ServeHTTP(w, r.WithContext(WithSubject(r.Context(), claims.UserID)))
		})
	}
}

func unauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{"msg": msg})
}
