package http

import (
	"encoding/json"
	"net/http"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// fieldError is the per-field validation failure shape the registration form
// understands: it attaches the message to a specific input.
func fieldError(w http.ResponseWriter, status int, field, message string) {
	writeJSON(w, status, map[string]string{"field": field, "message": message})
}

// formError is the generic form-level failure shape.
func formError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"message": message})
}
