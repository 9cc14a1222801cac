package utils

import (
	"encoding/json"
	"net/http"
)

func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func Error(w http.ResponseWriter, status int, msg string) {
	JSON(w, status, map[string]string{"error": msg})
}

// ErrorDetails is Error plus a diagnostic string, used for 500s.
func ErrorDetails(w http.ResponseWriter, status int, msg, details string) {
	JSON(w, status, map[string]string{"error": msg, "details": details})
}
