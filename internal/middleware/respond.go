package middleware

import (
	"encoding/json"
	"net/http"
)

// writeError writes the API error body {"error": msg}. It mirrors the
// handlers package so middleware rejections look the same to the client.
func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
