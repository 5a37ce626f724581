package web

import (
	"encoding/json"
	"net/http"
)

func respondJSON(w http.ResponseWriter, r *http.Request, code int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, r *http.Request, code int, message string) {
	respondJSON(w, r, code, map[string]string{"error": message})
}
