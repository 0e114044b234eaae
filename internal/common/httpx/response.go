// Package httpx holds the response helpers and middleware shared by all routes.
package httpx

import (
	"encoding/json"
	"net/http"
)

// WriteJSON encodes v with the given status.
func WriteJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// MessageResponse is a bare informational body, e.g. {"message": "No data found."}.
type MessageResponse struct {
	Message string `json:"message"`
}
