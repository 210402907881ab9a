package util

import (
	"encoding/json"
	"net/http"
)

// ParseJSON decodes a request body into dest.
func ParseJSON(r *http.Request, dest any) error {
	decoder := json.NewDecoder(r.Body)
	return decoder.Decode(dest)
}

// JSONResponse writes data as a JSON response with the given status.
func JSONResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
