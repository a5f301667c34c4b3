// Package httpx implements the JSON response envelope shared by every API
// endpoint: {success, message, data?, pagination?}.
package httpx

import (
	"encoding/json"
	"net/http"
)

// Pagination describes the slice of a paginated listing.
type Pagination struct {
	Page  int `json:"page"`
	Pages int `json:"pages"`
	Total int `json:"total"`
	Limit int `json:"limit"`
}

// Envelope is the uniform response body for all API endpoints.
type Envelope struct {
	Success    bool        `json:"success"`
	Message    string      `json:"message,omitempty"`
	Data       any         `json:"data,omitempty"`
	Pagination *Pagination `json:"pagination,omitempty"`
}

// JSON writes an arbitrary payload with the given status code.
func JSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// OK writes a successful envelope carrying data.
func OK(w http.ResponseWriter, message string, data any) {
	JSON(w, http.StatusOK, Envelope{Success: true, Message: message, Data: data})
}

// OKPage writes a successful envelope carrying a page of results.
func OKPage(w http.ResponseWriter, data any, p Pagination) {
	JSON(w, http.StatusOK, Envelope{Success: true, Data: data, Pagination: &p})
}

// Fail writes a failed envelope with the given status code and message.
func Fail(w http.ResponseWriter, status int, message string) {
	JSON(w, status, Envelope{Success: false, Message: message})
}

// DecodeJSON decodes the request body into target.
func DecodeJSON(r *http.Request, target any) error {
	return json.NewDecoder(r.Body).Decode(target)
}
