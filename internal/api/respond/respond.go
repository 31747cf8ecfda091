// Package respond provides shared JSON response utilities for API handlers.
package respond

import (
	"encoding/json"
	"net/http"
)

// ErrorResponse is the standard error shape for all API errors.
type ErrorResponse struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
		Detail  string `json:"detail,omitempty"`
	} `json:"error"`
}

// Error codes returned by the API.
const (
	CodeBadRequest     = "BAD_REQUEST"
	CodeMissingTeams   = "MISSING_TEAMS"
	CodeTeamNotFound   = "TEAM_NOT_FOUND"
	CodeAmbiguous      = "AMBIGUOUS_TEAM"
	CodeRoundNotFound  = "ROUND_NOT_FOUND"
	CodeDBUnavailable  = "DB_UNAVAILABLE"
	CodeRateLimited    = "RATE_LIMITED"
	CodeRequestAborted = "REQUEST_ABORTED"
)

// WriteError sends a structured JSON error response.
func WriteError(w http.ResponseWriter, status int, code, message string) {
	WriteErrorDetail(w, status, code, message, "")
}

// WriteErrorDetail sends a structured error with additional detail.
func WriteErrorDetail(w http.ResponseWriter, status int, code, message, detail string) {
	resp := ErrorResponse{}
	resp.Error.Code = code
	resp.Error.Message = message
	resp.Error.Detail = detail
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	WriteJSONObject(w, status, resp)
}

// WriteJSONObject marshals a Go value to JSON and writes it.
func WriteJSONObject(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
