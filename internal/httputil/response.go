package httputil

import (
	"encoding/json"
	"net/http"

	"github.com/redmonkez12/eats-api/internal/logging"
)

// Machine-readable error codes returned alongside the human message
const (
	CodeInvalidRequestBody = "INVALID_REQUEST_BODY"
	CodeValidationFailed   = "VALIDATION_FAILED"
	CodeAlreadyExists      = "ALREADY_EXISTS"
	CodeNotFound           = "NOT_FOUND"
	CodeWrongCredentials   = "WRONG_CREDENTIALS"
	CodeForbidden          = "FORBIDDEN"
	CodeAlreadyVerified    = "ALREADY_VERIFIED"
	CodeOperationFailed    = "OPERATION_FAILED"
)

// Output is the envelope every account operation answers with
type Output struct {
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
	Code  string `json:"code,omitempty"`
}

// RespondJSON sends a JSON response with the given status code.
// Encoding errors are logged through the request logger.
func RespondJSON(w http.ResponseWriter, r *http.Request, data any, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logging.GetLoggerFromContext(r.Context()).Error("failed to encode JSON response", "error", err)
	}
}

// RespondOK sends {"ok": true}
func RespondOK(w http.ResponseWriter, r *http.Request) {
	RespondJSON(w, r, Output{OK: true}, http.StatusOK)
}

// RespondError sends {"ok": false, "error": message, "code": code}
func RespondError(w http.ResponseWriter, r *http.Request, message, code string, statusCode int) {
	RespondJSON(w, r, Output{Error: message, Code: code}, statusCode)
}
