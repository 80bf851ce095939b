package shared

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// Envelope codes. The mini-program client switches on code, not on the HTTP
// status, so every JSON response carries one.
const (
	CodeOK    = 0
	CodeError = 1
)

// Envelope is the standard response wrapper: code 0 for success, nonzero
// for failure, plus a human-readable message. Endpoint-specific fields ride
// along via embedding in the handler's response types.
type Envelope struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
}

// OK builds a success envelope.
func OK(msg string) Envelope {
	return Envelope{Code: CodeOK, Msg: msg}
}

// Fail builds a failure envelope.
func Fail(msg string) Envelope {
	return Envelope{Code: CodeError, Msg: msg}
}

// RespondWithJSON writes a JSON response with the given status code.
func RespondWithJSON(w http.ResponseWriter, r *http.Request, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode JSON response", "error", err)
	}
}

// RespondWithError writes a failure envelope with the given status and
// message.
func RespondWithError(w http.ResponseWriter, r *http.Request, status int, message string) {
	slog.Debug("sending error response",
		"status_code", status,
		"message", message,
		"trace_id", GetTraceID(r.Context()),
		"path", r.URL.Path,
		"method", r.Method)

	RespondWithJSON(w, r, status, Fail(message))
}

// RespondWithErrorAndLog writes a sanitized failure envelope and logs the
// underlying error. The raw error never reaches the client; 5xx responses
// log at ERROR, everything else at DEBUG.
func RespondWithErrorAndLog(
	w http.ResponseWriter,
	r *http.Request,
	status int,
	userMessage string,
	err error,
) {
	logAttrs := []slog.Attr{
		slog.String("trace_id", GetTraceID(r.Context())),
		slog.String("path", r.URL.Path),
		slog.String("method", r.Method),
		slog.Int("status_code", status),
		slog.String("user_message", userMessage),
	}
	if err != nil {
		logAttrs = append(logAttrs, slog.String("error", err.Error()))
	}

	logLevel := slog.LevelDebug
	if status >= http.StatusInternalServerError {
		logLevel = slog.LevelError
	}
	slog.LogAttrs(r.Context(), logLevel, "API error response", logAttrs...)

	RespondWithJSON(w, r, status, Fail(userMessage))
}
