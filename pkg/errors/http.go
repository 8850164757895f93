package errors

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/render"
)

// Response is the JSON body rendered for failed requests.
type Response struct {
	Error   string                 `json:"error"`
	Code    ErrorCode              `json:"code,omitempty"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// Render writes err as JSON using the status mapped from its code. Errors without
// a code are logged and reported as a generic 500.
func Render(w http.ResponseWriter, r *http.Request, err error) {
	code := GetCode(err)
	status := MapErrorCodeToHTTPStatus(code)
	if status == http.StatusInternalServerError {
		slog.Error("Request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		render.Status(r, status)
		render.JSON(w, r, Response{Error: "Internal server error", Code: ErrCodeInternal})
		return
	}
	render.Status(r, status)
	render.JSON(w, r, Response{
		Error:   GetMessage(err, http.StatusText(status)),
		Code:    code,
		Details: GetDetails(err),
	})
}

// RenderMessage writes a plain error message with the given status.
func RenderMessage(w http.ResponseWriter, r *http.Request, status int, message string) {
	render.Status(r, status)
	render.JSON(w, r, Response{Error: message})
}
