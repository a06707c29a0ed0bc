package api

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// Error is a non-2xx response from the backend API. Message carries the
// remote error text verbatim, which is what gets shown to the user.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// Code exposes the HTTP status class for log classification.
func (e *Error) Code() string {
	return fmt.Sprintf("API_%d", e.Status)
}

// errorFromResponse decodes the API's error payload. The backend answers
// with {"error": "..."} (sometimes {"message": "..."}); anything else falls
// back to the HTTP status text.
func errorFromResponse(resp *http.Response) *Error {
	apiErr := &Error{Status: resp.StatusCode}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err == nil && len(body) > 0 {
		var payload struct {
			Error   string `json:"error"`
			Message string `json:"message"`
		}
		if json.Unmarshal(body, &payload) == nil {
			if payload.Error != "" {
				apiErr.Message = payload.Error
			} else if payload.Message != "" {
				apiErr.Message = payload.Message
			}
		}
	}
	if strings.TrimSpace(apiErr.Message) == "" {
		apiErr.Message = http.StatusText(resp.StatusCode)
	}
	return apiErr
}
