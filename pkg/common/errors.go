package common

import (
	"errors"
	"net/http"
	"strings"
)

var (
	ErrValidation  = errors.New("validation failed")
	ErrNotFound    = errors.New("not found")
	ErrForbidden   = errors.New("forbidden")
	ErrUpload      = errors.New("media upload failed")
	ErrPersistence = errors.New("storage failure")
)

// StatusCode maps an error chain to the HTTP status the client receives.
func StatusCode(err error) int {
	switch {
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// PublicMessage hides everything except client mistakes. Upload and storage
// failures are reported as an opaque server error.
func PublicMessage(err error) string {
	if StatusCode(err) == http.StatusInternalServerError {
		return "internal server error"
	}
	// Drop the layer prefixes ("post/service: ...") so only the cause is shown.
	msg := err.Error()
	for _, sentinel := range []error{ErrValidation, ErrNotFound, ErrForbidden} {
		if i := strings.Index(msg, sentinel.Error()); i >= 0 {
			return msg[i:]
		}
	}
	return msg
}

func WriteErr(w http.ResponseWriter, err error) {
	WriteMsg(w, PublicMessage(err), StatusCode(err))
}
