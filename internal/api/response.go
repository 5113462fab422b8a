// internal/api/response.go
package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"

	custom_errors "oss-tldr/internal/errors"
)

// respondWithJSON writes payload as a JSON response with the given status code.
func respondWithJSON(w http.ResponseWriter, code int, payload any) {
	response, err := json.Marshal(payload)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

// respondWithError writes {"error": message}.
func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, map[string]string{"error": message})
}

// statusFor maps a domain error to an HTTP status and a client-facing message.
func statusFor(err error) (int, string) {
	var (
		tfErr        *custom_errors.InvalidTimeframeError
		formatErr    *custom_errors.ErrInvalidRepoFormat
		notAccessErr *custom_errors.RepositoryNotAccessibleError
		pipelineErr  *custom_errors.PipelineError
		validateErr  validator.ValidationErrors
	)
	switch {
	case errors.As(err, &tfErr), errors.As(err, &formatErr), errors.As(err, &notAccessErr), errors.As(err, &validateErr):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, custom_errors.ErrDependencyMissing):
		return http.StatusConflict, err.Error()
	case errors.Is(err, custom_errors.ErrGroupNotFound):
		return http.StatusNotFound, err.Error()
	case errors.Is(err, custom_errors.ErrGroupReadOnly):
		return http.StatusForbidden, err.Error()
	case errors.As(err, &pipelineErr):
		return http.StatusBadGateway, err.Error()
	default:
		return http.StatusInternalServerError, "Internal server error"
	}
}

// respondWithDomainError logs server-side failures and writes the mapped error.
func respondWithDomainError(w http.ResponseWriter, logger *slog.Logger, err error) {
	code, message := statusFor(err)
	if code >= http.StatusInternalServerError {
		logger.Error("Request failed", "status", code, "error", err)
	} else {
		logger.Info("Request rejected", "status", code, "error", err)
	}
	respondWithError(w, code, message)
}
