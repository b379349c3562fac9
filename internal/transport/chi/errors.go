package chi

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/kailas-cloud/recipeq/internal/domain"
)

// ErrorCode is the machine-readable code of an error response.
type ErrorCode string

// Error codes.
const (
	CodeBadRequest            ErrorCode = "bad_request"
	CodeNotFound              ErrorCode = "not_found"
	CodeUnauthorized          ErrorCode = "unauthorized"
	CodeUnsupportedMediaType  ErrorCode = "unsupported_media_type"
	CodeMalformedQuery        ErrorCode = "malformed_query"
	CodeObjectNotExist        ErrorCode = "object_not_exist"
	CodeObjectMatch           ErrorCode = "object_match"
	CodeFieldNotExist         ErrorCode = "field_not_exist"
	CodeValueType             ErrorCode = "value_type"
	CodeOperatorNotApplicable ErrorCode = "operator_not_applicable"
	CodeResultNotFound        ErrorCode = "result_not_found"
	CodeRecipeNotFound        ErrorCode = "recipe_not_found"
	CodeRecipeExists          ErrorCode = "recipe_exists"
	CodeValidationFailed      ErrorCode = "validation_failed"
	CodeInternalError         ErrorCode = "internal_error"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

func defaultErrorHandlers() []errorHandler {
	return []errorHandler{
		sentinelHandler(domain.ErrMalformedQuery, http.StatusBadRequest, CodeMalformedQuery),
		sentinelHandler(domain.ErrObjectNotExist, http.StatusBadRequest, CodeObjectNotExist),
		sentinelHandler(domain.ErrObjectMatch, http.StatusBadRequest, CodeObjectMatch),
		sentinelHandler(domain.ErrFieldNotExist, http.StatusBadRequest, CodeFieldNotExist),
		sentinelHandler(domain.ErrValueType, http.StatusBadRequest, CodeValueType),
		sentinelHandler(domain.ErrOperatorNotApplicable, http.StatusBadRequest, CodeOperatorNotApplicable),
		sentinelHandler(domain.ErrRecipeNotFound, http.StatusNotFound, CodeRecipeNotFound),
		sentinelHandler(domain.ErrRecipeExists, http.StatusBadRequest, CodeRecipeExists),
		sentinelHandler(domain.ErrInvalidRecipe, http.StatusBadRequest, CodeValidationFailed),
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorCode, message string) {
	writeJSON(w, status, ErrorResponse{Code: code, Message: message})
}

// safeDomainMessage returns a client-facing message without exposing internals.
// Query errors keep the offending clause; validation errors keep their detail
// since both only echo what the client sent.
func safeDomainMessage(err error) string {
	if domain.IsQueryError(err) {
		var ce *domain.ClauseError
		if errors.As(err, &ce) {
			return ce.Error()
		}
		for _, s := range domain.QueryErrors() {
			if errors.Is(err, s) {
				return s.Error()
			}
		}
	}
	if errors.Is(err, domain.ErrInvalidRecipe) {
		return err.Error()
	}
	for _, s := range []error{domain.ErrRecipeNotFound, domain.ErrRecipeExists} {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code ErrorCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	log := s.log(r)
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			log.Warn("domain error", zap.Error(err))
			return
		}
	}
	log.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, CodeInternalError, "internal error")
}
