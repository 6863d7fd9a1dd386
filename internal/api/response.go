package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/elskow/registry-auth/internal/apperror"
	"github.com/elskow/registry-auth/internal/common"
)

type errorBody struct {
	Status  string `json:"status"`
	Error   string `json:"error"`
	Message string `json:"message"`
}

// Meta describes the page a list response was cut from.
type Meta struct {
	Page     int `json:"page"`
	PageSize int `json:"page_size"`
	Count    int `json:"count"`
}

func WriteJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}

func WriteSuccess(w http.ResponseWriter, statusCode int, data any) {
	WriteJSON(w, statusCode, map[string]any{
		"status": "success",
		"data":   data,
	})
}

func WriteList[T any](w http.ResponseWriter, items []T, page common.Pagination) {
	WriteJSON(w, http.StatusOK, map[string]any{
		"status": "success",
		"data":   items,
		"meta": Meta{
			Page:     derefOr(page.Page, 1),
			PageSize: page.Limit(),
			Count:    len(items),
		},
	})
}

// WriteError renders err. ServiceErrors keep their code; anything else is
// logged and reported as an internal error.
func WriteError(w http.ResponseWriter, log *zap.Logger, err error) {
	var serviceErr apperror.ServiceError
	if !errors.As(err, &serviceErr) {
		log.Error("unhandled error", zap.Error(err))
		serviceErr = apperror.InternalError
	}

	WriteJSON(w, StatusCode(serviceErr), errorBody{
		Status:  "error",
		Error:   string(serviceErr),
		Message: strings.ReplaceAll(serviceErr.Reason(), "_", " "),
	})
}

// StatusCode maps a service error onto an HTTP status by its reason suffix.
func StatusCode(err apperror.ServiceError) int {
	reason := err.Reason()
	switch {
	case reason == "not_found":
		return http.StatusNotFound
	case reason == "incorrect", reason == "unauthorized":
		return http.StatusUnauthorized
	case reason == "already_updated":
		return http.StatusPreconditionFailed
	case reason == "precondition_required":
		return http.StatusPreconditionRequired
	case strings.HasSuffix(reason, "_exists"), reason == "exists":
		return http.StatusConflict
	case strings.HasSuffix(reason, "_invalid"), reason == "invalid":
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func derefOr(v *int, fallback int) int {
	if v == nil {
		return fallback
	}
	return *v
}
