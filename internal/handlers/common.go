package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"tripshare-backend/internal/middleware"
	"tripshare-backend/internal/services"

	"github.com/rs/zerolog/log"
)

// maxBodyBytes bounds JSON request bodies
const maxBodyBytes = 1 << 20

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error string `json:"error"`
}

// DataResponse wraps a successful response payload
type DataResponse struct {
	Data interface{} `json:"data"`
}

// ListResponse is a page of results with the total count
type ListResponse struct {
	Items interface{} `json:"items"`
	Total int         `json:"total"`
}

// respondError sends an error response
func respondError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(ErrorResponse{Error: message})
}

// respondJSON sends data wrapped in a DataResponse
func respondJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(DataResponse{Data: data}); err != nil {
		log.Error().Err(err).Msg("Failed to encode response")
	}
}

// statusFor maps service errors to HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, services.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, services.ErrForbidden), errors.Is(err, services.ErrBanned):
		return http.StatusForbidden
	case errors.Is(err, services.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// respondServiceError logs err and sends the matching status. Internal errors
// are not echoed to the client.
func respondServiceError(w http.ResponseWriter, r *http.Request, err error, msg string) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		log.Error().
			Err(err).
			Str("user_id", middleware.GetUserID(r.Context())).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Msg(msg)
		respondError(w, "Internal server error", status)
		return
	}

	log.Debug().
		Err(err).
		Str("user_id", middleware.GetUserID(r.Context())).
		Int("status", status).
		Msg(msg)
	respondError(w, err.Error(), status)
}

// decodeJSON decodes a bounded JSON body into v, answering 400 on failure
func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return false
	}
	return true
}

// pagination parses limit and offset query parameters. Invalid values fall
// back to zero and services apply their defaults.
func pagination(r *http.Request) (limit, offset int) {
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if parsed, err := strconv.Atoi(limitStr); err == nil {
			limit = parsed
		}
	}
	if offsetStr := r.URL.Query().Get("offset"); offsetStr != "" {
		if parsed, err := strconv.Atoi(offsetStr); err == nil {
			offset = parsed
		}
	}
	return limit, offset
}
