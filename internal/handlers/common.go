package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"recycle-backend/internal/apperror"
	"recycle-backend/internal/middleware"
	"recycle-backend/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

const (
	maxUploadSize = 32 << 20
	maxImageSize  = 10 << 20
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error string `json:"error"`
}

// MessageResponse carries a plain message
type MessageResponse struct {
	Message string `json:"message"`
}

// respondError sends an error response
func respondError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(ErrorResponse{Error: message})
}

// respondJSON sends a JSON response
func respondJSON(w http.ResponseWriter, statusCode int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Error().Err(err).Msg("Failed to encode response")
	}
}

// statusFor maps an error kind to its HTTP status
func statusFor(err error) int {
	switch {
	case errors.Is(err, apperror.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperror.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, apperror.ErrInvalidArgument):
		return http.StatusBadRequest
	case errors.Is(err, apperror.ErrUpstream):
		return http.StatusBadGateway
	case errors.Is(err, apperror.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, apperror.ErrUnauthorized):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// respondServiceError logs a failed operation and answers with the mapped status.
// Internal errors are reported with the generic message only.
func respondServiceError(w http.ResponseWriter, r *http.Request, err error, message string) {
	status := statusFor(err)
	userID, _ := middleware.GetUserID(r.Context())

	event := log.Warn()
	if status == http.StatusInternalServerError {
		event = log.Error()
	}
	event.Err(err).Int64("user_id", userID).Str("path", r.URL.Path).Msg(message)

	if status == http.StatusInternalServerError {
		respondError(w, message, status)
		return
	}
	respondError(w, err.Error(), status)
}

// currentUser returns the authenticated user ID or answers 401
func currentUser(w http.ResponseWriter, r *http.Request) (int64, bool) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		respondError(w, "Not authenticated", http.StatusUnauthorized)
		return 0, false
	}
	return userID, true
}

// pathID parses a numeric URL parameter or answers 400
func pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil {
		respondError(w, "Invalid "+name, http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

// pagination reads skip and limit, defaulting to 0 and the service default
func pagination(w http.ResponseWriter, r *http.Request) (skip, limit int, ok bool) {
	skip, limit = 0, services.DefaultLimit
	q := r.URL.Query()
	if v := q.Get("skip"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			respondError(w, "Invalid skip", http.StatusBadRequest)
			return 0, 0, false
		}
		skip = n
	}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			respondError(w, "Invalid limit", http.StatusBadRequest)
			return 0, 0, false
		}
		limit = n
	}
	return skip, limit, true
}

// optionalID reads an optional numeric query parameter
func optionalID(w http.ResponseWriter, r *http.Request, name string) (*int64, bool) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return nil, true
	}
	id, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		respondError(w, "Invalid "+name, http.StatusBadRequest)
		return nil, false
	}
	return &id, true
}

// decodeJSON reads the body into dst or answers 400
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return false
	}
	return true
}

// parseMultipart parses a multipart form or answers 400
func parseMultipart(w http.ResponseWriter, r *http.Request) bool {
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		respondError(w, "Failed to parse multipart form", http.StatusBadRequest)
		return false
	}
	return true
}

// formFiles reads every uploaded file under field into memory
func formFiles(r *http.Request, field string) ([]services.ImageFile, error) {
	if r.MultipartForm == nil {
		return nil, nil
	}
	headers := r.MultipartForm.File[field]
	files := make([]services.ImageFile, 0, len(headers))
	for _, fh := range headers {
		f, err := readFile(fh)
		if err != nil {
			return nil, err
		}
		files = append(files, f)
	}
	return files, nil
}

func readFile(fh *multipart.FileHeader) (services.ImageFile, error) {
	if fh.Size > maxImageSize {
		return services.ImageFile{}, apperror.Invalid("file %s is too large", fh.Filename)
	}
	f, err := fh.Open()
	if err != nil {
		return services.ImageFile{}, apperror.Invalid("failed to open file %s", fh.Filename)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return services.ImageFile{}, apperror.Invalid("failed to read file %s", fh.Filename)
	}

	contentType := fh.Header.Get("Content-Type")
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = http.DetectContentType(data)
	}
	return services.ImageFile{Filename: fh.Filename, ContentType: contentType, Data: data}, nil
}

// formInt64 reads an optional numeric form value
func formInt64(r *http.Request, field string) (*int64, error) {
	v := r.FormValue(field)
	if v == "" {
		return nil, nil
	}
	id, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return nil, apperror.Invalid("%s must be a number", field)
	}
	return &id, nil
}

// formString returns a pointer to a form value when the field is present
func formString(r *http.Request, field string) *string {
	if r.MultipartForm != nil {
		if vs, ok := r.MultipartForm.Value[field]; ok && len(vs) > 0 {
			return &vs[0]
		}
	}
	return nil
}
