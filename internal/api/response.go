package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/erazemk/resell/internal/sales"
)

// jsonResponse writes a JSON response with the given status code.
func jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			slog.Error("error encoding response", "error", err)
		}
	}
}

// jsonError writes a JSON error response.
func jsonError(w http.ResponseWriter, status int, message string) {
	jsonResponse(w, status, map[string]string{"error": message})
}

// engineError maps sales engine error kinds to HTTP responses. Persistence
// failures are logged and reported without detail.
func engineError(w http.ResponseWriter, err error, action string) {
	switch {
	case errors.Is(err, sales.ErrInvalidInput):
		jsonError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, sales.ErrNotFound):
		jsonError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, sales.ErrInsufficientStock):
		jsonError(w, http.StatusBadRequest, err.Error())
	default:
		slog.Error("failed to "+action, "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to "+action)
	}
}

// decodeJSON decodes a JSON request body into the given target. Unknown
// fields are rejected.
func decodeJSON(r *http.Request, target any) error {
	defer r.Body.Close()
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(target)
}

// pathID parses the {id} path value.
func pathID(r *http.Request) (int64, error) {
	return strconv.ParseInt(r.PathValue("id"), 10, 64)
}

// queryID parses an optional positive integer query parameter; absent is 0.
func queryID(r *http.Request, name string) (int64, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return 0, nil
	}
	id, err := strconv.ParseInt(v, 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.New("invalid " + name)
	}
	return id, nil
}
