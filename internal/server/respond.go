package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/xavrousseau/datalyzer/internal/dataset"
)

type errorBody struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encode response", "error", err)
	}
}

// writeError maps the typed domain errors onto HTTP status codes. Unknown
// errors are logged and reported as 500 without leaking internals.
func writeError(w http.ResponseWriter, err error) {
	var (
		notFound    *dataset.NotFoundError
		noActive    *dataset.NoActiveTableError
		duplicate   *dataset.DuplicateNameError
		parse       *dataset.ParseError
		unsupported *dataset.UnsupportedFormatError
		badSpec     *dataset.InvalidJoinSpecError
		badArg      *dataset.InvalidArgumentError
		joinFail    *dataset.JoinExecutionError
	)
	status := http.StatusInternalServerError
	switch {
	case errors.As(err, &notFound), errors.As(err, &noActive):
		status = http.StatusNotFound
	case errors.As(err, &duplicate):
		status = http.StatusConflict
	case errors.As(err, &parse), errors.As(err, &unsupported),
		errors.As(err, &badSpec), errors.As(err, &badArg):
		status = http.StatusBadRequest
	case errors.As(err, &joinFail):
		status = http.StatusUnprocessableEntity
	default:
		slog.Error("internal error", "error", err)
	}
	writeJSON(w, status, errorBody{Error: err.Error()})
}

func decodeBody(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return &dataset.InvalidArgumentError{Reason: "malformed request body: " + err.Error()}
	}
	return nil
}
