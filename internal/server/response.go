package server

import (
	"encoding/json"
	"errors"
	"net/http"

	apperrors "github.com/matzehuels/seqflow/pkg/errors"
	"github.com/matzehuels/seqflow/pkg/graph"
	"github.com/matzehuels/seqflow/pkg/observability"
	"github.com/matzehuels/seqflow/pkg/sequence"
)

// errorBody is the JSON error envelope.
type errorBody struct {
	Code  string `json:"code"`
	Error string `json:"error"`
}

// formatErrorBody adds the empty graph to the envelope.
type formatErrorBody struct {
	Code  string       `json:"code"`
	Error string       `json:"error"`
	Nodes []graph.Node `json:"nodes"`
	Edges []graph.Edge `json:"edges"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

// writeError maps err to a status code and writes the error envelope.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		writeErrorMessage(w, http.StatusRequestEntityTooLarge, string(apperrors.ErrCodeInvalidInput),
			"request body too large")
		return
	}

	status := apperrors.HTTPStatus(err)
	code := string(apperrors.GetCode(err))
	if code == "" {
		code = string(apperrors.ErrCodeInternal)
	}

	if status >= 500 {
		observability.HTTP().OnError(r.Context(), r.Method, r.URL.Path, err)
		s.logger.Error("request failed", "path", r.URL.Path, "error", err,
			"request_id", RequestIDFrom(r.Context()))
	}

	if sequence.IsFormatError(err) {
		empty := graph.Empty()
		writeJSON(w, status, formatErrorBody{
			Code:  code,
			Error: formatMessage(err),
			Nodes: empty.Nodes,
			Edges: empty.Edges,
		})
		return
	}

	msg := apperrors.UserMessage(err)
	if status >= 500 {
		msg = "internal error"
	}
	writeJSON(w, status, errorBody{Code: code, Error: msg})
}

func writeErrorMessage(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, errorBody{Code: code, Error: msg})
}

// formatMessage renders a format error with the offending line.
func formatMessage(err error) string {
	msg := apperrors.UserMessage(err)
	var fe *sequence.FormatError
	if errors.As(err, &fe) {
		msg += ": " + fe.Error()
	}
	return msg
}
