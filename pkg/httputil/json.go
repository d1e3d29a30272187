package httputil

import (
	"encoding/json"
	stderrors "errors"
	"io"
	"net/http"
	"strings"

	"github.com/matzehuels/causeway/pkg/errors"
)

// DefaultMaxBodyBytes bounds request bodies when the caller passes zero.
const DefaultMaxBodyBytes = 1 << 20

// DecodeJSON reads one JSON document from the request body into v and
// validates it with its `validate` struct tags. Unknown fields and trailing
// data are rejected. Bodies larger than limit fail with an error for which
// [StatusFor] reports 413.
func DecodeJSON(w http.ResponseWriter, r *http.Request, v any, limit int64) error {
	if limit <= 0 {
		limit = DefaultMaxBodyBytes
	}
	body := http.MaxBytesReader(w, r.Body, limit)
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if stderrors.Is(err, io.EOF) {
			return errors.New(errors.ErrCodeInvalidInput, "request body is empty")
		}
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "decode request")
	}
	if dec.More() {
		return errors.New(errors.ErrCodeInvalidInput, "request body holds more than one document")
	}
	return errors.ValidateStruct(v)
}

// ReadBody returns the whole request body, bounded like [DecodeJSON].
func ReadBody(w http.ResponseWriter, r *http.Request, limit int64) ([]byte, error) {
	if limit <= 0 {
		limit = DefaultMaxBodyBytes
	}
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, limit))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read request")
	}
	return data, nil
}

// WriteJSON writes v with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// ErrorBody is the JSON shape of a failed request.
type ErrorBody struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail describes one failure.
type ErrorDetail struct {
	Code      errors.Code `json:"code"`
	Message   string      `json:"message"`
	RequestID string      `json:"request_id,omitempty"`
}

// WriteError writes err as an [ErrorBody]. Internal errors are reported
// without their message.
func WriteError(w http.ResponseWriter, err error, requestID string) int {
	status := StatusFor(err)
	code := errors.GetCode(err)
	msg := errors.UserMessage(err)
	switch {
	case status == http.StatusRequestEntityTooLarge:
		code, msg = errors.ErrCodeInvalidInput, "request body too large"
	case status == http.StatusInternalServerError:
		code, msg = errors.ErrCodeInternal, "internal error"
	}
	WriteJSON(w, status, ErrorBody{Error: ErrorDetail{Code: code, Message: msg, RequestID: requestID}})
	return status
}

// StatusFor maps err to an HTTP status.
func StatusFor(err error) int {
	var tooLarge *http.MaxBytesError
	if stderrors.As(err, &tooLarge) {
		return http.StatusRequestEntityTooLarge
	}
	code := errors.GetCode(err)
	switch {
	case code == errors.ErrCodeNotFound, code == errors.ErrCodeFileNotFound:
		return http.StatusNotFound
	case strings.HasPrefix(string(code), "INVALID_"):
		return http.StatusBadRequest
	case code == errors.ErrCodeHedge, code == errors.ErrCodeUnidentifiable:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
