package gateway

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"draftdesk/internal/domain"
)

// maxErrorBody bounds how much of an error response is read.
const maxErrorBody = 64 * 1024

// errorBody is the backend's error envelope. detail is a string for handled
// errors and a list of {msg} objects for request validation failures.
type errorBody struct {
	Detail json.RawMessage `json:"detail"`
}

// decodeError maps a non-2xx response onto the domain error taxonomy. The
// backend's detail text is kept as the display message only.
func decodeError(resp *http.Response) error {
	msg := readDetail(io.LimitReader(resp.Body, maxErrorBody))

	switch resp.StatusCode {
	case http.StatusBadRequest, http.StatusRequestEntityTooLarge,
		http.StatusUnsupportedMediaType, http.StatusUnprocessableEntity:
		return &domain.ValidationError{Message: msg}
	case http.StatusUnauthorized:
		return &domain.UnauthorizedError{Message: msg}
	case http.StatusNotFound:
		return &domain.NotFoundError{Message: msg}
	default:
		return &domain.NetworkError{Status: resp.StatusCode, Message: msg}
	}
}

func readDetail(r io.Reader) string {
	data, err := io.ReadAll(r)
	if err != nil || len(data) == 0 {
		return ""
	}

	var body errorBody
	if err := json.Unmarshal(data, &body); err != nil || len(body.Detail) == 0 {
		return ""
	}

	var text string
	if err := json.Unmarshal(body.Detail, &text); err == nil {
		return text
	}

	var items []struct {
		Msg string `json:"msg"`
	}
	if err := json.Unmarshal(body.Detail, &items); err == nil {
		msgs := make([]string, 0, len(items))
		for _, it := range items {
			if it.Msg != "" {
				msgs = append(msgs, it.Msg)
			}
		}
		return strings.Join(msgs, "; ")
	}
	return ""
}
