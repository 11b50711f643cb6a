package domain

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorSentinels(t *testing.T) {
	tests := []struct {
		err  error
		want error
	}{
		{&ValidationError{Message: "bad"}, ErrValidation},
		{&NetworkError{Err: errors.New("refused")}, ErrNetwork},
		{&NotFoundError{}, ErrNotFound},
		{&EmptyResultError{Reason: ReasonNoEvidence}, ErrEmptyResult},
		{&UnauthorizedError{}, ErrUnauthorized},
	}
	for _, tt := range tests {
		wrapped := fmt.Errorf("list folders: %w", tt.err)
		assert.ErrorIs(t, wrapped, tt.want)
	}
	assert.False(t, errors.Is(&NotFoundError{}, ErrNetwork))
}

func TestNetworkError(t *testing.T) {
	cause := errors.New("connection refused")
	err := &NetworkError{Err: cause}
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "network error: connection refused", err.Error())
	assert.Equal(t, http.StatusBadGateway, err.StatusCode())

	err = &NetworkError{Status: 500, Message: "server exploded"}
	assert.Equal(t, "server exploded", err.Error())
	assert.Equal(t, 500, err.StatusCode())
}

func TestDisplayMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"backend detail", fmt.Errorf("upload: %w", &ValidationError{Message: "PDF 또는 DOCX 파일만 업로드 가능합니다."}), "PDF 또는 DOCX 파일만 업로드 가능합니다."},
		{"network without detail", &NetworkError{Err: errors.New("eof")}, "fallback"},
		{"not found detail", &NotFoundError{Message: "관련 문서를 찾을 수 없습니다."}, "관련 문서를 찾을 수 없습니다."},
		{"plain error", errors.New("internal"), "fallback"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DisplayMessage(tt.err, "fallback"))
		})
	}
}
