package docsystem

import (
	"testing"

	"draftdesk/internal/config"
	"draftdesk/internal/domain"
	models "draftdesk/internal/domain/models/docsystem"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUploadValidatorValidate(t *testing.T) {
	v := NewUploadValidator(config.MaxUploadBytes, false, testLogger())

	tests := []struct {
		name    string
		file    *models.UploadFile
		wantErr string
	}{
		{
			name: "4 MB PDF",
			file: &models.UploadFile{Name: "report.pdf", ContentType: "application/pdf", Content: make([]byte, 4*1024*1024)},
		},
		{
			name: "exactly at the limit",
			file: &models.UploadFile{Name: "report.pdf", ContentType: "application/pdf", Content: make([]byte, config.MaxUploadBytes)},
		},
		{
			name:    "6 MB PDF",
			file:    &models.UploadFile{Name: "report.pdf", ContentType: "application/pdf", Content: make([]byte, 6*1024*1024)},
			wantErr: "5 MB",
		},
		{
			name: "docx by media type only",
			file: &models.UploadFile{
				Name:        "memo",
				ContentType: "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
				Content:     []byte("x"),
			},
		},
		{
			name: "doc by extension with generic media type",
			file: &models.UploadFile{Name: "LEGACY.DOC", ContentType: "application/octet-stream", Content: []byte("x")},
		},
		{
			name: "pdf media type with parameters",
			file: &models.UploadFile{Name: "scan", ContentType: "Application/PDF; charset=binary", Content: []byte("x")},
		},
		{
			name:    "unsupported type",
			file:    &models.UploadFile{Name: "notes.txt", ContentType: "text/plain", Content: []byte("x")},
			wantErr: "only PDF, DOC or DOCX",
		},
		{
			name:    "empty file",
			file:    &models.UploadFile{Name: "empty.pdf", ContentType: "application/pdf"},
			wantErr: "file is empty",
		},
		{
			name:    "missing name",
			file:    &models.UploadFile{ContentType: "application/pdf", Content: []byte("x")},
			wantErr: "file name is required",
		},
		{
			name:    "nil file",
			file:    nil,
			wantErr: "no file selected",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(tt.file)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrValidation)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestUploadValidatorVerifyPDF(t *testing.T) {
	v := NewUploadValidator(config.MaxUploadBytes, true, testLogger())

	err := v.Validate(&models.UploadFile{Name: "broken.pdf", ContentType: "application/pdf", Content: []byte("not a pdf at all")})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Contains(t, err.Error(), "not a readable PDF")

	// DOCX content is not parsed.
	err = v.Validate(&models.UploadFile{Name: "memo.docx", Content: []byte("PK")})
	assert.NoError(t, err)
}

func TestIsIndexable(t *testing.T) {
	tests := []struct {
		file *models.UploadFile
		want bool
	}{
		{&models.UploadFile{Name: "a.pdf"}, true},
		{&models.UploadFile{Name: "A.PDF"}, true},
		{&models.UploadFile{Name: "scan", ContentType: "application/pdf"}, true},
		{&models.UploadFile{Name: "memo.docx"}, false},
		{&models.UploadFile{Name: "memo.doc", ContentType: "application/msword"}, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, IsIndexable(tt.file), tt.file.Name)
	}
}

func TestFormatBytes(t *testing.T) {
	assert.Equal(t, "5 MB", formatBytes(5*1024*1024))
	assert.Equal(t, "1.5 MB", formatBytes(1536*1024))
}
