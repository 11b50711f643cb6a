package docsystem

import (
	"bytes"
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"

	"draftdesk/internal/config"
	"draftdesk/internal/domain"
	models "draftdesk/internal/domain/models/docsystem"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

const mediaTypePDF = "application/pdf"

// acceptedMediaTypes and acceptedExtensions list the uploadable formats. A
// file passes if either its declared type or its extension is listed.
var (
	acceptedMediaTypes = map[string]bool{
		mediaTypePDF: true,
		"application/vnd.openxmlformats-officedocument.wordprocessingml.document": true,
		"application/msword": true,
	}
	acceptedExtensions = map[string]bool{
		".pdf":  true,
		".docx": true,
		".doc":  true,
	}
)

// UploadValidator rejects files the backend would refuse, before any request
// is made.
type UploadValidator struct {
	maxBytes  int64
	verifyPDF bool
	logger    *slog.Logger
}

// NewUploadValidator creates a validator. With verifyPDF set, PDFs must also
// parse as PDF documents.
func NewUploadValidator(maxBytes int64, verifyPDF bool, logger *slog.Logger) *UploadValidator {
	if maxBytes <= 0 {
		maxBytes = config.MaxUploadBytes
	}
	return &UploadValidator{
		maxBytes:  maxBytes,
		verifyPDF: verifyPDF,
		logger:    logger,
	}
}

// Validate returns a *domain.ValidationError describing every problem with file.
func (v *UploadValidator) Validate(file *models.UploadFile) error {
	if file == nil {
		return &domain.ValidationError{Message: "no file selected"}
	}

	err := validation.ValidateStruct(file,
		validation.Field(&file.Name,
			validation.Required.Error("file name is required"),
			validation.RuneLength(1, config.MaxFileNameLength),
			validation.By(func(interface{}) error {
				if !IsAcceptedType(file) {
					return validation.NewError("validation_file_type", "only PDF, DOC or DOCX files can be uploaded")
				}
				return nil
			}),
		),
		validation.Field(&file.Content,
			validation.Required.Error("file is empty"),
			validation.By(v.checkSize),
		),
	)
	if err != nil {
		v.logger.Debug("upload rejected", "file_name", file.Name, "size", file.Size(), "error", err)
		return &domain.ValidationError{Message: flattenValidation(err)}
	}

	if v.verifyPDF && IsIndexable(file) {
		if _, err := PageCount(file); err != nil {
			v.logger.Debug("upload rejected: unreadable PDF", "file_name", file.Name, "error", err)
			return &domain.ValidationError{Message: fmt.Sprintf("%s is not a readable PDF", file.Name)}
		}
	}
	return nil
}

func (v *UploadValidator) checkSize(value interface{}) error {
	content, _ := value.([]byte)
	if int64(len(content)) > v.maxBytes {
		return validation.NewError("validation_file_size",
			fmt.Sprintf("file exceeds the %s upload limit", formatBytes(v.maxBytes)))
	}
	return nil
}

// IsAcceptedType reports whether the declared media type or the extension
// names an uploadable format.
func IsAcceptedType(file *models.UploadFile) bool {
	if acceptedMediaTypes[normalizeMediaType(file.ContentType)] {
		return true
	}
	return acceptedExtensions[strings.ToLower(filepath.Ext(file.Name))]
}

// IsIndexable reports whether the backend indexes the file right after upload
// (PDF by media type or extension).
func IsIndexable(file *models.UploadFile) bool {
	return normalizeMediaType(file.ContentType) == mediaTypePDF ||
		strings.EqualFold(filepath.Ext(file.Name), ".pdf")
}

// PageCount parses a PDF upload and returns its number of pages.
func PageCount(file *models.UploadFile) (int, error) {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return api.PageCount(bytes.NewReader(file.Content), conf)
}

func normalizeMediaType(ct string) string {
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = ct[:i]
	}
	return strings.ToLower(strings.TrimSpace(ct))
}

// flattenValidation turns ozzo's field->error map into one display sentence.
func flattenValidation(err error) string {
	errs, ok := err.(validation.Errors)
	if !ok {
		return err.Error()
	}
	keys := make([]string, 0, len(errs))
	for k := range errs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	msgs := make([]string, 0, len(keys))
	for _, k := range keys {
		msgs = append(msgs, errs[k].Error())
	}
	return strings.Join(msgs, "; ")
}

func formatBytes(n int64) string {
	const mb = 1024 * 1024
	if n%mb == 0 {
		return fmt.Sprintf("%d MB", n/mb)
	}
	return fmt.Sprintf("%.1f MB", float64(n)/mb)
}
