package gateway

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"

	"draftdesk/internal/domain"
	"draftdesk/internal/domain/models/docsystem"
	docsysSvc "draftdesk/internal/domain/services/docsystem"
)

var _ docsysSvc.Gateway = (*Client)(nil)

// ListFolders calls GET /api/documents/folders.
func (c *Client) ListFolders(ctx context.Context, userID string) ([]docsystem.Folder, error) {
	var out folderListDTO
	err := c.do(ctx, &request{
		method: http.MethodGet,
		path:   "/api/documents/folders",
		query:  userQuery(userID),
	}, &out)
	if err != nil {
		return nil, fmt.Errorf("list folders: %w", err)
	}

	folders := make([]docsystem.Folder, 0, len(out.Folders))
	for i := range out.Folders {
		folders = append(folders, out.Folders[i].toModel())
	}
	return folders, nil
}

// ListDocuments calls GET /api/documents/list, scoped to folderID when set.
func (c *Client) ListDocuments(ctx context.Context, userID string, folderID *string) ([]docsystem.Document, error) {
	query := userQuery(userID)
	if folderID != nil {
		query.Set("folder_id", *folderID)
	}

	var out documentListDTO
	err := c.do(ctx, &request{
		method: http.MethodGet,
		path:   "/api/documents/list",
		query:  query,
	}, &out)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}

	docs := make([]docsystem.Document, 0, len(out.Documents))
	for i := range out.Documents {
		docs = append(docs, out.Documents[i].toModel())
	}
	return docs, nil
}

// UploadDocument calls POST /api/documents/upload with a multipart "file" field.
func (c *Client) UploadDocument(ctx context.Context, userID string, file *docsystem.UploadFile, folderID *string) (*docsystem.UploadResult, error) {
	body, contentType, err := multipartBody(file)
	if err != nil {
		return nil, fmt.Errorf("upload document: %w", err)
	}

	query := userQuery(userID)
	if folderID != nil {
		query.Set("folder_id", *folderID)
	}

	var out uploadDTO
	err = c.do(ctx, &request{
		method:      http.MethodPost,
		path:        "/api/documents/upload",
		query:       query,
		body:        body,
		contentType: contentType,
	}, &out)
	if err != nil {
		return nil, fmt.Errorf("upload document: %w", err)
	}

	c.logger.Info("document uploaded",
		"document_id", out.DocumentID,
		"file_name", file.Name,
		"size", out.Size,
	)
	return out.toModel(), nil
}

// DeleteDocument calls DELETE /api/documents/{id}.
func (c *Client) DeleteDocument(ctx context.Context, userID, documentID string) error {
	err := c.do(ctx, &request{
		method: http.MethodDelete,
		path:   "/api/documents/" + url.PathEscape(documentID),
		query:  userQuery(userID),
	}, nil)
	if err != nil {
		return fmt.Errorf("delete document %s: %w", documentID, err)
	}
	return nil
}

// GetDocumentStatus calls GET /api/documents/{id}/status.
func (c *Client) GetDocumentStatus(ctx context.Context, userID, documentID string) (docsystem.DocumentStatus, error) {
	var out statusDTO
	err := c.do(ctx, &request{
		method: http.MethodGet,
		path:   "/api/documents/" + url.PathEscape(documentID) + "/status",
		query:  userQuery(userID),
	}, &out)
	if err != nil {
		return "", fmt.Errorf("get status of %s: %w", documentID, err)
	}
	return docsystem.ParseDocumentStatus(out.Status), nil
}

// Query calls POST /api/documents/query. A 404 means nothing relevant is indexed.
func (c *Client) Query(ctx context.Context, userID string, req *docsystem.QueryRequest) (*docsystem.DraftResult, error) {
	r, err := jsonRequest(http.MethodPost, "/api/documents/query", nil, &queryDTO{
		Question: req.Question,
		FolderID: req.FolderID,
		UserID:   userID,
		TopK:     req.TopK,
	})
	if err != nil {
		return nil, err
	}

	var out draftDTO
	if err := c.do(ctx, r, &out); err != nil {
		var notFound *domain.NotFoundError
		if errors.As(err, &notFound) {
			notFound.Reason = domain.ReasonNotIndexed
		}
		return nil, fmt.Errorf("query: %w", err)
	}
	return out.toModel(), nil
}

func userQuery(userID string) url.Values {
	q := url.Values{}
	q.Set("user_id", userID)
	return q
}

func multipartBody(file *docsystem.UploadFile) (*bytes.Buffer, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, file.Name))
	contentType := file.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	header.Set("Content-Type", contentType)

	part, err := w.CreatePart(header)
	if err != nil {
		return nil, "", fmt.Errorf("create multipart part: %w", err)
	}
	if _, err := part.Write(file.Content); err != nil {
		return nil, "", fmt.Errorf("write multipart part: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("close multipart body: %w", err)
	}
	return &buf, w.FormDataContentType(), nil
}
