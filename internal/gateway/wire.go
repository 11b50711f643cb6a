package gateway

import (
	"strconv"
	"strings"
	"time"

	"draftdesk/internal/domain/models/docsystem"
)

// Wire shapes of the backend's JSON responses. Everything is converted into
// domain models right after decoding.

type folderDTO struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	ParentID      *string `json:"parent_id"`
	DocumentCount int     `json:"document_count"`
}

type folderListDTO struct {
	Folders []folderDTO `json:"folders"`
}

type documentDTO struct {
	ID               string  `json:"id"`
	OriginalFilename string  `json:"original_filename"`
	FolderID         *string `json:"folder_id"`
	Status           string  `json:"status"`
	CreatedAt        string  `json:"created_at"`
}

type documentListDTO struct {
	Documents []documentDTO `json:"documents"`
}

type uploadDTO struct {
	DocumentID    string  `json:"document_id"`
	Filename      string  `json:"filename"`
	SavedFilename string  `json:"saved_filename"`
	Size          int64   `json:"size"`
	FolderID      *string `json:"folder_id"`
}

type statusDTO struct {
	DocumentID string `json:"document_id"`
	Status     string `json:"status"`
}

type queryDTO struct {
	Question string  `json:"question"`
	FolderID *string `json:"folder_id"`
	UserID   string  `json:"user_id"`
	TopK     int     `json:"top_k"`
}

// evidenceDTO covers every field combination the backend has sent for a
// retrieved chunk over time.
type evidenceDTO struct {
	ID         string   `json:"id"`
	ChunkID    string   `json:"chunk_id"`
	Question   *string  `json:"question"`
	Text       string   `json:"text"`
	RawText    string   `json:"raw_text"`
	FullText   string   `json:"full_text"`
	Answer     string   `json:"answer"`
	FileName   string   `json:"file_name"`
	PDFName    string   `json:"pdf_name"`
	DocumentID string   `json:"document_id"`
	FolderID   *string  `json:"folder_id"`
	Page       *int     `json:"page"`
	Score      *float64 `json:"score"`
}

type pdfSourceDTO struct {
	DocumentID string `json:"document_id"`
	PDFName    string `json:"pdf_name"`
	Chunks     []struct {
		Text  string   `json:"text"`
		Score *float64 `json:"score"`
	} `json:"chunks"`
	MaxScore float64 `json:"max_score"`
}

type draftDTO struct {
	Answer     string         `json:"answer"`
	Draft      string         `json:"draft"`
	Evidences  []evidenceDTO  `json:"evidences"`
	PDFSources []pdfSourceDTO `json:"pdf_sources"`
}

func (d *folderDTO) toModel() docsystem.Folder {
	return docsystem.Folder{
		ID:            d.ID,
		Name:          d.Name,
		ParentID:      emptyToNil(d.ParentID),
		DocumentCount: d.DocumentCount,
		Documents:     []docsystem.Document{},
	}
}

func (d *documentDTO) toModel() docsystem.Document {
	return docsystem.Document{
		ID:         d.ID,
		FileName:   d.OriginalFilename,
		FolderID:   emptyToNil(d.FolderID),
		Status:     docsystem.ParseDocumentStatus(d.Status),
		UploadedAt: parseTimestamp(d.CreatedAt),
	}
}

func (d *uploadDTO) toModel() *docsystem.UploadResult {
	return &docsystem.UploadResult{
		DocumentID:     d.DocumentID,
		FileName:       d.Filename,
		StoredFileName: d.SavedFilename,
		Size:           d.Size,
		FolderID:       emptyToNil(d.FolderID),
	}
}

func (d *draftDTO) toModel() *docsystem.DraftResult {
	result := &docsystem.DraftResult{
		Draft:     firstNonEmpty(d.Answer, d.Draft),
		Evidences: make([]docsystem.Evidence, 0, len(d.Evidences)),
	}
	for i := range d.Evidences {
		result.Evidences = append(result.Evidences, d.Evidences[i].toModel(i))
	}
	for _, src := range d.PDFSources {
		summary := docsystem.SourceSummary{
			DocumentID: src.DocumentID,
			FileName:   src.PDFName,
			MaxScore:   src.MaxScore,
			Chunks:     make([]docsystem.SourceChunk, 0, len(src.Chunks)),
		}
		for _, ch := range src.Chunks {
			summary.Chunks = append(summary.Chunks, docsystem.SourceChunk{Text: ch.Text, Score: ch.Score})
		}
		result.Sources = append(result.Sources, summary)
	}
	return result
}

// toModel normalizes a chunk. full_text wins over raw_text over text, and the
// source name falls back from file_name to pdf_name.
func (d *evidenceDTO) toModel(index int) docsystem.Evidence {
	ev := docsystem.Evidence{
		ID:         firstNonEmpty(d.ID, d.ChunkID, "evidence-"+strconv.Itoa(index+1)),
		Text:       strings.TrimSpace(firstNonEmpty(d.FullText, d.RawText, d.Text, d.Answer)),
		FileName:   firstNonEmpty(d.FileName, d.PDFName),
		DocumentID: d.DocumentID,
		FolderID:   emptyToNil(d.FolderID),
		Page:       d.Page,
		Score:      d.Score,
	}
	if d.Question != nil {
		ev.Question = strings.TrimSpace(*d.Question)
	}
	return ev
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func emptyToNil(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	return s
}

// timestampLayouts are tried in order; the backend writes naive ISO-8601
// timestamps, sometimes with fractional seconds.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.999999999-07:00",
}

func parseTimestamp(raw string) time.Time {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t
		}
	}
	return time.Time{}
}
