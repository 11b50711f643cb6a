package main

import (
	"strings"
	"testing"

	models "draftdesk/internal/domain/models/docsystem"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitArgs(t *testing.T) {
	tests := []struct {
		line    string
		want    []string
		wantErr bool
	}{
		{line: "", want: nil},
		{line: "tree", want: []string{"tree"}},
		{line: "  upload  a.pdf   Reports ", want: []string{"upload", "a.pdf", "Reports"}},
		{line: `upload "my report.pdf" "최근 문서함"`, want: []string{"upload", "my report.pdf", "최근 문서함"}},
		{line: `ask say \"hi\"`, want: []string{"ask", "say", `"hi"`}},
		{line: `use ""`, want: []string{"use", ""}},
		{line: `ask "unterminated`, wantErr: true},
	}
	for _, tt := range tests {
		got, err := splitArgs(tt.line)
		if tt.wantErr {
			assert.Error(t, err, tt.line)
			continue
		}
		require.NoError(t, err, tt.line)
		assert.Equal(t, tt.want, got, tt.line)
	}
}

func TestQuoteArgsRoundTrip(t *testing.T) {
	args := []string{"upload", "my report.pdf", "Reports"}
	got, err := splitArgs(strings.Join(quoteArgs(args), " "))
	require.NoError(t, err)
	assert.Equal(t, args, got)
}

func TestFindFolder(t *testing.T) {
	folders := []models.Folder{
		{ID: "f1", Name: "Reports"},
		{ID: "f2", Name: "reports"},
		{ID: "Reports", Name: "Odd"},
	}

	f, ok := findFolder(folders, "Reports")
	require.True(t, ok)
	assert.Equal(t, "Odd", f.Name, "IDs win over names")

	f, ok = findFolder(folders, "reports")
	require.True(t, ok)
	assert.Equal(t, "f2", f.ID)

	f, ok = findFolder(folders, "REPORTS")
	require.True(t, ok)
	assert.Equal(t, "f1", f.ID)

	_, ok = findFolder(folders, "Archive")
	assert.False(t, ok)
}

func TestRenderTree(t *testing.T) {
	parent := "f1"
	folders := []models.Folder{
		{ID: "f1", Name: "Reports", DocumentCount: 1, DocumentsLoaded: true, Documents: []models.Document{
			{ID: "d1", FileName: "q3.pdf", Status: models.StatusProcessing},
		}},
		{ID: "f2", Name: "2025", ParentID: &parent, DocumentsLoaded: true, Documents: []models.Document{}},
		{ID: "f3", Name: "Minutes", DocumentCount: 4},
	}
	open := map[string]bool{"f1": true, "f2": true}

	var b strings.Builder
	renderTree(&b, folders, func(id string) bool { return open[id] })
	out := b.String()

	assert.Contains(t, out, "▾ "+colorCyan+"Reports")
	assert.Contains(t, out, "q3.pdf")
	assert.Contains(t, out, "processing")
	assert.Contains(t, out, "  ▾ "+colorCyan+"2025", "child folder is indented")
	assert.Contains(t, out, "(empty)")
	assert.Contains(t, out, "▸ "+colorCyan+"Minutes")
	assert.Less(t, strings.Index(out, "2025"), strings.Index(out, "Minutes"))
}

func TestRenderDraft(t *testing.T) {
	page := 3
	score := 0.875
	var b strings.Builder
	renderDraft(&b, &models.DraftResult{
		Draft: "Revenue grew.",
		Evidences: []models.Evidence{
			{ID: "e1", FileName: "q3.pdf", Page: &page, Score: &score, Text: strings.Repeat("가", evidencePreviewRunes+10)},
		},
		Sources: []models.SourceSummary{{FileName: "q3.pdf", MaxScore: 0.875, Chunks: []models.SourceChunk{{Text: "x"}}}},
	})
	out := b.String()

	assert.Contains(t, out, "Revenue grew.")
	assert.Contains(t, out, "q3.pdf · p.3 · score 0.88")
	assert.Contains(t, out, "…")
	assert.Contains(t, out, "1 passage(s)")

	b.Reset()
	renderDraft(&b, &models.DraftResult{Draft: "Unsupported."})
	assert.Contains(t, b.String(), "No supporting passages")
}
