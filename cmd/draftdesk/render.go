package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	models "draftdesk/internal/domain/models/docsystem"
	"draftdesk/internal/service/docsystem"
)

const evidencePreviewRunes = 240

func renderTree(w io.Writer, folders []models.Folder, expanded func(string) bool) {
	if len(folders) == 0 {
		fmt.Fprintf(w, "%s(no folders)%s\n", colorGray, colorReset)
		return
	}

	known := make(map[string]bool, len(folders))
	for _, f := range folders {
		known[f.ID] = true
	}
	children := models.FolderChildren(folders)

	// Folders whose parent is not listed are shown at the top level.
	var roots []models.Folder
	for _, f := range folders {
		if f.ParentID == nil || !known[*f.ParentID] {
			roots = append(roots, f)
		}
	}
	for _, f := range roots {
		renderFolder(w, f, children, expanded, 0)
	}
}

func renderFolder(w io.Writer, f models.Folder, children map[string][]models.Folder, expanded func(string) bool, depth int) {
	indent := strings.Repeat("  ", depth)
	open := expanded(f.ID)
	marker := "▸"
	if open {
		marker = "▾"
	}
	fmt.Fprintf(w, "%s%s %s%s%s (%d) %s[%s]%s\n",
		indent, marker, colorCyan, f.Name, colorReset, f.DocumentCount, colorGray, f.ID, colorReset)

	if open {
		switch {
		case !f.DocumentsLoaded:
			fmt.Fprintf(w, "%s    %sloading...%s\n", indent, colorGray, colorReset)
		case len(f.Documents) == 0:
			fmt.Fprintf(w, "%s    %s(empty)%s\n", indent, colorGray, colorReset)
		}
		for _, d := range f.Documents {
			uploaded := ""
			if !d.UploadedAt.IsZero() {
				uploaded = d.UploadedAt.Format("2006-01-02 15:04")
			}
			fmt.Fprintf(w, "%s    • %s  %s  %s%s [%s]%s\n",
				indent, d.FileName, colorStatus(d.Status), colorGray, uploaded, d.ID, colorReset)
		}
	}

	for _, child := range children[f.ID] {
		renderFolder(w, child, children, expanded, depth+1)
	}
}

func colorStatus(s models.DocumentStatus) string {
	switch s {
	case models.StatusCompleted:
		return colorGreen + string(s) + colorReset
	case models.StatusFailed:
		return colorRed + string(s) + colorReset
	default:
		return colorYellow + string(s) + colorReset
	}
}

func renderDraft(w io.Writer, r *models.DraftResult) {
	fmt.Fprintf(w, "\n%s=== Draft ===%s\n%s\n", colorCyan, colorReset, strings.TrimSpace(r.Draft))

	if !r.HasEvidence() {
		fmt.Fprintf(w, "\n%s⚠ No supporting passages were returned; verify the draft manually.%s\n", colorYellow, colorReset)
		return
	}

	fmt.Fprintf(w, "\n%s=== Evidence ===%s\n", colorCyan, colorReset)
	for i, ev := range r.Evidences {
		var meta []string
		if ev.FileName != "" {
			meta = append(meta, ev.FileName)
		}
		if ev.Page != nil {
			meta = append(meta, fmt.Sprintf("p.%d", *ev.Page))
		}
		if ev.Score != nil {
			meta = append(meta, fmt.Sprintf("score %.2f", *ev.Score))
		}
		fmt.Fprintf(w, "[%d] %s%s%s\n", i+1, colorBlue, strings.Join(meta, " · "), colorReset)
		if ev.Question != "" {
			fmt.Fprintf(w, "    Q: %s\n", ev.Question)
		}
		fmt.Fprintf(w, "    %s\n", truncateRunes(ev.Text, evidencePreviewRunes))
	}

	if len(r.Sources) > 0 {
		fmt.Fprintf(w, "\n%s=== Sources ===%s\n", colorCyan, colorReset)
		for _, src := range r.Sources {
			fmt.Fprintf(w, "  %s  %d passage(s), best %.2f\n", src.FileName, len(src.Chunks), src.MaxScore)
		}
	}
}

func truncateRunes(s string, n int) string {
	r := []rune(strings.Join(strings.Fields(s), " "))
	if len(r) <= n {
		return string(r)
	}
	return string(r[:n]) + "…"
}

func describeEvent(ev docsystem.Event) string {
	switch ev.Type {
	case docsystem.EventStatusChanged:
		return fmt.Sprintf("%s: %s → %s", ev.DocumentID, ev.From, ev.To)
	case docsystem.EventUploaded:
		return fmt.Sprintf("uploaded %s", ev.DocumentID)
	case docsystem.EventDeleted:
		return fmt.Sprintf("deleted %s", ev.DocumentID)
	case docsystem.EventPollingStarted:
		return fmt.Sprintf("watching %d processing document(s)", ev.Count)
	case docsystem.EventPollingStopped:
		return "all documents settled"
	case docsystem.EventReconcileFailed:
		return fmt.Sprintf("status check for %s failed: %v", ev.DocumentID, ev.Err)
	case docsystem.EventRefreshFailed:
		return fmt.Sprintf("refresh failed: %v", ev.Err)
	default:
		return ""
	}
}

// findFolder matches by ID first, then by exact name, then case-insensitively.
func findFolder(folders []models.Folder, want string) (models.Folder, bool) {
	for _, f := range folders {
		if f.ID == want {
			return f, true
		}
	}
	for _, f := range folders {
		if f.Name == want {
			return f, true
		}
	}
	for _, f := range folders {
		if strings.EqualFold(f.Name, want) {
			return f, true
		}
	}
	return models.Folder{}, false
}

// splitArgs splits a command line on whitespace, honoring double quotes and
// backslash escapes.
func splitArgs(line string) ([]string, error) {
	var (
		args    []string
		cur     strings.Builder
		inQuote bool
		escaped bool
		started bool
	)
	for _, r := range line {
		switch {
		case escaped:
			cur.WriteRune(r)
			escaped = false
		case r == '\\':
			escaped = true
			started = true
		case r == '"':
			inQuote = !inQuote
			started = true
		case !inQuote && (r == ' ' || r == '\t'):
			if started {
				args = append(args, cur.String())
				cur.Reset()
				started = false
			}
		default:
			cur.WriteRune(r)
			started = true
		}
	}
	if inQuote {
		return nil, errors.New("unterminated quote")
	}
	if escaped {
		cur.WriteRune('\\')
	}
	if started {
		args = append(args, cur.String())
	}
	return args, nil
}
