package docsystem

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"

	"draftdesk/internal/domain"
	models "draftdesk/internal/domain/models/docsystem"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusTrackerCollectProcessing(t *testing.T) {
	tracker := NewStatusTracker(newFakeGateway(), testUserID, 2, testLogger())

	folders := []models.Folder{
		{ID: "f1", Documents: []models.Document{
			{ID: "d1", Status: models.StatusProcessing},
			{ID: "d2", Status: models.StatusCompleted},
		}},
		{ID: "f2", Documents: []models.Document{
			{ID: "d3", Status: models.StatusUploaded},
			{ID: "d4", Status: models.StatusFailed},
		}},
		{ID: "f3"},
	}

	pending := tracker.CollectProcessing(folders)
	assert.Equal(t, []models.PendingDocument{
		{DocumentID: "d1", FolderID: "f1"},
		{DocumentID: "d3", FolderID: "f2"},
	}, pending)

	assert.Empty(t, tracker.CollectProcessing(nil))
}

// reloads records reload calls from concurrent-safe callers.
type reloads struct {
	mu   sync.Mutex
	ids  []string
	errs map[string]error
}

func (r *reloads) fn(_ context.Context, folderID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ids = append(r.ids, folderID)
	return r.errs[folderID]
}

func TestStatusTrackerReconcile(t *testing.T) {
	gw := newFakeGateway()
	gw.setStatus("a1", models.StatusCompleted)
	gw.setStatus("a2", models.StatusFailed)
	gw.setStatus("b1", models.StatusProcessing)
	gw.setStatus("c1", models.StatusCompleted)
	gw.setStatusErr("c2", &domain.NetworkError{Message: "timeout"})

	tracker := NewStatusTracker(gw, testUserID, 3, testLogger())
	rec := &reloads{}

	report, err := tracker.Reconcile(context.Background(), []models.PendingDocument{
		{DocumentID: "a1", FolderID: "fa"},
		{DocumentID: "a2", FolderID: "fa"},
		{DocumentID: "b1", FolderID: "fb"},
		{DocumentID: "c1", FolderID: "fc"},
		{DocumentID: "c2", FolderID: "fc"},
	}, rec.fn)

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNetwork)
	assert.Equal(t, 5, report.Checked)
	assert.Equal(t, map[string]models.DocumentStatus{
		"a1": models.StatusCompleted,
		"a2": models.StatusFailed,
		"c1": models.StatusCompleted,
	}, report.Terminal)
	assert.Contains(t, report.Failed, "c2")

	// One reload per folder, none for a folder with only in-flight documents.
	sort.Strings(rec.ids)
	assert.Equal(t, []string{"fa", "fc"}, rec.ids)
	assert.ElementsMatch(t, []string{"fa", "fc"}, report.ReloadedFolders)

	for _, id := range []string{"a1", "a2", "b1", "c1", "c2"} {
		assert.Equal(t, 1, gw.callCount("Status:"+id), id)
	}
}

func TestStatusTrackerReloadFailure(t *testing.T) {
	gw := newFakeGateway()
	gw.setStatus("d1", models.StatusCompleted)

	tracker := NewStatusTracker(gw, testUserID, 1, testLogger())
	rec := &reloads{errs: map[string]error{"f1": errors.New("boom")}}

	report, err := tracker.Reconcile(context.Background(), []models.PendingDocument{
		{DocumentID: "d1", FolderID: "f1"},
	}, rec.fn)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "reload folder f1")
	assert.Empty(t, report.ReloadedFolders)
	assert.Equal(t, models.StatusCompleted, report.Terminal["d1"])
}

func TestStatusTrackerNothingPending(t *testing.T) {
	gw := newFakeGateway()
	tracker := NewStatusTracker(gw, testUserID, 0, testLogger())

	report, err := tracker.Reconcile(context.Background(), nil, func(context.Context, string) error {
		t.Fatal("reload must not be called")
		return nil
	})
	require.NoError(t, err)
	assert.Zero(t, report.Checked)
	assert.Zero(t, gw.totalStatusCalls())
}
