package resources

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Epistemic-Technology/zotero-mcp/internal/logger"
	"github.com/Epistemic-Technology/zotero-mcp/internal/zotero"
	"github.com/Epistemic-Technology/zotero-mcp/internal/zotero/zoterotest"
	"github.com/Epistemic-Technology/zotero-mcp/models"
)

func newHandler() (*ItemResourceHandler, *zoterotest.Backend) {
	backend := zoterotest.New()
	backend.AddItem(models.Item{Key: "BOOK0001", ItemType: "book", Title: "Deep Time", AttachmentKey: "PDF00001"})
	backend.AddFulltext("BOOK0001", models.Fulltext{ItemKey: "PDF00001", ParentKey: "BOOK0001", Content: "In the beginning."})
	return NewItemResourceHandler(backend, logger.NewNoOpLogger()), backend
}

func TestReadResource(t *testing.T) {
	h, _ := newHandler()
	ctx := context.Background()

	res, err := h.ReadResource(ctx, "zotero://items/BOOK0001")
	require.NoError(t, err)
	require.Len(t, res.Contents, 1)
	assert.Equal(t, "zotero://items/BOOK0001", res.Contents[0].URI)
	assert.Equal(t, "text/plain", res.Contents[0].MIMEType)
	assert.Contains(t, res.Contents[0].Text, "Title: Deep Time")

	res, err = h.ReadResource(ctx, "zotero://items/BOOK0001/fulltext")
	require.NoError(t, err)
	assert.Contains(t, res.Contents[0].Text, "In the beginning.")
}

func TestReadResourceErrors(t *testing.T) {
	h, backend := newHandler()
	ctx := context.Background()

	tests := []struct {
		name string
		uri  string
		want string
	}{
		{"wrong scheme", "pdf://BOOK0001", "invalid URI scheme"},
		{"missing key", "zotero://items/", "missing item key"},
		{"unknown subresource", "zotero://items/BOOK0001/pages", "unknown resource type"},
		{"missing item", "zotero://items/MISSING123", "not found"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := h.ReadResource(ctx, tt.uri)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}

	backend.LibraryMode = models.ModeLocal
	_, err := h.ReadResource(ctx, "zotero://items/BOOK0001/fulltext")
	require.Error(t, err)
	assert.True(t, zotero.IsKind(err, zotero.KindNotSupported))
}
