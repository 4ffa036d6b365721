package tools

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Epistemic-Technology/zotero-mcp/internal/format"
	"github.com/Epistemic-Technology/zotero-mcp/internal/logger"
	"github.com/Epistemic-Technology/zotero-mcp/internal/zotero"
	"github.com/Epistemic-Technology/zotero-mcp/internal/zotero/zoterotest"
	"github.com/Epistemic-Technology/zotero-mcp/models"
)

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.NotNil(t, result)
	require.Len(t, result.Content, 1)
	text, ok := result.Content[0].(*mcp.TextContent)
	require.True(t, ok, "expected text content, got %T", result.Content[0])
	return text.Text
}

func fixture() *zoterotest.Backend {
	b := zoterotest.New()
	for i := 1; i <= 12; i++ {
		b.AddItem(models.Item{
			Key:      fmt.Sprintf("ML%06d", i),
			ItemType: "journalArticle",
			Title:    fmt.Sprintf("Machine learning study %d", i),
		})
	}
	b.AddItem(models.Item{
		Key:           "BOOK0001",
		ItemType:      "book",
		Title:         "Deep Time",
		Creators:      []models.Creator{{CreatorType: "author", FirstName: "Henry", LastName: "Gee"}},
		Fields:        map[string]string{"date": "1999", "publisher": "Fourth Estate"},
		AttachmentKey: "PDF00001",
	})
	b.AddItem(models.Item{Key: "BOOK0002", ItemType: "book", Title: "Unindexed", AttachmentKey: "PDF00002"})
	b.AddFulltext("BOOK0001", models.Fulltext{ItemKey: "PDF00001", ParentKey: "BOOK0001", Title: "Deep Time", Content: "In the beginning."})
	b.AddCollection(models.Collection{Key: "COLL0001", Name: "Reading"})
	return b
}

func TestSearchItemsToolHandler(t *testing.T) {
	log := logger.NewNoOpLogger()
	ctx := context.Background()

	t.Run("limit and order", func(t *testing.T) {
		result, _, err := SearchItemsToolHandler(ctx, nil, SearchItemsQuery{Query: "machine learning", Limit: 5}, fixture(), log)
		require.NoError(t, err)
		assert.False(t, result.IsError)
		text := resultText(t, result)
		for i := 1; i <= 5; i++ {
			assert.Contains(t, text, fmt.Sprintf("%d. [ML%06d]", i, i))
		}
		assert.NotContains(t, text, "ML000006")
	})

	t.Run("limit above maximum is clamped", func(t *testing.T) {
		backend := fixture()
		result, _, err := SearchItemsToolHandler(ctx, nil, SearchItemsQuery{Query: "machine", Limit: 1000}, backend, log)
		require.NoError(t, err)
		assert.False(t, result.IsError)
		assert.Equal(t, models.MaxSearchLimit, backend.LastQuery().Limit)
	})

	t.Run("no results", func(t *testing.T) {
		result, _, err := SearchItemsToolHandler(ctx, nil, SearchItemsQuery{Query: "xyzzy-nothing"}, fixture(), log)
		require.NoError(t, err)
		assert.False(t, result.IsError)
		assert.Equal(t, format.NoItemsFound, resultText(t, result))
	})

	t.Run("empty query rejected before backend", func(t *testing.T) {
		backend := fixture()
		result, _, err := SearchItemsToolHandler(ctx, nil, SearchItemsQuery{Query: ""}, backend, log)
		require.NoError(t, err)
		assert.True(t, result.IsError)
		assert.Contains(t, resultText(t, result), "query must not be empty")
		assert.Zero(t, backend.Calls("Search"))
	})
}

func TestItemMetadataToolHandler(t *testing.T) {
	log := logger.NewNoOpLogger()
	ctx := context.Background()
	backend := fixture()

	result, _, err := ItemMetadataToolHandler(ctx, nil, ItemKeyQuery{ItemKey: "BOOK0001"}, backend, log)
	require.NoError(t, err)
	assert.False(t, result.IsError)
	text := resultText(t, result)
	assert.Contains(t, text, "Title: Deep Time")
	assert.Contains(t, text, "Creators: Gee, Henry")
	assert.Contains(t, text, "Publication: Fourth Estate")

	result, _, err = ItemMetadataToolHandler(ctx, nil, ItemKeyQuery{ItemKey: "MISSING123"}, backend, log)
	require.NoError(t, err)
	assert.False(t, result.IsError, "a missing item is a normal outcome")
	assert.Equal(t, "No item found with key: MISSING123", resultText(t, result))

	result, _, err = ItemMetadataToolHandler(ctx, nil, ItemKeyQuery{ItemKey: " "}, backend, log)
	require.NoError(t, err)
	assert.True(t, result.IsError)
}

func TestItemFulltextToolHandler(t *testing.T) {
	log := logger.NewNoOpLogger()
	ctx := context.Background()

	tests := []struct {
		name      string
		key       string
		mode      models.Mode
		want      string
		wantError bool
	}{
		{name: "text", key: "BOOK0001", mode: models.ModeRemote, want: "In the beginning."},
		{name: "attachment key in header", key: "BOOK0001", mode: models.ModeRemote, want: "Attachment Item Key: PDF00001"},
		{name: "local mode", key: "BOOK0001", mode: models.ModeLocal, want: "not available in local mode"},
		{name: "no attachment", key: "ML000001", mode: models.ModeRemote, want: "has no attachment"},
		{name: "not indexed", key: "BOOK0002", mode: models.ModeRemote, want: "has not been indexed"},
		{name: "missing item", key: "MISSING123", mode: models.ModeRemote, want: "No item found with key: MISSING123"},
		{name: "empty key", key: "", mode: models.ModeRemote, want: "item_key must not be empty", wantError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend := fixture()
			backend.LibraryMode = tt.mode
			result, _, err := ItemFulltextToolHandler(ctx, nil, ItemKeyQuery{ItemKey: tt.key}, backend, log)
			require.NoError(t, err)
			assert.Equal(t, tt.wantError, result.IsError)
			assert.Contains(t, resultText(t, result), tt.want)
		})
	}
}

func TestFulltextMessagesAreDistinct(t *testing.T) {
	errs := []error{
		&zotero.Error{Kind: zotero.KindNotSupported, Err: zotero.ErrFulltextUnavailable},
		&zotero.Error{Kind: zotero.KindNotFound, Err: zotero.ErrNoAttachment},
		&zotero.Error{Kind: zotero.KindNotFound, Err: zotero.ErrNoFulltext},
		&zotero.Error{Kind: zotero.KindNotFound},
	}
	seen := map[string]bool{}
	for _, err := range errs {
		msg, ok := fulltextMessage("KEY", models.ModeLocal, err)
		require.True(t, ok, "%v", err)
		assert.False(t, seen[msg], "duplicate message %q", msg)
		seen[msg] = true
	}

	_, ok := fulltextMessage("KEY", models.ModeRemote, &zotero.Error{Kind: zotero.KindTransport})
	assert.False(t, ok)
}

func TestFailureResult(t *testing.T) {
	log := logger.NewNoOpLogger()

	tests := []struct {
		name string
		err  error
		want string
	}{
		{"rate limited", &zotero.Error{Kind: zotero.KindRateLimited, RetryAfter: 1500 * time.Millisecond}, "Retry after 2 seconds"},
		{"rate limited without hint", &zotero.Error{Kind: zotero.KindRateLimited}, "rate_limited"},
		{"canceled", context.Canceled, "canceled"},
		{"transport", &zotero.Error{Kind: zotero.KindTransport, Op: "item", Err: errors.New("connection refused")}, "connection refused"},
		{"unclassified", errors.New("something odd"), "transport_failure"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := failureResult("tool", tt.err, log)
			assert.True(t, result.IsError)
			assert.Contains(t, resultText(t, result), tt.want)
		})
	}
}

func TestBackendFailuresAreToolErrors(t *testing.T) {
	backend := fixture()
	backend.Err = &zotero.Error{Kind: zotero.KindRateLimited, Op: "search", RetryAfter: 5 * time.Second}
	log := logger.NewNoOpLogger()
	ctx := context.Background()

	results := []*mcp.CallToolResult{}
	r, _, err := SearchItemsToolHandler(ctx, nil, SearchItemsQuery{Query: "machine"}, backend, log)
	require.NoError(t, err)
	results = append(results, r)
	r, _, err = ItemMetadataToolHandler(ctx, nil, ItemKeyQuery{ItemKey: "BOOK0001"}, backend, log)
	require.NoError(t, err)
	results = append(results, r)
	r, _, err = ItemFulltextToolHandler(ctx, nil, ItemKeyQuery{ItemKey: "BOOK0001"}, backend, log)
	require.NoError(t, err)
	results = append(results, r)
	r, _, err = ListCollectionsToolHandler(ctx, nil, ListCollectionsQuery{}, backend, log)
	require.NoError(t, err)
	results = append(results, r)

	for _, r := range results {
		assert.True(t, r.IsError)
		assert.True(t, strings.Contains(resultText(t, r), "Retry after 5 seconds"))
	}
}

func TestListCollectionsToolHandler(t *testing.T) {
	result, _, err := ListCollectionsToolHandler(context.Background(), nil, ListCollectionsQuery{TopLevelOnly: true}, fixture(), logger.NewNoOpLogger())
	require.NoError(t, err)
	assert.False(t, result.IsError)
	assert.Contains(t, resultText(t, result), "[COLL0001] Reading")
}

func TestToolDefinitions(t *testing.T) {
	defs := []*mcp.Tool{SearchItemsTool(), ItemMetadataTool(), ItemFulltextTool(), ListCollectionsTool(), ExportBibTeXTool()}
	names := map[string]bool{}
	for _, d := range defs {
		assert.NotEmpty(t, d.Description)
		assert.NotNil(t, d.InputSchema)
		names[d.Name] = true
	}
	for _, n := range []string{"search_items", "get_item_metadata", "get_item_fulltext", "list_collections", "export_bibtex"} {
		assert.True(t, names[n], "missing tool %s", n)
	}
}

// Newer Zotero desktop versions serve /fulltext locally, so the tool must not
// steer agents away from local mode.
func TestItemFulltextToolDescribesLocalMode(t *testing.T) {
	desc := ItemFulltextTool().Description
	assert.Contains(t, desc, "May be unavailable in local mode")
	assert.NotContains(t, desc, "Only available through the Zotero web API")
}
