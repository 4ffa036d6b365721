package operations

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Epistemic-Technology/zotero-mcp/internal/logger"
	"github.com/Epistemic-Technology/zotero-mcp/internal/zotero/zoterotest"
	"github.com/Epistemic-Technology/zotero-mcp/models"
)

func TestListCollections(t *testing.T) {
	backend := zoterotest.New()
	backend.AddCollection(models.Collection{Key: "TOP00001", Name: "Reading"})
	backend.AddCollection(models.Collection{Key: "SUB00001", Name: "Theses", ParentCollection: "TOP00001"})
	backend.AddCollection(models.Collection{Key: "TOP00002", Name: "Writing"})

	tests := []struct {
		name     string
		params   ListCollectionsParams
		wantKeys []string
	}{
		{name: "all", params: ListCollectionsParams{}, wantKeys: []string{"TOP00001", "SUB00001", "TOP00002"}},
		{name: "top level only", params: ListCollectionsParams{TopLevelOnly: true}, wantKeys: []string{"TOP00001", "TOP00002"}},
		{name: "subcollections", params: ListCollectionsParams{ParentCollection: "TOP00001"}, wantKeys: []string{"SUB00001"}},
		{name: "parent wins over top level", params: ListCollectionsParams{ParentCollection: "TOP00001", TopLevelOnly: true}, wantKeys: []string{"SUB00001"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cols, err := ListCollections(context.Background(), backend, tt.params, logger.NewNoOpLogger())
			require.NoError(t, err)
			var keys []string
			for _, c := range cols {
				keys = append(keys, c.Key)
			}
			assert.Equal(t, tt.wantKeys, keys)
		})
	}
}

func TestListCollectionsInvalidParent(t *testing.T) {
	backend := zoterotest.New()
	_, err := ListCollections(context.Background(), backend, ListCollectionsParams{ParentCollection: "a/b"}, logger.NewNoOpLogger())
	assert.ErrorIs(t, err, ErrInvalidArgument)
	assert.Zero(t, backend.Calls("Collections"))
}

func TestListCollections_Integration(t *testing.T) {
	backend := liveBackend(t)

	cols, err := ListCollections(context.Background(), backend, ListCollectionsParams{TopLevelOnly: true, Limit: 10}, logger.NewNoOpLogger())
	require.NoError(t, err)
	for i, c := range cols {
		assert.NotEmpty(t, c.Key)
		assert.Empty(t, c.ParentCollection, "collection %d has a parent but TopLevelOnly was set", i)
		t.Logf("Collection %d: %s", i, c.Name)
	}
}
