package zotero

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Epistemic-Technology/zotero/zotero"

	"github.com/Epistemic-Technology/zotero-mcp/internal/config"
	"github.com/Epistemic-Technology/zotero-mcp/internal/logger"
	"github.com/Epistemic-Technology/zotero-mcp/models"
)

// RemoteClient talks to the Zotero web API.
type RemoteClient struct {
	api *apiClient

	// lib serves collection listings. Pacing stays with api.limiter, so the
	// library's own limiter is switched off.
	lib *zotero.Client
}

var _ Backend = (*RemoteClient)(nil)

// NewRemoteClient creates a backend for the web API described by cfg.
func NewRemoteClient(cfg *config.Config, log logger.Logger) *RemoteClient {
	libraryType := zotero.LibraryTypeUser
	if cfg.Library.LibraryType == models.LibraryTypeGroup {
		libraryType = zotero.LibraryTypeGroup
	}
	return &RemoteClient{
		api: newAPIClient(cfg, log),
		lib: zotero.NewClient(cfg.Library.LibraryID, libraryType,
			zotero.WithAPIKey(cfg.Library.APIKey),
			zotero.WithBaseURL(cfg.BaseURL),
			zotero.WithTimeout(cfg.Timeout),
			zotero.WithRateLimit(0),
		),
	}
}

func (c *RemoteClient) Mode() models.Mode { return models.ModeRemote }

func (c *RemoteClient) Search(ctx context.Context, q models.SearchQuery) (*models.SearchResult, error) {
	return c.api.search(ctx, q)
}

func (c *RemoteClient) Item(ctx context.Context, key string) (*models.Item, error) {
	return c.api.item(ctx, "item", key)
}

// Fulltext treats a 404 from the fulltext endpoint as "not indexed": the
// attachment was already found, so the text is what is missing.
func (c *RemoteClient) Fulltext(ctx context.Context, key string) (*models.Fulltext, error) {
	return c.api.fulltext(ctx, key, func(e *Error) error {
		if e.Kind == KindNotFound {
			e.Err = ErrNoFulltext
		}
		return e
	})
}

func (c *RemoteClient) Collections(ctx context.Context, q models.CollectionQuery) ([]models.Collection, error) {
	if err := c.api.limiter.Wait(ctx); err != nil {
		return nil, &Error{Kind: KindCanceled, Op: "collections", Err: err}
	}

	params := &zotero.QueryParams{
		Limit: clampCollectionLimit(q.Limit),
		Sort:  "title",
	}

	var (
		collections []zotero.Collection
		err         error
	)
	switch {
	case q.ParentCollection != "":
		c.api.log.Debug("Retrieving subcollections of %s", q.ParentCollection)
		collections, err = c.lib.CollectionsSub(ctx, q.ParentCollection, params)
	case q.TopLevelOnly:
		c.api.log.Debug("Retrieving top-level collections")
		collections, err = c.lib.CollectionsTop(ctx, params)
	default:
		c.api.log.Debug("Retrieving all collections")
		collections, err = c.lib.Collections(ctx, params)
	}
	if err != nil {
		return nil, classifyLibError(ctx, q.ParentCollection, err)
	}

	results := make([]models.Collection, 0, len(collections))
	for _, collection := range collections {
		results = append(results, models.Collection{
			Key:              collection.Data.Key,
			Name:             collection.Data.Name,
			ParentCollection: collection.Data.ParentCollection.String(),
			NumItems:         collection.Meta.NumItems,
		})
	}
	return results, nil
}

// classifyLibError maps errors from the zotero client library, which only
// reports statuses in its messages, formatted as "API error: <body> (status N)".
func classifyLibError(ctx context.Context, key string, err error) error {
	e := &Error{Kind: KindTransport, Op: "collections", Key: key, Err: err}
	msg := err.Error()
	switch {
	case ctx.Err() != nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
		e.Kind = KindCanceled
	case strings.Contains(msg, "(status 429)"):
		e.Kind = KindRateLimited
		e.Status = 429
	case strings.Contains(msg, "(status 404)"):
		e.Kind = KindNotFound
		e.Status = 404
		e.Err = fmt.Errorf("collection not found: %w", err)
	}
	return e
}
