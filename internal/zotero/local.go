package zotero

import (
	"context"
	"net/http"

	"github.com/Epistemic-Technology/zotero-mcp/internal/config"
	"github.com/Epistemic-Technology/zotero-mcp/internal/logger"
	"github.com/Epistemic-Technology/zotero-mcp/models"
)

const localHint = "is Zotero running with \"Allow other applications on this computer to communicate with Zotero\" enabled?"

// LocalClient talks to the API served by the Zotero desktop application.
// It needs no credentials and always addresses library users/0.
type LocalClient struct {
	api *apiClient
}

var _ Backend = (*LocalClient)(nil)

// NewLocalClient creates a backend for the local API described by cfg.
func NewLocalClient(cfg *config.Config, log logger.Logger) *LocalClient {
	api := newAPIClient(cfg, log)
	api.library.APIKey = ""
	api.hint = localHint
	return &LocalClient{api: api}
}

func (c *LocalClient) Mode() models.Mode { return models.ModeLocal }

func (c *LocalClient) Search(ctx context.Context, q models.SearchQuery) (*models.SearchResult, error) {
	return c.api.search(ctx, q)
}

func (c *LocalClient) Item(ctx context.Context, key string) (*models.Item, error) {
	return c.api.item(ctx, "item", key)
}

// Fulltext reports NotSupported when the desktop app refuses the fulltext
// endpoint. Several Zotero releases answer 404, 400 or 501 there.
func (c *LocalClient) Fulltext(ctx context.Context, key string) (*models.Fulltext, error) {
	return c.api.fulltext(ctx, key, func(e *Error) error {
		switch e.Status {
		case http.StatusNotFound, http.StatusBadRequest, http.StatusNotImplemented:
			e.Kind = KindNotSupported
			e.Err = ErrFulltextUnavailable
		}
		return e
	})
}

func (c *LocalClient) Collections(ctx context.Context, q models.CollectionQuery) ([]models.Collection, error) {
	return c.api.collections(ctx, q)
}
