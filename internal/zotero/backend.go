// Package zotero reaches a Zotero library through either the web API or the
// desktop application's local API. Both satisfy Backend so callers never
// branch on where the library lives.
package zotero

import (
	"context"
	"fmt"

	"github.com/Epistemic-Technology/zotero-mcp/internal/config"
	"github.com/Epistemic-Technology/zotero-mcp/internal/logger"
	"github.com/Epistemic-Technology/zotero-mcp/models"
)

// Backend is the capability set every Zotero API variant provides.
// Implementations are safe for concurrent use and every method honors ctx.
type Backend interface {
	// Mode reports which API this backend talks to.
	Mode() models.Mode
	// Search runs a quick search and returns at most q.Limit items in relevance order.
	Search(ctx context.Context, q models.SearchQuery) (*models.SearchResult, error)
	// Item fetches a single item by key.
	Item(ctx context.Context, key string) (*models.Item, error)
	// Fulltext returns the indexed text for an attachment, or for the best
	// attachment of a regular item.
	Fulltext(ctx context.Context, key string) (*models.Fulltext, error)
	// Collections lists collections of the library.
	Collections(ctx context.Context, q models.CollectionQuery) ([]models.Collection, error)
}

// New returns the backend selected by cfg.
func New(cfg *config.Config, log logger.Logger) (Backend, error) {
	switch cfg.Library.Mode {
	case models.ModeLocal:
		log.Info("Using local Zotero API at %s", cfg.BaseURL)
		return NewLocalClient(cfg, log), nil
	case models.ModeRemote:
		log.Info("Using Zotero web API at %s for library %s", cfg.BaseURL, cfg.Library.Prefix())
		return NewRemoteClient(cfg, log), nil
	default:
		return nil, fmt.Errorf("%w: unknown library mode %q", config.ErrConfigInvalid, cfg.Library.Mode)
	}
}
