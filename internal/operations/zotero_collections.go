package operations

import (
	"context"
	"strings"

	"github.com/Epistemic-Technology/zotero-mcp/internal/logger"
	"github.com/Epistemic-Technology/zotero-mcp/internal/zotero"
	"github.com/Epistemic-Technology/zotero-mcp/models"
)

// ListCollectionsParams contains parameters for listing Zotero collections.
type ListCollectionsParams struct {
	TopLevelOnly     bool   // List only top-level collections
	ParentCollection string // List subcollections of this collection key
	Limit            int    // Max results (default 100)
}

// ListCollections retrieves collections from the library. A parent
// collection takes precedence over TopLevelOnly.
func ListCollections(ctx context.Context, backend zotero.Backend, params ListCollectionsParams, log logger.Logger) ([]models.Collection, error) {
	query := models.CollectionQuery{
		TopLevelOnly: params.TopLevelOnly,
		Limit:        params.Limit,
	}
	if parent := strings.TrimSpace(params.ParentCollection); parent != "" {
		key, err := normalizeKey(parent)
		if err != nil {
			return nil, err
		}
		query.ParentCollection = key
		query.TopLevelOnly = false
	}

	switch {
	case query.ParentCollection != "":
		log.Info("Retrieving subcollections for collection: %s", query.ParentCollection)
	case query.TopLevelOnly:
		log.Info("Retrieving top-level collections")
	default:
		log.Info("Retrieving all collections")
	}

	collections, err := backend.Collections(ctx, query)
	if err != nil {
		logBackendError(log, "Retrieving collections", err)
		return nil, err
	}

	log.Info("Found %d collections in Zotero library", len(collections))
	return collections, nil
}
