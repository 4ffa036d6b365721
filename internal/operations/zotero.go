package operations

import (
	"context"
	"fmt"
	"strings"

	"github.com/Epistemic-Technology/zotero-mcp/internal/citations"
	"github.com/Epistemic-Technology/zotero-mcp/internal/logger"
	"github.com/Epistemic-Technology/zotero-mcp/internal/zotero"
	"github.com/Epistemic-Technology/zotero-mcp/models"
)

// MaxExportItems bounds a single BibTeX export.
const MaxExportItems = 50

// SearchParams contains parameters for searching a Zotero library.
type SearchParams struct {
	Query string // Quick search text, required
	QMode string // "titleCreatorYear" (default) or "everything"
	Tag   string // Optional tag filter
	Limit int    // Max results (default 25, at most 100)
}

// SearchItems validates params and runs a quick search. The returned items
// keep the backend's relevance order.
func SearchItems(ctx context.Context, backend zotero.Backend, params SearchParams, log logger.Logger) (*models.SearchResult, error) {
	query := strings.TrimSpace(params.Query)
	if query == "" {
		return nil, ErrEmptyQuery
	}

	qmode := params.QMode
	switch qmode {
	case "":
		qmode = models.QModeTitleCreator
	case models.QModeTitleCreator, models.QModeEverything:
	default:
		return nil, fmt.Errorf("%w: qmode must be %q or %q, got %q",
			ErrInvalidArgument, models.QModeTitleCreator, models.QModeEverything, qmode)
	}

	limit := zotero.ClampLimit(params.Limit)
	if params.Limit > limit {
		log.Debug("Search limit %d clamped to %d", params.Limit, limit)
	}

	log.Info("Searching %s library for %q (qmode=%s, limit=%d)", backend.Mode(), query, qmode, limit)
	result, err := backend.Search(ctx, models.SearchQuery{
		Query: query,
		QMode: qmode,
		Tag:   strings.TrimSpace(params.Tag),
		Limit: limit,
	})
	if err != nil {
		log.Error("Search for %q failed: %v", query, err)
		return nil, err
	}

	log.Info("Found %d items (total %d)", len(result.Items), result.Total)
	return result, nil
}

// GetItem fetches the metadata of one item.
func GetItem(ctx context.Context, backend zotero.Backend, key string, log logger.Logger) (*models.Item, error) {
	key, err := normalizeKey(key)
	if err != nil {
		return nil, err
	}

	log.Info("Retrieving item %s", key)
	item, err := backend.Item(ctx, key)
	if err != nil {
		logBackendError(log, "Retrieving item "+key, err)
		return nil, err
	}
	return item, nil
}

// GetFulltext fetches the indexed text for an item or attachment key.
func GetFulltext(ctx context.Context, backend zotero.Backend, key string, log logger.Logger) (*models.Fulltext, error) {
	key, err := normalizeKey(key)
	if err != nil {
		return nil, err
	}

	log.Info("Retrieving full text for %s", key)
	ft, err := backend.Fulltext(ctx, key)
	if err != nil {
		logBackendError(log, "Retrieving full text for "+key, err)
		return nil, err
	}

	log.Info("Retrieved %d characters of full text from attachment %s", len(ft.Content), ft.ItemKey)
	return ft, nil
}

// ExportResult is a BibTeX document plus the keys that could not be exported.
type ExportResult struct {
	BibTeX  string
	Items   []models.Item
	Missing []string
}

// ExportBibTeX fetches each key and renders the found items as BibTeX.
// Missing keys are reported rather than failing the export; any other
// backend error aborts it.
func ExportBibTeX(ctx context.Context, backend zotero.Backend, keys []string, log logger.Logger) (*ExportResult, error) {
	if len(keys) == 0 {
		return nil, fmt.Errorf("%w: item_keys must contain at least one key", ErrInvalidArgument)
	}
	if len(keys) > MaxExportItems {
		return nil, fmt.Errorf("%w: at most %d item_keys per export, got %d", ErrInvalidArgument, MaxExportItems, len(keys))
	}

	seen := make(map[string]bool, len(keys))
	result := &ExportResult{}
	for _, raw := range keys {
		key, err := normalizeKey(raw)
		if err != nil {
			return nil, err
		}
		if seen[key] {
			continue
		}
		seen[key] = true

		item, err := backend.Item(ctx, key)
		if zotero.IsKind(err, zotero.KindNotFound) {
			log.Warn("Skipping missing item %s in BibTeX export", key)
			result.Missing = append(result.Missing, key)
			continue
		}
		if err != nil {
			log.Error("BibTeX export failed at item %s: %v", key, err)
			return nil, err
		}
		result.Items = append(result.Items, *item)
	}

	if len(result.Items) > 0 {
		result.BibTeX = citations.BibTeX(result.Items)
	}
	log.Info("Exported %d items to BibTeX (%d missing)", len(result.Items), len(result.Missing))
	return result, nil
}

// logBackendError logs expected outcomes such as a missing item below error level.
func logBackendError(log logger.Logger, action string, err error) {
	switch zotero.KindOf(err) {
	case zotero.KindNotFound, zotero.KindNotSupported:
		log.Info("%s: %v", action, err)
	case zotero.KindCanceled:
		log.Warn("%s: %v", action, err)
	default:
		log.Error("%s: %v", action, err)
	}
}
