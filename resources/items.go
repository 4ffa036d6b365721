package resources

import (
	"context"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/Epistemic-Technology/zotero-mcp/internal/format"
	"github.com/Epistemic-Technology/zotero-mcp/internal/logger"
	"github.com/Epistemic-Technology/zotero-mcp/internal/operations"
	"github.com/Epistemic-Technology/zotero-mcp/internal/zotero"
)

const (
	// ItemURITemplate addresses the formatted metadata of an item.
	ItemURITemplate = "zotero://items/{itemKey}"
	// FulltextURITemplate addresses the indexed full text of an item.
	FulltextURITemplate = "zotero://items/{itemKey}/fulltext"

	itemURIPrefix = "zotero://items/"
)

// ItemResourceHandler serves Zotero items as text resources, rendered the
// same way as the get_item_metadata and get_item_fulltext tools.
type ItemResourceHandler struct {
	backend zotero.Backend
	log     logger.Logger
}

// NewItemResourceHandler creates a new item resource handler
func NewItemResourceHandler(backend zotero.Backend, log logger.Logger) *ItemResourceHandler {
	return &ItemResourceHandler{backend: backend, log: log}
}

// ReadResource reads a specific resource by URI
func (h *ItemResourceHandler) ReadResource(ctx context.Context, uri string) (*mcp.ReadResourceResult, error) {
	// Parse URI: zotero://items/<key>[/fulltext]
	if !strings.HasPrefix(uri, itemURIPrefix) {
		return nil, fmt.Errorf("invalid URI scheme, expected %s", itemURIPrefix)
	}
	parts := strings.Split(strings.TrimPrefix(uri, itemURIPrefix), "/")
	if parts[0] == "" {
		return nil, fmt.Errorf("invalid URI, missing item key")
	}
	key := parts[0]

	var (
		content string
		err     error
	)
	switch {
	case len(parts) == 1:
		content, err = h.getMetadata(ctx, key)
	case len(parts) == 2 && parts[1] == "fulltext":
		content, err = h.getFulltext(ctx, key)
	default:
		return nil, fmt.Errorf("unknown resource type: %s", strings.Join(parts[1:], "/"))
	}
	if zotero.IsKind(err, zotero.KindNotFound) {
		return nil, mcp.ResourceNotFoundError(uri)
	}
	if err != nil {
		return nil, err
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{
			{
				URI:      uri,
				MIMEType: "text/plain",
				Text:     content,
			},
		},
	}, nil
}

func (h *ItemResourceHandler) getMetadata(ctx context.Context, key string) (string, error) {
	item, err := operations.GetItem(ctx, h.backend, key, h.log)
	if err != nil {
		return "", err
	}
	return format.Item(item), nil
}

func (h *ItemResourceHandler) getFulltext(ctx context.Context, key string) (string, error) {
	ft, err := operations.GetFulltext(ctx, h.backend, key, h.log)
	if err != nil {
		return "", err
	}
	return format.Fulltext(ft), nil
}
