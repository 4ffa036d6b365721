package tools

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/Epistemic-Technology/zotero-mcp/internal/format"
	"github.com/Epistemic-Technology/zotero-mcp/internal/logger"
	"github.com/Epistemic-Technology/zotero-mcp/internal/operations"
	"github.com/Epistemic-Technology/zotero-mcp/internal/zotero"
	"github.com/Epistemic-Technology/zotero-mcp/models"
)

func ItemFulltextTool() *mcp.Tool {
	inputschema, err := jsonschema.For[ItemKeyQuery](nil)
	if err != nil {
		panic(err)
	}
	return &mcp.Tool{
		Name:        "get_item_fulltext",
		Description: "Get the full text Zotero has indexed for an item. Accepts a regular item key (its best attachment is used) or an attachment key. May be unavailable in local mode, depending on the Zotero desktop version.",
		InputSchema: inputschema,
	}
}

func ItemFulltextToolHandler(ctx context.Context, req *mcp.CallToolRequest, query ItemKeyQuery, backend zotero.Backend, log logger.Logger) (*mcp.CallToolResult, any, error) {
	log.Info("get_item_fulltext tool called for %s", query.ItemKey)

	ft, err := operations.GetFulltext(ctx, backend, query.ItemKey, log)
	if err == nil {
		return textResult(format.Fulltext(ft)), nil, nil
	}
	if msg, ok := fulltextMessage(query.ItemKey, backend.Mode(), err); ok {
		return textResult(msg), nil, nil
	}
	return failureResult("get_item_fulltext", err, log), nil, nil
}

// fulltextMessage explains the expected ways a fulltext lookup comes up
// empty. It reports false for real failures.
func fulltextMessage(key string, mode models.Mode, err error) (string, bool) {
	switch {
	case zotero.IsKind(err, zotero.KindNotSupported):
		if mode == models.ModeLocal {
			return fmt.Sprintf("Full text is not available in local mode: the Zotero desktop API does not serve indexed text (item %s). "+
				"Set ZOTERO_LIBRARY_ID and ZOTERO_API_KEY without ZOTERO_LOCAL to read full text through the web API.", key), true
		}
		return fmt.Sprintf("Full text is not available from this Zotero API (item %s).", key), true
	case errors.Is(err, zotero.ErrNoAttachment):
		return fmt.Sprintf("Item %s has no attachment to read full text from.", key), true
	case errors.Is(err, zotero.ErrNoFulltext):
		return fmt.Sprintf("The attachment of item %s has not been indexed by Zotero, so no full text is available.", key), true
	case zotero.IsKind(err, zotero.KindNotFound):
		return notFoundMessage(key), true
	default:
		return "", false
	}
}
