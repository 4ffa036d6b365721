package tools

import (
	"context"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/Epistemic-Technology/zotero-mcp/internal/format"
	"github.com/Epistemic-Technology/zotero-mcp/internal/logger"
	"github.com/Epistemic-Technology/zotero-mcp/internal/operations"
	"github.com/Epistemic-Technology/zotero-mcp/internal/zotero"
)

type ItemKeyQuery struct {
	ItemKey string `json:"item_key" jsonschema:"Zotero item key, e.g. ABCD1234"`
}

func ItemMetadataTool() *mcp.Tool {
	inputschema, err := jsonschema.For[ItemKeyQuery](nil)
	if err != nil {
		panic(err)
	}
	return &mcp.Tool{
		Name:        "get_item_metadata",
		Description: "Get the bibliographic metadata of a Zotero item: title, type, creators, date, publication, identifiers, abstract and tags.",
		InputSchema: inputschema,
	}
}

func ItemMetadataToolHandler(ctx context.Context, req *mcp.CallToolRequest, query ItemKeyQuery, backend zotero.Backend, log logger.Logger) (*mcp.CallToolResult, any, error) {
	log.Info("get_item_metadata tool called for %s", query.ItemKey)

	item, err := operations.GetItem(ctx, backend, query.ItemKey, log)
	if zotero.IsKind(err, zotero.KindNotFound) {
		return textResult(notFoundMessage(query.ItemKey)), nil, nil
	}
	if err != nil {
		return failureResult("get_item_metadata", err, log), nil, nil
	}

	return textResult(format.Item(item)), nil, nil
}
