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

type ListCollectionsQuery struct {
	TopLevelOnly     bool   `json:"top_level_only,omitempty" jsonschema:"only list collections without a parent"`
	ParentCollection string `json:"parent_collection,omitempty" jsonschema:"list the subcollections of this collection key"`
	Limit            int    `json:"limit,omitempty" jsonschema:"maximum number of collections, default 100"`
}

func ListCollectionsTool() *mcp.Tool {
	inputschema, err := jsonschema.For[ListCollectionsQuery](nil)
	if err != nil {
		panic(err)
	}
	return &mcp.Tool{
		Name:        "list_collections",
		Description: "List collections in the Zotero library with their keys and parent collections. Use parent_collection to walk the collection tree.",
		InputSchema: inputschema,
	}
}

func ListCollectionsToolHandler(ctx context.Context, req *mcp.CallToolRequest, query ListCollectionsQuery, backend zotero.Backend, log logger.Logger) (*mcp.CallToolResult, any, error) {
	log.Info("list_collections tool called")

	cols, err := operations.ListCollections(ctx, backend, operations.ListCollectionsParams{
		TopLevelOnly:     query.TopLevelOnly,
		ParentCollection: query.ParentCollection,
		Limit:            query.Limit,
	}, log)
	if zotero.IsKind(err, zotero.KindNotFound) {
		return textResult("No collection found with key: " + query.ParentCollection), nil, nil
	}
	if err != nil {
		return failureResult("list_collections", err, log), nil, nil
	}

	return textResult(format.Collections(cols)), nil, nil
}
