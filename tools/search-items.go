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

type SearchItemsQuery struct {
	Query string `json:"query" jsonschema:"search text matched against titles, creators and years"`
	Limit int    `json:"limit,omitempty" jsonschema:"maximum number of results, default 25, at most 100"`
	QMode string `json:"qmode,omitempty" jsonschema:"titleCreatorYear (default) or everything to also search full text and notes"`
	Tag   string `json:"tag,omitempty" jsonschema:"only return items with this tag; supports Zotero syntax such as 'a || b' and '-c'"`
}

func SearchItemsTool() *mcp.Tool {
	inputschema, err := jsonschema.For[SearchItemsQuery](nil)
	if err != nil {
		panic(err)
	}
	return &mcp.Tool{
		Name:        "search_items",
		Description: "Search the Zotero library. Returns a numbered list of matching items with their keys, types, creators, dates and a short abstract. Use an item key with get_item_metadata or get_item_fulltext for details.",
		InputSchema: inputschema,
	}
}

func SearchItemsToolHandler(ctx context.Context, req *mcp.CallToolRequest, query SearchItemsQuery, backend zotero.Backend, log logger.Logger) (*mcp.CallToolResult, any, error) {
	log.Info("search_items tool called")

	result, err := operations.SearchItems(ctx, backend, operations.SearchParams{
		Query: query.Query,
		QMode: query.QMode,
		Tag:   query.Tag,
		Limit: query.Limit,
	}, log)
	if err != nil {
		return failureResult("search_items", err, log), nil, nil
	}

	return textResult(format.Items(result, query.Query)), nil, nil
}
