package server

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/Epistemic-Technology/zotero-mcp/internal/logger"
	"github.com/Epistemic-Technology/zotero-mcp/internal/zotero"
	"github.com/Epistemic-Technology/zotero-mcp/resources"
	"github.com/Epistemic-Technology/zotero-mcp/tools"
)

// Version is reported to MCP clients; overridden at build time.
var Version = "v0.1.0"

// CreateServer registers every tool and resource against backend.
func CreateServer(backend zotero.Backend, log logger.Logger) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{Name: "zotero-mcp", Version: Version}, nil)

	itemResourceHandler := resources.NewItemResourceHandler(backend, log)

	// Register tools with backend and logger dependencies
	mcp.AddTool(server, tools.SearchItemsTool(), func(ctx context.Context, req *mcp.CallToolRequest, query tools.SearchItemsQuery) (*mcp.CallToolResult, any, error) {
		return tools.SearchItemsToolHandler(ctx, req, query, backend, log)
	})

	mcp.AddTool(server, tools.ItemMetadataTool(), func(ctx context.Context, req *mcp.CallToolRequest, query tools.ItemKeyQuery) (*mcp.CallToolResult, any, error) {
		return tools.ItemMetadataToolHandler(ctx, req, query, backend, log)
	})

	mcp.AddTool(server, tools.ItemFulltextTool(), func(ctx context.Context, req *mcp.CallToolRequest, query tools.ItemKeyQuery) (*mcp.CallToolResult, any, error) {
		return tools.ItemFulltextToolHandler(ctx, req, query, backend, log)
	})

	mcp.AddTool(server, tools.ListCollectionsTool(), func(ctx context.Context, req *mcp.CallToolRequest, query tools.ListCollectionsQuery) (*mcp.CallToolResult, any, error) {
		return tools.ListCollectionsToolHandler(ctx, req, query, backend, log)
	})

	mcp.AddTool(server, tools.ExportBibTeXTool(), func(ctx context.Context, req *mcp.CallToolRequest, query tools.ExportBibTeXQuery) (*mcp.CallToolResult, any, error) {
		return tools.ExportBibTeXToolHandler(ctx, req, query, backend, log)
	})

	// Template for item metadata
	server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: resources.ItemURITemplate,
		Name:        "zotero-item",
		Description: "Bibliographic metadata of a Zotero item",
		MIMEType:    "text/plain",
	}, func(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
		return itemResourceHandler.ReadResource(ctx, req.Params.URI)
	})

	// Template for indexed full text
	server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: resources.FulltextURITemplate,
		Name:        "zotero-item-fulltext",
		Description: "Full text Zotero has indexed for an item or attachment",
		MIMEType:    "text/plain",
	}, func(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
		return itemResourceHandler.ReadResource(ctx, req.Params.URI)
	})

	log.Info("Registered 5 tools and 2 resource templates (%s mode)", backend.Mode())
	return server
}
