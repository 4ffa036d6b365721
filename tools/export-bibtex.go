package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/Epistemic-Technology/zotero-mcp/internal/logger"
	"github.com/Epistemic-Technology/zotero-mcp/internal/operations"
	"github.com/Epistemic-Technology/zotero-mcp/internal/zotero"
)

const exportBibTeXName = "export_bibtex"

// ExportBibTeXQuery is the input of the export_bibtex tool.
type ExportBibTeXQuery struct {
	ItemKeys []string `json:"item_keys" jsonschema:"Zotero item keys to export, between 1 and 50"`
}

// ExportBibTeXTool declares export_bibtex.
func ExportBibTeXTool() *mcp.Tool {
	schema, err := jsonschema.For[ExportBibTeXQuery](nil)
	if err != nil {
		panic(err)
	}
	return &mcp.Tool{
		Name: exportBibTeXName,
		Description: fmt.Sprintf("Export up to %d Zotero items as BibTeX. Citekeys are generated from "+
			"author names and year (smith2020, smithJones2021, smithEtAl2020). "+
			"Keys that do not exist are listed after the bibliography.", operations.MaxExportItems),
		InputSchema: schema,
	}
}

// ExportBibTeXToolHandler renders the found items as one BibTeX document.
// Missing keys end up in a trailing BibTeX comment.
func ExportBibTeXToolHandler(ctx context.Context, req *mcp.CallToolRequest, query ExportBibTeXQuery, backend zotero.Backend, log logger.Logger) (*mcp.CallToolResult, any, error) {
	log.Info("%s tool called for %d keys", exportBibTeXName, len(query.ItemKeys))

	export, err := operations.ExportBibTeX(ctx, backend, query.ItemKeys, log)
	if err != nil {
		return failureResult(exportBibTeXName, err, log), nil, nil
	}

	missing := strings.Join(export.Missing, ", ")
	switch {
	case len(export.Items) == 0:
		return textResult("None of the requested items were found: " + missing), nil, nil
	case len(export.Missing) == 0:
		return textResult(export.BibTeX), nil, nil
	default:
		return textResult(fmt.Sprintf("%s\n%% Not found: %s\n", export.BibTeX, missing)), nil, nil
	}
}
