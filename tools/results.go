package tools

import (
	"errors"
	"fmt"
	"math"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/Epistemic-Technology/zotero-mcp/internal/logger"
	"github.com/Epistemic-Technology/zotero-mcp/internal/operations"
	"github.com/Epistemic-Technology/zotero-mcp/internal/zotero"
)

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
	}
}

func errorResult(format string, args ...any) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: fmt.Sprintf(format, args...)}},
		IsError: true,
	}
}

// notFoundMessage is the soft result shown for a missing item key.
func notFoundMessage(key string) string {
	return fmt.Sprintf("No item found with key: %s", key)
}

// failureResult turns an error that is not an expected outcome of the tool
// into an error result. Every error maps to a kind, so nothing reaches the
// SDK as a Go error.
func failureResult(tool string, err error, log logger.Logger) *mcp.CallToolResult {
	if errors.Is(err, operations.ErrInvalidArgument) {
		return errorResult("Invalid input: %v", err)
	}

	kind := zotero.KindOf(err)
	log.Warn("%s failed (%s): %v", tool, kind, err)
	switch kind {
	case zotero.KindRateLimited:
		if wait := zotero.RetryAfter(err); wait > 0 {
			return errorResult("Zotero is rate limiting requests (%s). Retry after %d seconds.", kind, int(math.Ceil(wait.Seconds())))
		}
		return errorResult("Zotero is rate limiting requests (%s). Wait a moment and retry.", kind)
	case zotero.KindCanceled:
		return errorResult("The request to Zotero was canceled (%s): %v", kind, err)
	case zotero.KindNotFound:
		return errorResult("Not found (%s): %v", kind, err)
	case zotero.KindNotSupported:
		return errorResult("Not supported by this Zotero API (%s): %v", kind, err)
	default:
		return errorResult("Zotero request failed (%s): %v", kind, err)
	}
}
