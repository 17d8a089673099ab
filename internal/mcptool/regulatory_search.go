package mcptool

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/MikeSquared-Agency/Underwriter/internal/regulations"
)

type RegulatorySearchInput struct {
	Query string `json:"query" jsonschema:"question about loan products, terms or regulations"`
	Limit int    `json:"limit,omitempty" jsonschema:"maximum passages to return (default 4)"`
}

type RegulatorySearchResult struct {
	Passages []regulations.Passage `json:"passages" jsonschema:"retrieved passages with their source document"`
	Text     string                `json:"text" jsonschema:"passages joined with source citations"`
}

// RegulatorySearchTool defines the MCP tool schema for regulation lookup.
func RegulatorySearchTool() *mcp.Tool {
	return &mcp.Tool{
		Name: "regulatory_search",
		Description: "Search the bank's loan product descriptions, regulations and terms. " +
			"Use it for questions such as eligibility conditions or early repayment fees.",
	}
}

func RegulatorySearchHandler(client regulations.Client) mcp.ToolHandlerFor[RegulatorySearchInput, RegulatorySearchResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input RegulatorySearchInput) (*mcp.CallToolResult, RegulatorySearchResult, error) {
		passages, err := client.Search(ctx, input.Query, input.Limit)
		if err != nil {
			return nil, RegulatorySearchResult{}, fmt.Errorf("regulatory search failed: %w", err)
		}
		if passages == nil {
			passages = []regulations.Passage{}
		}
		text := regulations.Format(passages)
		if len(passages) == 0 {
			text = "No matching regulation or product information was found."
		}
		return nil, RegulatorySearchResult{Passages: passages, Text: text}, nil
	}
}
