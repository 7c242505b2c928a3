package mcp

import (
	"context"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"
)

func (h *handlers) categories(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	categories, err := h.ds.Categories(ctx)
	if err != nil {
		return nil, err
	}

	data, err := json.Marshal(categories)
	if err != nil {
		return nil, err
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
