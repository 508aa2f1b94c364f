package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/felixgeelhaar/mcp-go"
)

// RegisterResources registers MCP resources that expose the current user's day.
func RegisterResources(srv *mcp.Server, deps ToolDependencies) error {
	if srv == nil {
		return fmt.Errorf("server is required")
	}
	if deps.App == nil {
		return fmt.Errorf("app is required")
	}
	t := newToolset(deps.App)

	srv.Resource("behavior://baseline").
		Name("Baseline").
		Description("The scoring baseline of the current user").
		MimeType("application/json").
		Handler(func(ctx context.Context, uri string, params map[string]string) (*mcp.ResourceContent, error) {
			b, err := t.getBaseline(ctx)
			if err != nil {
				return nil, err
			}
			return jsonResource(uri, b)
		})

	srv.Resource("behavior://today/aggregate").
		Name("Today's aggregate").
		Description("Totals, dimensions and histogram of today's sessions").
		MimeType("application/json").
		Handler(func(ctx context.Context, uri string, params map[string]string) (*mcp.ResourceContent, error) {
			agg, err := t.aggregate(ctx, windowInput{})
			if err != nil {
				return nil, err
			}
			return jsonResource(uri, agg)
		})

	srv.Resource("behavior://today/advice").
		Name("Today's advice").
		Description("Fix and keep cards for today").
		MimeType("application/json").
		Handler(func(ctx context.Context, uri string, params map[string]string) (*mcp.ResourceContent, error) {
			advice, err := t.advice(ctx, windowInput{})
			if err != nil {
				return nil, err
			}
			return jsonResource(uri, advice)
		})

	srv.Resource("behavior://yesterday/digest").
		Name("Yesterday's digest").
		Description("The stored digest of yesterday").
		MimeType("application/json").
		Handler(func(ctx context.Context, uri string, params map[string]string) (*mcp.ResourceContent, error) {
			d, err := t.digest(ctx, dateInput{})
			if err != nil {
				return nil, err
			}
			return jsonResource(uri, d)
		})

	return nil
}

func jsonResource(uri string, v any) (*mcp.ResourceContent, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, err
	}
	return &mcp.ResourceContent{
		URI:      uri,
		MimeType: "application/json",
		Text:     string(data),
	}, nil
}
