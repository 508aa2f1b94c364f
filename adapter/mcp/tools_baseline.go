package mcp

import (
	"context"

	"github.com/felixgeelhaar/mcp-go"

	"github.com/felixgeelhaar/behaviortracker/adapter/api"
)

func registerBaselineTools(srv *mcp.Server, t *toolset) {
	srv.Tool("behavior.baseline.get").
		Description("Show the current user's scoring baseline").
		Handler(func(ctx context.Context, input struct{}) (*api.BaselineResponse, error) {
			return t.getBaseline(ctx)
		})

	srv.Tool("behavior.baseline.set").
		Description("Replace the scoring baseline. Rule maps hold -1, 0 or 1 per trigger, goal, activity and content value").
		Handler(func(ctx context.Context, input api.BaselineRequest) (*api.BaselineResponse, error) {
			return t.setBaseline(ctx, input)
		})

	srv.Tool("behavior.progress").
		Description("Compare average daily minutes and productivity since the baseline was set up with its goals").
		Handler(func(ctx context.Context, input struct{}) (*api.ProgressResponse, error) {
			return t.progress(ctx)
		})
}

func (t *toolset) getBaseline(ctx context.Context) (*api.BaselineResponse, error) {
	if err := t.ready(); err != nil {
		return nil, err
	}
	b, err := t.service.Baseline(ctx, t.userID())
	if err != nil {
		return nil, explain(err)
	}
	resp := api.ToBaselineResponse(b)
	return &resp, nil
}

func (t *toolset) setBaseline(ctx context.Context, input api.BaselineRequest) (*api.BaselineResponse, error) {
	if err := t.ready(); err != nil {
		return nil, err
	}
	b, err := t.service.SaveBaseline(ctx, input.ToCommand(t.userID()))
	if err != nil {
		return nil, err
	}
	resp := api.ToBaselineResponse(b)
	return &resp, nil
}

func (t *toolset) progress(ctx context.Context) (*api.ProgressResponse, error) {
	if err := t.ready(); err != nil {
		return nil, err
	}
	p, err := t.service.Progress(ctx, t.userID())
	if err != nil {
		return nil, explain(err)
	}
	resp := api.ToProgressResponse(p)
	return &resp, nil
}
