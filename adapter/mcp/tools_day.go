package mcp

import (
	"context"

	"github.com/felixgeelhaar/mcp-go"

	"github.com/felixgeelhaar/behaviortracker/adapter/api"
	"github.com/felixgeelhaar/behaviortracker/internal/behavior/application/queries"
)

// windowInput selects a day, or Days days starting with Date.
type windowInput struct {
	Date string `json:"date,omitempty"`
	Days int    `json:"days,omitempty"`
}

type digestRunResult struct {
	Day      string               `json:"day"`
	Digested int                  `json:"digested"`
	Failures []digestFailure      `json:"failures,omitempty"`
	Pending  []string             `json:"pending,omitempty"`
	Digests  []api.DigestResponse `json:"digests"`
}

type digestFailure struct {
	UserID string `json:"user_id"`
	Error  string `json:"error"`
}

func registerDayTools(srv *mcp.Server, t *toolset) {
	srv.Tool("behavior.daily_aggregate").
		Description("Aggregate a day of sessions, or several days with 'days' (max 31)").
		Handler(func(ctx context.Context, input windowInput) (*api.AggregateResponse, error) {
			return t.aggregate(ctx, input)
		})

	srv.Tool("behavior.advice").
		Description("Fix and keep advice cards for a day, or several days with 'days' (max 31). 'empty' is true when no sessions were logged").
		Handler(func(ctx context.Context, input windowInput) (*queries.AdviceDTO, error) {
			return t.advice(ctx, input)
		})

	srv.Tool("behavior.digest").
		Description("Show the stored digest of a day. Defaults to yesterday").
		Handler(func(ctx context.Context, input dateInput) (*api.DigestResponse, error) {
			return t.digest(ctx, input)
		})

	srv.Tool("behavior.digest.run").
		Description("Compute and store the digest of a day for every user. Defaults to yesterday").
		Handler(func(ctx context.Context, input dateInput) (*digestRunResult, error) {
			return t.runDigest(ctx, input)
		})
}

func (t *toolset) aggregate(ctx context.Context, input windowInput) (*api.AggregateResponse, error) {
	if err := t.ready(); err != nil {
		return nil, err
	}
	date, err := parseDay(input.Date, "today", t.now())
	if err != nil {
		return nil, err
	}

	if input.Days > 1 {
		agg, err := t.service.PeriodAggregate(ctx, t.userID(), date, input.Days)
		if err != nil {
			return nil, err
		}
		resp := api.ToAggregateResponse(agg)
		return &resp, nil
	}

	agg, err := t.service.DailyAggregate(ctx, t.userID(), date)
	if err != nil {
		return nil, err
	}
	resp := api.ToAggregateResponse(agg)
	return &resp, nil
}

func (t *toolset) advice(ctx context.Context, input windowInput) (*queries.AdviceDTO, error) {
	if err := t.ready(); err != nil {
		return nil, err
	}
	date, err := parseDay(input.Date, "today", t.now())
	if err != nil {
		return nil, err
	}
	if input.Days > 1 {
		return t.service.PeriodAdvice(ctx, t.userID(), date, input.Days)
	}
	return t.service.Advice(ctx, t.userID(), date)
}

func (t *toolset) digest(ctx context.Context, input dateInput) (*api.DigestResponse, error) {
	if err := t.ready(); err != nil {
		return nil, err
	}
	date, err := parseDay(input.Date, "yesterday", t.now())
	if err != nil {
		return nil, err
	}
	d, err := t.service.Digest(ctx, t.userID(), date)
	if err != nil {
		return nil, explain(err)
	}
	resp := api.ToDigestResponse(d)
	return &resp, nil
}

func (t *toolset) runDigest(ctx context.Context, input dateInput) (*digestRunResult, error) {
	if err := t.ready(); err != nil {
		return nil, err
	}
	date, err := parseDay(input.Date, "yesterday", t.now())
	if err != nil {
		return nil, err
	}
	result, err := t.service.RunDigest(ctx, date)
	if err != nil {
		return nil, err
	}

	out := &digestRunResult{
		Day:      result.Day,
		Digested: len(result.Digests),
		Digests:  make([]api.DigestResponse, 0, len(result.Digests)),
	}
	for _, d := range result.Digests {
		out.Digests = append(out.Digests, api.ToDigestResponse(d))
	}
	for _, f := range result.Failures {
		out.Failures = append(out.Failures, digestFailure{UserID: f.UserID.String(), Error: f.Err.Error()})
	}
	for _, id := range result.Pending {
		out.Pending = append(out.Pending, id.String())
	}
	return out, nil
}
