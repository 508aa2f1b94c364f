package mcp

import (
	"context"
	"errors"

	"github.com/felixgeelhaar/mcp-go"

	"github.com/felixgeelhaar/behaviortracker/adapter/api"
	"github.com/felixgeelhaar/behaviortracker/internal/behavior/application/queries"
)

type logSessionInput struct {
	AppID                 string   `json:"app_id" jsonschema:"required"`
	DurationMinutes       int      `json:"duration_minutes" jsonschema:"required"`
	At                    string   `json:"at,omitempty"`
	TimeBucket            string   `json:"time_bucket,omitempty"`
	Triggers              []string `json:"triggers,omitempty"`
	Goal                  string   `json:"goal,omitempty"`
	Activities            []string `json:"activities,omitempty"`
	Content               []string `json:"content,omitempty"`
	Location              string   `json:"location,omitempty"`
	Multitask             string   `json:"multitask,omitempty"`
	MoodDelta             int      `json:"mood_delta,omitempty"`
	SelfRatedProductivity int      `json:"self_rated_productivity,omitempty"`
}

type dateInput struct {
	Date string `json:"date,omitempty"`
}

func registerSessionTools(srv *mcp.Server, t *toolset) {
	srv.Tool("behavior.log_session").
		Description("Log an app session and score it against the baseline. 'at' is RFC 3339 and defaults to now").
		Handler(func(ctx context.Context, input logSessionInput) (*api.SessionResponse, error) {
			return t.logSession(ctx, input)
		})

	srv.Tool("behavior.sessions").
		Description("List the sessions of a day (YYYY-MM-DD, today or yesterday)").
		Handler(func(ctx context.Context, input dateInput) ([]queries.SessionDTO, error) {
			return t.listSessions(ctx, input)
		})
}

func (t *toolset) logSession(ctx context.Context, input logSessionInput) (*api.SessionResponse, error) {
	if err := t.ready(); err != nil {
		return nil, err
	}
	if input.AppID == "" {
		return nil, errors.New("app_id is required")
	}
	at, err := parseOptionalInstant(input.At)
	if err != nil {
		return nil, err
	}

	req := api.SessionRequest{
		AppID:                 input.AppID,
		DurationMinutes:       input.DurationMinutes,
		CreatedAt:             at,
		TimeBucket:            input.TimeBucket,
		Triggers:              input.Triggers,
		Goal:                  input.Goal,
		Activities:            input.Activities,
		Content:               input.Content,
		Location:              input.Location,
		Multitask:             input.Multitask,
		MoodDelta:             input.MoodDelta,
		SelfRatedProductivity: input.SelfRatedProductivity,
	}
	result, err := t.service.LogSession(ctx, req.ToCommand(t.userID()))
	if err != nil {
		return nil, explain(err)
	}
	resp := api.ToSessionResponse(result)
	return &resp, nil
}

func (t *toolset) listSessions(ctx context.Context, input dateInput) ([]queries.SessionDTO, error) {
	if err := t.ready(); err != nil {
		return nil, err
	}
	date, err := parseDay(input.Date, "today", t.now())
	if err != nil {
		return nil, err
	}
	return t.service.ListSessions(ctx, t.userID(), date)
}
