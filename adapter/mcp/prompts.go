package mcp

import (
	"context"
	"fmt"

	"github.com/felixgeelhaar/mcp-go"
)

// RegisterPrompts registers MCP prompts for common behavior tracker workflows.
func RegisterPrompts(srv *mcp.Server, deps ToolDependencies) error {
	if srv == nil {
		return fmt.Errorf("server is required")
	}

	srv.Prompt("daily_reflection").
		Description("Reflect on today's app use: what to fix, what to keep, and one change for tomorrow.").
		Handler(func(ctx context.Context, args map[string]string) (*mcp.PromptResult, error) {
			return userPrompt("Daily Reflection", `Help me reflect on how I used my apps today. Please:

1. Read today's totals from the behavior://today/aggregate resource
2. Read today's advice cards from the behavior://today/advice resource

Then:
- Summarize where my minutes went and how much of it was productive
- Walk me through each FIX card, most impactful first
- Acknowledge the KEEP cards briefly
- Propose one concrete change for tomorrow

If I mention sessions that are missing, log them with behavior.log_session before answering.`), nil
		})

	srv.Prompt("baseline_setup").
		Description("Interview the user and save a scoring baseline.").
		Handler(func(ctx context.Context, args map[string]string) (*mcp.PromptResult, error) {
			return userPrompt("Baseline Setup", `Help me set up my behavior baseline. Ask me, one topic at a time:

1. How many minutes of app use per day I am aiming for
2. My time zone
3. Which goals I consider productive (e.g. work, learning) and which not (e.g. entertainment)
4. Which triggers are unproductive for me (e.g. boredom, notification)
5. Which activities and content types are productive, neutral or unproductive
6. Whether a worse mood after a session should count against it
7. What share of my use should be productive for a day to count as on track (goal_productivity_pct)

Use 1 for productive, 0 for neutral and -1 for unproductive. When done, save it with
behavior.baseline.set and show me the result from behavior.baseline.get.`), nil
		})

	srv.Prompt("weekly_review").
		Description("Review the last seven days of sessions and digests.").
		Handler(func(ctx context.Context, args map[string]string) (*mcp.PromptResult, error) {
			start := args["start"]
			if start == "" {
				start = "the date seven days ago"
			}
			return userPrompt("Weekly Review", fmt.Sprintf(`Review my last week of app use.

1. Call behavior.daily_aggregate with date %s and days 7
2. Call behavior.digest for each of those days that has one and note its status
3. Call behavior.progress to see how the week fits the trend since I set my goals

Compare the week against my daily goal, point out the worst time of day and the
least productive app, and suggest the single baseline change most worth making.`, start)), nil
		})

	return nil
}

func userPrompt(description, text string) *mcp.PromptResult {
	return &mcp.PromptResult{
		Description: description,
		Messages: []mcp.PromptMessage{
			{
				Role: string(mcp.RoleUser),
				Content: mcp.TextContent{
					Type: "text",
					Text: text,
				},
			},
		},
	}
}
