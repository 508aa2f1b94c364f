package session

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/behaviortracker/adapter/cli"
	"github.com/felixgeelhaar/behaviortracker/internal/behavior/application/commands"
	"github.com/felixgeelhaar/behaviortracker/internal/behavior/domain"
)

var (
	minutes    int
	at         string
	bucket     string
	triggers   []string
	goal       string
	activities []string
	content    []string
	location   string
	multitask  string
	mood       int
	selfRating int
)

var logCmd = &cobra.Command{
	Use:   "log <app>",
	Short: "Log and score a session",
	Long: `Log a session of app use. It is scored against your baseline right away.

Examples:
  behaviortracker session log instagram -m 25 --trigger boredom --goal entertainment \
    --activity scroll --content entertainment --mood -1 --self -1
  behaviortracker session log linkedin -m 15 --goal work --activity post --at 2024-05-10T09:30:00+02:00`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cli.RequireApp()
		if err != nil {
			return err
		}

		log := commands.LogSessionCommand{
			UserID:                app.CurrentUserID,
			AppID:                 args[0],
			DurationMinutes:       minutes,
			TimeBucket:            bucket,
			Triggers:              triggers,
			Goal:                  goal,
			Activities:            activities,
			Content:               content,
			Location:              location,
			Multitask:             multitask,
			MoodDelta:             mood,
			SelfRatedProductivity: selfRating,
		}
		if at != "" {
			log.CreatedAt, err = time.Parse(time.RFC3339, at)
			if err != nil {
				return fmt.Errorf("invalid --at: use RFC 3339, e.g. 2024-05-10T09:30:00Z")
			}
		}

		result, err := app.Service.LogSession(cmd.Context(), log)
		if domain.IsConfigurationError(err) {
			return fmt.Errorf("%w\nset up your baseline first: behaviortracker baseline set --goal-minutes 120", err)
		}
		if err != nil {
			return fmt.Errorf("failed to log session: %w", err)
		}

		s := result.Session
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Logged %s (%d min) on %s\n", s.AppID, s.DurationMinutes, result.Day)
		fmt.Fprintf(out, "  Score:  %+.2f\n", s.Score())
		fmt.Fprintf(out, "  Points: %+d\n", s.DeltaPoints)
		return nil
	},
}

func init() {
	logCmd.Flags().IntVarP(&minutes, "minutes", "m", 0, "session length in minutes (required)")
	logCmd.Flags().StringVar(&at, "at", "", "start time in RFC 3339 (default now)")
	logCmd.Flags().StringVar(&bucket, "bucket", "", "time of day: morning, afternoon, evening, night (default from start time)")
	logCmd.Flags().StringSliceVar(&triggers, "trigger", nil, "what made you open the app, repeatable")
	logCmd.Flags().StringVar(&goal, "goal", "", "primary intent")
	logCmd.Flags().StringSliceVar(&activities, "activity", nil, "what you did, repeatable")
	logCmd.Flags().StringSliceVar(&content, "content", nil, "content consumed, repeatable")
	logCmd.Flags().StringVar(&location, "location", "", "where you were")
	logCmd.Flags().StringVar(&multitask, "multitask", "none", "parallel activity: none, tv, eating, working, other")
	logCmd.Flags().IntVar(&mood, "mood", 0, "mood change from -2 to 2")
	logCmd.Flags().IntVar(&selfRating, "self", 0, "how productive it felt from -2 to 2")
	_ = logCmd.MarkFlagRequired("minutes")
}
