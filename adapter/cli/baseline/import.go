package baseline

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/felixgeelhaar/behaviortracker/adapter/cli"
	"github.com/felixgeelhaar/behaviortracker/internal/behavior/application/commands"
)

// File is a baseline as written in a YAML or TOML file.
type File struct {
	DailyMinutesGoal           int            `yaml:"daily_minutes_goal" toml:"daily_minutes_goal"`
	NegativeMoodIsUnproductive bool           `yaml:"negative_mood_is_unproductive" toml:"negative_mood_is_unproductive"`
	UnproductiveTolerancePct   *float64       `yaml:"unproductive_tolerance_pct" toml:"unproductive_tolerance_pct"`
	GoalProductivityPct        *int           `yaml:"goal_productivity_pct" toml:"goal_productivity_pct"`
	Timezone                   string         `yaml:"timezone" toml:"timezone"`
	Triggers                   map[string]int `yaml:"triggers" toml:"triggers"`
	Goals                      map[string]int `yaml:"goals" toml:"goals"`
	Activities                 map[string]int `yaml:"activities" toml:"activities"`
	Content                    map[string]int `yaml:"content" toml:"content"`
}

// LoadFile reads a baseline file. The format follows the extension:
// .toml is TOML, anything else is YAML.
func LoadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var f File
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if _, err := toml.NewDecoder(bytes.NewReader(data)).Decode(&f); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	default:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&f); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	}
	return &f, nil
}

// Command turns the file into a save command for userID.
func (f *File) Command(userID uuid.UUID) commands.SaveBaselineCommand {
	return commands.SaveBaselineCommand{
		UserID:                     userID,
		DailyMinutesGoal:           f.DailyMinutesGoal,
		NegativeMoodIsUnproductive: f.NegativeMoodIsUnproductive,
		UnproductiveTolerancePct:   f.UnproductiveTolerancePct,
		GoalProductivityPct:        f.GoalProductivityPct,
		Timezone:                   f.Timezone,
		Triggers:                   f.Triggers,
		Goals:                      f.Goals,
		Activities:                 f.Activities,
		Content:                    f.Content,
	}
}

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Replace your baseline from a YAML or TOML file",
	Long: `Replace your baseline from a YAML or TOML file.

Example baseline.yaml:
  daily_minutes_goal: 120
  timezone: Europe/Berlin
  negative_mood_is_unproductive: true
  goals:
    work: 1
    entertainment: -1
  triggers:
    boredom: -1`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cli.RequireApp()
		if err != nil {
			return err
		}
		f, err := LoadFile(args[0])
		if err != nil {
			return err
		}
		b, err := app.Service.SaveBaseline(cmd.Context(), f.Command(app.CurrentUserID))
		if err != nil {
			return fmt.Errorf("failed to save baseline: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Baseline imported from %s.\n", filepath.Base(args[0]))
		printBaseline(cmd.OutOrStdout(), b)
		return nil
	},
}
