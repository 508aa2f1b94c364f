// Package persistence stores behavior data in SQLite (local mode) or PostgreSQL.
package persistence

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/felixgeelhaar/behaviortracker/internal/behavior/domain"
	sharedApplication "github.com/felixgeelhaar/behaviortracker/internal/shared/application"
	"github.com/felixgeelhaar/behaviortracker/internal/shared/infrastructure/database"
)

// sqliteTime is fixed-width so stored timestamps sort as text.
const sqliteTime = "2006-01-02T15:04:05.000000000Z07:00"

// Category names in behavior_category_rules.
const (
	categoryTrigger  = "trigger"
	categoryGoal     = "goal"
	categoryActivity = "activity"
	categoryContent  = "content"
)

func formatSQLiteTime(t time.Time) string {
	return t.UTC().Format(sqliteTime)
}

func parseSQLiteTime(s string) (time.Time, error) {
	t, err := time.Parse(sqliteTime, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse stored time %q: %w", s, err)
	}
	return t, nil
}

type ruleRow struct {
	category string
	value    string
	polarity int
}

// flattenRules lists the rules in a stable order.
func flattenRules(rules domain.CategoryRules) []ruleRow {
	var rows []ruleRow
	for k, p := range rules.Triggers {
		rows = append(rows, ruleRow{categoryTrigger, string(k), int(p)})
	}
	for k, p := range rules.Goals {
		rows = append(rows, ruleRow{categoryGoal, string(k), int(p)})
	}
	for k, p := range rules.Activities {
		rows = append(rows, ruleRow{categoryActivity, string(k), int(p)})
	}
	for k, p := range rules.Content {
		rows = append(rows, ruleRow{categoryContent, string(k), int(p)})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].category != rows[j].category {
			return rows[i].category < rows[j].category
		}
		return rows[i].value < rows[j].value
	})
	return rows
}

func applyRule(b *domain.Baseline, r ruleRow) {
	p := domain.ParsePolarity(r.polarity)
	switch r.category {
	case categoryTrigger:
		b.SetTrigger(domain.ParseTrigger(r.value), p)
	case categoryGoal:
		b.SetGoal(domain.ParseGoal(r.value), p)
	case categoryActivity:
		b.SetActivity(domain.ParseActivity(r.value), p)
	case categoryContent:
		b.SetContent(domain.ParseContentType(r.value), p)
	}
}

func encodeList[T ~string](values []T) ([]byte, error) {
	raw := make([]string, len(values))
	for i, v := range values {
		raw[i] = string(v)
	}
	return json.Marshal(raw)
}

func decodeList[T ~string](data []byte, parse func(string) T) ([]T, error) {
	var raw []string
	if len(data) > 0 {
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, err
		}
	}
	if len(raw) == 0 {
		return nil, nil
	}
	out := make([]T, len(raw))
	for i, v := range raw {
		out[i] = parse(v)
	}
	return out, nil
}

type sessionLists struct {
	triggers, activities, content []byte
}

func encodeSessionLists(s *domain.Session) (sessionLists, error) {
	var (
		l   sessionLists
		err error
	)
	if l.triggers, err = encodeList(s.Triggers); err != nil {
		return l, err
	}
	if l.activities, err = encodeList(s.Activities); err != nil {
		return l, err
	}
	l.content, err = encodeList(s.Content)
	return l, err
}

func (l sessionLists) decodeInto(s *domain.Session) error {
	var err error
	if s.Triggers, err = decodeList(l.triggers, domain.ParseTrigger); err != nil {
		return fmt.Errorf("decode triggers: %w", err)
	}
	if s.Activities, err = decodeList(l.activities, domain.ParseActivity); err != nil {
		return fmt.Errorf("decode activities: %w", err)
	}
	if s.Content, err = decodeList(l.content, domain.ParseContentType); err != nil {
		return fmt.Errorf("decode content: %w", err)
	}
	return nil
}

func encodeDigestLists(d *domain.DailyDigest) (periods, advice, tips []byte, err error) {
	p := d.Periods
	if p == nil {
		p = []domain.PeriodMetrics{}
	}
	if periods, err = json.Marshal(p); err != nil {
		return nil, nil, nil, err
	}
	cards := d.Advice
	if cards == nil {
		cards = []domain.AdviceCard{}
	}
	if advice, err = json.Marshal(cards); err != nil {
		return nil, nil, nil, err
	}
	t := d.Tips
	if t == nil {
		t = []string{}
	}
	tips, err = json.Marshal(t)
	return periods, advice, tips, err
}

func decodeDigestLists(d *domain.DailyDigest, periods, advice, tips []byte) error {
	d.Periods = []domain.PeriodMetrics{}
	d.Advice = []domain.AdviceCard{}
	d.Tips = []string{}
	if len(periods) > 0 {
		if err := json.Unmarshal(periods, &d.Periods); err != nil {
			return fmt.Errorf("decode periods: %w", err)
		}
	}
	if len(advice) > 0 {
		if err := json.Unmarshal(advice, &d.Advice); err != nil {
			return fmt.Errorf("decode advice: %w", err)
		}
	}
	if len(tips) > 0 {
		if err := json.Unmarshal(tips, &d.Tips); err != nil {
			return fmt.Errorf("decode tips: %w", err)
		}
	}
	return nil
}

// inTx runs fn in a unit of work on conn, joining any transaction already in ctx.
func inTx(ctx context.Context, conn database.Connection, fn func(ctx context.Context, exec database.Executor) error) error {
	return sharedApplication.WithUnitOfWork(ctx, database.NewUnitOfWork(conn), func(txCtx context.Context) error {
		return fn(txCtx, database.ExecutorFromContext(txCtx, conn))
	})
}

func collectRules(ctx context.Context, exec database.Executor, query string, userID any, b *domain.Baseline) error {
	rows, err := exec.Query(ctx, query, userID)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var r ruleRow
		if err := rows.Scan(&r.category, &r.value, &r.polarity); err != nil {
			return err
		}
		applyRule(b, r)
	}
	return rows.Err()
}
