package usecase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/kklick/funnel-api/internal/entity"
)

func NewStatsUseCase(analytics entity.AnalyticsRepositoryInterface, leads entity.LeadRepositoryInterface) *StatsUseCase {
	return &StatsUseCase{
		Analytics: analytics,
		Leads:     leads,
	}
}

// Aggregate computes the dashboard statistics over [start, end]. Both bounds
// are calendar dates: start counts from the beginning of its day and end is
// extended to cover its full final day, so a row at 23:59:59.999 of the end
// date is in range and one at 00:00:00.000 of the next day is not.
func (uc *StatsUseCase) Aggregate(ctx context.Context, start, end time.Time) (*StatsData, error) {
	from, to := DayRange(start, end)

	data := &StatsData{}
	var err error

	if data.TotalPageViews, err = uc.Analytics.CountPageViews(ctx, from, to); err != nil {
		return nil, statsErr("page views", err)
	}
	if data.UniqueVisitors, err = uc.Analytics.CountDistinctVisitors(ctx, from, to); err != nil {
		return nil, statsErr("unique visitors", err)
	}
	if data.ReturningVisitors, err = uc.Analytics.CountReturningVisitors(ctx, from, to); err != nil {
		return nil, statsErr("returning visitors", err)
	}
	data.NewVisitors = data.UniqueVisitors - data.ReturningVisitors

	if data.QuizStarted, err = uc.Analytics.CountEventsByType(ctx, entity.EventQuizStart, from, to); err != nil {
		return nil, statsErr("quiz starts", err)
	}
	if data.QuizCompleted, err = uc.Analytics.CountEventsByType(ctx, entity.EventQuizComplete, from, to); err != nil {
		return nil, statsErr("quiz completions", err)
	}
	if data.QuizDisqualified, err = uc.Analytics.CountEventsByType(ctx, entity.EventQuizDisqualified, from, to); err != nil {
		return nil, statsErr("quiz disqualifications", err)
	}
	stepCounts, err := uc.Analytics.StepEventCounts(ctx, from, to)
	if err != nil {
		return nil, statsErr("quiz step counts", err)
	}
	if stepCounts == nil {
		stepCounts = map[string]int{}
	}
	data.QuizStepCounts = StepCounts(stepCounts)

	if data.LeadsGenerated, err = uc.Leads.CountCreatedBetween(ctx, from, to); err != nil {
		return nil, statsErr("leads generated", err)
	}

	return data, nil
}

// DayRange normalizes a calendar-date range to a half-open timestamp range:
// start of the first day (inclusive) to start of the day after end
// (exclusive).
func DayRange(start, end time.Time) (time.Time, time.Time) {
	from := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, start.Location())
	to := time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, end.Location()).AddDate(0, 0, 1)
	return from, to
}

func (c StepCounts) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, key := range OrderedStepKeys(c) {
		if i > 0 {
			buf.WriteByte(',')
		}
		name, err := json.Marshal(key)
		if err != nil {
			return nil, err
		}
		buf.Write(name)
		buf.WriteByte(':')
		buf.WriteString(strconv.Itoa(c[key]))
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// OrderedStepKeys returns the step-count keys sorted by their numeric step
// suffix, so quiz_step_2 presents before quiz_step_10. Keys without a numeric
// suffix sort last, alphabetically.
func OrderedStepKeys(counts map[string]int) []string {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}

	sort.Slice(keys, func(i, j int) bool {
		ni, oki := stepSuffix(keys[i])
		nj, okj := stepSuffix(keys[j])
		switch {
		case oki && okj:
			return ni < nj
		case oki:
			return true
		case okj:
			return false
		default:
			return keys[i] < keys[j]
		}
	})

	return keys
}

func stepSuffix(eventType string) (int, bool) {
	rest, found := strings.CutPrefix(eventType, entity.StepEventPrefix)
	if !found {
		return 0, false
	}
	n, err := strconv.Atoi(rest)
	if err != nil {
		return 0, false
	}
	return n, true
}

func statsErr(what string, err error) error {
	return &TechnicalError{Code: "DB_ERROR", Message: fmt.Sprintf("aggregating %s: %v", what, err)}
}
