package analytics

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vivesalud/productiva/internal/domain/encounter"
)

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t.UTC()
}

func rec(date string, scheduled, attended int) *encounter.Encounter {
	return &encounter.Encounter{
		Date:              day(date),
		Activity:          encounter.ActivityIndividual,
		Attended:          attended > 0,
		ScheduledPatients: scheduled,
		AttendedPatients:  attended,
	}
}

func TestSummarizeEmpty(t *testing.T) {
	s := Summarize(nil)

	assert.Equal(t, 0, s.Records)
	assert.Equal(t, 0.0, s.AttendanceRate)
	assert.Equal(t, 0.0, s.AverageDurationMins)
	assert.Equal(t, 0.0, s.EncountersPerEffectiveHour)
}

func TestSummarizeCountsAndRate(t *testing.T) {
	records := []*encounter.Encounter{
		rec("2024-03-04", 10, 8),
		rec("2024-03-05", 5, 2),
	}

	s := Summarize(records)

	assert.Equal(t, 2, s.Records)
	assert.Equal(t, 15, s.ScheduledPatients)
	assert.Equal(t, 10, s.AttendedPatients)
	assert.Equal(t, 5, s.NoShows)
	assert.InDelta(t, 10.0/15.0, s.AttendanceRate, 1e-9)
}

func TestSummarizeZeroScheduledRateIsZero(t *testing.T) {
	s := Summarize([]*encounter.Encounter{rec("2024-03-04", 0, 0)})
	assert.Equal(t, 0.0, s.AttendanceRate)
}

func TestSummarizeDurations(t *testing.T) {
	thirty, sixty := 30, 60
	withDuration := rec("2024-03-04", 1, 1)
	withDuration.DurationMins = &thirty
	alsoWith := rec("2024-03-05", 1, 1)
	alsoWith.DurationMins = &sixty
	without := rec("2024-03-06", 1, 1)

	s := Summarize([]*encounter.Encounter{withDuration, alsoWith, without})

	assert.Equal(t, 90, s.TotalDurationMins)
	assert.Equal(t, 2, s.RecordsWithDuration)
	assert.InDelta(t, 45.0, s.AverageDurationMins, 1e-9)
	// 3 attended encounters over 1.5 effective hours.
	assert.InDelta(t, 2.0, s.EncountersPerEffectiveHour, 1e-9)
}

func TestSummarizePanaceaGap(t *testing.T) {
	attended := rec("2024-03-04", 1, 1)
	attended.RegisteredExternal = false
	attendedAndRegistered := rec("2024-03-05", 1, 1)
	attendedAndRegistered.RegisteredExternal = true
	missed := rec("2024-03-06", 1, 0)
	missed.RegisteredExternal = false

	s := Summarize([]*encounter.Encounter{attended, attendedAndRegistered, missed})

	// Only attended-but-unregistered records count.
	assert.Equal(t, 1, s.PanaceaGap)
}

func TestWeeklyTrendBuckets(t *testing.T) {
	records := []*encounter.Encounter{
		rec("2024-01-01", 1, 1), // Monday
		rec("2024-01-07", 1, 0), // Sunday of the same ISO week
		rec("2024-01-08", 2, 2), // Monday of the next week
	}

	trend := WeeklyTrend(records)

	require.Len(t, trend, 2)
	assert.Equal(t, day("2024-01-01"), trend[0].WeekStart)
	assert.Equal(t, 2, trend[0].Records)
	assert.Equal(t, 2, trend[0].ScheduledPatients)
	assert.Equal(t, 1, trend[0].AttendedPatients)

	assert.Equal(t, day("2024-01-08"), trend[1].WeekStart)
	assert.Equal(t, 1, trend[1].Records)
}

func TestWeeklyTrendChronologicalOrder(t *testing.T) {
	records := []*encounter.Encounter{
		rec("2024-02-20", 1, 1),
		rec("2024-01-03", 1, 1),
		rec("2024-03-15", 1, 1),
	}

	trend := WeeklyTrend(records)

	require.Len(t, trend, 3)
	for i := 1; i < len(trend); i++ {
		assert.True(t, trend[i-1].WeekStart.Before(trend[i].WeekStart))
	}
}

func TestRankProfessionalsOrderAndTieBreak(t *testing.T) {
	alice := uuid.New()
	bruno := uuid.New()
	carla := uuid.New()

	named := func(id uuid.UUID, name string, attended int) *encounter.Encounter {
		r := rec("2024-03-04", attended, attended)
		r.ProfessionalID = id
		r.ProfessionalName = name
		return r
	}

	records := []*encounter.Encounter{
		named(carla, "Carla", 3),
		named(alice, "Alice", 5),
		named(bruno, "Bruno", 3),
	}

	ranking := RankProfessionals(records)

	require.Len(t, ranking, 3)
	assert.Equal(t, "Alice", ranking[0].Name)
	// Tie on attended resolves alphabetically.
	assert.Equal(t, "Bruno", ranking[1].Name)
	assert.Equal(t, "Carla", ranking[2].Name)
}

func TestRankProfessionalsAggregatesPerProfessional(t *testing.T) {
	id := uuid.New()
	a := rec("2024-03-04", 2, 2)
	a.ProfessionalID = id
	a.ProfessionalName = "Dra. Gomez"
	b := rec("2024-03-05", 3, 1)
	b.ProfessionalID = id

	ranking := RankProfessionals([]*encounter.Encounter{a, b})

	require.Len(t, ranking, 1)
	assert.Equal(t, "Dra. Gomez", ranking[0].Name)
	assert.Equal(t, 2, ranking[0].Records)
	assert.Equal(t, 5, ranking[0].ScheduledPatients)
	assert.Equal(t, 3, ranking[0].AttendedPatients)
}

func TestDistributionByActivityOrdering(t *testing.T) {
	group := rec("2024-03-04", 1, 1)
	group.Activity = encounter.ActivityGroup

	records := []*encounter.Encounter{
		rec("2024-03-04", 1, 1),
		rec("2024-03-05", 1, 0),
		group,
	}

	dist := DistributionByActivity(records)

	require.Len(t, dist, 2)
	assert.Equal(t, string(encounter.ActivityIndividual), dist[0].Key)
	assert.Equal(t, 2, dist[0].Records)
	assert.Equal(t, string(encounter.ActivityGroup), dist[1].Key)
}

func TestDistributionByDepartmentEmptyKeyBucket(t *testing.T) {
	withGeo := rec("2024-03-04", 1, 1)
	withGeo.Department = "Antioquia"
	withoutGeo := rec("2024-03-05", 1, 1)

	dist := DistributionByDepartment([]*encounter.Encounter{withGeo, withoutGeo})

	require.Len(t, dist, 2)
	keys := []string{dist[0].Key, dist[1].Key}
	assert.Contains(t, keys, "Antioquia")
	assert.Contains(t, keys, "")
}

func TestWeekStartAlwaysMonday(t *testing.T) {
	for d := 1; d <= 14; d++ {
		ws := weekStart(time.Date(2024, 4, d, 13, 45, 0, 0, time.UTC))
		assert.Equal(t, time.Monday, ws.Weekday())
		assert.Equal(t, 0, ws.Hour())
	}
}
