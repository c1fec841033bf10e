// Package analytics computes the dashboard aggregates. Every function is a
// pure transform over the encounter slice it is handed; filtering happens in
// the repository and the slice is treated as authoritative.
package analytics

import (
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/vivesalud/productiva/internal/domain/encounter"
)

// Summary bundles the headline dashboard numbers for a filtered record set.
type Summary struct {
	Records           int     `json:"registros"`
	ScheduledPatients int     `json:"pacientes_programados"`
	AttendedPatients  int     `json:"pacientes_atendidos"`
	NoShows           int     `json:"no_asistieron"`
	AttendanceRate    float64 `json:"tasa_atencion"`

	TotalDurationMins   int     `json:"duracion_total_minutos"`
	AverageDurationMins float64 `json:"duracion_promedio_minutos"`
	RecordsWithDuration int     `json:"registros_con_duracion"`

	// EncountersPerEffectiveHour divides attended encounters by effective
	// hours, where effective hours come only from records that were both
	// attended and carry a duration.
	EncountersPerEffectiveHour float64 `json:"atenciones_por_hora_efectiva"`

	// PanaceaGap counts records attended but not registered in the external
	// system. A discrepancy signal, not an error.
	PanaceaGap int `json:"brecha_panacea"`
}

// Summarize computes the Summary for the given records. Safe on an empty
// slice: every rate is 0, never NaN.
func Summarize(records []*encounter.Encounter) Summary {
	var s Summary
	s.Records = len(records)

	var effectiveMins int
	var attendedEncounters int

	for _, r := range records {
		s.ScheduledPatients += r.ScheduledPatients
		s.AttendedPatients += r.AttendedPatients

		if r.DurationMins != nil {
			s.TotalDurationMins += *r.DurationMins
			s.RecordsWithDuration++
		}

		if r.Attended {
			attendedEncounters++
			if r.DurationMins != nil {
				effectiveMins += *r.DurationMins
			}
			if !r.RegisteredExternal {
				s.PanaceaGap++
			}
		}
	}

	s.NoShows = s.ScheduledPatients - s.AttendedPatients

	if s.ScheduledPatients > 0 {
		s.AttendanceRate = float64(s.AttendedPatients) / float64(s.ScheduledPatients)
	}
	if s.RecordsWithDuration > 0 {
		s.AverageDurationMins = float64(s.TotalDurationMins) / float64(s.RecordsWithDuration)
	}
	if effectiveMins > 0 {
		s.EncountersPerEffectiveHour = float64(attendedEncounters) / (float64(effectiveMins) / 60.0)
	}

	return s
}

// WeekBucket is one point of the weekly trend. WeekStart is the Monday of
// the ISO week in UTC.
type WeekBucket struct {
	WeekStart         time.Time `json:"semana"`
	Records           int       `json:"registros"`
	ScheduledPatients int       `json:"pacientes_programados"`
	AttendedPatients  int       `json:"pacientes_atendidos"`
}

// WeeklyTrend groups records by ISO week of fecha and returns buckets in
// chronological order. Weeks with no records do not appear.
func WeeklyTrend(records []*encounter.Encounter) []WeekBucket {
	byWeek := make(map[time.Time]*WeekBucket)
	for _, r := range records {
		ws := weekStart(r.Date)
		b, ok := byWeek[ws]
		if !ok {
			b = &WeekBucket{WeekStart: ws}
			byWeek[ws] = b
		}
		b.Records++
		b.ScheduledPatients += r.ScheduledPatients
		b.AttendedPatients += r.AttendedPatients
	}

	trend := make([]WeekBucket, 0, len(byWeek))
	for _, b := range byWeek {
		trend = append(trend, *b)
	}
	sort.Slice(trend, func(i, j int) bool {
		return trend[i].WeekStart.Before(trend[j].WeekStart)
	})
	return trend
}

// weekStart truncates to the Monday of t's ISO week, at midnight UTC.
func weekStart(t time.Time) time.Time {
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	offset := (int(day.Weekday()) + 6) % 7 // Monday == 0
	return day.AddDate(0, 0, -offset)
}

// ProfessionalStanding is one row of the professional ranking.
type ProfessionalStanding struct {
	ProfessionalID    uuid.UUID `json:"profesional_id"`
	Name              string    `json:"profesional"`
	Records           int       `json:"registros"`
	ScheduledPatients int       `json:"pacientes_programados"`
	AttendedPatients  int       `json:"pacientes_atendidos"`
}

// RankProfessionals orders professionals by attended count descending, ties
// broken by name ascending.
func RankProfessionals(records []*encounter.Encounter) []ProfessionalStanding {
	byID := make(map[uuid.UUID]*ProfessionalStanding)
	for _, r := range records {
		s, ok := byID[r.ProfessionalID]
		if !ok {
			s = &ProfessionalStanding{ProfessionalID: r.ProfessionalID, Name: r.ProfessionalName}
			byID[r.ProfessionalID] = s
		}
		if s.Name == "" {
			s.Name = r.ProfessionalName
		}
		s.Records++
		s.ScheduledPatients += r.ScheduledPatients
		s.AttendedPatients += r.AttendedPatients
	}

	ranking := make([]ProfessionalStanding, 0, len(byID))
	for _, s := range byID {
		ranking = append(ranking, *s)
	}
	sort.SliceStable(ranking, func(i, j int) bool {
		if ranking[i].AttendedPatients != ranking[j].AttendedPatients {
			return ranking[i].AttendedPatients > ranking[j].AttendedPatients
		}
		return ranking[i].Name < ranking[j].Name
	})
	return ranking
}

// GroupCount is one bucket of a categorical distribution.
type GroupCount struct {
	Key               string `json:"clave"`
	Records           int    `json:"registros"`
	AttendedPatients  int    `json:"pacientes_atendidos"`
	ScheduledPatients int    `json:"pacientes_programados"`
}

// DistributionByActivity groups by activity type, descending record count,
// ties by key ascending.
func DistributionByActivity(records []*encounter.Encounter) []GroupCount {
	return distribution(records, func(r *encounter.Encounter) string {
		return string(r.Activity)
	})
}

// DistributionByInstitution groups by the resolved institution name.
func DistributionByInstitution(records []*encounter.Encounter) []GroupCount {
	return distribution(records, func(r *encounter.Encounter) string {
		return r.InstitutionName
	})
}

// DistributionByDepartment groups by the geography snapshot's department.
// Records without one fall into an empty-key bucket.
func DistributionByDepartment(records []*encounter.Encounter) []GroupCount {
	return distribution(records, func(r *encounter.Encounter) string {
		return r.Department
	})
}

func distribution(records []*encounter.Encounter, key func(*encounter.Encounter) string) []GroupCount {
	byKey := make(map[string]*GroupCount)
	for _, r := range records {
		k := key(r)
		g, ok := byKey[k]
		if !ok {
			g = &GroupCount{Key: k}
			byKey[k] = g
		}
		g.Records++
		g.AttendedPatients += r.AttendedPatients
		g.ScheduledPatients += r.ScheduledPatients
	}

	out := make([]GroupCount, 0, len(byKey))
	for _, g := range byKey {
		out = append(out, *g)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Records != out[j].Records {
			return out[i].Records > out[j].Records
		}
		return out[i].Key < out[j].Key
	})
	return out
}
