package analytics

import (
	"math"
	"time"

	"nuvra_crm_backend/internal/leads/domain"
)

const (
	unknownSource = "unknown"
	dateLayout    = "2006-01-02"
)

var periodDays = map[string]int{"7d": 7, "30d": 30, "90d": 90}

// DefaultPeriod is used when no period is requested.
const DefaultPeriod = "7d"

// LeadRow is the projection of a lead the aggregation needs.
type LeadRow struct {
	Origin        string
	Qualification string
	Status        string
	Value         float64
	CreatedAt     time.Time
}

type Summary struct {
	TotalLeads     int     `json:"totalLeads"`
	LeadsToday     int     `json:"leadsToday"`
	ConversionRate float64 `json:"conversionRate"`
	TotalValue     float64 `json:"totalValue"`
	Hot            int     `json:"hot"`
	Warm           int     `json:"warm"`
	Cold           int     `json:"cold"`
}

type SourceStats struct {
	Total     int     `json:"total"`
	Hot       int     `json:"hot"`
	Warm      int     `json:"warm"`
	Cold      int     `json:"cold"`
	Converted int     `json:"converted"`
	Value     float64 `json:"value"`
}

type Report struct {
	Period   string                 `json:"period"`
	Summary  Summary                `json:"summary"`
	BySource map[string]SourceStats `json:"bySource"`
	ByStatus map[string]int         `json:"byStatus"`
	ByDate   map[string]int         `json:"byDate"`
}

// SourceSummary is the per-origin qualification breakdown.
type SourceSummary struct {
	Origin string `json:"origin"`
	Total  int    `json:"total"`
	Hot    int    `json:"hot"`
	Warm   int    `json:"warm"`
	Cold   int    `json:"cold"`
}

// PeriodStart returns the start of period relative to now. ok is false for unknown periods.
func PeriodStart(period string, now time.Time) (time.Time, bool) {
	days, ok := periodDays[period]
	if !ok {
		return time.Time{}, false
	}
	return now.AddDate(0, 0, -days), true
}

// Aggregate folds leads into a report. Dates are bucketed in UTC.
func Aggregate(period string, leads []LeadRow, now time.Time) Report {
	report := Report{
		Period:   period,
		BySource: map[string]SourceStats{},
		ByStatus: map[string]int{},
		ByDate:   map[string]int{},
	}

	today := now.UTC().Format(dateLayout)
	converted := 0

	for _, l := range leads {
		s := &report.Summary
		s.TotalLeads++
		s.TotalValue += l.Value
		countTier(l.Qualification, &s.Hot, &s.Warm, &s.Cold)

		day := l.CreatedAt.UTC().Format(dateLayout)
		if day == today {
			s.LeadsToday++
		}
		report.ByDate[day]++
		report.ByStatus[l.Status]++

		source := l.Origin
		if source == "" {
			source = unknownSource
		}
		stats := report.BySource[source]
		stats.Total++
		stats.Value += l.Value
		countTier(l.Qualification, &stats.Hot, &stats.Warm, &stats.Cold)
		if l.Status == domain.StatusConverted {
			stats.Converted++
			converted++
		}
		report.BySource[source] = stats
	}

	if report.Summary.TotalLeads > 0 {
		rate := float64(converted) / float64(report.Summary.TotalLeads) * 100
		report.Summary.ConversionRate = math.Round(rate*100) / 100
	}
	return report
}

func countTier(qualification string, hot, warm, cold *int) {
	switch qualification {
	case domain.QualificationHot:
		*hot++
	case domain.QualificationWarm:
		*warm++
	case domain.QualificationCold:
		*cold++
	}
}
