package models

import (
	"math"
	"time"
)

// Field identifies one derived value computed from an account snapshot.
// The set is closed, unknown names are rejected at the API edge.
type Field string

const (
	FieldRiskLevel       Field = "risk_level"
	FieldTotalScore      Field = "total_score"
	FieldDrinkFreeDays   Field = "drink_free_days"
	FieldDrinkFreeStreak Field = "drink_free_streak"
	FieldDaysTracked     Field = "days_tracked"
	FieldGoalsAchieved   Field = "goals_achieved"
	FieldGoalProgress    Field = "goal_progress"
	FieldWeeklyUnits     Field = "weekly_units"
	FieldLastDrinkDate   Field = "last_drink_date"
	FieldDrinksToday     Field = "drinks_today"
)

// AllFields lists every computed field in presentation order.
var AllFields = []Field{
	FieldRiskLevel,
	FieldTotalScore,
	FieldDrinkFreeDays,
	FieldDrinkFreeStreak,
	FieldDaysTracked,
	FieldGoalsAchieved,
	FieldGoalProgress,
	FieldWeeklyUnits,
	FieldLastDrinkDate,
	FieldDrinksToday,
}

var riskLevelLabels = map[string]string{
	"low":                 "Low risk",
	"increasing":          "Increasing risk",
	"high":                "High risk",
	"possible_dependency": "Possible dependency",
}

// DateFormat is the date-only format the upstream uses everywhere.
// Dates are compared as strings, which for this format sorts correctly.
const DateFormat = "2006-01-02"

// ExtractField computes a single field from the snapshot. The second
// return is false when the snapshot has no data for it yet.
func ExtractField(f Field, s *AccountSnapshot, now time.Time) (any, bool) {
	if s == nil {
		return nil, false
	}
	switch f {
	case FieldRiskLevel:
		if s.Assessment == nil {
			return nil, false
		}
		if label, ok := riskLevelLabels[s.Assessment.RiskLevel]; ok {
			return label, true
		}
		return s.Assessment.RiskLevel, true
	case FieldTotalScore:
		if s.Assessment == nil {
			return nil, false
		}
		return s.Assessment.TotalScore, true
	case FieldDrinkFreeDays:
		if s.Stats == nil {
			return nil, false
		}
		return s.Stats.DrinkFreeDays.Total, true
	case FieldDrinkFreeStreak:
		if s.Stats == nil {
			return nil, false
		}
		return s.Stats.DrinkFreeDays.StreakCurrent, true
	case FieldDaysTracked:
		if s.Stats == nil {
			return nil, false
		}
		return s.Stats.DaysTracked.Total, true
	case FieldGoalsAchieved:
		if s.Stats == nil {
			return nil, false
		}
		return s.Stats.GoalsAchieved, true
	case FieldGoalProgress:
		for _, g := range s.Goals {
			if g.Type == "drinkFreeDays" && g.Target > 0 {
				return int(math.Round(g.Progress / g.Target * 100)), true
			}
		}
		return nil, false
	case FieldWeeklyUnits:
		return weeklyUnits(s, now), true
	case FieldLastDrinkDate:
		last := ""
		for _, d := range s.Summary {
			if !d.DrinkFreeDay && d.Drinks > 0 && d.Date > last {
				last = d.Date
			}
		}
		if last == "" {
			return nil, false
		}
		return last, true
	case FieldDrinksToday:
		today := now.Format(DateFormat)
		if day, ok := s.SummaryFor(today); ok {
			return day.Drinks, true
		}
		return 0, true
	}
	return nil, false
}

// weeklyUnits sums units over the last 7 calendar days inclusive,
// rounded to one decimal place.
func weeklyUnits(s *AccountSnapshot, now time.Time) float64 {
	to := now.Format(DateFormat)
	from := now.AddDate(0, 0, -6).Format(DateFormat)
	var total float64
	for _, d := range s.Summary {
		if d.Date >= from && d.Date <= to {
			total += d.Units
		}
	}
	return math.Round(total*10) / 10
}

// ExtractAllFields computes every available field.
func ExtractAllFields(s *AccountSnapshot, now time.Time) map[Field]any {
	out := make(map[Field]any, len(AllFields))
	for _, f := range AllFields {
		if v, ok := ExtractField(f, s, now); ok {
			out[f] = v
		}
	}
	return out
}

// ValidField reports whether name is a known computed field.
func ValidField(name string) bool {
	for _, f := range AllFields {
		if string(f) == name {
			return true
		}
	}
	return false
}
