package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fieldsNow = time.Date(2026, 8, 31, 15, 0, 0, 0, time.UTC)

func fullSnapshot() *AccountSnapshot {
	return &AccountSnapshot{
		Assessment: &Assessment{RiskLevel: "increasing", TotalScore: 9},
		Stats: &Stats{
			DrinkFreeDays: StreakStat{Total: 42, StreakCurrent: 3, StreakHighest: 11},
			DaysTracked:   StreakStat{Total: 120, StreakCurrent: 15},
			GoalsAchieved: 7,
		},
		Goals: []Goal{
			{Type: "unitsReduction", Target: 14, Progress: 10},
			{Type: "drinkFreeDays", Target: 4, Progress: 3},
		},
		Summary: []DaySummary{
			{Date: "2026-08-31", Drinks: 2, Units: 4.6},
			{Date: "2026-08-30", Drinks: 0, Units: 0, DrinkFreeDay: true},
			{Date: "2026-08-27", Drinks: 1, Units: 2.3},
			{Date: "2026-08-25", Drinks: 3, Units: 6.9},
			// Outside the 7 day window ending 2026-08-31.
			{Date: "2026-08-24", Drinks: 5, Units: 11.5},
		},
	}
}

func TestExtractFieldRiskLevelIsLabelled(t *testing.T) {
	v, ok := ExtractField(FieldRiskLevel, fullSnapshot(), fieldsNow)
	require.True(t, ok)
	assert.Equal(t, "Increasing risk", v)
}

func TestExtractFieldUnknownRiskLevelPassesThrough(t *testing.T) {
	s := fullSnapshot()
	s.Assessment.RiskLevel = "experimental"
	v, ok := ExtractField(FieldRiskLevel, s, fieldsNow)
	require.True(t, ok)
	assert.Equal(t, "experimental", v)
}

func TestExtractFieldStats(t *testing.T) {
	s := fullSnapshot()
	cases := map[Field]any{
		FieldTotalScore:      9,
		FieldDrinkFreeDays:   42,
		FieldDrinkFreeStreak: 3,
		FieldDaysTracked:     120,
		FieldGoalsAchieved:   7,
	}
	for field, want := range cases {
		v, ok := ExtractField(field, s, fieldsNow)
		require.True(t, ok, field)
		assert.Equal(t, want, v, field)
	}
}

func TestExtractFieldGoalProgress(t *testing.T) {
	v, ok := ExtractField(FieldGoalProgress, fullSnapshot(), fieldsNow)
	require.True(t, ok)
	assert.Equal(t, 75, v)
}

func TestExtractFieldGoalProgressAbsentWithoutGoal(t *testing.T) {
	s := fullSnapshot()
	s.Goals = []Goal{{Type: "unitsReduction", Target: 14, Progress: 10}}
	_, ok := ExtractField(FieldGoalProgress, s, fieldsNow)
	assert.False(t, ok)
}

func TestWeeklyUnitsOnlyCountsLastSevenDays(t *testing.T) {
	v, ok := ExtractField(FieldWeeklyUnits, fullSnapshot(), fieldsNow)
	require.True(t, ok)
	// 4.6 + 2.3 + 6.9, the 2026-08-24 row falls outside the window.
	assert.Equal(t, 13.8, v)
}

func TestWeeklyUnitsRoundsToOneDecimal(t *testing.T) {
	s := &AccountSnapshot{Summary: []DaySummary{
		{Date: "2026-08-31", Units: 1.11},
		{Date: "2026-08-30", Units: 2.22},
	}}
	v, _ := ExtractField(FieldWeeklyUnits, s, fieldsNow)
	assert.Equal(t, 3.3, v)
}

func TestExtractFieldLastDrinkDate(t *testing.T) {
	v, ok := ExtractField(FieldLastDrinkDate, fullSnapshot(), fieldsNow)
	require.True(t, ok)
	assert.Equal(t, "2026-08-31", v)
}

func TestLastDrinkDateSkipsDrinkFreeDays(t *testing.T) {
	s := &AccountSnapshot{Summary: []DaySummary{
		{Date: "2026-08-31", Drinks: 0, DrinkFreeDay: true},
		{Date: "2026-08-29", Drinks: 2},
	}}
	v, ok := ExtractField(FieldLastDrinkDate, s, fieldsNow)
	require.True(t, ok)
	assert.Equal(t, "2026-08-29", v)
}

func TestExtractFieldDrinksToday(t *testing.T) {
	v, ok := ExtractField(FieldDrinksToday, fullSnapshot(), fieldsNow)
	require.True(t, ok)
	assert.Equal(t, 2, v)

	// No summary row for today means zero, not absent.
	v, ok = ExtractField(FieldDrinksToday, &AccountSnapshot{}, fieldsNow)
	require.True(t, ok)
	assert.Equal(t, 0, v)
}

func TestExtractFieldNilSnapshot(t *testing.T) {
	_, ok := ExtractField(FieldRiskLevel, nil, fieldsNow)
	assert.False(t, ok)
}

func TestExtractAllFieldsSkipsUnavailable(t *testing.T) {
	out := ExtractAllFields(&AccountSnapshot{Stats: &Stats{GoalsAchieved: 1}}, fieldsNow)
	assert.Contains(t, out, FieldGoalsAchieved)
	assert.NotContains(t, out, FieldRiskLevel)
	assert.NotContains(t, out, FieldGoalProgress)
}

func TestValidField(t *testing.T) {
	assert.True(t, ValidField("weekly_units"))
	assert.False(t, ValidField("blood_type"))
}
