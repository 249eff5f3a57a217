package models

import (
	"time"

	json "github.com/goccy/go-json"
)

// Assessment is the most recent self assessment result.
type Assessment struct {
	RiskLevel  string `json:"riskLevel"`
	TotalScore int    `json:"totalScore"`
	Created    string `json:"created,omitempty"`
}

// StreakStat is the upstream's total/streak triple used for both
// drink free days and days tracked.
type StreakStat struct {
	Total         int `json:"total"`
	StreakCurrent int `json:"streakCurrent"`
	StreakHighest int `json:"streakHighest"`
}

// Stats mirrors the tracking stats endpoint payload.
type Stats struct {
	DrinkFreeDays StreakStat `json:"drinkFreeDays"`
	DaysTracked   StreakStat `json:"daysTracked"`
	GoalsAchieved int        `json:"goalsAchieved"`
	TrackingSince string     `json:"trackingSince,omitempty"`
}

// Goal is a single tracking goal. Type "drinkFreeDays" is the one the
// computed fields care about.
type Goal struct {
	Type      string  `json:"type"`
	Target    float64 `json:"target"`
	Progress  float64 `json:"progress"`
	StartDate string  `json:"startDate,omitempty"`
}

// DaySummary is one day of the activity summary window.
type DaySummary struct {
	Date         string  `json:"date"`
	Drinks       int     `json:"drinks"`
	Units        float64 `json:"units"`
	DrinkFreeDay bool    `json:"drinkFreeDay"`
}

// ActivityEntry is one logged drink on a given day.
type ActivityEntry struct {
	DrinkID     string  `json:"drinkId"`
	MeasureID   string  `json:"measureId"`
	Name        string  `json:"name,omitempty"`
	MeasureName string  `json:"measureName,omitempty"`
	Abv         float64 `json:"abv,omitempty"`
	Quantity    int     `json:"quantity"`
}

// ActivityDetail holds the per-drink entries fetched for one date.
type ActivityDetail struct {
	Date    string          `json:"date"`
	Entries []ActivityEntry `json:"entries"`
}

// Entry returns the entry matching the drink/measure pair, if present.
func (d *ActivityDetail) Entry(drinkID, measureID string) (ActivityEntry, bool) {
	if d == nil {
		return ActivityEntry{}, false
	}
	for _, e := range d.Entries {
		if e.DrinkID == drinkID && e.MeasureID == measureID {
			return e, true
		}
	}
	return ActivityEntry{}, false
}

// ParseActivityDetail decodes a day activity payload. The upstream is
// inconsistent about the array key, older responses use "activity" and
// newer ones "drinks", so both are accepted.
func ParseActivityDetail(date string, raw json.RawMessage) (*ActivityDetail, error) {
	var payload struct {
		Activity []ActivityEntry `json:"activity"`
		Drinks   []ActivityEntry `json:"drinks"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, err
	}
	entries := payload.Activity
	if len(entries) == 0 {
		entries = payload.Drinks
	}
	return &ActivityDetail{Date: date, Entries: entries}, nil
}

// AccountSnapshot is the merged read-side state for one account. The
// poller builds a fresh copy each cycle and swaps the pointer, so readers
// must treat a snapshot they hold as immutable.
type AccountSnapshot struct {
	Assessment *Assessment                `json:"assessment,omitempty"`
	Stats      *Stats                     `json:"stats,omitempty"`
	Goals      []Goal                     `json:"goals,omitempty"`
	Summary    []DaySummary               `json:"summary,omitempty"`
	Activity   map[string]*ActivityDetail `json:"activity,omitempty"`
	UpdatedAt  time.Time                  `json:"updatedAt"`
}

// Clone returns a shallow-enough copy that the poller can update
// section by section without mutating the previously published snapshot.
func (s *AccountSnapshot) Clone() *AccountSnapshot {
	if s == nil {
		return &AccountSnapshot{Activity: map[string]*ActivityDetail{}}
	}
	out := &AccountSnapshot{
		Assessment: s.Assessment,
		Stats:      s.Stats,
		Goals:      s.Goals,
		Summary:    s.Summary,
		UpdatedAt:  s.UpdatedAt,
		Activity:   make(map[string]*ActivityDetail, len(s.Activity)),
	}
	for k, v := range s.Activity {
		out.Activity[k] = v
	}
	return out
}

// SummaryFor returns the summary row for the given date string.
func (s *AccountSnapshot) SummaryFor(date string) (DaySummary, bool) {
	if s == nil {
		return DaySummary{}, false
	}
	for _, d := range s.Summary {
		if d.Date == date {
			return d, true
		}
	}
	return DaySummary{}, false
}
