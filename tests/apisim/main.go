// Command apisim is a tiny stand-in for the Drinkaware API, good enough
// to run the daemon end to end without real credentials. Point
// api.baseUrl and api.tokenUrl at it. Every rateLimitEvery-th request
// answers 429 to exercise the retry path.
package main

import (
	"flag"
	"fmt"
	"log"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	json "github.com/goccy/go-json"
)

type simulator struct {
	mu             sync.Mutex
	activity       map[string][]map[string]any
	drinkFreeDays  map[string]bool
	requests       atomic.Int64
	rateLimitEvery int64
}

func main() {
	addr := flag.String("addr", ":9090", "listen address")
	rateLimitEvery := flag.Int64("rate-limit-every", 0, "answer 429 on every Nth request, 0 disables")
	flag.Parse()

	sim := &simulator{
		activity:       make(map[string][]map[string]any),
		drinkFreeDays:  make(map[string]bool),
		rateLimitEvery: *rateLimitEvery,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/token", sim.token)
	mux.HandleFunc("/tools/v1/selfassessment", sim.limited(sim.selfAssessment))
	mux.HandleFunc("/tracking/v1/stats", sim.limited(sim.stats))
	mux.HandleFunc("/tracking/v1/goals", sim.limited(sim.goals))
	mux.HandleFunc("/tracking/v1/summary/", sim.limited(sim.summary))
	mux.HandleFunc("/tracking/v1/activity/", sim.limited(sim.activityHandler))
	mux.HandleFunc("/drinks/v1/generic", sim.limited(sim.generic))
	mux.HandleFunc("/drinks/v1/custom", sim.limited(sim.custom))
	mux.HandleFunc("/drinks/v1/search", sim.limited(sim.search))

	log.Printf("apisim listening on %s", *addr)
	log.Fatal(http.ListenAndServe(*addr, mux))
}

func (s *simulator) limited(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		n := s.requests.Add(1)
		if s.rateLimitEvery > 0 && n%s.rateLimitEvery == 0 {
			w.WriteHeader(http.StatusTooManyRequests)
			fmt.Fprint(w, "Too many requests. Try again in 2 seconds.")
			return
		}
		if !strings.HasPrefix(r.Header.Get("Authorization"), "Bearer ") {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		next(w, r)
	}
}

func (s *simulator) token(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]any{
		"access_token":  fmt.Sprintf("sim-token-%d", time.Now().Unix()),
		"refresh_token": "sim-refresh",
		"token_type":    "Bearer",
		"expires_in":    3600,
	})
}

func (s *simulator) selfAssessment(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]any{
		"assessments": []map[string]any{
			{"riskLevel": "low", "totalScore": 4, "created": "2026-08-01"},
		},
	})
}

func (s *simulator) stats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]any{
		"drinkFreeDays": map[string]int{"total": 42, "streakCurrent": 3, "streakHighest": 11},
		"daysTracked":   map[string]int{"total": 120, "streakCurrent": 15, "streakHighest": 40},
		"goalsAchieved": 7,
	})
}

func (s *simulator) goals(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]any{
		"goals": []map[string]any{
			{"type": "drinkFreeDays", "target": 4, "progress": 3, "startDate": "2026-08-25"},
		},
	})
}

func (s *simulator) summary(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	days := make([]map[string]any, 0, 14)
	for i := 0; i < 14; i++ {
		date := time.Now().AddDate(0, 0, -i).Format("2006-01-02")
		drinks := len(s.activity[date])
		days = append(days, map[string]any{
			"date":         date,
			"drinks":       drinks,
			"units":        float64(drinks) * 2.3,
			"drinkFreeDay": s.drinkFreeDays[date],
		})
	}
	writeJSON(w, map[string]any{"activitySummaryDays": days})
}

// activityHandler covers the whole activity subtree: day fetch, drink
// set/adjust/delete, drink free day marker and sleep quality.
func (s *simulator) activityHandler(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	parts := strings.Split(strings.TrimPrefix(r.URL.Path, "/tracking/v1/activity/"), "/")
	date := parts[0]

	switch {
	case len(parts) == 1 && r.Method == http.MethodGet:
		writeJSON(w, map[string]any{"activity": s.activity[date]})
	case len(parts) == 1 && r.Method == http.MethodPut:
		var body map[string]any
		json.NewDecoder(r.Body).Decode(&body)
		s.activity[date] = append(s.activity[date], body)
		delete(s.drinkFreeDays, date)
		writeJSON(w, map[string]string{"status": "ok"})
	case len(parts) == 1 && r.Method == http.MethodPost:
		writeJSON(w, map[string]string{"status": "ok"})
	case len(parts) == 2 && parts[1] == "drinkfreeday" && r.Method == http.MethodPut:
		if len(s.activity[date]) > 0 {
			w.WriteHeader(http.StatusConflict)
			return
		}
		s.drinkFreeDays[date] = true
		writeJSON(w, map[string]string{"status": "ok"})
	case len(parts) == 2 && parts[1] == "drinkfreeday" && r.Method == http.MethodDelete:
		delete(s.drinkFreeDays, date)
		writeJSON(w, map[string]string{"status": "ok"})
	case len(parts) == 2 && parts[1] == "sleep" && r.Method == http.MethodPut:
		writeJSON(w, map[string]string{"status": "ok"})
	case len(parts) == 3 && r.Method == http.MethodDelete:
		kept := s.activity[date][:0]
		for _, e := range s.activity[date] {
			if e["drinkId"] != parts[1] || e["measureId"] != parts[2] {
				kept = append(kept, e)
			}
		}
		s.activity[date] = kept
		writeJSON(w, map[string]string{"status": "ok"})
	default:
		http.NotFound(w, r)
	}
}

func (s *simulator) generic(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]any{
		"categories": []map[string]any{
			{
				"title": "Beer & cider",
				"drinks": []map[string]any{
					{"drinkId": "FAB60DBF-911F-4286-9C3E-0F0BCB40E3B7", "title": "Lager", "abv": 4.0},
					{"drinkId": "D4F06BD4-1F61-468B-AE86-C6CC2D56E021", "title": "Beer", "abv": 5.0},
				},
			},
			{
				"title": "Wine",
				"drinks": []map[string]any{
					{"drinkId": "19E82B28-89A9-4339-A083-A9F745B88C08", "title": "Red wine", "abv": 13.0},
				},
			},
		},
	})
}

func (s *simulator) custom(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodPost {
		var body map[string]any
		json.NewDecoder(r.Body).Decode(&body)
		writeJSON(w, map[string]any{"drinkId": fmt.Sprintf("custom-%d", time.Now().UnixNano())})
		return
	}
	writeJSON(w, map[string]any{"results": []map[string]any{}})
}

func (s *simulator) search(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, map[string]any{"results": []map[string]any{}})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}
