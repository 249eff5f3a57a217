package controllers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"drinkaware/internal/models"
	"drinkaware/internal/services"
	"drinkaware/internal/structures"
	"drinkaware/internal/testutil"
	"drinkaware/internal/upstream"
)

type noopTrigger struct{ calls int }

func (n *noopTrigger) TriggerRefresh(string) { n.calls++ }

type testEnv struct {
	api      *ApiController
	cache    *testutil.MockCache
	acc      *services.Account
	registry services.RegistryServiceInterface
	upstream *httptest.Server
	trigger  *noopTrigger
}

// newTestEnv wires a controller over a canned upstream. The upstream
// answers every activity request with an empty day and accepts writes.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, upstream.EndpointActivity) && r.Method == http.MethodGet {
			w.Write([]byte(`{"activity":[]}`))
			return
		}
		w.Write([]byte(`{"status":"ok"}`))
	}))
	t.Cleanup(server.Close)

	conf := &structures.Config{
		Accounts: []structures.AccountConfig{{ID: "acc-1", Name: "Test", Email: "t@example.com", AccessToken: "tok"}},
		API:      structures.APIConfig{BaseURL: server.URL, TokenURL: server.URL + "/token", RequestTimeout: 5 * time.Second},
		Polling:  structures.PollingConfig{Interval: time.Hour, CatalogInterval: 6 * time.Hour, SummaryDays: 14},
	}
	logger := &testutil.MockLogger{}
	metrics := testutil.NewMockMetrics()
	registry := services.NewRegistryService(conf, logger, metrics)
	refresher := upstream.NewTokenRefresher(&conf.API, logger, metrics, nil)
	poller := services.NewPollerService(registry, refresher, conf, logger, metrics)
	trigger := &noopTrigger{}
	mutator := services.NewMutatorService(registry, trigger, logger)
	cache := testutil.NewMockCache()

	acc, _ := registry.Get("acc-1")
	return &testEnv{
		api:      NewApiController(registry, poller, mutator, cache, logger),
		cache:    cache,
		acc:      acc,
		registry: registry,
		upstream: server,
		trigger:  trigger,
	}
}

func doJSON(t *testing.T, handler http.HandlerFunc, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	rec := httptest.NewRecorder()
	handler(rec, req)
	return rec
}

func TestGetAccounts(t *testing.T) {
	env := newTestEnv(t)
	env.acc.SetSnapshot(&models.AccountSnapshot{UpdatedAt: time.Now()})

	rec := doJSON(t, env.api.GetAccounts, http.MethodGet, "/accounts", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var out []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	require.Len(t, out, 1)
	assert.Equal(t, "acc-1", out[0]["id"])
	assert.Equal(t, "t@example.com", out[0]["email"])
}

func TestGetSnapshotRequiresKnownAccount(t *testing.T) {
	env := newTestEnv(t)

	rec := doJSON(t, env.api.GetSnapshot, http.MethodGet, "/account", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, env.api.GetSnapshot, http.MethodGet, "/account?id=ghost", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetSnapshotIsCached(t *testing.T) {
	env := newTestEnv(t)
	env.acc.SetSnapshot(&models.AccountSnapshot{Stats: &models.Stats{GoalsAchieved: 2}})

	rec := doJSON(t, env.api.GetSnapshot, http.MethodGet, "/account?id=acc-1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, env.cache.Len())

	// A snapshot swap is invisible until the cache entry is dropped.
	env.acc.SetSnapshot(&models.AccountSnapshot{Stats: &models.Stats{GoalsAchieved: 9}})
	rec = doJSON(t, env.api.GetSnapshot, http.MethodGet, "/account?id=acc-1", "")
	assert.Contains(t, rec.Body.String(), `"goalsAchieved":2`)
}

func TestGetFields(t *testing.T) {
	env := newTestEnv(t)
	env.acc.SetSnapshot(&models.AccountSnapshot{Stats: &models.Stats{GoalsAchieved: 2}})

	rec := doJSON(t, env.api.GetFields, http.MethodGet, "/fields?id=acc-1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "goals_achieved")

	rec = doJSON(t, env.api.GetFields, http.MethodGet, "/fields?id=acc-1&name=goals_achieved", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"goals_achieved":2}`, rec.Body.String())

	rec = doJSON(t, env.api.GetFields, http.MethodGet, "/fields?id=acc-1&name=blood_type", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRefreshEndpoint(t *testing.T) {
	env := newTestEnv(t)

	rec := doJSON(t, env.api.Refresh, http.MethodPost, "/refresh?id=acc-1", "")
	assert.Equal(t, http.StatusAccepted, rec.Code)

	rec = doJSON(t, env.api.Refresh, http.MethodPost, "/refresh?id=ghost", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAddDrinkValidatesBody(t *testing.T) {
	env := newTestEnv(t)

	rec := doJSON(t, env.api.AddDrink, http.MethodPost, "/drinks", "{not json")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, env.api.AddDrink, http.MethodPost, "/drinks",
		`{"accountId":"acc-1","measureId":"pint"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAddDrinkHappyPath(t *testing.T) {
	env := newTestEnv(t)
	env.cache.Set("snapshot:acc-1", []byte("{}"))

	rec := doJSON(t, env.api.AddDrink, http.MethodPost, "/drinks",
		`{"accountId":"acc-1","drinkId":"lager-1","measureId":"pint","quantity":1,"date":"2026-08-20"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, 1, env.trigger.calls)
	_, cached := env.cache.Get("snapshot:acc-1")
	assert.False(t, cached)
}

func TestDeleteDrinkParamValidation(t *testing.T) {
	env := newTestEnv(t)
	rec := doJSON(t, env.api.DeleteDrink, http.MethodDelete, "/drinks?id=acc-1&date=2026-08-20", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDeleteDrinkNotLogged(t *testing.T) {
	env := newTestEnv(t)
	rec := doJSON(t, env.api.DeleteDrink, http.MethodDelete,
		"/drinks?id=acc-1&date=2026-08-20&drinkId=a&measureId=m", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMarkDrinkFreeDayEndpoint(t *testing.T) {
	env := newTestEnv(t)
	rec := doJSON(t, env.api.MarkDrinkFreeDay, http.MethodPut, "/drinkfreeday",
		`{"accountId":"acc-1","date":"2026-08-20"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, env.trigger.calls)
}

func TestSleepQualityEndpoint(t *testing.T) {
	env := newTestEnv(t)

	rec := doJSON(t, env.api.LogSleepQuality, http.MethodPut, "/sleep",
		`{"accountId":"acc-1","date":"2026-08-20","quality":"amazing"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, env.api.LogSleepQuality, http.MethodPut, "/sleep",
		`{"accountId":"acc-1","date":"2026-08-20","quality":"great"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHealthEndpoint(t *testing.T) {
	env := newTestEnv(t)
	env.acc.SetSnapshot(&models.AccountSnapshot{UpdatedAt: time.Now()})
	health := NewHealthController(env.registry)

	rec := doJSON(t, health.Health, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Equal(t, "ok", out["status"])
	accounts, ok := out["accounts"].([]any)
	require.True(t, ok)
	require.Len(t, accounts, 1)
	first := accounts[0].(map[string]any)
	assert.Equal(t, "acc-1", first["id"])
	assert.NotEqual(t, "never", first["lastUpdated"])
}
