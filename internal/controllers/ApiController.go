package controllers

import (
	"errors"
	"net/http"
	"time"

	json "github.com/goccy/go-json"
	"github.com/gookit/validate"

	"drinkaware/internal/models"
	"drinkaware/internal/providers"
	"drinkaware/internal/services"
	"drinkaware/internal/upstream"
)

// ApiController exposes the account snapshots and the write operations
// over HTTP. Read endpoints are cached per account until the next poll
// cycle; write endpoints invalidate the cache and answer with the
// upstream outcome mapped to a status code.
type ApiController struct {
	registry services.RegistryServiceInterface
	poller   *services.PollerService
	mutator  *services.MutatorService
	cache    providers.CacheProviderInterface
	logger   providers.Logger
	now      func() time.Time
}

func NewApiController(registry services.RegistryServiceInterface, poller *services.PollerService, mutator *services.MutatorService, cache providers.CacheProviderInterface, logger providers.Logger) *ApiController {
	return &ApiController{
		registry: registry,
		poller:   poller,
		mutator:  mutator,
		cache:    cache,
		logger:   logger,
		now:      time.Now,
	}
}

type accountSummary struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email,omitempty"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// GetAccounts lists the configured accounts.
func (c *ApiController) GetAccounts(w http.ResponseWriter, r *http.Request) {
	accounts := c.registry.List()
	out := make([]accountSummary, 0, len(accounts))
	for _, acc := range accounts {
		s := accountSummary{ID: acc.ID, Name: acc.Name, Email: acc.Email}
		if snap := acc.Snapshot(); snap != nil {
			s.UpdatedAt = snap.UpdatedAt
		}
		out = append(out, s)
	}
	c.writeJSON(w, http.StatusOK, out)
}

// GetSnapshot returns the full snapshot for one account.
func (c *ApiController) GetSnapshot(w http.ResponseWriter, r *http.Request) {
	acc, ok := c.accountFromQuery(w, r)
	if !ok {
		return
	}
	c.serveFromCacheOrCompute(w, "snapshot:"+acc.ID, func() (any, error) {
		snap := acc.Snapshot()
		if snap == nil {
			snap = &models.AccountSnapshot{}
		}
		return snap, nil
	})
}

// GetFields returns the computed fields for one account, either all of
// them or a single named one.
func (c *ApiController) GetFields(w http.ResponseWriter, r *http.Request) {
	acc, ok := c.accountFromQuery(w, r)
	if !ok {
		return
	}
	name := r.URL.Query().Get("name")
	if name != "" && !models.ValidField(name) {
		c.writeError(w, http.StatusBadRequest, "unknown field "+name)
		return
	}
	key := "fields:" + acc.ID + ":" + name
	c.serveFromCacheOrCompute(w, key, func() (any, error) {
		snap := acc.Snapshot()
		if name == "" {
			return models.ExtractAllFields(snap, c.now()), nil
		}
		v, ok := models.ExtractField(models.Field(name), snap, c.now())
		if !ok {
			v = nil
		}
		return map[string]any{name: v}, nil
	})
}

// Refresh triggers an out-of-band poll cycle for one account, or for
// all of them when no id is given.
func (c *ApiController) Refresh(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if id == "" {
		for _, acc := range c.registry.List() {
			c.poller.TriggerRefresh(acc.ID)
		}
		c.writeJSON(w, http.StatusAccepted, map[string]string{"status": "refreshing all accounts"})
		return
	}
	if _, ok := c.registry.Get(id); !ok {
		c.writeError(w, http.StatusNotFound, "account not found")
		return
	}
	c.invalidate(id)
	c.poller.TriggerRefresh(id)
	c.writeJSON(w, http.StatusAccepted, map[string]string{"status": "refreshing", "id": id})
}

type addDrinkBody struct {
	AccountID string `json:"accountId" validate:"required"`
	services.AddDrinkRequest
}

// AddDrink logs a drink for an account.
func (c *ApiController) AddDrink(w http.ResponseWriter, r *http.Request) {
	var body addDrinkBody
	if !c.decodeBody(w, r, &body) {
		return
	}
	if v := validate.Struct(body); !v.Validate() {
		c.writeError(w, http.StatusBadRequest, v.Errors.One())
		return
	}
	if err := c.mutator.AddDrink(r.Context(), body.AccountID, body.AddDrinkRequest); err != nil {
		c.writeServiceError(w, err)
		return
	}
	c.invalidate(body.AccountID)
	c.writeJSON(w, http.StatusOK, map[string]string{"status": "logged"})
}

// DeleteDrink removes one logged drink and echoes what was removed.
func (c *ApiController) DeleteDrink(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	id, date := q.Get("id"), q.Get("date")
	drinkID, measureID := q.Get("drinkId"), q.Get("measureId")
	if id == "" || drinkID == "" || measureID == "" {
		c.writeError(w, http.StatusBadRequest, "id, drinkId and measureId are required")
		return
	}
	entry, err := c.mutator.DeleteDrink(r.Context(), id, date, drinkID, measureID)
	if err != nil {
		c.writeServiceError(w, err)
		return
	}
	c.invalidate(id)
	c.writeJSON(w, http.StatusOK, map[string]any{"status": "removed", "removed": entry})
}

type drinkFreeDayBody struct {
	AccountID    string `json:"accountId" validate:"required"`
	Date         string `json:"date"`
	RemoveDrinks bool   `json:"removeDrinks"`
}

// MarkDrinkFreeDay sets the drink free day marker for a date.
func (c *ApiController) MarkDrinkFreeDay(w http.ResponseWriter, r *http.Request) {
	var body drinkFreeDayBody
	if !c.decodeBody(w, r, &body) {
		return
	}
	if v := validate.Struct(body); !v.Validate() {
		c.writeError(w, http.StatusBadRequest, v.Errors.One())
		return
	}
	if err := c.mutator.MarkDrinkFreeDay(r.Context(), body.AccountID, body.Date, body.RemoveDrinks); err != nil {
		c.writeServiceError(w, err)
		return
	}
	c.invalidate(body.AccountID)
	c.writeJSON(w, http.StatusOK, map[string]string{"status": "marked"})
}

// UnmarkDrinkFreeDay clears the drink free day marker.
func (c *ApiController) UnmarkDrinkFreeDay(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	id := q.Get("id")
	if id == "" {
		c.writeError(w, http.StatusBadRequest, "id is required")
		return
	}
	if err := c.mutator.UnmarkDrinkFreeDay(r.Context(), id, q.Get("date")); err != nil {
		c.writeServiceError(w, err)
		return
	}
	c.invalidate(id)
	c.writeJSON(w, http.StatusOK, map[string]string{"status": "unmarked"})
}

type sleepBody struct {
	AccountID string `json:"accountId" validate:"required"`
	Date      string `json:"date"`
	Quality   string `json:"quality" validate:"required"`
}

// LogSleepQuality records sleep quality for a date.
func (c *ApiController) LogSleepQuality(w http.ResponseWriter, r *http.Request) {
	var body sleepBody
	if !c.decodeBody(w, r, &body) {
		return
	}
	if v := validate.Struct(body); !v.Validate() {
		c.writeError(w, http.StatusBadRequest, v.Errors.One())
		return
	}
	if err := c.mutator.LogSleepQuality(r.Context(), body.AccountID, body.Date, body.Quality); err != nil {
		c.writeServiceError(w, err)
		return
	}
	c.invalidate(body.AccountID)
	c.writeJSON(w, http.StatusOK, map[string]string{"status": "logged"})
}

func (c *ApiController) accountFromQuery(w http.ResponseWriter, r *http.Request) (*services.Account, bool) {
	id := r.URL.Query().Get("id")
	if id == "" {
		c.writeError(w, http.StatusBadRequest, "id is required")
		return nil, false
	}
	acc, ok := c.registry.Get(id)
	if !ok {
		c.writeError(w, http.StatusNotFound, "account not found")
		return nil, false
	}
	return acc, true
}

func (c *ApiController) decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		c.writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

// invalidate drops the cached read responses for an account.
func (c *ApiController) invalidate(accountID string) {
	c.cache.Del("snapshot:" + accountID)
	c.cache.Del("fields:" + accountID + ":")
	for _, f := range models.AllFields {
		c.cache.Del("fields:" + accountID + ":" + string(f))
	}
}

func (c *ApiController) serveFromCacheOrCompute(w http.ResponseWriter, key string, compute func() (any, error)) {
	if data, ok := c.cache.Get(key); ok {
		w.Header().Set("Content-Type", "application/json")
		w.Write(data)
		return
	}
	value, err := compute()
	if err != nil {
		c.writeServiceError(w, err)
		return
	}
	data, err := json.Marshal(value)
	if err != nil {
		c.writeError(w, http.StatusInternalServerError, "encoding failed")
		return
	}
	c.cache.Set(key, data)
	w.Header().Set("Content-Type", "application/json")
	w.Write(data)
}

// writeServiceError maps service and upstream errors onto HTTP status
// codes. Upstream failures surface as gateway errors so a client can
// tell them apart from its own bad input.
func (c *ApiController) writeServiceError(w http.ResponseWriter, err error) {
	var reqErr *upstream.RequestError
	switch {
	case errors.Is(err, services.ErrAccountNotFound),
		errors.Is(err, services.ErrDrinkNotFound):
		c.writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, services.ErrInvalidQuality):
		c.writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, services.ErrDrinksStillPresent):
		c.writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, upstream.ErrTimeout):
		c.writeError(w, http.StatusGatewayTimeout, err.Error())
	case errors.Is(err, upstream.ErrAuthExpired), errors.Is(err, upstream.ErrInvalidGrant):
		c.writeError(w, http.StatusBadGateway, "upstream authentication failed")
	case errors.As(err, &reqErr):
		c.writeError(w, http.StatusBadGateway, err.Error())
	default:
		c.writeError(w, http.StatusBadRequest, err.Error())
	}
}

func (c *ApiController) writeError(w http.ResponseWriter, status int, msg string) {
	c.writeJSON(w, status, map[string]string{"error": msg})
}

func (c *ApiController) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		c.logger.Errorf(providers.TypeGet, "response encoding failed: %v", err)
	}
}
