package services

import (
	"context"
	"errors"
	"net/url"
	"time"

	json "github.com/goccy/go-json"

	"drinkaware/internal/models"
	"drinkaware/internal/providers"
	"drinkaware/internal/structures"
	"drinkaware/internal/upstream"
)

// PollerService runs the periodic fetch cycle for every account:
// assessment, stats, goals, summary, today's activity when the summary
// shows drinks, and a catalog refresh when the cached one goes stale.
// A section that fails keeps its previous value; only an authentication
// failure aborts the cycle.
type PollerService struct {
	registry  RegistryServiceInterface
	refresher *upstream.TokenRefresher
	conf      *structures.Config
	logger    providers.Logger
	metrics   providers.MetricsProviderInterface

	sleep func(time.Duration)
	now   func() time.Time
}

func NewPollerService(registry RegistryServiceInterface, refresher *upstream.TokenRefresher, conf *structures.Config, logger providers.Logger, metrics providers.MetricsProviderInterface) *PollerService {
	return &PollerService{
		registry:  registry,
		refresher: refresher,
		conf:      conf,
		logger:    logger,
		metrics:   metrics,
		sleep:     time.Sleep,
		now:       time.Now,
	}
}

// RefreshAll runs one cycle for every configured account, sequentially
// so the accounts do not compete for the upstream's rate limit.
func (p *PollerService) RefreshAll(ctx context.Context) {
	for _, acc := range p.registry.List() {
		if ctx.Err() != nil {
			return
		}
		p.RefreshAccount(ctx, acc)
	}
}

// TriggerRefresh schedules an out-of-band cycle for one account. Write
// operations call it so reads converge quickly after a mutation.
func (p *PollerService) TriggerRefresh(accountID string) {
	acc, ok := p.registry.Get(accountID)
	if !ok {
		return
	}
	go p.RefreshAccount(context.Background(), acc)
}

// RefreshAccount runs one poll cycle under the account lock. On an
// authentication failure mid-cycle the token is refreshed once and the
// whole cycle restarted from the top, exactly once.
func (p *PollerService) RefreshAccount(ctx context.Context, acc *Account) {
	acc.Lock()
	defer acc.Unlock()
	start := p.now()

	creds := acc.Credentials()
	if creds != nil && creds.NeedsRefresh(p.now()) && creds.RefreshToken != "" {
		next, err := p.refresher.Refresh(ctx, acc.ID, creds)
		if err != nil {
			if errors.Is(err, upstream.ErrInvalidGrant) {
				return
			}
			// Transient refresh failure, the old token may still work.
			p.logger.Warnf(providers.TypeAuth, "account %s: proactive refresh failed: %v", acc.ID, err)
		} else {
			acc.SetCredentials(next)
		}
	}

	for attempt := 0; attempt < 2; attempt++ {
		err := p.runCycle(ctx, acc)
		if err == nil {
			p.metrics.ObservePollCycle(acc.ID, p.now().Sub(start))
			return
		}
		if !errors.Is(err, upstream.ErrAuthExpired) || attempt > 0 {
			p.logger.Errorf(providers.TypeSync, "account %s: poll cycle aborted: %v", acc.ID, err)
			return
		}
		old := acc.Credentials()
		next, rerr := p.refresher.Refresh(ctx, acc.ID, old)
		if rerr != nil || next == nil || next.AccessToken == old.AccessToken {
			p.logger.Errorf(providers.TypeAuth, "account %s needs re-authentication", acc.ID)
			return
		}
		acc.SetCredentials(next)
		p.sleep(p.conf.API.ThrottleDelay)
	}
}

// runCycle fetches every section into a fresh copy of the snapshot and
// publishes it. Only ErrAuthExpired is returned; other per-section
// failures are logged and the previous value kept.
func (p *PollerService) runCycle(ctx context.Context, acc *Account) error {
	snap := acc.Snapshot().Clone()

	steps := []struct {
		name string
		run  func() error
	}{
		{"assessment", func() error { return p.fetchAssessment(ctx, acc, snap) }},
		{"stats", func() error { return p.fetchStats(ctx, acc, snap) }},
		{"goals", func() error { return p.fetchGoals(ctx, acc, snap) }},
		{"summary", func() error { return p.fetchSummary(ctx, acc, snap) }},
		{"activity", func() error { return p.fetchTodayActivity(ctx, acc, snap) }},
		{"catalog", func() error { return p.refreshCatalog(ctx, acc) }},
	}
	for _, s := range steps {
		if err := s.run(); err != nil {
			if errors.Is(err, upstream.ErrAuthExpired) {
				return err
			}
			p.logger.Warnf(providers.TypeSync, "account %s: %s fetch failed: %v", acc.ID, s.name, err)
		}
		p.pace(acc)
	}

	snap.UpdatedAt = p.now()
	acc.SetSnapshot(snap)
	p.logger.Debugf(providers.TypeSync, "account %s: snapshot updated", acc.ID)
	return nil
}

// pace inserts a delay between requests once the executor has seen a
// rate limit, to avoid tripping it again.
func (p *PollerService) pace(acc *Account) {
	if acc.Executor().Throttled() {
		p.sleep(p.conf.API.ThrottleDelay)
	}
}

func (p *PollerService) fetchAssessment(ctx context.Context, acc *Account, snap *models.AccountSnapshot) error {
	raw, err := acc.Executor().Get(ctx, upstream.EndpointSelfAssessment, url.Values{
		"page":           {"1"},
		"resultsPerPage": {"1"},
	})
	if err != nil {
		return err
	}
	var payload struct {
		Assessments []models.Assessment `json:"assessments"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return err
	}
	if len(payload.Assessments) > 0 {
		snap.Assessment = &payload.Assessments[0]
	}
	return nil
}

func (p *PollerService) fetchStats(ctx context.Context, acc *Account, snap *models.AccountSnapshot) error {
	raw, err := acc.Executor().Get(ctx, upstream.EndpointStats, nil)
	if err != nil {
		return err
	}
	var stats models.Stats
	if err := json.Unmarshal(raw, &stats); err != nil {
		return err
	}
	snap.Stats = &stats
	return nil
}

func (p *PollerService) fetchGoals(ctx context.Context, acc *Account, snap *models.AccountSnapshot) error {
	raw, err := acc.Executor().Get(ctx, upstream.EndpointGoals, url.Values{
		"page":           {"1"},
		"resultsPerPage": {"6"},
	})
	if err != nil {
		return err
	}
	var payload struct {
		Goals []models.Goal `json:"goals"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return err
	}
	snap.Goals = payload.Goals
	return nil
}

func (p *PollerService) fetchSummary(ctx context.Context, acc *Account, snap *models.AccountSnapshot) error {
	now := p.now()
	to := now.Format(models.DateFormat)
	from := now.AddDate(0, 0, -p.conf.Polling.SummaryDays).Format(models.DateFormat)
	raw, err := acc.Executor().Get(ctx, upstream.EndpointSummary+"/"+to+"/"+from, url.Values{
		"aggregation": {"weekly"},
	})
	if err != nil {
		return err
	}
	var payload struct {
		Days []models.DaySummary `json:"activitySummaryDays"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return err
	}
	snap.Summary = payload.Days
	return nil
}

// fetchTodayActivity pulls the per-drink breakdown, but only when the
// summary says today has drinks. The date is matched by string to dodge
// timezone drift between us and the upstream.
func (p *PollerService) fetchTodayActivity(ctx context.Context, acc *Account, snap *models.AccountSnapshot) error {
	today := p.now().Format(models.DateFormat)
	day, ok := snap.SummaryFor(today)
	if !ok || day.Drinks <= 0 {
		return nil
	}
	raw, err := acc.Executor().Get(ctx, upstream.EndpointActivity+"/"+today, nil)
	if err != nil {
		return err
	}
	detail, err := models.ParseActivityDetail(today, raw)
	if err != nil {
		return err
	}
	snap.Activity[today] = detail
	return nil
}

// refreshCatalog re-fetches the drink catalog when the cached one is
// older than the configured interval. Custom drinks already known for
// the account are carried over.
func (p *PollerService) refreshCatalog(ctx context.Context, acc *Account) error {
	catalog := acc.Catalog()
	if !catalog.Stale(p.now(), p.conf.Polling.CatalogInterval) {
		return nil
	}
	raw, err := acc.Executor().Get(ctx, upstream.EndpointDrinksGeneric, nil)
	if err != nil {
		return err
	}
	var payload struct {
		Categories []models.Category `json:"categories"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return err
	}

	var custom []models.Drink
	if catalog != nil {
		custom = append(custom, catalog.Custom...)
	}
	search := url.Values{"page": {"1"}, "resultsPerPage": {"50"}, "query": {""}}
	if raw, err := acc.Executor().Get(ctx, upstream.EndpointDrinksSearch, search); err == nil && raw != nil {
		var found struct {
			Results []models.Drink `json:"results"`
		}
		if err := json.Unmarshal(raw, &found); err == nil {
			custom = append(custom, found.Results...)
		}
	} else if errors.Is(err, upstream.ErrAuthExpired) {
		return err
	}

	acc.SetCatalog(models.MergeCatalog(payload.Categories, custom, p.now()))
	return nil
}
