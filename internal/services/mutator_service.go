package services

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"time"

	json "github.com/goccy/go-json"

	"drinkaware/internal/models"
	"drinkaware/internal/providers"
	"drinkaware/internal/upstream"
)

// abvTolerance is how far a requested ABV may sit from the catalog
// default before a custom drink variant is created upstream.
const abvTolerance = 0.01

// Pacing for the remove-then-verify pass. The activity endpoints rate
// limit aggressively when deletes arrive back to back.
const (
	interDeleteDelay = 500 * time.Millisecond
	verifyDelay      = time.Second
)

var sleepQualities = map[string]bool{
	"poor":    true,
	"average": true,
	"great":   true,
}

// RefreshTrigger is the slice of the poller the mutator needs.
type RefreshTrigger interface {
	TriggerRefresh(accountID string)
}

// AddDrinkRequest describes one drink to log.
type AddDrinkRequest struct {
	DrinkID   string   `json:"drinkId" validate:"required"`
	MeasureID string   `json:"measureId" validate:"required"`
	Abv       *float64 `json:"abv,omitempty"`
	Quantity  int      `json:"quantity"`
	Date      string   `json:"date"`
	Title     string   `json:"title,omitempty"`

	// RemoveDrinkFreeDay clears a drink free day marker before logging,
	// best effort.
	RemoveDrinkFreeDay bool `json:"removeDrinkFreeDay"`
}

// MutatorService performs the write operations against the tracking
// API. Every operation runs under the account lock so it never
// interleaves with a poll cycle, and ends by triggering an out-of-band
// refresh so reads converge.
type MutatorService struct {
	registry RegistryServiceInterface
	poller   RefreshTrigger
	logger   providers.Logger

	sleep func(time.Duration)
	now   func() time.Time
}

func NewMutatorService(registry RegistryServiceInterface, poller RefreshTrigger, logger providers.Logger) *MutatorService {
	return &MutatorService{
		registry: registry,
		poller:   poller,
		logger:   logger,
		sleep:    time.Sleep,
		now:      time.Now,
	}
}

func (m *MutatorService) account(id string) (*Account, error) {
	acc, ok := m.registry.Get(id)
	if !ok {
		return nil, ErrAccountNotFound
	}
	return acc, nil
}

// resolveDate defaults an empty date to today and rejects anything not
// in date-only form.
func (m *MutatorService) resolveDate(date string) (string, error) {
	if date == "" {
		return m.now().Format(models.DateFormat), nil
	}
	if _, err := time.Parse(models.DateFormat, date); err != nil {
		return "", fmt.Errorf("invalid date %q: %w", date, err)
	}
	return date, nil
}

// AddDrink logs a drink. When the requested ABV deviates from the
// catalog default beyond the tolerance, a custom drink derived from the
// base one is created upstream first and its id used instead. If the
// day already has an entry for the pair the quantity is applied as
// individual +1 adjustments, otherwise as one absolute set.
func (m *MutatorService) AddDrink(ctx context.Context, accountID string, req AddDrinkRequest) error {
	acc, err := m.account(accountID)
	if err != nil {
		return err
	}
	date, err := m.resolveDate(req.Date)
	if err != nil {
		return err
	}
	quantity := req.Quantity
	if quantity < 1 {
		quantity = 1
	}

	acc.Lock()
	defer acc.Unlock()

	if req.RemoveDrinkFreeDay {
		if _, err := acc.Executor().Call(ctx, http.MethodDelete, upstream.EndpointActivity+"/"+date+"/drinkfreeday", nil, nil); err != nil {
			m.logger.Debugf(providers.TypePost, "account %s: clearing drink free day on %s: %v", accountID, date, err)
		}
	}

	drinkID := req.DrinkID
	if req.Abv != nil {
		if def, ok := acc.Catalog().DefaultAbv(req.DrinkID); ok && math.Abs(def-*req.Abv) > abvTolerance {
			drinkID, err = m.createCustomDrink(ctx, acc, req.DrinkID, req.Title, *req.Abv)
			if err != nil {
				return err
			}
		}
	}

	detail, err := m.fetchDay(ctx, acc, date)
	if err != nil {
		return err
	}
	if _, exists := detail.Entry(drinkID, req.MeasureID); exists {
		for i := 0; i < quantity; i++ {
			body := map[string]any{
				"drinkId":            drinkID,
				"measureId":          req.MeasureID,
				"quantityAdjustment": 1,
			}
			if _, err := acc.Executor().Call(ctx, http.MethodPost, upstream.EndpointActivity+"/"+date, nil, body); err != nil {
				return err
			}
		}
	} else {
		body := map[string]any{
			"drinkId":   drinkID,
			"measureId": req.MeasureID,
			"quantity":  quantity,
		}
		if _, err := acc.Executor().Call(ctx, http.MethodPut, upstream.EndpointActivity+"/"+date, nil, body); err != nil {
			return err
		}
	}

	m.logger.Infof(providers.TypePost, "account %s: logged %dx %s on %s", accountID, quantity, drinkID, date)
	m.poller.TriggerRefresh(accountID)
	return nil
}

// createCustomDrink registers a variant of the base drink with the
// requested strength and returns its id. The account catalog is updated
// so subsequent adds reuse the variant instead of creating another.
func (m *MutatorService) createCustomDrink(ctx context.Context, acc *Account, baseID, title string, abv float64) (string, error) {
	if title == "" {
		title = fmt.Sprintf("Custom drink (%.1f%%)", abv)
		if base, ok := acc.Catalog().DrinkByID(baseID); ok {
			title = fmt.Sprintf("%s (%.1f%%)", base.Title, abv)
		}
	}
	body := map[string]any{
		"derivedDrinkId": baseID,
		"title":          title,
		"abv":            abv,
	}
	raw, err := acc.Executor().Call(ctx, http.MethodPost, upstream.EndpointDrinksCustom, nil, body)
	if err != nil {
		return "", err
	}
	var created struct {
		DrinkID string `json:"drinkId"`
	}
	if err := json.Unmarshal(raw, &created); err != nil || created.DrinkID == "" {
		return "", upstream.ErrMalformedResponse
	}
	acc.SetCatalog(acc.Catalog().WithCustom(models.Drink{
		DrinkID:        created.DrinkID,
		Title:          title,
		Abv:            abv,
		DerivedDrinkID: baseID,
	}))
	m.logger.Infof(providers.TypePost, "account %s: created custom drink %s (%s at %.1f%%)", acc.ID, created.DrinkID, title, abv)
	return created.DrinkID, nil
}

// DeleteDrink removes one logged entry and returns it as it stood
// before deletion. No delete request is sent when the day has no
// matching entry.
func (m *MutatorService) DeleteDrink(ctx context.Context, accountID, date, drinkID, measureID string) (models.ActivityEntry, error) {
	acc, err := m.account(accountID)
	if err != nil {
		return models.ActivityEntry{}, err
	}
	date, err = m.resolveDate(date)
	if err != nil {
		return models.ActivityEntry{}, err
	}

	acc.Lock()
	defer acc.Unlock()

	detail, err := m.fetchDay(ctx, acc, date)
	if err != nil {
		return models.ActivityEntry{}, err
	}
	entry, ok := detail.Entry(drinkID, measureID)
	if !ok || entry.Quantity == 0 {
		return models.ActivityEntry{}, ErrDrinkNotFound
	}
	if _, err := acc.Executor().Call(ctx, http.MethodDelete, upstream.EndpointActivity+"/"+date+"/"+drinkID+"/"+measureID, nil, nil); err != nil {
		return models.ActivityEntry{}, err
	}

	m.logger.Infof(providers.TypePost, "account %s: removed %s on %s", accountID, drinkID, date)
	m.poller.TriggerRefresh(accountID)
	return entry, nil
}

// MarkDrinkFreeDay sets the drink free day marker. With removeExisting
// the day's entries are deleted first, one by one with pacing, then the
// day is re-fetched to confirm it really is empty; the marker is only
// written when nothing remains.
func (m *MutatorService) MarkDrinkFreeDay(ctx context.Context, accountID, date string, removeExisting bool) error {
	acc, err := m.account(accountID)
	if err != nil {
		return err
	}
	date, err = m.resolveDate(date)
	if err != nil {
		return err
	}

	acc.Lock()
	defer acc.Unlock()

	if removeExisting {
		detail, err := m.fetchDay(ctx, acc, date)
		if err != nil {
			return err
		}
		if len(detail.Entries) > 0 {
			for i, entry := range detail.Entries {
				if i > 0 {
					m.sleep(interDeleteDelay)
				}
				if _, err := acc.Executor().Call(ctx, http.MethodDelete, upstream.EndpointActivity+"/"+date+"/"+entry.DrinkID+"/"+entry.MeasureID, nil, nil); err != nil {
					return err
				}
			}
			m.sleep(verifyDelay)
			remaining, err := m.fetchDay(ctx, acc, date)
			if err != nil {
				return err
			}
			if len(remaining.Entries) > 0 {
				m.logger.Warnf(providers.TypePost, "account %s: %d drinks remain on %s, not marking drink free", accountID, len(remaining.Entries), date)
				return ErrDrinksStillPresent
			}
		}
	}

	if _, err := acc.Executor().Call(ctx, http.MethodPut, upstream.EndpointActivity+"/"+date+"/drinkfreeday", nil, nil); err != nil {
		return err
	}

	m.logger.Infof(providers.TypePost, "account %s: marked %s drink free", accountID, date)
	m.poller.TriggerRefresh(accountID)
	return nil
}

// UnmarkDrinkFreeDay clears the drink free day marker.
func (m *MutatorService) UnmarkDrinkFreeDay(ctx context.Context, accountID, date string) error {
	acc, err := m.account(accountID)
	if err != nil {
		return err
	}
	date, err = m.resolveDate(date)
	if err != nil {
		return err
	}

	acc.Lock()
	defer acc.Unlock()

	if _, err := acc.Executor().Call(ctx, http.MethodDelete, upstream.EndpointActivity+"/"+date+"/drinkfreeday", nil, nil); err != nil {
		return err
	}
	m.poller.TriggerRefresh(accountID)
	return nil
}

// LogSleepQuality records sleep quality for a day. The upstream only
// accepts poor, average and great.
func (m *MutatorService) LogSleepQuality(ctx context.Context, accountID, date, quality string) error {
	if !sleepQualities[quality] {
		return ErrInvalidQuality
	}
	acc, err := m.account(accountID)
	if err != nil {
		return err
	}
	date, err = m.resolveDate(date)
	if err != nil {
		return err
	}

	acc.Lock()
	defer acc.Unlock()

	body := map[string]string{"quality": quality}
	if _, err := acc.Executor().Call(ctx, http.MethodPut, upstream.EndpointActivity+"/"+date+"/sleep", nil, body); err != nil {
		return err
	}
	m.logger.Infof(providers.TypePost, "account %s: sleep quality %s on %s", accountID, quality, date)
	m.poller.TriggerRefresh(accountID)
	return nil
}

func (m *MutatorService) fetchDay(ctx context.Context, acc *Account, date string) (*models.ActivityDetail, error) {
	raw, err := acc.Executor().Get(ctx, upstream.EndpointActivity+"/"+date, nil)
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return &models.ActivityDetail{Date: date}, nil
	}
	return models.ParseActivityDetail(date, raw)
}
