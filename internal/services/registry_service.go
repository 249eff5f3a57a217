package services

import (
	"sync"
	"sync/atomic"

	"drinkaware/internal/models"
	"drinkaware/internal/providers"
	"drinkaware/internal/structures"
	"drinkaware/internal/upstream"
)

// Account is the runtime state for one configured account. Credentials,
// snapshot and catalog are swapped atomically as whole values; the
// mutex serializes poll cycles and write operations against each other.
type Account struct {
	ID    string
	Name  string
	Email string

	mu       sync.Mutex
	creds    atomic.Pointer[models.AccountCredentials]
	snapshot atomic.Pointer[models.AccountSnapshot]
	catalog  atomic.Pointer[models.DrinkCatalog]
	executor *upstream.Executor
}

// Lock serializes poll cycles and mutations for this account.
func (a *Account) Lock()   { a.mu.Lock() }
func (a *Account) Unlock() { a.mu.Unlock() }

func (a *Account) Credentials() *models.AccountCredentials {
	return a.creds.Load()
}

func (a *Account) SetCredentials(c *models.AccountCredentials) {
	a.creds.Store(c)
}

// Snapshot returns the last published snapshot, possibly nil before the
// first successful cycle. Callers must not mutate it.
func (a *Account) Snapshot() *models.AccountSnapshot {
	return a.snapshot.Load()
}

func (a *Account) SetSnapshot(s *models.AccountSnapshot) {
	a.snapshot.Store(s)
}

func (a *Account) Catalog() *models.DrinkCatalog {
	return a.catalog.Load()
}

func (a *Account) SetCatalog(c *models.DrinkCatalog) {
	a.catalog.Store(c)
}

// Executor is this account's request executor, bound to its current
// access token.
func (a *Account) Executor() *upstream.Executor {
	return a.executor
}

type RegistryServiceInterface interface {
	Get(id string) (*Account, bool)
	List() []*Account
	RestoreState(state *models.StateFile)
	ExportState() *models.StateFile
}

// RegistryService owns the configured accounts. The set is fixed at
// startup, only per-account state changes afterwards.
type RegistryService struct {
	accounts map[string]*Account
	order    []string
	logger   providers.Logger
}

func NewRegistryService(conf *structures.Config, logger providers.Logger, metrics providers.MetricsProviderInterface) RegistryServiceInterface {
	upstream.ApplyConfigDefaults(&conf.API)
	r := &RegistryService{
		accounts: make(map[string]*Account, len(conf.Accounts)),
		logger:   logger,
	}
	for _, ac := range conf.Accounts {
		acc := &Account{ID: ac.ID, Name: ac.Name, Email: ac.Email}
		acc.SetCredentials(&models.AccountCredentials{
			AccessToken:  ac.AccessToken,
			RefreshToken: ac.RefreshToken,
			TokenType:    "Bearer",
		})
		acc.executor = upstream.NewExecutor(&conf.API, acc.accessToken, logger, metrics)
		r.accounts[ac.ID] = acc
		r.order = append(r.order, ac.ID)
	}
	return r
}

// accessToken feeds the executor so a mid-cycle refresh is picked up by
// the very next request.
func (a *Account) accessToken() string {
	if c := a.creds.Load(); c != nil {
		return c.AccessToken
	}
	return ""
}

func (r *RegistryService) Get(id string) (*Account, bool) {
	acc, ok := r.accounts[id]
	return acc, ok
}

// List returns accounts in configuration order.
func (r *RegistryService) List() []*Account {
	out := make([]*Account, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.accounts[id])
	}
	return out
}

// RestoreState applies persisted state on top of the configured
// accounts. Persisted credentials win over config ones because they are
// newer; accounts in the state file that are no longer configured are
// dropped.
func (r *RegistryService) RestoreState(state *models.StateFile) {
	if state == nil {
		return
	}
	for id, st := range state.Accounts {
		acc, ok := r.accounts[id]
		if !ok {
			r.logger.Warnf(providers.TypeApp, "dropping persisted state for unconfigured account %s", id)
			continue
		}
		if st.Credentials != nil && st.Credentials.AccessToken != "" {
			acc.SetCredentials(st.Credentials)
		}
		if st.Snapshot != nil {
			acc.SetSnapshot(st.Snapshot)
		}
		if st.Catalog != nil {
			acc.SetCatalog(st.Catalog)
		}
	}
}

func (r *RegistryService) ExportState() *models.StateFile {
	state := &models.StateFile{
		Version:  models.StateVersion,
		Accounts: make(map[string]*models.AccountState, len(r.accounts)),
	}
	for id, acc := range r.accounts {
		state.Accounts[id] = &models.AccountState{
			Credentials: acc.Credentials(),
			Snapshot:    acc.Snapshot(),
			Catalog:     acc.Catalog(),
		}
	}
	return state
}
