package tracker

import (
	"context"
	"sync"

	"github.com/roylee0704/gron"

	"drinkaware/internal/providers"
	"drinkaware/internal/services"
	"drinkaware/internal/structures"
	"drinkaware/internal/tracker/interfaces"
)

// Scheduler drives the two periodic jobs: the poll cycle over all
// accounts and the state save. opsMu keeps Restore/Persist from racing
// a scheduled save.
type Scheduler struct {
	conf         *structures.Config
	logger       providers.Logger
	poller       *services.PollerService
	stateManager interfaces.StateManagerInterface
	cron         *gron.Cron
	opsMu        sync.Mutex
}

func NewScheduler(conf *structures.Config, logger providers.Logger, poller *services.PollerService, stateManager interfaces.StateManagerInterface) interfaces.SchedulerInterface {
	return &Scheduler{
		conf:         conf,
		logger:       logger,
		poller:       poller,
		stateManager: stateManager,
		cron:         gron.New(),
	}
}

func (s *Scheduler) Init() {
	s.cron.AddFunc(gron.Every(s.conf.Polling.Interval), func() {
		s.poller.RefreshAll(context.Background())
	})
	s.cron.AddFunc(gron.Every(s.conf.Persistence.SaveInterval), func() {
		s.Persist()
	})
	s.cron.Start()
	s.logger.Infof(providers.TypeApp, "scheduler started: poll every %s, save every %s", s.conf.Polling.Interval, s.conf.Persistence.SaveInterval)

	// First cycle right away so the API is not empty until the first tick.
	go s.poller.RefreshAll(context.Background())
}

func (s *Scheduler) Restore() {
	s.opsMu.Lock()
	defer s.opsMu.Unlock()
	if err := s.stateManager.LoadFromFile(s.conf.Persistence.FilePath); err != nil {
		s.logger.Errorf(providers.TypeApp, "failed to restore state: %v", err)
	}
}

func (s *Scheduler) Persist() {
	s.opsMu.Lock()
	defer s.opsMu.Unlock()
	if err := s.stateManager.SaveToFile(s.conf.Persistence.FilePath); err != nil {
		s.logger.Errorf(providers.TypeApp, "failed to persist state: %v", err)
	}
}

func (s *Scheduler) Stop() {
	s.cron.Stop()
}
