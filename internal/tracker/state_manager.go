package tracker

import (
	"fmt"
	"os"
	"time"

	json "github.com/goccy/go-json"

	"drinkaware/internal/models"
	"drinkaware/internal/providers"
	"drinkaware/internal/services"
	"drinkaware/internal/tracker/interfaces"
)

// StateManager persists account state (credentials, snapshots,
// catalogs) across restarts so the daemon does not start blind and does
// not lose rotated refresh tokens.
type StateManager struct {
	registry   services.RegistryServiceInterface
	compressor interfaces.CompressorInterface
	logger     providers.Logger
	metrics    providers.MetricsProviderInterface
}

func NewStateManager(registry services.RegistryServiceInterface, compressor interfaces.CompressorInterface, logger providers.Logger, metrics providers.MetricsProviderInterface) interfaces.StateManagerInterface {
	return &StateManager{
		registry:   registry,
		compressor: compressor,
		logger:     logger,
		metrics:    metrics,
	}
}

// SaveToFile writes the state atomically: marshal, compress, write to a
// temp file, fsync, rename over the target.
func (m *StateManager) SaveToFile(fileName string) error {
	start := time.Now()
	data, err := json.Marshal(m.registry.ExportState())
	if err != nil {
		return fmt.Errorf("marshal state: %w", err)
	}
	compressed := m.compressor.Compress(data)

	tmp := fileName + ".tmp"
	f, err := os.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("create temp state file: %w", err)
	}
	if _, err := f.Write(compressed); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("write state: %w", err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("sync state: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, fileName); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("replace state file: %w", err)
	}

	m.metrics.ObservePersistenceDuration(time.Since(start))
	m.logger.Debugf(providers.TypeApp, "state saved to %s (%d bytes compressed)", fileName, len(compressed))
	return nil
}

// LoadFromFile restores persisted state. A missing file is not an
// error, the daemon simply starts from the configured credentials.
func (m *StateManager) LoadFromFile(fileName string) error {
	compressed, err := os.ReadFile(fileName)
	if err != nil {
		if os.IsNotExist(err) {
			m.logger.Infof(providers.TypeApp, "no state file at %s, starting fresh", fileName)
			return nil
		}
		return fmt.Errorf("read state file: %w", err)
	}
	data, err := m.compressor.Decompress(compressed)
	if err != nil {
		return fmt.Errorf("decompress state file: %w", err)
	}

	var state models.StateFile
	if err := json.Unmarshal(data, &state); err != nil {
		return fmt.Errorf("parse state file: %w", err)
	}
	if state.Version > models.StateVersion {
		return fmt.Errorf("state file version %d is newer than supported %d", state.Version, models.StateVersion)
	}

	m.registry.RestoreState(&state)
	m.logger.Infof(providers.TypeApp, "restored state for %d accounts from %s", len(state.Accounts), fileName)
	return nil
}
