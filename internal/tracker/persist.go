package tracker

import (
	"drinkaware/internal/models"
	"drinkaware/internal/providers"
	"drinkaware/internal/services"
	"drinkaware/internal/structures"
	"drinkaware/internal/tracker/interfaces"
	"drinkaware/internal/upstream"
)

// NewPersistFunc builds the hook the token refresher calls after every
// successful refresh. It stores the new credentials on the account and
// writes the state file immediately, so a rotated refresh token
// survives a crash between scheduled saves.
func NewPersistFunc(registry services.RegistryServiceInterface, stateManager interfaces.StateManagerInterface, conf *structures.Config, logger providers.Logger) upstream.PersistFunc {
	return func(accountID string, creds *models.AccountCredentials) {
		if acc, ok := registry.Get(accountID); ok {
			acc.SetCredentials(creds)
		}
		if err := stateManager.SaveToFile(conf.Persistence.FilePath); err != nil {
			logger.Errorf(providers.TypeApp, "failed to persist refreshed credentials: %v", err)
		}
	}
}
