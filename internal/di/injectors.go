//go:build wireinject
// +build wireinject

package di

import (
	"github.com/google/wire"

	"drinkaware/internal"
	"drinkaware/internal/controllers"
	"drinkaware/internal/providers"
	"drinkaware/internal/services"
	"drinkaware/internal/structures"
	"drinkaware/internal/tracker"
	"drinkaware/internal/upstream"
)

func InitApp(flags *structures.CliFlags) (*internal.App, error) {
	wire.Build(
		providers.NewConfigProvider,
		providers.NewAPIConfigProvider,
		providers.NewLogProvider,
		providers.NewMetricsProvider,
		providers.NewInstrumentedCacheProvider,
		services.NewRegistryService,
		tracker.NewCompressor,
		tracker.NewStateManager,
		tracker.NewPersistFunc,
		upstream.NewTokenRefresher,
		services.NewPollerService,
		services.NewMutatorService,
		wire.Bind(new(services.RefreshTrigger), new(*services.PollerService)),
		controllers.NewApiController,
		controllers.NewHealthController,
		internal.InitRoutes,
		tracker.NewScheduler,
		internal.NewApp,
	)
	return nil, nil
}
