package internal

import (
	"net/http"

	"drinkaware/internal/controllers"
	"drinkaware/internal/providers"
)

func InitRoutes(api *controllers.ApiController, health *controllers.HealthController) providers.RouterProviderInterface {
	router := providers.NewRouterProvider()

	router.Get("/accounts", http.HandlerFunc(api.GetAccounts))
	router.Get("/account", http.HandlerFunc(api.GetSnapshot))
	router.Get("/fields", http.HandlerFunc(api.GetFields))
	router.Post("/refresh", http.HandlerFunc(api.Refresh))

	router.Post("/drinks", http.HandlerFunc(api.AddDrink))
	router.Delete("/drinks", http.HandlerFunc(api.DeleteDrink))
	router.Put("/drinkfreeday", http.HandlerFunc(api.MarkDrinkFreeDay))
	router.Delete("/drinkfreeday", http.HandlerFunc(api.UnmarkDrinkFreeDay))
	router.Put("/sleep", http.HandlerFunc(api.LogSleepQuality))

	router.Get("/health", http.HandlerFunc(health.Health))

	return router
}
