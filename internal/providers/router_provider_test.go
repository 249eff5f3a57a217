package providers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRouterDispatchesByMethod(t *testing.T) {
	rp := NewRouterProvider()
	rp.Put("/drinkfreeday", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("put"))
	}))
	rp.Delete("/drinkfreeday", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("delete"))
	}))

	routes := rp.GetRoutes()
	require.Len(t, routes, 1)
	assert.Equal(t, "/drinkfreeday", routes[0].Url)

	rec := httptest.NewRecorder()
	routes[0].Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/drinkfreeday", nil))
	assert.Equal(t, "put", rec.Body.String())

	rec = httptest.NewRecorder()
	routes[0].Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/drinkfreeday", nil))
	assert.Equal(t, "delete", rec.Body.String())
}

func TestRouterRejectsUnmappedMethod(t *testing.T) {
	rp := NewRouterProvider()
	rp.Get("/accounts", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	rec := httptest.NewRecorder()
	rp.GetRoutes()[0].Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/accounts", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestRouterKeepsRegistrationOrder(t *testing.T) {
	rp := NewRouterProvider()
	rp.Get("/a", http.NotFoundHandler())
	rp.Get("/b", http.NotFoundHandler())
	rp.Post("/a", http.NotFoundHandler())

	routes := rp.GetRoutes()
	require.Len(t, routes, 2)
	assert.Equal(t, "/a", routes[0].Url)
	assert.Equal(t, "/b", routes[1].Url)
}
