package controllers_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/raghav0014/AI-Feedback/controllers"
	"github.com/raghav0014/AI-Feedback/routes"
)

func healthCheck(t *testing.T, ctl *controllers.HealthController) map[string]interface{} {
	t.Helper()
	app := fiber.New()
	routes.SetupHealthRoutes(app, ctl)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/health", nil))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body
}

func TestHealthCheck(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	t.Run("all dependencies up", func(t *testing.T) {
		mr := miniredis.RunT(t)
		cache := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
		defer cache.Close()

		body := healthCheck(t, controllers.NewHealthController(db, cache, true))
		assert.Equal(t, "ok", body["status"])

		checks := body["checks"].(map[string]interface{})
		assert.Equal(t, true, checks["database"])
		assert.Equal(t, true, checks["cache"])
		assert.Equal(t, true, checks["ai"])
	})

	t.Run("degraded without cache", func(t *testing.T) {
		body := healthCheck(t, controllers.NewHealthController(db, nil, true))
		assert.Equal(t, "degraded", body["status"])

		checks := body["checks"].(map[string]interface{})
		assert.Equal(t, true, checks["database"])
		assert.Equal(t, false, checks["cache"])
	})

	t.Run("degraded without an AI key", func(t *testing.T) {
		mr := miniredis.RunT(t)
		cache := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
		defer cache.Close()

		body := healthCheck(t, controllers.NewHealthController(db, cache, false))
		assert.Equal(t, "degraded", body["status"])
	})
}
