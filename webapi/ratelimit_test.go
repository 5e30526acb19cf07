package webapi_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/amirasaad/fintechflow/pkg/testutils"
	"github.com/amirasaad/fintechflow/webapi"
	webtest "github.com/amirasaad/fintechflow/webapi/testutils"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateLimit(t *testing.T) {
	cfg := testutils.TestConfig()
	cfg.RateLimit.MaxRequests = 5
	cfg.RateLimit.Window = time.Second
	app := webapi.SetupApp(testutils.NewTestApp(t, cfg).App)

	for i := range 10 {
		resp := webtest.MakeRequestWithApp(app, fiber.MethodGet, "/", "", "")
		_ = resp.Body.Close()
		if i < 5 {
			assert.Equal(t, fiber.StatusOK, resp.StatusCode, "Expected OK for request %d", i+1)
		} else {
			assert.Equal(t, fiber.StatusTooManyRequests, resp.StatusCode, "Expected Too Many Requests for request %d", i+1)
		}
	}

	// A different client behind the proxy has its own budget.
	resp := webtest.MakeRequestWithApp(app, fiber.MethodGet, "/", "", "",
		map[string]string{"X-Forwarded-For": "203.0.113.7, 10.0.0.1"})
	_ = resp.Body.Close()
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	// Wait for the rate limit window to reset
	time.Sleep(2 * time.Second)

	resp = webtest.MakeRequestWithApp(app, fiber.MethodGet, "/", "", "")
	defer resp.Body.Close() //nolint: errcheck
	assert.Equal(t, fiber.StatusOK, resp.StatusCode, "Expected OK after rate limit reset")
}

func TestHealth(t *testing.T) {
	app := webapi.SetupApp(testutils.NewTestApp(t).App)

	resp := webtest.MakeRequestWithApp(app, fiber.MethodGet, "/api/health", "", "")
	defer resp.Body.Close() //nolint: errcheck
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body webapi.HealthResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "healthy", body.Status)
	assert.WithinDuration(t, time.Now(), body.Timestamp, time.Minute)
}

func TestUnknownRouteIsProblemDetails(t *testing.T) {
	app := webapi.SetupApp(testutils.NewTestApp(t).App)

	resp := webtest.MakeRequestWithApp(app, fiber.MethodGet, "/api/nope", "", "")
	defer resp.Body.Close() //nolint: errcheck
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "application/problem+json", resp.Header.Get(fiber.HeaderContentType))
}
