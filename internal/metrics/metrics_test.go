package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
)

func TestMiddlewareAndHandler(t *testing.T) {
	app := fiber.New()
	app.Use(Middleware())
	app.Get("/ping", func(c *fiber.Ctx) error { return c.SendString("pong") })
	app.Get("/metrics", Handler())

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/ping", nil), -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/metrics", nil), -1)
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Contains(t, string(body), `solarsim_http_requests_total{method="GET",path="/ping",status="200"} 1`)
	require.Contains(t, string(body), `solarsim_http_request_duration_seconds_bucket{method="GET",path="/ping",le="0.0005"}`)
}

func TestLatencyBuckets(t *testing.T) {
	require.Len(t, latencyBuckets, 8)
	require.InDelta(t, 0.0005, latencyBuckets[0], 1e-12)
	require.InDelta(t, 8.192, latencyBuckets[7], 1e-9)
}
