package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/johnhkchen/solar-sim/internal/exposure"
	"github.com/johnhkchen/solar-sim/internal/solar"
)

// TerrainProvider fetches terrain and building shading from an HTTP service.
// The service is queried with lat, lng and date (YYYY-MM-DD) and answers
// {"shadowHours": h} or {"fraction": f}. 404 means no data for the point.
type TerrainProvider struct {
	name    string
	baseURL string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
	log     *zap.Logger
}

// NewTerrainProvider builds a provider for baseURL using client.
func NewTerrainProvider(baseURL string, client *http.Client, backoff BackoffConfig, log *zap.Logger) (*TerrainProvider, error) {
	u, err := url.Parse(baseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid base exposure url %q", baseURL)
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &TerrainProvider{
		name:    "terrain",
		baseURL: baseURL,
		httpCfg: HTTPClientConfig{
			Client:  client,
			Backoff: backoff,
		},
		circuit: newCircuitBreaker("terrain", 2*time.Minute),
		log:     log,
	}, nil
}

func (p *TerrainProvider) Name() string {
	return p.name
}

// BaseExposure implements exposure.BaseExposureSource.
func (p *TerrainProvider) BaseExposure(ctx context.Context, c solar.Coordinates, date time.Time) (exposure.BaseExposure, error) {
	buildRequest := func(ctx context.Context) (*http.Request, error) {
		values := url.Values{}
		values.Set("lat", strconv.FormatFloat(c.Latitude, 'f', 6, 64))
		values.Set("lng", strconv.FormatFloat(c.Longitude, 'f', 6, 64))
		values.Set("date", date.UTC().Format(time.DateOnly))

		u := fmt.Sprintf("%s?%s", p.baseURL, values.Encode())
		return http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	}

	resp, err := doRequestWithResilience(ctx, p.httpCfg, p.circuit, buildRequest)
	if err != nil {
		return exposure.BaseExposure{}, fmt.Errorf("%s: %w", p.name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return exposure.BaseExposure{}, fmt.Errorf("%s: %w for %s", p.name, exposure.ErrBaseExposureUnavailable, c)
	}

	var payload exposure.BaseExposure
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return exposure.BaseExposure{}, fmt.Errorf("%s: decode response: %w", p.name, err)
	}
	if payload.ShadowHours == nil && payload.ExposureFraction == nil {
		return exposure.BaseExposure{}, fmt.Errorf("%s: %w: empty response", p.name, exposure.ErrBaseExposureUnavailable)
	}

	p.log.Debug("base exposure fetched",
		zap.Stringer("coordinates", c),
		zap.String("date", date.Format(time.DateOnly)),
	)
	return payload, nil
}
