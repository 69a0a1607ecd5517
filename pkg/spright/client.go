// Package spright talks to the mass-radius relation service. The engine only
// ever asks one question: given a radius and its uncertainty, what masses are
// plausible?
package spright

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"
)

// Options configures the predictor client.
type Options struct {
	BaseURL string
	Timeout time.Duration
	RPS     float64
}

// Client queries the predictor over HTTP. It satisfies the interpolator's
// Predictor interface.
type Client struct {
	http    *http.Client
	opts    Options
	limiter *rate.Limiter
}

// New creates a predictor client.
func New(opts Options) *Client {
	if opts.Timeout == 0 {
		opts.Timeout = 60 * time.Second
	}
	if opts.RPS == 0 {
		opts.RPS = 5
	}
	return &Client{
		http:    &http.Client{Timeout: opts.Timeout},
		opts:    opts,
		limiter: rate.NewLimiter(rate.Limit(opts.RPS), 1),
	}
}

type predictRequest struct {
	Radius      float64 `json:"radius"`
	RadiusSigma float64 `json:"radius_sigma"`
}

type predictResponse struct {
	Samples []float64 `json:"samples"`
}

// PredictMass returns a sample distribution of masses (Earth masses)
// conditioned on the given radius and symmetric uncertainty (Earth radii).
func (c *Client) PredictMass(ctx context.Context, radius, sigma float64) ([]float64, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "spright: rate limit wait")
	}

	payload, err := json.Marshal(predictRequest{Radius: radius, RadiusSigma: sigma})
	if err != nil {
		return nil, eris.Wrap(err, "spright: marshal request")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.opts.BaseURL+"/predict/mass", bytes.NewReader(payload))
	if err != nil {
		return nil, eris.Wrap(err, "spright: build request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "spright: request")
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("spright: status %d", resp.StatusCode)
	}

	var out predictResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, eris.Wrap(err, "spright: decode response")
	}
	if len(out.Samples) == 0 {
		return nil, eris.New("spright: empty sample distribution")
	}
	return out.Samples, nil
}
