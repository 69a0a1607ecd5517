// Package nexsci wraps the NASA Exoplanet Archive: the TAP sync endpoint for
// confirmed-planet rows and the alias lookup service for canonical system
// names.
package nexsci

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/starfield-labs/exonamd/internal/catalog"
	"github.com/starfield-labs/exonamd/internal/model"
)

// Client is the archive interface consumed by the pipeline.
type Client interface {
	// ConfirmedPlanets returns ps-table rows for systems with at least
	// minPlanets planets, updated strictly after since (YYYY-MM-DD; empty
	// means everything).
	ConfirmedPlanets(ctx context.Context, since string, minPlanets int) ([]model.Planet, error)
	// ResolveHost returns the canonical system name for an alias, or the
	// input unchanged when the lookup does not resolve.
	ResolveHost(ctx context.Context, hostname string) (string, error)
}

// Options configures the HTTP client.
type Options struct {
	BaseURL   string // default https://exoplanetarchive.ipac.caltech.edu
	UserAgent string
	Timeout   time.Duration
	RPS       float64 // archive-side courtesy limit
}

// HTTPClient implements Client over net/http with rate limiting.
type HTTPClient struct {
	http    *http.Client
	opts    Options
	limiter *rate.Limiter
}

// New creates an archive client.
func New(opts Options) *HTTPClient {
	if opts.BaseURL == "" {
		opts.BaseURL = "https://exoplanetarchive.ipac.caltech.edu"
	}
	if opts.Timeout == 0 {
		opts.Timeout = 120 * time.Second
	}
	if opts.RPS == 0 {
		opts.RPS = 1
	}
	return &HTTPClient{
		http:    &http.Client{Timeout: opts.Timeout},
		opts:    opts,
		limiter: rate.NewLimiter(rate.Limit(opts.RPS), 1),
	}
}

// planetColumns is the ps-table projection the engine consumes.
var planetColumns = []string{
	"hostname", "pl_name", "default_flag", "rowupdate", "sy_pnum",
	"st_rad", "st_mass",
	"pl_orbper",
	"pl_orbsmax", "pl_orbsmaxerr1", "pl_orbsmaxerr2",
	"pl_rade", "pl_radeerr1", "pl_radeerr2",
	"pl_bmasse", "pl_bmasseerr1", "pl_bmasseerr2",
	"pl_orbeccen", "pl_orbeccenerr1", "pl_orbeccenerr2",
	"pl_orbincl", "pl_orbinclerr1", "pl_orbinclerr2",
	"pl_trueobliq", "pl_trueobliqerr1", "pl_trueobliqerr2",
	"pl_ratdor", "pl_ratror",
}

func (c *HTTPClient) ConfirmedPlanets(ctx context.Context, since string, minPlanets int) ([]model.Planet, error) {
	query := fmt.Sprintf(
		"SELECT %s FROM ps WHERE sy_pnum >= %d",
		strings.Join(planetColumns, ", "), minPlanets,
	)
	if since != "" {
		query += fmt.Sprintf(" AND rowupdate > '%s'", since)
	}

	params := url.Values{}
	params.Set("query", query)
	params.Set("format", "csv")

	body, err := c.get(ctx, "/TAP/sync?"+params.Encode())
	if err != nil {
		return nil, err
	}
	defer body.Close()

	planets, err := catalog.ReadCSV(body)
	if err != nil {
		return nil, eris.Wrap(err, "nexsci: parse TAP response")
	}
	zap.L().Info("nexsci: confirmed planets fetched",
		zap.Int("rows", len(planets)),
		zap.String("since", since),
	)
	return planets, nil
}

// aliasResponse is the subset of the aliaslookup payload the client uses.
type aliasResponse struct {
	Manifest struct {
		LookupStatus string `json:"lookup_status"`
		ResolvedName string `json:"resolved_name"`
	} `json:"manifest"`
}

func (c *HTTPClient) ResolveHost(ctx context.Context, hostname string) (string, error) {
	params := url.Values{}
	params.Set("objname", hostname)

	body, err := c.get(ctx, "/cgi-bin/Lookup/nph-aliaslookup.py?"+params.Encode())
	if err != nil {
		return "", err
	}
	defer body.Close()

	var resp aliasResponse
	if err := json.NewDecoder(body).Decode(&resp); err != nil {
		return "", eris.Wrapf(err, "nexsci: decode alias lookup for %s", hostname)
	}
	if resp.Manifest.LookupStatus != "OK" || resp.Manifest.ResolvedName == "" {
		return hostname, nil
	}
	return NormalizeName(resp.Manifest.ResolvedName), nil
}

func (c *HTTPClient) get(ctx context.Context, path string) (io.ReadCloser, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "nexsci: rate limit wait")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.opts.BaseURL+path, nil)
	if err != nil {
		return nil, eris.Wrap(err, "nexsci: build request")
	}
	if c.opts.UserAgent != "" {
		req.Header.Set("User-Agent", c.opts.UserAgent)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "nexsci: request")
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, eris.Errorf("nexsci: status %d from %s", resp.StatusCode, path)
	}
	return resp.Body, nil
}
