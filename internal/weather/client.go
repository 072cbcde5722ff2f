// Package weather fetches daily precipitation series from the Open-Meteo
// forecast API for locations in a static registry.
package weather

import (
	"context"
	"fmt"
	"math"
	"net/url"
	"strconv"
	"time"

	"agriinsight/internal/domain"
	"agriinsight/internal/httpclient"
)

const isoDate = "2006-01-02"

// Target selects a location by registry name or by explicit coordinates.
type Target struct {
	Name   string
	coords *domain.Location
}

// ByName targets a registry location.
func ByName(name string) Target { return Target{Name: name} }

// ByCoordinates targets an arbitrary point.
func ByCoordinates(lat, lon float64) Target {
	label := strconv.FormatFloat(lat, 'f', -1, 64) + "," + strconv.FormatFloat(lon, 'f', -1, 64)
	return Target{Name: label, coords: &domain.Location{Name: label, Latitude: lat, Longitude: lon}}
}

// Comparison is one row of a multi-location average.
type Comparison struct {
	Location string   `json:"state"`
	AvgMM    *float64 `json:"avg_rain_mm"`
	Error    string   `json:"error,omitempty"`
}

// Config configures the weather client.
type Config struct {
	BaseURL           string
	Timeout           time.Duration
	RequestsPerSecond float64
	Burst             int
}

// Client resolves locations and queries the forecast endpoint.
type Client struct {
	endpoint string
	registry *Registry
	http     *httpclient.Client
	now      func() time.Time
}

// Option customises a Client.
type Option func(*Client)

// WithClock replaces the wall clock used to compute date ranges.
func WithClock(now func() time.Time) Option {
	return func(c *Client) { c.now = now }
}

// NewClient creates a weather client over registry.
func NewClient(cfg Config, registry *Registry, opts ...Option) *Client {
	endpoint := cfg.BaseURL
	if endpoint == "" {
		endpoint = "https://api.open-meteo.com/v1/forecast"
	}
	if registry == nil {
		registry = DefaultRegistry()
	}
	c := &Client{
		endpoint: endpoint,
		registry: registry,
		http: httpclient.New(httpclient.Config{
			Provider:          "open-meteo",
			Timeout:           cfg.Timeout,
			RequestsPerSecond: cfg.RequestsPerSecond,
			Burst:             cfg.Burst,
		}),
		now: time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Registry returns the location registry used by the client.
func (c *Client) Registry() *Registry { return c.registry }

type forecastResponse struct {
	Daily struct {
		Time             []string   `json:"time"`
		PrecipitationSum []*float64 `json:"precipitation_sum"`
	} `json:"daily"`
}

// FetchRainfall returns the daily precipitation for [today-days, today].
// Exactly one of the results is non-nil; errors are *FetchError.
func (c *Client) FetchRainfall(ctx context.Context, target Target, days int) (*domain.RainfallSeries, error) {
	loc, err := c.resolve(target)
	if err != nil {
		return nil, err
	}

	end := c.now()
	start := end.AddDate(0, 0, -days)
	params := url.Values{}
	params.Set("latitude", strconv.FormatFloat(loc.Latitude, 'f', -1, 64))
	params.Set("longitude", strconv.FormatFloat(loc.Longitude, 'f', -1, 64))
	params.Set("start_date", start.Format(isoDate))
	params.Set("end_date", end.Format(isoDate))
	params.Set("daily", "precipitation_sum")
	params.Set("timezone", "auto")

	var resp forecastResponse
	if err := c.http.GetJSON(ctx, c.endpoint, params, &resp); err != nil {
		return nil, &FetchError{Kind: KindTransport, Location: loc.Name, Err: err}
	}
	dates, precip := resp.Daily.Time, resp.Daily.PrecipitationSum
	if len(dates) == 0 || len(precip) == 0 {
		return nil, &FetchError{Kind: KindNoData, Location: loc.Name}
	}
	if len(dates) != len(precip) {
		return nil, &FetchError{Kind: KindTransport, Location: loc.Name,
			Err: fmt.Errorf("daily arrays differ in length: %d dates, %d values", len(dates), len(precip))}
	}

	series := &domain.RainfallSeries{Location: loc.Name, Points: make([]domain.RainfallPoint, len(dates))}
	for i, d := range dates {
		day, err := time.Parse(isoDate, d)
		if err != nil {
			return nil, &FetchError{Kind: KindTransport, Location: loc.Name, Err: err}
		}
		series.Points[i] = domain.RainfallPoint{Date: day, PrecipMM: precip[i]}
	}
	return series, nil
}

// LatestRainfall returns the last point of the 7-day series.
func (c *Client) LatestRainfall(ctx context.Context, name string) (*domain.RainfallReading, error) {
	series, err := c.FetchRainfall(ctx, ByName(name), 7)
	if err != nil {
		return nil, err
	}
	last := series.Points[len(series.Points)-1]
	return &domain.RainfallReading{Location: name, Date: last.Date, PrecipMM: last.PrecipMM}, nil
}

// CompareRainfall averages a days-long series per location. One location
// failing does not affect the others.
func (c *Client) CompareRainfall(ctx context.Context, names []string, days int) []Comparison {
	rows := make([]Comparison, 0, len(names))
	for _, name := range names {
		row := Comparison{Location: name}
		series, err := c.FetchRainfall(ctx, ByName(name), days)
		if err == nil {
			if mean, ok := series.Mean(); ok {
				avg := math.Round(mean*100) / 100
				row.AvgMM = &avg
			} else {
				err = &FetchError{Kind: KindNoData, Location: name}
			}
		}
		if err != nil {
			row.Error = err.Error()
		}
		rows = append(rows, row)
	}
	return rows
}

func (c *Client) resolve(target Target) (domain.Location, error) {
	if target.coords != nil {
		return *target.coords, nil
	}
	loc, ok := c.registry.Lookup(target.Name)
	if !ok {
		return domain.Location{}, &FetchError{Kind: KindUnsupported, Location: target.Name}
	}
	return loc, nil
}
