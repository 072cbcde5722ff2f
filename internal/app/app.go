// Package app holds the application state built once at startup: the
// provider clients, the document store with its retrieval index and the
// answer composer. Everything here is read-only after setup and shared by
// the terminal UI, the CLI and the HTTP API.
package app

import (
	"context"
	"fmt"

	"agriinsight/internal/config"
	"agriinsight/internal/datagov"
	"agriinsight/internal/docstore"
	"agriinsight/internal/domain"
	"agriinsight/internal/insight"
	"agriinsight/internal/llm"
	"agriinsight/internal/metrics"
	"agriinsight/internal/retrieval"
	"agriinsight/internal/service"
	"agriinsight/internal/weather"
)

const assistantDisabled = "⚠️ Assistant is not configured."

// App is the explicit application state.
type App struct {
	cfg      *config.AppConfig
	dataset  domain.DatasetFetcher
	weather  *weather.Client
	index    *retrieval.Index
	composer *service.Composer
}

// Option customises App construction.
type Option func(*App)

// WithDatasetFetcher replaces the catalog client.
func WithDatasetFetcher(f domain.DatasetFetcher) Option {
	return func(a *App) { a.dataset = f }
}

// WithWeatherClient replaces the rainfall client.
func WithWeatherClient(c *weather.Client) Option {
	return func(a *App) { a.weather = c }
}

// New builds the provider clients from cfg.
func New(cfg *config.AppConfig, opts ...Option) *App {
	a := &App{cfg: cfg}
	for _, opt := range opts {
		opt(a)
	}
	if a.dataset == nil {
		a.dataset = datagov.NewClient(datagov.Config{
			BaseURL:           cfg.DataGov.BaseURL,
			ResourceID:        cfg.DataGov.ResourceID,
			APIKey:            config.APIKey(cfg.DataGov.APIKeyEnv),
			Timeout:           config.Timeout(cfg.DataGov.TimeoutSecs),
			RequestsPerSecond: cfg.HTTP.RequestsPerSecond,
			Burst:             cfg.HTTP.Burst,
		})
	}
	if a.weather == nil {
		a.weather = weather.NewClient(weather.Config{
			BaseURL:           cfg.Weather.BaseURL,
			Timeout:           config.Timeout(cfg.Weather.TimeoutSecs),
			RequestsPerSecond: cfg.HTTP.RequestsPerSecond,
			Burst:             cfg.HTTP.Burst,
		}, weather.DefaultRegistry())
	}
	return a
}

// EnableAssistant builds the document store and retrieval index and
// connects the language model. It must run before the App is shared.
// A missing model API key is an error.
func (a *App) EnableAssistant(ctx context.Context) error {
	key := config.APIKey(a.cfg.LLM.APIKeyEnv)
	if key == "" {
		return fmt.Errorf("%w: set %s", llm.ErrMissingAPIKey, a.cfg.LLM.APIKeyEnv)
	}
	client, err := llm.NewClient(llm.Config{
		BaseURL:     a.cfg.LLM.BaseURL,
		APIKey:      key,
		Model:       a.cfg.LLM.Model,
		Temperature: a.cfg.LLM.Temperature,
		MaxTokens:   a.cfg.LLM.MaxTokens,
		Timeout:     config.Timeout(a.cfg.LLM.TimeoutSecs),
	})
	if err != nil {
		return err
	}
	return a.EnableAssistantWith(ctx, client)
}

// EnableAssistantWith is EnableAssistant with a caller-supplied completer.
func (a *App) EnableAssistantWith(ctx context.Context, completer domain.Completer) error {
	docs := docstore.Build(ctx, a.dataset, a.cfg.Retrieval.CorpusSize)
	index, err := retrieval.Build(docs)
	if err != nil {
		return fmt.Errorf("build retrieval index: %w", err)
	}
	metrics.DocumentStoreSize.Set(float64(index.Len()))
	a.index = index
	a.composer = service.NewComposer(index, completer, a.cfg.Retrieval.TopK)
	return nil
}

// Ask answers a free-form question with retrieved context.
func (a *App) Ask(ctx context.Context, query string) string {
	if a.composer == nil {
		return assistantDisabled
	}
	return a.composer.Ask(ctx, query)
}

// Documents returns the document store; nil before EnableAssistant.
func (a *App) Documents() []string {
	if a.index == nil {
		return nil
	}
	return a.index.Documents()
}

// Records fetches the crop dataset.
func (a *App) Records(ctx context.Context) domain.Table {
	return a.dataset.FetchDataset(ctx, a.cfg.DataGov.Limit)
}

// Insight answers a deterministic data question over table.
func (a *App) Insight(query string, table domain.Table) string {
	metrics.InsightIntents.WithLabelValues(string(insight.Classify(query))).Inc()
	return insight.Interpret(query, table)
}

// Rainfall fetches a days-long series for a registry location.
func (a *App) Rainfall(ctx context.Context, name string, days int) (*domain.RainfallSeries, error) {
	return a.weather.FetchRainfall(ctx, weather.ByName(name), days)
}

// RainfallAt fetches a days-long series for explicit coordinates.
func (a *App) RainfallAt(ctx context.Context, lat, lon float64, days int) (*domain.RainfallSeries, error) {
	return a.weather.FetchRainfall(ctx, weather.ByCoordinates(lat, lon), days)
}

// LatestRainfall returns the newest reading for a location.
func (a *App) LatestRainfall(ctx context.Context, name string) (*domain.RainfallReading, error) {
	return a.weather.LatestRainfall(ctx, name)
}

// CompareRainfall averages rainfall per location.
func (a *App) CompareRainfall(ctx context.Context, names []string, days int) []weather.Comparison {
	return a.weather.CompareRainfall(ctx, names, days)
}

// States lists the locations supported by the rainfall views.
func (a *App) States() []string {
	return a.weather.Registry().Names()
}
