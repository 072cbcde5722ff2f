package cli

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agriinsight/internal/config"
	"agriinsight/internal/domain"
	"agriinsight/internal/weather"
)

type fakeBackend struct {
	enableErr error
	enabled   bool
	asked     string
	insight   domain.Table
	days      int
	compared  []string
	lat, lon  float64
}

func (f *fakeBackend) EnableAssistant(context.Context) error {
	f.enabled = f.enableErr == nil
	return f.enableErr
}

func (f *fakeBackend) Ask(_ context.Context, q string) string {
	f.asked = q
	return "Rice grows in Kerala."
}

func (f *fakeBackend) Records(context.Context) domain.Table {
	return domain.Table{
		Columns: []string{"state", "commodity", "production"},
		Rows: []domain.Record{
			{"state": "Kerala", "commodity": "Rice", "production": "10"},
			{"state": "Punjab", "commodity": "Wheat", "production": "30"},
			{"state": "Punjab", "commodity": "Rice", "production": "20"},
		},
	}
}

func (f *fakeBackend) Insight(q string, t domain.Table) string {
	f.insight = t
	return "insight for " + q
}

func (f *fakeBackend) Rainfall(_ context.Context, name string, days int) (*domain.RainfallSeries, error) {
	f.days = days
	if name == "Atlantis" {
		return nil, &weather.FetchError{Kind: weather.KindUnsupported, Location: name}
	}
	return series(name), nil
}

func (f *fakeBackend) RainfallAt(_ context.Context, lat, lon float64, days int) (*domain.RainfallSeries, error) {
	f.lat, f.lon, f.days = lat, lon, days
	return series("12.5,77"), nil
}

func (f *fakeBackend) LatestRainfall(_ context.Context, name string) (*domain.RainfallReading, error) {
	v := 4.25
	return &domain.RainfallReading{Location: name, Date: time.Date(2024, 7, 10, 0, 0, 0, 0, time.UTC), PrecipMM: &v}, nil
}

func (f *fakeBackend) CompareRainfall(_ context.Context, names []string, days int) []weather.Comparison {
	f.compared, f.days = names, days
	avg := 1.67
	rows := []weather.Comparison{}
	for i, n := range names {
		if i == 0 {
			rows = append(rows, weather.Comparison{Location: n, AvgMM: &avg})
		} else {
			rows = append(rows, weather.Comparison{Location: n, Error: "Unsupported state: " + n})
		}
	}
	return rows
}

func (f *fakeBackend) States() []string { return []string{"Maharashtra", "Karnataka", "Kerala", "Gujarat"} }

func series(name string) *domain.RainfallSeries {
	a, b := 2.0, 4.0
	day := time.Date(2024, 7, 9, 0, 0, 0, 0, time.UTC)
	return &domain.RainfallSeries{Location: name, Points: []domain.RainfallPoint{
		{Date: day, PrecipMM: &a},
		{Date: day.AddDate(0, 0, 1), PrecipMM: &b},
		{Date: day.AddDate(0, 0, 2)},
	}}
}

func run(t *testing.T, backend *fakeBackend, args ...string) (string, error) {
	t.Helper()
	old := newBackend
	newBackend = func(*config.AppConfig) Backend { return backend }
	t.Cleanup(func() { newBackend = old })

	buf := new(bytes.Buffer)
	root := NewRootCmd()
	root.SetOut(buf)
	root.SetErr(new(bytes.Buffer))
	root.SetArgs(append([]string{"--config", filepath.Join(t.TempDir(), "missing.yaml")}, args...))
	err := root.ExecuteContext(context.Background())
	return buf.String(), err
}

func TestRootCmd_HasSubcommands(t *testing.T) {
	root := NewRootCmd()
	for _, name := range []string{"tui", "ask", "data", "insight", "rainfall", "states", "serve"} {
		cmd, _, err := root.Find([]string{name})
		require.NoError(t, err, name)
		assert.Equal(t, name, cmd.Name())
	}
}

func TestAskCmd(t *testing.T) {
	b := &fakeBackend{}
	out, err := run(t, b, "ask", "where", "is", "rice", "grown?")
	require.NoError(t, err)
	assert.True(t, b.enabled)
	assert.Equal(t, "where is rice grown?", b.asked)
	assert.Equal(t, "Rice grows in Kerala.\n", out)
}

func TestAskCmd_Errors(t *testing.T) {
	_, err := run(t, &fakeBackend{}, "ask")
	assert.Error(t, err)

	_, err = run(t, &fakeBackend{}, "ask", "  ")
	assert.ErrorIs(t, err, errNoQuestion)

	_, err = run(t, &fakeBackend{enableErr: errors.New("missing language model API key")}, "ask", "rice")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "assistant unavailable")
}

func TestDataCmd(t *testing.T) {
	out, err := run(t, &fakeBackend{}, "data", "--state", "Punjab", "--limit", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "Records: 3 (filtered: 2)")
	assert.Contains(t, out, "Wheat")
	assert.NotContains(t, out, "Kerala")
}

func TestDataCmd_JSON(t *testing.T) {
	out, err := run(t, &fakeBackend{}, "data", "--crop", "Rice", "--json", "--limit=-1")
	require.NoError(t, err)
	assert.Contains(t, out, `"commodity": "Rice"`)
	assert.NotContains(t, out, "Wheat")
}

func TestInsightCmd(t *testing.T) {
	b := &fakeBackend{}
	out, err := run(t, b, "insight", "highest", "production", "--crop", "Rice,Wheat", "--state", "Punjab")
	require.NoError(t, err)
	assert.Equal(t, "insight for highest production\n", out)
	assert.Equal(t, 2, b.insight.Len())
}

func TestRainfallSeriesCmd(t *testing.T) {
	b := &fakeBackend{}
	out, err := run(t, b, "rainfall", "series", "Kerala", "--days", "90")
	require.NoError(t, err)
	assert.Equal(t, 90, b.days)
	assert.Contains(t, out, "Daily rainfall last 90 days: Kerala")
	assert.Contains(t, out, "▄█ ")
	assert.Contains(t, out, "Mean: 3.00 mm")
	assert.Contains(t, out, "2024-07-11  n/a")
}

func TestRainfallSeriesCmd_Coordinates(t *testing.T) {
	b := &fakeBackend{}
	_, err := run(t, b, "rainfall", "series", "--lat", "12.5", "--lon", "77")
	require.NoError(t, err)
	assert.Equal(t, 12.5, b.lat)
	assert.Equal(t, 365, b.days)

	_, err = run(t, b, "rainfall", "series", "Kerala", "--lat", "1")
	assert.Error(t, err)
	_, err = run(t, b, "rainfall", "series")
	assert.Error(t, err)
}

func TestRainfallSeriesCmd_Unsupported(t *testing.T) {
	_, err := run(t, &fakeBackend{}, "rainfall", "series", "Atlantis")
	require.Error(t, err)
	assert.True(t, weather.IsKind(err, weather.KindUnsupported))
	assert.Contains(t, err.Error(), "Unsupported state: Atlantis")
}

func TestRainfallLatestCmd(t *testing.T) {
	out, err := run(t, &fakeBackend{}, "rainfall", "latest", "Punjab")
	require.NoError(t, err)
	assert.Equal(t, "Punjab latest rainfall (mm): 4.25 (2024-07-10)\n", out)
}

func TestRainfallCompareCmd(t *testing.T) {
	b := &fakeBackend{}
	out, err := run(t, b, "rainfall", "compare")
	require.NoError(t, err)
	assert.Equal(t, []string{"Maharashtra", "Karnataka", "Kerala"}, b.compared)
	assert.Equal(t, 30, b.days)
	assert.Contains(t, out, "Maharashtra  1.67")
	assert.Contains(t, out, "Unsupported state: Karnataka")

	_, err = run(t, b, "rainfall", "compare", "Goa", "--days", "60")
	require.NoError(t, err)
	assert.Equal(t, []string{"Goa"}, b.compared)
	assert.Equal(t, 60, b.days)
}

func TestStatesCmd(t *testing.T) {
	out, err := run(t, &fakeBackend{}, "states")
	require.NoError(t, err)
	assert.Equal(t, "Maharashtra\nKarnataka\nKerala\nGujarat\n", out)
}
