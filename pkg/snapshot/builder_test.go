package snapshot

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lifelog-io/lifelog-go/pkg/metricstore"
)

type fakeStore struct {
	events    []*metricstore.CalendarEvent
	foodItems []*metricstore.FoodItem
	metrics   map[string][]*metricstore.MetricSample
	sleep     []*metricstore.SleepRecord
	weather   []*metricstore.WeatherSnapshot
	locations []*metricstore.LocationPing
}

func (f *fakeStore) CalendarEvents(ctx context.Context, start, end time.Time) ([]*metricstore.CalendarEvent, error) {
	return f.events, nil
}

func (f *fakeStore) FoodItems(ctx context.Context, start, end time.Time) ([]*metricstore.FoodItem, error) {
	return f.foodItems, nil
}

func (f *fakeStore) MetricSamples(ctx context.Context, name string, start, end time.Time) ([]*metricstore.MetricSample, error) {
	return f.metrics[name], nil
}

func (f *fakeStore) SleepRecords(ctx context.Context, start, end time.Time) ([]*metricstore.SleepRecord, error) {
	return f.sleep, nil
}

func (f *fakeStore) WeatherSnapshots(ctx context.Context, start, end time.Time) ([]*metricstore.WeatherSnapshot, error) {
	return f.weather, nil
}

func (f *fakeStore) LocationPings(ctx context.Context, start, end time.Time) ([]*metricstore.LocationPing, error) {
	return f.locations, nil
}

func (f *fakeStore) Close() error { return nil }

func newBuilder(store *fakeStore) *Builder {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewBuilder(store, time.UTC, logger)
}

func floatPtr(v float64) *float64 { return &v }

var (
	windowStart = time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	windowEnd   = time.Date(2024, 6, 2, 0, 0, 0, 0, time.UTC)
)

func TestBuildEmptyDay(t *testing.T) {
	b := newBuilder(&fakeStore{})

	snap, err := b.Build(context.Background(), "2024-06-01", windowStart, windowEnd)
	require.NoError(t, err)

	assert.Equal(t, "2024-06-01", snap.Date)
	assert.Empty(t, snap.CalendarEvents)
	assert.Equal(t, 0.0, snap.FoodIntake.TotalCalories)
	assert.Equal(t, 0, snap.FoodIntake.MealCount)
	assert.Empty(t, snap.HealthMetrics)
	assert.Nil(t, snap.SleepData)
	assert.Empty(t, snap.Ambiguities)
}

func TestBuildIsIdempotent(t *testing.T) {
	store := &fakeStore{
		events: []*metricstore.CalendarEvent{
			{Title: "Standup", StartTime: time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)},
		},
		foodItems: []*metricstore.FoodItem{
			{Name: "Oatmeal", Calories: floatPtr(250), MealType: "breakfast"},
		},
	}
	b := newBuilder(store)

	first, err := b.Build(context.Background(), "2024-06-01", windowStart, windowEnd)
	require.NoError(t, err)
	second, err := b.Build(context.Background(), "2024-06-01", windowStart, windowEnd)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestBuildCalendarLocations(t *testing.T) {
	store := &fakeStore{
		events: []*metricstore.CalendarEvent{
			{Title: "Standup", StartTime: time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)},
			{Title: "Lunch", StartTime: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC), Location: "Cafe Luna"},
		},
	}
	b := newBuilder(store)

	snap, err := b.Build(context.Background(), "2024-06-01", windowStart, windowEnd)
	require.NoError(t, err)

	assert.Len(t, snap.CalendarEvents, 2)
	require.Len(t, snap.CalendarLocations, 1)
	assert.Equal(t, "Cafe Luna", snap.CalendarLocations[0].Location)
	assert.Equal(t, "Lunch", snap.CalendarLocations[0].EventTitle)
}

func TestBuildFoodTotalsAndBuckets(t *testing.T) {
	store := &fakeStore{
		foodItems: []*metricstore.FoodItem{
			{Name: "Oatmeal", Calories: floatPtr(250), MealType: "breakfast"},
			{Name: "Salad", Calories: floatPtr(400), MealType: "lunch"},
			{Name: "Mystery snack", Calories: nil},
		},
	}
	b := newBuilder(store)

	snap, err := b.Build(context.Background(), "2024-06-01", windowStart, windowEnd)
	require.NoError(t, err)

	assert.Equal(t, 650.0, snap.FoodIntake.TotalCalories)
	assert.Equal(t, 3, snap.FoodIntake.MealCount)
	assert.Len(t, snap.FoodIntake.MealsByType["breakfast"], 1)
	assert.Len(t, snap.FoodIntake.MealsByType["lunch"], 1)
	// Unlabeled items land in the "unknown" bucket and contribute zero calories.
	require.Len(t, snap.FoodIntake.MealsByType["unknown"], 1)
	assert.Nil(t, snap.FoodIntake.MealsByType["unknown"][0].Calories)
}

func TestBuildMetricSingleRow(t *testing.T) {
	store := &fakeStore{
		metrics: map[string][]*metricstore.MetricSample{
			"steps": {{Name: "steps", Value: floatPtr(8200)}},
		},
	}
	b := newBuilder(store)

	snap, err := b.Build(context.Background(), "2024-06-01", windowStart, windowEnd)
	require.NoError(t, err)

	require.Contains(t, snap.HealthMetrics, "steps")
	assert.Equal(t, 8200.0, *snap.HealthMetrics["steps"].Value)
	assert.Empty(t, snap.Ambiguities)
}

func TestBuildMetricMultipleRowsTakesLatest(t *testing.T) {
	store := &fakeStore{
		metrics: map[string][]*metricstore.MetricSample{
			"steps": {
				{Name: "steps", Value: floatPtr(4000), RecordedAt: time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)},
				{Name: "steps", Value: floatPtr(9000), RecordedAt: time.Date(2024, 6, 1, 22, 0, 0, 0, time.UTC)},
			},
		},
	}
	b := newBuilder(store)

	snap, err := b.Build(context.Background(), "2024-06-01", windowStart, windowEnd)
	require.NoError(t, err)

	assert.Equal(t, 9000.0, *snap.HealthMetrics["steps"].Value)
	assert.Contains(t, snap.Ambiguities, "steps")
}

func TestBuildSleepAbsentVersusZero(t *testing.T) {
	t.Run("no record means nil", func(t *testing.T) {
		b := newBuilder(&fakeStore{})
		snap, err := b.Build(context.Background(), "2024-06-01", windowStart, windowEnd)
		require.NoError(t, err)
		assert.Nil(t, snap.SleepData)
	})

	t.Run("zero total stays a record", func(t *testing.T) {
		store := &fakeStore{
			sleep: []*metricstore.SleepRecord{{TotalHours: 0, InBedHours: 1.5}},
		}
		b := newBuilder(store)
		snap, err := b.Build(context.Background(), "2024-06-01", windowStart, windowEnd)
		require.NoError(t, err)
		require.NotNil(t, snap.SleepData)
		assert.Equal(t, 0.0, snap.SleepData.TotalHours)
		assert.Equal(t, 1.5, snap.SleepData.InBedHours)
	})
}

func TestBuildWeatherDedupByLocation(t *testing.T) {
	store := &fakeStore{
		weather: []*metricstore.WeatherSnapshot{
			{LocationName: "Boston", TemperatureC: 18, ObservedAt: time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)},
			{LocationName: "Boston", TemperatureC: 24, ObservedAt: time.Date(2024, 6, 1, 14, 0, 0, 0, time.UTC)},
			{LocationName: "Cambridge", TemperatureC: 19, ObservedAt: time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)},
		},
	}
	b := newBuilder(store)

	snap, err := b.Build(context.Background(), "2024-06-01", windowStart, windowEnd)
	require.NoError(t, err)

	require.Len(t, snap.WeatherData, 2)
	assert.Equal(t, "Boston", snap.WeatherData[0].Location)
	assert.Equal(t, 18.0, snap.WeatherData[0].TemperatureC)
}

func TestBuildLocationDedupByCityRegion(t *testing.T) {
	store := &fakeStore{
		locations: []*metricstore.LocationPing{
			{City: "Springfield", Region: "MA", RecordedAt: time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)},
			{City: "Springfield", Region: "MA", RecordedAt: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)},
			{City: "Springfield", Region: "IL", RecordedAt: time.Date(2024, 6, 1, 16, 0, 0, 0, time.UTC)},
		},
	}
	b := newBuilder(store)

	snap, err := b.Build(context.Background(), "2024-06-01", windowStart, windowEnd)
	require.NoError(t, err)

	// Same city name in two regions is two distinct places.
	require.Len(t, snap.LocationData, 2)
	assert.Equal(t, "MA", snap.LocationData[0].Region)
	assert.Equal(t, "IL", snap.LocationData[1].Region)
}

func TestBuildConvertsToLocalTimezone(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	store := &fakeStore{
		events: []*metricstore.CalendarEvent{
			{Title: "Standup", StartTime: time.Date(2024, 6, 1, 13, 0, 0, 0, time.UTC)},
		},
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	b := NewBuilder(store, loc, logger)

	snap, err := b.Build(context.Background(), "2024-06-01", windowStart, windowEnd)
	require.NoError(t, err)

	require.Len(t, snap.CalendarEvents, 1)
	assert.Equal(t, 9, snap.CalendarEvents[0].LocalStart.Hour())
	assert.Equal(t, "America/New_York", snap.CalendarEvents[0].LocalStart.Location().String())
}
