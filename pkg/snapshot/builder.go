package snapshot

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/lifelog-io/lifelog-go/pkg/metricstore"
)

// TrackedMetrics are the biometric metric names the aggregator queries,
// one bounded range query each.
var TrackedMetrics = []string{
	"steps",
	"heart_rate",
	"resting_heart_rate",
	"active_energy",
	"exercise_minutes",
}

// Builder assembles daily snapshots from the metric store.
//
// Building is read-only and idempotent: calling Build twice against an
// unchanged store yields structurally identical snapshots.
type Builder struct {
	store  metricstore.Store
	loc    *time.Location
	logger *slog.Logger
}

// NewBuilder creates a snapshot builder.
//
// Parameters:
//   - store: The metric store to query
//   - loc: The configured local timezone for display timestamps
//   - logger: Structured logger for aggregation warnings
func NewBuilder(store metricstore.Store, loc *time.Location, logger *slog.Logger) *Builder {
	return &Builder{
		store:  store,
		loc:    loc,
		logger: logger,
	}
}

// categoryData collects the raw per-category query results before merging.
// Each field is written by exactly one goroutine, so no locking is needed
// beyond the errgroup join.
type categoryData struct {
	events    []*metricstore.CalendarEvent
	foodItems []*metricstore.FoodItem
	metrics   [][]*metricstore.MetricSample // indexed like TrackedMetrics
	sleep     []*metricstore.SleepRecord
	weather   []*metricstore.WeatherSnapshot
	locations []*metricstore.LocationPing
}

// Build assembles the snapshot for the given civil date and resolved UTC
// window. One range query is issued per source category; the queries are
// dispatched concurrently and all must complete before merging, so no
// partial snapshot is ever returned.
func (b *Builder) Build(ctx context.Context, date string, start, end time.Time) (*Snapshot, error) {
	data := categoryData{
		metrics: make([][]*metricstore.MetricSample, len(TrackedMetrics)),
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		events, err := b.store.CalendarEvents(gctx, start, end)
		if err != nil {
			return err
		}
		data.events = events
		return nil
	})
	g.Go(func() error {
		items, err := b.store.FoodItems(gctx, start, end)
		if err != nil {
			return err
		}
		data.foodItems = items
		return nil
	})
	for i, name := range TrackedMetrics {
		i, name := i, name
		g.Go(func() error {
			samples, err := b.store.MetricSamples(gctx, name, start, end)
			if err != nil {
				return err
			}
			data.metrics[i] = samples
			return nil
		})
	}
	g.Go(func() error {
		records, err := b.store.SleepRecords(gctx, start, end)
		if err != nil {
			return err
		}
		data.sleep = records
		return nil
	})
	g.Go(func() error {
		snapshots, err := b.store.WeatherSnapshots(gctx, start, end)
		if err != nil {
			return err
		}
		data.weather = snapshots
		return nil
	})
	g.Go(func() error {
		pings, err := b.store.LocationPings(gctx, start, end)
		if err != nil {
			return err
		}
		data.locations = pings
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	snap := &Snapshot{
		Date:              date,
		CalendarEvents:    []CalendarEvent{},
		CalendarLocations: []EventLocation{},
		HealthMetrics:     map[string]MetricValue{},
		WeatherData:       []WeatherReport{},
		LocationData:      []PlaceVisit{},
	}

	b.mergeCalendar(snap, data.events)
	b.mergeFood(snap, data.foodItems)
	b.mergeMetrics(snap, data.metrics)
	b.mergeSleep(snap, data.sleep)
	b.mergeWeather(snap, data.weather)
	b.mergeLocations(snap, data.locations)

	return snap, nil
}

// mergeCalendar converts event timestamps to local display time and
// extracts distinct non-empty event locations for context.
func (b *Builder) mergeCalendar(snap *Snapshot, events []*metricstore.CalendarEvent) {
	for _, ev := range events {
		localStart := ev.StartTime.In(b.loc)

		var localEnd *time.Time
		if !ev.EndTime.IsZero() {
			t := ev.EndTime.In(b.loc)
			localEnd = &t
		}

		snap.CalendarEvents = append(snap.CalendarEvents, CalendarEvent{
			Title:          ev.Title,
			Description:    ev.Description,
			LocalStart:     localStart,
			LocalEnd:       localEnd,
			Location:       ev.Location,
			AttendeeCount:  ev.AttendeeCount,
			ResponseStatus: ev.ResponseStatus,
		})

		if trimmed := ev.Location; trimmed != "" {
			snap.CalendarLocations = append(snap.CalendarLocations, EventLocation{
				Location:   trimmed,
				EventTitle: ev.Title,
				LocalStart: localStart,
			})
		}
	}
}

// mergeFood sums calories with missing estimates contributing zero and
// groups items by meal label, unlabeled items into "unknown".
func (b *Builder) mergeFood(snap *Snapshot, items []*metricstore.FoodItem) {
	intake := FoodIntake{
		MealsByType: map[string][]FoodItem{},
		MealCount:   len(items),
	}

	for _, item := range items {
		if item.Calories != nil {
			intake.TotalCalories += *item.Calories
		}

		mealType := item.MealType
		if mealType == "" {
			mealType = "unknown"
		}

		intake.MealsByType[mealType] = append(intake.MealsByType[mealType], FoodItem{
			Name:       item.Name,
			Portion:    item.Portion,
			Calories:   item.Calories,
			Confidence: item.Confidence,
		})
	}

	snap.FoodIntake = intake
}

// mergeMetrics resolves each tracked metric to a single value. A window
// is expected to hold one row per metric; when more are found the latest
// by recorded timestamp wins and the conflict is surfaced rather than
// silently summed.
func (b *Builder) mergeMetrics(snap *Snapshot, metrics [][]*metricstore.MetricSample) {
	for i, name := range TrackedMetrics {
		samples := metrics[i]
		if len(samples) == 0 {
			continue
		}

		if len(samples) > 1 {
			snap.Ambiguities = append(snap.Ambiguities, name)
			b.logger.Warn("multiple rows for metric in window, taking latest",
				"metric", name, "date", snap.Date, "rows", len(samples))
		}

		latest := samples[len(samples)-1]
		snap.HealthMetrics[name] = MetricValue{
			Value: latest.Value,
			Min:   latest.Min,
			Max:   latest.Max,
			Avg:   latest.Avg,
		}
	}
}

// mergeSleep keeps the snapshot field nil only when no record exists. A
// record with a zero total is a reportable zero, not an absence.
func (b *Builder) mergeSleep(snap *Snapshot, records []*metricstore.SleepRecord) {
	if len(records) == 0 {
		snap.SleepData = nil
		return
	}

	if len(records) > 1 {
		snap.Ambiguities = append(snap.Ambiguities, "sleep_analysis")
		b.logger.Warn("multiple sleep records in window, taking latest",
			"date", snap.Date, "rows", len(records))
	}

	rec := records[len(records)-1]
	snap.SleepData = &SleepData{
		TotalHours: rec.TotalHours,
		DeepHours:  rec.DeepHours,
		RemHours:   rec.RemHours,
		CoreHours:  rec.CoreHours,
		AwakeHours: rec.AwakeHours,
		InBedHours: rec.InBedHours,
		LocalStart: b.localTime(rec.SleepStart),
		LocalEnd:   b.localTime(rec.SleepEnd),
	}
}

// mergeWeather deduplicates observations by place name, retaining the
// first-seen local time per unique place.
func (b *Builder) mergeWeather(snap *Snapshot, snapshots []*metricstore.WeatherSnapshot) {
	seen := map[string]bool{}
	for _, w := range snapshots {
		if seen[w.LocationName] {
			continue
		}
		seen[w.LocationName] = true

		snap.WeatherData = append(snap.WeatherData, WeatherReport{
			Location:     w.LocationName,
			TemperatureC: w.TemperatureC,
			TemperatureF: w.TemperatureF,
			Condition:    w.Condition,
			Humidity:     w.Humidity,
			WindKph:      w.WindKph,
			FeelsLikeC:   w.FeelsLikeC,
			UVIndex:      w.UVIndex,
			FirstSeen:    w.ObservedAt.In(b.loc),
		})
	}
}

// mergeLocations deduplicates pings by city plus region, retaining the
// first-seen local time per unique place.
func (b *Builder) mergeLocations(snap *Snapshot, pings []*metricstore.LocationPing) {
	seen := map[string]bool{}
	for _, p := range pings {
		key := p.City
		if p.Region != "" {
			key = p.City + ", " + p.Region
		}
		if seen[key] {
			continue
		}
		seen[key] = true

		snap.LocationData = append(snap.LocationData, PlaceVisit{
			City:        p.City,
			Region:      p.Region,
			Country:     p.Country,
			CountryCode: p.CountryCode,
			Lat:         p.Lat,
			Lon:         p.Lon,
			FirstSeen:   p.RecordedAt.In(b.loc),
		})
	}
}

func (b *Builder) localTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	local := t.In(b.loc)
	return &local
}
