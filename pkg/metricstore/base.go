// Package metricstore provides the query contract over the relational store
// holding per-source life-tracking records (calendar events, food logs,
// biometric samples, sleep analyses, weather snapshots, location pings).
//
// Every record carries an absolute UTC timestamp. All queries are bounded
// range queries with inclusive-start/exclusive-end semantics; the package
// never writes; ingestion adapters own the tables.
package metricstore

import (
	"context"
	"time"
)

// CalendarEvent is one synced calendar entry.
type CalendarEvent struct {
	// Title is the event summary line.
	Title string

	// Description is the optional event body.
	Description string

	// StartTime and EndTime are absolute UTC instants.
	StartTime time.Time
	EndTime   time.Time

	// Location is the free-text event location (may be empty).
	Location string

	// AttendeeCount is the number of invited attendees.
	AttendeeCount int

	// ResponseStatus is the owner's RSVP state (accepted, declined, ...).
	ResponseStatus string
}

// FoodItem is one analyzed food log entry.
type FoodItem struct {
	// Name is the recognized food name.
	Name string

	// Portion is the estimated portion size description.
	Portion string

	// Calories is the estimated calorie count, nil when the analyzer
	// could not produce an estimate. A missing value contributes zero
	// to daily totals but the item is still listed.
	Calories *float64

	// MealType is the meal label (breakfast, lunch, ...), empty when
	// the item was logged without one.
	MealType string

	// Confidence is the analyzer's confidence in the recognition.
	Confidence float64

	// LoggedAt is the absolute UTC instant the item was logged.
	LoggedAt time.Time
}

// MetricSample is one recorded biometric metric for a day.
//
// Scalar metrics (steps, active energy) populate Value only; ranged
// metrics (heart rate) populate Min/Max/Avg. Absent pointers mean the
// field was not recorded, which is distinct from a recorded zero.
type MetricSample struct {
	// Name is the metric identifier (steps, heart_rate, ...).
	Name string

	Value *float64
	Min   *float64
	Max   *float64
	Avg   *float64

	// RecordedAt is the absolute UTC instant of the sample.
	RecordedAt time.Time
}

// SleepRecord is one night's sleep analysis.
type SleepRecord struct {
	// TotalHours is total time asleep. A recorded zero is meaningful
	// and must not be coerced to absent.
	TotalHours float64

	DeepHours  float64
	RemHours   float64
	CoreHours  float64
	AwakeHours float64
	InBedHours float64

	// SleepStart and SleepEnd are absolute UTC instants, nil when the
	// source did not report them.
	SleepStart *time.Time
	SleepEnd   *time.Time

	// RecordedAt is the absolute UTC instant of the analysis record.
	RecordedAt time.Time
}

// WeatherSnapshot is one observed weather record for a place.
type WeatherSnapshot struct {
	// LocationName is the place the observation belongs to.
	LocationName string

	TemperatureC float64
	TemperatureF float64
	Condition    string
	Humidity     int
	WindKph      float64
	FeelsLikeC   float64
	UVIndex      float64

	// ObservedAt is the absolute UTC instant of the observation.
	ObservedAt time.Time
}

// LocationPing is one tracked device location fix.
type LocationPing struct {
	City        string
	Region      string
	Country     string
	CountryCode string
	Lat         float64
	Lon         float64

	// RecordedAt is the absolute UTC instant of the fix.
	RecordedAt time.Time
}

// Store defines the read-only range-query interface over the per-source
// tables. All implementations (SQLite, PostgreSQL, MySQL) must apply the
// bounds as start <= timestamp < end.
type Store interface {
	// CalendarEvents returns events starting inside [start, end).
	CalendarEvents(ctx context.Context, start, end time.Time) ([]*CalendarEvent, error)

	// FoodItems returns food log entries logged inside [start, end).
	FoodItems(ctx context.Context, start, end time.Time) ([]*FoodItem, error)

	// MetricSamples returns samples of the named metric recorded inside
	// [start, end), ordered by RecordedAt ascending. The window is
	// expected to hold at most one sample per metric; callers decide how
	// to resolve the ambiguous multi-row case.
	MetricSamples(ctx context.Context, name string, start, end time.Time) ([]*MetricSample, error)

	// SleepRecords returns sleep analyses recorded inside [start, end),
	// ordered by RecordedAt ascending.
	SleepRecords(ctx context.Context, start, end time.Time) ([]*SleepRecord, error)

	// WeatherSnapshots returns observations inside [start, end), ordered
	// by ObservedAt ascending.
	WeatherSnapshots(ctx context.Context, start, end time.Time) ([]*WeatherSnapshot, error)

	// LocationPings returns location fixes inside [start, end), ordered
	// by RecordedAt ascending.
	LocationPings(ctx context.Context, start, end time.Time) ([]*LocationPing, error)

	// Close closes the store and releases resources.
	Close() error
}
