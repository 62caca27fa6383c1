// Package postgres provides the PostgreSQL metric store client.
//
// The schema is owned by the ingestion service's migrations; this client
// only issues bounded range queries against the per-source tables.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"github.com/lifelog-io/lifelog-go/pkg/metricstore"
)

// Client implements metricstore.Store using PostgreSQL as the backend.
type Client struct {
	db *sql.DB
}

// Config contains configuration for creating a PostgreSQL metric store client.
type Config struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// NewClient creates a new PostgreSQL metric store client.
func NewClient(cfg *Config) (*Client, error) {
	sslMode := cfg.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}

	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, sslMode)

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("NewPostgresClient: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("NewPostgresClient: %w", err)
	}

	return &Client{db: db}, nil
}

// CalendarEvents returns events starting inside [start, end).
func (c *Client) CalendarEvents(ctx context.Context, start, end time.Time) ([]*metricstore.CalendarEvent, error) {
	query := `
		SELECT title, description, start_time, end_time, location, attendee_count, response_status
		FROM calendar_events
		WHERE start_time >= $1 AND start_time < $2
		ORDER BY start_time
	`

	rows, err := c.db.QueryContext(ctx, query, start, end)
	if err != nil {
		return nil, fmt.Errorf("CalendarEvents: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var events []*metricstore.CalendarEvent
	for rows.Next() {
		var ev metricstore.CalendarEvent
		var description, location, responseStatus sql.NullString
		var endTime sql.NullTime
		if err := rows.Scan(&ev.Title, &description, &ev.StartTime, &endTime, &location, &ev.AttendeeCount, &responseStatus); err != nil {
			return nil, fmt.Errorf("CalendarEvents: %w", err)
		}
		ev.Description = description.String
		ev.Location = location.String
		ev.ResponseStatus = responseStatus.String
		if endTime.Valid {
			ev.EndTime = endTime.Time
		}
		events = append(events, &ev)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("CalendarEvents: %w", err)
	}
	return events, nil
}

// FoodItems returns food log entries logged inside [start, end).
func (c *Client) FoodItems(ctx context.Context, start, end time.Time) ([]*metricstore.FoodItem, error) {
	query := `
		SELECT name, portion, calories, meal_type, confidence, logged_at
		FROM food_log
		WHERE logged_at >= $1 AND logged_at < $2
		ORDER BY logged_at
	`

	rows, err := c.db.QueryContext(ctx, query, start, end)
	if err != nil {
		return nil, fmt.Errorf("FoodItems: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var items []*metricstore.FoodItem
	for rows.Next() {
		var item metricstore.FoodItem
		var portion, mealType sql.NullString
		var calories sql.NullFloat64
		if err := rows.Scan(&item.Name, &portion, &calories, &mealType, &item.Confidence, &item.LoggedAt); err != nil {
			return nil, fmt.Errorf("FoodItems: %w", err)
		}
		item.Portion = portion.String
		item.MealType = mealType.String
		if calories.Valid {
			v := calories.Float64
			item.Calories = &v
		}
		items = append(items, &item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("FoodItems: %w", err)
	}
	return items, nil
}

// MetricSamples returns samples of the named metric recorded inside [start, end).
func (c *Client) MetricSamples(ctx context.Context, name string, start, end time.Time) ([]*metricstore.MetricSample, error) {
	query := `
		SELECT name, value, min, max, avg, recorded_at
		FROM health_metrics
		WHERE name = $1 AND recorded_at >= $2 AND recorded_at < $3
		ORDER BY recorded_at
	`

	rows, err := c.db.QueryContext(ctx, query, name, start, end)
	if err != nil {
		return nil, fmt.Errorf("MetricSamples: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var samples []*metricstore.MetricSample
	for rows.Next() {
		var s metricstore.MetricSample
		var value, min, max, avg sql.NullFloat64
		if err := rows.Scan(&s.Name, &value, &min, &max, &avg, &s.RecordedAt); err != nil {
			return nil, fmt.Errorf("MetricSamples: %w", err)
		}
		s.Value = nullableFloat(value)
		s.Min = nullableFloat(min)
		s.Max = nullableFloat(max)
		s.Avg = nullableFloat(avg)
		samples = append(samples, &s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("MetricSamples: %w", err)
	}
	return samples, nil
}

// SleepRecords returns sleep analyses recorded inside [start, end).
func (c *Client) SleepRecords(ctx context.Context, start, end time.Time) ([]*metricstore.SleepRecord, error) {
	query := `
		SELECT total_hours, deep_hours, rem_hours, core_hours, awake_hours, in_bed_hours,
		       sleep_start, sleep_end, recorded_at
		FROM sleep_analysis
		WHERE recorded_at >= $1 AND recorded_at < $2
		ORDER BY recorded_at
	`

	rows, err := c.db.QueryContext(ctx, query, start, end)
	if err != nil {
		return nil, fmt.Errorf("SleepRecords: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var records []*metricstore.SleepRecord
	for rows.Next() {
		var r metricstore.SleepRecord
		var sleepStart, sleepEnd sql.NullTime
		if err := rows.Scan(&r.TotalHours, &r.DeepHours, &r.RemHours, &r.CoreHours, &r.AwakeHours,
			&r.InBedHours, &sleepStart, &sleepEnd, &r.RecordedAt); err != nil {
			return nil, fmt.Errorf("SleepRecords: %w", err)
		}
		if sleepStart.Valid {
			t := sleepStart.Time
			r.SleepStart = &t
		}
		if sleepEnd.Valid {
			t := sleepEnd.Time
			r.SleepEnd = &t
		}
		records = append(records, &r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("SleepRecords: %w", err)
	}
	return records, nil
}

// WeatherSnapshots returns observations inside [start, end).
func (c *Client) WeatherSnapshots(ctx context.Context, start, end time.Time) ([]*metricstore.WeatherSnapshot, error) {
	query := `
		SELECT location_name, temp_c, temp_f, condition, humidity, wind_kph, feels_like_c, uv_index, observed_at
		FROM weather_snapshots
		WHERE observed_at >= $1 AND observed_at < $2
		ORDER BY observed_at
	`

	rows, err := c.db.QueryContext(ctx, query, start, end)
	if err != nil {
		return nil, fmt.Errorf("WeatherSnapshots: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var snapshots []*metricstore.WeatherSnapshot
	for rows.Next() {
		var w metricstore.WeatherSnapshot
		var condition sql.NullString
		var tempC, tempF, windKph, feelsLikeC, uvIndex sql.NullFloat64
		var humidity sql.NullInt64
		if err := rows.Scan(&w.LocationName, &tempC, &tempF, &condition,
			&humidity, &windKph, &feelsLikeC, &uvIndex, &w.ObservedAt); err != nil {
			return nil, fmt.Errorf("WeatherSnapshots: %w", err)
		}
		w.Condition = condition.String
		w.TemperatureC = tempC.Float64
		w.TemperatureF = tempF.Float64
		w.Humidity = int(humidity.Int64)
		w.WindKph = windKph.Float64
		w.FeelsLikeC = feelsLikeC.Float64
		w.UVIndex = uvIndex.Float64
		snapshots = append(snapshots, &w)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("WeatherSnapshots: %w", err)
	}
	return snapshots, nil
}

// LocationPings returns location fixes inside [start, end).
func (c *Client) LocationPings(ctx context.Context, start, end time.Time) ([]*metricstore.LocationPing, error) {
	query := `
		SELECT city, region, country, country_code, lat, lon, recorded_at
		FROM location_pings
		WHERE recorded_at >= $1 AND recorded_at < $2
		ORDER BY recorded_at
	`

	rows, err := c.db.QueryContext(ctx, query, start, end)
	if err != nil {
		return nil, fmt.Errorf("LocationPings: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var pings []*metricstore.LocationPing
	for rows.Next() {
		var p metricstore.LocationPing
		var region, country, countryCode sql.NullString
		var lat, lon sql.NullFloat64
		if err := rows.Scan(&p.City, &region, &country, &countryCode, &lat, &lon, &p.RecordedAt); err != nil {
			return nil, fmt.Errorf("LocationPings: %w", err)
		}
		p.Region = region.String
		p.Country = country.String
		p.CountryCode = countryCode.String
		p.Lat = lat.Float64
		p.Lon = lon.Float64
		pings = append(pings, &p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("LocationPings: %w", err)
	}
	return pings, nil
}

// Close closes the database connection.
func (c *Client) Close() error {
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}

func nullableFloat(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}
