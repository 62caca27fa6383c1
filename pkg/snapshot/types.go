// Package snapshot builds the transient merged view of one local calendar
// day across all life-tracking source categories.
package snapshot

import "time"

// Snapshot is the merged view of one local day. It is constructed on
// demand, handed to the summary text generator, and discarded.
//
// Every timestamp in a Snapshot is expressed in the configured local
// timezone. Absence of a metric is structurally distinct from a recorded
// zero: an absent map key or nil pointer means "not recorded".
type Snapshot struct {
	// Date is the civil date in YYYY-MM-DD form.
	Date string `json:"date"`

	CalendarEvents    []CalendarEvent        `json:"calendar_events"`
	CalendarLocations []EventLocation        `json:"calendar_locations"`
	FoodIntake        FoodIntake             `json:"food_intake"`
	HealthMetrics     map[string]MetricValue `json:"health_metrics"`

	// SleepData is nil when no sleep record exists in the window. A
	// record whose total is zero is kept as a record, never nil.
	SleepData *SleepData `json:"sleep_data"`

	WeatherData  []WeatherReport `json:"weather_data"`
	LocationData []PlaceVisit    `json:"location_data"`

	// Ambiguities lists metrics that unexpectedly had multiple rows in
	// the window. Not serialized; surfaced to callers and logs.
	Ambiguities []string `json:"-"`
}

// CalendarEvent is one event of the day with display timestamps already
// converted to the local timezone.
type CalendarEvent struct {
	Title          string     `json:"title"`
	Description    string     `json:"description,omitempty"`
	LocalStart     time.Time  `json:"start_time"`
	LocalEnd       *time.Time `json:"end_time"`
	Location       string     `json:"location,omitempty"`
	AttendeeCount  int        `json:"attendee_count"`
	ResponseStatus string     `json:"response_status"`
}

// EventLocation pairs a non-empty event location with the event it came
// from, for weather and place context.
type EventLocation struct {
	Location   string    `json:"location"`
	EventTitle string    `json:"event_title"`
	LocalStart time.Time `json:"start_time"`
}

// FoodIntake aggregates the day's food log.
type FoodIntake struct {
	// TotalCalories sums calories across all items; items with no
	// calorie estimate contribute zero but are still listed.
	TotalCalories float64 `json:"total_calories"`

	// MealsByType groups items by meal label. Unlabeled items land in
	// the "unknown" bucket.
	MealsByType map[string][]FoodItem `json:"meals_by_type"`

	// MealCount is the number of logged items.
	MealCount int `json:"meal_count"`
}

// FoodItem is one logged food item.
type FoodItem struct {
	Name       string   `json:"name"`
	Portion    string   `json:"portion,omitempty"`
	Calories   *float64 `json:"calories"`
	Confidence float64  `json:"confidence"`
}

// MetricValue is a recorded biometric value: either a scalar or a
// min/max/avg range. Nil fields were not recorded.
type MetricValue struct {
	Value *float64 `json:"value,omitempty"`
	Min   *float64 `json:"min,omitempty"`
	Max   *float64 `json:"max,omitempty"`
	Avg   *float64 `json:"avg,omitempty"`
}

// SleepData is the night's sleep breakdown in hours.
type SleepData struct {
	TotalHours float64    `json:"total_sleep"`
	DeepHours  float64    `json:"deep_sleep"`
	RemHours   float64    `json:"rem_sleep"`
	CoreHours  float64    `json:"core_sleep"`
	AwakeHours float64    `json:"awake_time"`
	InBedHours float64    `json:"in_bed_time"`
	LocalStart *time.Time `json:"sleep_start"`
	LocalEnd   *time.Time `json:"sleep_end"`
}

// WeatherReport is one unique observed place's weather, with the
// first-seen local time retained.
type WeatherReport struct {
	Location     string    `json:"location"`
	TemperatureC float64   `json:"temperature_c"`
	TemperatureF float64   `json:"temperature_f"`
	Condition    string    `json:"condition"`
	Humidity     int       `json:"humidity"`
	WindKph      float64   `json:"wind_kph"`
	FeelsLikeC   float64   `json:"feels_like_c"`
	UVIndex      float64   `json:"uv_index"`
	FirstSeen    time.Time `json:"first_seen"`
}

// PlaceVisit is one unique visited place, deduplicated by city and
// region, with the first-seen local time retained.
type PlaceVisit struct {
	City        string    `json:"city"`
	Region      string    `json:"state_province,omitempty"`
	Country     string    `json:"country,omitempty"`
	CountryCode string    `json:"country_code,omitempty"`
	Lat         float64   `json:"lat"`
	Lon         float64   `json:"lon"`
	FirstSeen   time.Time `json:"first_seen"`
}
