package core

// SummaryMetadata holds the structured highlights stored alongside a
// daily summary in the vector index.
//
// Pointer fields distinguish "not recorded" (nil, serialized as null)
// from a recorded zero.
type SummaryMetadata struct {
	// TotalCalories is the sum of calories across all food entries of the day.
	TotalCalories float64 `json:"total_calories"`

	// EventCount is the number of calendar events on the day.
	EventCount int `json:"event_count"`

	// MealCount is the number of food entries logged on the day.
	MealCount int `json:"meal_count"`

	// Steps is the step count, nil when no step metric was recorded.
	Steps *float64 `json:"steps"`

	// ExerciseMinutes is the exercise time, nil when not recorded.
	ExerciseMinutes *float64 `json:"exercise_minutes"`

	// SleepHours is the total time asleep, nil when no sleep record exists.
	SleepHours *float64 `json:"sleep_hours"`

	// DayOfWeek is the English weekday name of the date (e.g., "Saturday").
	DayOfWeek string `json:"day_of_week"`
}

// Map returns the metadata as a generic payload map for indexing.
func (m *SummaryMetadata) Map() map[string]interface{} {
	return map[string]interface{}{
		"total_calories":   m.TotalCalories,
		"event_count":      m.EventCount,
		"meal_count":       m.MealCount,
		"steps":            floatOrNil(m.Steps),
		"exercise_minutes": floatOrNil(m.ExerciseMinutes),
		"sleep_hours":      floatOrNil(m.SleepHours),
		"day_of_week":      m.DayOfWeek,
	}
}

func floatOrNil(v *float64) interface{} {
	if v == nil {
		return nil
	}
	return *v
}

// SummaryResult is the outcome of creating a daily summary.
type SummaryResult struct {
	// Date is the summarized day, formatted YYYY-MM-DD.
	Date string `json:"date"`

	// Summary is the generated prose summary.
	Summary string `json:"summary"`

	// Metadata holds the structured highlights of the day.
	Metadata *SummaryMetadata `json:"metadata"`
}

// BulkEntry reports the outcome for a single date inside a bulk run.
type BulkEntry struct {
	// Date is the day this entry covers, formatted YYYY-MM-DD.
	Date string `json:"date"`

	// Success indicates whether the summary was created and indexed.
	Success bool `json:"success"`

	// Error holds the failure message when Success is false.
	Error string `json:"error,omitempty"`
}

// BulkResult is the outcome of a bulk summary creation run.
type BulkResult struct {
	// RunID uniquely identifies the bulk run for log correlation.
	RunID string `json:"run_id"`

	// StartDate is the first day of the requested range.
	StartDate string `json:"start_date"`

	// EndDate is the last day of the requested range.
	EndDate string `json:"end_date"`

	// Succeeded is the number of days summarized successfully.
	Succeeded int `json:"succeeded"`

	// Failed is the number of days that failed.
	Failed int `json:"failed"`

	// Entries holds the per-day outcomes in date order.
	Entries []BulkEntry `json:"entries"`
}

// SummaryMatch is a single semantic search hit.
type SummaryMatch struct {
	// Date is the matched day, formatted YYYY-MM-DD.
	Date string `json:"date"`

	// Summary is the stored prose summary.
	Summary string `json:"summary"`

	// Score is the cosine similarity against the query.
	Score float64 `json:"score"`

	// Metadata holds the structured highlights stored with the summary.
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

// AnswerResult is the outcome of a semantic query over past summaries.
type AnswerResult struct {
	// Query is the natural-language question asked.
	Query string `json:"query"`

	// Answer is the generated response grounded in the matched summaries.
	Answer string `json:"answer"`

	// Matches holds the summaries the answer was grounded in, best first.
	Matches []SummaryMatch `json:"matches"`

	// TotalFound is the number of matches returned by the index.
	TotalFound int `json:"total_found"`
}
