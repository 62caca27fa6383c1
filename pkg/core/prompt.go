package core

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/lifelog-io/lifelog-go/pkg/snapshot"
)

// buildSummaryPrompt renders the prompt asking the LLM to narrate one
// day's snapshot. Absent data must be narrated as untracked, never as a
// health concern, so the instructions spell that out explicitly.
func buildSummaryPrompt(snap *snapshot.Snapshot, timezone string) string {
	events, _ := json.MarshalIndent(snap.CalendarEvents, "", "  ")
	locations, _ := json.MarshalIndent(snap.CalendarLocations, "", "  ")
	meals, _ := json.MarshalIndent(snap.FoodIntake.MealsByType, "", "  ")
	metrics, _ := json.MarshalIndent(snap.HealthMetrics, "", "  ")
	sleep, _ := json.MarshalIndent(snap.SleepData, "", "  ")
	weather, _ := json.MarshalIndent(snap.WeatherData, "", "  ")
	places, _ := json.MarshalIndent(snap.LocationData, "", "  ")

	var b strings.Builder
	fmt.Fprintf(&b, "Analyze the following daily data and create a comprehensive summary for %s.\n", snap.Date)
	b.WriteString("Focus on patterns, insights, and notable events. Be concise but informative.\n\n")
	fmt.Fprintf(&b, "NOTE: All timestamps in the data below are in local timezone (%s).\n\n", timezone)
	b.WriteString("CRITICAL INSTRUCTIONS:\n")
	b.WriteString("- When data shows null values, this means NO DATA WAS COLLECTED for that day\n")
	b.WriteString("- DO NOT treat missing data as health concerns or problems\n")
	b.WriteString("- DO NOT mention missing data as something to be concerned about\n")
	b.WriteString("- Instead, focus ONLY on the data that IS available\n")
	b.WriteString("- If most data is missing, frame it as \"a day with limited tracking\" rather than problematic\n")
	b.WriteString("- Only mention actual zero values (when data was collected but showed 0) as potential areas of interest\n\n")
	b.WriteString("Examples:\n")
	b.WriteString("- If sleep data is null: DON'T mention sleep at all, or briefly note \"No sleep data was recorded for this day\"\n")
	b.WriteString("- If steps is null: DON'T mention steps, or briefly note \"Step tracking was not available\"\n")
	b.WriteString("- If total calories is 0 AND food data exists: This might be worth noting\n")
	b.WriteString("- If total calories is 0 AND no food data exists: This just means no food was tracked\n\n")
	fmt.Fprintf(&b, "CALENDAR EVENTS (%d events):\n%s\n\n", len(snap.CalendarEvents), events)
	fmt.Fprintf(&b, "CALENDAR LOCATIONS:\n%s\n\n", locations)
	fmt.Fprintf(&b, "FOOD INTAKE:\nTotal Calories: %.1f\nMeals: %s\n\n", snap.FoodIntake.TotalCalories, meals)
	fmt.Fprintf(&b, "HEALTH METRICS:\n%s\n\n", metrics)
	fmt.Fprintf(&b, "SLEEP DATA:\n%s\n\n", sleep)
	fmt.Fprintf(&b, "WEATHER DATA:\n%s\n\n", weather)
	fmt.Fprintf(&b, "LOCATION DATA:\n%s\n\n", places)
	b.WriteString("Please provide a summary that includes:\n")
	b.WriteString("1. Overall day assessment based on AVAILABLE data\n")
	b.WriteString("2. Key activities and meetings (if any)\n")
	b.WriteString("3. Weather conditions and how they might have influenced the day\n")
	b.WriteString("4. Locations visited and any travel patterns\n")
	b.WriteString("5. Health and wellness highlights (only actual recorded data)\n")
	b.WriteString("6. Food intake patterns (only if food was tracked)\n")
	b.WriteString("7. Sleep quality assessment (only if sleep data exists)\n")
	b.WriteString("8. Notable patterns based on actual data\n\n")
	b.WriteString("Keep the summary under 500 words, personal, and insightful.\n")
	b.WriteString("Focus on what DID happen rather than what data is missing.\n")
	b.WriteString("Frame days with limited data as \"quiet tracking days\" rather than problematic.\n")

	return b.String()
}

// buildAnswerPrompt renders the prompt answering a question grounded in
// the best-matching past summaries. Only the top matches are inlined to
// keep the context small.
func buildAnswerPrompt(query string, matches []SummaryMatch) string {
	contextLimit := 3
	if len(matches) < contextLimit {
		contextLimit = len(matches)
	}

	var ctx strings.Builder
	for i, m := range matches[:contextLimit] {
		if i > 0 {
			ctx.WriteString("\n\n")
		}
		fmt.Fprintf(&ctx, "Date: %s\nSummary: %s", m.Date, m.Summary)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Based on the following daily summaries, answer this question: %q\n\n", query)
	fmt.Fprintf(&b, "Relevant daily summaries:\n%s\n\n", ctx.String())
	b.WriteString("Provide a comprehensive answer based on the patterns and information in these summaries.\n")
	b.WriteString("If you can identify trends or patterns, mention them. Be specific and cite dates when relevant.\n")

	return b.String()
}
