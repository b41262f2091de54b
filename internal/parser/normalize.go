// internal/parser/normalize.go
package parser

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"calorie-log/internal/models"
)

// tzName is the calendar timezone used when a paste omits its date.
const tzName = "America/New_York"

var mealKcalKeys = []string{"breakfast_kcal", "lunch_kcal", "dinner_kcal", "snacks_kcal"}

func nowLocalDate() string {
	loc, err := time.LoadLocation(tzName)
	if err != nil {
		return time.Now().Format("2006-01-02")
	}
	return time.Now().In(loc).Format("2006-01-02")
}

// NowUTC is the canonical updated_at timestamp.
func NowUTC() string {
	return time.Now().UTC().Format(models.TimestampFormat)
}

func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	default:
		return fmt.Sprint(v)
	}
}

// foldNumber collapses json.Number into int64/float64 so that values decoded
// from JSON bodies behave like values from the block parser. Integer
// detection for the derived kcal total depends on this.
func foldNumber(v any) any {
	n, ok := v.(json.Number)
	if !ok {
		return v
	}
	if !strings.ContainsAny(n.String(), ".eE") {
		if i, err := n.Int64(); err == nil {
			return i
		}
	}
	if f, err := n.Float64(); err == nil {
		return f
	}
	return n.String()
}

func asInt(v any) (int64, bool) {
	switch t := foldNumber(v).(type) {
	case int64:
		return t, true
	case int:
		return int64(t), true
	default:
		return 0, false
	}
}

// Normalize turns an already-decoded mapping (block parser or JSON body)
// into a canonical entry. Unknown top-level keys are dropped.
func Normalize(raw map[string]any) (*models.Entry, error) {
	date := strings.TrimSpace(stringify(raw["date"]))
	if date == "" {
		// Default to today when omitted.
		date = nowLocalDate()
	}

	entry := &models.Entry{
		Date:      date,
		DayType:   stringify(raw["day_type"]),
		Source:    stringify(raw["source"]),
		Notes:     stringify(raw["notes"]),
		MealsText: map[string]string{},
		Estimates: map[string]any{},
		UpdatedAt: NowUTC(),
	}

	if mv, ok := raw["meals_text"]; ok && mv != nil {
		meals, ok := mv.(map[string]any)
		if !ok {
			return nil, parseErrorf("meals_text must be a nested block of meal keys (breakfast/lunch/dinner/snacks).")
		}
		for k, v := range meals {
			entry.MealsText[k] = stringify(v)
		}
	}

	if ev, ok := raw["estimates"]; ok && ev != nil {
		est, ok := ev.(map[string]any)
		if !ok {
			return nil, parseErrorf("estimates must be a nested block of numeric fields.")
		}
		for k, v := range est {
			entry.Estimates[k] = foldNumber(v)
		}
	}

	// Shorthand aliases: top-level kcal / protein_g / weight_lb feed the
	// estimates block when it doesn't already carry the key. Order matters:
	// aliases are applied before the derived total below.
	if _, ok := entry.Estimates["total_kcal"]; !ok {
		if v, ok := raw["kcal"]; ok {
			entry.Estimates["total_kcal"] = foldNumber(v)
		}
	}
	for _, k := range []string{"protein_g", "weight_lb"} {
		if _, ok := entry.Estimates[k]; !ok {
			if v, ok := raw[k]; ok {
				entry.Estimates[k] = foldNumber(v)
			}
		}
	}

	// Derive total_kcal from per-meal integers when still missing.
	if _, ok := entry.Estimates["total_kcal"]; !ok {
		var total int64
		anyMeal := false
		for _, k := range mealKcalKeys {
			if n, ok := asInt(entry.Estimates[k]); ok {
				total += n
				anyMeal = true
			}
		}
		if anyMeal {
			entry.Estimates["total_kcal"] = total
		}
	}

	return entry, nil
}

// NormalizeText parses a pasted block and normalizes the result.
func NormalizeText(text string) (*models.Entry, error) {
	raw, err := Parse(text)
	if err != nil {
		return nil, err
	}
	return Normalize(raw)
}
