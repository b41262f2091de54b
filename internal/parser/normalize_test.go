// internal/parser/normalize_test.go
package parser

import (
	"encoding/json"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"calorie-log/internal/models"
)

var datePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

func TestNormalizeMinimal(t *testing.T) {
	entry, err := Normalize(map[string]any{"date": "2025-01-05"})
	require.NoError(t, err)

	assert.Equal(t, "2025-01-05", entry.Date)
	assert.Empty(t, entry.DayType)
	assert.Empty(t, entry.Source)
	assert.Empty(t, entry.Notes)
	assert.NotNil(t, entry.MealsText)
	assert.NotNil(t, entry.Estimates)
	assert.Empty(t, entry.MealsText)
	assert.Empty(t, entry.Estimates)

	_, err = time.Parse(models.TimestampFormat, entry.UpdatedAt)
	assert.NoError(t, err, "updated_at must be second-precision UTC with Z suffix")
}

func TestNormalizeDefaultsDateToToday(t *testing.T) {
	entry, err := Normalize(map[string]any{})
	require.NoError(t, err)
	assert.Regexp(t, datePattern, entry.Date)
}

func TestNormalizeOptionalFieldsOmittedFromJSON(t *testing.T) {
	entry, err := Normalize(map[string]any{"date": "2025-01-05", "day_type": nil})
	require.NoError(t, err)

	data, err := json.Marshal(entry)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "day_type")
	assert.NotContains(t, string(data), "notes")
	assert.Contains(t, string(data), `"meals_text":{}`)
	assert.Contains(t, string(data), `"estimates":{}`)
}

func TestNormalizeMealsText(t *testing.T) {
	entry, err := Normalize(map[string]any{
		"date": "2025-01-05",
		"meals_text": map[string]any{
			"breakfast": "eggs",
			"lunch":     nil,
			"dinner":    int64(5),
		},
	})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		"breakfast": "eggs",
		"lunch":     "",
		"dinner":    "5",
	}, entry.MealsText)
}

func TestNormalizeMealsTextMustBeMapping(t *testing.T) {
	_, err := Normalize(map[string]any{"date": "2025-01-05", "meals_text": "eggs"})
	require.Error(t, err)
	var pe *ParseError
	require.ErrorAs(t, err, &pe)
	assert.Contains(t, pe.Message, "meals_text must be a nested block")
}

func TestNormalizeEstimatesMustBeMapping(t *testing.T) {
	_, err := Normalize(map[string]any{"date": "2025-01-05", "estimates": int64(1800)})
	require.Error(t, err)
	var pe *ParseError
	require.ErrorAs(t, err, &pe)
	assert.Contains(t, pe.Message, "estimates must be a nested block")
}

func TestNormalizeTopLevelAliases(t *testing.T) {
	entry, err := Normalize(map[string]any{
		"date":      "2025-01-05",
		"kcal":      int64(2100),
		"protein_g": int64(150),
		"weight_lb": float64(180.5),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2100), entry.Estimates["total_kcal"])
	assert.Equal(t, int64(150), entry.Estimates["protein_g"])
	assert.Equal(t, float64(180.5), entry.Estimates["weight_lb"])
}

func TestNormalizeAliasDoesNotOverrideEstimates(t *testing.T) {
	entry, err := Normalize(map[string]any{
		"date":      "2025-01-05",
		"kcal":      int64(9999),
		"estimates": map[string]any{"total_kcal": int64(2000)},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2000), entry.Estimates["total_kcal"])
}

func TestNormalizeDerivedTotal(t *testing.T) {
	entry, err := Normalize(map[string]any{
		"date": "2025-01-05",
		"estimates": map[string]any{
			"breakfast_kcal": int64(350),
			"lunch_kcal":     int64(650),
		},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1000), entry.Estimates["total_kcal"])
}

func TestNormalizeDerivedTotalSkipsNonIntegers(t *testing.T) {
	entry, err := Normalize(map[string]any{
		"date": "2025-01-05",
		"estimates": map[string]any{
			"breakfast_kcal": float64(350.5),
			"lunch_kcal":     int64(650),
		},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(650), entry.Estimates["total_kcal"])
}

func TestNormalizeNoDerivedTotalWithoutMealValues(t *testing.T) {
	entry, err := Normalize(map[string]any{
		"date":      "2025-01-05",
		"estimates": map[string]any{"protein_g": int64(140)},
	})
	require.NoError(t, err)
	_, ok := entry.Estimates["total_kcal"]
	assert.False(t, ok)
}

func TestNormalizeJSONNumbers(t *testing.T) {
	// The JSON API decodes with UseNumber; integer detection must survive.
	entry, err := Normalize(map[string]any{
		"date": "2025-01-05",
		"estimates": map[string]any{
			"breakfast_kcal": json.Number("350"),
			"lunch_kcal":     json.Number("650"),
			"weight_lb":      json.Number("180.5"),
		},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1000), entry.Estimates["total_kcal"])
	assert.Equal(t, int64(350), entry.Estimates["breakfast_kcal"])
	assert.Equal(t, float64(180.5), entry.Estimates["weight_lb"])
}

func TestNormalizeTextEndToEnd(t *testing.T) {
	entry, err := NormalizeText("date: 2025-01-01\nmeals_text:\n  breakfast: |\n    eggs\nestimates:\n  breakfast_kcal: 300")
	require.NoError(t, err)

	assert.Equal(t, "2025-01-01", entry.Date)
	assert.Equal(t, "eggs", entry.MealsText["breakfast"])
	assert.Equal(t, int64(300), entry.Estimates["breakfast_kcal"])
	assert.Equal(t, int64(300), entry.Estimates["total_kcal"])
}

func TestNormalizeTextDeterministic(t *testing.T) {
	text := "date: 2025-01-01\nday_type: normal\nmeals_text:\n  lunch: |\n    soup\nestimates:\n  lunch_kcal: 400"

	a, err := NormalizeText(text)
	require.NoError(t, err)
	b, err := NormalizeText(text)
	require.NoError(t, err)

	a.UpdatedAt = ""
	b.UpdatedAt = ""
	assert.Equal(t, a, b)
}
