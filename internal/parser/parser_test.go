// internal/parser/parser_test.go
package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCoerceScalar(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  any
	}{
		{"empty", "", ""},
		{"whitespace only", "   ", ""},
		{"null lowercase", "null", nil},
		{"none mixed case", "None", nil},
		{"true uppercase", "TRUE", true},
		{"false", "false", false},
		{"integer", "42", int64(42)},
		{"negative integer", "-7", int64(-7)},
		{"leading zeros", "007", int64(7)},
		{"float", "3.14", float64(3.14)},
		{"negative float", "-0.5", float64(-0.5)},
		{"trailing dot stays string", "1.", "1."},
		{"date stays string", "2025-01-05", "2025-01-05"},
		{"mixed stays string", "12abc", "12abc"},
		{"padded string trimmed", "  hello  ", "hello"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, coerceScalar(tt.input))
		})
	}
}

func TestParseScalars(t *testing.T) {
	got, err := Parse("date: 2025-01-01\nkcal: 1800\nweight_lb: 180.5\ncheat: false")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"date":      "2025-01-01",
		"kcal":      int64(1800),
		"weight_lb": float64(180.5),
		"cheat":     false,
	}, got)
}

func TestParseNested(t *testing.T) {
	got, err := Parse("estimates:\n  breakfast_kcal: 300\n  protein_g: 40.5\nnotes: fine")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"estimates": map[string]any{
			"breakfast_kcal": int64(300),
			"protein_g":      float64(40.5),
		},
		"notes": "fine",
	}, got)
}

func TestParseDeepNestingPopsToAncestor(t *testing.T) {
	got, err := Parse("a:\n  b:\n    c: 1\n  d: 2\ne: 3")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"a": map[string]any{
			"b": map[string]any{"c": int64(1)},
			"d": int64(2),
		},
		"e": int64(3),
	}, got)
}

func TestParseBlockLiteral(t *testing.T) {
	got, err := Parse("notes: |\n  line one\n\n  line two\ndate: 2025-01-01")
	require.NoError(t, err)
	assert.Equal(t, "line one\n\nline two", got["notes"])
	assert.Equal(t, "2025-01-01", got["date"])
}

func TestParseBlockLiteralInsideNested(t *testing.T) {
	got, err := Parse("meals_text:\n  breakfast: |\n    2 eggs\n    toast\n  lunch: |\n    soup")
	require.NoError(t, err)
	meals, ok := got["meals_text"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "2 eggs\ntoast", meals["breakfast"])
	assert.Equal(t, "soup", meals["lunch"])
}

func TestParseBlockLiteralTrailingBlanksTrimmed(t *testing.T) {
	got, err := Parse("notes: |\n  abc\n\n\ndate: 2025-01-01")
	require.NoError(t, err)
	assert.Equal(t, "abc", got["notes"])
}

func TestParseStripsBlankEdgesAndCRLF(t *testing.T) {
	got, err := Parse("\r\n\r\ndate: 2025-01-01\r\nkcal: 100\r\n\r\n")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"date": "2025-01-01", "kcal": int64(100)}, got)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantMsg string
	}{
		{"empty", "", "Paste is empty."},
		{"blank only", " \n\n  \n", "Paste is empty."},
		{"odd indent", " date: 2025-01-01", "Indentation must be multiples of 2 spaces"},
		{"no colon", "just some words", "Bad line format"},
		{"bad key charset", "day-type: normal", "Bad line format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.input)
			require.Error(t, err)
			var pe *ParseError
			require.ErrorAs(t, err, &pe)
			assert.Contains(t, pe.Message, tt.wantMsg)
		})
	}
}

func TestParseSampleBlock(t *testing.T) {
	sample := `date: 2025-12-30
day_type: normal
source: ai_estimate

meals_text:
  breakfast: |
    2 eggs
    toast with butter
  snacks: |
    protein bar

estimates:
  breakfast_kcal: 350
  snacks_kcal: 220
  protein_g: 140

notes: |
  late dinner, ate out`

	got, err := Parse(sample)
	require.NoError(t, err)

	assert.Equal(t, "2025-12-30", got["date"])
	assert.Equal(t, "normal", got["day_type"])
	assert.Equal(t, "ai_estimate", got["source"])
	assert.Equal(t, "late dinner, ate out", got["notes"])

	meals := got["meals_text"].(map[string]any)
	assert.Equal(t, "2 eggs\ntoast with butter", meals["breakfast"])
	assert.Equal(t, "protein bar", meals["snacks"])

	est := got["estimates"].(map[string]any)
	assert.Equal(t, int64(350), est["breakfast_kcal"])
	assert.Equal(t, int64(220), est["snacks_kcal"])
	assert.Equal(t, int64(140), est["protein_g"])
}
